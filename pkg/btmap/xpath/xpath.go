// Package xpath joins the assembled corpus with an eForms BT to XPath table.
package xpath

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ukaji3/btmap-go/pkg/btmap/models"
)

// Output columns added by Join.
const (
	ColumnXPath = "eforms_xpath"
	ColumnName  = "xpath_name"
)

// Input columns read by Load.
const (
	inputBT    = "bt"
	inputXPath = "eforms_xpath"
	inputName  = "name"
)

// ErrMissingColumn is returned when the table lacks a required column.
var ErrMissingColumn = errors.New("xpath table: missing column")

// Entry is one BT with all its XPaths.
type Entry struct {
	BT     string
	XPaths []string
	Name   string
}

// XPath returns the XPaths joined the way they are written to the corpus.
func (e Entry) XPath() string {
	return strings.Join(e.XPaths, ";")
}

// Table holds entries in first-seen order.
type Table struct {
	Entries []Entry
	index   map[string]int
}

// Lookup returns the entry for a BT.
func (t *Table) Lookup(bt string) (Entry, bool) {
	i, ok := t.index[bt]
	if !ok {
		return Entry{}, false
	}
	return t.Entries[i], true
}

// LoadFile reads a table from a CSV file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load reads a CSV table with bt, eforms_xpath and name columns.
// Rows without an XPath are dropped. Rows sharing a BT are grouped.
// Rows without a BT get a synthetic key built from the last XPath
// segment and the data row number.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("xpath table: reading header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, name := range []string{inputBT, inputXPath, inputName} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}
	get := func(rec []string, name string) string {
		i := cols[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	t := &Table{index: map[string]int{}}
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xpath table: %w", err)
		}
		bt, xp, name := get(rec, inputBT), get(rec, inputXPath), get(rec, inputName)
		if xp == "" {
			continue
		}
		if bt == "" {
			segments := strings.Split(xp, ":")
			key := fmt.Sprintf("no_BT_%s_%d", segments[len(segments)-1], row)
			if _, dup := t.index[key]; dup {
				return nil, fmt.Errorf("xpath table: duplicate key %q", key)
			}
			t.add(Entry{BT: key, XPaths: []string{xp}, Name: name})
			continue
		}
		if i, ok := t.index[bt]; ok {
			t.Entries[i].XPaths = append(t.Entries[i].XPaths, xp)
			continue
		}
		t.add(Entry{BT: bt, XPaths: []string{xp}, Name: name})
	}
	return t, nil
}

func (t *Table) add(e Entry) {
	t.index[e.BT] = len(t.Entries)
	t.Entries = append(t.Entries, e)
}

// Join performs an outer merge of the corpus ID column with the table's BT
// key. BTs found only in the table are appended as records with just the
// ID and XPath columns set. The input corpus is not modified.
func Join(c *models.Corpus, t *Table) *models.Corpus {
	out := &models.Corpus{
		Columns: append(append([]string{}, c.Columns...), ColumnXPath, ColumnName),
		Records: make([]models.Record, 0, len(c.Records)),
	}
	if !c.HasColumn(models.ColumnID) {
		out.Columns = append([]string{models.ColumnID}, out.Columns...)
	}

	used := make(map[string]bool, len(t.Entries))
	for _, rec := range c.Records {
		fields := make(map[string]string, len(rec.Fields)+2)
		for k, v := range rec.Fields {
			fields[k] = v
		}
		id := rec.Get(models.ColumnID)
		if e, ok := t.Lookup(id); ok {
			fields[ColumnXPath] = e.XPath()
			fields[ColumnName] = e.Name
			used[id] = true
		}
		out.Records = append(out.Records, models.Record{Workbook: rec.Workbook, Sheet: rec.Sheet, Fields: fields})
	}
	for _, e := range t.Entries {
		if used[e.BT] {
			continue
		}
		out.Records = append(out.Records, models.Record{Fields: map[string]string{
			models.ColumnID: e.BT,
			ColumnXPath:     e.XPath(),
			ColumnName:      e.Name,
		}})
	}
	return out
}
