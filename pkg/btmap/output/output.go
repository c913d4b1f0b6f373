// Package output serializes the corpus table and the diagnostics stream.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/btmap-go/pkg/btmap/diagnostic"
	"github.com/ukaji3/btmap-go/pkg/btmap/models"
)

// Format represents an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "mapping"

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be csv, json, or xlsx)", s)
}

// Write serializes the corpus in the given format.
func Write(w io.Writer, format Format, c *models.Corpus) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, c)
	case FormatJSON:
		return WriteJSON(w, c)
	case FormatXLSX:
		return WriteXLSX(w, c)
	}
	return fmt.Errorf("invalid format: %s", format)
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, c *models.Corpus) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(c.Columns); err != nil {
		return err
	}
	for i := range c.Records {
		if err := cw.Write(c.Values(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the records as an indented JSON array.
func WriteJSON(w io.Writer, c *models.Corpus) error {
	data, err := ToJSON(c, true)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ToJSON serializes records as an array of column/value objects.
func ToJSON(c *models.Corpus, pretty bool) ([]byte, error) {
	records := make([]map[string]string, len(c.Records))
	for i := range c.Records {
		row := make(map[string]string, len(c.Columns))
		for j, v := range c.Values(i) {
			row[c.Columns[j]] = v
		}
		records[i] = row
	}
	if pretty {
		return json.MarshalIndent(records, "", "  ")
	}
	return json.Marshal(records)
}

// WriteXLSX writes the corpus to a single-sheet workbook.
func WriteXLSX(w io.Writer, c *models.Corpus) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	if err := setRow(f, 1, c.Columns); err != nil {
		return err
	}
	for i := range c.Records {
		if err := setRow(f, i+2, c.Values(i)); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(SheetName, cell, &cells)
}

// WriteDiagnostics writes one line per diagnostic.
func WriteDiagnostics(w io.Writer, d *diagnostic.Diagnostics) error {
	_, err := d.WriteTo(w)
	return err
}
