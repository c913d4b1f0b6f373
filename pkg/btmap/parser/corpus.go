// Package parser discovers workbooks in a corpus and reads their sheets.
package parser

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/btmap-go/pkg/btmap/models"
)

// ErrUnsupportedInput indicates the corpus path is neither a zip archive,
// a directory, nor a workbook.
var ErrUnsupportedInput = errors.New("unsupported corpus input")

// ErrNoWorkbooks indicates the corpus holds no workbook.
var ErrNoWorkbooks = errors.New("no workbooks in corpus")

// Source is one workbook of the corpus.
type Source struct {
	// Name is the workbook path relative to the corpus root.
	Name string
	open func() (io.ReadCloser, error)
}

// Corpus is an opened set of workbooks, in stable name order.
type Corpus struct {
	Path    string
	Sources []Source
	closer  io.Closer
}

// OpenCorpus opens a zip archive, a directory, or a single workbook.
func OpenCorpus(p string) (*Corpus, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}

	c := &Corpus{Path: p}
	switch {
	case info.IsDir():
		err = c.addDirectory(p)
	case strings.EqualFold(filepath.Ext(p), ".zip"):
		err = c.addArchive(p)
	case isWorkbook(p):
		c.Sources = append(c.Sources, fileSource(filepath.Base(p), p))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedInput, p)
	}
	if err != nil {
		c.Close()
		return nil, err
	}
	if len(c.Sources) == 0 {
		c.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoWorkbooks, p)
	}
	sort.SliceStable(c.Sources, func(i, j int) bool {
		return c.Sources[i].Name < c.Sources[j].Name
	})
	return c, nil
}

// Close releases the archive, if any.
func (c *Corpus) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

func (c *Corpus) addDirectory(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isWorkbook(p) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		c.Sources = append(c.Sources, fileSource(filepath.ToSlash(rel), p))
		return nil
	})
}

func (c *Corpus) addArchive(p string) error {
	r, err := zip.OpenReader(p)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	c.closer = r
	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") || !isWorkbook(f.Name) {
			continue
		}
		c.Sources = append(c.Sources, Source{Name: f.Name, open: f.Open})
	}
	return nil
}

func fileSource(name, p string) Source {
	return Source{Name: name, open: func() (io.ReadCloser, error) { return os.Open(p) }}
}

// isWorkbook accepts .xlsx and .xlsm files, skipping Office lock files.
func isWorkbook(p string) bool {
	base := path.Base(filepath.ToSlash(p))
	if strings.HasPrefix(base, "~$") {
		return false
	}
	switch strings.ToLower(path.Ext(base)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// Open loads the workbook fully into memory and releases its handle.
// The caller must Close the returned file.
func (s Source) Open() (*excelize.File, error) {
	rc, err := s.open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return excelize.OpenReader(rc)
}

// Workbook lists the sheets of a source.
func (s Source) Workbook() (models.Workbook, error) {
	f, err := s.Open()
	if err != nil {
		return models.Workbook{}, err
	}
	defer f.Close()
	return models.Workbook{BookName: s.Name, SheetNames: f.GetSheetList()}, nil
}
