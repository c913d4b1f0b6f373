package btmap

import (
	"errors"
	"fmt"

	"github.com/ukaji3/btmap-go/pkg/btmap/parser"
)

// ErrFileNotFound indicates the corpus path does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the corpus is not a zip archive, directory, or xlsx workbook.
var ErrInvalidFormat = parser.ErrUnsupportedInput

// ErrNoWorkbooks indicates the corpus holds no workbook.
var ErrNoWorkbooks = parser.ErrNoWorkbooks

// StructuralViolation reports that the corpus no longer has the expected
// shape. It aborts the run.
type StructuralViolation struct {
	Workbook string
	Sheet    string
	Reason   string
}

func (e *StructuralViolation) Error() string {
	return fmt.Sprintf("structural violation in %s sheet %q: %s", e.Workbook, e.Sheet, e.Reason)
}

// ExtractionError represents an I/O error during extraction.
type ExtractionError struct {
	Workbook  string
	SheetName string
	Component string // "open", "cells"
	Err       error
}

func (e *ExtractionError) Error() string {
	if e.SheetName == "" {
		return fmt.Sprintf("extraction error in workbook %q (%s): %v", e.Workbook, e.Component, e.Err)
	}
	return fmt.Sprintf("extraction error in sheet %q of %q (%s): %v", e.SheetName, e.Workbook, e.Component, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(workbook, sheetName, component string, err error) *ExtractionError {
	return &ExtractionError{
		Workbook:  workbook,
		SheetName: sheetName,
		Component: component,
		Err:       err,
	}
}
