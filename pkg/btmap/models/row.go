package models

// Canonical column names after normalization.
const (
	ColumnIndentLevel  = "Indent level"
	ColumnID           = "ID"
	ColumnName         = "Name"
	ColumnDescription  = "Description"
	ColumnLevel        = "Level"
	ColumnElement      = "Element"
	ColumnEformsNotice = "eformsNotice"
	ColumnSFNotice     = "sfNotice"
)

// MappingRow is one data row after normalization.
// Level and Element may still hold several newline-delimited values.
type MappingRow struct {
	// Workbook and Sheet identify the source of the row.
	Workbook string `json:"workbook"`
	Sheet    string `json:"sheet"`
	// Line is the 1-based row number in the source sheet.
	Line int `json:"line"`
	// Fields maps column name to cell value. Empty cells are "".
	Fields map[string]string `json:"fields"`
	// Binding carries the notice numbers of the source sheet.
	Binding NoticeBinding `json:"binding"`
}

// Get returns the value of a column, "" if absent.
func (r MappingRow) Get(column string) string {
	return r.Fields[column]
}

// ID returns the placement identifier (e.g. "BT-18").
func (r MappingRow) ID() string {
	return r.Fields[ColumnID]
}

// NormalizedSheet is the Row Normalizer output for one accepted sheet.
type NormalizedSheet struct {
	Workbook string `json:"workbook"`
	Name     string `json:"name"`
	// Columns lists the resolved column names in output order.
	Columns []string      `json:"columns"`
	Rows    []MappingRow  `json:"rows,omitempty"`
	Binding NoticeBinding `json:"binding"`
}
