package models

// Placement is one (Level, Element) pair expanded from a MappingRow.
// Every other column is copied unchanged from the parent row.
type Placement struct {
	Workbook string `json:"workbook"`
	Sheet    string `json:"sheet"`
	// Line is the source row number of the parent MappingRow.
	Line int `json:"line"`
	// Fields holds a single Level and a single Element value.
	Fields map[string]string `json:"fields"`
	// Binding still carries the full new-form notice list.
	Binding NoticeBinding `json:"binding"`
}

// Level returns the single level value.
func (p Placement) Level() string {
	return p.Fields[ColumnLevel]
}

// Element returns the single element value.
func (p Placement) Element() string {
	return p.Fields[ColumnElement]
}

// ExpandedSheet is the Placement Expander output for one sheet.
type ExpandedSheet struct {
	Workbook   string      `json:"workbook"`
	Name       string      `json:"name"`
	Columns    []string    `json:"columns"`
	Placements []Placement `json:"placements,omitempty"`
}
