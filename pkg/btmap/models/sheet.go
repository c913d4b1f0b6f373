// Package models defines data structures for BT mapping extraction.
package models

// Sheet represents one worksheet read into memory.
// The title row is not part of it; Header is the first row after the title.
type Sheet struct {
	// Workbook is the workbook file name (no directory).
	Workbook string `json:"workbook"`
	// Name is the sheet name, the only routing key for classification.
	Name string `json:"name"`
	// Header holds the header cells in column order. Names may repeat.
	Header []string `json:"header"`
	// Rows holds data rows, each padded to len(Header) or wider.
	Rows [][]string `json:"rows,omitempty"`
	// FirstRow is the 1-based source row number of Rows[0].
	FirstRow int `json:"first_row"`
}

// Line returns the 1-based source row number of a data row.
func (s Sheet) Line(row int) int {
	return s.FirstRow + row
}

// Width returns the number of columns of the rectangular table.
func (s Sheet) Width() int {
	w := len(s.Header)
	for _, row := range s.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Cell returns the value at the given 0-based position, or "" outside the table.
func (s Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}
