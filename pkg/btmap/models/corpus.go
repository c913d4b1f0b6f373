package models

// Record is one row of the corpus table. Fields["eformsNotice"] holds exactly one notice.
type Record struct {
	Workbook string            `json:"workbook"`
	Sheet    string            `json:"sheet"`
	Fields   map[string]string `json:"fields"`
}

// Get returns the value of a column, "" if absent.
func (r Record) Get(column string) string {
	return r.Fields[column]
}

// Corpus is the assembled, flat mapping table.
type Corpus struct {
	// Columns lists output columns in first-seen order.
	Columns []string `json:"columns"`
	// Records are ordered by sheet discovery order, then source row order.
	Records []Record `json:"records"`
}

// Values returns a record's cells in Columns order.
func (c *Corpus) Values(i int) []string {
	out := make([]string, len(c.Columns))
	for j, col := range c.Columns {
		out[j] = c.Records[i].Fields[col]
	}
	return out
}

// HasColumn reports whether the column is present.
func (c *Corpus) HasColumn(name string) bool {
	for _, col := range c.Columns {
		if col == name {
			return true
		}
	}
	return false
}
