package parser

// dataExtent returns the last row and column index holding a non-empty
// cell, or -1, -1 when every cell is empty.
func dataExtent(rows [][]string) (lastRow, lastCol int) {
	lastRow, lastCol = -1, -1
	for r, row := range rows {
		for c, cell := range row {
			if cell == "" {
				continue
			}
			lastRow = r
			if c > lastCol {
				lastCol = c
			}
		}
	}
	return lastRow, lastCol
}
