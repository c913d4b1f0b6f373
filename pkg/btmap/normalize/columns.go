package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/btmap-go/pkg/btmap/models"
)

// Fixed column positions of the source layout. The source reuses the header
// "Level" for the indent level (position 1) and the old-form level
// (position 8), so these two are told apart by position only.
const (
	LayoutColumn      = 0
	IndentLevelColumn = 1
	LevelColumn       = 8
)

// ErrLayoutColumn reports that the layout column holds data.
var ErrLayoutColumn = errors.New("layout column is not empty")

// ErrMissingLevelColumn reports a table too narrow to hold the Level column.
var ErrMissingLevelColumn = errors.New("sheet has no level column")

// Column is a resolved column: the source position and its stable name.
type Column struct {
	Index int
	Name  string
}

// ResolveColumns maps source positions to stable, unique column names.
// The layout column and empty placeholder columns are dropped.
func ResolveColumns(sheet models.Sheet) ([]Column, error) {
	width := sheet.Width()
	if width <= LevelColumn {
		return nil, fmt.Errorf("%w: %d columns", ErrMissingLevelColumn, width)
	}
	if err := checkLayoutColumn(sheet); err != nil {
		return nil, err
	}

	used := make(map[string]int)
	var cols []Column
	for i := LayoutColumn + 1; i < width; i++ {
		name := headerName(sheet.Header, i)
		switch i {
		case IndentLevelColumn:
			name = models.ColumnIndentLevel
		case LevelColumn:
			name = models.ColumnLevel
		}
		if name == "" {
			if columnEmpty(sheet, i) {
				continue
			}
			letter, _ := excelize.ColumnNumberToName(i + 1)
			name = "Column " + letter
		}
		if i != LevelColumn && name == models.ColumnLevel {
			name = fmt.Sprintf("%s (column %d)", models.ColumnLevel, i+1)
		}
		used[name]++
		if n := used[name]; n > 1 {
			name = fmt.Sprintf("%s (%d)", name, n)
		}
		cols = append(cols, Column{Index: i, Name: name})
	}
	return cols, nil
}

func checkLayoutColumn(sheet models.Sheet) error {
	if v := strings.TrimSpace(headerName(sheet.Header, LayoutColumn)); v != "" {
		return fmt.Errorf("%w: header holds %q", ErrLayoutColumn, v)
	}
	for r := range sheet.Rows {
		if v := strings.TrimSpace(sheet.Cell(r, LayoutColumn)); v != "" {
			return fmt.Errorf("%w: row %d holds %q", ErrLayoutColumn, sheet.Line(r), v)
		}
	}
	return nil
}

func headerName(header []string, i int) string {
	if i >= len(header) {
		return ""
	}
	return strings.TrimSpace(header[i])
}

func columnEmpty(sheet models.Sheet, col int) bool {
	for r := range sheet.Rows {
		if strings.TrimSpace(sheet.Cell(r, col)) != "" {
			return false
		}
	}
	return true
}
