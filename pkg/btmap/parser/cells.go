package parser

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/btmap-go/pkg/btmap/models"
)

// titleRows is the number of title rows above the header row.
const titleRows = 1

// ReadSheet reads a sheet into memory. The first row is a title and is
// skipped, the second row is the header, the rest are data rows. Every row
// is padded so the table is rectangular; trailing empty rows are dropped.
func ReadSheet(f *excelize.File, workbook, sheetName string) (models.Sheet, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return models.Sheet{}, fmt.Errorf("read rows: %w", err)
	}

	sheet := models.Sheet{
		Workbook: workbook,
		Name:     sheetName,
		FirstRow: titleRows + 2,
	}
	if len(rows) <= titleRows {
		return sheet, nil
	}

	maxRow, maxCol := dataExtent(rows)
	width := maxCol + 1
	if hw := len(rows[titleRows]); hw > width {
		width = hw
	}

	sheet.Header = padRow(rows[titleRows], width)
	for rowIdx := titleRows + 1; rowIdx <= maxRow && rowIdx < len(rows); rowIdx++ {
		sheet.Rows = append(sheet.Rows, padRow(rows[rowIdx], width))
	}
	return sheet, nil
}

// padRow copies a row, extended with "" to width cells.
func padRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}
