// Package normalize turns one accepted sheet into clean mapping rows.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ukaji3/btmap-go/pkg/btmap/models"
)

// descriptiveColumns are trimmed and NFC-normalized.
var descriptiveColumns = []string{models.ColumnID, models.ColumnName, models.ColumnDescription, models.ColumnElement}

// Normalize resolves columns, drops rows without mapping information,
// cleans text, and attaches the notice binding to every row.
// The title row must already be skipped.
func Normalize(sheet models.Sheet, binding models.NoticeBinding) (models.NormalizedSheet, error) {
	cols, err := ResolveColumns(sheet)
	if err != nil {
		return models.NormalizedSheet{}, err
	}

	out := models.NormalizedSheet{
		Workbook: sheet.Workbook,
		Name:     sheet.Name,
		Binding:  binding,
	}
	for _, c := range cols {
		out.Columns = append(out.Columns, c.Name)
	}
	out.Columns = append(out.Columns, models.ColumnEformsNotice, models.ColumnSFNotice)

	for r := range sheet.Rows {
		fields := make(map[string]string, len(out.Columns))
		for _, c := range cols {
			fields[c.Name] = CleanCell(sheet.Cell(r, c.Index))
		}
		if strings.TrimSpace(fields[models.ColumnLevel]) == "" {
			continue
		}
		for _, name := range descriptiveColumns {
			if v, ok := fields[name]; ok {
				fields[name] = TrimText(v)
			}
		}
		if fields[models.ColumnID] == "" {
			continue
		}
		fields[models.ColumnEformsNotice] = binding.EformsList()
		fields[models.ColumnSFNotice] = binding.SFNotice

		out.Rows = append(out.Rows, models.MappingRow{
			Workbook: sheet.Workbook,
			Sheet:    sheet.Name,
			Line:     sheet.Line(r),
			Fields:   fields,
			Binding:  binding,
		})
	}
	return out, nil
}

// CleanCell unifies line endings so newline splitting sees one separator.
func CleanCell(v string) string {
	v = strings.ReplaceAll(v, "\r\n", "\n")
	return strings.ReplaceAll(v, "\r", "\n")
}

// TrimText NFC-normalizes and trims surrounding whitespace.
func TrimText(v string) string {
	return strings.TrimSpace(norm.NFC.String(v))
}
