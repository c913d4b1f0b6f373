// Package assemble concatenates expanded sheets into the flat corpus table.
package assemble

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"

	"github.com/ukaji3/btmap-go/pkg/btmap/models"
)

// Assemble concatenates sheets in the given order and writes one record per
// new-form notice of each placement.
func Assemble(sheets []models.ExpandedSheet) (*models.Corpus, error) {
	corpus := &models.Corpus{Columns: unionColumns(sheets)}
	for _, sheet := range sheets {
		for _, p := range sheet.Placements {
			notices := p.Binding.EformsNotices
			if len(notices) == 0 {
				notices = []string{p.Fields[models.ColumnEformsNotice]}
			}
			for _, notice := range notices {
				var fields map[string]string
				if err := deepcopy.Copy(&fields, p.Fields); err != nil {
					return nil, fmt.Errorf("copy placement %s:%d: %w", p.Sheet, p.Line, err)
				}
				if fields == nil {
					fields = make(map[string]string, 2)
				}
				fields[models.ColumnEformsNotice] = notice
				fields[models.ColumnSFNotice] = p.Binding.SFNotice
				corpus.Records = append(corpus.Records, models.Record{
					Workbook: p.Workbook,
					Sheet:    p.Sheet,
					Fields:   fields,
				})
			}
		}
	}
	return corpus, nil
}

// unionColumns merges sheet columns in first-seen order, notice columns last.
func unionColumns(sheets []models.ExpandedSheet) []string {
	seen := map[string]bool{
		models.ColumnEformsNotice: true,
		models.ColumnSFNotice:     true,
	}
	var cols []string
	for _, sheet := range sheets {
		for _, c := range sheet.Columns {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return append(cols, models.ColumnEformsNotice, models.ColumnSFNotice)
}
