// Package expand turns one mapping row into one placement per level.
package expand

import (
	"fmt"
	"strings"

	"github.com/tiendc/go-deepcopy"
	"go.uber.org/zap"

	"github.com/ukaji3/btmap-go/pkg/btmap/config"
	"github.com/ukaji3/btmap-go/pkg/btmap/diagnostic"
	"github.com/ukaji3/btmap-go/pkg/btmap/models"
)

// RowError reports a row whose levels and elements cannot be aligned at all.
// Only that row is skipped.
type RowError struct {
	Sheet  string
	Line   int
	ID     string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("sheet %q row %d (%s): %s", e.Sheet, e.Line, e.ID, e.Reason)
}

// Expander splits multi-placement rows.
type Expander struct {
	softBreaks  *softBreaker
	patches     []Patch
	annexMarker string
	logger      *zap.Logger
}

// New builds an expander. A nil logger disables logging.
func New(cfg config.ExpandConfig, patches []Patch, logger *zap.Logger) (*Expander, error) {
	sb, err := newSoftBreaker(cfg.SoftBreakPatterns)
	if err != nil {
		return nil, fmt.Errorf("compile soft break patterns: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Expander{
		softBreaks:  sb,
		patches:     patches,
		annexMarker: cfg.AnnexMarker,
		logger:      logger,
	}, nil
}

// Default returns an expander with the default configuration and patch table.
func Default() *Expander {
	e, err := New(config.Default().Expand, DefaultPatches(), nil)
	if err != nil {
		panic(err)
	}
	return e
}

// ExpandSheet expands every row of a sheet. Rows that cannot be aligned are
// reported and skipped; the rest of the sheet is still expanded.
func (e *Expander) ExpandSheet(sheet models.NormalizedSheet, diags *diagnostic.Diagnostics) models.ExpandedSheet {
	out := models.ExpandedSheet{
		Workbook: sheet.Workbook,
		Name:     sheet.Name,
		Columns:  sheet.Columns,
	}
	for _, row := range sheet.Rows {
		placements, err := e.Expand(row, diags)
		if err != nil {
			e.report(diags, diagnostic.Diagnostic{
				Severity: diagnostic.SeverityWarning,
				Kind:     diagnostic.KindAlignmentAnomaly,
				Code:     diagnostic.CodeUnalignable,
				Context:  contextOf(row),
				Message:  err.Error(),
			})
			continue
		}
		out.Placements = append(out.Placements, placements...)
	}
	return out
}

// Expand returns one placement per (level, element) pair of the row.
// The row itself is never modified.
func (e *Expander) Expand(row models.MappingRow, diags *diagnostic.Diagnostics) ([]models.Placement, error) {
	ctx := contextOf(row)

	fields := make(map[string]string, len(row.Fields))
	if err := deepcopy.Copy(&fields, row.Fields); err != nil {
		return nil, e.rowError(row, "copy fields: "+err.Error())
	}

	element := collapseBlankLines(fields[models.ColumnElement])
	element, joined := e.softBreaks.collapse(element)
	for _, j := range joined {
		e.report(diags, diagnostic.Diagnostic{
			Severity: diagnostic.SeverityInfo,
			Kind:     diagnostic.KindAlignmentAnomaly,
			Code:     diagnostic.CodeSoftBreak,
			Context:  ctx,
			Message:  fmt.Sprintf("collapsed soft line break %q", j),
		})
	}
	fields[models.ColumnElement] = element

	for _, p := range e.patches {
		if p.Apply(row.Binding, fields) {
			e.logger.Debug("Applied patch",
				zap.String("patch", p.Name),
				zap.String("sheet", row.Sheet),
				zap.String("id", row.ID()))
		}
	}

	level := strings.Trim(fields[models.ColumnLevel], "\n")
	element = fields[models.ColumnElement]

	if !strings.Contains(level, "\n") {
		if strings.Contains(element, "\n") {
			e.report(diags, diagnostic.Diagnostic{
				Severity: diagnostic.SeverityWarning,
				Kind:     diagnostic.KindAlignmentAnomaly,
				Code:     diagnostic.CodeSingleLevelMultiline,
				Context:  ctx,
				Message:  fmt.Sprintf("single level %q paired with multi-line element %q", level, element),
			})
		}
		p, err := e.placement(row, fields, level, strings.TrimSpace(element))
		if err != nil {
			return nil, err
		}
		return []models.Placement{p}, nil
	}

	levels := strings.Split(level, "\n")
	elementText := strings.Trim(element, "\n")
	if strings.TrimSpace(elementText) == "" {
		return nil, e.rowError(row, fmt.Sprintf("no element values to pair with levels %q", levels))
	}
	elements := strings.Split(elementText, "\n")

	if len(elements) < len(levels) {
		last := elements[len(elements)-1]
		for len(elements) < len(levels) {
			elements = append(elements, last)
		}
	}
	n := len(levels)
	if len(elements) != len(levels) {
		e.report(diags, diagnostic.Diagnostic{
			Severity: diagnostic.SeverityWarning,
			Kind:     diagnostic.KindAlignmentAnomaly,
			Code:     diagnostic.CodeCountMismatch,
			Context:  ctx,
			Message:  fmt.Sprintf("%d levels %q vs %d elements %q", len(levels), levels, len(elements), elements),
		})
		n = min(len(levels), len(elements))
	}

	var out []models.Placement
	for i := 0; i < n; i++ {
		lv := strings.TrimSpace(levels[i])
		if lv == "" || e.isAnnex(lv) {
			continue
		}
		p, err := e.placement(row, fields, lv, strings.TrimSpace(elements[i]))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// isAnnex reports whether a split sub-level belongs to the non-mapping annex section.
func (e *Expander) isAnnex(level string) bool {
	return e.annexMarker != "" && strings.HasPrefix(strings.TrimSpace(level), e.annexMarker)
}

func (e *Expander) placement(row models.MappingRow, fields map[string]string, level, element string) (models.Placement, error) {
	p := models.Placement{
		Workbook: row.Workbook,
		Sheet:    row.Sheet,
		Line:     row.Line,
	}
	if err := deepcopy.Copy(&p.Fields, fields); err != nil {
		return p, e.rowError(row, "copy fields: "+err.Error())
	}
	if p.Fields == nil {
		p.Fields = make(map[string]string, 2)
	}
	if err := deepcopy.Copy(&p.Binding, row.Binding); err != nil {
		return p, e.rowError(row, "copy binding: "+err.Error())
	}
	p.Fields[models.ColumnLevel] = level
	p.Fields[models.ColumnElement] = element
	return p, nil
}

func (e *Expander) rowError(row models.MappingRow, reason string) *RowError {
	return &RowError{Sheet: row.Sheet, Line: row.Line, ID: row.ID(), Reason: reason}
}

func (e *Expander) report(diags *diagnostic.Diagnostics, d diagnostic.Diagnostic) {
	if diags != nil {
		diags.Add(d)
	}
	fields := []zap.Field{
		zap.String("code", d.Code),
		zap.String("sheet", d.Context.Sheet),
		zap.Int("line", d.Context.Line),
		zap.String("id", d.Context.ID),
		zap.String("message", d.Message),
	}
	if d.Severity == diagnostic.SeverityInfo {
		e.logger.Info("Diagnostic", fields...)
		return
	}
	e.logger.Warn("Diagnostic", fields...)
}

func contextOf(row models.MappingRow) diagnostic.Context {
	return diagnostic.Context{
		Workbook:      row.Workbook,
		Sheet:         row.Sheet,
		EformsNotices: row.Binding.EformsNotices,
		SFNotice:      row.Binding.SFNotice,
		ID:            row.ID(),
		Line:          row.Line,
	}
}
