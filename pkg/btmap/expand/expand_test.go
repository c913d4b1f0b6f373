package expand

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ukaji3/btmap-go/pkg/btmap/config"
	"github.com/ukaji3/btmap-go/pkg/btmap/diagnostic"
	"github.com/ukaji3/btmap-go/pkg/btmap/models"
)

var binding = models.NoticeBinding{EformsNotices: []string{"15", "18"}, SFNotice: "7"}

func mappingRow(id, level, element string) models.MappingRow {
	return models.MappingRow{
		Workbook: "book.xlsx",
		Sheet:    "eForm15,18 vs SF07",
		Line:     10,
		Binding:  binding,
		Fields: map[string]string{
			models.ColumnIndentLevel:  "++",
			models.ColumnID:           id,
			models.ColumnName:         "Name of " + id,
			models.ColumnLevel:        level,
			models.ColumnElement:      element,
			models.ColumnEformsNotice: "15,18",
			models.ColumnSFNotice:     "7",
		},
	}
}

func levels(ps []models.Placement) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Level())
	}
	return out
}

func elements(ps []models.Placement) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Element())
	}
	return out
}

func TestExpandTwoLevels(t *testing.T) {
	diags := diagnostic.New()
	row := mappingRow("BT-18", "I.3.4.1.1\nI.3.4.1.2", "Main address\nOther address")

	ps, err := Default().Expand(row, diags)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, []string{"I.3.4.1.1", "I.3.4.1.2"}, levels(ps))
	assert.Equal(t, []string{"Main address", "Other address"}, elements(ps))
	for _, p := range ps {
		assert.Equal(t, "BT-18", p.Fields[models.ColumnID])
		assert.Equal(t, "++", p.Fields[models.ColumnIndentLevel])
		assert.Equal(t, "15,18", p.Fields[models.ColumnEformsNotice])
		assert.Equal(t, []string{"15", "18"}, p.Binding.EformsNotices)
		assert.Equal(t, 10, p.Line)
	}
	assert.Zero(t, diags.Len())
}

func TestExpandSingleLevelIsUnchanged(t *testing.T) {
	diags := diagnostic.New()
	row := mappingRow("BT-24", "II.1.4", "Short description")

	ps, err := Default().Expand(row, diags)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, row.Fields, ps[0].Fields)
	assert.Zero(t, diags.Len())
}

func TestExpandSingleLevelMultilineElement(t *testing.T) {
	diags := diagnostic.New()
	row := mappingRow("BT-747", "III.2.1.1.1", "Economic operators\nTechnical ability")

	ps, err := Default().Expand(row, diags)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "Economic operators\nTechnical ability", ps[0].Element())

	anomalies := diags.ByKind(diagnostic.KindAlignmentAnomaly)
	require.Len(t, anomalies, 1)
	assert.Equal(t, 1, diags.Len())
	assert.Equal(t, diagnostic.CodeSingleLevelMultiline, anomalies[0].Code)
	assert.Equal(t, "BT-747", anomalies[0].Context.ID)
	assert.Equal(t, "7", anomalies[0].Context.SFNotice)
}

func TestExpandRepeatsLastElement(t *testing.T) {
	diags := diagnostic.New()
	row := mappingRow("BT-5", "II.2.1\nII.2.2\nII.2.3", "Lot title")

	ps, err := Default().Expand(row, diags)
	require.NoError(t, err)
	assert.Equal(t, []string{"II.2.1", "II.2.2", "II.2.3"}, levels(ps))
	assert.Equal(t, []string{"Lot title", "Lot title", "Lot title"}, elements(ps))
	assert.Zero(t, diags.Len())
}

func TestExpandTrimsElementOnBothPaths(t *testing.T) {
	single, err := Default().Expand(mappingRow("BT-24", "II.1.4", "  Short  "), diagnostic.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"Short"}, elements(single))

	multi, err := Default().Expand(mappingRow("BT-24", "II.1.4\nII.1.5", "  Short  \n Long "), diagnostic.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"Short", "Long"}, elements(multi))
}

func TestExpandPadsShortElementList(t *testing.T) {
	row := mappingRow("BT-5", "II.2.1\nII.2.2\nII.2.3", "First\nSecond")
	ps, err := Default().Expand(row, diagnostic.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second", "Second"}, elements(ps))
}

func TestExpandTooManyElements(t *testing.T) {
	diags := diagnostic.New()
	row := mappingRow("BT-6", "II.1\nII.2", "One\nTwo\nThree")

	ps, err := Default().Expand(row, diags)
	require.NoError(t, err)
	assert.Equal(t, []string{"II.1", "II.2"}, levels(ps))
	assert.Equal(t, []string{"One", "Two"}, elements(ps))

	mismatch := diags.ByCode(diagnostic.CodeCountMismatch)
	require.Len(t, mismatch, 1)
	assert.Contains(t, mismatch[0].Message, `"II.1" "II.2"`)
	assert.Contains(t, mismatch[0].Message, `"Three"`)
	assert.Equal(t, "eForm15,18 vs SF07", mismatch[0].Context.Sheet)
}

func TestExpandStripsSurroundingNewlines(t *testing.T) {
	row := mappingRow("BT-7", "\nI.1\nI.2\n", "A\nB\n")
	ps, err := Default().Expand(row, diagnostic.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"I.1", "I.2"}, levels(ps))
	assert.Equal(t, []string{"A", "B"}, elements(ps))
}

func TestExpandCollapsesBlankLines(t *testing.T) {
	row := mappingRow("BT-8", "I.1\nI.2", "A\n\nB")
	ps, err := Default().Expand(row, diagnostic.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, elements(ps))
}

func TestExpandSoftBreaks(t *testing.T) {
	diags := diagnostic.New()
	row := mappingRow("BT-9", "VI.3.1\nVI.3.2", "Persons with disabilities;\n(Only in some cases)\nReview body\nand address Directive 2014/24/EU of\n2014")

	ps, err := Default().Expand(row, diags)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Persons with disabilities; (Only in some cases)",
		"Review body and address Directive 2014/24/EU of 2014",
	}, elements(ps))

	breaks := diags.ByCode(diagnostic.CodeSoftBreak)
	require.Len(t, breaks, 3)
	for _, b := range breaks {
		assert.Equal(t, diagnostic.SeverityInfo, b.Severity)
		assert.Equal(t, diagnostic.KindAlignmentAnomaly, b.Kind)
	}
	assert.Equal(t, 3, diags.Len())
}

func TestExpandFiltersAnnexSubLevels(t *testing.T) {
	row := mappingRow("BT-10", "IV.1.1\nAD1.1\nIV.1.2", "Procedure\nJustification\nAccelerated")
	ps, err := Default().Expand(row, diagnostic.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"IV.1.1", "IV.1.2"}, levels(ps))
	assert.Equal(t, []string{"Procedure", "Accelerated"}, elements(ps))
	for _, p := range ps {
		assert.False(t, strings.HasPrefix(p.Level(), "A"))
	}
}

func TestExpandKeepsSingleAnnexLevel(t *testing.T) {
	row := mappingRow("BT-11", "AD1", "Justification")
	ps, err := Default().Expand(row, diagnostic.New())
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, row.Fields, ps[0].Fields)
}

func TestExpandSingleLevelWithSurroundingNewlines(t *testing.T) {
	for _, level := range []string{"III.2.1.1.1\n", "\nIII.2.1.1.1", "\nIII.2.1.1.1\n"} {
		diags := diagnostic.New()
		row := mappingRow("BT-747", level, "Economic operators\nTechnical ability")

		ps, err := Default().Expand(row, diags)
		require.NoError(t, err, level)
		require.Len(t, ps, 1, level)
		assert.Equal(t, "III.2.1.1.1", ps[0].Level(), level)
		assert.Equal(t, "Economic operators\nTechnical ability", ps[0].Element(), level)

		require.Equal(t, 1, diags.Len(), level)
		assert.Equal(t, diagnostic.CodeSingleLevelMultiline, diags.All()[0].Code, level)
	}
}

func TestExpandDropsWhitespaceOnlyLines(t *testing.T) {
	diags := diagnostic.New()
	row := mappingRow("BT-8", "I.1\nI.2", "A\n \nB\n\t")

	ps, err := Default().Expand(row, diags)
	require.NoError(t, err)
	assert.Equal(t, []string{"I.1", "I.2"}, levels(ps))
	assert.Equal(t, []string{"A", "B"}, elements(ps))
	assert.Zero(t, diags.Len())
}

func TestExpandUnalignableRow(t *testing.T) {
	diags := diagnostic.New()
	row := mappingRow("BT-12", "I.1\nI.2", "\n")

	_, err := Default().Expand(row, diags)
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, "BT-12", rowErr.ID)
	assert.Equal(t, 10, rowErr.Line)
}

func TestExpandSheetContinuesAfterUnalignableRow(t *testing.T) {
	diags := diagnostic.New()
	sheet := models.NormalizedSheet{
		Workbook: "book.xlsx",
		Name:     "eForm15,18 vs SF07",
		Columns:  []string{"ID", "Level", "Element"},
		Binding:  binding,
		Rows: []models.MappingRow{
			mappingRow("BT-1", "I.1\nI.2", ""),
			mappingRow("BT-2", "I.3", "Kept"),
		},
	}
	out := Default().ExpandSheet(sheet, diags)
	require.Len(t, out.Placements, 1)
	assert.Equal(t, "BT-2", out.Placements[0].Fields[models.ColumnID])
	assert.Equal(t, sheet.Columns, out.Columns)

	unalignable := diags.ByCode(diagnostic.CodeUnalignable)
	require.Len(t, unalignable, 1)
	assert.Equal(t, "BT-1", unalignable[0].Context.ID)
}

func TestExpandDoesNotMutateRow(t *testing.T) {
	row := mappingRow("BT-13", "I.1\nI.2", "A\nand B")
	before := make(map[string]string)
	for k, v := range row.Fields {
		before[k] = v
	}
	ps, err := Default().Expand(row, diagnostic.New())
	require.NoError(t, err)
	require.Len(t, ps, 2)
	ps[0].Fields[models.ColumnName] = "changed"
	ps[0].Binding.EformsNotices[0] = "99"

	assert.Equal(t, before, row.Fields)
	assert.Equal(t, "15", row.Binding.EformsNotices[0])
	assert.Equal(t, "Name of BT-13", ps[1].Fields[models.ColumnName])
}

func TestExpandPairsEveryLevel(t *testing.T) {
	cases := []struct{ level, element string }{
		{"I.1\nI.2\nI.3", "a\nb\nc"},
		{"I.1\nI.2\nI.3", "a"},
		{"I.1\nI.2\nI.3", "a\nb\nc\nd"},
		{"I.1\nA.2\nI.3", "a\nb"},
		{"I.1", "a\nb"},
	}
	for _, c := range cases {
		ps, err := Default().Expand(mappingRow("BT-1", c.level, c.element), diagnostic.New())
		require.NoError(t, err)
		for _, p := range ps {
			assert.NotContains(t, p.Level(), "\n")
			assert.False(t, strings.HasPrefix(p.Level(), "A"))
		}
	}
}

func TestExpandIsDeterministic(t *testing.T) {
	row := mappingRow("BT-14", "I.1\nI.2\nAX\nI.3", "a\nb and\nor c\nd")
	first, err := Default().Expand(row, diagnostic.New())
	require.NoError(t, err)
	second, err := Default().Expand(row, diagnostic.New())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExpandLogsDiagnostics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e, err := New(config.Default().Expand, nil, zap.New(core))
	require.NoError(t, err)

	_, err = e.Expand(mappingRow("BT-15", "I.1", "a\nb"), diagnostic.New())
	require.NoError(t, err)

	warned := logs.FilterMessage("Diagnostic").FilterField(zap.String("code", diagnostic.CodeSingleLevelMultiline))
	assert.Equal(t, 1, warned.Len())
	assert.Equal(t, zapcore.WarnLevel, warned.All()[0].Level)
}

func TestNewRejectsBadSoftBreakPattern(t *testing.T) {
	_, err := New(config.ExpandConfig{SoftBreakPatterns: []string{"("}}, nil, nil)
	assert.Error(t, err)
}
