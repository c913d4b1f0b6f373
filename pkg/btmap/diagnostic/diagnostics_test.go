package diagnostic

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsAccumulate(t *testing.T) {
	d := New()
	require.NotEmpty(t, d.RunID)

	ctx := Context{Workbook: "book.xlsx", Sheet: "eForm15 vs SF02", EformsNotices: []string{"15"}, SFNotice: "2", ID: "BT-18", Line: 7}
	d.AddInfo(KindAlignmentAnomaly, CodeSoftBreak, ctx, "collapsed %q", "\nand")
	d.AddWarning(KindAlignmentAnomaly, CodeCountMismatch, ctx, "levels=%d elements=%d", 3, 2)

	assert.Equal(t, 2, d.Len())
	assert.False(t, d.HasErrors())
	assert.NoError(t, d.Error())
	assert.Len(t, d.ByKind(KindAlignmentAnomaly), 2)
	assert.Len(t, d.ByCode(CodeSoftBreak), 1)

	d.AddError(KindStructuralViolation, CodeUnknownSheet, Context{Sheet: "Random Sheet"}, "unmatched sheet name %q", "Random Sheet")
	assert.True(t, d.HasErrors())
	assert.ErrorContains(t, d.Error(), "Random Sheet")
}

func TestDiagnosticsMergeKeepsOrder(t *testing.T) {
	a := New()
	b := New()
	a.AddInfo(KindAlignmentAnomaly, CodeSoftBreak, Context{Sheet: "a"}, "first")
	b.AddInfo(KindAlignmentAnomaly, CodeSoftBreak, Context{Sheet: "b"}, "second")
	b.AddInfo(KindAlignmentAnomaly, CodeSoftBreak, Context{Sheet: "b"}, "third")
	a.Merge(b)
	a.Merge(nil)

	var msgs []string
	for _, item := range a.All() {
		msgs = append(msgs, item.Message)
	}
	assert.Equal(t, []string{"first", "second", "third"}, msgs)
}

func TestDiagnosticStringIsSingleLine(t *testing.T) {
	diag := Diagnostic{
		Severity: SeverityWarning,
		Kind:     KindAlignmentAnomaly,
		Code:     CodeSingleLevelMultiline,
		Message:  "element has a newline:\nline two",
		Context:  Context{Workbook: "b.xlsx", Sheet: "eForm15,18 vs SF07", EformsNotices: []string{"15", "18"}, SFNotice: "7", ID: "BT-1", Line: 3},
	}
	s := diag.String()
	assert.NotContains(t, s, "\n")
	assert.Equal(t, "warning\tAlignmentAnomaly\tsingle-level-multiline-element\tb.xlsx/eForm15,18 vs SF07:3\teForms=15,18\tSF=7\tBT-1\telement has a newline:\\nline two", s)
}

func TestWriteTo(t *testing.T) {
	d := New()
	d.AddInfo(KindAlignmentAnomaly, CodeSoftBreak, Context{Sheet: "s"}, "one")
	d.AddInfo(KindAlignmentAnomaly, CodeSoftBreak, Context{Sheet: "s"}, "two")

	var buf bytes.Buffer
	n, err := d.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}
