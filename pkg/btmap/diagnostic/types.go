package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Kind groups diagnostics by the error taxonomy.
type Kind string

const (
	KindAlignmentAnomaly    Kind = "AlignmentAnomaly"
	KindStructuralViolation Kind = "StructuralViolation"
)

// Codes identifying individual findings.
const (
	// CodeSoftBreak is an info-level AlignmentAnomaly.
	CodeSoftBreak            = "soft-break-collapsed"
	CodeSingleLevelMultiline = "single-level-multiline-element"
	CodeCountMismatch        = "level-element-count-mismatch"
	CodeUnalignable          = "unalignable-row"
	CodeUnknownSheet         = "unknown-sheet-name"
	CodeLayout               = "unexpected-sheet-layout"
)

// Context locates a diagnostic in the corpus.
type Context struct {
	Workbook      string
	Sheet         string
	EformsNotices []string
	SFNotice      string
	// ID is the placement identifier, e.g. "BT-18".
	ID string
	// Line is the 1-based source row, 0 when not row-specific.
	Line int
}

// Diagnostic represents a single finding.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Code     string
	Message  string
	Context  Context
}

// String returns the single-line review form of a diagnostic.
func (d Diagnostic) String() string {
	where := d.Context.Sheet
	if d.Context.Workbook != "" {
		where = d.Context.Workbook + "/" + where
	}
	if d.Context.Line > 0 {
		where = fmt.Sprintf("%s:%d", where, d.Context.Line)
	}
	fields := []string{
		d.Severity.String(),
		string(d.Kind),
		d.Code,
		where,
		"eForms=" + strings.Join(d.Context.EformsNotices, ","),
		"SF=" + d.Context.SFNotice,
		d.Context.ID,
		escape(d.Message),
	}
	return strings.Join(fields, "\t")
}

// escape keeps a diagnostic on one line.
func escape(s string) string {
	s = strings.ReplaceAll(s, "\r", `\r`)
	return strings.ReplaceAll(s, "\n", `\n`)
}
