package diagnostic

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Diagnostics holds all diagnostics of one run, in emission order.
type Diagnostics struct {
	// RunID identifies the run that produced the diagnostics.
	RunID string
	items []Diagnostic
}

// New creates an empty accumulator with a fresh run identifier.
func New() *Diagnostics {
	return &Diagnostics{RunID: uuid.NewString()}
}

// Add appends a diagnostic.
func (d *Diagnostics) Add(diag Diagnostic) {
	d.items = append(d.items, diag)
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(kind Kind, code string, ctx Context, format string, args ...any) {
	d.Add(Diagnostic{Severity: SeverityInfo, Kind: kind, Code: code, Context: ctx, Message: fmt.Sprintf(format, args...)})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(kind Kind, code string, ctx Context, format string, args ...any) {
	d.Add(Diagnostic{Severity: SeverityWarning, Kind: kind, Code: code, Context: ctx, Message: fmt.Sprintf(format, args...)})
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(kind Kind, code string, ctx Context, format string, args ...any) {
	d.Add(Diagnostic{Severity: SeverityError, Kind: kind, Code: code, Context: ctx, Message: fmt.Sprintf(format, args...)})
}

// Merge appends another accumulator's diagnostics, keeping their order.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.items = append(d.items, other.items...)
}

// All returns a copy of all diagnostics in emission order.
func (d *Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, len(d.items))
	copy(out, d.items)
	return out
}

// Len returns the number of diagnostics.
func (d *Diagnostics) Len() int {
	return len(d.items)
}

// ByKind returns the diagnostics of one kind.
func (d *Diagnostics) ByKind(kind Kind) []Diagnostic {
	var out []Diagnostic
	for _, item := range d.items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

// ByCode returns the diagnostics with one code.
func (d *Diagnostics) ByCode(code string) []Diagnostic {
	var out []Diagnostic
	for _, item := range d.items {
		if item.Code == code {
			out = append(out, item)
		}
	}
	return out
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Error returns a combined error from all error diagnostics, or nil.
func (d *Diagnostics) Error() error {
	var parts []string
	for _, item := range d.items {
		if item.Severity == SeverityError {
			parts = append(parts, item.String())
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return errors.New(strings.Join(parts, "; "))
}

// WriteTo writes one line per diagnostic.
func (d *Diagnostics) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, item := range d.items {
		n, err := io.WriteString(w, item.String()+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
