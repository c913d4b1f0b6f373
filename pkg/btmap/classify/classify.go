// Package classify decides, from its name alone, what to do with a sheet.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ukaji3/btmap-go/pkg/btmap/config"
	"github.com/ukaji3/btmap-go/pkg/btmap/models"
)

// Decision is the outcome of classifying a sheet name.
type Decision int

const (
	// Ignore marks administrative, legend, and cross-reference sheets.
	Ignore Decision = iota
	// Reject marks names that match no known pattern.
	Reject
	// Accept marks mapping sheets; the binding holds their notice numbers.
	Accept
)

// String returns a human-readable decision name.
func (d Decision) String() string {
	switch d {
	case Ignore:
		return "ignore"
	case Reject:
		return "reject"
	case Accept:
		return "accept"
	default:
		return "unknown"
	}
}

// Result is the classification of one sheet.
type Result struct {
	Sheet    string
	Decision Decision
	// Binding is set for Accept.
	Binding models.NoticeBinding
	// Reason is set for Reject.
	Reason string
}

// Classifier matches sheet names against ignore and accept rules.
type Classifier struct {
	ignoreNames    map[string]struct{}
	ignorePatterns []*regexp.Regexp
	accept         *regexp.Regexp
}

// New compiles a classifier from configuration.
func New(cfg config.SheetsConfig) (*Classifier, error) {
	c := &Classifier{ignoreNames: make(map[string]struct{}, len(cfg.IgnoreNames))}
	for _, name := range cfg.IgnoreNames {
		c.ignoreNames[name] = struct{}{}
	}
	for _, p := range cfg.IgnorePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile ignore pattern %q: %w", p, err)
		}
		c.ignorePatterns = append(c.ignorePatterns, re)
	}
	re, err := regexp.Compile(cfg.AcceptPattern)
	if err != nil {
		return nil, fmt.Errorf("compile accept pattern %q: %w", cfg.AcceptPattern, err)
	}
	if re.NumSubexp() < 2 {
		return nil, fmt.Errorf("accept pattern %q: need 2 capture groups", cfg.AcceptPattern)
	}
	c.accept = re
	return c, nil
}

// Default returns a classifier built from the default configuration.
func Default() *Classifier {
	c, err := New(config.Default().Sheets)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns Ignore, Reject or Accept for a sheet name.
func (c *Classifier) Classify(sheetName string) Result {
	name := strings.TrimSpace(sheetName)
	if _, ok := c.ignoreNames[name]; ok {
		return Result{Sheet: sheetName, Decision: Ignore}
	}
	for _, re := range c.ignorePatterns {
		if re.MatchString(name) {
			return Result{Sheet: sheetName, Decision: Ignore}
		}
	}

	m := c.accept.FindStringSubmatch(name)
	if m == nil {
		return Result{
			Sheet:    sheetName,
			Decision: Reject,
			Reason:   fmt.Sprintf("sheet name %q matches no known pattern", sheetName),
		}
	}

	var eforms []string
	for _, n := range strings.Split(m[1], ",") {
		eforms = append(eforms, StripZeros(strings.TrimSpace(n)))
	}
	return Result{
		Sheet:    sheetName,
		Decision: Accept,
		Binding: models.NoticeBinding{
			EformsNotices: eforms,
			SFNotice:      StripZeros(m[2]),
		},
	}
}

// StripZeros removes leading zeros so "07" joins against "7".
func StripZeros(n string) string {
	s := strings.TrimLeft(n, "0")
	if s == "" && n != "" {
		return "0"
	}
	return s
}
