package expand

import (
	"regexp"
	"strings"
)

// softBreaker joins lines that upstream text wrapping split in the middle of a sentence.
type softBreaker struct {
	patterns []*regexp.Regexp
}

func newSoftBreaker(patterns []string) (*softBreaker, error) {
	sb := &softBreaker{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		sb.patterns = append(sb.patterns, re)
	}
	return sb, nil
}

// collapse replaces each soft break with a single space and returns what it joined.
func (sb *softBreaker) collapse(s string) (string, []string) {
	var joined []string
	for _, re := range sb.patterns {
		if ms := re.FindAllString(s, -1); len(ms) > 0 {
			joined = append(joined, ms...)
			s = re.ReplaceAllString(s, " ${1}")
		}
	}
	return s, joined
}

// collapseBlankLines drops lines that are empty or hold only whitespace.
func collapseBlankLines(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
