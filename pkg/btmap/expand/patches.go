package expand

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ukaji3/btmap-go/pkg/btmap/models"
)

//go:embed patches.yaml
var defaultPatches []byte

// Fingerprint identifies exactly one known malformed row.
type Fingerprint struct {
	// Eforms is the new-form notice list as written in the sheet name, zero-stripped ("38,39,40").
	Eforms string `yaml:"eforms"`
	SF     string `yaml:"sf"`
	ID     string `yaml:"id"`
	// Level is the exact current Level cell.
	Level string `yaml:"level"`
	// ElementLines is the exact number of lines in the Element cell.
	ElementLines int `yaml:"element_lines"`
}

// Correction is a literal text replacement in one column.
type Correction struct {
	Column  string `yaml:"column"`
	Find    string `yaml:"find"`
	Replace string `yaml:"replace"`
}

// Patch pairs a fingerprint with its correction.
type Patch struct {
	Name        string      `yaml:"name"`
	Fingerprint Fingerprint `yaml:"fingerprint"`
	Correction  Correction  `yaml:"correction"`
}

// Matches reports whether every fingerprint field matches the row.
func (p Patch) Matches(binding models.NoticeBinding, fields map[string]string) bool {
	fp := p.Fingerprint
	return fp.Eforms == binding.EformsList() &&
		fp.SF == binding.SFNotice &&
		fp.ID == fields[models.ColumnID] &&
		fp.Level == fields[models.ColumnLevel] &&
		fp.ElementLines == lineCount(fields[models.ColumnElement])
}

// Apply corrects fields in place when the fingerprint matches.
// It reports whether the text changed.
func (p Patch) Apply(binding models.NoticeBinding, fields map[string]string) bool {
	if !p.Matches(binding, fields) {
		return false
	}
	before := fields[p.Correction.Column]
	after := strings.ReplaceAll(before, p.Correction.Find, p.Correction.Replace)
	fields[p.Correction.Column] = after
	return after != before
}

func (p Patch) validate() error {
	fp := p.Fingerprint
	switch {
	case p.Name == "":
		return fmt.Errorf("patch without name")
	case fp.Eforms == "" || fp.SF == "" || fp.ID == "" || fp.Level == "":
		return fmt.Errorf("patch %q: fingerprint needs eforms, sf, id and level", p.Name)
	case fp.ElementLines <= 0:
		return fmt.Errorf("patch %q: fingerprint needs element_lines > 0", p.Name)
	case p.Correction.Column != models.ColumnLevel && p.Correction.Column != models.ColumnElement:
		return fmt.Errorf("patch %q: column must be %s or %s", p.Name, models.ColumnLevel, models.ColumnElement)
	case p.Correction.Find == "":
		return fmt.Errorf("patch %q: empty find text", p.Name)
	}
	return nil
}

// LoadPatches decodes a YAML patch table.
func LoadPatches(r io.Reader) ([]Patch, error) {
	var patches []Patch
	if err := yaml.NewDecoder(r).Decode(&patches); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode patches: %w", err)
	}
	for _, p := range patches {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}
	return patches, nil
}

// LoadPatchFile reads a patch table from disk. An empty path yields the built-in table.
func LoadPatchFile(path string) ([]Patch, error) {
	if path == "" {
		return DefaultPatches(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open patches: %w", err)
	}
	defer f.Close()
	return LoadPatches(f)
}

// DefaultPatches returns the built-in patch table.
func DefaultPatches() []Patch {
	patches, err := LoadPatches(bytes.NewReader(defaultPatches))
	if err != nil {
		panic(err)
	}
	return patches
}

func lineCount(s string) int {
	return strings.Count(s, "\n") + 1
}
