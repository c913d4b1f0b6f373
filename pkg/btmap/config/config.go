// Package config loads btmap configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config holds all btmap configuration.
type Config struct {
	// Sheet classification rules
	Sheets SheetsConfig `yaml:"sheets"`

	// Placement expansion rules
	Expand ExpandConfig `yaml:"expand"`

	// Workers bounds how many workbooks are processed concurrently.
	Workers int `yaml:"workers"`
}

// SheetsConfig configures the sheet classifier.
type SheetsConfig struct {
	// IgnoreNames are exact administrative/legend sheet names.
	IgnoreNames []string `yaml:"ignore_names"`
	// IgnorePatterns are regular expressions for cross-reference sheets.
	IgnorePatterns []string `yaml:"ignore_patterns"`
	// AcceptPattern must capture the new-form notice list (group 1)
	// and the old-form notice number (group 2).
	AcceptPattern string `yaml:"accept_pattern"`
}

// ExpandConfig configures the placement expander.
type ExpandConfig struct {
	// SoftBreakPatterns match a newline followed by a continuation; group 1
	// captures the continuation, which is kept after a single space.
	SoftBreakPatterns []string `yaml:"soft_break_patterns"`
	// AnnexMarker prefixes sub-levels that belong to a non-mapping annex section.
	AnnexMarker string `yaml:"annex_marker"`
	// PatchesFile is an optional YAML patch table replacing the built-in one.
	PatchesFile string `yaml:"patches_file"`
}

// Default values.
var (
	DefaultIgnoreNames = []string{"Legend", "Index", "Cover", "Summary", "Changes"}

	DefaultIgnorePatterns = []string{
		`(?i)^legend\b`,
		`(?i)^(annex|index)\b`,
		`(?i)cross[- ]?ref`,
		`(?i)\bvs T ?0?\d+$`,
	}

	DefaultAcceptPattern = `^eForms? ?(\d+(?:\s*,\s*\d+)*) vs SF ?(\d+)$`

	DefaultSoftBreakPatterns = []string{
		`\n((?:and|or|of|in|on|to|for|with|by|from|the|a|an|as|at|which|where|when|if|not|other|including|under)\b)`,
		`\n(\()`,
		`\n((?:19|20)\d{2}\b)`,
	}

	DefaultAnnexMarker = "A"
	DefaultWorkers     = 1
)

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// Load reads configuration from path. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config file not found: %s", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.Sheets.IgnoreNames == nil {
		c.Sheets.IgnoreNames = append([]string(nil), DefaultIgnoreNames...)
	}
	if c.Sheets.IgnorePatterns == nil {
		c.Sheets.IgnorePatterns = append([]string(nil), DefaultIgnorePatterns...)
	}
	if c.Sheets.AcceptPattern == "" {
		c.Sheets.AcceptPattern = DefaultAcceptPattern
	}
	if c.Expand.SoftBreakPatterns == nil {
		c.Expand.SoftBreakPatterns = append([]string(nil), DefaultSoftBreakPatterns...)
	}
	if c.Expand.AnnexMarker == "" {
		c.Expand.AnnexMarker = DefaultAnnexMarker
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
}

// Validate checks that every regular expression compiles and has the expected groups.
func (c Config) Validate() error {
	for _, p := range c.Sheets.IgnorePatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("sheets.ignore_patterns: %w", err)
		}
	}
	re, err := regexp.Compile(c.Sheets.AcceptPattern)
	if err != nil {
		return fmt.Errorf("sheets.accept_pattern: %w", err)
	}
	if re.NumSubexp() < 2 {
		return fmt.Errorf("sheets.accept_pattern: need 2 capture groups, got %d", re.NumSubexp())
	}
	for _, p := range c.Expand.SoftBreakPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("expand.soft_break_patterns: %w", err)
		}
		if re.NumSubexp() != 1 {
			return fmt.Errorf("expand.soft_break_patterns: %q must have exactly 1 capture group", p)
		}
	}
	return nil
}
