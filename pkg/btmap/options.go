// Package btmap extracts a flat table of BT placements from a corpus of
// eForms vs standard forms mapping workbooks.
package btmap

import (
	"go.uber.org/zap"

	"github.com/ukaji3/btmap-go/pkg/btmap/config"
	"github.com/ukaji3/btmap-go/pkg/btmap/expand"
)

// Options configures extraction behavior.
type Options struct {
	// Config holds classification and expansion rules.
	Config config.Config
	// Patches replaces the exception patch table.
	// If nil, Config.Expand.PatchesFile is loaded, or the built-in table.
	Patches []expand.Patch
	// Logger receives progress and diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns default extraction options.
func DefaultOptions() Options {
	return Options{
		Config: config.Default(),
	}
}

// logger returns the configured logger or a no-op one.
func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

// patches returns the patch table to apply.
func (o Options) patches() ([]expand.Patch, error) {
	if o.Patches != nil {
		return o.Patches, nil
	}
	return expand.LoadPatchFile(o.Config.Expand.PatchesFile)
}
