package btmap

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ukaji3/btmap-go/pkg/btmap/assemble"
	"github.com/ukaji3/btmap-go/pkg/btmap/classify"
	"github.com/ukaji3/btmap-go/pkg/btmap/diagnostic"
	"github.com/ukaji3/btmap-go/pkg/btmap/expand"
	"github.com/ukaji3/btmap-go/pkg/btmap/models"
	"github.com/ukaji3/btmap-go/pkg/btmap/normalize"
	"github.com/ukaji3/btmap-go/pkg/btmap/parser"
)

// errAborted stops a workbook after an earlier workbook failed.
var errAborted = errors.New("aborted after earlier failure")

// SheetReport summarizes what happened to one sheet.
type SheetReport struct {
	Workbook   string               `json:"workbook"`
	Sheet      string               `json:"sheet"`
	Decision   string               `json:"decision"`
	Binding    models.NoticeBinding `json:"binding"`
	Reason     string               `json:"reason,omitempty"`
	Rows       int                  `json:"rows"`
	Placements int                  `json:"placements"`
}

// Result is the output of one extraction run.
type Result struct {
	// Corpus is nil when a fatal error occurred.
	Corpus *models.Corpus
	// Diagnostics is always set, also on fatal errors.
	Diagnostics *diagnostic.Diagnostics
	Sheets      []SheetReport
}

// Extract runs classification, normalization, expansion and assembly over
// every workbook of the corpus at path. A fatal error aborts the run; the
// diagnostics gathered so far are still returned.
func Extract(ctx context.Context, path string, opts Options) (*Result, error) {
	res := &Result{Diagnostics: diagnostic.New()}
	opts.Config.ApplyDefaults()

	p, err := newPipeline(opts)
	if err != nil {
		return res, err
	}

	corpus, err := parser.OpenCorpus(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return res, err
	}
	defer corpus.Close()

	p.logger.Debug("Opened corpus",
		zap.String("path", path),
		zap.Int("workbooks", len(corpus.Sources)),
		zap.String("run", res.Diagnostics.RunID))

	results := make([]workbookResult, len(corpus.Sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Config.Workers)
	for i, src := range corpus.Sources {
		g.Go(func() error {
			results[i] = p.processWorkbook(gctx, i, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	var sheets []models.ExpandedSheet
	for _, r := range results {
		res.Diagnostics.Merge(r.diags)
		res.Sheets = append(res.Sheets, r.reports...)
		if r.err != nil {
			return res, r.err
		}
		sheets = append(sheets, r.sheets...)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.Corpus, err = assemble.Assemble(sheets)
	if err != nil {
		return res, err
	}
	p.logger.Info("Extraction finished",
		zap.Int("sheets", len(sheets)),
		zap.Int("records", len(res.Corpus.Records)),
		zap.Int("diagnostics", res.Diagnostics.Len()))
	return res, nil
}

// Classify lists every sheet of the corpus with its classification,
// without aborting on unknown names.
func Classify(path string, opts Options) ([]SheetReport, error) {
	opts.Config.ApplyDefaults()
	c, err := classify.New(opts.Config.Sheets)
	if err != nil {
		return nil, err
	}
	corpus, err := parser.OpenCorpus(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	defer corpus.Close()

	var reports []SheetReport
	for _, src := range corpus.Sources {
		wb, err := src.Workbook()
		if err != nil {
			return reports, NewExtractionError(src.Name, "", "open", err)
		}
		for _, name := range wb.SheetNames {
			r := c.Classify(name)
			reports = append(reports, SheetReport{
				Workbook: src.Name,
				Sheet:    name,
				Decision: r.Decision.String(),
				Binding:  r.Binding,
				Reason:   r.Reason,
			})
		}
	}
	return reports, nil
}

type pipeline struct {
	classifier *classify.Classifier
	expander   *expand.Expander
	logger     *zap.Logger
	// failed holds the lowest workbook index that hit a fatal error.
	failed atomic.Int64
}

func newPipeline(opts Options) (*pipeline, error) {
	logger := opts.logger()
	c, err := classify.New(opts.Config.Sheets)
	if err != nil {
		return nil, err
	}
	patches, err := opts.patches()
	if err != nil {
		return nil, err
	}
	e, err := expand.New(opts.Config.Expand, patches, logger)
	if err != nil {
		return nil, err
	}
	p := &pipeline{classifier: c, expander: e, logger: logger}
	p.failed.Store(math.MaxInt64)
	return p, nil
}

type workbookResult struct {
	sheets  []models.ExpandedSheet
	reports []SheetReport
	diags   *diagnostic.Diagnostics
	err     error
}

// fail records a fatal error at index i. Later workbooks stop; earlier ones
// finish so the reported error is the first one in corpus order.
func (p *pipeline) fail(i int) {
	for {
		cur := p.failed.Load()
		if int64(i) >= cur || p.failed.CompareAndSwap(cur, int64(i)) {
			return
		}
	}
}

func (p *pipeline) aborted(i int) bool {
	return p.failed.Load() < int64(i)
}

func (p *pipeline) processWorkbook(ctx context.Context, i int, src parser.Source) (out workbookResult) {
	out.diags = diagnostic.New()
	defer func() {
		if out.err != nil && !errors.Is(out.err, errAborted) {
			p.fail(i)
		}
	}()

	if p.aborted(i) {
		out.err = errAborted
		return out
	}
	f, err := src.Open()
	if err != nil {
		out.err = NewExtractionError(src.Name, "", "open", err)
		return out
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			out.err = err
			return out
		}
		if p.aborted(i) {
			out.err = errAborted
			return out
		}

		r := p.classifier.Classify(name)
		report := SheetReport{Workbook: src.Name, Sheet: name, Decision: r.Decision.String(), Binding: r.Binding, Reason: r.Reason}

		switch r.Decision {
		case classify.Ignore:
			p.logger.Debug("Ignoring sheet", zap.String("workbook", src.Name), zap.String("sheet", name))
			out.reports = append(out.reports, report)
			continue
		case classify.Reject:
			out.diags.AddError(diagnostic.KindStructuralViolation, diagnostic.CodeUnknownSheet,
				diagnostic.Context{Workbook: src.Name, Sheet: name}, "%s", r.Reason)
			out.reports = append(out.reports, report)
			out.err = &StructuralViolation{Workbook: src.Name, Sheet: name, Reason: r.Reason}
			return out
		}

		sheet, err := parser.ReadSheet(f, src.Name, name)
		if err != nil {
			out.err = NewExtractionError(src.Name, name, "cells", err)
			return out
		}
		ns, err := normalize.Normalize(sheet, r.Binding)
		if err != nil {
			where := diagnostic.Context{Workbook: src.Name, Sheet: name, EformsNotices: r.Binding.EformsNotices, SFNotice: r.Binding.SFNotice}
			out.diags.AddError(diagnostic.KindStructuralViolation, diagnostic.CodeLayout, where, "%v", err)
			out.reports = append(out.reports, report)
			out.err = &StructuralViolation{Workbook: src.Name, Sheet: name, Reason: err.Error()}
			return out
		}
		es := p.expander.ExpandSheet(ns, out.diags)

		report.Rows = len(ns.Rows)
		report.Placements = len(es.Placements)
		out.reports = append(out.reports, report)
		out.sheets = append(out.sheets, es)

		p.logger.Debug("Expanded sheet",
			zap.String("workbook", src.Name),
			zap.String("sheet", name),
			zap.Strings("eforms", r.Binding.EformsNotices),
			zap.String("sf", r.Binding.SFNotice),
			zap.Int("rows", report.Rows),
			zap.Int("placements", report.Placements))
	}
	return out
}
