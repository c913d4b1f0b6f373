package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ukaji3/btmap-go/pkg/btmap"
	"github.com/ukaji3/btmap-go/pkg/btmap/output"
	"github.com/ukaji3/btmap-go/pkg/btmap/store"
	"github.com/ukaji3/btmap-go/pkg/btmap/xpath"
)

func runExtract(cmd *cobra.Command, inputPath string, f *flags, logger *zap.Logger) error {
	format, err := output.ParseFormat(f.format)
	if err != nil {
		return err
	}
	opts, err := loadOptions(f, logger)
	if err != nil {
		return err
	}

	res, extractErr := btmap.Extract(cmd.Context(), inputPath, opts)

	// Diagnostics are written even when extraction failed.
	if res != nil {
		if err := writeDiagnostics(cmd, f.diagnosticsPath, res); err != nil {
			return fmt.Errorf("failed to write diagnostics: %w", err)
		}
	}
	if extractErr != nil {
		return fmt.Errorf("extraction failed: %w", extractErr)
	}

	corpus := res.Corpus
	if f.xpathMapping != "" {
		table, err := xpath.LoadFile(f.xpathMapping)
		if err != nil {
			return fmt.Errorf("failed to load xpath mapping: %w", err)
		}
		corpus = xpath.Join(corpus, table)
	}

	var buf bytes.Buffer
	if err := output.Write(&buf, format, corpus); err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if f.outputPath != "" {
		if err := os.WriteFile(f.outputPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if _, err := io.Copy(cmd.OutOrStdout(), &buf); err != nil {
		return err
	}

	if f.sqlitePath != "" {
		s, err := store.Open(f.sqlitePath)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.SaveCorpus(cmd.Context(), res.Diagnostics.RunID, corpus); err != nil {
			return fmt.Errorf("failed to store corpus: %w", err)
		}
		if err := s.SaveDiagnostics(cmd.Context(), res.Diagnostics.RunID, res.Diagnostics); err != nil {
			return fmt.Errorf("failed to store diagnostics: %w", err)
		}
	}
	return nil
}

func writeDiagnostics(cmd *cobra.Command, path string, res *btmap.Result) error {
	if path == "" {
		return output.WriteDiagnostics(cmd.ErrOrStderr(), res.Diagnostics)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := output.WriteDiagnostics(file, res.Diagnostics); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
