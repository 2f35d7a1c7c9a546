package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/mini-maxit/harness/pkg/solution"
)

const compressedReportExt = ".zst"

// WriteReport stores report as indented JSON, zstd-compressed when path ends in .zst.
func WriteReport(path string, report solution.RunReport) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	var w io.Writer = f
	if filepath.Ext(path) == compressedReportExt {
		enc, encErr := zstd.NewWriter(f)
		if encErr != nil {
			return fmt.Errorf("failed to create zstd writer: %w", encErr)
		}
		defer func() {
			if closeErr := enc.Close(); err == nil {
				err = closeErr
			}
		}()
		w = enc
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func ReadReport(path string) (solution.RunReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return solution.RunReport{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if filepath.Ext(path) == compressedReportExt {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return solution.RunReport{}, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	var report solution.RunReport
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return solution.RunReport{}, fmt.Errorf("failed to decode report: %w", err)
	}
	return report, nil
}
