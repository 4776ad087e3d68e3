package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-history/internal/types"
)

// CSVWriter writes a price table as CSV: the symbol on the first line,
// the column header on the second, then one line per row.
// Rows are staged in a temporary file next to the output and renamed on Finalize.
type CSVWriter struct {
	outputPath string
	symbol     string
	file       *os.File
	csv        *csv.Writer
}

// NewCSVWriter creates a new CSVWriter.
func NewCSVWriter(outputPath string, symbol string) MarketDataWriter {
	return &CSVWriter{
		outputPath: outputPath,
		symbol:     symbol,
	}
}

// Initialize creates the staging file and writes the symbol and header lines.
func (w *CSVWriter) Initialize() (err error) {
	dir, base := filepath.Split(w.outputPath)
	if dir == "" {
		dir = "."
	}

	w.file, err = os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create staging file: %w", err)
	}

	w.csv = csv.NewWriter(w.file)

	if err := w.csv.Write([]string{w.symbol}); err != nil {
		return fmt.Errorf("failed to write symbol line: %w", err)
	}

	if err := w.csv.Write(types.PriceColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	return nil
}

// Write appends a single row.
func (w *CSVWriter) Write(row types.PriceRow) error {
	if w.csv == nil {
		return fmt.Errorf("writer not initialized")
	}

	return w.csv.Write(row.Record())
}

// Finalize flushes the staging file and renames it over the output path.
func (w *CSVWriter) Finalize() (string, error) {
	if w.csv == nil || w.file == nil {
		return "", fmt.Errorf("writer not initialized")
	}

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}

	staging := w.file.Name()

	if err := w.file.Chmod(0o644); err != nil {
		return "", fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := w.file.Close(); err != nil {
		return "", fmt.Errorf("failed to close staging file: %w", err)
	}

	w.file = nil
	w.csv = nil

	if err := os.Rename(staging, w.outputPath); err != nil {
		os.Remove(staging)

		return "", fmt.Errorf("failed to move %s into place: %w", staging, err)
	}

	return w.outputPath, nil
}

// Close removes the staging file if Finalize did not complete.
func (w *CSVWriter) Close() error {
	if w.file == nil {
		return nil
	}

	staging := w.file.Name()
	closeErr := w.file.Close()
	w.file = nil
	w.csv = nil

	if err := os.Remove(staging); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove staging file: %w", err)
	}

	return closeErr
}

// GetOutputPath returns the configured output file path.
func (w *CSVWriter) GetOutputPath() string {
	return w.outputPath
}
