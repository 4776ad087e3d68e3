package writer

import (
	"fmt"

	"github.com/rxtech-lab/argo-history/internal/types"
	"github.com/rxtech-lab/argo-history/pkg/errors"
)

// Format selects the on-disk format of an exported price table.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// MarketDataWriter defines the interface for writing one price table to a destination.
type MarketDataWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single price row.
	Write(row types.PriceRow) error
	// Finalize completes the writing process and moves the output into place.
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer and discards unfinished output.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}

// OutputFileName returns the file name used for a ticker.
// The _5y suffix is kept for compatibility with existing consumers of the files.
func OutputFileName(ticker string, format Format) string {
	return fmt.Sprintf("%s_5y.%s", ticker, format)
}

// NewWriter creates a writer of the given format for one ticker.
func NewWriter(format Format, outputPath string, symbol string) (MarketDataWriter, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(outputPath, symbol), nil
	case FormatParquet:
		return NewDuckDBWriter(outputPath, symbol), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidFormat, "unsupported writer format: %s", format)
	}
}

// WriteTable runs the full writer lifecycle for a table and returns the final path.
func WriteTable(w MarketDataWriter, table types.PriceTable) (outputPath string, err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing writer: %w", cerr)
		}
	}()

	if err := w.Initialize(); err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	for _, row := range table.Rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write row %s: %w", row.Date.Format(types.DateLayout), err)
		}
	}

	outputPath, err = w.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to finalize writer: %w", err)
	}

	return outputPath, nil
}
