package writer

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/rxtech-lab/argo-history/internal/types"
)

// DuckDBWriter implements MarketDataWriter by buffering rows in an in-memory
// DuckDB table and exporting them as a Parquet file.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	symbol     string
	outputPath string
}

// NewDuckDBWriter creates a new DuckDBWriter.
// outputPath is the Parquet file that Finalize produces.
func NewDuckDBWriter(outputPath string, symbol string) MarketDataWriter {
	return &DuckDBWriter{
		symbol:     symbol,
		outputPath: outputPath,
	}
}

// Initialize opens an in-memory database, creates the price table,
// begins a transaction, and prepares the insert statement.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS price_history (
			symbol TEXT,
			date DATE,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			adj_close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()
		w.db = nil

		return fmt.Errorf("failed to create table: %w", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()
		w.db = nil

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO price_history (symbol, date, open, high, low, close, adj_close, volume)
		VALUES (?, CAST(? AS DATE), ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.tx = nil
		w.db.Close()
		w.db = nil

		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	return nil
}

// Write inserts a single row within the open transaction.
func (w *DuckDBWriter) Write(row types.PriceRow) error {
	if w.stmt == nil {
		return fmt.Errorf("writer not initialized or statement is nil")
	}

	_, err := w.stmt.Exec(
		w.symbol,
		row.Date.Format(types.DateLayout),
		row.Open.InexactFloat64(),
		row.High.InexactFloat64(),
		row.Low.InexactFloat64(),
		row.Close.InexactFloat64(),
		row.AdjClose.InexactFloat64(),
		row.Volume.InexactFloat64(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert data: %w", err)
	}

	return nil
}

// Finalize commits the transaction, exports the table to a staging Parquet
// file and renames it over the output path.
func (w *DuckDBWriter) Finalize() (outputPath string, err error) {
	if w.tx == nil {
		return "", fmt.Errorf("writer not initialized or transaction is nil")
	}

	if w.stmt != nil {
		w.stmt.Close()
		w.stmt = nil
	}

	if err = w.tx.Commit(); err != nil {
		w.tx.Rollback()
		w.tx = nil

		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.tx = nil

	dir, base := filepath.Split(w.outputPath)
	staging := filepath.Join(dir, "."+base+".tmp")

	query := fmt.Sprintf(`COPY (SELECT * FROM price_history ORDER BY date) TO '%s' (FORMAT PARQUET)`, strings.ReplaceAll(staging, "'", "''"))
	if _, err = w.db.Exec(query); err != nil {
		os.Remove(staging)

		return "", fmt.Errorf("failed to export to Parquet: %w", err)
	}

	if err = os.Rename(staging, w.outputPath); err != nil {
		os.Remove(staging)

		return "", fmt.Errorf("failed to move %s into place: %w", staging, err)
	}

	return w.outputPath, nil
}

// Close cleans up resources used by the writer, including closing the statement
// and the database connection.
func (w *DuckDBWriter) Close() error {
	var closeErrors []error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close statement: %w", err))
		}

		w.stmt = nil
	}

	// If transaction is still active (e.g., Finalize wasn't called or failed), rollback
	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to rollback transaction: %w", err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close db connection: %w", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		errMsg := "errors occurred during close:"
		for _, e := range closeErrors {
			errMsg += fmt.Sprintf("\n- %v", e)
		}

		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// GetOutputPath returns the configured output file path.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}
