package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rxtech-lab/argo-history/internal/logger"
	"github.com/rxtech-lab/argo-history/internal/types"
	"github.com/rxtech-lab/argo-history/pkg/errors"
	"github.com/rxtech-lab/argo-history/pkg/marketdata/frame"
	"github.com/rxtech-lab/argo-history/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-history/pkg/marketdata/writer"
)

// OnProgress is called before each ticker and once when the batch is done.
type OnProgress = func(current float64, total float64, message string)

// Outcome is the result of exporting one ticker.
type Outcome string

const (
	OutcomeSaved   Outcome = "saved"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// TickerResult records what happened to one ticker of a run.
type TickerResult struct {
	Ticker  string
	Outcome Outcome
	Path    string
	Rows    int
	Err     error
}

// Report summarizes one run of the exporter.
type Report struct {
	RunID   string
	Range   DateRange
	Results []TickerResult
}

// Count returns the number of tickers with the given outcome.
func (r Report) Count(outcome Outcome) int {
	n := 0

	for _, result := range r.Results {
		if result.Outcome == outcome {
			n++
		}
	}

	return n
}

// AllFailed reports whether the run attempted tickers and every one of them failed.
func (r Report) AllFailed() bool {
	return len(r.Results) > 0 && r.Count(OutcomeFailed) == len(r.Results)
}

// Exporter downloads the daily history of each configured ticker and writes one file per ticker.
type Exporter struct {
	provider   provider.Provider
	config     ExportConfig
	outputDir  string
	logger     *logger.Logger
	limiter    *rate.Limiter
	now        func() time.Time
	onProgress OnProgress
}

// NewExporter creates an exporter that reads from marketProvider.
// A nil log discards output and a nil onProgress disables progress reporting.
func NewExporter(config ExportConfig, marketProvider provider.Provider, log *logger.Logger, onProgress OnProgress) (*Exporter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if marketProvider == nil {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "market data provider is required")
	}

	outputDir, err := ResolveOutputDir(config.OutputDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to resolve output directory", err)
	}

	if log == nil {
		log = logger.New(nil)
	}

	var limiter *rate.Limiter
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1)
	}

	return &Exporter{
		provider:   marketProvider,
		config:     config,
		outputDir:  outputDir,
		logger:     log,
		limiter:    limiter,
		now:        time.Now,
		onProgress: onProgress,
	}, nil
}

// NewExporterFromConfig creates an exporter backed by the provider named in config.
func NewExporterFromConfig(config ExportConfig, log *logger.Logger, onProgress OnProgress) (*Exporter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var providerConfig any
	if config.Provider == provider.ProviderPolygon {
		providerConfig = config.PolygonApiKey
	}

	marketProvider, err := provider.NewMarketDataProvider(config.Provider, providerConfig)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidProvider, err, "failed to create %s provider", config.Provider)
	}

	return NewExporter(config, marketProvider, log, onProgress)
}

// OutputDir returns the directory receiving the exported files.
func (e *Exporter) OutputDir() string {
	return e.outputDir
}

// Run exports every configured ticker in order. Failures are recorded per ticker and
// never stop the batch; the returned error is set only when the run cannot start.
func (e *Exporter) Run(ctx context.Context) (Report, error) {
	dateRange, err := ComputeDateRange(e.now(), e.config.YearsBack)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		RunID:   uuid.NewString(),
		Range:   dateRange,
		Results: make([]TickerResult, 0, len(e.config.Tickers)),
	}

	log := e.logger.With(zap.String("run_id", report.RunID))
	log.Info("Starting export",
		zap.String("range", dateRange.String()),
		zap.String("provider", string(e.config.Provider)),
		zap.String("format", string(e.config.Format)),
		zap.String("output_dir", e.outputDir),
		zap.Int("tickers", len(e.config.Tickers)),
	)

	// a failure here is reported again by every write
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		log.Warn("Failed to create output directory", zap.String("path", e.outputDir), zap.Error(err))
	}

	total := float64(len(e.config.Tickers))

	for i, ticker := range e.config.Tickers {
		e.progress(float64(i), total, fmt.Sprintf("Downloading %s", ticker))

		result := e.exportTicker(ctx, log.With(zap.String("ticker", ticker)), ticker, dateRange)
		report.Results = append(report.Results, result)
	}

	e.progress(total, total, "Done")

	log.Info("Export finished",
		zap.Int("saved", report.Count(OutcomeSaved)),
		zap.Int("skipped", report.Count(OutcomeSkipped)),
		zap.Int("failed", report.Count(OutcomeFailed)),
	)

	return report, nil
}

func (e *Exporter) exportTicker(ctx context.Context, log *logger.Logger, ticker string, dateRange DateRange) TickerResult {
	result := TickerResult{Ticker: ticker, Outcome: OutcomeFailed, Path: "", Rows: 0, Err: nil}

	log.Info(fmt.Sprintf("Downloading %s", ticker))

	data, err := e.fetch(ctx, ticker, dateRange)
	if err != nil {
		result.Err = errors.NewFetchError(ticker, err)
		log.Error(fmt.Sprintf("Failed to download %s", ticker), zap.Error(result.Err))

		return result
	}

	if data != nil {
		if err := data.Validate(); err != nil {
			result.Err = errors.NewFetchError(ticker, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "malformed frame", err))
			log.Error(fmt.Sprintf("Failed to read data for %s", ticker), zap.Error(result.Err))

			return result
		}
	}

	if data.Empty() {
		result.Outcome = OutcomeSkipped
		log.Warn(fmt.Sprintf("No data found for %s, skipping", ticker))

		return result
	}

	table, err := frame.ToPriceTable(data, ticker)
	if err != nil {
		result.Err = errors.NewFetchError(ticker, err)
		log.Error(fmt.Sprintf("Failed to read data for %s", ticker), zap.Error(result.Err))

		return result
	}

	path, err := e.write(table)
	if err != nil {
		result.Err = err
		log.Error(fmt.Sprintf("Failed to save %s", ticker), zap.Error(err))

		return result
	}

	result.Outcome = OutcomeSaved
	result.Path = path
	result.Rows = table.Len()
	log.Info(fmt.Sprintf("Saved %s", ticker), zap.String("path", path), zap.Int("rows", table.Len()))

	return result
}

// fetch waits for the rate limiter and calls the provider, turning a provider panic into an error.
func (e *Exporter) fetch(ctx context.Context, ticker string, dateRange DateRange) (data *frame.Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	return e.provider.Fetch(ctx, ticker, dateRange.Start, dateRange.End)
}

func (e *Exporter) write(table types.PriceTable) (string, error) {
	path := filepath.Join(e.outputDir, writer.OutputFileName(table.Symbol, e.config.Format))

	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", errors.NewWriteError(table.Symbol, path, err)
	}

	w, err := writer.NewWriter(e.config.Format, path, table.Symbol)
	if err != nil {
		return "", errors.NewWriteError(table.Symbol, path, err)
	}

	outputPath, err := writer.WriteTable(w, table)
	if err != nil {
		return "", errors.NewWriteError(table.Symbol, path, err)
	}

	return outputPath, nil
}

func (e *Exporter) progress(current, total float64, message string) {
	if e.onProgress != nil {
		e.onProgress(current, total, message)
	}
}
