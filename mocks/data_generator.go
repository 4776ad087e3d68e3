package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-history/internal/types"
	"github.com/rxtech-lab/argo-history/pkg/marketdata/frame"
)

// DataGenerator generates realistic daily price history for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how price history is generated.
type GeneratorConfig struct {
	// Symbol is the ticker (e.g., "AAPL")
	Symbol string
	// StartDate is the first calendar day of the series
	StartDate time.Time
	// Count is the number of trading days to generate
	Count int
	// SkipWeekends leaves Saturdays and Sundays out of the series
	SkipWeekends bool
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical daily volatility)
	Volatility float64
	// Trend is the drift across the whole series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// AdjustmentFactor scales Close into Adj Close (1.0 means no dividends or splits)
	AdjustmentFactor float64
	// VolumeBase is the average volume per day
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:           "TEST",
		StartDate:        time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Count:            250,
		SkipWeekends:     true,
		InitialPrice:     100.0,
		Volatility:       0.015,
		Trend:            0.0,
		AdjustmentFactor: 0.98,
		VolumeBase:       5_000_000,
		VolumeVariance:   0.3,
	}
}

// Generate creates price rows following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.PriceRow {
	rows := make([]types.PriceRow, 0, config.Count)
	currentPrice := config.InitialPrice
	currentDate := config.StartDate

	for len(rows) < config.Count {
		if config.SkipWeekends && isWeekend(currentDate) {
			currentDate = currentDate.AddDate(0, 0, 1)

			continue
		}

		open := currentPrice

		// Box-Muller transform for normal distribution
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		close := open * (1 + config.Volatility*z + drift)
		if close <= 0 {
			close = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance
		volume := config.VolumeBase * volumeVariation
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		rows = append(rows, types.PriceRow{
			Date:     currentDate,
			Open:     roundToDecimals(open, 4),
			High:     roundToDecimals(high, 4),
			Low:      roundToDecimals(low, 4),
			Close:    roundToDecimals(close, 4),
			AdjClose: roundToDecimals(close*config.AdjustmentFactor, 4),
			Volume:   roundToDecimals(volume, 0),
		})

		currentPrice = close
		currentDate = currentDate.AddDate(0, 0, 1)
	}

	return rows
}

// GenerateFrame lays generated rows out the way a provider returns them: a Date index
// and one column per price field. Grouped labels carry the symbol as a second level.
func (g *DataGenerator) GenerateFrame(config GeneratorConfig, grouped bool) *frame.Frame {
	return RowsToFrame(config.Symbol, g.Generate(config), grouped)
}

// RowsToFrame converts rows into a provider-shaped frame.
func RowsToFrame(symbol string, rows []types.PriceRow, grouped bool) *frame.Frame {
	dates := make([]time.Time, len(rows))
	values := make(map[string][]decimal.Decimal, len(types.PriceColumns))

	for i, row := range rows {
		dates[i] = row.Date
		values[types.ColumnOpen] = append(values[types.ColumnOpen], row.Open)
		values[types.ColumnHigh] = append(values[types.ColumnHigh], row.High)
		values[types.ColumnLow] = append(values[types.ColumnLow], row.Low)
		values[types.ColumnClose] = append(values[types.ColumnClose], row.Close)
		values[types.ColumnAdjClose] = append(values[types.ColumnAdjClose], row.AdjClose)
		values[types.ColumnVolume] = append(values[types.ColumnVolume], row.Volume)
	}

	label := func(name string) frame.Label {
		if grouped {
			return frame.L(name, symbol)
		}

		return frame.L(name)
	}

	f := &frame.Frame{
		IndexName: frame.DefaultIndexName,
		Index:     dates,
		Columns:   nil,
	}

	for _, name := range types.PriceColumns {
		if name == types.ColumnDate {
			continue
		}

		f.Columns = append(f.Columns, frame.ValueColumn(label(name), values[name]))
	}

	return f
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int32) decimal.Decimal {
	return decimal.NewFromFloat(val).Round(decimals)
}
