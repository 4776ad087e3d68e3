package provider

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-history/internal/types"
	"github.com/rxtech-lab/argo-history/pkg/marketdata/frame"
)

// ChartIterator walks the bars of a Yahoo chart response.
type ChartIterator interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

// YahooChartAPI is the part of the Yahoo Finance client used by YahooClient.
type YahooChartAPI interface {
	GetChart(params *chart.Params) ChartIterator
}

type yahooChartClient struct{}

func (yahooChartClient) GetChart(params *chart.Params) ChartIterator {
	return chart.Get(params)
}

// YahooClient fetches daily bars from the Yahoo Finance chart endpoint.
// It needs no credentials.
type YahooClient struct {
	apiClient YahooChartAPI
}

// NewYahooClient creates a YahooClient that reads from the public chart endpoint.
func NewYahooClient() (Provider, error) {
	return &YahooClient{
		apiClient: yahooChartClient{},
	}, nil
}

// NewYahooClientWithAPI creates a YahooClient backed by the given chart API.
func NewYahooClientWithAPI(api YahooChartAPI) *YahooClient {
	return &YahooClient{
		apiClient: api,
	}
}

// Fetch returns a frame indexed by Date whose columns are grouped by ticker,
// e.g. ("Close", "AAPL"). Bars outside [start, end) are dropped.
func (c *YahooClient) Fetch(ctx context.Context, ticker string, start time.Time, end time.Time) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	params := &chart.Params{
		Symbol:   ticker,
		Interval: datetime.OneDay,
		Start:    toDatetime(start),
		End:      toDatetime(end),
	}

	iter := c.apiClient.GetChart(params)

	var (
		dates                                       []time.Time
		opens, highs, lows, closes, adjCloses, vols []decimal.Decimal
	)

	for iter.Next() {
		bar := iter.Bar()
		if bar == nil {
			continue
		}

		date := calendarDate(time.Unix(int64(bar.Timestamp), 0).UTC())
		if !inWindow(date, start, end) {
			continue
		}

		dates = append(dates, date)
		opens = append(opens, bar.Open)
		highs = append(highs, bar.High)
		lows = append(lows, bar.Low)
		closes = append(closes, bar.Close)
		adjCloses = append(adjCloses, bar.AdjClose)
		vols = append(vols, decimal.NewFromInt(int64(bar.Volume)))
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("error iterating yahoo chart for %s: %w", ticker, err)
	}

	if dates == nil {
		return &frame.Frame{}, nil
	}

	return &frame.Frame{
		IndexName: types.ColumnDate,
		Index:     dates,
		Columns: []frame.Column{
			frame.ValueColumn(frame.L(types.ColumnOpen, ticker), opens),
			frame.ValueColumn(frame.L(types.ColumnHigh, ticker), highs),
			frame.ValueColumn(frame.L(types.ColumnLow, ticker), lows),
			frame.ValueColumn(frame.L(types.ColumnClose, ticker), closes),
			frame.ValueColumn(frame.L(types.ColumnAdjClose, ticker), adjCloses),
			frame.ValueColumn(frame.L(types.ColumnVolume, ticker), vols),
		},
	}, nil
}

func toDatetime(t time.Time) *datetime.Datetime {
	//nolint:exhaustruct // unexported cache field
	return &datetime.Datetime{
		Month: int(t.Month()),
		Day:   t.Day(),
		Year:  t.Year(),
	}
}
