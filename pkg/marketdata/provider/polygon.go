package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-history/internal/types"
	"github.com/rxtech-lab/argo-history/pkg/marketdata/frame"
)

// PolygonAggsIterator is the iterator returned by PolygonAPIClient.ListAggs.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the part of the Polygon REST client used by PolygonClient.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonRESTClient struct {
	client *polygon.Client
}

func (c *polygonRESTClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return c.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}

	return &PolygonClient{
		apiClient: &polygonRESTClient{client: polygon.New(apiKey)},
	}, nil
}

// NewPolygonClientWithAPI creates a PolygonClient backed by the given API client.
func NewPolygonClientWithAPI(api PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: api,
	}
}

// Fetch downloads daily aggregates twice: unadjusted for the OHLC, close and volume
// columns, and split adjusted for the Adj Close column. Polygon treats the window as
// inclusive, so the request ends the day before end.
func (c *PolygonClient) Fetch(ctx context.Context, ticker string, start time.Time, end time.Time) (*frame.Frame, error) {
	from := calendarDate(start)
	to := calendarDate(end).AddDate(0, 0, -1)

	if to.Before(from) {
		return &frame.Frame{}, nil
	}

	raw, err := c.listDaily(ctx, ticker, from, to, false)
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return &frame.Frame{}, nil
	}

	adjusted, err := c.listDaily(ctx, ticker, from, to, true)
	if err != nil {
		return nil, err
	}

	adjustedClose := make(map[time.Time]float64, len(adjusted))
	for _, agg := range adjusted {
		adjustedClose[aggDate(agg)] = agg.Close
	}

	dates := make([]time.Time, 0, len(raw))
	opens := make([]decimal.Decimal, 0, len(raw))
	highs := make([]decimal.Decimal, 0, len(raw))
	lows := make([]decimal.Decimal, 0, len(raw))
	closes := make([]decimal.Decimal, 0, len(raw))
	adjCloses := make([]decimal.Decimal, 0, len(raw))
	vols := make([]decimal.Decimal, 0, len(raw))

	for _, agg := range raw {
		date := aggDate(agg)
		if !inWindow(date, start, end) {
			continue
		}

		adjClose, ok := adjustedClose[date]
		if !ok {
			adjClose = agg.Close
		}

		dates = append(dates, date)
		opens = append(opens, decimal.NewFromFloat(agg.Open))
		highs = append(highs, decimal.NewFromFloat(agg.High))
		lows = append(lows, decimal.NewFromFloat(agg.Low))
		closes = append(closes, decimal.NewFromFloat(agg.Close))
		adjCloses = append(adjCloses, decimal.NewFromFloat(adjClose))
		vols = append(vols, decimal.NewFromFloat(agg.Volume))
	}

	return &frame.Frame{
		IndexName: types.ColumnDate,
		Index:     dates,
		Columns: []frame.Column{
			frame.ValueColumn(frame.L(types.ColumnOpen), opens),
			frame.ValueColumn(frame.L(types.ColumnHigh), highs),
			frame.ValueColumn(frame.L(types.ColumnLow), lows),
			frame.ValueColumn(frame.L(types.ColumnClose), closes),
			frame.ValueColumn(frame.L(types.ColumnAdjClose), adjCloses),
			frame.ValueColumn(frame.L(types.ColumnVolume), vols),
		},
	}, nil
}

func (c *PolygonClient) listDaily(ctx context.Context, ticker string, from time.Time, to time.Time, adjusted bool) ([]models.Agg, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.WithAdjusted(adjusted).WithLimit(50000)

	iter := c.apiClient.ListAggs(ctx, params)

	var aggs []models.Agg
	for iter.Next() {
		aggs = append(aggs, iter.Item())
	}

	if iter.Err() != nil {
		return nil, fmt.Errorf("error iterating polygon aggregates for %s: %w", ticker, iter.Err())
	}

	return aggs, nil
}

func aggDate(agg models.Agg) time.Time {
	return calendarDate(time.Time(agg.Timestamp).UTC())
}
