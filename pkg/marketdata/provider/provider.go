package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-history/pkg/marketdata/frame"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderYahoo   ProviderType = "yahoo"
	ProviderPolygon ProviderType = "polygon"
)

type Provider interface {
	// Fetch returns unadjusted daily bars plus an adjusted close for ticker over [start, end).
	// A frame without rows and a nil error means the provider has no data for the window.
	// example:
	// Fetch(ctx, "AAPL", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	Fetch(ctx context.Context, ticker string, start time.Time, end time.Time) (*frame.Frame, error)
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, config any) (Provider, error) {
	switch providerType {
	case ProviderYahoo:
		return NewYahooClient()
	case ProviderPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, fmt.Errorf("polygon provider requires API key string config")
		}

		return NewPolygonClient(apiKey)
	default:
		return nil, fmt.Errorf("unsupported market data provider: %s", providerType)
	}
}

// calendarDate returns midnight UTC of the calendar day t falls on in its own location.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// inWindow reports whether the calendar day date lies within [start, end).
func inWindow(date time.Time, start time.Time, end time.Time) bool {
	return !date.Before(calendarDate(start)) && date.Before(calendarDate(end))
}
