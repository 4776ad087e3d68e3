package mocks

import (
	"testing"

	"github.com/rxtech-lab/argo-history/internal/types"
	"github.com/rxtech-lab/argo-history/pkg/marketdata/frame"
)

func TestDataGenerator_Generate(t *testing.T) {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Count = 100

	rows := gen.Generate(config)

	if len(rows) != 100 {
		t.Errorf("expected 100 rows, got %d", len(rows))
	}

	for i := 1; i < len(rows); i++ {
		if !rows[i].Date.After(rows[i-1].Date) {
			t.Errorf("rows not in chronological order at index %d", i)
		}
	}

	for i, r := range rows {
		if isWeekend(r.Date) {
			t.Errorf("weekend date at index %d: %s", i, r.Date.Format(types.DateLayout))
		}

		if !r.Open.IsPositive() || !r.High.IsPositive() || !r.Low.IsPositive() || !r.Close.IsPositive() {
			t.Errorf("invalid OHLC values at index %d: O=%s H=%s L=%s C=%s", i, r.Open, r.High, r.Low, r.Close)
		}

		if r.High.LessThan(r.Low) {
			t.Errorf("High < Low at index %d: H=%s L=%s", i, r.High, r.Low)
		}

		if r.AdjClose.GreaterThan(r.Close) {
			t.Errorf("Adj Close above Close at index %d", i)
		}
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	config := DefaultConfig()
	config.Count = 20

	first := NewDataGenerator(7).Generate(config)
	second := NewDataGenerator(7).Generate(config)

	for i := range first {
		if !first[i].Close.Equal(second[i].Close) || !first[i].Volume.Equal(second[i].Volume) {
			t.Fatalf("same seed produced different rows at index %d", i)
		}
	}
}

func TestDataGenerator_CalendarDays(t *testing.T) {
	config := DefaultConfig()
	config.Count = 10
	config.SkipWeekends = false

	rows := NewDataGenerator(1).Generate(config)

	last := config.StartDate.AddDate(0, 0, 9)
	if !rows[9].Date.Equal(last) {
		t.Errorf("expected last date %s, got %s", last.Format(types.DateLayout), rows[9].Date.Format(types.DateLayout))
	}
}

func TestDataGenerator_GenerateFrame(t *testing.T) {
	config := DefaultConfig()
	config.Symbol = "AAPL"
	config.Count = 15

	grouped := NewDataGenerator(3).GenerateFrame(config, true)
	if grouped.Len() != 15 {
		t.Fatalf("expected 15 rows, got %d", grouped.Len())
	}

	if grouped.IndexName != frame.DefaultIndexName {
		t.Errorf("expected index %q, got %q", frame.DefaultIndexName, grouped.IndexName)
	}

	if got := grouped.Columns[0].Label.String(); got != "(Open, AAPL)" {
		t.Errorf("unexpected first label %s", got)
	}

	if err := grouped.Validate(); err != nil {
		t.Errorf("generated frame is invalid: %v", err)
	}

	flat := RowsToFrame("AAPL", NewDataGenerator(3).Generate(config), false)
	table, err := frame.ToPriceTable(flat, "AAPL")
	if err != nil {
		t.Fatalf("ToPriceTable failed: %v", err)
	}

	if table.Len() != 15 {
		t.Errorf("expected 15 table rows, got %d", table.Len())
	}

	if !table.Rows[0].Date.Equal(config.StartDate) {
		t.Errorf("unexpected first date %s", table.Rows[0].Date)
	}
}

func TestRowsToFrame_Empty(t *testing.T) {
	f := RowsToFrame("AAPL", nil, true)
	if !f.Empty() {
		t.Errorf("expected empty frame")
	}

}
