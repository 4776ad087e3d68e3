package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the textual form of a PriceRow date.
const DateLayout = "2006-01-02"

// Column names of a price table, in output order.
const (
	ColumnDate     = "Date"
	ColumnOpen     = "Open"
	ColumnHigh     = "High"
	ColumnLow      = "Low"
	ColumnClose    = "Close"
	ColumnAdjClose = "Adj Close"
	ColumnVolume   = "Volume"
)

// PriceColumns lists the header of an exported price table.
var PriceColumns = []string{
	ColumnDate,
	ColumnOpen,
	ColumnHigh,
	ColumnLow,
	ColumnClose,
	ColumnAdjClose,
	ColumnVolume,
}

// PriceRow is one trading day of a ticker.
// Prices are unadjusted except AdjClose.
type PriceRow struct {
	Date     time.Time       `csv:"Date"`
	Open     decimal.Decimal `csv:"Open"`
	High     decimal.Decimal `csv:"High"`
	Low      decimal.Decimal `csv:"Low"`
	Close    decimal.Decimal `csv:"Close"`
	AdjClose decimal.Decimal `csv:"Adj Close"`
	Volume   decimal.Decimal `csv:"Volume"`
}

// Record returns the row as text fields in PriceColumns order.
func (r PriceRow) Record() []string {
	return []string{
		r.Date.Format(DateLayout),
		r.Open.String(),
		r.High.String(),
		r.Low.String(),
		r.Close.String(),
		r.AdjClose.String(),
		r.Volume.String(),
	}
}

// PriceTable is the daily history of one ticker, ordered by ascending date.
type PriceTable struct {
	Symbol string
	Rows   []PriceRow
}

// Len returns the number of rows.
func (t PriceTable) Len() int {
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t PriceTable) Empty() bool {
	return len(t.Rows) == 0
}
