package frame

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-history/internal/types"
	"github.com/rxtech-lab/argo-history/pkg/errors"
)

// Normalize returns a copy of f with the date index promoted to a leading column,
// every label reduced to its base field name, rows sorted by date and duplicate
// dates removed (the first row wins). Applying it twice yields the same frame.
func Normalize(f *Frame) (*Frame, error) {
	if f == nil {
		return &Frame{}, nil
	}

	if err := f.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "malformed frame", err)
	}

	columns := make([]Column, 0, len(f.Columns)+1)
	seen := make(map[string]bool, len(f.Columns)+1)

	if f.Index != nil {
		name := f.IndexName
		if name == "" {
			name = DefaultIndexName
		}

		columns = append(columns, DateColumn(L(name), f.Index))
		seen[name] = true
	}

	for _, c := range f.Columns {
		name := c.Label.Base()
		if seen[name] {
			return nil, errors.Newf(errors.ErrCodeMarketDataParseFailed, "column %s collides with another column named %s", c.Label, name)
		}

		seen[name] = true
		columns = append(columns, Column{Label: L(name), Times: c.Times, Values: c.Values})
	}

	return sortByDate(&Frame{Columns: columns}), nil
}

// sortByDate orders the rows of a flat frame by its date column and drops repeated dates.
func sortByDate(f *Frame) *Frame {
	dateIdx := -1

	for i, c := range f.Columns {
		if !c.IsTime() {
			continue
		}

		if dateIdx == -1 || c.Label.Base() == DefaultIndexName {
			dateIdx = i
		}

		if c.Label.Base() == DefaultIndexName {
			break
		}
	}

	if dateIdx == -1 {
		return f
	}

	dates := f.Columns[dateIdx].Times
	order := make([]int, len(dates))

	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return dates[order[a]].Before(dates[order[b]])
	})

	keep := make([]int, 0, len(order))
	for _, i := range order {
		if len(keep) > 0 && dates[keep[len(keep)-1]].Equal(dates[i]) {
			continue
		}

		keep = append(keep, i)
	}

	sorted := &Frame{Columns: make([]Column, len(f.Columns))}

	for ci, c := range f.Columns {
		out := Column{Label: c.Label}

		if c.IsTime() {
			out.Times = make([]time.Time, 0, len(keep))
			for _, i := range keep {
				out.Times = append(out.Times, c.Times[i])
			}
		} else {
			out.Values = make([]decimal.Decimal, 0, len(keep))
			for _, i := range keep {
				out.Values = append(out.Values, c.Values[i])
			}
		}

		sorted.Columns[ci] = out
	}

	return sorted
}

// ToPriceTable normalizes f and maps its canonical columns into price rows.
func ToPriceTable(f *Frame, symbol string) (types.PriceTable, error) {
	normalized, err := Normalize(f)
	if err != nil {
		return types.PriceTable{}, err
	}

	table := types.PriceTable{Symbol: symbol}
	if normalized.Empty() {
		return table, nil
	}

	dates, ok := normalized.Column(types.ColumnDate)
	if !ok || !dates.IsTime() {
		return types.PriceTable{}, errors.Newf(errors.ErrCodeMarketDataParseFailed, "%s: no %s column in %v", symbol, types.ColumnDate, normalized.Names())
	}

	valueNames := types.PriceColumns[1:]
	values := make([][]decimal.Decimal, len(valueNames))

	for i, name := range valueNames {
		c, ok := normalized.Column(name)
		if !ok || c.IsTime() {
			return types.PriceTable{}, errors.Newf(errors.ErrCodeMarketDataParseFailed, "%s: no %s column in %v", symbol, name, normalized.Names())
		}

		values[i] = c.Values
	}

	table.Rows = make([]types.PriceRow, 0, len(dates.Times))
	for r, date := range dates.Times {
		table.Rows = append(table.Rows, types.PriceRow{
			Date:     date,
			Open:     values[0][r],
			High:     values[1][r],
			Low:      values[2][r],
			Close:    values[3][r],
			AdjClose: values[4][r],
			Volume:   values[5][r],
		})
	}

	return table, nil
}
