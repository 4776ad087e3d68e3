// Package frame holds the column-oriented table that market data providers return
// and the pure transformations that turn it into a types.PriceTable.
package frame

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultIndexName is used when a date index has no name.
const DefaultIndexName = "Date"

// Label is a column header. Providers that group columns by symbol return
// multi-level labels such as {"Close", "AAPL"}; the first level is the field name.
type Label []string

// L builds a Label from its levels.
func L(levels ...string) Label {
	return Label(levels)
}

// Base returns the field name of the label.
func (l Label) Base() string {
	if len(l) == 0 {
		return ""
	}

	return l[0]
}

// Flat reports whether the label has a single level.
func (l Label) Flat() bool {
	return len(l) <= 1
}

func (l Label) String() string {
	if l.Flat() {
		return l.Base()
	}

	return "(" + strings.Join(l, ", ") + ")"
}

// Column is one column of a Frame. Date columns carry Times, numeric columns carry Values.
type Column struct {
	Label  Label
	Times  []time.Time
	Values []decimal.Decimal
}

// DateColumn creates a date column.
func DateColumn(label Label, times []time.Time) Column {
	return Column{Label: label, Times: times}
}

// ValueColumn creates a numeric column.
func ValueColumn(label Label, values []decimal.Decimal) Column {
	return Column{Label: label, Values: values}
}

// IsTime reports whether the column holds dates.
func (c Column) IsTime() bool {
	return c.Times != nil
}

// Len returns the number of cells in the column.
func (c Column) Len() int {
	if c.IsTime() {
		return len(c.Times)
	}

	return len(c.Values)
}

// Frame is a table of columns with an optional date index.
// A nil Index means the rows carry no implicit labels.
type Frame struct {
	IndexName string
	Index     []time.Time
	Columns   []Column
}

// HasIndex reports whether rows are labelled by an implicit date index.
func (f *Frame) HasIndex() bool {
	return f != nil && f.Index != nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}

	if f.Index != nil {
		return len(f.Index)
	}

	if len(f.Columns) == 0 {
		return 0
	}

	return f.Columns[0].Len()
}

// Empty reports whether the frame has no rows. A nil frame is empty.
func (f *Frame) Empty() bool {
	return f.Len() == 0
}

// Names returns the string form of every column label.
func (f *Frame) Names() []string {
	names := make([]string, 0, len(f.Columns))
	for _, c := range f.Columns {
		names = append(names, c.Label.String())
	}

	return names
}

// Column returns the first column whose label base matches name.
func (f *Frame) Column(name string) (Column, bool) {
	for _, c := range f.Columns {
		if c.Label.Base() == name {
			return c, true
		}
	}

	return Column{}, false
}

// Validate checks that every column has one cell per row.
func (f *Frame) Validate() error {
	rows := f.Len()
	for _, c := range f.Columns {
		if c.Len() != rows {
			return fmt.Errorf("column %s has %d cells, expected %d", c.Label, c.Len(), rows)
		}
	}

	return nil
}
