package marketdata

import (
	"time"

	"github.com/rxtech-lab/argo-history/internal/types"
	"github.com/rxtech-lab/argo-history/pkg/errors"
)

// DateRange is a pair of calendar dates. Both are midnight in the location of the
// clock they were computed from.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ComputeDateRange returns the window ending on the calendar date of now and starting
// yearsBack calendar years earlier. A day missing from the target year is clamped to
// the end of its month, so 2024-02-29 minus one year is 2023-02-28.
func ComputeDateRange(now time.Time, yearsBack int) (DateRange, error) {
	if yearsBack < 0 {
		return DateRange{}, errors.Newf(errors.ErrCodeInvalidParameter, "yearsBack must not be negative, got %d", yearsBack)
	}

	y, m, d := now.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	startYear := y - yearsBack
	if last := daysIn(m, startYear); d > last {
		d = last
	}

	start := time.Date(startYear, m, d, 0, 0, 0, 0, now.Location())

	return DateRange{Start: start, End: end}, nil
}

// daysIn returns the number of days of month m in year.
func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (r DateRange) String() string {
	return r.Start.Format(types.DateLayout) + " to " + r.End.Format(types.DateLayout)
}
