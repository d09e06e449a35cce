// Package workday counts chargeable leave days between two calendar dates.
package workday

import "time"

const (
	dateLayout = "2006-01-02"

	// HalfDay is charged for half-day requests whatever their date range.
	HalfDay = 0.5
)

// Holidays is a set of calendar days keyed by YYYY-MM-DD.
type Holidays map[string]struct{}

func NewHolidays(dates ...time.Time) Holidays {
	h := make(Holidays, len(dates))
	for _, d := range dates {
		h[d.Format(dateLayout)] = struct{}{}
	}
	return h
}

func (h Holidays) Contains(d time.Time) bool {
	_, ok := h[d.Format(dateLayout)]
	return ok
}

// CountBusinessDays counts the days in [start, end] that are neither a
// Saturday, a Sunday nor a holiday. Only the calendar date of each bound is
// used. A start after end yields 0.
func CountBusinessDays(start, end time.Time, holidays Holidays) int {
	from := dateOnly(start)
	to := dateOnly(end)

	count := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		if holidays.Contains(d) {
			continue
		}
		count++
	}
	return count
}

// RequestDays is the number of days a request consumes from a balance.
func RequestDays(start, end time.Time, halfDay bool, holidays Holidays) float64 {
	if halfDay {
		return HalfDay
	}
	return float64(CountBusinessDays(start, end, holidays))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
