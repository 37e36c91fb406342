package money

import (
	"time"

	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
)

// DateRange is an inclusive [Start, End] span of calendar days, with
// Start <= End. Times are truncated to the day; comparisons and Contains
// ignore time-of-day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NewDateRange builds an inclusive range, rejecting start > end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start, end = truncateToDay(start), truncateToDay(end)
	if start.After(end) {
		return DateRange{}, apperrors.WithMessage(apperrors.ErrValidation, "range start must not be after end")
	}
	return DateRange{Start: start, End: end}, nil
}

// ForMonth returns the range [Y-M-01, last-day-of-M].
func ForMonth(year int, month time.Month) DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return DateRange{Start: start, End: end}
}

// LastNDays returns the range [now-n+1 days, now], inclusive of today.
func LastNDays(n int, now time.Time) DateRange {
	end := truncateToDay(now)
	start := end.AddDate(0, 0, -(n - 1))
	return DateRange{Start: start, End: end}
}

// Contains reports whether t's calendar day falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	d := truncateToDay(t)
	return !d.Before(r.Start) && !d.After(r.End)
}
