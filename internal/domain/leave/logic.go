package leave

import (
	"errors"
	"time"
)

// CalculateDays returns the inclusive day count between start and end,
// so a single-day request counts as 1. It is computed once at request
// creation and stored; later edits never recompute it.
func CalculateDays(start, end time.Time) (int, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return 0, errors.New("end date before start date")
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
