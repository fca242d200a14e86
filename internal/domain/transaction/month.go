package transaction

import (
	"errors"
	"time"
)

var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// MonthRange returns the half-open interval [start, end) covering the
// whole calendar month in the server's local time, so variable month
// lengths and leap years fall out of the calendar arithmetic.
func MonthRange(year, month int) (start, end time.Time, err error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}

	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end = start.AddDate(0, 1, 0)

	return start, end, nil
}
