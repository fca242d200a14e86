package transaction

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	errInvalidAmount = errors.New("amount must be a finite number")
	errInvalidDate   = errors.New("date must be a valid calendar timestamp")
)

// Amount accepts both a JSON number and a numeric string ("50000");
// form-based clients tend to send the latter.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))

	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return errInvalidAmount
		}
		s = strings.TrimSpace(unquoted)
	}

	if s == "" || s == "null" {
		return errInvalidAmount
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return errInvalidAmount
	}

	*a = Amount(f)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(a))
}

func (a Amount) Float64() float64 {
	return float64(a)
}

// DateTime accepts an RFC 3339 timestamp or a plain calendar day.
// Day-only values resolve in the server's local calendar, matching the
// month-range queries.
type DateTime struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))

	if s == "null" {
		return nil
	}

	unquoted, err := strconv.Unquote(s)
	if err != nil {
		return errInvalidDate
	}
	unquoted = strings.TrimSpace(unquoted)

	for _, layout := range dateLayouts {
		var t time.Time
		if layout == "2006-01-02" {
			t, err = time.ParseInLocation(layout, unquoted, time.Local)
		} else {
			t, err = time.Parse(layout, unquoted)
		}
		if err == nil {
			d.Time = t
			return nil
		}
	}

	return errInvalidDate
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time)
}
