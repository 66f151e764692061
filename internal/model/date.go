package model

import "time"

// DateLayout is the wire format of a business date.
const DateLayout = "2006-01-02"

// BusinessDate truncates t to its calendar date at UTC midnight. Sales are
// attributed to this date, independent of when the record was written.
func BusinessDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a business date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return BusinessDate(t), nil
}
