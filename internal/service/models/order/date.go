package order

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day component. It marshals to and
// from the "2006-01-02" form.
type Date struct {
	time.Time
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()

	return Date{time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON renders the date as a quoted "2006-01-02" string.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}

	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON parses a quoted "2006-01-02" string. Null leaves the date
// zero so Normalize can default it.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}

		return nil
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse date %q: %w", s, err)
	}

	*d = Date{t}

	return nil
}

// String returns the "2006-01-02" form.
func (d Date) String() string {
	return d.Format(dateLayout)
}
