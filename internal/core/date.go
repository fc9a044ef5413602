package core

import (
	"errors"
	"time"
)

// Date carries calendar-date semantics: the time component is always
// midnight UTC, so two Dates compare equal iff they name the same day.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// Today returns the current calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses an ISO-8601 date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time.AddDate(0, 0, n))
}

// Equal reports whether both dates name the same day.
func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

// DaysUntil returns the number of whole days from d to o (negative if o is
// earlier). Both operands are midnight UTC, so the division is exact.
func (d Date) DaysUntil(o Date) int {
	return int(o.Time.Sub(d.Time) / (24 * time.Hour))
}

func (d Date) String() string {
	return d.Time.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
