package models

import (
	"time"

	dErrors "eventreg/pkg/domain-errors"
)

// DayLayout is the canonical wire and storage form of a Day.
const DayLayout = "2006-01-02"

// Day is a civil calendar date held in its canonical YYYY-MM-DD form.
// Equality is string equality; two Days are the same date exactly when their
// canonical strings match.
type Day string

// ParseDay accepts only the canonical YYYY-MM-DD form.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid day format")
	}
	return Day(t.Format(DayLayout)), nil
}

// DayOf returns the calendar date of t in t's own location.
func DayOf(t time.Time) Day {
	return Day(t.Format(DayLayout))
}

func (d Day) String() string { return string(d) }

// Time returns midnight UTC of the date.
func (d Day) Time() (time.Time, error) {
	return time.Parse(DayLayout, string(d))
}

// Before reports whether d is strictly earlier than other. Canonical dates
// order lexically.
func (d Day) Before(other Day) bool { return d < other }

// Display renders dd/MM/yyyy; non-canonical values are returned unchanged.
func (d Day) Display() string {
	t, err := d.Time()
	if err != nil {
		return string(d)
	}
	return t.Format("02/01/2006")
}

// ShortLabel renders dd/MM for chart axes.
func (d Day) ShortLabel() string {
	t, err := d.Time()
	if err != nil {
		return string(d)
	}
	return t.Format("02/01")
}
