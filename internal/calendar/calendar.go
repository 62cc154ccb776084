// Package calendar provides the per-planet date and hour counter.
// Months are a fixed 30 days and years a fixed 12 months on every planet;
// only the number of hours in a day differs.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Calendar constants.
const (
	DaysPerMonth  = 30
	MonthsPerYear = 12
	DaysPerYear   = DaysPerMonth * MonthsPerYear
)

var (
	// ErrInvalidDateFormat is returned when a date is not "dd.mm.yyyy" with
	// day 1–30 and month 1–12.
	ErrInvalidDateFormat = errors.New("invalid date format")
	// ErrInvalidDayLength is returned for a day length below one hour.
	ErrInvalidDayLength = errors.New("invalid day length")
)

// Date is a calendar day without an hour component.
type Date struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// String formats the date as "dd.mm.yyyy".
func (d Date) String() string {
	return fmt.Sprintf("%02d.%02d.%d", d.Day, d.Month, d.Year)
}

// ordinal is the number of days since 01.01.0000.
func (d Date) ordinal() int {
	return d.Year*DaysPerYear + (d.Month-1)*DaysPerMonth + (d.Day - 1)
}

func dateFromOrdinal(n int) Date {
	return Date{
		Day:   n%DaysPerMonth + 1,
		Month: n/DaysPerMonth%MonthsPerYear + 1,
		Year:  n / DaysPerYear,
	}
}

// Parse reads a "dd.mm.yyyy" date. Surrounding whitespace is ignored.
func Parse(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}

	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
		}
		fields[i] = n
	}

	d := Date{Day: fields[0], Month: fields[1], Year: fields[2]}
	if d.Day < 1 || d.Day > DaysPerMonth || d.Month < 1 || d.Month > MonthsPerYear || d.Year < 0 {
		return Date{}, fmt.Errorf("%w: %q out of range", ErrInvalidDateFormat, s)
	}
	return d, nil
}

// Normalize returns the zero-padded form of a date string.
func Normalize(s string) (string, error) {
	d, err := Parse(s)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// Calendar tracks date and hour for a planet with a fixed day length.
type Calendar struct {
	date      Date
	hour      int
	dayLength int
}

// New creates a calendar at hour 0 of the given date.
func New(date string, dayLength int) (*Calendar, error) {
	if dayLength < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDayLength, dayLength)
	}
	d, err := Parse(date)
	if err != nil {
		return nil, err
	}
	return &Calendar{date: d, dayLength: dayLength}, nil
}

// AdvanceOneHour moves the clock forward by a single hour, rolling the
// day, month and year over as needed.
func (c *Calendar) AdvanceOneHour() {
	c.hour++
	if c.hour < c.dayLength {
		return
	}
	c.hour = 0
	c.date.Day++
	if c.date.Day > DaysPerMonth {
		c.date.Day = 1
		c.date.Month++
		if c.date.Month > MonthsPerYear {
			c.date.Month = 1
			c.date.Year++
		}
	}
}

// AdvanceHours moves the clock forward by n hours in constant time.
// The result is identical to n calls of AdvanceOneHour. Negative n is a no-op.
func (c *Calendar) AdvanceHours(n int) {
	if n <= 0 {
		return
	}
	total := c.hour + n
	c.hour = total % c.dayLength
	c.date = dateFromOrdinal(c.date.ordinal() + total/c.dayLength)
}

// CurrentDate returns the date as "dd.mm.yyyy".
func (c *Calendar) CurrentDate() string {
	return c.date.String()
}

// Date returns the current date.
func (c *Calendar) Date() Date {
	return c.date
}

// Hour returns the hour within the current day, 0 ≤ hour < DayLength.
func (c *Calendar) Hour() int {
	return c.hour
}

// DayLength returns the number of hours in one day.
func (c *Calendar) DayLength() int {
	return c.dayLength
}

// FullTime returns "dd.mm.yyyy HH:00".
func (c *Calendar) FullTime() string {
	return fmt.Sprintf("%s %02d:00", c.date, c.hour)
}

// MatchesDate reports whether the calendar is on the given date. The
// argument is normalized first, so "1.1.2400" matches "01.01.2400".
// A malformed date never matches.
func (c *Calendar) MatchesDate(date string) bool {
	d, err := Parse(date)
	if err != nil {
		return false
	}
	return d == c.date
}

// Clone returns an independent copy.
func (c *Calendar) Clone() *Calendar {
	cp := *c
	return &cp
}

// String implements fmt.Stringer.
func (c *Calendar) String() string {
	return c.FullTime()
}
