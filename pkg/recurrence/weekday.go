package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"
)

// Weekday is an ISO 8601 weekday: 1 = Monday ... 7 = Sunday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var isoWeekdays = [...]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// ISOWeekday converts a time.Weekday (Sunday = 0) to its ISO number.
func ISOWeekday(d time.Weekday) Weekday {
	if d == time.Sunday {
		return Sunday
	}
	return Weekday(d)
}

// Std converts the ISO weekday back to time.Weekday.
func (w Weekday) Std() time.Weekday {
	if w == Sunday {
		return time.Sunday
	}
	return time.Weekday(w)
}

func (w Weekday) rrule() rrule.Weekday {
	return isoWeekdays[w-1]
}

// Ordinal selects the Nth weekday of a period. Last is -1.
type Ordinal int

const (
	First  Ordinal = 1
	Second Ordinal = 2
	Third  Ordinal = 3
	Fourth Ordinal = 4
	Last   Ordinal = -1
)

func (o Ordinal) Valid() bool {
	switch o {
	case First, Second, Third, Fourth, Last:
		return true
	}
	return false
}

// OrdinalFor returns the ordinal of the weekday the given day falls on within its month,
// using Last for anything past the fourth week.
func OrdinalFor(day time.Time) Ordinal {
	n := (day.Day() - 1) / 7
	if n > 3 {
		return Last
	}
	return Ordinal(n + 1)
}

// OrdinalWeekday is "the Nth <weekday>" of a month or year.
type OrdinalWeekday struct {
	Ordinal Ordinal
	Weekday Weekday
}

func (o OrdinalWeekday) validate(field string) error {
	if !o.Ordinal.Valid() {
		return invalid(field, "ordinal %d is not one of 1, 2, 3, 4, -1", o.Ordinal)
	}
	if !o.Weekday.Valid() {
		return invalid(field, "weekday %d is out of range 1-7", o.Weekday)
	}
	return nil
}

func (o OrdinalWeekday) rrule() rrule.Weekday {
	weekday := o.Weekday.rrule()
	return weekday.Nth(int(o.Ordinal))
}
