package calendar

import (
	"errors"
	"time"

	"github.com/jivetime/jivetime/pkg/occurrence"
	"github.com/jivetime/jivetime/pkg/timeslot"
)

var ErrInvalidDate = errors.New("invalid calendar date")

type DayView struct {
	Day       time.Time
	PrevDay   time.Time
	NextDay   time.Time
	Timeslots timeslot.Grid[occurrence.Occurrence]
	Scopes    []Scope
}

// MonthDay is one cell of a month grid. Day is 0 for the padding cells before the
// first and after the last day of the month.
type MonthDay struct {
	Day         int
	Occurrences []occurrence.Occurrence
}

type MonthView struct {
	Today     time.Time
	ThisMonth time.Time
	NextMonth time.Time
	LastMonth time.Time
	Weekdays  []Label
	Weeks     [][]MonthDay
	Scopes    []Scope
}

type MonthOccurrences struct {
	Month       time.Time
	Occurrences []occurrence.Occurrence
}

// YearView holds only the months that have at least one occurrence.
type YearView struct {
	Year     int
	NextYear int
	LastYear int
	ByMonth  []MonthOccurrences
	Scopes   []Scope
}

type Options struct {
	Labels     Labels
	StartTimes []timeslot.Option
	EndTimes   []timeslot.OffsetOption
}

func validDate(year int, month time.Month, day int) bool {
	if year < 1 || year > 9999 || month < time.January || month > time.December || day < 1 {
		return false
	}
	return day <= daysIn(year, month)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
