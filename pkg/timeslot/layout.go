package timeslot

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidLayout = errors.New("invalid timeslot layout")

const clockFormat = "15:04"

// Layout describes the time window a grid covers. Start is the offset of the first row
// from midnight, Window the span covered after it.
type Layout struct {
	Start      time.Duration
	Window     time.Duration
	Interval   time.Duration
	MinColumns int
}

// DefaultLayout is 09:00 to 19:00 in quarter hours with room for four parallel items.
var DefaultLayout = Layout{
	Start:      9 * time.Hour,
	Window:     10 * time.Hour,
	Interval:   15 * time.Minute,
	MinColumns: 4,
}

func (l Layout) Validate() error {
	if l.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %s", ErrInvalidLayout, l.Interval)
	}
	if l.Window < 0 {
		return fmt.Errorf("%w: window must not be negative, got %s", ErrInvalidLayout, l.Window)
	}
	if l.Start < 0 || l.Start >= 24*time.Hour {
		return fmt.Errorf("%w: start must be within a day, got %s", ErrInvalidLayout, l.Start)
	}
	if l.MinColumns < 0 {
		return fmt.Errorf("%w: min columns must not be negative, got %d", ErrInvalidLayout, l.MinColumns)
	}
	return nil
}

// RowCount is floor(Window/Interval) + 1; both ends of the window get a row.
func (l Layout) RowCount() int {
	return int(l.Window/l.Interval) + 1
}

// DayStart returns the wall clock time of the first row on the given day, in day's location.
func (l Layout) DayStart(day time.Time) time.Time {
	offset := l.Start.Truncate(time.Second)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, int(offset/time.Second), 0, day.Location())
}

// ParseClock parses "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse(clockFormat, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a HH:MM time", ErrInvalidLayout, s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
