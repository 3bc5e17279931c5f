package occurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrOccurrenceNotFound = errors.New("occurrence not found")
var ErrInvalidOccurrence = errors.New("invalid occurrence")

// Occurrence is one scheduled span of an event. The event fields are joined on read.
type Occurrence struct {
	Id        int
	EventId   int
	StartTime time.Time
	EndTime   time.Time

	EventUid       uuid.UUID
	Title          string
	Description    string
	EventTypeAbbr  string
	EventTypeLabel string
}

func (o Occurrence) Bounds() (time.Time, time.Time) {
	return o.StartTime, o.EndTime
}

func (o Occurrence) Duration() time.Duration {
	return o.EndTime.Sub(o.StartTime)
}

// Overlaps reports whether the occurrence shares any instant with [from, to).
func (o Occurrence) Overlaps(from, to time.Time) bool {
	return o.StartTime.Before(to) && o.EndTime.After(from)
}

func (o Occurrence) validate() error {
	if o.StartTime.IsZero() || o.EndTime.IsZero() {
		return fmt.Errorf("%w: start and end time are required", ErrInvalidOccurrence)
	}
	if !o.EndTime.After(o.StartTime) {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidOccurrence)
	}
	return nil
}
