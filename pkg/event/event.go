package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jivetime/jivetime/pkg/recurrence"
)

var ErrEventNotFound = errors.New("event not found")
var ErrInvalidEvent = errors.New("invalid event")
var ErrEventTypeNotFound = errors.New("event type not found")
var ErrEventTypeExists = errors.New("event type already exists")
var ErrInvalidEventType = errors.New("invalid event type")

const (
	MaxTitleLength       = 32
	MaxDescriptionLength = 100
	maxAbbrLength        = 4
	maxLabelLength       = 50
)

// EventType classifies events, e.g. "mtg" / "Meeting".
type EventType struct {
	Id    int
	Abbr  string
	Label string
}

type Event struct {
	Id          int
	Uid         uuid.UUID
	GroupId     int
	EventType   EventType
	Title       string
	Description string
}

// Note is free text attached to an event.
type Note struct {
	Id        int
	EventId   int
	Text      string
	CreatedAt time.Time
}

// Schedule is the anchor span of an event plus an optional recurrence.
// A zero EndTime means the configured default duration.
type Schedule struct {
	StartTime  time.Time
	EndTime    time.Time
	Recurrence *recurrence.Params
}

func (e *Event) normalize() error {
	e.Title = strings.TrimSpace(e.Title)
	e.Description = strings.TrimSpace(e.Description)
	if e.Title == "" || utf8.RuneCountInString(e.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title must have 1 to %d characters", ErrInvalidEvent, MaxTitleLength)
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description must not exceed %d characters", ErrInvalidEvent, MaxDescriptionLength)
	}
	if e.EventType.Id == 0 {
		return fmt.Errorf("%w: event type is required", ErrInvalidEvent)
	}
	return nil
}

func (t *EventType) normalize() error {
	t.Abbr = strings.TrimSpace(t.Abbr)
	t.Label = strings.TrimSpace(t.Label)
	if t.Abbr == "" || utf8.RuneCountInString(t.Abbr) > maxAbbrLength {
		return fmt.Errorf("%w: abbreviation must have 1 to %d characters", ErrInvalidEventType, maxAbbrLength)
	}
	if t.Label == "" || utf8.RuneCountInString(t.Label) > maxLabelLength {
		return fmt.Errorf("%w: label must have 1 to %d characters", ErrInvalidEventType, maxLabelLength)
	}
	return nil
}
