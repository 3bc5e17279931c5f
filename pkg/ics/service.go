package ics

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jivetime/jivetime/internal/utils"
	"github.com/jivetime/jivetime/pkg/event"
	"github.com/jivetime/jivetime/pkg/group"
	"github.com/jivetime/jivetime/pkg/occurrence"
	"github.com/jivetime/jivetime/pkg/recurrence"
	log "github.com/sirupsen/logrus"
)

type OccurrenceFinder interface {
	FindInRange(ctx context.Context, from, to time.Time) ([]occurrence.Occurrence, error)
}

type EventImporter interface {
	ImportEvent(ctx context.Context, e event.Event, spans []recurrence.Occurrence) (event.Event, []occurrence.Occurrence, error)
}

type ImportResult struct {
	Events      int
	Occurrences int
	Skipped     []Skipped
}

type Service struct {
	occurrences     OccurrenceFinder
	events          EventImporter
	clock           utils.Clock
	maxOccurrences  int
	defaultDuration time.Duration
}

func NewService(
	occurrences OccurrenceFinder,
	events EventImporter,
	clock utils.Clock,
	maxOccurrences int,
	defaultDuration time.Duration,
) *Service {
	return &Service{
		occurrences:     occurrences,
		events:          events,
		clock:           clock,
		maxOccurrences:  maxOccurrences,
		defaultDuration: defaultDuration,
	}
}

// Export writes the current group's occurrences overlapping [from, to) as an iCalendar feed.
func (s *Service) Export(ctx context.Context, w io.Writer, from, to time.Time) error {
	occurrences, err := s.occurrences.FindInRange(ctx, from, to)
	if err != nil {
		return err
	}
	log.Debugf("exporting %d occurrences to iCalendar", len(occurrences))
	return Encode(w, occurrences, s.clock.Now())
}

// Import creates one event of eventTypeId per VEVENT in r. Events that fail to
// decode or store are reported in the result and do not stop the import.
func (s *Service) Import(ctx context.Context, r io.Reader, eventTypeId int) (ImportResult, error) {
	loc, err := group.CurrentLocation(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to get current group: %w", err)
	}

	entries, skipped, err := NewDecoder(loc, s.maxOccurrences, s.defaultDuration).Decode(r)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Skipped: skipped}
	for _, entry := range entries {
		e := event.Event{
			Title:       entry.Title,
			Description: entry.Description,
			EventType:   event.EventType{Id: eventTypeId},
		}
		_, stored, err := s.events.ImportEvent(ctx, e, entry.Spans)
		if err != nil {
			log.Warnf("failed to import event %q: %v", entry.Uid, err)
			result.Skipped = append(result.Skipped, Skipped{Uid: entry.Uid, Reason: err.Error()})
			continue
		}
		result.Events++
		result.Occurrences += len(stored)
	}
	log.Infof("imported %d events with %d occurrences, skipped %d", result.Events, result.Occurrences, len(result.Skipped))
	return result, nil
}
