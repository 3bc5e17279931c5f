package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jivetime/jivetime/internal/event_bus"
	"github.com/jivetime/jivetime/internal/utils"
	"github.com/jivetime/jivetime/pkg/group"
	"github.com/jivetime/jivetime/pkg/occurrence"
	"github.com/jivetime/jivetime/pkg/recurrence"
	log "github.com/sirupsen/logrus"
)

type EventService interface {
	ListEventTypes(ctx context.Context) ([]EventType, error)
	CreateEventType(ctx context.Context, eventType EventType) (EventType, error)
	ListEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id int) (Event, error)
	// CreateEvent stores the event together with every occurrence of its schedule.
	// Nothing is stored when the schedule does not expand.
	CreateEvent(ctx context.Context, e Event, schedule Schedule) (Event, []occurrence.Occurrence, error)
	ImportEvent(ctx context.Context, e Event, spans []recurrence.Occurrence) (Event, []occurrence.Occurrence, error)
	UpdateEvent(ctx context.Context, e Event) (Event, error)
	DeleteEvent(ctx context.Context, id int) error
	AddOccurrences(ctx context.Context, eventId int, schedule Schedule) ([]occurrence.Occurrence, error)
	AddNote(ctx context.Context, eventId int, text string) (Note, error)
	ListNotes(ctx context.Context, eventId int) ([]Note, error)
}

type EventServiceImpl struct {
	repo            EventRepository
	expander        *recurrence.Expander
	eventBus        *event_bus.EventBus
	clock           utils.Clock
	defaultDuration time.Duration
}

func NewEventService(
	repo EventRepository,
	expander *recurrence.Expander,
	eventBus *event_bus.EventBus,
	clock utils.Clock,
	defaultDuration time.Duration,
) *EventServiceImpl {
	return &EventServiceImpl{
		repo:            repo,
		expander:        expander,
		eventBus:        eventBus,
		clock:           clock,
		defaultDuration: defaultDuration,
	}
}

func (s *EventServiceImpl) ListEventTypes(ctx context.Context) ([]EventType, error) {
	return s.repo.ListEventTypes(ctx)
}

func (s *EventServiceImpl) CreateEventType(ctx context.Context, eventType EventType) (EventType, error) {
	if err := eventType.normalize(); err != nil {
		return EventType{}, err
	}
	return s.repo.StoreEventType(ctx, eventType)
}

func (s *EventServiceImpl) ListEvents(ctx context.Context) ([]Event, error) {
	groupId, err := group.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current group: %w", err)
	}
	return s.repo.ListEvents(ctx, groupId)
}

func (s *EventServiceImpl) GetEvent(ctx context.Context, id int) (Event, error) {
	groupId, err := group.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current group: %w", err)
	}
	return s.repo.GetEvent(ctx, groupId, id)
}

func (s *EventServiceImpl) CreateEvent(ctx context.Context, e Event, schedule Schedule) (Event, []occurrence.Occurrence, error) {
	current, err := group.Current(ctx)
	if err != nil {
		return Event{}, nil, fmt.Errorf("failed to get current group: %w", err)
	}
	loc, err := current.Location()
	if err != nil {
		return Event{}, nil, err
	}
	spans, err := s.expand(schedule, loc)
	if err != nil {
		return Event{}, nil, err
	}
	return s.store(ctx, current.Id, e, spans)
}

// ImportEvent stores an event with spans expanded elsewhere, e.g. from an iCalendar RRULE.
func (s *EventServiceImpl) ImportEvent(ctx context.Context, e Event, spans []recurrence.Occurrence) (Event, []occurrence.Occurrence, error) {
	groupId, err := group.CurrentId(ctx)
	if err != nil {
		return Event{}, nil, fmt.Errorf("failed to get current group: %w", err)
	}
	if len(spans) == 0 {
		return Event{}, nil, fmt.Errorf("%w: at least one occurrence is required", ErrInvalidEvent)
	}
	for _, span := range spans {
		if !span.End.After(span.Start) {
			return Event{}, nil, fmt.Errorf("%w: occurrence at %s ends before it starts", ErrInvalidEvent, span.Start)
		}
	}
	return s.store(ctx, groupId, e, spans)
}

func (s *EventServiceImpl) store(ctx context.Context, groupId int, e Event, spans []recurrence.Occurrence) (Event, []occurrence.Occurrence, error) {
	if err := e.normalize(); err != nil {
		return Event{}, nil, err
	}

	var stored Event
	var ids []int
	err := s.repo.WithTransaction(ctx, func(repo EventRepository) error {
		if _, err := repo.GetEventType(ctx, e.EventType.Id); err != nil {
			return err
		}
		var err error
		e.Uid = uuid.New()
		stored, err = repo.StoreEvent(ctx, groupId, e)
		if err != nil {
			return err
		}
		ids, err = repo.StoreOccurrences(ctx, stored.Id, spans)
		return err
	})
	if err != nil {
		return Event{}, nil, err
	}

	// reload to get the event type abbr and label
	if reloaded, err := s.repo.GetEvent(ctx, groupId, stored.Id); err == nil {
		stored = reloaded
	}
	log.Debugf("created event %d with %d occurrences", stored.Id, len(ids))
	s.publishCreated(ctx, groupId, stored.Id, ids, spans)
	return stored, toOccurrences(stored, ids, spans), nil
}

func (s *EventServiceImpl) AddOccurrences(ctx context.Context, eventId int, schedule Schedule) ([]occurrence.Occurrence, error) {
	current, err := group.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current group: %w", err)
	}
	loc, err := current.Location()
	if err != nil {
		return nil, err
	}
	spans, err := s.expand(schedule, loc)
	if err != nil {
		return nil, err
	}

	var e Event
	var ids []int
	err = s.repo.WithTransaction(ctx, func(repo EventRepository) error {
		e, err = repo.GetEvent(ctx, current.Id, eventId)
		if err != nil {
			return err
		}
		ids, err = repo.StoreOccurrences(ctx, eventId, spans)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishCreated(ctx, current.Id, eventId, ids, spans)
	return toOccurrences(e, ids, spans), nil
}

// expand anchors the schedule in loc so that weekday and month-day rules follow
// the group's wall clock.
func (s *EventServiceImpl) expand(schedule Schedule, loc *time.Location) ([]recurrence.Occurrence, error) {
	start := schedule.StartTime.In(loc)
	end := schedule.EndTime
	if end.IsZero() {
		end = start.Add(s.defaultDuration)
	}
	end = end.In(loc)

	var spec *recurrence.Spec
	if schedule.Recurrence != nil {
		var err error
		spec, err = schedule.Recurrence.Spec(loc)
		if err != nil {
			return nil, err
		}
	}
	return s.expander.Expand(start, end, spec)
}

func (s *EventServiceImpl) publishCreated(ctx context.Context, groupId, eventId int, ids []int, spans []recurrence.Occurrence) {
	created := event_bus.OccurrencesCreated{
		GroupId:     groupId,
		EventId:     eventId,
		Occurrences: make([]event_bus.OccurrenceSpan, 0, len(ids)),
	}
	for i, id := range ids {
		created.Occurrences = append(created.Occurrences, event_bus.OccurrenceSpan{
			Id:        id,
			StartTime: spans[i].Start,
			EndTime:   spans[i].End,
		})
	}
	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.OccurrencesCreatedType, created)); err != nil {
		log.Warnf("failed to publish created occurrences of event %d: %v", eventId, err)
	}
}

func toOccurrences(e Event, ids []int, spans []recurrence.Occurrence) []occurrence.Occurrence {
	result := make([]occurrence.Occurrence, 0, len(ids))
	for i, id := range ids {
		result = append(result, occurrence.Occurrence{
			Id:             id,
			EventId:        e.Id,
			StartTime:      spans[i].Start,
			EndTime:        spans[i].End,
			EventUid:       e.Uid,
			Title:          e.Title,
			Description:    e.Description,
			EventTypeAbbr:  e.EventType.Abbr,
			EventTypeLabel: e.EventType.Label,
		})
	}
	return result
}

func (s *EventServiceImpl) UpdateEvent(ctx context.Context, e Event) (Event, error) {
	groupId, err := group.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current group: %w", err)
	}
	if err := e.normalize(); err != nil {
		return Event{}, err
	}
	if _, err := s.repo.GetEventType(ctx, e.EventType.Id); err != nil {
		return Event{}, err
	}
	return s.repo.UpdateEvent(ctx, groupId, e)
}

func (s *EventServiceImpl) DeleteEvent(ctx context.Context, id int) error {
	groupId, err := group.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current group: %w", err)
	}
	removed, err := s.repo.DeleteEvent(ctx, groupId, id)
	if err != nil {
		return err
	}

	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.EventDeletedType, event_bus.EventDeleted{
		GroupId:     groupId,
		EventId:     id,
		Occurrences: removed,
	}))
	if err != nil {
		log.Warnf("failed to publish deletion of event %d: %v", id, err)
	}
	return nil
}

func (s *EventServiceImpl) AddNote(ctx context.Context, eventId int, text string) (Note, error) {
	if _, err := s.GetEvent(ctx, eventId); err != nil {
		return Note{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, fmt.Errorf("%w: note text is required", ErrInvalidEvent)
	}
	return s.repo.StoreNote(ctx, Note{EventId: eventId, Text: text, CreatedAt: s.clock.Now()})
}

func (s *EventServiceImpl) ListNotes(ctx context.Context, eventId int) ([]Note, error) {
	if _, err := s.GetEvent(ctx, eventId); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, eventId)
}
