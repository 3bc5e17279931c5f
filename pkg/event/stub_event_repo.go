package event

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/jivetime/jivetime/pkg/recurrence"
)

var errStubOccurrences = errors.New("stub: storing occurrences failed")

type storedOccurrence struct {
	Id      int
	EventId int
	Span    recurrence.Occurrence
}

type StubEventRepo struct {
	mu          sync.RWMutex
	eventTypes  map[int]EventType
	events      map[int]Event
	occurrences map[int]storedOccurrence
	notes       map[int]Note
	nextId      int

	// FailOccurrences makes StoreOccurrences return an error.
	FailOccurrences bool
}

func NewStubEventRepo() *StubEventRepo {
	return &StubEventRepo{
		eventTypes:  make(map[int]EventType),
		events:      make(map[int]Event),
		occurrences: make(map[int]storedOccurrence),
		notes:       make(map[int]Note),
		nextId:      1,
	}
}

func (r *StubEventRepo) WithTransaction(ctx context.Context, fn func(repo EventRepository) error) error {
	r.mu.Lock()
	eventTypes := maps.Clone(r.eventTypes)
	events := maps.Clone(r.events)
	occurrences := maps.Clone(r.occurrences)
	notes := maps.Clone(r.notes)
	nextId := r.nextId
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.eventTypes = eventTypes
		r.events = events
		r.occurrences = occurrences
		r.notes = notes
		r.nextId = nextId
		return err
	}
	return nil
}

func (r *StubEventRepo) id() int {
	id := r.nextId
	r.nextId++
	return id
}

func (r *StubEventRepo) ListEventTypes(ctx context.Context) ([]EventType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := slices.Collect(maps.Values(r.eventTypes))
	slices.SortFunc(types, func(a, b EventType) int {
		if c := strings.Compare(a.Label, b.Label); c != 0 {
			return c
		}
		return a.Id - b.Id
	})
	return types, nil
}

func (r *StubEventRepo) GetEventType(ctx context.Context, id int) (EventType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.eventTypes[id]
	if !ok {
		return EventType{}, ErrEventTypeNotFound
	}
	return t, nil
}

func (r *StubEventRepo) StoreEventType(ctx context.Context, eventType EventType) (EventType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.eventTypes {
		if t.Abbr == eventType.Abbr {
			return EventType{}, ErrEventTypeExists
		}
	}
	eventType.Id = r.id()
	r.eventTypes[eventType.Id] = eventType
	return eventType, nil
}

func (r *StubEventRepo) ListEvents(ctx context.Context, groupId int) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Event, 0)
	for _, e := range r.events {
		if e.GroupId == groupId {
			result = append(result, r.withType(e))
		}
	}
	slices.SortFunc(result, func(a, b Event) int {
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return a.Id - b.Id
	})
	return result, nil
}

func (r *StubEventRepo) GetEvent(ctx context.Context, groupId int, id int) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok || e.GroupId != groupId {
		return Event{}, ErrEventNotFound
	}
	return r.withType(e), nil
}

func (r *StubEventRepo) withType(e Event) Event {
	if t, ok := r.eventTypes[e.EventType.Id]; ok {
		e.EventType = t
	}
	return e
}

func (r *StubEventRepo) StoreEvent(ctx context.Context, groupId int, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.eventTypes[event.EventType.Id]; !ok {
		return Event{}, ErrEventTypeNotFound
	}
	event.Id = r.id()
	event.GroupId = groupId
	r.events[event.Id] = event
	return r.withType(event), nil
}

func (r *StubEventRepo) UpdateEvent(ctx context.Context, groupId int, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.events[event.Id]
	if !ok || stored.GroupId != groupId {
		return Event{}, ErrEventNotFound
	}
	stored.Title = event.Title
	stored.Description = event.Description
	stored.EventType = event.EventType
	r.events[event.Id] = stored
	return r.withType(stored), nil
}

func (r *StubEventRepo) DeleteEvent(ctx context.Context, groupId int, id int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.GroupId != groupId {
		return 0, ErrEventNotFound
	}
	delete(r.events, id)
	removed := 0
	for oid, o := range r.occurrences {
		if o.EventId == id {
			delete(r.occurrences, oid)
			removed++
		}
	}
	for nid, n := range r.notes {
		if n.EventId == id {
			delete(r.notes, nid)
		}
	}
	return removed, nil
}

func (r *StubEventRepo) StoreOccurrences(ctx context.Context, eventId int, spans []recurrence.Occurrence) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailOccurrences {
		return nil, errStubOccurrences
	}
	ids := make([]int, 0, len(spans))
	for _, span := range spans {
		id := r.id()
		r.occurrences[id] = storedOccurrence{Id: id, EventId: eventId, Span: span}
		ids = append(ids, id)
	}
	return ids, nil
}

// Occurrences returns the stored spans of eventId ordered by start.
func (r *StubEventRepo) Occurrences(eventId int) []recurrence.Occurrence {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]recurrence.Occurrence, 0)
	for _, o := range r.occurrences {
		if o.EventId == eventId {
			result = append(result, o.Span)
		}
	}
	slices.SortFunc(result, func(a, b recurrence.Occurrence) int { return a.Start.Compare(b.Start) })
	return result
}

func (r *StubEventRepo) StoreNote(ctx context.Context, note Note) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	note.Id = r.id()
	r.notes[note.Id] = note
	return note, nil
}

func (r *StubEventRepo) ListNotes(ctx context.Context, eventId int) ([]Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Note, 0)
	for _, n := range r.notes {
		if n.EventId == eventId {
			result = append(result, n)
		}
	}
	slices.SortFunc(result, func(a, b Note) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return a.Id - b.Id
	})
	return result, nil
}
