package event_bus

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type EventType string

// Event is the untyped envelope passed to subscribers.
type Event struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      any
}

func NewEvent(ctx context.Context, eventType EventType, data any) Event {
	return Event{
		ctx:       ctx,
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Context returns the publisher's context, or context.Background when none was given.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// EventT is the envelope seen by SubscribeTyped handlers.
type EventT[T any] struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      T
}

func (e EventT[T]) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

type handler func(Event) error

type subscription struct {
	id uint64
	h  handler
}

// EventBus dispatches events synchronously. Handlers of one event type run in
// subscription order on the publisher's goroutine.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType]map[uint64]handler
	nextID      uint64
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType]map[uint64]handler),
	}
}

// Subscribe registers h for eventType and returns a function removing it again.
func (eb *EventBus) Subscribe(eventType EventType, h func(Event) error) (unsubscribe func()) {
	eb.mu.Lock()
	eb.nextID++
	id := eb.nextID

	if eb.subscribers[eventType] == nil {
		eb.subscribers[eventType] = make(map[uint64]handler)
	}
	eb.subscribers[eventType][id] = handler(h)
	eb.mu.Unlock()

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()

		if handlers := eb.subscribers[eventType]; handlers != nil {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(eb.subscribers, eventType)
			}
		}
	}
}

// SubscribeTyped registers a handler for payloads of type T. Events carrying a
// different payload type are skipped. It is a free function because methods
// cannot have type parameters.
//
//	unsub := event_bus.SubscribeTyped[event_bus.OccurrencesCreated](bus, event_bus.OccurrencesCreatedType,
//	    func(e event_bus.EventT[event_bus.OccurrencesCreated]) error {
//	        log.Infof("event %d got %d occurrences", e.Data.EventId, len(e.Data.Occurrences))
//	        return nil
//	    })
func SubscribeTyped[T any](eb *EventBus, eventType EventType, h func(EventT[T]) error) (unsubscribe func()) {
	wrapper := func(e Event) error {
		if e.Data == nil {
			log.Debugf("EventBus: nil data for event type %s, skipping typed handler", eventType)
			return nil
		}

		payload, ok := e.Data.(T)
		if !ok {
			log.Debugf("EventBus: type mismatch for event %s: expected %T, got %T",
				eventType, *new(T), e.Data)
			return nil
		}

		return h(EventT[T]{
			ctx:       e.ctx,
			Type:      e.Type,
			Timestamp: e.Timestamp,
			Data:      payload,
		})
	}
	return eb.Subscribe(eventType, wrapper)
}

// Publish runs every handler registered for e.Type. A failing or panicking handler
// does not stop the others; all failures are joined into the returned error.
// Cancellation of the event's context stops dispatch.
func (eb *EventBus) Publish(e Event) error {
	if err := e.Context().Err(); err != nil {
		return fmt.Errorf("event %s: context cancelled before publish: %w", e.Type, err)
	}

	eb.mu.RLock()
	subscriptions := make([]subscription, 0, len(eb.subscribers[e.Type]))
	for id, h := range eb.subscribers[e.Type] {
		subscriptions = append(subscriptions, subscription{id: id, h: h})
	}
	eb.mu.RUnlock()
	slices.SortFunc(subscriptions, func(a, b subscription) int {
		return cmp.Compare(a.id, b.id)
	})

	var errs []error
	for _, s := range subscriptions {
		if err := e.Context().Err(); err != nil {
			errs = append(errs, fmt.Errorf("context cancelled during event processing: %w", err))
			break
		}

		if err := eb.dispatch(s, e); err != nil {
			log.Errorf("EventBus: handler error (ID %d) for event %s: %v", s.id, e.Type, err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("event %s: %d handler(s) failed: %w", e.Type, len(errs), errors.Join(errs...))
	}
	return nil
}

func (eb *EventBus) dispatch(s subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic (ID %d) for event %s: %v", s.id, e.Type, r)
		}
	}()
	return s.h(e)
}
