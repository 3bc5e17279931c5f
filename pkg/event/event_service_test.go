package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jivetime/jivetime/internal/event_bus"
	"github.com/jivetime/jivetime/internal/utils"
	"github.com/jivetime/jivetime/pkg/group"
	"github.com/jivetime/jivetime/pkg/recurrence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = group.WithGroup(context.Background(), group.Group{Id: 1, Name: "Office", Timezone: "UTC"})

var now = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*EventServiceImpl, *StubEventRepo, *event_bus.EventBus) {
	t.Helper()
	repo := NewStubEventRepo()
	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{FixedNow: now}
	return NewEventService(repo, recurrence.NewExpander(0), bus, clock, time.Hour), repo, bus
}

func meetingType(t *testing.T, service *EventServiceImpl) EventType {
	t.Helper()
	eventType, err := service.CreateEventType(ctx, EventType{Abbr: "mtg", Label: "Meeting"})
	require.NoError(t, err)
	return eventType
}

func TestEventServiceImpl_CreateEvent(t *testing.T) {
	t.Run("weekly on Monday and Wednesday", func(t *testing.T) {
		// given
		service, repo, bus := setup(t)
		eventType := meetingType(t, service)
		var published []event_bus.OccurrencesCreated
		event_bus.SubscribeTyped(bus, event_bus.OccurrencesCreatedType, func(e event_bus.EventT[event_bus.OccurrencesCreated]) error {
			published = append(published, e.Data)
			return nil
		})
		schedule := Schedule{
			StartTime:  time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			Recurrence: &recurrence.Params{Count: 4, Freq: "WEEKLY", WeekDays: []int{1, 3}},
		}

		// when
		created, occurrences, err := service.CreateEvent(ctx, Event{Title: " Standup ", EventType: EventType{Id: eventType.Id}}, schedule)

		// then
		require.NoError(t, err)
		assert.Equal(t, "Standup", created.Title)
		assert.Equal(t, "mtg", created.EventType.Abbr)
		assert.NotEqual(t, uuid.Nil, created.Uid)
		require.Len(t, occurrences, 4)
		days := []int{1, 3, 8, 10}
		for i, o := range occurrences {
			assert.Equal(t, time.Date(2024, 1, days[i], 9, 0, 0, 0, time.UTC), o.StartTime)
			assert.Equal(t, time.Hour, o.Duration())
			assert.Equal(t, created.Id, o.EventId)
			assert.Equal(t, "Standup", o.Title)
		}
		assert.Len(t, repo.Occurrences(created.Id), 4)
		require.Len(t, published, 1)
		assert.Equal(t, created.Id, published[0].EventId)
		assert.Len(t, published[0].Occurrences, 4)
	})

	t.Run("missing end time uses the default duration", func(t *testing.T) {
		service, _, _ := setup(t)
		eventType := meetingType(t, service)
		start := time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC)

		_, occurrences, err := service.CreateEvent(ctx, Event{Title: "Review", EventType: eventType}, Schedule{StartTime: start})

		require.NoError(t, err)
		require.Len(t, occurrences, 1)
		assert.Equal(t, start.Add(time.Hour), occurrences[0].EndTime)
	})

	t.Run("expansion follows the group timezone", func(t *testing.T) {
		service, _, _ := setup(t)
		eventType := meetingType(t, service)
		tokyo := group.WithGroup(context.Background(), group.Group{Id: 1, Name: "Tokyo", Timezone: "Asia/Tokyo"})
		// Monday 08:00 in Tokyo is still Sunday in UTC
		start := time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)
		schedule := Schedule{
			StartTime:  start,
			Recurrence: &recurrence.Params{Count: 2, Freq: "WEEKLY", WeekDays: []int{1}},
		}

		_, occurrences, err := service.CreateEvent(tokyo, Event{Title: "Sync", EventType: eventType}, schedule)

		require.NoError(t, err)
		require.Len(t, occurrences, 2)
		assert.True(t, start.Equal(occurrences[0].StartTime))
		assert.True(t, start.AddDate(0, 0, 7).Equal(occurrences[1].StartTime))
	})

	t.Run("invalid recurrence stores nothing", func(t *testing.T) {
		service, repo, _ := setup(t)
		eventType := meetingType(t, service)
		schedule := Schedule{
			StartTime:  now,
			Recurrence: &recurrence.Params{Count: 3, Freq: "WEEKLY", WeekDays: []int{9}},
		}

		_, _, err := service.CreateEvent(ctx, Event{Title: "Broken", EventType: eventType}, schedule)

		var validationErr *recurrence.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		events, _ := repo.ListEvents(ctx, 1)
		assert.Empty(t, events)
	})

	t.Run("failed occurrence insert rolls back the event", func(t *testing.T) {
		service, repo, bus := setup(t)
		eventType := meetingType(t, service)
		repo.FailOccurrences = true
		published := 0
		bus.Subscribe(event_bus.OccurrencesCreatedType, func(event_bus.Event) error {
			published++
			return nil
		})

		_, _, err := service.CreateEvent(ctx, Event{Title: "Lost", EventType: eventType}, Schedule{StartTime: now})

		require.ErrorIs(t, err, errStubOccurrences)
		events, _ := repo.ListEvents(ctx, 1)
		assert.Empty(t, events)
		assert.Zero(t, published)
	})

	t.Run("unknown event type", func(t *testing.T) {
		service, _, _ := setup(t)

		_, _, err := service.CreateEvent(ctx, Event{Title: "Orphan", EventType: EventType{Id: 42}}, Schedule{StartTime: now})

		assert.ErrorIs(t, err, ErrEventTypeNotFound)
	})

	t.Run("requires a group", func(t *testing.T) {
		service, _, _ := setup(t)

		_, _, err := service.CreateEvent(context.Background(), Event{Title: "x", EventType: EventType{Id: 1}}, Schedule{StartTime: now})

		assert.ErrorIs(t, err, group.ErrNoGroup)
	})
}

func TestEventServiceImpl_CreateEventType(t *testing.T) {
	tests := []struct {
		name      string
		eventType EventType
		wantErr   error
	}{
		{name: "valid", eventType: EventType{Abbr: "mtg", Label: "Meeting"}},
		{name: "missing abbr", eventType: EventType{Abbr: " ", Label: "Meeting"}, wantErr: ErrInvalidEventType},
		{name: "abbr too long", eventType: EventType{Abbr: "meeting", Label: "Meeting"}, wantErr: ErrInvalidEventType},
		{name: "missing label", eventType: EventType{Abbr: "mtg"}, wantErr: ErrInvalidEventType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := setup(t)

			_, err := service.CreateEventType(ctx, tt.eventType)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	t.Run("duplicate abbr", func(t *testing.T) {
		service, _, _ := setup(t)
		meetingType(t, service)

		_, err := service.CreateEventType(ctx, EventType{Abbr: "mtg", Label: "Other"})

		assert.ErrorIs(t, err, ErrEventTypeExists)
	})
}

func TestEventServiceImpl_AddOccurrences(t *testing.T) {
	service, repo, _ := setup(t)
	eventType := meetingType(t, service)
	created, _, err := service.CreateEvent(ctx, Event{Title: "Gym", EventType: eventType}, Schedule{StartTime: now})
	require.NoError(t, err)

	added, err := service.AddOccurrences(ctx, created.Id, Schedule{
		StartTime:  time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2024, 2, 1, 19, 30, 0, 0, time.UTC),
		Recurrence: &recurrence.Params{Until: "2024-02-03", Freq: "DAILY"},
	})

	require.NoError(t, err)
	assert.Len(t, added, 3)
	assert.Len(t, repo.Occurrences(created.Id), 4)

	t.Run("other group cannot add", func(t *testing.T) {
		other := group.WithGroup(context.Background(), group.Group{Id: 2, Name: "Home", Timezone: "UTC"})

		_, err := service.AddOccurrences(other, created.Id, Schedule{StartTime: now})

		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestEventServiceImpl_DeleteEvent(t *testing.T) {
	// given
	service, repo, bus := setup(t)
	eventType := meetingType(t, service)
	created, _, err := service.CreateEvent(ctx, Event{Title: "Class", EventType: eventType}, Schedule{
		StartTime:  now,
		Recurrence: &recurrence.Params{Count: 5, Freq: "DAILY"},
	})
	require.NoError(t, err)
	var deleted event_bus.EventDeleted
	event_bus.SubscribeTyped(bus, event_bus.EventDeletedType, func(e event_bus.EventT[event_bus.EventDeleted]) error {
		deleted = e.Data
		return nil
	})

	// when
	err = service.DeleteEvent(ctx, created.Id)

	// then
	require.NoError(t, err)
	assert.Equal(t, 5, deleted.Occurrences)
	assert.Empty(t, repo.Occurrences(created.Id))
	_, err = service.GetEvent(ctx, created.Id)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, service.DeleteEvent(ctx, created.Id), ErrEventNotFound)
}

func TestEventServiceImpl_UpdateEvent(t *testing.T) {
	service, _, _ := setup(t)
	eventType := meetingType(t, service)
	created, _, err := service.CreateEvent(ctx, Event{Title: "Draft", EventType: eventType}, Schedule{StartTime: now})
	require.NoError(t, err)

	updated, err := service.UpdateEvent(ctx, Event{Id: created.Id, Title: "Final", Description: "room 4", EventType: eventType})

	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, "room 4", updated.Description)
	assert.Equal(t, created.Uid, updated.Uid)

	_, err = service.UpdateEvent(ctx, Event{Id: created.Id, Title: "", EventType: eventType})
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestEventServiceImpl_Notes(t *testing.T) {
	service, _, _ := setup(t)
	eventType := meetingType(t, service)
	created, _, err := service.CreateEvent(ctx, Event{Title: "Trip", EventType: eventType}, Schedule{StartTime: now})
	require.NoError(t, err)

	note, err := service.AddNote(ctx, created.Id, "  bring passports ")
	require.NoError(t, err)
	assert.Equal(t, "bring passports", note.Text)
	assert.Equal(t, now, note.CreatedAt)

	_, err = service.AddNote(ctx, created.Id, " ")
	assert.ErrorIs(t, err, ErrInvalidEvent)
	_, err = service.AddNote(ctx, created.Id+100, "nope")
	assert.ErrorIs(t, err, ErrEventNotFound)

	notes, err := service.ListNotes(ctx, created.Id)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, note.Id, notes[0].Id)
}

func TestEventServiceImpl_ImportEvent(t *testing.T) {
	service, repo, _ := setup(t)
	eventType := meetingType(t, service)
	spans := []recurrence.Occurrence{
		{Start: now, End: now.Add(time.Hour)},
		{Start: now.AddDate(0, 0, 7), End: now.AddDate(0, 0, 7).Add(time.Hour)},
	}

	created, occurrences, err := service.ImportEvent(ctx, Event{Title: "Imported", EventType: eventType}, spans)

	require.NoError(t, err)
	assert.Len(t, occurrences, 2)
	assert.Equal(t, spans, repo.Occurrences(created.Id))

	t.Run("rejects empty spans", func(t *testing.T) {
		_, _, err := service.ImportEvent(ctx, Event{Title: "Empty", EventType: eventType}, nil)

		assert.ErrorIs(t, err, ErrInvalidEvent)
	})

	t.Run("rejects inverted spans", func(t *testing.T) {
		_, _, err := service.ImportEvent(ctx, Event{Title: "Inverted", EventType: eventType},
			[]recurrence.Occurrence{{Start: now, End: now}})

		assert.ErrorIs(t, err, ErrInvalidEvent)
	})
}
