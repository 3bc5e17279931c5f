package event_bus

import "time"

const (
	OccurrencesCreatedType EventType = "occurrences.created"
	OccurrenceUpdatedType  EventType = "occurrence.updated"
	OccurrenceDeletedType  EventType = "occurrence.deleted"
	EventDeletedType       EventType = "event.deleted"
)

type OccurrenceSpan struct {
	Id        int
	StartTime time.Time
	EndTime   time.Time
}

// OccurrencesCreated is published once per expansion that was stored, so that
// len(Occurrences) is the size of that expansion.
type OccurrencesCreated struct {
	GroupId     int
	EventId     int
	Occurrences []OccurrenceSpan
}

type OccurrenceUpdated struct {
	GroupId    int
	EventId    int
	Occurrence OccurrenceSpan
}

type OccurrenceDeleted struct {
	GroupId      int
	EventId      int
	OccurrenceId int
}

type EventDeleted struct {
	GroupId     int
	EventId     int
	Occurrences int
}
