package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jivetime/jivetime/internal/rest"
	"github.com/jivetime/jivetime/pkg/occurrence"
	"github.com/jivetime/jivetime/pkg/recurrence"
	log "github.com/sirupsen/logrus"
)

type EventTypeDTO struct {
	Id    int    `json:"id"`
	Abbr  string `json:"abbr"`
	Label string `json:"label"`
}

type EventDTO struct {
	Id             int    `json:"id"`
	Uid            string `json:"uid,omitempty"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	EventTypeId    int    `json:"eventTypeId"`
	EventType      string `json:"eventType,omitempty"`
	EventTypeLabel string `json:"eventTypeLabel,omitempty"`
}

// ScheduleDTO carries RFC3339 start and end times and optional recurrence params.
// An empty endTime means the configured default duration.
type ScheduleDTO struct {
	StartTime  string             `json:"startTime"`
	EndTime    string             `json:"endTime,omitempty"`
	Recurrence *recurrence.Params `json:"recurrence,omitempty"`
}

type CreateEventDTO struct {
	EventDTO
	ScheduleDTO
}

type CreatedEventDTO struct {
	Event       EventDTO                   `json:"event"`
	Occurrences []occurrence.OccurrenceDTO `json:"occurrences"`
}

type NoteDTO struct {
	Id        int       `json:"id"`
	EventId   int       `json:"eventId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type EventHandler struct {
	service EventService
}

func NewEventHandler(service EventService) *EventHandler {
	return &EventHandler{service: service}
}

// ListEventTypes godoc
// @Summary List event types
// @Tags Event
// @Produce json
// @Success 200 {array} EventTypeDTO
// @Router /api/eventtype [get]
func (h *EventHandler) ListEventTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListEventTypes(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]EventTypeDTO, 0, len(types))
	for _, t := range types {
		dtos = append(dtos, eventTypeToDTO(t))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CreateEventType godoc
// @Summary Create an event type
// @Tags Event
// @Accept json
// @Produce json
// @Success 201 {object} EventTypeDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse
// @Router /api/eventtype [post]
func (h *EventHandler) CreateEventType(w http.ResponseWriter, r *http.Request) {
	var dto EventTypeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	created, err := h.service.CreateEventType(r.Context(), EventType{Abbr: dto.Abbr, Label: dto.Label})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, eventTypeToDTO(created))
}

// ListEvents godoc
// @Summary List events of a group
// @Tags Event
// @Produce json
// @Param groupId path int true "Event group id"
// @Success 200 {array} EventDTO
// @Router /api/group/{groupId}/event [get]
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "eventId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id", err.Error())
		return
	}
	e, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventToDTO(e))
}

// CreateEvent godoc
// @Summary Create an event with its occurrences
// @Description Stores the event and every occurrence produced by its recurrence in one transaction
// @Tags Event
// @Accept json
// @Produce json
// @Param groupId path int true "Event group id"
// @Param event body CreateEventDTO true "Event with schedule"
// @Success 201 {object} CreatedEventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/group/{groupId}/event [post]
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto CreateEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	schedule, err := dto.ScheduleDTO.toSchedule()
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Incorrect date format", err.Error())
		return
	}

	created, occurrences, err := h.service.CreateEvent(r.Context(), eventFromDTO(dto.EventDTO), schedule)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, CreatedEventDTO{
		Event:       eventToDTO(created),
		Occurrences: occurrence.ToDTOs(occurrences),
	})
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "eventId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id", err.Error())
		return
	}
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	e := eventFromDTO(dto)
	e.Id = id

	updated, err := h.service.UpdateEvent(r.Context(), e)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventToDTO(updated))
}

func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "eventId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id", err.Error())
		return
	}
	if err := h.service.DeleteEvent(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddOccurrences godoc
// @Summary Add occurrences to an existing event
// @Tags Event
// @Accept json
// @Produce json
// @Param groupId path int true "Event group id"
// @Param eventId path int true "Event id"
// @Param schedule body ScheduleDTO true "Schedule to expand"
// @Success 201 {array} occurrence.OccurrenceDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/group/{groupId}/event/{eventId}/occurrence [post]
func (h *EventHandler) AddOccurrences(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "eventId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id", err.Error())
		return
	}
	var dto ScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	schedule, err := dto.toSchedule()
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Incorrect date format", err.Error())
		return
	}

	occurrences, err := h.service.AddOccurrences(r.Context(), id, schedule)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, occurrence.ToDTOs(occurrences))
}

func (h *EventHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "eventId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id", err.Error())
		return
	}
	notes, err := h.service.ListNotes(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]NoteDTO, 0, len(notes))
	for _, n := range notes {
		dtos = append(dtos, noteToDTO(n))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *EventHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "eventId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id", err.Error())
		return
	}
	var dto NoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	note, err := h.service.AddNote(r.Context(), id, dto.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, noteToDTO(note))
}

func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *recurrence.ValidationError
	var configurationErr *recurrence.ConfigurationError
	switch {
	case errors.As(err, &validationErr):
		rest.WriteError(w, http.StatusBadRequest, "Invalid recurrence", validationErr.Error())
	case errors.As(err, &configurationErr):
		rest.WriteError(w, http.StatusBadRequest, "Unsupported recurrence", configurationErr.Error())
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
	case errors.Is(err, ErrEventTypeNotFound):
		rest.WriteError(w, http.StatusBadRequest, "Event type not found", err.Error())
	case errors.Is(err, ErrEventTypeExists):
		rest.WriteError(w, http.StatusConflict, "Event type already exists", err.Error())
	case errors.Is(err, ErrInvalidEvent), errors.Is(err, ErrInvalidEventType):
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
	default:
		log.Errorf("event request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (dto ScheduleDTO) toSchedule() (Schedule, error) {
	start, err := time.Parse(time.RFC3339, dto.StartTime)
	if err != nil {
		return Schedule{}, err
	}
	schedule := Schedule{StartTime: start, Recurrence: dto.Recurrence}
	if dto.EndTime != "" {
		schedule.EndTime, err = time.Parse(time.RFC3339, dto.EndTime)
		if err != nil {
			return Schedule{}, err
		}
	}
	return schedule, nil
}

func eventTypeToDTO(t EventType) EventTypeDTO {
	return EventTypeDTO{Id: t.Id, Abbr: t.Abbr, Label: t.Label}
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		Id:             e.Id,
		Uid:            e.Uid.String(),
		Title:          e.Title,
		Description:    e.Description,
		EventTypeId:    e.EventType.Id,
		EventType:      e.EventType.Abbr,
		EventTypeLabel: e.EventType.Label,
	}
}

func eventFromDTO(dto EventDTO) Event {
	return Event{
		Title:       dto.Title,
		Description: dto.Description,
		EventType:   EventType{Id: dto.EventTypeId},
	}
}

func noteToDTO(n Note) NoteDTO {
	return NoteDTO{Id: n.Id, EventId: n.EventId, Text: n.Text, CreatedAt: n.CreatedAt}
}
