package occurrence

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jivetime/jivetime/internal/rest"
	log "github.com/sirupsen/logrus"
)

type OccurrenceDTO struct {
	Id             int       `json:"id"`
	EventId        int       `json:"eventId"`
	EventUid       string    `json:"eventUid,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	EventType      string    `json:"eventType,omitempty"`
	EventTypeLabel string    `json:"eventTypeLabel,omitempty"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
}

type updateOccurrenceDTO struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Get godoc
// @Summary Get an occurrence
// @Tags Occurrence
// @Produce json
// @Param groupId path int true "Event group id"
// @Param occurrenceId path int true "Occurrence id"
// @Success 200 {object} OccurrenceDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/group/{groupId}/occurrence/{occurrenceId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "occurrenceId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid occurrence id", err.Error())
		return
	}
	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(o))
}

// FindInRange godoc
// @Summary List occurrences overlapping a time range
// @Tags Occurrence
// @Produce json
// @Param groupId path int true "Event group id"
// @Param from query string true "Range start in RFC3339 format"
// @Param to query string true "Range end in RFC3339 format"
// @Success 200 {array} OccurrenceDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/group/{groupId}/occurrence [get]
func (h *Handler) FindInRange(w http.ResponseWriter, r *http.Request) {
	from, to, err := rest.TimeRange(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Incorrect date range", err.Error())
		return
	}
	occurrences, err := h.service.FindInRange(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTOs(occurrences))
}

func (h *Handler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventId, err := rest.IntVar(r, "eventId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id", err.Error())
		return
	}
	occurrences, err := h.service.ListForEvent(r.Context(), eventId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTOs(occurrences))
}

// Update godoc
// @Summary Reschedule an occurrence
// @Tags Occurrence
// @Accept json
// @Produce json
// @Param groupId path int true "Event group id"
// @Param occurrenceId path int true "Occurrence id"
// @Param occurrence body object{startTime=string,endTime=string} true "New start and end time (RFC3339)"
// @Success 200 {object} OccurrenceDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/group/{groupId}/occurrence/{occurrenceId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "occurrenceId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid occurrence id", err.Error())
		return
	}
	var dto updateOccurrenceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	start, startErr := time.Parse(time.RFC3339, dto.StartTime)
	end, endErr := time.Parse(time.RFC3339, dto.EndTime)
	if startErr != nil || endErr != nil {
		rest.WriteError(w, http.StatusBadRequest, "Incorrect date format", "startTime and endTime must be in RFC3339 format")
		return
	}

	updated, err := h.service.Update(r.Context(), Occurrence{Id: id, StartTime: start, EndTime: end})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(updated))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := rest.IntVar(r, "occurrenceId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid occurrence id", err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrOccurrenceNotFound):
		rest.WriteError(w, http.StatusNotFound, "Occurrence not found", "")
	case errors.Is(err, ErrInvalidOccurrence):
		rest.WriteError(w, http.StatusBadRequest, "Invalid occurrence", err.Error())
	default:
		log.Errorf("occurrence request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func ToDTO(o Occurrence) OccurrenceDTO {
	dto := OccurrenceDTO{
		Id:             o.Id,
		EventId:        o.EventId,
		Title:          o.Title,
		Description:    o.Description,
		EventType:      o.EventTypeAbbr,
		EventTypeLabel: o.EventTypeLabel,
		StartTime:      o.StartTime,
		EndTime:        o.EndTime,
	}
	if o.EventUid != uuid.Nil {
		dto.EventUid = o.EventUid.String()
	}
	return dto
}

func ToDTOs(occurrences []Occurrence) []OccurrenceDTO {
	dtos := make([]OccurrenceDTO, 0, len(occurrences))
	for _, o := range occurrences {
		dtos = append(dtos, ToDTO(o))
	}
	return dtos
}
