package ics

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/jivetime/jivetime/internal/rest"
	log "github.com/sirupsen/logrus"
)

const maxImportSize = 4 << 20

type SkippedDTO struct {
	Uid    string `json:"uid,omitempty"`
	Reason string `json:"reason"`
}

type ImportResultDTO struct {
	Events      int          `json:"events"`
	Occurrences int          `json:"occurrences"`
	Skipped     []SkippedDTO `json:"skipped"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Export godoc
// @Summary Occurrences of a group as an iCalendar feed
// @Tags Calendar
// @Produce text/calendar
// @Param groupId path int true "Event group id"
// @Param from query string true "Range start in RFC3339 format"
// @Param to query string true "Range end in RFC3339 format"
// @Success 200 {string} string
// @Success 204 "No occurrences in range"
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/group/{groupId}/calendar.ics [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	from, to, err := rest.TimeRange(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Incorrect date range", err.Error())
		return
	}

	var buf bytes.Buffer
	err = h.service.Export(r.Context(), &buf, from, to)
	if errors.Is(err, ErrEmptyCalendar) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		log.Errorf("iCalendar export failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Warnf("failed to write iCalendar response: %v", err)
	}
}

// Import godoc
// @Summary Create events from an iCalendar file
// @Tags Calendar
// @Accept text/calendar
// @Produce json
// @Param groupId path int true "Event group id"
// @Param eventTypeId query int true "Event type of the created events"
// @Success 201 {object} ImportResultDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/group/{groupId}/calendar.ics [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	eventTypeId, err := strconv.Atoi(r.URL.Query().Get("eventTypeId"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event type id", "'eventTypeId' query parameter must be a number")
		return
	}

	result, err := h.service.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxImportSize), eventTypeId)
	if err != nil {
		if errors.Is(err, ErrInvalidCalendar) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid iCalendar file", err.Error())
			return
		}
		log.Errorf("iCalendar import failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dto := ImportResultDTO{Events: result.Events, Occurrences: result.Occurrences, Skipped: make([]SkippedDTO, 0, len(result.Skipped))}
	for _, s := range result.Skipped {
		dto.Skipped = append(dto.Skipped, SkippedDTO{Uid: s.Uid, Reason: s.Reason})
	}
	rest.WriteJSON(w, http.StatusCreated, dto)
}
