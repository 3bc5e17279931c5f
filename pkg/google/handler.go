package google

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jivetime/jivetime/internal/rest"
	log "github.com/sirupsen/logrus"
)

type CalendarItemDto struct {
	Id      string `json:"id"`
	Summary string `json:"summary"`
}

type ExportResultDto struct {
	Exported int `json:"exported"`
}

type SyncCalendarDto struct {
	CalendarId string `json:"calendarId"`
}

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{s}
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	calendars, err := h.service.ListCalendars(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	calendarItems := make([]CalendarItemDto, 0, len(calendars))
	for _, c := range calendars {
		calendarItems = append(calendarItems, toCalendarItemDto(c))
	}
	rest.WriteJSON(w, http.StatusOK, calendarItems)
}

// Export godoc
// @Summary Export occurrences of a group to a Google calendar
// @Tags Google
// @Produce json
// @Param groupId path int true "Event group id"
// @Param calendarId query string true "Google calendar id"
// @Param from query string true "Range start in RFC3339 format"
// @Param to query string true "Range end in RFC3339 format"
// @Success 200 {object} ExportResultDto
// @Failure 400 {object} rest.ErrorResponse
// @Failure 403 "Google authentication required"
// @Router /api/group/{groupId}/integrations/google/export [post]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	calendarId := r.URL.Query().Get("calendarId")
	if calendarId == "" {
		rest.WriteError(w, http.StatusBadRequest, "calendarId is required", "")
		return
	}
	from, to, err := rest.TimeRange(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Incorrect date range", err.Error())
		return
	}

	exported, err := h.service.Export(r.Context(), calendarId, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ExportResultDto{Exported: exported})
}

func (h *Handler) SetSyncCalendar(w http.ResponseWriter, r *http.Request) {
	var dto SyncCalendarDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.service.SetSyncCalendar(r.Context(), dto.CalendarId); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUnauthenticated) {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	log.Errorf("Google integration request failed: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func toCalendarItemDto(ci CalendarItem) CalendarItemDto {
	return CalendarItemDto{
		Id:      ci.ID,
		Summary: ci.Summary,
	}
}
