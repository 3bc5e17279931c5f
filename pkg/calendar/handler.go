package calendar

import (
	"errors"
	"net/http"
	"time"

	"github.com/jivetime/jivetime/internal/rest"
	"github.com/jivetime/jivetime/pkg/occurrence"
	"github.com/jivetime/jivetime/pkg/timeslot"
	log "github.com/sirupsen/logrus"
)

// CellDTO is either {"empty": true} or a reference to an occurrence of the day view.
type CellDTO struct {
	Empty        bool `json:"empty,omitempty"`
	OccurrenceId int  `json:"occurrenceId,omitempty"`
	First        bool `json:"first,omitempty"`
}

type RowDTO struct {
	Time  time.Time `json:"time"`
	Cells []CellDTO `json:"cells"`
}

type DayViewDTO struct {
	Day         string                     `json:"day"`
	PrevDay     string                     `json:"prevDay"`
	NextDay     string                     `json:"nextDay"`
	Columns     int                        `json:"columns"`
	Timeslots   []RowDTO                   `json:"timeslots"`
	Occurrences []occurrence.OccurrenceDTO `json:"occurrences"`
	Scopes      []Scope                    `json:"scopes"`
}

type MonthDayDTO struct {
	Day         int                        `json:"day"`
	Occurrences []occurrence.OccurrenceDTO `json:"occurrences"`
}

type MonthViewDTO struct {
	Today     time.Time       `json:"today"`
	ThisMonth string          `json:"thisMonth"`
	NextMonth string          `json:"nextMonth"`
	LastMonth string          `json:"lastMonth"`
	Weekdays  []Label         `json:"weekdays"`
	Weeks     [][]MonthDayDTO `json:"weeks"`
	Scopes    []Scope         `json:"scopes"`
}

type MonthOccurrencesDTO struct {
	Month       string                     `json:"month"`
	Occurrences []occurrence.OccurrenceDTO `json:"occurrences"`
}

type YearViewDTO struct {
	Year     int                   `json:"year"`
	NextYear int                   `json:"nextYear"`
	LastYear int                   `json:"lastYear"`
	ByMonth  []MonthOccurrencesDTO `json:"byMonth"`
	Scopes   []Scope               `json:"scopes"`
}

type OptionsDTO struct {
	Labels     Labels                  `json:"labels"`
	StartTimes []timeslot.Option       `json:"startTimes"`
	EndTimes   []timeslot.OffsetOption `json:"endTimes"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetOptions godoc
// @Summary Labels and selectable times for building calendars and event forms
// @Tags Calendar
// @Produce json
// @Success 200 {object} OptionsDTO
// @Router /api/options [get]
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	options := h.service.Options()
	rest.WriteJSON(w, http.StatusOK, OptionsDTO{
		Labels:     options.Labels,
		StartTimes: options.StartTimes,
		EndTimes:   options.EndTimes,
	})
}

// GetDay godoc
// @Summary Timeslot grid of a day
// @Tags Calendar
// @Produce json
// @Param groupId path int true "Event group id"
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param day path int true "Day of the month"
// @Success 200 {object} DayViewDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/group/{groupId}/calendar/{year}/{month}/{day} [get]
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	year, yearErr := rest.IntVar(r, "year")
	month, monthErr := rest.IntVar(r, "month")
	day, dayErr := rest.IntVar(r, "day")
	if err := errors.Join(yearErr, monthErr, dayErr); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	view, err := h.service.DayView(r.Context(), year, time.Month(month), day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, dayViewToDTO(view))
}

func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Today(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, dayViewToDTO(view))
}

// GetMonth godoc
// @Summary Month grid with occurrences by start day
// @Tags Calendar
// @Produce json
// @Param groupId path int true "Event group id"
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {object} MonthViewDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/group/{groupId}/calendar/{year}/{month} [get]
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, yearErr := rest.IntVar(r, "year")
	month, monthErr := rest.IntVar(r, "month")
	if err := errors.Join(yearErr, monthErr); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	view, err := h.service.MonthView(r.Context(), year, time.Month(month))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	weeks := make([][]MonthDayDTO, 0, len(view.Weeks))
	for _, week := range view.Weeks {
		row := make([]MonthDayDTO, 0, len(week))
		for _, d := range week {
			row = append(row, MonthDayDTO{Day: d.Day, Occurrences: occurrence.ToDTOs(d.Occurrences)})
		}
		weeks = append(weeks, row)
	}
	rest.WriteJSON(w, http.StatusOK, MonthViewDTO{
		Today:     view.Today,
		ThisMonth: view.ThisMonth.Format(time.DateOnly),
		NextMonth: view.NextMonth.Format(time.DateOnly),
		LastMonth: view.LastMonth.Format(time.DateOnly),
		Weekdays:  view.Weekdays,
		Weeks:     weeks,
		Scopes:    view.Scopes,
	})
}

func (h *Handler) GetYear(w http.ResponseWriter, r *http.Request) {
	year, err := rest.IntVar(r, "year")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid year", err.Error())
		return
	}
	view, err := h.service.YearView(r.Context(), year)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	byMonth := make([]MonthOccurrencesDTO, 0, len(view.ByMonth))
	for _, m := range view.ByMonth {
		byMonth = append(byMonth, MonthOccurrencesDTO{
			Month:       m.Month.Format("2006-01"),
			Occurrences: occurrence.ToDTOs(m.Occurrences),
		})
	}
	rest.WriteJSON(w, http.StatusOK, YearViewDTO{
		Year:     view.Year,
		NextYear: view.NextYear,
		LastYear: view.LastYear,
		ByMonth:  byMonth,
		Scopes:   view.Scopes,
	})
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidDate) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	log.Errorf("calendar request failed: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func dayViewToDTO(view DayView) DayViewDTO {
	dto := DayViewDTO{
		Day:         view.Day.Format(time.DateOnly),
		PrevDay:     view.PrevDay.Format(time.DateOnly),
		NextDay:     view.NextDay.Format(time.DateOnly),
		Columns:     view.Timeslots.Width,
		Timeslots:   make([]RowDTO, 0, len(view.Timeslots.Rows)),
		Occurrences: make([]occurrence.OccurrenceDTO, 0),
		Scopes:      view.Scopes,
	}
	for _, row := range view.Timeslots.Rows {
		cells := make([]CellDTO, 0, len(row.Cells))
		for _, cell := range row.Cells {
			if cell.IsEmpty() {
				cells = append(cells, CellDTO{Empty: true})
				continue
			}
			if cell.First {
				dto.Occurrences = append(dto.Occurrences, occurrence.ToDTO(cell.Item))
			}
			cells = append(cells, CellDTO{OccurrenceId: cell.Item.Id, First: cell.First})
		}
		dto.Timeslots = append(dto.Timeslots, RowDTO{Time: row.Time, Cells: cells})
	}
	return dto
}
