package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/jivetime/jivetime/internal/utils"
	"github.com/jivetime/jivetime/pkg/group"
	"github.com/jivetime/jivetime/pkg/occurrence"
	"github.com/jivetime/jivetime/pkg/timeslot"
	log "github.com/sirupsen/logrus"
)

// OccurrenceFinder returns the current group's occurrences overlapping [from, to).
type OccurrenceFinder interface {
	FindInRange(ctx context.Context, from, to time.Time) ([]occurrence.Occurrence, error)
}

type Service interface {
	DayView(ctx context.Context, year int, month time.Month, day int) (DayView, error)
	Today(ctx context.Context) (DayView, error)
	MonthView(ctx context.Context, year int, month time.Month) (MonthView, error)
	YearView(ctx context.Context, year int) (YearView, error)
	Options() Options
}

type ServiceImpl struct {
	occurrences  OccurrenceFinder
	layout       timeslot.Layout
	firstWeekday time.Weekday
	labels       Labels
	options      Options
	clock        utils.Clock
}

func NewService(
	occurrences OccurrenceFinder,
	layout timeslot.Layout,
	timeFormat string,
	firstWeekday time.Weekday,
	clock utils.Clock,
) *ServiceImpl {
	labels := NewLabels(firstWeekday)
	return &ServiceImpl{
		occurrences:  occurrences,
		layout:       layout,
		firstWeekday: firstWeekday,
		labels:       labels,
		options: Options{
			Labels:     labels,
			StartTimes: timeslot.Options(layout, timeFormat),
			EndTimes:   timeslot.OffsetOptions(layout, timeFormat),
		},
		clock: clock,
	}
}

func (s *ServiceImpl) Options() Options {
	return s.options
}

func (s *ServiceImpl) DayView(ctx context.Context, year int, month time.Month, day int) (DayView, error) {
	if !validDate(year, month, day) {
		return DayView{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	loc, err := group.CurrentLocation(ctx)
	if err != nil {
		return DayView{}, fmt.Errorf("failed to get current group: %w", err)
	}
	return s.dayView(ctx, time.Date(year, month, day, 0, 0, 0, 0, loc))
}

// Today is the day view of the current date in the group's timezone.
func (s *ServiceImpl) Today(ctx context.Context) (DayView, error) {
	loc, err := group.CurrentLocation(ctx)
	if err != nil {
		return DayView{}, fmt.Errorf("failed to get current group: %w", err)
	}
	return s.dayView(ctx, utils.Today(s.clock, loc))
}

func (s *ServiceImpl) dayView(ctx context.Context, day time.Time) (DayView, error) {
	groupId, err := group.CurrentId(ctx)
	if err != nil {
		return DayView{}, fmt.Errorf("failed to get current group: %w", err)
	}
	next := day.AddDate(0, 0, 1)
	items, err := s.occurrences.FindInRange(ctx, day, next)
	if err != nil {
		return DayView{}, fmt.Errorf("failed to get occurrences of %s: %w", day.Format(time.DateOnly), err)
	}

	grid := timeslot.Build(day, s.layout, items)
	if placed := placedCount(grid); placed < len(items) {
		log.Tracef("%d of %d occurrences on %s are outside the timeslot grid or off its interval",
			len(items)-placed, len(items), day.Format(time.DateOnly))
	}

	return DayView{
		Day:       day,
		PrevDay:   day.AddDate(0, 0, -1),
		NextDay:   next,
		Timeslots: grid,
		Scopes:    ScopeMenu(groupId, day),
	}, nil
}

func placedCount[T timeslot.Span](grid timeslot.Grid[T]) int {
	placed := 0
	for _, row := range grid.Rows {
		for _, cell := range row.Cells {
			if cell.First {
				placed++
			}
		}
	}
	return placed
}

// MonthView lays the month out in weeks starting at the configured first weekday.
// Occurrences are listed on the day they start.
func (s *ServiceImpl) MonthView(ctx context.Context, year int, month time.Month) (MonthView, error) {
	if !validDate(year, month, 1) {
		return MonthView{}, fmt.Errorf("%w: %04d-%02d", ErrInvalidDate, year, month)
	}
	current, err := group.Current(ctx)
	if err != nil {
		return MonthView{}, fmt.Errorf("failed to get current group: %w", err)
	}
	loc, err := current.Location()
	if err != nil {
		return MonthView{}, err
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	next := first.AddDate(0, 1, 0)
	items, err := s.occurrences.FindInRange(ctx, first, next)
	if err != nil {
		return MonthView{}, fmt.Errorf("failed to get occurrences of %s: %w", first.Format("2006-01"), err)
	}

	byDay := make(map[int][]occurrence.Occurrence)
	for _, o := range items {
		start := o.StartTime.In(loc)
		if start.Before(first) {
			continue
		}
		byDay[start.Day()] = append(byDay[start.Day()], o)
	}

	return MonthView{
		Today:     s.clock.Now().In(loc),
		ThisMonth: first,
		NextMonth: next,
		LastMonth: first.AddDate(0, -1, 0),
		Weekdays:  s.labels.WeekdaysShort,
		Weeks:     s.weeks(first, byDay),
		Scopes:    ScopeMenu(current.Id, first),
	}, nil
}

func (s *ServiceImpl) weeks(first time.Time, byDay map[int][]occurrence.Occurrence) [][]MonthDay {
	lead := (int(first.Weekday()) - int(s.firstWeekday) + 7) % 7
	days := daysIn(first.Year(), first.Month())

	cells := make([]MonthDay, lead, lead+days+6)
	for d := 1; d <= days; d++ {
		occurrences := byDay[d]
		if occurrences == nil {
			occurrences = []occurrence.Occurrence{}
		}
		cells = append(cells, MonthDay{Day: d, Occurrences: occurrences})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, MonthDay{})
	}

	weeks := make([][]MonthDay, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// YearView groups occurrences that start or end in year by month: the start month when
// it starts in year, the end month otherwise.
func (s *ServiceImpl) YearView(ctx context.Context, year int) (YearView, error) {
	if !validDate(year, time.January, 1) {
		return YearView{}, fmt.Errorf("%w: year %d", ErrInvalidDate, year)
	}
	current, err := group.Current(ctx)
	if err != nil {
		return YearView{}, fmt.Errorf("failed to get current group: %w", err)
	}
	loc, err := current.Location()
	if err != nil {
		return YearView{}, err
	}

	first := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	items, err := s.occurrences.FindInRange(ctx, first, first.AddDate(1, 0, 0))
	if err != nil {
		return YearView{}, fmt.Errorf("failed to get occurrences of %d: %w", year, err)
	}

	var byMonth [12][]occurrence.Occurrence
	for _, o := range items {
		start, end := o.StartTime.In(loc), o.EndTime.In(loc)
		switch {
		case start.Year() == year:
			byMonth[start.Month()-1] = append(byMonth[start.Month()-1], o)
		case end.Year() == year:
			byMonth[end.Month()-1] = append(byMonth[end.Month()-1], o)
		}
	}

	view := YearView{
		Year:     year,
		NextYear: year + 1,
		LastYear: year - 1,
		ByMonth:  make([]MonthOccurrences, 0),
		Scopes:   ScopeMenu(current.Id, first),
	}
	for i, occurrences := range byMonth {
		if len(occurrences) == 0 {
			continue
		}
		view.ByMonth = append(view.ByMonth, MonthOccurrences{
			Month:       time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, loc),
			Occurrences: occurrences,
		})
	}
	return view, nil
}
