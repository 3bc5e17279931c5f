package app

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jivetime/jivetime/internal/config"
	"github.com/jivetime/jivetime/internal/event_bus"
	"github.com/jivetime/jivetime/internal/metrics"
	"github.com/jivetime/jivetime/internal/utils"
	"github.com/jivetime/jivetime/pkg/calendar"
	"github.com/jivetime/jivetime/pkg/event"
	"github.com/jivetime/jivetime/pkg/google"
	"github.com/jivetime/jivetime/pkg/group"
	"github.com/jivetime/jivetime/pkg/ics"
	"github.com/jivetime/jivetime/pkg/occurrence"
	"github.com/jivetime/jivetime/pkg/recurrence"
	"github.com/jivetime/jivetime/pkg/timeslot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	GroupService group.Service
	GroupHandler *group.Handler

	EventService event.EventService
	EventHandler *event.EventHandler

	OccurrenceService *occurrence.ServiceImpl
	OccurrenceHandler *occurrence.Handler

	CalendarService *calendar.ServiceImpl
	CalendarHandler *calendar.Handler

	IcsService *ics.Service
	IcsHandler *ics.Handler

	GoogleAuth    *google.GoogleAuth
	GoogleService google.Service
	GoogleHandler *google.Handler
	GoogleSyncer  *google.Syncer
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	layout, err := timeslotLayout(cfg.Timeslot)
	if err != nil {
		return nil, err
	}
	firstWeekday := time.Weekday(cfg.Calendar.FirstWeekday)
	if firstWeekday < time.Sunday || firstWeekday > time.Saturday {
		return nil, fmt.Errorf("calendar.firstweekday must be 0 to 6, got %d", cfg.Calendar.FirstWeekday)
	}

	deps := &Dependencies{}
	deps.Clock = utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Metrics = metrics.New(deps.Registry)
	deps.Metrics.Subscribe(deps.EventBus)

	deps.GroupService = group.NewService(group.NewRepo(db), cfg.Calendar.Timezone)
	deps.GroupHandler = group.NewHandler(deps.GroupService)

	expander := recurrence.NewExpander(cfg.Recurrence.MaxOccurrences)
	deps.EventService = event.NewEventService(event.NewEventRepo(db), expander, deps.EventBus, deps.Clock, cfg.Timeslot.DefaultDuration)
	deps.EventHandler = event.NewEventHandler(deps.EventService)

	deps.OccurrenceService = occurrence.NewService(occurrence.NewRepo(db), deps.EventBus)
	deps.OccurrenceHandler = occurrence.NewHandler(deps.OccurrenceService)

	deps.CalendarService = calendar.NewService(deps.OccurrenceService, layout, cfg.Timeslot.Format, firstWeekday, deps.Clock)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	deps.IcsService = ics.NewService(deps.OccurrenceService, deps.EventService, deps.Clock, cfg.Recurrence.MaxOccurrences, cfg.Timeslot.DefaultDuration)
	deps.IcsHandler = ics.NewHandler(deps.IcsService)

	googleRepo := google.NewRepository(db)
	deps.GoogleAuth = google.NewGoogleAuth(googleRepo, cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth.CalendarClient, googleRepo, deps.OccurrenceService)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)
	deps.GoogleSyncer = google.NewSyncer(googleRepo, deps.GroupService, deps.GoogleService, deps.Clock, cfg.Google.SyncDays)

	return deps, nil
}

func timeslotLayout(cfg config.Timeslot) (timeslot.Layout, error) {
	start, err := timeslot.ParseClock(cfg.Start)
	if err != nil {
		return timeslot.Layout{}, err
	}
	layout := timeslot.Layout{
		Start:      start,
		Window:     cfg.Window,
		Interval:   cfg.Interval,
		MinColumns: cfg.MinColumns,
	}
	if err := layout.Validate(); err != nil {
		return timeslot.Layout{}, err
	}
	return layout, nil
}
