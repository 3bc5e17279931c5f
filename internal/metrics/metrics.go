package metrics

import (
	"net/http"

	"github.com/jivetime/jivetime/internal/event_bus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const namespace = "jivetime"

// Metrics are fed from the event bus, so services stay unaware of prometheus.
type Metrics struct {
	occurrencesCreated prometheus.Counter
	occurrencesUpdated prometheus.Counter
	occurrencesDeleted prometheus.Counter
	eventsDeleted      prometheus.Counter
	expansionSize      prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		occurrencesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "occurrences_created_total",
			Help:      "Occurrences stored, from event creation or added recurrences",
		}),
		occurrencesUpdated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "occurrences_updated_total",
			Help:      "Occurrences rescheduled",
		}),
		occurrencesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "occurrences_deleted_total",
			Help:      "Occurrences deleted, including those removed with their event",
		}),
		eventsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_deleted_total",
			Help:      "Events deleted",
		}),
		expansionSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recurrence_expansion_size",
			Help:      "Number of occurrences produced by a single recurrence expansion",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		}),
	}
}

// Subscribe hooks the collectors to the bus. The returned function unsubscribes all of them.
func (m *Metrics) Subscribe(bus *event_bus.EventBus) func() {
	unsubscribers := []func(){
		event_bus.SubscribeTyped(bus, event_bus.OccurrencesCreatedType, func(e event_bus.EventT[event_bus.OccurrencesCreated]) error {
			n := len(e.Data.Occurrences)
			m.occurrencesCreated.Add(float64(n))
			m.expansionSize.Observe(float64(n))
			return nil
		}),
		event_bus.SubscribeTyped(bus, event_bus.OccurrenceUpdatedType, func(e event_bus.EventT[event_bus.OccurrenceUpdated]) error {
			m.occurrencesUpdated.Inc()
			return nil
		}),
		event_bus.SubscribeTyped(bus, event_bus.OccurrenceDeletedType, func(e event_bus.EventT[event_bus.OccurrenceDeleted]) error {
			m.occurrencesDeleted.Inc()
			return nil
		}),
		event_bus.SubscribeTyped(bus, event_bus.EventDeletedType, func(e event_bus.EventT[event_bus.EventDeleted]) error {
			m.eventsDeleted.Inc()
			m.occurrencesDeleted.Add(float64(e.Data.Occurrences))
			return nil
		}),
	}
	log.Debug("metrics subscribed to event bus")
	return func() {
		for _, unsubscribe := range unsubscribers {
			unsubscribe()
		}
	}
}

// Handler exposes the metrics gathered by g in the prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
