package app

import (
	"github.com/gorilla/mux"
	"github.com/jivetime/jivetime/internal/metrics"
	"github.com/jivetime/jivetime/pkg/group"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	r.Handle("/metrics", metrics.Handler(deps.Registry)).Methods("GET")

	// Calendar labels and time options
	r.HandleFunc("/api/options", deps.CalendarHandler.GetOptions).Methods("GET")

	// Event groups
	r.HandleFunc("/api/group", deps.GroupHandler.Create).Methods("POST")
	r.HandleFunc("/api/group", deps.GroupHandler.List).Methods("GET")

	// Event types
	r.HandleFunc("/api/eventtype", deps.EventHandler.ListEventTypes).Methods("GET")
	r.HandleFunc("/api/eventtype", deps.EventHandler.CreateEventType).Methods("POST")

	// Google callback is not group scoped; the state nonce identifies the group
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")

	g := r.PathPrefix("/api/group/{groupId:[0-9]+}").Subrouter()
	g.Use(group.Middleware(deps.GroupService))
	g.HandleFunc("", deps.GroupHandler.Get).Methods("GET")

	// Events
	g.HandleFunc("/event", deps.EventHandler.ListEvents).Methods("GET")
	g.HandleFunc("/event", deps.EventHandler.CreateEvent).Methods("POST")
	g.HandleFunc("/event/{eventId:[0-9]+}", deps.EventHandler.GetEvent).Methods("GET")
	g.HandleFunc("/event/{eventId:[0-9]+}", deps.EventHandler.UpdateEvent).Methods("PUT")
	g.HandleFunc("/event/{eventId:[0-9]+}", deps.EventHandler.DeleteEvent).Methods("DELETE")
	g.HandleFunc("/event/{eventId:[0-9]+}/occurrence", deps.EventHandler.AddOccurrences).Methods("POST")
	g.HandleFunc("/event/{eventId:[0-9]+}/occurrence", deps.OccurrenceHandler.ListForEvent).Methods("GET")
	g.HandleFunc("/event/{eventId:[0-9]+}/note", deps.EventHandler.ListNotes).Methods("GET")
	g.HandleFunc("/event/{eventId:[0-9]+}/note", deps.EventHandler.AddNote).Methods("POST")

	// Occurrences
	g.HandleFunc("/occurrence", deps.OccurrenceHandler.FindInRange).Queries("from", "{from}", "to", "{to}").Methods("GET")
	g.HandleFunc("/occurrence/{occurrenceId:[0-9]+}", deps.OccurrenceHandler.Get).Methods("GET")
	g.HandleFunc("/occurrence/{occurrenceId:[0-9]+}", deps.OccurrenceHandler.Update).Methods("PUT")
	g.HandleFunc("/occurrence/{occurrenceId:[0-9]+}", deps.OccurrenceHandler.Delete).Methods("DELETE")

	// Calendar views
	g.HandleFunc("/calendar/today", deps.CalendarHandler.GetToday).Methods("GET")
	g.HandleFunc("/calendar/{year:[0-9]+}", deps.CalendarHandler.GetYear).Methods("GET")
	g.HandleFunc("/calendar/{year:[0-9]+}/{month:[0-9]+}", deps.CalendarHandler.GetMonth).Methods("GET")
	g.HandleFunc("/calendar/{year:[0-9]+}/{month:[0-9]+}/{day:[0-9]+}", deps.CalendarHandler.GetDay).Methods("GET")

	// iCalendar
	g.HandleFunc("/calendar.ics", deps.IcsHandler.Export).Queries("from", "{from}", "to", "{to}").Methods("GET")
	g.HandleFunc("/calendar.ics", deps.IcsHandler.Import).Queries("eventTypeId", "{eventTypeId}").Methods("POST")

	// Google integration
	g.HandleFunc("/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	g.HandleFunc("/integrations/google/auth", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	g.HandleFunc("/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")
	g.HandleFunc("/integrations/google/export", deps.GoogleHandler.Export).Queries("calendarId", "{calendarId}").Methods("POST")
	g.HandleFunc("/integrations/google/sync", deps.GoogleHandler.SetSyncCalendar).Methods("PUT")
}
