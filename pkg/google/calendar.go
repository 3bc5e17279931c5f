package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jivetime/jivetime/pkg/occurrence"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

var ErrUnauthenticated = errors.New("group is unauthenticated, Google authentication is required")

type CalendarItem struct {
	ID      string
	Summary string
}

// CalendarClient is the part of the Google Calendar API used by the export.
type CalendarClient interface {
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
	// UpsertEvent inserts the event, or updates it when an event with the same id exists.
	UpsertEvent(ctx context.Context, calendarId string, e *gcal.Event) error
}

type calendarClient struct {
	service *gcal.Service
}

func (c *calendarClient) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	calendars, err := c.service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}
	items := make([]CalendarItem, 0, len(calendars.Items))
	for _, cal := range calendars.Items {
		items = append(items, CalendarItem{ID: cal.Id, Summary: cal.Summary})
	}
	return items, nil
}

func (c *calendarClient) UpsertEvent(ctx context.Context, calendarId string, e *gcal.Event) error {
	_, err := c.service.Events.Insert(calendarId, e).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict {
		log.Tracef("event %s already exported, updating", e.Id)
		_, err = c.service.Events.Update(calendarId, e.Id, e).Context(ctx).Do()
	}
	if err != nil {
		return fmt.Errorf("unable to store event %s in Google Calendar: %w", e.Id, err)
	}
	return nil
}

// EventId derives a stable Google event id from an occurrence. Google accepts lowercase
// base32hex characters, which the hex form of the event uid and the digits satisfy.
func EventId(o occurrence.Occurrence) string {
	uid := strings.ReplaceAll(o.EventUid.String(), "-", "")
	return uid + "o" + strconv.Itoa(o.Id)
}

func toGoogleEvent(o occurrence.Occurrence) *gcal.Event {
	return &gcal.Event{
		Id:          EventId(o),
		Summary:     o.Title,
		Description: o.Description,
		Start: &gcal.EventDateTime{
			DateTime: o.StartTime.UTC().Format(time.RFC3339),
		},
		End: &gcal.EventDateTime{
			DateTime: o.EndTime.UTC().Format(time.RFC3339),
		},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{
				"eventType":    o.EventTypeAbbr,
				"occurrenceId": strconv.Itoa(o.Id),
			},
		},
	}
}
