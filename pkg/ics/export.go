package ics

import (
	"errors"
	"fmt"
	"io"
	"time"

	ical "github.com/emersion/go-ical"
	"github.com/jivetime/jivetime/pkg/occurrence"
)

const productId = "-//jivetime//calendar//EN"

// ErrEmptyCalendar is returned for an export without occurrences; a VCALENDAR needs at
// least one component.
var ErrEmptyCalendar = errors.New("no occurrences to export")

// UID identifies one occurrence across exports: the event uid plus the occurrence id.
func UID(o occurrence.Occurrence) string {
	return fmt.Sprintf("%s-%d", o.EventUid, o.Id)
}

// Encode writes the occurrences as VEVENTs of a single VCALENDAR. Times are written in UTC.
func Encode(w io.Writer, occurrences []occurrence.Occurrence, stamp time.Time) error {
	if len(occurrences) == 0 {
		return ErrEmptyCalendar
	}
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productId)

	for _, o := range occurrences {
		vevent := ical.NewEvent()
		vevent.Props.SetText(ical.PropUID, UID(o))
		vevent.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		vevent.Props.SetDateTime(ical.PropDateTimeStart, o.StartTime.UTC())
		vevent.Props.SetDateTime(ical.PropDateTimeEnd, o.EndTime.UTC())
		vevent.Props.SetText(ical.PropSummary, o.Title)
		if o.Description != "" {
			vevent.Props.SetText(ical.PropDescription, o.Description)
		}
		if o.EventTypeLabel != "" {
			vevent.Props.SetText(ical.PropCategories, o.EventTypeLabel)
		}
		cal.Children = append(cal.Children, vevent.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
