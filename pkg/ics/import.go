package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	ical "github.com/arran4/golang-ical"
	"github.com/jivetime/jivetime/pkg/event"
	"github.com/jivetime/jivetime/pkg/recurrence"
	"github.com/teambition/rrule-go"
)

const (
	dateFormat     = "20060102"
	dateTimeFormat = "20060102T150405"
	untitled       = "Untitled"
)

var ErrInvalidCalendar = errors.New("invalid iCalendar data")

// Entry is one VEVENT with its recurrence already expanded.
type Entry struct {
	Uid         string
	Title       string
	Description string
	Spans       []recurrence.Occurrence
}

// Skipped is a VEVENT that could not be turned into an Entry.
type Skipped struct {
	Uid    string
	Reason string
}

type Decoder struct {
	loc             *time.Location
	maxOccurrences  int
	defaultDuration time.Duration
}

// NewDecoder returns a Decoder reading floating and all-day times in loc. A VEVENT whose
// RRULE yields more than maxOccurrences instances is skipped rather than truncated.
func NewDecoder(loc *time.Location, maxOccurrences int, defaultDuration time.Duration) *Decoder {
	if maxOccurrences <= 0 {
		maxOccurrences = recurrence.DefaultMaxOccurrences
	}
	return &Decoder{loc: loc, maxOccurrences: maxOccurrences, defaultDuration: defaultDuration}
}

func (d *Decoder) Decode(r io.Reader) ([]Entry, []Skipped, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCalendar, err)
	}

	entries := make([]Entry, 0)
	skipped := make([]Skipped, 0)
	for _, ve := range cal.Events() {
		entry, err := d.entry(ve)
		if err != nil {
			skipped = append(skipped, Skipped{Uid: entry.Uid, Reason: err.Error()})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped, nil
}

func (d *Decoder) entry(ve *ical.VEvent) (Entry, error) {
	var entry Entry
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		entry.Uid = p.Value
	}
	entry.Title = untitled
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil && strings.TrimSpace(p.Value) != "" {
		entry.Title = truncate(strings.TrimSpace(p.Value), event.MaxTitleLength)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		entry.Description = truncate(strings.TrimSpace(p.Value), event.MaxDescriptionLength)
	}

	start, end, err := d.bounds(ve)
	if err != nil {
		return entry, err
	}

	p := ve.GetProperty(ical.ComponentPropertyRrule)
	if p == nil {
		entry.Spans = []recurrence.Occurrence{{Start: start, End: end}}
		return entry, nil
	}
	entry.Spans, err = d.expand(p.Value, start, end.Sub(start), d.exdates(ve, start.Location()))
	return entry, err
}

func (d *Decoder) bounds(ve *ical.VEvent) (time.Time, time.Time, error) {
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return time.Time{}, time.Time{}, errors.New("missing DTSTART")
	}

	if isDate(dtStart) {
		start, err := time.ParseInLocation(dateFormat, dtStart.Value, d.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid DTSTART %q", dtStart.Value)
		}
		end := start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if parsed, err := time.ParseInLocation(dateFormat, dtEnd.Value, d.loc); err == nil && parsed.After(start) {
				end = parsed
			}
		}
		return start, end, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid DTSTART: %w", err)
	}
	if !hasZone(dtStart) {
		start = floating(start, d.loc)
	}
	end := start.Add(d.defaultDuration)
	if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
		parsed, err := ve.GetEndAt()
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid DTEND: %w", err)
		}
		if !hasZone(dtEnd) {
			parsed = floating(parsed, d.loc)
		}
		end = parsed
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("DTEND %s is not after DTSTART %s", end, start)
	}
	return start, end, nil
}

func (d *Decoder) expand(rule string, start time.Time, duration time.Duration, exdates []time.Time) ([]recurrence.Occurrence, error) {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("invalid RRULE %q: %w", rule, err)
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range exdates {
		set.ExDate(ex)
	}

	spans := make([]recurrence.Occurrence, 0)
	next := set.Iterator()
	for t, ok := next(); ok; t, ok = next() {
		if len(spans) == d.maxOccurrences {
			return nil, fmt.Errorf("RRULE %q produces more than %d occurrences", rule, d.maxOccurrences)
		}
		spans = append(spans, recurrence.Occurrence{Start: t, End: t.Add(duration)})
	}
	if len(spans) == 0 {
		return nil, fmt.Errorf("RRULE %q produces no occurrences", rule)
	}
	return spans, nil
}

func (d *Decoder) exdates(ve *ical.VEvent, loc *time.Location) []time.Time {
	var result []time.Time
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		exLoc := loc
		if tzid := param(p, "TZID"); tzid != "" {
			if l, err := time.LoadLocation(tzid); err == nil {
				exLoc = l
			}
		}
		for _, value := range strings.Split(p.Value, ",") {
			if t, ok := parseDateTime(strings.TrimSpace(value), exLoc); ok {
				result = append(result, t)
			}
		}
	}
	return result
}

func parseDateTime(value string, loc *time.Location) (time.Time, bool) {
	if strings.HasSuffix(value, "Z") {
		t, err := time.Parse(dateTimeFormat+"Z", value)
		return t, err == nil
	}
	for _, layout := range []string{dateTimeFormat, dateFormat} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isDate(p *ical.IANAProperty) bool {
	return strings.EqualFold(param(p, "VALUE"), "DATE") || !strings.Contains(p.Value, "T")
}

func hasZone(p *ical.IANAProperty) bool {
	return strings.HasSuffix(p.Value, "Z") || param(p, "TZID") != ""
}

// floating reinterprets the wall clock of t in loc.
func floating(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

func param(p *ical.IANAProperty, name string) string {
	if values, ok := p.ICalParameters[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
