package recurrence

import (
	"slices"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

// DefaultMaxOccurrences caps a single expansion so that a far away until date cannot
// produce an unbounded result.
const DefaultMaxOccurrences = 5000

// Occurrence is one concrete time span produced by an expansion.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

func (o Occurrence) Duration() time.Duration {
	return o.End.Sub(o.Start)
}

type Expander struct {
	maxOccurrences int
}

func NewExpander(maxOccurrences int) *Expander {
	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}
	return &Expander{maxOccurrences: maxOccurrences}
}

var defaultExpander = NewExpander(DefaultMaxOccurrences)

// Expand is a shorthand for expanding with DefaultMaxOccurrences.
func Expand(start, end time.Time, spec *Spec) ([]Occurrence, error) {
	return defaultExpander.Expand(start, end, spec)
}

// Expand materialises spec anchored at the [start, end) span. Every occurrence keeps the
// anchor's duration; the result is sorted by start time and free of duplicates.
// A nil spec yields the anchor alone. Validation happens before anything is generated,
// so a failed expansion never returns partial results.
func (e *Expander) Expand(start, end time.Time, spec *Spec) ([]Occurrence, error) {
	if !end.After(start) {
		return nil, invalid("endTime", "must be after the start time")
	}
	if spec == nil {
		return []Occurrence{{Start: start, End: end}}, nil
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	freq, err := spec.Frequency().rrule()
	if err != nil {
		return nil, err
	}

	opt := rrule.ROption{
		Freq:     freq,
		Dtstart:  start,
		Interval: spec.Interval(),
	}
	if count, ok := spec.Termination().Count(); ok {
		opt.Count = count
	}
	if until, ok := spec.Termination().Until(); ok {
		loc := start.Location()
		untilDay := time.Date(until.Year(), until.Month(), until.Day(), 0, 0, 0, 0, loc)
		startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		if untilDay.Before(startDay) {
			return nil, invalid("until", "%s is before the start date %s", untilDay.Format(DateFormat), startDay.Format(DateFormat))
		}
		opt.Until = time.Date(until.Year(), until.Month(), until.Day(), 23, 59, 59, 0, loc)
	}
	spec.Rule().apply(&opt, start)

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, invalid("freq", "%v", err)
	}

	duration := end.Sub(start)
	occurrences := make([]Occurrence, 0, 16)
	next := rule.Iterator()
	for {
		t, ok := next()
		if !ok {
			break
		}
		if len(occurrences) == e.maxOccurrences {
			log.Debugf("recurrence %s from %s exceeds %d occurrences", spec.Frequency(), start, e.maxOccurrences)
			return nil, invalid("", "recurrence produces more than %d occurrences", e.maxOccurrences)
		}
		occurrences = append(occurrences, Occurrence{Start: t, End: t.Add(duration)})
	}
	return normalize(occurrences), nil
}

func normalize(occurrences []Occurrence) []Occurrence {
	slices.SortStableFunc(occurrences, func(a, b Occurrence) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.End.Compare(b.End)
	})
	return slices.CompactFunc(occurrences, func(a, b Occurrence) bool {
		return a.Start.Equal(b.Start) && a.End.Equal(b.End)
	})
}
