package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"
)

// Rule is the frequency-specific part of a Spec. The concrete variants are
// Daily, Weekly, MonthlyByDay, MonthlyByWeekday and Yearly; each carries only the
// constraints that make sense for its frequency.
type Rule interface {
	Frequency() Frequency
	validate() error
	apply(opt *rrule.ROption, anchor time.Time)
}

type Daily struct{}

func (Daily) Frequency() Frequency                { return FreqDaily }
func (Daily) validate() error                     { return nil }
func (Daily) apply(_ *rrule.ROption, _ time.Time) {}

// Weekly occurs on each of Weekdays within every selected week.
type Weekly struct {
	Weekdays []Weekday
}

func (Weekly) Frequency() Frequency { return FreqWeekly }

func (w Weekly) validate() error {
	if len(w.Weekdays) == 0 {
		return invalid("weekDays", "weekly recurrence requires at least one weekday")
	}
	for _, d := range w.Weekdays {
		if !d.Valid() {
			return invalid("weekDays", "weekday %d is out of range 1-7", d)
		}
	}
	return nil
}

func (w Weekly) apply(opt *rrule.ROption, _ time.Time) {
	for _, d := range w.Weekdays {
		opt.Byweekday = append(opt.Byweekday, d.rrule())
	}
}

// MonthlyByDay occurs on each listed day of the month ("each day N" mode).
type MonthlyByDay struct {
	MonthDays []int
}

func (MonthlyByDay) Frequency() Frequency { return FreqMonthly }

func (m MonthlyByDay) validate() error {
	if len(m.MonthDays) == 0 {
		return invalid("eachMonthDay", "monthly recurrence requires at least one day of the month")
	}
	for _, d := range m.MonthDays {
		if d < 1 || d > 31 {
			return invalid("eachMonthDay", "day %d is out of range 1-31", d)
		}
	}
	return nil
}

func (m MonthlyByDay) apply(opt *rrule.ROption, _ time.Time) {
	opt.Bymonthday = append(opt.Bymonthday, m.MonthDays...)
}

// MonthlyByWeekday occurs on the Nth weekday of every selected month ("on the" mode).
type MonthlyByWeekday struct {
	Nth OrdinalWeekday
}

func (MonthlyByWeekday) Frequency() Frequency { return FreqMonthly }

func (m MonthlyByWeekday) validate() error {
	return m.Nth.validate("monthOrdinal")
}

func (m MonthlyByWeekday) apply(opt *rrule.ROption, _ time.Time) {
	opt.Byweekday = []rrule.Weekday{m.Nth.rrule()}
}

// Yearly occurs in the listed months. With Nth set it occurs on the Nth weekday
// of each of those months instead of on the anchor's day of month.
type Yearly struct {
	Months []int
	Nth    *OrdinalWeekday
}

func (Yearly) Frequency() Frequency { return FreqYearly }

func (y Yearly) validate() error {
	for _, m := range y.Months {
		if m < 1 || m > 12 {
			return invalid("yearMonths", "month %d is out of range 1-12", m)
		}
	}
	if y.Nth != nil {
		return y.Nth.validate("yearMonthOrdinal")
	}
	return nil
}

func (y Yearly) apply(opt *rrule.ROption, anchor time.Time) {
	if len(y.Months) == 0 {
		// keeps an ordinal relative to a month rather than to the whole year
		opt.Bymonth = []int{int(anchor.Month())}
	} else {
		opt.Bymonth = append(opt.Bymonth, y.Months...)
	}
	if y.Nth != nil {
		opt.Byweekday = []rrule.Weekday{y.Nth.rrule()}
	}
}

// Termination stops a recurrence after Count occurrences or on the Until date (inclusive).
// Exactly one of the two is set; build it with Count or Until.
type Termination struct {
	count int
	until time.Time
}

func Count(n int) Termination {
	return Termination{count: n}
}

// Until ends the recurrence on the given calendar date. Only the date part is used.
func Until(date time.Time) Termination {
	return Termination{until: date}
}

func (t Termination) Count() (int, bool) {
	return t.count, t.count != 0
}

func (t Termination) Until() (time.Time, bool) {
	return t.until, !t.until.IsZero()
}

// Spec is a validated recurrence definition. Construct it with New and treat it as immutable.
type Spec struct {
	rule        Rule
	interval    int
	termination Termination
}

// New builds a Spec and validates it eagerly. An interval of 0 means 1.
func New(rule Rule, interval int, termination Termination) (*Spec, error) {
	if interval == 0 {
		interval = 1
	}
	s := &Spec{rule: rule, interval: interval, termination: termination}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Spec) Rule() Rule               { return s.rule }
func (s *Spec) Interval() int            { return s.interval }
func (s *Spec) Termination() Termination { return s.termination }

func (s *Spec) Frequency() Frequency {
	return s.rule.Frequency()
}

// Validate checks everything that can be checked without an anchor.
func (s *Spec) Validate() error {
	if s.rule == nil {
		return invalid("freq", "a recurrence rule is required")
	}
	if s.interval < 1 {
		return invalid("interval", "must be a positive number, got %d", s.interval)
	}
	count, hasCount := s.termination.Count()
	_, hasUntil := s.termination.Until()
	switch {
	case hasCount && hasUntil:
		return invalid("repeats", "count and until are mutually exclusive")
	case !hasCount && !hasUntil:
		return invalid("repeats", "either count or until is required")
	case hasCount && count < 1:
		return invalid("count", "must be a positive number, got %d", count)
	}
	return s.rule.validate()
}
