package recurrence

import (
	"time"
)

const DateFormat = "2006-01-02"

const (
	RepeatsCount = "count"
	RepeatsUntil = "until"

	MonthOptionEach = "each"
	MonthOptionOn   = "on"
)

// Params is the flat shape in which recurrence settings arrive from clients.
// Spec turns it into a validated Spec.
type Params struct {
	Repeats  string `json:"repeats"`
	Count    int    `json:"count"`
	Until    string `json:"until"`
	Freq     string `json:"freq"`
	Interval int    `json:"interval"`

	WeekDays []int `json:"weekDays"`

	MonthOption     string `json:"monthOption"`
	MonthOrdinal    int    `json:"monthOrdinal"`
	MonthOrdinalDay int    `json:"monthOrdinalDay"`
	EachMonthDay    []int  `json:"eachMonthDay"`

	YearMonths          []int `json:"yearMonths"`
	IsYearMonthOrdinal  bool  `json:"isYearMonthOrdinal"`
	YearMonthOrdinal    int   `json:"yearMonthOrdinal"`
	YearMonthOrdinalDay int   `json:"yearMonthOrdinalDay"`
}

// Spec validates the params and builds a Spec. The until date is interpreted in loc.
// A nil Spec with a nil error means a single, non-recurring occurrence was requested.
func (p Params) Spec(loc *time.Location) (*Spec, error) {
	termination, single, err := p.termination(loc)
	if err != nil {
		return nil, err
	}
	if single {
		return nil, nil
	}
	if p.Freq == "" {
		return nil, invalid("freq", "a frequency is required")
	}
	freq, err := ParseFrequency(p.Freq)
	if err != nil {
		return nil, err
	}
	if p.Interval < 0 {
		return nil, invalid("interval", "must be a positive number, got %d", p.Interval)
	}
	rule, err := p.rule(freq)
	if err != nil {
		return nil, err
	}
	return New(rule, p.Interval, termination)
}

func (p Params) termination(loc *time.Location) (Termination, bool, error) {
	repeats := p.Repeats
	if repeats == "" {
		switch {
		case p.Count != 0 && p.Until != "":
			return Termination{}, false, invalid("repeats", "count and until are mutually exclusive")
		case p.Until != "":
			repeats = RepeatsUntil
		default:
			repeats = RepeatsCount
		}
	}

	switch repeats {
	case RepeatsCount:
		if p.Until != "" {
			return Termination{}, false, invalid("until", "must not be set when repeating by count")
		}
		count := p.Count
		if count == 0 {
			count = 1
		}
		if count < 0 {
			return Termination{}, false, invalid("count", "must be a positive number, got %d", count)
		}
		return Count(count), count == 1, nil
	case RepeatsUntil:
		if p.Count != 0 {
			return Termination{}, false, invalid("count", "must not be set when repeating until a date")
		}
		if p.Until == "" {
			return Termination{}, false, invalid("until", "a date is required")
		}
		if loc == nil {
			loc = time.UTC
		}
		until, err := time.ParseInLocation(DateFormat, p.Until, loc)
		if err != nil {
			return Termination{}, false, invalid("until", "%q is not a date in YYYY-MM-DD format", p.Until)
		}
		return Until(until), false, nil
	}
	return Termination{}, false, invalid("repeats", "%q is not one of %q, %q", p.Repeats, RepeatsCount, RepeatsUntil)
}

func (p Params) rule(freq Frequency) (Rule, error) {
	switch freq {
	case FreqDaily:
		return Daily{}, nil
	case FreqWeekly:
		return Weekly{Weekdays: toWeekdays(p.WeekDays)}, nil
	case FreqMonthly:
		return p.monthlyRule()
	case FreqYearly:
		rule := Yearly{Months: p.YearMonths}
		if p.IsYearMonthOrdinal {
			rule.Nth = &OrdinalWeekday{Ordinal: Ordinal(p.YearMonthOrdinal), Weekday: Weekday(p.YearMonthOrdinalDay)}
		}
		return rule, nil
	}
	return nil, &ConfigurationError{Frequency: p.Freq}
}

func (p Params) monthlyRule() (Rule, error) {
	hasOrdinal := p.MonthOrdinal != 0 || p.MonthOrdinalDay != 0
	hasDays := len(p.EachMonthDay) > 0

	option := p.MonthOption
	if option == "" {
		if hasOrdinal {
			option = MonthOptionOn
		} else {
			option = MonthOptionEach
		}
	}

	switch option {
	case MonthOptionOn:
		if hasDays {
			return nil, invalid("eachMonthDay", "cannot be combined with an ordinal weekday")
		}
		return MonthlyByWeekday{Nth: OrdinalWeekday{Ordinal: Ordinal(p.MonthOrdinal), Weekday: Weekday(p.MonthOrdinalDay)}}, nil
	case MonthOptionEach:
		if hasOrdinal {
			return nil, invalid("monthOrdinal", "cannot be combined with days of the month")
		}
		return MonthlyByDay{MonthDays: p.EachMonthDay}, nil
	}
	return nil, invalid("monthOption", "%q is not one of %q, %q", p.MonthOption, MonthOptionEach, MonthOptionOn)
}

func toWeekdays(days []int) []Weekday {
	weekdays := make([]Weekday, 0, len(days))
	for _, d := range days {
		weekdays = append(weekdays, Weekday(d))
	}
	return weekdays
}
