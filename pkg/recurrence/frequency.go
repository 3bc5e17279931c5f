package recurrence

import (
	"strings"

	"github.com/teambition/rrule-go"
)

type Frequency int

// Values follow the RFC 5545 / rrule numbering so they can be passed to the rule engine unchanged.
const (
	FreqYearly Frequency = iota
	FreqMonthly
	FreqWeekly
	FreqDaily
)

var frequencyNames = map[Frequency]string{
	FreqYearly:  "YEARLY",
	FreqMonthly: "MONTHLY",
	FreqWeekly:  "WEEKLY",
	FreqDaily:   "DAILY",
}

// ParseFrequency accepts the RFC 5545 names (case-insensitive).
func ParseFrequency(s string) (Frequency, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for f, n := range frequencyNames {
		if n == name {
			return f, nil
		}
	}
	return 0, &ConfigurationError{Frequency: s}
}

func (f Frequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return "UNKNOWN"
}

func (f Frequency) rrule() (rrule.Frequency, error) {
	switch f {
	case FreqYearly:
		return rrule.YEARLY, nil
	case FreqMonthly:
		return rrule.MONTHLY, nil
	case FreqWeekly:
		return rrule.WEEKLY, nil
	case FreqDaily:
		return rrule.DAILY, nil
	}
	return 0, &ConfigurationError{Frequency: f.String()}
}
