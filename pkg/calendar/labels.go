package calendar

import (
	"fmt"
	"time"

	"github.com/jivetime/jivetime/pkg/recurrence"
)

type Label struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

type FrequencyLabel struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Labels are the display names clients need to render calendars and recurrence pickers.
// Weekday values are ISO numbers; the weekday lists start at the configured first weekday.
type Labels struct {
	WeekdaysShort []Label          `json:"weekdaysShort"`
	WeekdaysLong  []Label          `json:"weekdaysLong"`
	MonthsShort   []Label          `json:"monthsShort"`
	MonthsLong    []Label          `json:"monthsLong"`
	Ordinals      []Label          `json:"ordinals"`
	Frequencies   []FrequencyLabel `json:"frequencies"`
}

var ordinalLabels = []Label{
	{Value: int(recurrence.First), Text: "first"},
	{Value: int(recurrence.Second), Text: "second"},
	{Value: int(recurrence.Third), Text: "third"},
	{Value: int(recurrence.Fourth), Text: "fourth"},
	{Value: int(recurrence.Last), Text: "last"},
}

var frequencyLabels = []FrequencyLabel{
	{Value: recurrence.FreqDaily.String(), Text: "Day(s)"},
	{Value: recurrence.FreqWeekly.String(), Text: "Week(s)"},
	{Value: recurrence.FreqMonthly.String(), Text: "Month(s)"},
	{Value: recurrence.FreqYearly.String(), Text: "Year(s)"},
}

func NewLabels(firstWeekday time.Weekday) Labels {
	labels := Labels{
		Ordinals:    ordinalLabels,
		Frequencies: frequencyLabels,
	}
	for _, d := range Weekdays(firstWeekday) {
		iso := int(recurrence.ISOWeekday(d))
		labels.WeekdaysShort = append(labels.WeekdaysShort, Label{Value: iso, Text: d.String()[:3]})
		labels.WeekdaysLong = append(labels.WeekdaysLong, Label{Value: iso, Text: d.String()})
	}
	for m := time.January; m <= time.December; m++ {
		labels.MonthsShort = append(labels.MonthsShort, Label{Value: int(m), Text: m.String()[:3]})
		labels.MonthsLong = append(labels.MonthsLong, Label{Value: int(m), Text: m.String()})
	}
	return labels
}

// Weekdays returns the seven weekdays starting at first.
func Weekdays(first time.Weekday) []time.Weekday {
	days := make([]time.Weekday, 7)
	for i := range days {
		days[i] = (first + time.Weekday(i)) % 7
	}
	return days
}

type ScopeType string

const (
	ScopeYear  ScopeType = "year"
	ScopeMonth ScopeType = "month"
	ScopeDay   ScopeType = "day"
)

type Scope struct {
	Scope ScopeType `json:"scope"`
	Path  string    `json:"path"`
	Label string    `json:"label"`
}

// ScopeMenu links the yearly, monthly and daily views that contain day.
func ScopeMenu(groupId int, day time.Time) []Scope {
	base := fmt.Sprintf("/api/group/%d/calendar", groupId)
	return []Scope{
		{Scope: ScopeYear, Path: fmt.Sprintf("%s/%d", base, day.Year()), Label: "Yearly View"},
		{Scope: ScopeMonth, Path: fmt.Sprintf("%s/%d/%d", base, day.Year(), day.Month()), Label: "Monthly View"},
		{Scope: ScopeDay, Path: fmt.Sprintf("%s/%d/%d/%d", base, day.Year(), day.Month(), day.Day()), Label: "Daily View"},
	}
}
