package timeslot

import "time"

// Option is a selectable time of day, e.g. for a start time picker.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OffsetOption is a selectable time of day expressed as seconds from midnight.
type OffsetOption struct {
	Offset int    `json:"offset"`
	Label  string `json:"label"`
}

var optionsDay = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Options lists every row time of the layout as "HH:MM:SS" with a label in format.
func Options(layout Layout, format string) []Option {
	options := make([]Option, 0, layout.RowCount())
	for _, t := range rowTimes(layout) {
		options = append(options, Option{Value: t.Format(time.TimeOnly), Label: t.Format(format)})
	}
	return options
}

func OffsetOptions(layout Layout, format string) []OffsetOption {
	options := make([]OffsetOption, 0, layout.RowCount())
	for _, t := range rowTimes(layout) {
		options = append(options, OffsetOption{Offset: int(t.Sub(optionsDay) / time.Second), Label: t.Format(format)})
	}
	return options
}

func rowTimes(layout Layout) []time.Time {
	start := layout.DayStart(optionsDay)
	times := make([]time.Time, layout.RowCount())
	for i := range times {
		times[i] = start.Add(time.Duration(i) * layout.Interval)
	}
	return times
}
