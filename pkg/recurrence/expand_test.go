package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func starts(occurrences []Occurrence) []time.Time {
	result := make([]time.Time, 0, len(occurrences))
	for _, o := range occurrences {
		result = append(result, o.Start)
	}
	return result
}

func mustSpec(t *testing.T, rule Rule, interval int, termination Termination) *Spec {
	t.Helper()
	spec, err := New(rule, interval, termination)
	require.NoError(t, err)
	return spec
}

func TestExpand(t *testing.T) {
	lastFriday := OrdinalWeekday{Ordinal: Last, Weekday: Friday}

	tests := []struct {
		name     string
		start    time.Time
		rule     Rule
		interval int
		term     Termination
		expected []time.Time
	}{
		{
			name:     "weekly on monday and wednesday",
			start:    at(2024, 1, 1, 10, 0),
			rule:     Weekly{Weekdays: []Weekday{Monday, Wednesday}},
			term:     Count(4),
			expected: []time.Time{at(2024, 1, 1, 10, 0), at(2024, 1, 3, 10, 0), at(2024, 1, 8, 10, 0), at(2024, 1, 10, 10, 0)},
		},
		{
			name:     "monthly on the first monday",
			start:    at(2024, 1, 1, 9, 0),
			rule:     MonthlyByWeekday{Nth: OrdinalWeekday{Ordinal: First, Weekday: Monday}},
			term:     Count(3),
			expected: []time.Time{at(2024, 1, 1, 9, 0), at(2024, 2, 5, 9, 0), at(2024, 3, 4, 9, 0)},
		},
		{
			name:     "monthly on day 31 skips shorter months",
			start:    at(2024, 1, 31, 8, 0),
			rule:     MonthlyByDay{MonthDays: []int{31}},
			term:     Count(3),
			expected: []time.Time{at(2024, 1, 31, 8, 0), at(2024, 3, 31, 8, 0), at(2024, 5, 31, 8, 0)},
		},
		{
			name:     "every other day",
			start:    at(2024, 1, 30, 7, 30),
			rule:     Daily{},
			interval: 2,
			term:     Count(3),
			expected: []time.Time{at(2024, 1, 30, 7, 30), at(2024, 2, 1, 7, 30), at(2024, 2, 3, 7, 30)},
		},
		{
			name:     "until date is inclusive",
			start:    at(2024, 1, 1, 10, 0),
			rule:     Daily{},
			term:     Until(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)),
			expected: []time.Time{at(2024, 1, 1, 10, 0), at(2024, 1, 2, 10, 0), at(2024, 1, 3, 10, 0)},
		},
		{
			name:     "yearly in selected months",
			start:    at(2024, 1, 15, 12, 0),
			rule:     Yearly{Months: []int{1, 6}},
			term:     Count(4),
			expected: []time.Time{at(2024, 1, 15, 12, 0), at(2024, 6, 15, 12, 0), at(2025, 1, 15, 12, 0), at(2025, 6, 15, 12, 0)},
		},
		{
			name:     "yearly on the last friday of the anchor month",
			start:    at(2024, 11, 29, 18, 0),
			rule:     Yearly{Nth: &lastFriday},
			term:     Count(2),
			expected: []time.Time{at(2024, 11, 29, 18, 0), at(2025, 11, 28, 18, 0)},
		},
		{
			name:     "anchor not matching the rule is skipped",
			start:    at(2024, 1, 1, 10, 0),
			rule:     Weekly{Weekdays: []Weekday{Tuesday}},
			term:     Count(2),
			expected: []time.Time{at(2024, 1, 2, 10, 0), at(2024, 1, 9, 10, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			spec := mustSpec(t, tt.rule, tt.interval, tt.term)

			// when
			occurrences, err := Expand(tt.start, tt.start.Add(time.Hour), spec)

			// then
			require.NoError(t, err)
			assert.Equal(t, tt.expected, starts(occurrences))
			for _, o := range occurrences {
				assert.Equal(t, time.Hour, o.Duration())
			}
		})
	}
}

func TestExpand_CountIsExact(t *testing.T) {
	for _, count := range []int{1, 2, 7, 52} {
		spec := mustSpec(t, Weekly{Weekdays: []Weekday{Friday}}, 1, Count(count))

		occurrences, err := Expand(at(2024, 1, 5, 9, 0), at(2024, 1, 5, 10, 0), spec)

		require.NoError(t, err)
		assert.Len(t, occurrences, count)
	}
}

func TestExpand_PreservesDurationAcrossMidnight(t *testing.T) {
	// given
	spec := mustSpec(t, Daily{}, 1, Count(3))
	start := at(2024, 3, 1, 23, 0)
	end := at(2024, 3, 2, 1, 30)

	// when
	occurrences, err := Expand(start, end, spec)

	// then
	require.NoError(t, err)
	require.Len(t, occurrences, 3)
	assert.Equal(t, at(2024, 3, 3, 23, 0), occurrences[2].Start)
	assert.Equal(t, at(2024, 3, 4, 1, 30), occurrences[2].End)
}

func TestExpand_ResultIsSortedAndUnique(t *testing.T) {
	spec := mustSpec(t, Weekly{Weekdays: []Weekday{Friday, Monday, Monday, Wednesday}}, 1, Count(9))

	occurrences, err := Expand(at(2024, 1, 1, 10, 0), at(2024, 1, 1, 11, 0), spec)

	require.NoError(t, err)
	require.Len(t, occurrences, 9)
	for i := 1; i < len(occurrences); i++ {
		assert.True(t, occurrences[i].Start.After(occurrences[i-1].Start))
	}
}

func TestExpand_NilSpecIsSingleOccurrence(t *testing.T) {
	start := at(2024, 1, 1, 10, 0)
	end := at(2024, 1, 1, 12, 0)

	occurrences, err := Expand(start, end, nil)

	require.NoError(t, err)
	assert.Equal(t, []Occurrence{{Start: start, End: end}}, occurrences)
}

func TestExpand_Errors(t *testing.T) {
	t.Run("until before start date", func(t *testing.T) {
		spec := mustSpec(t, Daily{}, 1, Until(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))

		occurrences, err := Expand(at(2024, 1, 1, 10, 0), at(2024, 1, 1, 11, 0), spec)

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "until", validationErr.Field)
		assert.Nil(t, occurrences)
	})

	t.Run("until on the start date yields the anchor", func(t *testing.T) {
		spec := mustSpec(t, Daily{}, 1, Until(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

		occurrences, err := Expand(at(2024, 1, 1, 10, 0), at(2024, 1, 1, 11, 0), spec)

		require.NoError(t, err)
		assert.Len(t, occurrences, 1)
	})

	t.Run("end not after start", func(t *testing.T) {
		spec := mustSpec(t, Daily{}, 1, Count(2))

		_, err := Expand(at(2024, 1, 1, 10, 0), at(2024, 1, 1, 10, 0), spec)

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "endTime", validationErr.Field)
	})

	t.Run("too many occurrences", func(t *testing.T) {
		expander := NewExpander(10)

		ok, err := expander.Expand(at(2024, 1, 1, 10, 0), at(2024, 1, 1, 11, 0), mustSpec(t, Daily{}, 1, Count(10)))
		require.NoError(t, err)
		assert.Len(t, ok, 10)

		tooMany, err := expander.Expand(at(2024, 1, 1, 10, 0), at(2024, 1, 1, 11, 0), mustSpec(t, Daily{}, 1, Count(11)))
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Nil(t, tooMany)
	})
}
