package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type span struct {
	name       string
	start, end time.Time
}

func (s span) Bounds() (time.Time, time.Time) {
	return s.start, s.end
}

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func clock(hour, min int) time.Time {
	return time.Date(2024, 1, 1, hour, min, 0, 0, time.UTC)
}

func occupied(g Grid[span]) map[string][]int {
	rows := make(map[string][]int)
	for i, row := range g.Rows {
		for _, c := range row.Cells {
			if !c.IsEmpty() {
				rows[c.Item.name] = append(rows[c.Item.name], i)
			}
		}
	}
	return rows
}

func TestBuild_RowsCoverWindowInclusive(t *testing.T) {
	layout := Layout{Start: 9 * time.Hour, Window: 2 * time.Hour, Interval: 30 * time.Minute, MinColumns: 2}

	grid := Build[span](day, layout, nil)

	require.Len(t, grid.Rows, 5)
	assert.Equal(t, clock(9, 0), grid.Rows[0].Time)
	assert.Equal(t, clock(11, 0), grid.Rows[4].Time)
	assert.Equal(t, 2, grid.Width)
	for _, row := range grid.Rows {
		assert.Len(t, row.Cells, 2)
		for _, c := range row.Cells {
			assert.True(t, c.IsEmpty())
		}
	}
}

func TestBuild_WidthGrowsWithOverlap(t *testing.T) {
	// given
	layout := Layout{Start: 9 * time.Hour, Window: 2 * time.Hour, Interval: 30 * time.Minute, MinColumns: 2}
	items := []span{
		{"a", clock(9, 0), clock(10, 30)},
		{"b", clock(9, 30), clock(10, 0)},
		{"c", clock(9, 30), clock(11, 0)},
	}

	// when
	grid := Build(day, layout, items)

	// then
	assert.Equal(t, 3, grid.Width)
	row := grid.Rows[1]
	require.Len(t, row.Cells, 3)
	assert.Equal(t, "a", row.Cells[0].Item.name)
	assert.False(t, row.Cells[0].First)
	assert.Equal(t, "b", row.Cells[1].Item.name)
	assert.True(t, row.Cells[1].First)
	assert.Equal(t, "c", row.Cells[2].Item.name)
	for _, r := range grid.Rows {
		assert.Len(t, r.Cells, 3)
	}
}

func TestBuild_Placement(t *testing.T) {
	layout := Layout{Start: 9 * time.Hour, Window: 2 * time.Hour, Interval: 30 * time.Minute, MinColumns: 1}

	tests := []struct {
		name     string
		items    []span
		expected map[string][]int
	}{
		{
			name:     "ends before the window",
			items:    []span{{"early", clock(7, 0), clock(9, 0)}},
			expected: map[string][]int{},
		},
		{
			name:     "started before the window is clamped to the first row",
			items:    []span{{"overnight", clock(8, 0), clock(9, 45)}},
			expected: map[string][]int{"overnight": {0, 1}},
		},
		{
			name:     "start off the interval is skipped",
			items:    []span{{"odd", clock(9, 15), clock(10, 0)}},
			expected: map[string][]int{},
		},
		{
			name:     "propagation stops at the last row",
			items:    []span{{"long", clock(10, 0), clock(15, 0)}},
			expected: map[string][]int{"long": {2, 3, 4}},
		},
		{
			name:     "starts after the window",
			items:    []span{{"late", clock(12, 0), clock(13, 0)}},
			expected: map[string][]int{},
		},
		{
			name:     "end on a row boundary is exclusive",
			items:    []span{{"half", clock(9, 0), clock(9, 30)}},
			expected: map[string][]int{"half": {0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := Build(day, layout, tt.items)

			assert.Equal(t, tt.expected, occupied(grid))
			assert.Len(t, grid.Rows, 5)
		})
	}
}

func TestBuild_ReusesFreedColumn(t *testing.T) {
	layout := Layout{Start: 9 * time.Hour, Window: 2 * time.Hour, Interval: 30 * time.Minute}
	items := []span{
		{"c", clock(10, 0), clock(10, 30)},
		{"a", clock(9, 0), clock(9, 30)},
		{"b", clock(9, 0), clock(11, 0)},
	}

	grid := Build(day, layout, items)

	assert.Equal(t, 2, grid.Width)
	assert.Equal(t, "a", grid.Rows[0].Cells[0].Item.name)
	assert.Equal(t, "b", grid.Rows[0].Cells[1].Item.name)
	assert.Equal(t, "c", grid.Rows[2].Cells[0].Item.name)
	assert.Equal(t, "b", grid.Rows[2].Cells[1].Item.name)
}

func TestBuild_DoesNotReorderInput(t *testing.T) {
	layout := Layout{Start: 9 * time.Hour, Window: time.Hour, Interval: 30 * time.Minute}
	items := []span{
		{"second", clock(9, 30), clock(10, 0)},
		{"first", clock(9, 0), clock(9, 30)},
	}

	Build(day, layout, items)

	assert.Equal(t, "second", items[0].name)
}
