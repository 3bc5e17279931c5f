package timeslot

import (
	"slices"
	"time"
)

// Span is anything with a time range that can be laid out on a grid.
type Span interface {
	Bounds() (start, end time.Time)
}

// Cell is one column of a row. An empty cell has Occupied == false.
// First is set only on the row where the item was placed; the rows it spans after that
// carry the same item with First == false.
type Cell[T Span] struct {
	Item     T
	Occupied bool
	First    bool
}

func (c Cell[T]) IsEmpty() bool {
	return !c.Occupied
}

type Row[T Span] struct {
	Time  time.Time
	Cells []Cell[T]
}

type Grid[T Span] struct {
	Rows  []Row[T]
	Width int
}

// Build lays items out on rows spaced by layout.Interval from the layout start on day
// through the end of the window. Each item goes to the lowest free column at the row of
// its start (or the first row when it started earlier) and occupies that column while
// the row time is before its end. Items ending before the first row are ignored, and so
// are items whose start does not fall exactly on a row.
func Build[T Span](day time.Time, layout Layout, items []T) Grid[T] {
	dayStart := layout.DayStart(day)
	rowCount := layout.RowCount()

	rows := make([]Row[T], rowCount)
	for i := range rows {
		rows[i].Time = dayStart.Add(time.Duration(i) * layout.Interval)
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		aStart, aEnd := a.Bounds()
		bStart, bEnd := b.Bounds()
		if c := aStart.Compare(bStart); c != 0 {
			return c
		}
		return aEnd.Compare(bEnd)
	})

	width := layout.MinColumns
	for _, item := range sorted {
		start, end := item.Bounds()
		if !end.After(dayStart) {
			continue
		}
		anchor := dayStart
		if start.After(dayStart) {
			anchor = start
		}
		offset := anchor.Sub(dayStart)
		if offset%layout.Interval != 0 {
			continue
		}
		index := int(offset / layout.Interval)
		if index >= rowCount {
			continue
		}

		column := freeColumn(rows[index].Cells)
		place(&rows[index], column, Cell[T]{Item: item, Occupied: true, First: true})
		for i := index + 1; i < rowCount && rows[i].Time.Before(end); i++ {
			place(&rows[i], column, Cell[T]{Item: item, Occupied: true})
		}
		width = max(width, column+1)
	}

	for i := range rows {
		rows[i].Cells = pad(rows[i].Cells, width)
	}
	return Grid[T]{Rows: rows, Width: width}
}

func freeColumn[T Span](cells []Cell[T]) int {
	for i, c := range cells {
		if c.IsEmpty() {
			return i
		}
	}
	return len(cells)
}

func place[T Span](row *Row[T], column int, cell Cell[T]) {
	row.Cells = pad(row.Cells, column+1)
	row.Cells[column] = cell
}

func pad[T Span](cells []Cell[T], width int) []Cell[T] {
	if len(cells) >= width {
		return cells
	}
	return append(cells, make([]Cell[T], width-len(cells))...)
}
