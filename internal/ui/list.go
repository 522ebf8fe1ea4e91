package ui

import (
	"github.com/ngmaloney/sunshine-terminal/internal/forecastlist"
	"github.com/ngmaloney/sunshine-terminal/internal/models"
)

// listView is the cursor and scroll state of the forecast list. Every copy
// of Model points at the same listView, so the adapter's change callback
// updates the state the next View renders.
type listView struct {
	adapter *forecastlist.Adapter
	rows    *forecastlist.Rows

	cursor int
	offset int
	height int // lines available to rows; 0 shows every row

	// location of the snapshot the cursor refers to
	location string
}

func newListView(adapter *forecastlist.Adapter) *listView {
	return &listView{adapter: adapter, rows: &forecastlist.Rows{}}
}

// dataChanged is the adapter's OnChange callback. A snapshot for another
// location starts again from the top.
func (l *listView) dataChanged(snapshot *models.Snapshot) {
	l.rows.Reset()
	if snapshot != nil && snapshot.Location != l.location {
		l.location = snapshot.Location
		l.cursor, l.offset = 0, 0
	}
	l.clamp()
}

// relayout drops bound rows after a size or template change
func (l *listView) relayout(height int) {
	l.height = height
	l.rows.Reset()
	l.ensureCursorVisible()
}

func (l *listView) move(delta int) {
	l.cursor += delta
	l.clamp()
}

func (l *listView) clamp() {
	count := l.adapter.RowCount()
	if l.cursor >= count {
		l.cursor = count - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.ensureCursorVisible()
}

// rowHeight returns the number of terminal lines the row at position uses
func (l *listView) rowHeight(position int) int {
	if l.adapter.RowTemplate(position) == forecastlist.TemplateToday {
		return todayRowHeight
	}
	return 1
}

// visibleRange returns the first position and the number of rows that fit
func (l *listView) visibleRange() (int, int) {
	count := l.adapter.RowCount()
	if l.height == 0 {
		return l.offset, count - l.offset
	}
	used, n := 0, 0
	for pos := l.offset; pos < count; pos++ {
		h := l.rowHeight(pos)
		if used+h > l.height && n > 0 {
			break
		}
		used += h
		n++
	}
	return l.offset, n
}

func (l *listView) ensureCursorVisible() {
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	for {
		first, n := l.visibleRange()
		if n == 0 || l.cursor < first+n || l.offset >= l.cursor {
			return
		}
		l.offset++
	}
}

// bind returns the row for the i-th visible slot
func (l *listView) bind(slot, position int) *forecastlist.Row {
	return l.rows.Bind(l.adapter, slot, position)
}
