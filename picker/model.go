// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: picker/model.go
// Summary: Filterable, navigable list/grid of items with frecency ranking.
// Usage: New(items, opts); SetQuery on every edit, Move on arrow keys,
//   SelectCurrent on Enter.
// Notes: Selection is an index into the filtered list, -1 when it is empty.

package picker

import (
	"image"
	"slices"
	"time"

	"golang.org/x/text/cases"
)

// Item is one pickable entry. Key identifies it in the history.
type Item struct {
	Label     string
	Secondary string
	Key       string
	Payload   any
}

// Match is a filtered item: its index into the item list and its score.
type Match struct {
	Index int
	Score Score
}

type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

type Options struct {
	Columns     int
	VisibleRows int
	// MatchSecondary also matches the query against Item.Secondary.
	MatchSecondary bool
	HalfLife       time.Duration
	History        History
	Now            func() time.Time
}

// Model is owned by one widget and is not safe for concurrent use.
type Model struct {
	items   []Item
	keys    []folded
	query   string
	fquery  string
	matches []Match

	selected int
	scroll   int

	columns        int
	visible        int
	matchSecondary bool
	halfLife       time.Duration
	history        History
	now            func() time.Time
	caser          cases.Caser
}

func New(items []Item, opts Options) *Model {
	m := &Model{
		columns:        max(opts.Columns, 1),
		visible:        max(opts.VisibleRows, 0),
		matchSecondary: opts.MatchSecondary,
		halfLife:       opts.HalfLife,
		history:        opts.History,
		now:            opts.Now,
		caser:          cases.Fold(),
	}
	if m.halfLife <= 0 {
		m.halfLife = DefaultHalfLife
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.history == nil {
		m.history = History{}
	}
	m.SetItems(items)
	return m
}

// SetItems replaces the item list and re-applies the query.
func (m *Model) SetItems(items []Item) {
	m.items = items
	m.keys = make([]folded, len(items))
	for i, it := range items {
		m.keys[i] = folded{label: m.caser.String(it.Label), secondary: m.caser.String(it.Secondary)}
	}
	m.refilter()
}

// SetQuery replaces the query, re-ranks and selects the top match.
func (m *Model) SetQuery(q string) {
	m.query = q
	m.fquery = m.caser.String(q)
	m.refilter()
}

func (m *Model) Query() string { return m.query }

// Score rates item against query; false means the item is filtered out.
func (m *Model) Score(item Item, query string) (Score, bool) {
	q, ok := quality(m.caser.String(item.Label), m.caser.String(item.Secondary), m.caser.String(query), m.matchSecondary)
	if !ok {
		return Score{}, false
	}
	return Score{Quality: q, Frecency: m.frecency(item)}, true
}

func (m *Model) frecency(item Item) float64 {
	if item.Key == "" {
		return 0
	}
	return Frecency(m.history[item.Key], m.now(), m.halfLife)
}

func (m *Model) refilter() {
	m.matches = m.matches[:0]
	for i, it := range m.items {
		k := m.keys[i]
		q, ok := quality(k.label, k.secondary, m.fquery, m.matchSecondary)
		if !ok {
			continue
		}
		m.matches = append(m.matches, Match{Index: i, Score: Score{Quality: q, Frecency: m.frecency(it)}})
	}
	slices.SortFunc(m.matches, func(a, b Match) int { return compareMatches(a, b, m.keys) })
	m.scroll = 0
	if len(m.matches) == 0 {
		m.selected = -1
		return
	}
	m.selected = 0
	m.ensureVisible()
}

// Len is the number of filtered items.
func (m *Model) Len() int { return len(m.matches) }

func (m *Model) Matches() []Match { return m.matches }

// Item returns the filtered item at i.
func (m *Model) Item(i int) Item { return m.items[m.matches[i].Index] }

// Selected is the selected filtered index or -1.
func (m *Model) Selected() int { return m.selected }

// ScrollRow is the first visible row.
func (m *Model) ScrollRow() int { return m.scroll }

func (m *Model) Columns() int { return m.columns }

func (m *Model) VisibleRows() int { return m.visible }

// Rows is the number of rows the filtered items occupy.
func (m *Model) Rows() int {
	return (len(m.matches) + m.columns - 1) / m.columns
}

// SetGrid changes the column count and the number of rows that fit, for
// example after a resize.
func (m *Model) SetGrid(columns, visibleRows int) {
	m.columns = max(columns, 1)
	m.visible = max(visibleRows, 0)
	m.scroll = min(m.scroll, m.maxScroll())
	m.ensureVisible()
}

func (m *Model) maxScroll() int {
	return max(m.Rows()-m.visible, 0)
}

// ensureVisible scrolls by the least amount that shows the selected row.
func (m *Model) ensureVisible() {
	if m.selected < 0 || m.visible == 0 {
		return
	}
	row := m.selected / m.columns
	if row < m.scroll {
		m.scroll = row
	}
	if row >= m.scroll+m.visible {
		m.scroll = row - m.visible + 1
	}
}

// Move moves the selection one step without wrapping. It reports whether
// the selection changed.
func (m *Model) Move(dir Direction) bool {
	n := len(m.matches)
	if n == 0 {
		return false
	}
	prev := m.selected
	switch dir {
	case Left:
		if m.selected > 0 {
			m.selected--
		}
	case Right:
		if m.selected+1 < n {
			m.selected++
		}
	case Up:
		if m.selected >= m.columns {
			m.selected -= m.columns
		}
	case Down:
		switch {
		case m.selected+m.columns < n:
			m.selected += m.columns
		case m.selected/m.columns < (n-1)/m.columns:
			// next row is partial and has nothing under this column
			m.selected = n - 1
		}
	}
	if m.selected == prev {
		return false
	}
	m.ensureVisible()
	return true
}

// Scroll moves the view by rows without touching the selection.
func (m *Model) Scroll(rows int) bool {
	next := min(max(m.scroll+rows, 0), m.maxScroll())
	if next == m.scroll {
		return false
	}
	m.scroll = next
	return true
}

// Select selects filtered index i, as on a pointer click.
func (m *Model) Select(i int) bool {
	if i < 0 || i >= len(m.matches) || i == m.selected {
		return false
	}
	m.selected = i
	m.ensureVisible()
	return true
}

// SelectCurrent returns the selected item, or false on an empty list.
func (m *Model) SelectCurrent() (Item, bool) {
	if m.selected < 0 || m.selected >= len(m.matches) {
		return Item{}, false
	}
	return m.Item(m.selected), true
}

// Cell is the grid position of filtered index i. A single row with fewer
// items than columns is centered, leaning right on odd gaps.
func (m *Model) Cell(i int) (row, col int) {
	row, col = i/m.columns, i%m.columns
	if n := len(m.matches); n < m.columns {
		col += (m.columns - n + 1) / 2
	}
	return row, col
}

// Geometry places the grid on the canvas.
type Geometry struct {
	Origin image.Point
	CellW  int
	CellH  int
}

// CellRect is where filtered index i is drawn, accounting for scroll. The
// rectangle may lie outside the visible area.
func (m *Model) CellRect(i int, g Geometry) image.Rectangle {
	row, col := m.Cell(i)
	tl := g.Origin.Add(image.Pt(col*g.CellW, (row-m.scroll)*g.CellH))
	return image.Rectangle{Min: tl, Max: tl.Add(image.Pt(g.CellW, g.CellH))}
}

// ItemAt maps a point back to a visible filtered index.
func (m *Model) ItemAt(p image.Point, g Geometry) (int, bool) {
	if g.CellW <= 0 || g.CellH <= 0 || len(m.matches) == 0 {
		return 0, false
	}
	d := p.Sub(g.Origin)
	if d.X < 0 || d.Y < 0 {
		return 0, false
	}
	col, row := d.X/g.CellW, d.Y/g.CellH
	if col >= m.columns || (m.visible > 0 && row >= m.visible) {
		return 0, false
	}
	row += m.scroll
	offset := 0
	if n := len(m.matches); n < m.columns {
		offset = (m.columns - n + 1) / 2
	}
	col -= offset
	if col < 0 || col >= m.columns {
		return 0, false
	}
	i := row*m.columns + col
	if i >= len(m.matches) {
		return 0, false
	}
	return i, true
}

// SetHistory replaces the history and re-ranks.
func (m *Model) SetHistory(h History) {
	if h == nil {
		h = History{}
	}
	m.history = h
	m.refilter()
}

// Touch records a use of key and returns the updated entry for the widget
// to persist. The current order is left alone.
func (m *Model) Touch(key string, now time.Time) Entry {
	e := m.history[key]
	e.Count++
	e.Last = now
	m.history[key] = e
	return e
}
