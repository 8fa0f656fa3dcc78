// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: picker/model_test.go
// Summary: Ranking, narrowing, navigation and grid placement of the picker.

package picker

import (
	"fmt"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return epoch }

func items(labels ...string) []Item {
	out := make([]Item, len(labels))
	for i, l := range labels {
		out[i] = Item{Label: l, Key: l, Payload: i}
	}
	return out
}

func labels(m *Model) []string {
	var out []string
	for i := 0; i < m.Len(); i++ {
		out = append(out, m.Item(i).Label)
	}
	return out
}

func TestEmptyQueryIsAlphabeticalWithoutHistory(t *testing.T) {
	m := New(items("Firefox", "Files", "Terminal"), Options{Now: fixedNow})
	assert.Equal(t, []string{"Files", "Firefox", "Terminal"}, labels(m))
	assert.Equal(t, 0, m.Selected())
}

func TestQueryFiltersToFuzzyMatches(t *testing.T) {
	m := New(items("Firefox", "Files", "Terminal"), Options{Now: fixedNow})
	m.SetQuery("fir")
	assert.Equal(t, []string{"Firefox"}, labels(m))
	assert.Equal(t, 0, m.Selected())

	it, ok := m.SelectCurrent()
	require.True(t, ok)
	assert.Equal(t, 0, it.Payload)
}

func TestNoMatchLeavesSelectionUndefined(t *testing.T) {
	m := New(items("Firefox", "Files"), Options{Now: fixedNow})
	m.SetQuery("zz")
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, -1, m.Selected())
	_, ok := m.SelectCurrent()
	assert.False(t, ok)
	assert.False(t, m.Move(Down))
}

func TestQualityOrdering(t *testing.T) {
	in := []Item{
		{Label: "Graphical Terminal"},
		{Label: "Terminal"},
		{Label: "The Emacs Remote"},
		{Label: "Editor", Secondary: "text terminal"},
	}
	m := New(in, Options{Now: fixedNow, MatchSecondary: true})
	m.SetQuery("TERM")
	assert.Equal(t, []string{"Terminal", "Graphical Terminal", "The Emacs Remote", "Editor"}, labels(m))
	q := []Quality{QualityPrefix, QualitySubstring, QualityFuzzy, QualitySecondary}
	for i, match := range m.Matches() {
		assert.Equal(t, q[i], match.Score.Quality, labels(m)[i])
	}

	m2 := New(in, Options{Now: fixedNow})
	m2.SetQuery("term")
	assert.NotContains(t, labels(m2), "Editor", "secondary matching is opt-in")
}

func TestNarrowingIsMonotonic(t *testing.T) {
	m := New(items("Firefox", "Files", "Terminal", "File Roller", "Thunar", "Firewall", "Fonts", "ffmpeg"),
		Options{Now: fixedNow, MatchSecondary: true})
	for _, q := range []string{"firewall", "terminal", "files", "fonts"} {
		prev := map[string]bool{}
		for _, l := range labels(m) {
			prev[l] = true
		}
		for n := 1; n <= len(q); n++ {
			m.SetQuery(q[:n])
			cur := labels(m)
			for _, l := range cur {
				assert.True(t, prev[l], "%q appeared when narrowing to %q", l, q[:n])
			}
			prev = map[string]bool{}
			for _, l := range cur {
				prev[l] = true
			}
		}
		m.SetQuery("")
	}
}

func TestFrecencyRanksRecentAboveStale(t *testing.T) {
	h := History{
		"Stale":  {Count: 10, Last: epoch.Add(-1000 * time.Hour)},
		"Recent": {Count: 10, Last: epoch},
	}
	m := New(items("Stale", "Recent", "Alpha"), Options{Now: fixedNow, History: h})
	assert.Equal(t, []string{"Recent", "Stale", "Alpha"}, labels(m))

	assert.InDelta(t, 10.0, Frecency(h["Recent"], epoch, DefaultHalfLife), 1e-9)
	assert.InDelta(t, 10.0/(1+1000.0/72), Frecency(h["Stale"], epoch, DefaultHalfLife), 1e-9)
	assert.Zero(t, Frecency(Entry{}, epoch, DefaultHalfLife))
}

func TestQualityBeatsFrecency(t *testing.T) {
	h := History{"Editor": {Count: 100, Last: epoch}}
	m := New(items("Terminal", "Editor"), Options{Now: fixedNow, History: h})
	assert.Equal(t, []string{"Editor", "Terminal"}, labels(m))
	m.SetQuery("t")
	assert.Equal(t, []string{"Terminal", "Editor"}, labels(m), "prefix beats a used substring match")
	m.SetQuery("r")
	assert.Equal(t, []string{"Editor", "Terminal"}, labels(m), "frecency breaks the tie")
}

func TestOrderIsTotalForDuplicates(t *testing.T) {
	in := []Item{{Label: "same", Payload: "a"}, {Label: "Same", Payload: "b"}, {Label: "SAME", Payload: "c"}}
	m := New(in, Options{Now: fixedNow})
	var got []any
	for i := 0; i < m.Len(); i++ {
		got = append(got, m.Item(i).Payload)
	}
	assert.Equal(t, []any{"a", "b", "c"}, got)
}

func TestScoreMatchesFilter(t *testing.T) {
	m := New(nil, Options{Now: fixedNow})
	s, ok := m.Score(Item{Label: "Firefox"}, "FIRE")
	require.True(t, ok)
	assert.Equal(t, QualityPrefix, s.Quality)
	_, ok = m.Score(Item{Label: "Files"}, "fir")
	assert.False(t, ok)
}

func TestMoveStaysInBounds(t *testing.T) {
	m := New(items("a", "b", "c", "d", "e"), Options{Now: fixedNow, Columns: 1, VisibleRows: 2})
	assert.False(t, m.Move(Up), "up from 0 is a no-op")
	assert.Equal(t, 0, m.Selected())
	for i := 0; i < 10; i++ {
		m.Move(Down)
		require.GreaterOrEqual(t, m.Selected(), 0)
		require.Less(t, m.Selected(), m.Len())
	}
	assert.Equal(t, 4, m.Selected())
	assert.False(t, m.Move(Down))
	assert.False(t, m.Move(Right))
}

func TestScrollIsMinimal(t *testing.T) {
	m := New(items("a", "b", "c", "d", "e", "f"), Options{Now: fixedNow, Columns: 1, VisibleRows: 3})
	m.Move(Down)
	m.Move(Down)
	assert.Equal(t, 0, m.ScrollRow())
	m.Move(Down)
	assert.Equal(t, 1, m.ScrollRow(), "one row, not re-centered")
	m.Move(Down)
	m.Move(Down)
	assert.Equal(t, 3, m.ScrollRow())
	m.Move(Up)
	m.Move(Up)
	assert.Equal(t, 3, m.ScrollRow())
	m.Move(Up)
	assert.Equal(t, 2, m.ScrollRow())
}

func TestWheelScrollKeepsSelection(t *testing.T) {
	m := New(items("a", "b", "c", "d", "e", "f"), Options{Now: fixedNow, Columns: 2, VisibleRows: 1})
	assert.True(t, m.Scroll(5))
	assert.Equal(t, 2, m.ScrollRow())
	assert.Equal(t, 0, m.Selected())
	assert.False(t, m.Scroll(1))
	assert.True(t, m.Scroll(-10))
	assert.Equal(t, 0, m.ScrollRow())
}

func TestGridNavigation(t *testing.T) {
	m := New(items("a", "b", "c", "d", "e"), Options{Now: fixedNow, Columns: 3, VisibleRows: 4})
	require.True(t, m.Move(Right))
	require.True(t, m.Move(Right))
	assert.Equal(t, 2, m.Selected())
	// nothing under column 2 in the partial last row
	require.True(t, m.Move(Down))
	assert.Equal(t, 4, m.Selected())
	assert.False(t, m.Move(Down))
	require.True(t, m.Move(Up))
	assert.Equal(t, 1, m.Selected())
	require.True(t, m.Move(Left))
	require.True(t, m.Move(Down))
	assert.Equal(t, 3, m.Selected())
}

func TestGridCentersShortSingleRow(t *testing.T) {
	m := New(items("a", "b"), Options{Now: fixedNow, Columns: 3})
	r0, c0 := m.Cell(0)
	r1, c1 := m.Cell(1)
	assert.Equal(t, [2]int{0, 1}, [2]int{r0, c0})
	assert.Equal(t, [2]int{0, 2}, [2]int{r1, c1})

	g := Geometry{Origin: image.Pt(0, 50), CellW: 100, CellH: 40}
	_, ok := m.ItemAt(image.Pt(50, 60), g)
	assert.False(t, ok, "column 0 is empty")
	i, ok := m.ItemAt(image.Pt(150, 60), g)
	require.True(t, ok)
	assert.Equal(t, 0, i)
	i, ok = m.ItemAt(image.Pt(250, 60), g)
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Equal(t, image.Rect(200, 50, 300, 90), m.CellRect(1, g))
}

func TestGridFullRowsAreNotShifted(t *testing.T) {
	m := New(items("a", "b", "c", "d"), Options{Now: fixedNow, Columns: 3})
	for i, want := range [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}} {
		r, c := m.Cell(i)
		assert.Equal(t, want, [2]int{r, c}, fmt.Sprint(i))
	}
}

func TestItemAtHonoursScroll(t *testing.T) {
	m := New(items("a", "b", "c", "d", "e", "f"), Options{Now: fixedNow, Columns: 1, VisibleRows: 2})
	g := Geometry{CellW: 100, CellH: 10}
	m.Scroll(2)
	i, ok := m.ItemAt(image.Pt(5, 15), g)
	require.True(t, ok)
	assert.Equal(t, 3, i)
	_, ok = m.ItemAt(image.Pt(5, 25), g)
	assert.False(t, ok, "below the visible rows")
	_, ok = m.ItemAt(image.Pt(-1, 5), g)
	assert.False(t, ok)
}

func TestSelectAndTouch(t *testing.T) {
	m := New(items("a", "b"), Options{Now: fixedNow})
	assert.True(t, m.Select(1))
	assert.False(t, m.Select(5))
	it, _ := m.SelectCurrent()
	e := m.Touch(it.Key, epoch)
	assert.Equal(t, Entry{Count: 1, Last: epoch}, e)
	e = m.Touch(it.Key, epoch.Add(time.Hour))
	assert.Equal(t, 2, e.Count)

	m.SetHistory(History{"b": {Count: 3, Last: epoch}})
	assert.Equal(t, []string{"b", "a"}, labels(m))
}
