// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dashboard/layout_test.go
// Summary: Layout purity, overlap freedom, hit-testing and hover changes.

package dashboard

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPanelRects(t *testing.T) {
	c := DefaultConstants()
	l := PanelLayout(c.Width, c.Height, c)
	want := map[TileID]image.Rectangle{
		Toggle: image.Rect(3, 3, 45, 41),
		Dots:   image.Rect(3, 42, 45, 199),
		Clock:  image.Rect(46, 3, 274, 148),
		Timer1: image.Rect(46, 149, 159, 199),
		Timer2: image.Rect(160, 149, 274, 199),
		Volume: image.Rect(275, 3, 317, 165),
		Audio:  image.Rect(275, 165, 317, 199),
	}
	require.Len(t, l.Tiles, len(want))
	for id, r := range want {
		assert.Equal(t, r, l.Rect(id), id.String())
	}
	assert.True(t, l.Rect(Weather).Empty())
}

func TestLayoutIsPure(t *testing.T) {
	c := DefaultConstants()
	c.WeatherH = 30
	for _, size := range [][2]int{{320, 202}, {10, 10}, {640, 404}, {0, 0}} {
		a := PanelLayout(size[0], size[1], c)
		b := PanelLayout(size[0], size[1], c)
		assert.Equal(t, a, b)
	}
}

func TestLayoutNeverOverlaps(t *testing.T) {
	raven := RavenConstants()
	for _, c := range []Constants{DefaultConstants(), withWeather(DefaultConstants(), 30), raven, raven.Scaled(2)} {
		weather := c.WeatherH
		for w := 0; w <= 700; w += 7 {
			for h := 0; h <= 420; h += 5 {
				l := PanelLayout(w, h, c)
				require.Empty(t, l.Overlaps(), "size %dx%d weather %d", w, h, weather)
				bounds := image.Rect(0, 0, w, h)
				for _, tile := range l.Tiles {
					require.True(t, tile.Rect.In(bounds), "%s outside %dx%d", tile.ID, w, h)
				}
			}
		}
	}
}

func withWeather(c Constants, h int) Constants {
	c.WeatherH = h
	return c
}

func TestRavenPresetStacksTimers(t *testing.T) {
	c := Preset("raven")
	require.Equal(t, TimersStacked, c.Arrangement)
	l := PanelLayout(c.Width, c.Height, c)
	want := map[TileID]image.Rectangle{
		Toggle:  image.Rect(3, 3, 61, 51),
		Dots:    image.Rect(3, 52, 61, 227),
		Clock:   image.Rect(62, 3, 252, 113),
		Weather: image.Rect(62, 114, 176, 227),
		Timer2:  image.Rect(177, 122, 348, 170),
		Timer1:  image.Rect(177, 170, 348, 219),
		Volume:  image.Rect(349, 3, 407, 172),
		Audio:   image.Rect(349, 172, 407, 227),
	}
	require.Len(t, l.Tiles, len(want))
	for id, r := range want {
		assert.Equal(t, r, l.Rect(id), id.String())
	}
	assert.Equal(t, DefaultConstants(), Preset("panel"))
	assert.Equal(t, DefaultConstants(), Preset(""))
}

func TestWeatherStripSitsUnderClock(t *testing.T) {
	c := DefaultConstants()
	c.WeatherH = 30
	l := PanelLayout(c.Width, c.Height, c)
	clock, weather := l.Rect(Clock), l.Rect(Weather)
	assert.Equal(t, 30, weather.Dy())
	assert.Equal(t, clock.Max.Y+c.Inner, weather.Min.Y)
	assert.Equal(t, l.Rect(Timer1).Min.Y, weather.Max.Y+c.Inner)
}

func TestScaledLayoutDoubles(t *testing.T) {
	c := DefaultConstants()
	s := c.Scaled(2)
	l1 := PanelLayout(c.Width, c.Height, c)
	l2 := PanelLayout(s.Width, s.Height, s)
	for _, tile := range l1.Tiles {
		if tile.ID == Timer1 || tile.ID == Timer2 {
			// the timer split rounds the halved width
			continue
		}
		r := tile.Rect
		assert.Equal(t, image.Rect(r.Min.X*2, r.Min.Y*2, r.Max.X*2, r.Max.Y*2), l2.Rect(tile.ID), tile.ID.String())
	}
	assert.Equal(t, c, c.Scaled(1))
}

func TestTileAt(t *testing.T) {
	c := DefaultConstants()
	l := PanelLayout(c.Width, c.Height, c)
	cases := []struct {
		p    image.Point
		want TileID
		ok   bool
	}{
		{image.Pt(100, 50), Clock, true},
		{image.Pt(3, 3), Toggle, true},
		{image.Pt(1, 1), TileNone, false},     // border
		{image.Pt(45, 10), TileNone, false},   // divider
		{image.Pt(159, 170), TileNone, false}, // timer split
		{image.Pt(160, 170), Timer2, true},
		{image.Pt(300, 180), Audio, true},
		{image.Pt(300, 164), Volume, true},
		{image.Pt(500, 500), TileNone, false},
	}
	for _, tc := range cases {
		id, ok := l.TileAt(tc.p)
		assert.Equal(t, tc.ok, ok, "%v", tc.p)
		assert.Equal(t, tc.want, id, "%v", tc.p)
	}
}

func TestHoverFromClockToEmptyReportsChange(t *testing.T) {
	b := NewBoard(DefaultConstants())
	clock := image.Pt(100, 50)
	require.True(t, b.Hover(&clock))
	assert.Equal(t, Clock, b.Hovered())

	empty := image.Pt(1, 1)
	assert.True(t, b.Hover(&empty))
	assert.Equal(t, TileNone, b.Hovered())
}

func TestHoverWithinSameTileIsNotAChange(t *testing.T) {
	b := NewBoard(DefaultConstants())
	p1, p2 := image.Pt(60, 20), image.Pt(200, 100)
	require.True(t, b.Hover(&p1))
	assert.False(t, b.Hover(&p2))
	assert.True(t, b.Hover(nil))
	assert.False(t, b.Hover(nil))
}

func TestHoverableSubset(t *testing.T) {
	b := NewBoard(DefaultConstants(), Toggle, Timer1, Timer2, Audio)
	clock := image.Pt(100, 50)
	assert.False(t, b.Hover(&clock))
	assert.Equal(t, TileNone, b.Hovered())
	toggle := image.Pt(10, 10)
	assert.True(t, b.Hover(&toggle))
	assert.Equal(t, Toggle, b.Hovered())
}

func TestResizeRederivesHover(t *testing.T) {
	b := NewBoard(DefaultConstants())
	p := image.Pt(300, 180)
	require.True(t, b.Hover(&p))
	assert.Equal(t, Audio, b.Hovered())

	// taller panel: the same point is now on the volume bar
	assert.True(t, b.Resize(320, 400))
	assert.Equal(t, Volume, b.Hovered())
	assert.False(t, b.Resize(320, 400))
}
