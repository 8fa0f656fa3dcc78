// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dashboard/layout.go
// Summary: Fixed tile layout of the dashboard panel and hit-testing.
// Notes: PanelLayout is pure and is re-run from scratch on every resize.

package dashboard

import (
	"fmt"
	"image"
)

// TileID names a dashboard region.
type TileID int

const (
	TileNone TileID = iota
	Toggle
	Dots
	Clock
	Weather
	Timer1
	Timer2
	Volume
	Audio
)

var tileNames = map[TileID]string{
	TileNone: "none",
	Toggle:   "toggle",
	Dots:     "dots",
	Clock:    "clock",
	Weather:  "weather",
	Timer1:   "timer1",
	Timer2:   "timer2",
	Volume:   "volume",
	Audio:    "audio",
}

func (t TileID) String() string {
	if s, ok := tileNames[t]; ok {
		return s
	}
	return fmt.Sprintf("tile(%d)", int(t))
}

// Arrangement selects how the center column is split below the clock.
type Arrangement int

const (
	// TimersSide puts the two timers side by side under a full-width clock.
	TimersSide Arrangement = iota
	// TimersStacked puts the weather tile on the left and the two timers
	// stacked on its right, under a clock two thirds wide.
	TimersStacked
)

// Constants are the panel metrics in logical pixels.
type Constants struct {
	Arrangement Arrangement

	Width, Height int
	// Outer is the border thickness, Inner the divider thickness.
	Outer, Inner int
	LeftW        int
	RightW       int
	// ToggleH splits the left column, ClockH the center column and
	// AudioH the right column from the bottom.
	ToggleH int
	ClockH  int
	AudioH  int
	// WeatherH carves a weather strip off the bottom of the clock tile.
	// Zero disables it. Only used by TimersSide.
	WeatherH int
	// TimerPad keeps stacked timers off the tile's top and bottom edges.
	TimerPad int
}

func DefaultConstants() Constants {
	return Constants{
		Width:   320,
		Height:  202,
		Outer:   3,
		Inner:   1,
		LeftW:   42,
		RightW:  42,
		ToggleH: 38,
		ClockH:  145,
		AudioH:  34,
	}
}

// RavenConstants is the wider panel with stacked timers and a permanent
// weather tile.
func RavenConstants() Constants {
	return Constants{
		Arrangement: TimersStacked,
		Width:       410,
		Height:      230,
		Outer:       3,
		Inner:       1,
		LeftW:       58,
		RightW:      58,
		ToggleH:     48,
		ClockH:      110,
		AudioH:      55,
		TimerPad:    8,
	}
}

// Preset returns the constants named by a config value: "raven" or
// anything else for the default panel.
func Preset(name string) Constants {
	if name == "raven" {
		return RavenConstants()
	}
	return DefaultConstants()
}

// Scaled multiplies every metric for an integer buffer scale.
func (c Constants) Scaled(n int) Constants {
	if n <= 1 {
		return c
	}
	return Constants{
		Arrangement: c.Arrangement,
		Width:       c.Width * n,
		Height:      c.Height * n,
		Outer:       c.Outer * n,
		Inner:       c.Inner * n,
		LeftW:       c.LeftW * n,
		RightW:      c.RightW * n,
		ToggleH:     c.ToggleH * n,
		ClockH:      c.ClockH * n,
		AudioH:      c.AudioH * n,
		WeatherH:    c.WeatherH * n,
		TimerPad:    c.TimerPad * n,
	}
}

type Tile struct {
	ID   TileID
	Rect image.Rectangle
}

// Layout is an ordered set of non-overlapping tiles.
type Layout struct {
	Width, Height int
	Tiles         []Tile
}

// PanelLayout computes the tile rectangles for a w x h panel. Sizes that go
// negative on small panels clamp to zero and every tile is clipped to the
// interior, so tiles never overlap; clipped-away tiles are empty and never
// hit.
func PanelLayout(w, h int, c Constants) Layout {
	interior := image.Rect(c.Outer, c.Outer, w-c.Outer, h-c.Outer)
	if interior.Empty() {
		interior = image.Rectangle{}
	}
	interiorW, interiorH := interior.Dx(), interior.Dy()

	rect := func(x, y, rw, rh int) image.Rectangle {
		r := image.Rect(x, y, x+max(rw, 0), y+max(rh, 0))
		if r.Empty() {
			return image.Rectangle{}
		}
		return r.Intersect(interior)
	}

	centerX := c.Outer + c.LeftW + c.Inner
	centerW := max(interiorW-c.LeftW-c.RightW-2*c.Inner, 0)
	rightX := max(w-c.Outer-c.RightW, centerX+centerW+c.Inner)
	timerY := c.Outer + c.ClockH + c.Inner
	timerH := interiorH - c.ClockH - c.Inner
	timerW := max((centerW-c.Inner)/2, 0)
	audioY := max(h-c.Outer-c.AudioH, c.Outer)

	if c.Arrangement == TimersStacked {
		clockW := centerW * 2 / 3
		weatherW := centerW * 2 / 5
		timerX := centerX + weatherW + c.Inner
		timerW := centerW - weatherW - c.Inner
		half := max(timerH/2, 0)
		return Layout{Width: w, Height: h, Tiles: []Tile{
			{Toggle, rect(c.Outer, c.Outer, c.LeftW, c.ToggleH)},
			{Dots, rect(c.Outer, c.Outer+c.ToggleH+c.Inner, c.LeftW, interiorH-c.ToggleH-c.Inner)},
			{Clock, rect(centerX, c.Outer, clockW, c.ClockH)},
			{Weather, rect(centerX, timerY, weatherW, timerH)},
			{Timer1, rect(timerX, timerY+half, timerW, timerH-half-c.TimerPad)},
			{Timer2, rect(timerX, timerY+c.TimerPad, timerW, half-c.TimerPad)},
			{Volume, rect(rightX, c.Outer, c.RightW, audioY-c.Outer)},
			{Audio, rect(rightX, audioY, c.RightW, c.AudioH)},
		}}
	}

	clockH := c.ClockH
	if c.WeatherH > 0 {
		clockH = max(c.ClockH-c.WeatherH-c.Inner, 0)
	}

	tiles := []Tile{
		{Toggle, rect(c.Outer, c.Outer, c.LeftW, c.ToggleH)},
		{Dots, rect(c.Outer, c.Outer+c.ToggleH+c.Inner, c.LeftW, interiorH-c.ToggleH-c.Inner)},
		{Clock, rect(centerX, c.Outer, centerW, clockH)},
	}
	if c.WeatherH > 0 {
		tiles = append(tiles, Tile{Weather, rect(centerX, c.Outer+clockH+c.Inner, centerW, c.ClockH-clockH-c.Inner)})
	}
	tiles = append(tiles,
		Tile{Timer1, rect(centerX, timerY, timerW, timerH)},
		Tile{Timer2, rect(centerX+timerW+c.Inner, timerY, centerW-timerW-c.Inner, timerH)},
		Tile{Volume, rect(rightX, c.Outer, c.RightW, audioY-c.Outer)},
		Tile{Audio, rect(rightX, audioY, c.RightW, c.AudioH)},
	)
	return Layout{Width: w, Height: h, Tiles: tiles}
}

// TileAt returns the tile containing p.
func (l Layout) TileAt(p image.Point) (TileID, bool) {
	for _, t := range l.Tiles {
		if p.In(t.Rect) {
			return t.ID, true
		}
	}
	return TileNone, false
}

// Rect returns the rectangle of id, empty when it is not laid out.
func (l Layout) Rect(id TileID) image.Rectangle {
	for _, t := range l.Tiles {
		if t.ID == id {
			return t.Rect
		}
	}
	return image.Rectangle{}
}

// Overlaps lists every pair of tiles whose rectangles intersect.
func (l Layout) Overlaps() [][2]TileID {
	var out [][2]TileID
	for i, a := range l.Tiles {
		for _, b := range l.Tiles[i+1:] {
			if a.Rect.Overlaps(b.Rect) {
				out = append(out, [2]TileID{a.ID, b.ID})
			}
		}
	}
	return out
}
