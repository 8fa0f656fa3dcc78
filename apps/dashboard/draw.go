// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/dashboard/draw.go
// Summary: Paints the dashboard tiles.

package dashboard

import (
	"image"
	"image/color"

	"github.com/framegrace/texelayer/apps/clock"
	dash "github.com/framegrace/texelayer/dashboard"
	"github.com/framegrace/texelayer/render"
)

// Text sizes and volume bar metrics in logical pixels.
const (
	iconSize   = 25.0
	dotSize    = 22.0
	dateSize   = 18.0
	timerSize  = 26.0
	clockGap   = 2
	volBarPad  = 12
	volBarW    = 12
	iconNudge  = -0.1
	dotGlyph   = "●"
	iconDim    = "\uf186"
	iconBright = "\uf185"
	iconPhones = "\uf025"
	iconSpeak  = "\uf028"
)

func (w *Widget) Draw(c *render.Canvas) {
	s := w.scale
	sf := float64(s)
	k := w.consts.Scaled(s)
	b := c.Bounds()
	lay := w.board.Layout()
	pal := w.palette

	c.Clear(color.NRGBA{})
	c.FillRect(b.Inset(k.Outer), pal.Get("background"))
	c.StrokeRect(b, k.Outer, pal.Get("border"))
	w.drawDividers(c, lay, k)

	text := func(size float64) *render.Face { return w.fonts.Face(w.family, size*sf) }
	icons := func(size float64) *render.Face { return w.fonts.Face(w.iconFamily, size*sf) }

	// toggle
	glyph, col := iconBright, pal.Get("sun")
	if w.dim {
		glyph, col = iconDim, pal.Get("clock")
	}
	drawCentered(c, icons(iconSize), glyph, lay.Rect(dash.Toggle), w.hovered(dash.Toggle, col), 0)

	// dots
	dots := lay.Rect(dash.Dots)
	step := dots.Dy() / len(dotKeys)
	for i, key := range dotKeys {
		r := image.Rect(dots.Min.X, dots.Min.Y+i*step, dots.Max.X, dots.Min.Y+(i+1)*step)
		drawCentered(c, text(dotSize), dotGlyph, r, pal.Get(key), 0)
	}

	clock.DrawBlock(c, lay.Rect(dash.Clock),
		text(w.set.FontSize), clock.Time(w.now, w.set.ShowSeconds), pal.Get("clock"),
		text(dateSize), clock.Date(w.now), pal.Get("clock"),
		clockGap*s)

	if r := lay.Rect(dash.Weather); !r.Empty() {
		w.drawWeather(c, r, text(dateSize), icons(dateSize))
	}

	for i, id := range []dash.TileID{dash.Timer1, dash.Timer2} {
		t := w.timers[i]
		col := pal.Get("ui")
		if !t.Running() {
			col = render.WithAlpha(col, inactiveOpacity)
		}
		drawCentered(c, text(timerSize), t.Text(w.now), lay.Rect(id), w.hovered(id, col), 0)
	}

	w.drawVolume(c, lay.Rect(dash.Volume), text(timerSize))

	glyph = iconSpeak
	if w.audio.Headphones {
		glyph = iconPhones
	}
	col = pal.Get("ui")
	if w.audio.Muted {
		col = render.WithAlpha(col, volumeBgOpacity)
	}
	drawCentered(c, icons(iconSize), glyph, lay.Rect(dash.Audio), w.hovered(dash.Audio, col), iconNudge)
}

// drawDividers draws the column lines over the full interior height and
// the row lines within their column only.
func (w *Widget) drawDividers(c *render.Canvas, lay dash.Layout, k dash.Constants) {
	col := w.palette.Get("divider")
	top, bottom := k.Outer, lay.Height-k.Outer
	vol := lay.Rect(dash.Volume)
	c.FillRect(image.Rect(k.Outer+k.LeftW, top, k.Outer+k.LeftW+k.Inner, bottom), col)
	c.FillRect(image.Rect(vol.Min.X-k.Inner, top, vol.Min.X, bottom), col)

	toggle := lay.Rect(dash.Toggle)
	c.FillRect(image.Rect(k.Outer, toggle.Max.Y, k.Outer+k.LeftW, toggle.Max.Y+k.Inner), col)

	if k.Arrangement == dash.TimersStacked {
		centerX := k.Outer + k.LeftW + k.Inner
		clk, wx := lay.Rect(dash.Clock), lay.Rect(dash.Weather)
		c.FillRect(image.Rect(centerX, k.Outer+k.ClockH, vol.Min.X-k.Inner, k.Outer+k.ClockH+k.Inner), col)
		c.FillRect(image.Rect(clk.Max.X, k.Outer, clk.Max.X+k.Inner, k.Outer+k.ClockH), col)
		if !wx.Empty() {
			c.FillRect(image.Rect(wx.Max.X, wx.Min.Y, wx.Max.X+k.Inner, wx.Max.Y), col)
		}
		return
	}

	for _, id := range []dash.TileID{dash.Clock, dash.Weather} {
		if r := lay.Rect(id); !r.Empty() {
			c.FillRect(image.Rect(r.Min.X, r.Max.Y, r.Max.X, r.Max.Y+k.Inner), col)
		}
	}
	t1 := lay.Rect(dash.Timer1)
	c.FillRect(image.Rect(t1.Max.X, t1.Min.Y, t1.Max.X+k.Inner, t1.Max.Y), col)
}

func (w *Widget) drawWeather(c *render.Canvas, r image.Rectangle, face, icons *render.Face) {
	col := w.palette.Get("ui")
	label := w.forecast.Text(w.now)
	if !w.forecast.Fresh(w.now) {
		drawCentered(c, face, label, r, render.WithAlpha(col, inactiveOpacity), 0)
		return
	}
	glyph := w.forecast.Glyph()
	gap := face.Height / 3
	gw, tw := icons.Measure(glyph), face.Measure(label)
	x := r.Min.X + (r.Dx()-gw-gap-tw)/2
	drawCentered(c, icons, glyph, image.Rect(x, r.Min.Y, x+gw, r.Max.Y), col, 0)
	x += gw + gap
	drawCentered(c, face, label, image.Rect(x, r.Min.Y, x+tw, r.Max.Y), col, 0)
}

// drawVolume draws a beveled track with the level filled from the bottom.
// An unknown level shows "?" instead.
func (w *Widget) drawVolume(c *render.Canvas, vol image.Rectangle, face *render.Face) {
	if vol.Empty() {
		return
	}
	ui := w.palette.Get("ui")
	if !w.audio.Known {
		drawCentered(c, face, "?", vol, render.WithAlpha(ui, inactiveOpacity), 0)
		return
	}
	barW := volBarW * w.scale
	top, h := w.barSpan()
	if h <= 0 {
		return
	}
	x := vol.Min.X + (vol.Dx()-barW)/2
	track := image.Rect(x, top, x+barW, top+h)
	bevel := barW / 4
	fillBevel(c, track, bevel, render.WithAlpha(ui, volumeBgOpacity))

	frac := min(max(w.audio.Volume/VolumeMax, 0), 1)
	fillH := int(float64(h) * frac)
	if fillH <= 0 {
		return
	}
	level := ui
	if w.audio.Muted {
		level = render.WithAlpha(ui, mutedOpacity)
	}
	fillBevel(c, image.Rect(x, track.Max.Y-fillH, x+barW, track.Max.Y), min(bevel, fillH/2), level)
}

// fillBevel fills r with its four corners cut at 45 degrees by b pixels.
// The pieces never overlap, so translucent colors blend once.
func fillBevel(c *render.Canvas, r image.Rectangle, b int, col color.NRGBA) {
	b = min(b, r.Dx()/2, r.Dy()/2)
	if b <= 0 {
		c.FillRect(r, col)
		return
	}
	c.FillRect(image.Rect(r.Min.X, r.Min.Y+b, r.Max.X, r.Max.Y-b), col)
	c.FillRect(image.Rect(r.Min.X+b, r.Min.Y, r.Max.X-b, r.Min.Y+b), col)
	c.FillRect(image.Rect(r.Min.X+b, r.Max.Y-b, r.Max.X-b, r.Max.Y), col)

	x0, x1 := float64(r.Min.X), float64(r.Max.X)
	y0, y1 := float64(r.Min.Y), float64(r.Max.Y)
	fb := float64(b)
	pt := func(x, y float64) render.PointF { return render.PointF{X: x, Y: y} }
	c.FillTriangle(pt(x0, y0+fb), pt(x0+fb, y0), pt(x0+fb, y0+fb), col)
	c.FillTriangle(pt(x1-fb, y0), pt(x1, y0+fb), pt(x1-fb, y0+fb), col)
	c.FillTriangle(pt(x0, y1-fb), pt(x0+fb, y1-fb), pt(x0+fb, y1), col)
	c.FillTriangle(pt(x1-fb, y1-fb), pt(x1, y1-fb), pt(x1-fb, y1), col)
}

// hovered dims col unless id is the hover tile.
func (w *Widget) hovered(id dash.TileID, col color.NRGBA) color.NRGBA {
	if w.board.Hovered() == id {
		return col
	}
	return render.WithAlpha(col, w.set.HoverOpacity)
}

// drawCentered centers text in r. nudge shifts it down by a fraction of
// the font size, negative moving it up.
func drawCentered(c *render.Canvas, f *render.Face, text string, r image.Rectangle, col color.NRGBA, nudge float64) {
	if r.Empty() {
		return
	}
	wd := f.Measure(text)
	origin := image.Pt(r.Min.X+(r.Dx()-wd)/2, r.Min.Y+(r.Dy()-f.Height)/2+int(f.Size*nudge))
	c.DrawText(f, text, origin, r.Dx(), col)
}
