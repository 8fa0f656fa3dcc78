// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/text.go
// Summary: Glyph layout and blitting on top of golang.org/x/image/font.
// Usage: face.Layout(text, origin, maxWidth) then canvas.DrawRun(run, col).
// Notes: origin is the top-left of the line box. Layout adds the face's
//   ascent so glyph dots sit on the baseline; drawing at the raw origin
//   would lift text by a full ascent.

package render

import (
	"image"
	"image/color"

	"github.com/mattn/go-runewidth"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const ellipsis = '…'

// Face is a sized font ready for layout.
type Face struct {
	face    font.Face
	Family  string
	Size    float64
	Ascent  int
	Descent int
	Height  int
}

func newFace(f font.Face, family string, size float64) *Face {
	m := f.Metrics()
	h := m.Height.Ceil()
	if h == 0 {
		h = (m.Ascent + m.Descent).Ceil()
	}
	return &Face{
		face:    f,
		Family:  family,
		Size:    size,
		Ascent:  m.Ascent.Ceil(),
		Descent: m.Descent.Ceil(),
		Height:  h,
	}
}

// Glyph is one positioned glyph. Dot is the baseline origin in canvas
// pixels.
type Glyph struct {
	Rune    rune
	Dot     image.Point
	Advance int
}

// Run is a laid-out single line.
type Run struct {
	Glyphs    []Glyph
	Origin    image.Point
	Width     int
	Ascent    int
	Height    int
	Truncated bool
	face      *Face
}

// Bounds is the line box of the run.
func (r Run) Bounds() image.Rectangle {
	return image.Rect(r.Origin.X, r.Origin.Y, r.Origin.X+r.Width, r.Origin.Y+r.Height)
}

func (f *Face) advance(r rune) (fixed.Int26_6, rune) {
	if adv, ok := f.face.GlyphAdvance(r); ok {
		return adv, r
	}
	adv, _ := f.face.GlyphAdvance('?')
	return adv, '?'
}

// Layout positions text on one line starting at origin (top-left of the
// line box). A positive maxWidth truncates with an ellipsis.
func (f *Face) Layout(text string, origin image.Point, maxWidth int) Run {
	run := Run{Origin: origin, Ascent: f.Ascent, Height: f.Height, face: f}
	baseline := origin.Y + f.Ascent

	var pen fixed.Int26_6
	prev := rune(-1)
	for _, r := range text {
		if r == '\n' || r == '\t' {
			r = ' '
		}
		if prev >= 0 {
			pen += f.face.Kern(prev, r)
		}
		adv, drawn := f.advance(r)
		run.Glyphs = append(run.Glyphs, Glyph{
			Rune:    drawn,
			Dot:     image.Pt(origin.X+pen.Round(), baseline),
			Advance: adv.Round(),
		})
		pen += adv
		prev = r
	}
	run.Width = pen.Round()
	if maxWidth > 0 && run.Width > maxWidth {
		f.truncate(&run, maxWidth)
	}
	return run
}

func (f *Face) truncate(run *Run, maxWidth int) {
	eAdv, eRune := f.advance(ellipsis)
	limit := maxWidth - eAdv.Round()
	keep := 0
	for keep < len(run.Glyphs) {
		g := run.Glyphs[keep]
		if g.Dot.X-run.Origin.X+g.Advance > limit {
			break
		}
		keep++
	}
	run.Glyphs = run.Glyphs[:keep]
	x := run.Origin.X
	if keep > 0 {
		last := run.Glyphs[keep-1]
		x = last.Dot.X + last.Advance
	}
	run.Glyphs = append(run.Glyphs, Glyph{
		Rune:    eRune,
		Dot:     image.Pt(x, run.Origin.Y+f.Ascent),
		Advance: eAdv.Round(),
	})
	run.Width = x + eAdv.Round() - run.Origin.X
	run.Truncated = true
}

// Measure returns the advance width of text without truncation.
func (f *Face) Measure(text string) int {
	return f.Layout(text, image.Point{}, 0).Width
}

// DrawRun blits every glyph mask of run in col.
func (c *Canvas) DrawRun(run Run, col color.NRGBA) {
	if run.face == nil || col.A == 0 {
		return
	}
	src := image.NewUniform(col)
	for _, g := range run.Glyphs {
		dr, mask, maskp, _, ok := run.face.face.Glyph(fixed.P(g.Dot.X, g.Dot.Y), g.Rune)
		if !ok || dr.Empty() {
			continue
		}
		draw.DrawMask(c.img, dr, src, image.Point{}, mask, maskp, draw.Over)
	}
}

// DrawText lays out and draws in one call and returns the run.
func (c *Canvas) DrawText(f *Face, text string, origin image.Point, maxWidth int, col color.NRGBA) Run {
	run := f.Layout(text, origin, maxWidth)
	c.DrawRun(run, col)
	return run
}

// DrawTextCentered centers text inside r on both axes.
func (c *Canvas) DrawTextCentered(f *Face, text string, r image.Rectangle, col color.NRGBA) Run {
	run := f.Layout(text, image.Point{}, r.Dx())
	origin := image.Pt(r.Min.X+(r.Dx()-run.Width)/2, r.Min.Y+(r.Dy()-run.Height)/2)
	run = f.Layout(text, origin, r.Dx())
	c.DrawRun(run, col)
	return run
}

// bitmapFace is the built-in fallback. East Asian wide runes take two
// cells so column-aligned text keeps its shape.
type bitmapFace struct {
	*basicfont.Face
}

func (b bitmapFace) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	return fixed.I(b.Advance * runewidth.RuneWidth(r)), true
}

func (b bitmapFace) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	dr, mask, mp, _, ok := b.Face.Glyph(dot, r)
	adv, _ := b.GlyphAdvance(r)
	return dr, mask, mp, adv, ok
}

// FallbackFamily names the built-in bitmap face.
const FallbackFamily = "builtin-7x13"

// FallbackFace returns the built-in bitmap face. It never fails.
func FallbackFace() *Face {
	return newFace(bitmapFace{basicfont.Face7x13}, FallbackFamily, 13)
}
