// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/canvas.go
// Summary: CPU drawing surface widgets paint into every frame.
// Usage: The loop hands a Canvas sized to the buffer to Widget.Draw, then
//   copies it into the presented slot with PresentTo.
// Notes: Pixels are premultiplied RGBA (image.RGBA); PresentTo converts to
//   the compositor's BGRA layout.

package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Canvas is an immediate-mode RGBA drawing target.
type Canvas struct {
	img *image.RGBA
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Resize reallocates when the size changed. Contents are undefined after a
// resize; widgets repaint the background every frame anyway.
func (c *Canvas) Resize(width, height int) {
	if b := c.img.Bounds(); b.Dx() == width && b.Dy() == height {
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// Image exposes the backing store for tests and custom blits.
func (c *Canvas) Image() *image.RGBA { return c.img }

// At returns the straight-alpha color at (x, y).
func (c *Canvas) At(x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(c.img.RGBAAt(x, y)).(color.NRGBA)
}

// Clear replaces every pixel, alpha included.
func (c *Canvas) Clear(col color.NRGBA) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// FillRect blends col over r. Opaque colors overwrite.
func (c *Canvas) FillRect(r image.Rectangle, col color.NRGBA) {
	r = r.Intersect(c.img.Bounds())
	if r.Empty() || col.A == 0 {
		return
	}
	op := draw.Over
	if col.A == 0xff {
		op = draw.Src
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, op)
}

// FillRectAlpha fills with col at the given opacity (0..1) on top of its
// own alpha.
func (c *Canvas) FillRectAlpha(r image.Rectangle, col color.NRGBA, opacity float64) {
	c.FillRect(r, WithAlpha(col, opacity))
}

// StrokeRect draws a border of the given width inside r.
func (c *Canvas) StrokeRect(r image.Rectangle, width int, col color.NRGBA) {
	if width <= 0 || r.Empty() {
		return
	}
	if 2*width >= r.Dx() || 2*width >= r.Dy() {
		c.FillRect(r, col)
		return
	}
	c.FillRect(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), col)
	c.FillRect(image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), col)
	c.FillRect(image.Rect(r.Min.X, r.Min.Y+width, r.Min.X+width, r.Max.Y-width), col)
	c.FillRect(image.Rect(r.Max.X-width, r.Min.Y+width, r.Max.X, r.Max.Y-width), col)
}

// DrawImage scales src into r and composites it over the canvas.
func (c *Canvas) DrawImage(r image.Rectangle, src image.Image) {
	if src == nil || r.Empty() {
		return
	}
	sb := src.Bounds()
	if sb.Dx() == r.Dx() && sb.Dy() == r.Dy() {
		draw.Draw(c.img, r, src, sb.Min, draw.Over)
		return
	}
	draw.CatmullRom.Scale(c.img, r, src, sb, draw.Over, nil)
}

// WithAlpha scales the alpha of col by opacity.
func WithAlpha(col color.NRGBA, opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	col.A = uint8(float64(col.A)*opacity + 0.5)
	return col
}
