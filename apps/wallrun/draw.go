// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/wallrun/draw.go
// Summary: Paints the search bar and the thumbnail grid.

package wallrun

import (
	"image"

	"github.com/framegrace/texelayer/render"
)

func (w *Widget) Draw(c *render.Canvas) {
	s := w.scale
	b := c.Bounds()
	pal := w.palette

	c.Clear(pal.Get("background"))
	bar := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+barH*s)
	c.FillRect(bar, pal.Get("bar_bg"))
	c.StrokeRect(b, borderW*s, pal.Get("bar_border"))

	face := w.deps.Fonts.Face(w.deps.Family, w.set.FontSize*float64(s))
	if len(w.query) == 0 {
		c.DrawTextCentered(face, w.set.Placeholder, bar, pal.Get("text_placeholder"))
	} else {
		c.DrawTextCentered(face, string(w.query), bar, pal.Get("text"))
	}

	grid := image.Rect(b.Min.X, bar.Max.Y, b.Max.X, b.Max.Y)
	label := w.deps.Fonts.Face(w.deps.Family, w.set.LabelFontSize*float64(s))
	g := w.geometry()
	first := w.model.ScrollRow() * w.model.Columns()
	last := min(first+w.model.VisibleRows()*w.model.Columns(), w.model.Len())
	for i := first; i < last; i++ {
		r := w.model.CellRect(i, g)
		if !r.In(grid) {
			continue
		}
		w.drawCell(c, i, r, label)
	}
}

// thumbRect is where a thumbnail of size src is drawn in cell r, centered
// in the thumbnail box.
func (w *Widget) thumbRect(r image.Rectangle, src image.Point) (box, thumb image.Rectangle) {
	s := w.scale
	tb := w.thumbBox()
	at := r.Min.Add(image.Pt(cellPad/2*s, 0))
	box = image.Rectangle{Min: at, Max: at.Add(tb.Mul(s))}
	size := Fit(src, tb).Mul(s)
	tl := at.Add(box.Size().Sub(size).Div(2))
	return box, image.Rectangle{Min: tl, Max: tl.Add(size)}
}

func (w *Widget) drawCell(c *render.Canvas, i int, r image.Rectangle, label *render.Face) {
	s := w.scale
	pal := w.palette
	item := w.model.Item(i)
	p := item.Payload.(*wall)

	src := w.thumbBox()
	if p.thumb != nil {
		src = p.thumb.Bounds().Size()
	}
	box, thumb := w.thumbRect(r, src)
	if p.thumb != nil {
		c.DrawImage(thumb, p.thumb)
	} else {
		c.FillRect(thumb, pal.Get("bar_bg"))
	}
	if i == w.model.Selected() {
		c.StrokeRect(thumb.Inset(-borderW*s), borderW*s, pal.Get("selection"))
	}
	if !w.set.ShowLabels {
		return
	}
	lr := image.Rect(box.Min.X, box.Max.Y, box.Max.X, box.Max.Y+labelH*s)
	c.DrawTextCentered(label, item.Label, lr, pal.Get("label"))
}
