// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/launcher/draw.go
// Summary: Paints the search bar and the visible item cells.

package launcher

import (
	"image"

	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texelayer/render"
)

// maxLabelCells bounds a dmenu line on screen; the full line is printed.
const maxLabelCells = 256

func displayLabel(line string) string {
	return runewidth.Truncate(line, maxLabelCells, "…")
}

func (w *Widget) Draw(c *render.Canvas) {
	s := w.scale
	b := c.Bounds()
	pal := w.palette

	c.Clear(pal.Get("background"))

	bar := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+barH*s)
	c.FillRect(bar, pal.Get("bar_bg"))
	c.FillRect(image.Rect(bar.Min.X, bar.Max.Y-borderW*s, bar.Max.X, bar.Max.Y), pal.Get("bar_border"))
	c.StrokeRect(b, borderW*s, pal.Get("border"))

	face := w.deps.Fonts.Face(w.deps.Family, w.set.FontSize*float64(s))
	if len(w.query) == 0 {
		c.DrawTextCentered(face, w.set.Placeholder, bar, pal.Get("text_placeholder"))
	} else {
		c.DrawTextCentered(face, string(w.query), bar, pal.Get("text"))
	}

	list := image.Rect(b.Min.X, bar.Max.Y, b.Max.X, b.Max.Y)
	comment := w.deps.Fonts.Face(w.deps.Family, w.set.CommentFontSize*float64(s))
	g := w.geometry()
	first := w.model.ScrollRow() * w.model.Columns()
	last := min(first+w.model.VisibleRows()*w.model.Columns(), w.model.Len())
	for i := first; i < last; i++ {
		r := w.model.CellRect(i, g)
		if !r.In(list) {
			continue
		}
		w.drawCell(c, i, r, face, comment)
	}
}

func (w *Widget) drawCell(c *render.Canvas, i int, r image.Rectangle, face, comment *render.Face) {
	s := w.scale
	pal := w.palette
	item := w.model.Item(i)

	switch {
	case i == w.model.Selected():
		c.FillRect(r, pal.Get("selection"))
	case i == w.hover:
		c.FillRectAlpha(r, pal.Get("selection"), 0.5)
	}

	iconPad := pad * s
	if a, ok := item.Payload.(*app); ok {
		size := w.set.IconSize * s
		if a.icon != nil {
			ip := image.Pt(r.Min.X+pad*s, r.Min.Y+(r.Dy()-size)/2)
			c.DrawImage(image.Rectangle{Min: ip, Max: ip.Add(image.Pt(size, size))}, a.icon)
		}
		iconPad = (pad + w.set.IconSize + pad) * s
	}

	textX := r.Min.X + iconPad
	nameMax := max(r.Dx()-iconPad, 0)
	showComment := w.set.ShowComments && item.Secondary != ""
	if showComment {
		nameMax /= 2
	}
	run := c.DrawText(face, item.Label, image.Pt(textX, r.Min.Y+(r.Dy()-face.Height)/2), nameMax, pal.Get("text"))
	if !showComment {
		return
	}
	cx := textX + min(run.Width, nameMax) + commentGap*s
	cmax := r.Max.X - cx - pad*s
	if cmax <= minCommentW*s {
		return
	}
	c.DrawText(comment, item.Secondary, image.Pt(cx, r.Min.Y+(r.Dy()-comment.Height)/2), cmax, pal.Get("text_comment"))
}
