// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: dashboard/board.go
// Summary: Current layout plus hover state.

package dashboard

import "image"

// Board tracks the layout for the current size and the hovered tile.
type Board struct {
	consts    Constants
	layout    Layout
	hover     TileID
	pointer   *image.Point
	hoverable map[TileID]bool
}

// NewBoard creates a board. Only the listed tiles can become the hover
// tile; with none listed every tile can.
func NewBoard(c Constants, hoverable ...TileID) *Board {
	b := &Board{consts: c}
	if len(hoverable) > 0 {
		b.hoverable = make(map[TileID]bool, len(hoverable))
		for _, id := range hoverable {
			b.hoverable[id] = true
		}
	}
	b.layout = PanelLayout(c.Width, c.Height, c)
	return b
}

func (b *Board) Layout() Layout { return b.layout }

func (b *Board) Constants() Constants { return b.consts }

// SetConstants swaps the metrics, e.g. for a new buffer scale, and lays out
// again at the current size.
func (b *Board) SetConstants(c Constants) bool {
	b.consts = c
	return b.Resize(b.layout.Width, b.layout.Height)
}

// Resize recomputes the layout from scratch. The hover tile is re-derived
// from the last pointer position; the result reports whether it changed.
func (b *Board) Resize(w, h int) bool {
	b.layout = PanelLayout(w, h, b.consts)
	return b.Hover(b.pointer)
}

// Hover updates the hover tile from a pointer position, nil meaning the
// pointer left. It reports whether the hover tile changed.
func (b *Board) Hover(p *image.Point) bool {
	next := TileNone
	if p != nil {
		pt := *p
		b.pointer = &pt
		if id, ok := b.layout.TileAt(pt); ok && b.canHover(id) {
			next = id
		}
	} else {
		b.pointer = nil
	}
	if next == b.hover {
		return false
	}
	b.hover = next
	return true
}

func (b *Board) canHover(id TileID) bool {
	return b.hoverable == nil || b.hoverable[id]
}

// Hovered is the hover tile, TileNone when there is none.
func (b *Board) Hovered() TileID { return b.hover }

// TileAt hit-tests against the current layout.
func (b *Board) TileAt(p image.Point) (TileID, bool) { return b.layout.TileAt(p) }

func (b *Board) Rect(id TileID) image.Rectangle { return b.layout.Rect(id) }
