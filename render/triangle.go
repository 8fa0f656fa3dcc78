// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/triangle.go
// Summary: Scanline triangle fill with pixel-center sampling.

package render

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// PointF is a sub-pixel position.
type PointF struct {
	X, Y float64
}

// FillTriangle fills the triangle a, b, c. A pixel is covered when its
// center (x+0.5, y+0.5) lies inside. A center exactly on an edge belongs
// to one side only: top edges and right edges are inclusive, bottom and
// left edges exclusive. Triangles that share an edge never paint the same
// pixel twice.
func (c *Canvas) FillTriangle(a, b, p PointF, col color.NRGBA) {
	v := []PointF{a, b, p}
	sort.Slice(v, func(i, j int) bool { return v[i].Y < v[j].Y })
	top, mid, bot := v[0], v[1], v[2]
	if bot.Y == top.Y {
		return
	}

	yStart := int(math.Ceil(top.Y - 0.5))
	yEnd := int(math.Ceil(bot.Y-0.5)) - 1
	bounds := c.img.Bounds()
	yStart = max(yStart, bounds.Min.Y)
	yEnd = min(yEnd, bounds.Max.Y-1)

	for y := yStart; y <= yEnd; y++ {
		sy := float64(y) + 0.5
		// Long edge top->bot spans every row; the short side switches at mid.
		xa := edgeX(top, bot, sy)
		var xb float64
		if sy < mid.Y {
			xb = edgeX(top, mid, sy)
		} else {
			xb = edgeX(mid, bot, sy)
		}
		xl, xr := math.Min(xa, xb), math.Max(xa, xb)
		lx := int(math.Floor(xl + 0.5))
		rx := int(math.Floor(xr - 0.5))
		if rx < lx {
			continue
		}
		c.FillRect(image.Rect(lx, y, rx+1, y+1), col)
	}
}

func edgeX(p0, p1 PointF, y float64) float64 {
	if p1.Y == p0.Y {
		return p0.X
	}
	t := (y - p0.Y) / (p1.Y - p0.Y)
	return p0.X + t*(p1.X-p0.X)
}
