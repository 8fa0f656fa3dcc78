// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/present.go
// Summary: RGBA to BGRA conversion into a compositor buffer.

package render

import "fmt"

// PresentTo copies the canvas into dst, which must be a tightly packed
// ARGB8888 buffer of the same size (B, G, R, A byte order). The red and
// blue channels are always swapped; skipping the swap renders red as blue.
func (c *Canvas) PresentTo(dst []byte) error {
	src := c.img.Pix
	if c.img.Stride != c.img.Bounds().Dx()*4 {
		return fmt.Errorf("render: canvas stride %d is not packed", c.img.Stride)
	}
	if len(dst) < len(src) {
		return fmt.Errorf("render: buffer holds %d bytes, canvas needs %d", len(dst), len(src))
	}
	Swizzle(dst[:len(src)], src)
	return nil
}

// Swizzle converts RGBA to BGRA (and back; the swap is symmetric).
func Swizzle(dst, src []byte) {
	n := min(len(dst), len(src)) &^ 3
	for i := 0; i < n; i += 4 {
		s := src[i : i+4 : i+4]
		d := dst[i : i+4 : i+4]
		d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3]
	}
}
