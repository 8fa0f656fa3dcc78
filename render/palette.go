// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/palette.go
// Summary: Resolved named colors handed in by the widget.

package render

import (
	"image/color"
	"sort"
)

// Missing is drawn for names nobody defined, loud enough to notice.
var Missing = color.NRGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}

// Palette maps color names to straight-alpha RGBA. The pipeline never
// parses color files; see internal/theming.
type Palette struct {
	colors   map[string]color.NRGBA
	defaults map[string]color.NRGBA
}

// NewPalette starts from the widget's built-in defaults.
func NewPalette(defaults map[string]color.NRGBA) *Palette {
	p := &Palette{
		colors:   make(map[string]color.NRGBA, len(defaults)),
		defaults: defaults,
	}
	for k, v := range defaults {
		p.colors[k] = v
	}
	return p
}

// Get returns the named color, the built-in default, or Missing.
func (p *Palette) Get(name string) color.NRGBA {
	if c, ok := p.colors[name]; ok {
		return c
	}
	if c, ok := p.defaults[name]; ok {
		return c
	}
	return Missing
}

func (p *Palette) Set(name string, c color.NRGBA) {
	p.colors[name] = c
}

// Has reports whether name is known, defined or defaulted.
func (p *Palette) Has(name string) bool {
	_, ok := p.colors[name]
	if !ok {
		_, ok = p.defaults[name]
	}
	return ok
}

// SetAlpha overrides the alpha of a named color, e.g. background_opacity.
func (p *Palette) SetAlpha(name string, a uint8) {
	c := p.Get(name)
	c.A = a
	p.colors[name] = c
}

func (p *Palette) Names() []string {
	names := make([]string, 0, len(p.colors))
	for k := range p.colors {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy sharing the defaults.
func (p *Palette) Clone() *Palette {
	c := &Palette{colors: make(map[string]color.NRGBA, len(p.colors)), defaults: p.defaults}
	for k, v := range p.colors {
		c.colors[k] = v
	}
	return c
}

// RGB is a shorthand for opaque colors in default tables.
func RGB(hex uint32) color.NRGBA {
	return color.NRGBA{R: uint8(hex >> 16), G: uint8(hex >> 8), B: uint8(hex), A: 0xff}
}
