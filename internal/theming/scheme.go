// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/theming/scheme.go
// Summary: Colors file parsing and resolution into a render.Palette.
// Usage: Load(path, style, defaults) at startup, Watch for live reloads.
// Notes: The file is one key=value per line, the format pywal templates
//   emit. Values are #rrggbb, #rrggbbaa or a named color; keys ending in
//   _opacity set the alpha of the color they prefix.

package theming

import (
	"bufio"
	"context"
	"image/color"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/framegrace/texelayer/config"
	"github.com/framegrace/texelayer/render"
)

const opacitySuffix = "_opacity"

// Scheme is the parsed file: colors and opacities by key.
type Scheme struct {
	Colors    map[string]color.NRGBA
	Opacities map[string]float64
}

// Parse reads a colors file. Lines without '=' and values that do not
// parse are skipped with a log line; they never fail the load.
func Parse(r io.Reader) (Scheme, error) {
	s := Scheme{Colors: map[string]color.NRGBA{}, Opacities: map[string]float64{}}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)

		if name, ok := strings.CutSuffix(key, opacitySuffix); ok {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				log.Printf("Theming: line %d: invalid opacity %q", lineNo, val)
				continue
			}
			s.Opacities[name] = min(max(f, 0), 1)
			continue
		}
		c, ok := ParseColor(val)
		if !ok {
			log.Printf("Theming: line %d: invalid color %q for %s", lineNo, val, key)
			continue
		}
		s.Colors[key] = c
	}
	return s, sc.Err()
}

// ParseColor accepts #rgb, #rrggbb, #rrggbbaa, a bare rrggbb, or a color
// name tcell knows.
func ParseColor(s string) (color.NRGBA, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.NRGBA{}, false
	}
	hex := s
	if !strings.HasPrefix(hex, "#") && isHex(hex) && (len(hex) == 6 || len(hex) == 8) {
		hex = "#" + hex
	}
	if strings.HasPrefix(hex, "#") {
		alpha := uint8(0xff)
		if len(hex) == 9 {
			a, err := strconv.ParseUint(hex[7:], 16, 8)
			if err != nil {
				return color.NRGBA{}, false
			}
			alpha = uint8(a)
			hex = hex[:7]
		}
		c, err := colorful.Hex(hex)
		if err != nil {
			return color.NRGBA{}, false
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: alpha}, true
	}
	tc := tcell.GetColor(strings.ToLower(s))
	if tc == tcell.ColorDefault || !tc.Valid() {
		return color.NRGBA{}, false
	}
	r, g, b := tc.RGB()
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}, true
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// Resolve layers defaults, then the named style, then the scheme.
// Opacities apply last and may target a color only the defaults define.
func Resolve(s Scheme, style string, defaults map[string]color.NRGBA) *render.Palette {
	p := render.NewPalette(defaults)
	if style != "" {
		for name, c := range StyleColors(style, defaults) {
			p.Set(name, c)
		}
	}
	for name, c := range s.Colors {
		if d, ok := defaults[name]; ok && c.A == 0xff {
			// a plain #rrggbb keeps the default alpha
			c.A = d.A
		}
		p.Set(name, c)
	}
	for name, f := range s.Opacities {
		p.SetAlpha(name, uint8(f*255))
	}
	return p
}

// Load reads and resolves path. An empty path or a missing or unreadable
// file yields the defaults, after the style.
func Load(path, style string, defaults map[string]color.NRGBA) *render.Palette {
	if path == "" {
		return Resolve(Scheme{}, style, defaults)
	}
	path = config.ExpandPath(path)
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Theming: open %s: %v", path, err)
		}
		return Resolve(Scheme{}, style, defaults)
	}
	defer f.Close()
	s, err := Parse(f)
	if err != nil {
		log.Printf("Theming: read %s: %v", path, err)
	}
	return Resolve(s, style, defaults)
}

// Watch sends a freshly loaded palette every time path changes, until
// ctx is done. A pending palette is replaced by a newer one rather than
// queued.
func Watch(ctx context.Context, path, style string, defaults map[string]color.NRGBA) (<-chan *render.Palette, error) {
	path = config.ExpandPath(path)
	out := make(chan *render.Palette, 1)
	err := config.Watch(ctx, path, func() {
		p := Load(path, style, defaults)
		select {
		case <-out:
		default:
		}
		select {
		case out <- p:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
