// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/wallrun/wallrun.go
// Summary: Wallpaper picker showing a grid of thumbnails.
// Usage: `texelayer wallrun --dir ~/Pictures/walls` prints the chosen
//   image path, for example to feed a wallpaper setter.
// Notes: Geometry constants are logical pixels and are multiplied by the
//   output scale when drawing.

package wallrun

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelayer/config"
	"github.com/framegrace/texelayer/input"
	"github.com/framegrace/texelayer/loop"
	"github.com/framegrace/texelayer/picker"
	"github.com/framegrace/texelayer/render"
)

const section = "wallrun"

const (
	pad     = 16
	cellPad = 12
	barH    = 50
	gridGap = 12
	labelH  = 28
	borderW = 2
)

// thumbAspect is the thumbnail box height over its width.
const thumbAspect = 0.67

// Colors are the built-in palette.
var Colors = map[string]color.NRGBA{
	"background":       render.RGB(0x1a1a2e),
	"bar_bg":           render.RGB(0x2a2a4e),
	"bar_border":       render.RGB(0x4a4a6e),
	"text":             render.RGB(0xe0e0e0),
	"text_placeholder": render.RGB(0x808080),
	"label":            render.RGB(0xc0c0c0),
	"selection":        render.RGB(0x404090),
}

type Settings struct {
	Dir           string
	Extensions    []string
	Columns       int
	FontSize      float64
	LabelFontSize float64
	ShowLabels    bool
	Placeholder   string
}

func SettingsFromConfig(cfg config.Config) Settings {
	exts := ParseExtensions(cfg.GetString(section, "extensions", ""))
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return Settings{
		Dir:           config.ExpandPath(cfg.GetString(section, "dir", "")),
		Extensions:    exts,
		Columns:       max(cfg.GetInt(section, "columns", 3), 1),
		FontSize:      cfg.GetFloat(section, "font_size", 20),
		LabelFontSize: cfg.GetFloat(section, "label_font_size", 14),
		ShowLabels:    cfg.GetBool(section, "show_labels", true),
		Placeholder:   cfg.GetString(section, "placeholder", "Search..."),
	}
}

// Deps are the picker's collaborators.
type Deps struct {
	Fonts   *render.FontDB
	Family  string
	Palette *render.Palette
	Stdout  io.Writer
}

// wall is the payload of an item.
type wall struct {
	path  string
	thumb *image.RGBA
}

// Widget is the wallpaper picker. Selection and scrolling live in the
// picker model; the pointer selects what it hovers.
type Widget struct {
	set     Settings
	deps    Deps
	palette *render.Palette
	model   *picker.Model

	query []rune

	width, height int
	scale         int
}

// New builds a picker over walls. thumbs is parallel to walls and may be
// shorter.
func New(walls []Wallpaper, thumbs []*image.RGBA, set Settings, deps Deps) *Widget {
	if deps.Palette == nil {
		deps.Palette = render.NewPalette(Colors)
	}
	if deps.Fonts == nil {
		deps.Fonts = render.NewFontDB("")
	}
	if deps.Stdout == nil {
		deps.Stdout = io.Discard
	}
	items := make([]picker.Item, len(walls))
	for i, wp := range walls {
		p := &wall{path: wp.Path}
		if i < len(thumbs) {
			p.thumb = thumbs[i]
		}
		items[i] = picker.Item{Label: wp.Label, Key: wp.Path, Payload: p}
	}
	set.Columns = max(set.Columns, 1)
	return &Widget{
		set:     set,
		deps:    deps,
		palette: deps.Palette,
		model:   picker.New(items, picker.Options{Columns: set.Columns}),
		scale:   1,
	}
}

func (w *Widget) ThemeSection() string { return section }

func (w *Widget) PaletteDefaults() map[string]color.NRGBA { return Colors }

// Model exposes the picker state.
func (w *Widget) Model() *picker.Model { return w.model }

// Query is the current search text.
func (w *Widget) Query() string { return string(w.query) }

// ThumbBox is the logical thumbnail size for a surface width.
func ThumbBox(width, columns int) image.Point {
	cw := cellWidth(width, columns) - cellPad
	return image.Pt(max(cw, 1), max(int(float64(cw)*thumbAspect), 1))
}

func cellWidth(width, columns int) int {
	return max((width-2*pad)/max(columns, 1), cellPad+1)
}

func (w *Widget) thumbBox() image.Point { return ThumbBox(w.width, w.set.Columns) }

func (w *Widget) cellHeight() int {
	h := w.thumbBox().Y + cellPad
	if w.set.ShowLabels {
		h += labelH
	}
	return h
}

func (w *Widget) visibleRows() int {
	return max((w.height-barH-gridGap)/w.cellHeight(), 0)
}

func (w *Widget) geometry() picker.Geometry {
	s := w.scale
	return picker.Geometry{
		Origin: image.Pt(pad*s, (barH+gridGap)*s),
		CellW:  cellWidth(w.width, w.set.Columns) * s,
		CellH:  w.cellHeight() * s,
	}
}

func (w *Widget) Handle(ctx *loop.Context, ev loop.Event) {
	switch ev := ev.(type) {
	case loop.Configure:
		w.width, w.height, w.scale = ev.Width, ev.Height, max(ev.Scale, 1)
		w.model.SetGrid(w.set.Columns, w.visibleRows())
		ctx.Redraw()
	case loop.Key:
		if w.key(ctx, ev.KeyEvent) {
			ctx.Redraw()
		}
	case loop.Pointer:
		for _, p := range ev.Events {
			if w.pointer(ctx, p) {
				ctx.Redraw()
			}
		}
	case loop.Reload:
		w.palette = ev.Palette
		ctx.Redraw()
	}
}

func (w *Widget) key(ctx *loop.Context, k input.KeyEvent) bool {
	switch k.Key {
	case tcell.KeyEscape:
		ctx.Exit(1)
		return false
	case tcell.KeyEnter:
		w.activate(ctx)
		return false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(w.query) == 0 {
			return false
		}
		w.query = w.query[:len(w.query)-1]
		w.model.SetQuery(string(w.query))
		return true
	case tcell.KeyCtrlU:
		if len(w.query) == 0 {
			return false
		}
		w.query = w.query[:0]
		w.model.SetQuery("")
		return true
	case tcell.KeyUp:
		return w.model.Move(picker.Up)
	case tcell.KeyDown:
		return w.model.Move(picker.Down)
	case tcell.KeyLeft:
		return w.model.Move(picker.Left)
	case tcell.KeyRight:
		return w.model.Move(picker.Right)
	case tcell.KeyPgUp:
		return w.model.Scroll(-max(w.model.VisibleRows(), 1))
	case tcell.KeyPgDn:
		return w.model.Scroll(max(w.model.VisibleRows(), 1))
	case tcell.KeyRune:
		if k.Mods&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) != 0 || k.Rune < ' ' {
			return false
		}
		w.query = append(w.query, k.Rune)
		w.model.SetQuery(string(w.query))
		return true
	}
	return false
}

func (w *Widget) pointer(ctx *loop.Context, p input.PointerEvent) bool {
	switch p.Kind {
	case input.PointerEnter, input.PointerMove:
		i, ok := w.model.ItemAt(p.Pos, w.geometry())
		return ok && w.model.Select(i)
	case input.PointerPress:
		if p.Button != tcell.Button1 {
			return false
		}
		i, ok := w.model.ItemAt(p.Pos, w.geometry())
		if !ok {
			return false
		}
		w.model.Select(i)
		w.activate(ctx)
		return true
	case input.Scroll:
		switch {
		case p.DY > 0:
			return w.model.Scroll(1)
		case p.DY < 0:
			return w.model.Scroll(-1)
		}
	}
	return false
}

// activate prints the selected path and exits. An empty list ignores the
// request.
func (w *Widget) activate(ctx *loop.Context) {
	item, ok := w.model.SelectCurrent()
	if !ok {
		return
	}
	p := item.Payload.(*wall)
	if _, err := fmt.Fprintln(w.deps.Stdout, p.path); err != nil {
		log.Printf("Wallrun: write selection: %v", err)
		ctx.Exit(1)
		return
	}
	ctx.Exit(0)
}
