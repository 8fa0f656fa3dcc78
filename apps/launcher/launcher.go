// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/launcher/launcher.go
// Summary: Application launcher and dmenu-style picker.
// Usage: `texelayer launcher` lists desktop applications and runs the
//   chosen one; `texelayer launcher --dmenu` picks a line from stdin and
//   prints it.
// Notes: Geometry constants are logical pixels and are multiplied by the
//   output scale when drawing.

package launcher

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelayer/config"
	"github.com/framegrace/texelayer/input"
	"github.com/framegrace/texelayer/internal/history"
	"github.com/framegrace/texelayer/internal/runner"
	"github.com/framegrace/texelayer/loop"
	"github.com/framegrace/texelayer/picker"
	"github.com/framegrace/texelayer/render"
)

const section = "launcher"

const (
	barH        = 50
	pad         = 8
	rowPad      = 8
	borderW     = 2
	commentGap  = 12
	minCommentW = 20
)

// Colors are the built-in palette.
var Colors = map[string]color.NRGBA{
	"background":       render.RGB(0x1a1a2e),
	"border":           render.RGB(0x4a4a6e),
	"bar_bg":           render.RGB(0x2a2a4e),
	"bar_border":       render.RGB(0x4a4a6e),
	"text":             render.RGB(0xe0e0e0),
	"text_comment":     render.RGB(0x808090),
	"text_placeholder": render.RGB(0x606070),
	"selection":        {R: 0x40, G: 0x40, B: 0x90, A: 0xcc},
}

type Mode int

const (
	// Drun lists desktop applications and runs the selection.
	Drun Mode = iota
	// Dmenu lists stdin lines and prints the selection.
	Dmenu
)

func (m Mode) String() string {
	if m == Dmenu {
		return "dmenu"
	}
	return "drun"
}

type Settings struct {
	FontSize        float64
	CommentFontSize float64
	IconSize        int
	Terminal        string
	Columns         int
	ShowComments    bool
	SearchComments  bool
	Placeholder     string
	HalfLife        time.Duration
}

func SettingsFromConfig(cfg config.Config) Settings {
	hours := cfg.GetFloat(section, "history_half_life_hours", picker.DefaultHalfLife.Hours())
	return Settings{
		FontSize:        cfg.GetFloat(section, "font_size", 18),
		CommentFontSize: cfg.GetFloat(section, "comment_font_size", 14),
		IconSize:        max(cfg.GetInt(section, "icon_size", 32), 1),
		Terminal:        cfg.GetString(section, "terminal", "ghostty -e"),
		Columns:         max(cfg.GetInt(section, "columns", 1), 1),
		ShowComments:    cfg.GetBool(section, "show_comments", true),
		SearchComments:  cfg.GetBool(section, "search_comments", false),
		Placeholder:     cfg.GetString(section, "placeholder", "Search..."),
		HalfLife:        time.Duration(hours * float64(time.Hour)),
	}
}

// Deps are the launcher's collaborators. History may be nil.
type Deps struct {
	Runner  runner.Runner
	History *history.DB
	Fonts   *render.FontDB
	Family  string
	Palette *render.Palette
	Stdout  io.Writer
}

// app is the payload of a drun item.
type app struct {
	entry Entry
	icon  *image.RGBA
}

// Widget is the launcher. Selection and scrolling live in the picker
// model; the widget owns the query text, hover and drawing.
type Widget struct {
	mode    Mode
	set     Settings
	deps    Deps
	palette *render.Palette
	model   *picker.Model

	query []rune
	hover int

	width, height int
	scale         int
}

// NewDrun builds a launcher over desktop entries. icons is parallel to
// entries and may be shorter.
func NewDrun(entries []Entry, icons []*image.RGBA, hist picker.History, set Settings, deps Deps) *Widget {
	items := make([]picker.Item, len(entries))
	for i, e := range entries {
		a := &app{entry: e}
		if i < len(icons) {
			a.icon = icons[i]
		}
		items[i] = picker.Item{Label: e.Name, Secondary: e.Comment, Key: e.ID, Payload: a}
	}
	return newWidget(Drun, items, hist, set, deps)
}

// NewDmenu builds a picker over plain lines.
func NewDmenu(lines []string, set Settings, deps Deps) *Widget {
	items := make([]picker.Item, len(lines))
	for i, l := range lines {
		items[i] = picker.Item{Label: displayLabel(l), Payload: l}
	}
	return newWidget(Dmenu, items, nil, set, deps)
}

func newWidget(mode Mode, items []picker.Item, hist picker.History, set Settings, deps Deps) *Widget {
	if deps.Palette == nil {
		deps.Palette = render.NewPalette(Colors)
	}
	if deps.Fonts == nil {
		deps.Fonts = render.NewFontDB("")
	}
	if deps.Runner == nil {
		deps.Runner = runner.Exec{}
	}
	if deps.Stdout == nil {
		deps.Stdout = io.Discard
	}
	w := &Widget{
		mode:    mode,
		set:     set,
		deps:    deps,
		palette: deps.Palette,
		hover:   -1,
		scale:   1,
	}
	w.model = picker.New(items, picker.Options{
		Columns:        set.Columns,
		MatchSecondary: set.SearchComments,
		HalfLife:       set.HalfLife,
		History:        hist,
	})
	return w
}

func (w *Widget) ThemeSection() string { return section }

func (w *Widget) PaletteDefaults() map[string]color.NRGBA { return Colors }

// Model exposes the picker state.
func (w *Widget) Model() *picker.Model { return w.model }

// Query is the current search text.
func (w *Widget) Query() string { return string(w.query) }

// Hover is the hovered filtered index or -1.
func (w *Widget) Hover() int { return w.hover }

func (w *Widget) rowHeight() int { return w.set.IconSize + rowPad }

// visibleRows is how many rows fit below the search bar.
func (w *Widget) visibleRows() int {
	return max((w.height-barH)/w.rowHeight(), 0)
}

func (w *Widget) geometry() picker.Geometry {
	s := w.scale
	return picker.Geometry{
		Origin: image.Pt(0, barH*s),
		CellW:  w.width * s / w.set.Columns,
		CellH:  w.rowHeight() * s,
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
		w.cancel(ctx)
		return false
	case tcell.KeyEnter:
		w.activate(ctx)
		return false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(w.query) == 0 {
			return false
		}
		w.query = w.query[:len(w.query)-1]
		w.requery()
		return true
	case tcell.KeyCtrlU:
		if len(w.query) == 0 {
			return false
		}
		w.query = w.query[:0]
		w.requery()
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
		w.requery()
		return true
	}
	return false
}

func (w *Widget) requery() {
	w.model.SetQuery(string(w.query))
	w.hover = -1
}

func (w *Widget) pointer(ctx *loop.Context, p input.PointerEvent) bool {
	switch p.Kind {
	case input.PointerEnter, input.PointerMove:
		return w.setHover(p.Pos)
	case input.PointerLeave:
		changed := w.hover != -1
		w.hover = -1
		return changed
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
		rows := 0
		switch {
		case p.DY > 0:
			rows = 1
		case p.DY < 0:
			rows = -1
		}
		if rows == 0 || !w.model.Scroll(rows) {
			return false
		}
		w.setHover(p.Pos)
		return true
	}
	return false
}

func (w *Widget) setHover(pos image.Point) bool {
	i, ok := w.model.ItemAt(pos, w.geometry())
	if !ok {
		i = -1
	}
	if i == w.hover {
		return false
	}
	w.hover = i
	return true
}

func (w *Widget) cancel(ctx *loop.Context) {
	if w.mode == Dmenu {
		ctx.Exit(1)
		return
	}
	ctx.Exit(0)
}

// activate prints or runs the selected item and exits. An empty list
// ignores the request.
func (w *Widget) activate(ctx *loop.Context) {
	item, ok := w.model.SelectCurrent()
	if !ok {
		return
	}
	if w.mode == Dmenu {
		line, _ := item.Payload.(string)
		if _, err := fmt.Fprintln(w.deps.Stdout, line); err != nil {
			log.Printf("Launcher: write selection: %v", err)
			ctx.Exit(1)
			return
		}
		ctx.Exit(0)
		return
	}

	a := item.Payload.(*app)
	now := ctx.Now()
	w.model.Touch(item.Key, now)
	if w.deps.History != nil {
		if _, err := w.deps.History.Record(item.Key, now); err != nil {
			log.Printf("Launcher: %v", err)
		}
	}
	cmd := a.entry.Exec
	if a.entry.Terminal && w.set.Terminal != "" {
		cmd = config.ExpandPath(w.set.Terminal) + " " + cmd
	}
	log.Printf("Launcher: Running %s (%s)", a.entry.ID, cmd)
	if err := runner.Shell(w.deps.Runner, cmd); err != nil {
		log.Printf("Launcher: %s: %v", a.entry.ID, err)
		ctx.Exit(1)
		return
	}
	ctx.Exit(0)
}

// Flush closes the history database.
func (w *Widget) Flush() {
	if w.deps.History == nil {
		return
	}
	if err := w.deps.History.Close(); err != nil {
		log.Printf("Launcher: close history: %v", err)
	}
	w.deps.History = nil
}
