// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/clock/widget.go
// Summary: Standalone clock overlay.
// Usage: `texelayer clock`; Escape or a click closes it.

package clock

import (
	"image"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelayer/config"
	"github.com/framegrace/texelayer/input"
	"github.com/framegrace/texelayer/internal/theming"
	"github.com/framegrace/texelayer/loop"
	"github.com/framegrace/texelayer/registry"
	"github.com/framegrace/texelayer/render"
)

const (
	section = "clock"
	tickID  = loop.TimerID("tick")
)

// Colors are the built-in palette.
var Colors = map[string]color.NRGBA{
	"background": {R: 0x1e, G: 0x1e, B: 0x2e, A: 0xe6},
	"border":     render.RGB(0xcdd6f4),
	"clock":      render.RGB(0x89b4fa),
	"text":       render.RGB(0xcdd6f4),
}

func init() {
	registry.Register(registry.Manifest{
		Name:        "clock",
		DisplayName: "Clock",
		Description: "Time and date overlay",
	}, func(inv registry.Invocation) (loop.Widget, error) {
		return New(inv.Config), nil
	})
}

// Widget shows the time and the date, centered.
type Widget struct {
	cfg     config.Config
	palette *render.Palette
	fonts   *render.FontDB
	family  string
	seconds bool

	timeSize, dateSize float64
	border             int
	scale              int
	now                time.Time
}

func New(cfg config.Config) *Widget {
	db, families := theming.Fonts(config.System().GetString("runtime", "locale", ""), cfg.GetString(section, "font", ""))
	return &Widget{
		cfg:      cfg,
		palette:  theming.ForApp(section, cfg, Colors),
		fonts:    db,
		family:   families[0],
		seconds:  cfg.GetBool(section, "seconds", true),
		timeSize: cfg.GetFloat(section, "font_size", 30),
		dateSize: cfg.GetFloat(section, "date_size", 18),
		border:   cfg.GetInt(section, "border", 3),
		scale:    1,
	}
}

func (w *Widget) ThemeSection() string { return section }

func (w *Widget) PaletteDefaults() map[string]color.NRGBA { return Colors }

func (w *Widget) Handle(ctx *loop.Context, ev loop.Event) {
	switch ev := ev.(type) {
	case loop.Configure:
		w.scale = ev.Scale
		w.tick(ctx)
	case loop.Timer:
		if ev.ID == tickID {
			w.tick(ctx)
		}
	case loop.Key:
		if ev.Key == tcell.KeyEscape {
			ctx.Exit(0)
		}
	case loop.Pointer:
		for _, p := range ev.Events {
			if p.Kind == input.PointerPress {
				ctx.Exit(0)
			}
		}
	case loop.Reload:
		w.palette = ev.Palette
	}
}

func (w *Widget) tick(ctx *loop.Context) {
	w.now = ctx.Now()
	ctx.Redraw()
	if w.seconds {
		ctx.After(tickID, UntilNextSecond(w.now))
	} else {
		ctx.After(tickID, UntilNextMinute(w.now))
	}
}

func (w *Widget) Draw(c *render.Canvas) {
	b := c.Bounds()
	c.Clear(w.palette.Get("background"))
	if w.border > 0 {
		c.StrokeRect(b, w.border*w.scale, w.palette.Get("border"))
	}
	s := float64(w.scale)
	DrawBlock(c, b,
		w.fonts.Face(w.family, w.timeSize*s), Time(w.now, w.seconds), w.palette.Get("clock"),
		w.fonts.Face(w.family, w.dateSize*s), Date(w.now), w.palette.Get("text"),
		2*w.scale)
}

// DrawBlock draws a time line over a date line, the pair centered in r.
func DrawBlock(c *render.Canvas, r image.Rectangle, timeFace *render.Face, timeText string, timeCol color.NRGBA, dateFace *render.Face, dateText string, dateCol color.NRGBA, gap int) {
	blockH := timeFace.Height + gap + dateFace.Height
	y := r.Min.Y + (r.Dy()-blockH)/2
	c.DrawTextCentered(timeFace, timeText, image.Rect(r.Min.X, y, r.Max.X, y+timeFace.Height), timeCol)
	y += timeFace.Height + gap
	c.DrawTextCentered(dateFace, dateText, image.Rect(r.Min.X, y, r.Max.X, y+dateFace.Height), dateCol)
}
