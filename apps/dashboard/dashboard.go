// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/dashboard/dashboard.go
// Summary: Tile panel with clock, timers, volume, audio switch and toggle.
// Usage: `texelayer dashboard` (alias `panel`).
// Notes: Audio reads and weather fetches share the loop's single
//   background task slot; weather waits its turn when audio is busy.

package dashboard

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/time/rate"

	"github.com/framegrace/texelayer/apps/clock"
	"github.com/framegrace/texelayer/config"
	dash "github.com/framegrace/texelayer/dashboard"
	"github.com/framegrace/texelayer/input"
	"github.com/framegrace/texelayer/internal/runner"
	"github.com/framegrace/texelayer/internal/storage"
	"github.com/framegrace/texelayer/internal/theming"
	"github.com/framegrace/texelayer/loop"
	"github.com/framegrace/texelayer/registry"
	"github.com/framegrace/texelayer/render"
)

const section = "dashboard"

const (
	tickClock   = loop.TimerID("clock")
	tickTimers  = loop.TimerID("timers")
	tickAudio   = loop.TimerID("audio")
	tickWeather = loop.TimerID("weather")
	tickVolume  = loop.TimerID("volume")

	taskAudio   = "audio"
	taskWeather = "weather"
)

const (
	timerTick     = 100 * time.Millisecond
	audioInterval = time.Second
	// audioCooldown keeps a refresh from undoing a volume the user just
	// set before wpctl caught up.
	audioCooldown  = time.Second
	audioTimeout   = 2 * time.Second
	volumeInterval = 50 * time.Millisecond

	volumeStep      = 0.05
	timerStep       = 60
	inactiveOpacity = 0.8
	volumeBgOpacity = 0.3
	mutedOpacity    = 0x4d / 255.0
)

// Colors are the built-in palette; the dot keys are the accents drawn top
// to bottom in the dots tile.
var Colors = map[string]color.NRGBA{
	"background": {R: 0x1e, G: 0x1e, B: 0x2e, A: 0xe6},
	"border":     render.RGB(0xcdd6f4),
	"divider":    render.RGB(0xcdd6f4),
	"dot1":       render.RGB(0xf38ba8),
	"dot2":       render.RGB(0xa6e3a1),
	"sun":        render.RGB(0xf9e2af),
	"clock":      render.RGB(0x89b4fa),
	"ui":         render.RGB(0xcba6f7),
	"dot6":       render.RGB(0x94e2d5),
}

var dotKeys = [6]string{"dot1", "dot2", "sun", "clock", "ui", "dot6"}

func init() {
	registry.Register(registry.Manifest{
		Name:        "dashboard",
		DisplayName: "Dashboard",
		Description: "Clock, timers, volume and toggles",
		Aliases:     []string{"panel"},
	}, func(inv registry.Invocation) (loop.Widget, error) {
		return Open(inv.Config)
	})
}

// Settings is the [dashboard] section.
type Settings struct {
	FontSize      float64
	TimerDefaults [2]int64
	HoverOpacity  float64
	Headsets      []string
	ToggleCommand string
	SwitchCommand string
	SwitchTargets [2]string
	NotifyCommand string
	Wpctl         string
	Weather       bool
	Latitude      float64
	Longitude     float64
	WeatherHeight int
	Layout        string
	ShowSeconds   bool
	LegacyTimers  string
}

// SettingsFromConfig reads the widget section.
func SettingsFromConfig(cfg config.Config) Settings {
	bt1 := cfg.GetString(section, "bt_device_1", "")
	bt2 := cfg.GetString(section, "bt_device_2", "")
	return Settings{
		FontSize: cfg.GetFloat(section, "font_size", 30),
		TimerDefaults: [2]int64{
			int64(cfg.GetInt(section, "timer1_duration", 3600)),
			int64(cfg.GetInt(section, "timer2_duration", 900)),
		},
		HoverOpacity:  cfg.GetFloat(section, "hover_opacity", 0.7),
		Headsets:      []string{bt1},
		ToggleCommand: cfg.GetString(section, "toggle_command", ""),
		SwitchCommand: cfg.GetString(section, "audio_switch_command", ""),
		SwitchTargets: [2]string{bt1, bt2},
		NotifyCommand: cfg.GetString(section, "notify_command", ""),
		Wpctl:         cfg.GetString(section, "volume_command", "wpctl"),
		Weather:       cfg.GetBool(section, "weather", false),
		Latitude:      cfg.GetFloat(section, "latitude", 0),
		Longitude:     cfg.GetFloat(section, "longitude", 0),
		WeatherHeight: cfg.GetInt(section, "weather_height", 30),
		Layout:        cfg.GetString(section, "layout", "panel"),
		ShowSeconds:   cfg.GetBool(section, "seconds", true),
		LegacyTimers:  LegacyTimersPath(),
	}
}

// Deps are the widget's outside world.
type Deps struct {
	Runner runner.Runner
	// Store persists timers; nil keeps them in memory.
	Store      *storage.Store
	Fonts      *render.FontDB
	Family     string
	IconFamily string
	Palette    *render.Palette
}

// Widget is the dashboard.
type Widget struct {
	set     Settings
	run     runner.Runner
	audioRd audioReader
	weather weatherFetcher
	store   *storage.Store
	state   timerState

	fonts      *render.FontDB
	family     string
	iconFamily string
	palette    *render.Palette

	board  *dash.Board
	consts dash.Constants
	scale  int
	now    time.Time
	booted bool

	timers      [2]clock.Timer
	audio       Audio
	dim         bool
	dragging    bool
	volumeSetAt time.Time
	volumePend  bool
	limiter     *rate.Limiter

	forecast     Weather
	weatherDue   bool
	audioDue     bool
	audioStarted time.Time
}

// Open builds the widget with real processes, the state directory and the
// configured fonts.
func Open(cfg config.Config) (*Widget, error) {
	stateDir, err := config.StateDir()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(stateDir, storage.DefaultDebounce)
	if err != nil {
		return nil, err
	}
	locale := config.System().GetString("runtime", "locale", "")
	db, families := theming.Fonts(locale,
		cfg.GetString(section, "font", ""),
		cfg.GetString(section, "icon_font", ""))
	return New(SettingsFromConfig(cfg), Deps{
		Runner:     runner.Exec{},
		Store:      store,
		Fonts:      db,
		Family:     families[0],
		IconFamily: families[1],
		Palette:    theming.ForApp(section, cfg, Colors),
	}), nil
}

func New(set Settings, deps Deps) *Widget {
	consts := dash.Preset(set.Layout)
	if set.Weather && consts.Arrangement == dash.TimersSide {
		consts.WeatherH = set.WeatherHeight
	}
	if deps.Fonts == nil {
		deps.Fonts = render.NewFontDB("")
	}
	if deps.Palette == nil {
		deps.Palette = render.NewPalette(Colors)
	}
	w := &Widget{
		set:        set,
		run:        deps.Runner,
		audioRd:    audioReader{run: deps.Runner, wpctl: set.Wpctl, headset: set.Headsets},
		store:      deps.Store,
		fonts:      deps.Fonts,
		family:     deps.Family,
		iconFamily: deps.IconFamily,
		palette:    deps.Palette,
		consts:     consts,
		board:      dash.NewBoard(consts, dash.Toggle, dash.Timer1, dash.Timer2, dash.Audio),
		scale:      1,
		limiter:    rate.NewLimiter(rate.Every(volumeInterval), 1),
	}
	w.weather = weatherFetcher{run: deps.Runner, lat: set.Latitude, lon: set.Longitude}
	if deps.Store != nil {
		w.state = timerState{scope: deps.Store.Scope(section)}
	}
	w.timers = w.state.load(set.TimerDefaults, set.LegacyTimers)
	return w
}

func (w *Widget) ThemeSection() string { return section }

func (w *Widget) PaletteDefaults() map[string]color.NRGBA { return Colors }

// Timers returns the current timer state.
func (w *Widget) Timers() [2]clock.Timer { return w.timers }

func (w *Widget) Audio() Audio { return w.audio }

func (w *Widget) Handle(ctx *loop.Context, ev loop.Event) {
	switch ev := ev.(type) {
	case loop.Configure:
		w.configure(ctx, ev)
	case loop.Timer:
		w.timer(ctx, ev.ID)
	case loop.TaskDone:
		w.taskDone(ctx, ev)
	case loop.Pointer:
		for _, p := range ev.Events {
			w.pointer(ctx, p)
		}
	case loop.Key:
		if ev.Key == tcell.KeyEscape {
			ctx.Exit(0)
		}
	case loop.Reload:
		w.palette = ev.Palette
	}
}

func (w *Widget) configure(ctx *loop.Context, ev loop.Configure) {
	if ev.Scale != w.scale {
		w.scale = ev.Scale
		w.board.SetConstants(w.consts.Scaled(w.scale))
	}
	w.board.Resize(ev.Width*w.scale, ev.Height*w.scale)
	ctx.Redraw()
	if w.booted {
		return
	}
	w.booted = true
	w.now = ctx.Now()
	w.armClock(ctx)
	w.armTimers(ctx)
	ctx.Every(tickAudio, audioInterval)
	w.audioDue = true
	if w.set.Weather {
		ctx.Every(tickWeather, WeatherRefresh)
		w.weatherDue = true
	}
	w.startTask(ctx)
}

func (w *Widget) armClock(ctx *loop.Context) {
	if w.set.ShowSeconds {
		ctx.After(tickClock, clock.UntilNextSecond(w.now))
	} else {
		ctx.After(tickClock, clock.UntilNextMinute(w.now))
	}
}

// armTimers keeps the fast tick alive only while a timer runs.
func (w *Widget) armTimers(ctx *loop.Context) {
	if w.timers[0].Running() || w.timers[1].Running() {
		ctx.Every(tickTimers, timerTick)
	} else {
		ctx.Cancel(tickTimers)
	}
}

func (w *Widget) timer(ctx *loop.Context, id loop.TimerID) {
	w.now = ctx.Now()
	switch id {
	case tickClock:
		w.armClock(ctx)
		ctx.Redraw()
	case tickTimers:
		for i := range w.timers {
			if w.timers[i].Expired(w.now) {
				w.notify(i)
				w.state.save(w.timers)
			}
		}
		ctx.Redraw()
	case tickAudio:
		if w.now.Sub(w.volumeSetAt) >= audioCooldown {
			w.audioDue = true
			w.startTask(ctx)
		}
	case tickWeather:
		w.weatherDue = true
		w.startTask(ctx)
	case tickVolume:
		if w.volumePend {
			w.volumePend = false
			w.spawnVolume()
		}
	}
}

// startTask hands the free task slot to weather first, then audio.
func (w *Widget) startTask(ctx *loop.Context) {
	if ctx.TaskRunning() {
		return
	}
	switch {
	case w.weatherDue && w.set.Weather:
		if ctx.Start(taskWeather, weatherTimeout, w.weather.Fetch) == nil {
			w.weatherDue = false
		}
	case w.audioDue && w.run != nil:
		if ctx.Start(taskAudio, audioTimeout, w.audioRd.Read) == nil {
			w.audioDue = false
			w.audioStarted = ctx.Now()
		}
	}
}

func (w *Widget) taskDone(ctx *loop.Context, ev loop.TaskDone) {
	switch ev.ID {
	case taskAudio:
		if ev.Err != nil {
			w.audio.Known = false
			break
		}
		st, ok := ev.Result.(Audio)
		if !ok {
			break
		}
		if w.volumeSetAt.After(w.audioStarted) {
			// the user moved the bar while wpctl was answering
			st.Volume = w.audio.Volume
		}
		w.audio = st
	case taskWeather:
		if ev.Err != nil {
			break
		}
		if wx, ok := ev.Result.(Weather); ok {
			wx.At = ctx.Now()
			w.forecast = wx
		}
	}
	ctx.Redraw()
	w.startTask(ctx)
}

func (w *Widget) pointer(ctx *loop.Context, p input.PointerEvent) {
	switch p.Kind {
	case input.PointerEnter, input.PointerMove:
		if w.dragging {
			w.setVolume(ctx, w.volumeFromY(p.Pos.Y))
			return
		}
		pos := p.Pos
		if w.board.Hover(&pos) {
			ctx.Redraw()
		}
	case input.PointerLeave:
		w.dragging = false
		if w.board.Hover(nil) {
			ctx.Redraw()
		}
	case input.PointerPress:
		switch p.Button {
		case tcell.Button1:
			w.click(ctx, p.Pos)
		case tcell.Button2:
			w.rightClick(ctx, p.Pos)
		}
	case input.PointerRelease:
		if p.Button == tcell.Button1 {
			w.dragging = false
		}
	case input.Scroll:
		if p.DY != 0 {
			w.scroll(ctx, p.Pos, p.DY)
		}
	}
}

func (w *Widget) click(ctx *loop.Context, pos image.Point) {
	id, ok := w.board.TileAt(pos)
	if !ok {
		return
	}
	now := ctx.Now()
	switch id {
	case dash.Volume:
		if !w.audio.Known {
			return
		}
		w.dragging = true
		w.setVolume(ctx, w.volumeFromY(pos.Y))
	case dash.Toggle:
		arg := "0"
		if w.dim {
			arg = "1"
		}
		w.shell(w.set.ToggleCommand, arg)
		w.dim = !w.dim
		ctx.Redraw()
	case dash.Timer1, dash.Timer2:
		i := timerIndex(id)
		w.timers[i].Toggle(now)
		w.timersChanged(ctx)
	case dash.Audio:
		target := w.set.SwitchTargets[0]
		if w.audio.Headphones {
			target = w.set.SwitchTargets[1]
		}
		w.shell(w.set.SwitchCommand, target)
		w.audio.Headphones = !w.audio.Headphones
		ctx.Redraw()
	}
}

func (w *Widget) rightClick(ctx *loop.Context, pos image.Point) {
	id, ok := w.board.TileAt(pos)
	if !ok || (id != dash.Timer1 && id != dash.Timer2) {
		return
	}
	i := timerIndex(id)
	w.timers[i].Reset(w.set.TimerDefaults[i])
	w.timersChanged(ctx)
}

// scroll treats positive dy (wheel down) as "less".
func (w *Widget) scroll(ctx *loop.Context, pos image.Point, dy float64) {
	id, ok := w.board.TileAt(pos)
	if !ok {
		return
	}
	sign := 1.0
	if dy > 0 {
		sign = -1
	}
	switch id {
	case dash.Volume:
		if w.audio.Known {
			w.setVolume(ctx, w.audio.Volume+sign*volumeStep)
		}
	case dash.Timer1, dash.Timer2:
		w.timers[timerIndex(id)].Adjust(int64(sign) * timerStep)
		w.timersChanged(ctx)
	}
}

func (w *Widget) timersChanged(ctx *loop.Context) {
	w.now = ctx.Now()
	w.state.save(w.timers)
	w.armTimers(ctx)
	ctx.Redraw()
}

func timerIndex(id dash.TileID) int {
	if id == dash.Timer2 {
		return 1
	}
	return 0
}

// volumeFromY maps a y inside the bar to 0..VolumeMax, top being max.
func (w *Widget) volumeFromY(y int) float64 {
	top, h := w.barSpan()
	if h <= 0 {
		return w.audio.Volume
	}
	frac := 1 - float64(y-top)/float64(h)
	return clampVolume(frac * VolumeMax)
}

func (w *Widget) barSpan() (top, h int) {
	vol := w.board.Rect(dash.Volume)
	pad := volBarPad * w.scale
	return vol.Min.Y + pad, vol.Dy() - 2*pad
}

// setVolume applies v locally at once and forwards it to wpctl at most
// every volumeInterval; the last value of a burst is sent by tickVolume.
func (w *Widget) setVolume(ctx *loop.Context, v float64) {
	now := ctx.Now()
	w.audio.Volume = clampVolume(v)
	w.volumeSetAt = now
	ctx.Redraw()
	if w.limiter.AllowN(now, 1) {
		w.volumePend = false
		w.spawnVolume()
		return
	}
	w.volumePend = true
	ctx.After(tickVolume, volumeInterval)
}

func (w *Widget) spawnVolume() {
	if w.run == nil {
		return
	}
	if err := w.audioRd.SetVolume(w.audio.Volume); err != nil {
		log.Printf("Dashboard: set volume: %v", err)
	}
}

func (w *Widget) shell(command, arg string) {
	if command == "" || w.run == nil {
		return
	}
	if err := runner.Shell(w.run, config.ExpandPath(command)+" "+arg); err != nil {
		log.Printf("Dashboard: %s: %v", command, err)
	}
}

func (w *Widget) notify(i int) {
	name, args, ok := runner.Split(w.set.NotifyCommand)
	if !ok || w.run == nil {
		return
	}
	msg := fmt.Sprintf("Timer %d finished", i+1)
	if err := w.run.Spawn(config.ExpandPath(name), append(args, msg)...); err != nil {
		log.Printf("Dashboard: notify: %v", err)
	}
}

// Flush writes the timers out.
func (w *Widget) Flush() {
	w.state.save(w.timers)
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			log.Printf("Dashboard: closing state: %v", err)
		}
	}
}
