// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/theming/for_app.go
// Summary: Palette resolution driven by a widget's config section.

package theming

import (
	"context"
	"image/color"
	"log"
	"sync"

	"github.com/framegrace/texelayer/config"
	"github.com/framegrace/texelayer/render"
)

// Source names where a widget's colors come from.
type Source struct {
	ColorFile string
	Style     string
}

// SourceForApp reads color_file and style from the widget's section.
func SourceForApp(app string, cfg config.Config) Source {
	if cfg == nil {
		return Source{}
	}
	return Source{
		ColorFile: config.ExpandPath(cfg.GetString(app, "color_file", "")),
		Style:     cfg.GetString(app, "style", ""),
	}
}

// ForApp resolves the widget's palette over its built-in defaults.
func ForApp(app string, cfg config.Config, defaults map[string]color.NRGBA) *render.Palette {
	src := SourceForApp(app, cfg)
	return Load(src.ColorFile, src.Style, defaults)
}

// WatchApp sends a fresh palette whenever the widget's colors file or its
// config file changes. A config edit reloads the widget config first, so
// new color_file and style values apply without a restart. It returns nil
// when neither file can be watched; a nil channel never fires in the
// loop's select.
func WatchApp(ctx context.Context, app string, cfg config.Config, defaults map[string]color.NRGBA) <-chan *render.Palette {
	w := &appWatch{
		ctx:      ctx,
		app:      app,
		defaults: defaults,
		src:      SourceForApp(app, cfg),
		out:      make(chan *render.Palette, 1),
	}
	watching := w.watchColors()
	if path, err := config.Path(app); err == nil {
		if err := config.Watch(ctx, path, w.configChanged); err != nil {
			log.Printf("Theming: cannot watch %s: %v", path, err)
		} else {
			watching = true
		}
	}
	if !watching {
		return nil
	}
	return w.out
}

type appWatch struct {
	ctx      context.Context
	app      string
	defaults map[string]color.NRGBA
	out      chan *render.Palette

	mu         sync.Mutex
	src        Source
	stopColors context.CancelFunc
}

// watchColors (re)starts the watch on the current colors file.
func (w *appWatch) watchColors() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopColors != nil {
		w.stopColors()
		w.stopColors = nil
	}
	if w.src.ColorFile == "" {
		return false
	}
	ctx, cancel := context.WithCancel(w.ctx)
	if err := config.Watch(ctx, w.src.ColorFile, w.send); err != nil {
		cancel()
		log.Printf("Theming: cannot watch %s: %v", w.src.ColorFile, err)
		return false
	}
	w.stopColors = cancel
	return true
}

func (w *appWatch) configChanged() {
	if err := config.ReloadApp(w.app); err != nil {
		log.Printf("Theming: reload %s config: %v", w.app, err)
		return
	}
	src := SourceForApp(w.app, config.App(w.app))
	w.mu.Lock()
	moved := src.ColorFile != w.src.ColorFile
	w.src = src
	w.mu.Unlock()
	if moved {
		w.watchColors()
	}
	w.send()
}

// send replaces a pending palette rather than queueing behind it.
func (w *appWatch) send() {
	w.mu.Lock()
	src := w.src
	w.mu.Unlock()
	p := Load(src.ColorFile, src.Style, w.defaults)
	select {
	case <-w.out:
	default:
	}
	select {
	case w.out <- p:
	case <-w.ctx.Done():
	}
}
