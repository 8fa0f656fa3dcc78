// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtimeadapter/runner.go
// Summary: Runs a created widget on a layer-shell surface.
// Usage: cmd/texelayer creates the widget through the registry and hands
//   it to Run together with the runtime options from texelayer.toml.

package runtimeadapter

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/framegrace/texelayer/config"
	"github.com/framegrace/texelayer/internal/wayland"
	"github.com/framegrace/texelayer/loop"
	"github.com/framegrace/texelayer/registry"
	"github.com/framegrace/texelayer/render"
	"github.com/framegrace/texelayer/surface"
)

// Options are the process-wide runtime settings.
type Options struct {
	// Reload delivers palettes from the theme watcher, may be nil.
	Reload <-chan *render.Palette
	// RepeatRate and RepeatDelay override the compositor's repeat info
	// when non-zero.
	RepeatRate  int
	RepeatDelay time.Duration
	Cursor      string
}

// OptionsFromConfig reads the [runtime] section of the system config.
func OptionsFromConfig(sys config.Config) Options {
	return Options{
		RepeatRate:  sys.GetInt("runtime", "repeat_rate", 0),
		RepeatDelay: time.Duration(sys.GetInt("runtime", "repeat_delay_ms", 0)) * time.Millisecond,
		Cursor:      sys.GetString("runtime", "cursor", "default"),
	}
}

// waylandSource is the loop's view of the connection. Dispatch goes
// through the backend so errors raised inside surface handlers surface.
type waylandSource struct {
	conn    *wayland.Conn
	backend *surface.WaylandBackend
}

func (s waylandSource) Ready() <-chan struct{}  { return s.conn.Ready() }
func (s waylandSource) DispatchPending() error { return s.backend.DispatchPending() }

// Run connects, creates the surface from the instance config and runs the
// loop until the widget exits. It returns the widget's exit code.
func Run(ctx context.Context, inst *registry.Instance, opts Options) (int, error) {
	if inst == nil || inst.Widget == nil {
		return 1, fmt.Errorf("runtime adapter: nil widget")
	}
	sc, err := SurfaceConfig(inst.Config)
	if err != nil {
		return 1, fmt.Errorf("surface config: %w", err)
	}

	client, err := wayland.Connect()
	if err != nil {
		return 1, err
	}
	defer client.Close()

	backend := surface.NewWaylandBackend(client)
	mgr, err := surface.New(backend, sc)
	if err != nil {
		return 1, err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Runtime: close surface: %v", err)
		}
	}()

	l := loop.New(waylandSource{conn: client.Conn, backend: backend}, mgr, inst.Widget, loop.Options{
		Reload:      opts.Reload,
		RepeatRate:  opts.RepeatRate,
		RepeatDelay: opts.RepeatDelay,
	})
	mgr.OnConfigure = l.PostConfigure
	mgr.OnClosed = l.PostClosed
	w, h := mgr.Size()
	l.PostConfigure(w, h, mgr.Scale())

	seat := NewSeatInput(l, backend.Surface().ID())
	seat.Cursor = ParseCursor(opts.Cursor)
	if err := seat.Bind(client.Seat, client.CursorShape); err != nil {
		return 1, err
	}

	log.Printf("Runtime: %s running at %dx%d scale %d", inst.Manifest.Name, w, h, mgr.Scale())
	return l.Run(ctx)
}
