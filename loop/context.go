// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: loop/context.go
// Summary: Capabilities a widget may use while handling an event.

package loop

import (
	"image"
	"time"
)

// Context is handed to Widget.Handle. It must not be retained past Run.
type Context struct {
	l *Loop
}

// Redraw marks the widget dirty. The frame is drawn once the compositor is
// ready for it.
func (c *Context) Redraw() { c.l.redraw = true }

// Exit ends the loop after the current batch of events.
func (c *Context) Exit(code int) {
	c.l.exit = true
	c.l.code = code
}

// After delivers Timer{id} once, d from now.
func (c *Context) After(id TimerID, d time.Duration) { c.l.arm(id, d, 0) }

// Every delivers Timer{id} every d until cancelled.
func (c *Context) Every(id TimerID, d time.Duration) { c.l.arm(id, d, d) }

func (c *Context) Cancel(id TimerID) { c.l.cancel(id) }

// Start runs fn off the loop goroutine and reports it with TaskDone. Only
// one task may run at a time. A non-zero timeout bounds it.
func (c *Context) Start(id string, timeout time.Duration, fn TaskFunc) error {
	return c.l.start(id, timeout, fn)
}

func (c *Context) TaskRunning() bool { return c.l.taskBusy }

func (c *Context) Now() time.Time { return c.l.now() }

// Size is the last configured logical size.
func (c *Context) Size() (int, int) { return c.l.width, c.l.height }

func (c *Context) Scale() int { return c.l.scale }

// Pointer is the pointer position in buffer pixels, if it is over the
// surface.
func (c *Context) Pointer() (image.Point, bool) { return c.l.input.Position() }
