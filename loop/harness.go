// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: loop/harness.go
// Summary: Drives a widget without a compositor.
// Usage: Widget tests and `texelayer snapshot` deliver events by hand and
//   draw into an off-screen canvas.

package loop

import (
	"time"

	"github.com/framegrace/texelayer/render"
)

// Harness owns a Loop whose events are delivered synchronously. Timers are
// recorded but never fire on their own; Fire delivers them.
type Harness struct {
	l *Loop
}

// NewHarness configures w at width x height and scale 1.
func NewHarness(w Widget, width, height int, now func() time.Time) *Harness {
	h := &Harness{l: New(nil, nil, w, Options{Now: now})}
	h.Send(Configure{Width: width, Height: height, Scale: 1})
	return h
}

// Context is the context handed to the widget.
func (h *Harness) Context() *Context { return h.l.ctx }

// Send delivers ev and anything the widget queued in response.
func (h *Harness) Send(ev Event) {
	if c, ok := ev.(Configure); ok {
		h.l.width, h.l.height, h.l.scale = c.Width, c.Height, max(c.Scale, 1)
		h.l.input.SetScale(h.l.scale)
		h.l.redraw = true
	}
	h.l.Post(ev)
	h.l.deliver()
}

// Armed reports whether timer id is pending.
func (h *Harness) Armed(id TimerID) bool {
	_, ok := h.l.timers[id]
	return ok
}

// Fire delivers Timer{id} as if it expired. One-shot timers are disarmed.
func (h *Harness) Fire(id TimerID) bool {
	a, ok := h.l.timers[id]
	if !ok {
		return false
	}
	if a.every == 0 {
		h.l.cancel(id)
	}
	h.Send(Timer{ID: id})
	return true
}

// AwaitTask waits for the running background task and delivers its
// TaskDone. It reports false when nothing finished within timeout.
func (h *Harness) AwaitTask(timeout time.Duration) (TaskDone, bool) {
	select {
	case done := <-h.l.taskC:
		h.l.taskBusy = false
		h.Send(done)
		return done, true
	case <-time.After(timeout):
		return TaskDone{}, false
	}
}

// Dirty reports and clears the redraw flag.
func (h *Harness) Dirty() bool {
	d := h.l.redraw
	h.l.redraw = false
	return d
}

// Exited returns the exit code once the widget asked to exit.
func (h *Harness) Exited() (int, bool) { return h.l.code, h.l.exit }

// Draw renders the widget into a canvas of the buffer size.
func (h *Harness) Draw() *render.Canvas {
	w, ht := h.l.width*h.l.scale, h.l.height*h.l.scale
	h.l.canvas.Resize(max(w, 1), max(ht, 1))
	h.l.widget.Draw(h.l.canvas)
	return h.l.canvas
}

// Close stops pending timers and flushes the widget.
func (h *Harness) Close() {
	for id := range h.l.timers {
		h.l.cancel(id)
	}
	select {
	case <-h.l.done:
	default:
		close(h.l.done)
	}
	if f, ok := h.l.widget.(Flusher); ok {
		f.Flush()
	}
}
