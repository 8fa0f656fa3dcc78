// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: loop/events.go
// Summary: The closed set of events delivered to widgets.

package loop

import (
	"github.com/framegrace/texelayer/input"
	"github.com/framegrace/texelayer/render"
)

// Event is one of the types below and nothing else.
type Event interface {
	isEvent()
}

// Configure reports a new logical size or buffer scale. Widgets recompute
// their layout from it.
type Configure struct {
	Width, Height int
	Scale         int
}

// Pointer carries the normalized events of one compositor pointer frame.
type Pointer struct {
	Events []input.PointerEvent
}

// Key is a press or repeat.
type Key struct {
	input.KeyEvent
}

// TimerID names a widget timer. Re-arming an ID replaces the old timer.
type TimerID string

type Timer struct {
	ID TimerID
}

// TaskDone reports the completion of the background task started with
// Context.Start.
type TaskDone struct {
	ID     string
	Result any
	Err    error
}

// Reload delivers a freshly resolved palette.
type Reload struct {
	Palette *render.Palette
}

// Close means the compositor withdrew the surface. The loop ends after
// delivering it.
type Close struct{}

func (Configure) isEvent() {}
func (Pointer) isEvent()   {}
func (Key) isEvent()       {}
func (Timer) isEvent()     {}
func (TaskDone) isEvent()  {}
func (Reload) isEvent()    {}
func (Close) isEvent()     {}
