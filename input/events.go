// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: input/events.go
// Summary: Raw compositor input records and the normalized events widgets see.

package input

import (
	"fmt"
	"image"

	"github.com/gdamore/tcell/v2"
)

// RawKind tags one sub-event of a compositor pointer frame.
type RawKind int

const (
	RawEnter RawKind = iota
	RawLeave
	RawMotion
	RawButton
	RawAxis
	RawAxisDiscrete
	RawAxisSource
)

// Raw axis identifiers.
const (
	AxisVertical   = 0
	AxisHorizontal = 1
)

// RawPointer is a pointer sub-event exactly as the compositor sent it, in
// logical surface coordinates.
type RawPointer struct {
	Kind     RawKind
	Serial   uint32
	X, Y     float64
	Button   uint32
	Pressed  bool
	Axis     int
	Value    float64
	Discrete int32
	Source   uint32
}

// PointerFrame is every sub-event between two wl_pointer.frame events.
type PointerFrame []RawPointer

// PointerKind is the kind of a normalized pointer event.
type PointerKind int

const (
	PointerEnter PointerKind = iota
	PointerLeave
	PointerMove
	PointerPress
	PointerRelease
	Scroll
)

func (k PointerKind) String() string {
	switch k {
	case PointerEnter:
		return "enter"
	case PointerLeave:
		return "leave"
	case PointerMove:
		return "move"
	case PointerPress:
		return "press"
	case PointerRelease:
		return "release"
	case Scroll:
		return "scroll"
	}
	return fmt.Sprintf("pointer(%d)", int(k))
}

// PointerEvent is a normalized pointer event in buffer pixels.
type PointerEvent struct {
	Kind PointerKind
	Pos  image.Point
	// Button is the button that changed, for press and release.
	Button tcell.ButtonMask
	// Buttons is the set held after the event.
	Buttons tcell.ButtonMask
	// DX, DY are scroll steps; positive scrolls right and down.
	DX, DY float64
	Mods   tcell.ModMask
}

// KeyEvent is a translated key press or repeat.
type KeyEvent struct {
	Key    tcell.Key
	Rune   rune
	Mods   tcell.ModMask
	Code   uint32
	Repeat bool
}

// Name renders the key the way tcell does, for logs and bindings.
func (k KeyEvent) Name() string {
	return tcell.NewEventKey(k.Key, k.Rune, k.Mods).Name()
}
