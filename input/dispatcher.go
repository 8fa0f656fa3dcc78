// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: input/dispatcher.go
// Summary: Turns compositor pointer frames and key events into widget events.
// Usage: The event loop feeds raw input in and schedules repeats from
//   NextRepeat.

package input

import (
	"image"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
)

// Repeat defaults used until the compositor sends repeat_info.
const (
	DefaultRepeatDelay = 600 * time.Millisecond
	DefaultRepeatRate  = 25
)

// Continuous axis units per scroll step when no discrete count is sent.
const axisUnitsPerStep = 10

// xkb modifier bits in the standard keymap.
const (
	xkbShift = 1 << 0
	xkbLock  = 1 << 1
	xkbCtrl  = 1 << 2
	xkbAlt   = 1 << 3
	xkbLogo  = 1 << 6
)

// Dispatcher holds pointer and keyboard state for one surface. It is owned
// by the loop goroutine.
type Dispatcher struct {
	scale   int
	pos     image.Point
	inside  bool
	buttons tcell.ButtonMask
	serial  uint32

	mods tcell.ModMask
	caps bool

	delay    time.Duration
	interval time.Duration

	repeatCode uint32
	repeating  bool
	repeatAt   time.Time
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{scale: 1}
	d.SetRepeat(DefaultRepeatRate, DefaultRepeatDelay)
	return d
}

// SetScale sets the buffer scale applied to pointer coordinates.
func (d *Dispatcher) SetScale(scale int) {
	if scale < 1 {
		scale = 1
	}
	d.scale = scale
}

// SetRepeat sets the repeat rate in keys per second. A rate of zero
// disables repeat.
func (d *Dispatcher) SetRepeat(rate int, delay time.Duration) {
	d.delay = delay
	if rate <= 0 {
		d.interval = 0
		d.CancelRepeat()
		return
	}
	d.interval = time.Second / time.Duration(rate)
}

// Position is the last pointer position in buffer pixels and whether the
// pointer is over the surface.
func (d *Dispatcher) Position() (image.Point, bool) { return d.pos, d.inside }

// Serial is the serial of the last enter or button event, needed for
// cursor shape requests.
func (d *Dispatcher) Serial() uint32 { return d.serial }

func (d *Dispatcher) Mods() tcell.ModMask { return d.mods }

func (d *Dispatcher) toPixels(x, y float64) image.Point {
	s := float64(d.scale)
	return image.Pt(int(math.Floor(x*s)), int(math.Floor(y*s)))
}

// Pointer processes one frame in arrival order, so a button following a
// motion in the same frame lands at the new position.
func (d *Dispatcher) Pointer(frame PointerFrame) []PointerEvent {
	var out []PointerEvent
	var dx, dy float64
	var discreteX, discreteY int32
	var sawAxis bool
	for _, raw := range frame {
		switch raw.Kind {
		case RawEnter:
			d.inside = true
			d.serial = raw.Serial
			d.pos = d.toPixels(raw.X, raw.Y)
			out = append(out, d.event(PointerEnter))
		case RawLeave:
			d.inside = false
			d.buttons = tcell.ButtonNone
			out = append(out, d.event(PointerLeave))
		case RawMotion:
			d.pos = d.toPixels(raw.X, raw.Y)
			out = append(out, d.event(PointerMove))
		case RawButton:
			b := Button(raw.Button)
			if b == tcell.ButtonNone {
				continue
			}
			d.serial = raw.Serial
			kind := PointerRelease
			if raw.Pressed {
				d.buttons |= b
				kind = PointerPress
			} else {
				d.buttons &^= b
			}
			ev := d.event(kind)
			ev.Button = b
			out = append(out, ev)
		case RawAxis:
			sawAxis = true
			if raw.Axis == AxisHorizontal {
				dx += raw.Value
			} else {
				dy += raw.Value
			}
		case RawAxisDiscrete:
			sawAxis = true
			if raw.Axis == AxisHorizontal {
				discreteX += raw.Discrete
			} else {
				discreteY += raw.Discrete
			}
		}
	}
	if sawAxis {
		ev := d.event(Scroll)
		ev.DX = steps(discreteX, dx)
		ev.DY = steps(discreteY, dy)
		if ev.DX != 0 || ev.DY != 0 {
			out = append(out, ev)
		}
	}
	return out
}

func steps(discrete int32, value float64) float64 {
	if discrete != 0 {
		return float64(discrete)
	}
	return value / axisUnitsPerStep
}

func (d *Dispatcher) event(kind PointerKind) PointerEvent {
	return PointerEvent{Kind: kind, Pos: d.pos, Buttons: d.buttons, Mods: d.mods}
}

// Modifiers applies a wl_keyboard.modifiers update.
func (d *Dispatcher) Modifiers(depressed, latched, locked uint32) {
	eff := depressed | latched | locked
	var m tcell.ModMask
	if eff&xkbShift != 0 {
		m |= tcell.ModShift
	}
	if eff&xkbCtrl != 0 {
		m |= tcell.ModCtrl
	}
	if eff&xkbAlt != 0 {
		m |= tcell.ModAlt
	}
	if eff&xkbLogo != 0 {
		m |= tcell.ModMeta
	}
	d.mods = m
	d.caps = eff&xkbLock != 0
}

// Key handles a press or release. A press of a non-modifier key replaces
// any running repeat; releasing any key other than the repeating one leaves
// the repeat alone.
func (d *Dispatcher) Key(code uint32, pressed bool, now time.Time) []KeyEvent {
	if !pressed {
		if d.repeating && code == d.repeatCode {
			d.CancelRepeat()
		}
		return nil
	}
	if IsModifier(code) {
		return nil
	}
	ev, ok := Translate(code, d.mods, d.caps)
	d.CancelRepeat()
	if !ok {
		return nil
	}
	if d.interval > 0 {
		d.repeating = true
		d.repeatCode = code
		d.repeatAt = now.Add(d.delay)
	}
	return []KeyEvent{ev}
}

// CancelRepeat stops the running repeat, if any.
func (d *Dispatcher) CancelRepeat() {
	d.repeating = false
	d.repeatCode = 0
	d.repeatAt = time.Time{}
}

// KeyboardLeave drops focus state: repeat stops and modifiers clear.
func (d *Dispatcher) KeyboardLeave() {
	d.CancelRepeat()
	d.mods = 0
	d.caps = false
}

// NextRepeat is when the loop should next call FireRepeat.
func (d *Dispatcher) NextRepeat() (time.Time, bool) {
	return d.repeatAt, d.repeating
}

// FireRepeat emits the repeat due at now. A loop that fell behind gets one
// event and the schedule restarts from now rather than a burst.
func (d *Dispatcher) FireRepeat(now time.Time) []KeyEvent {
	if !d.repeating || now.Before(d.repeatAt) {
		return nil
	}
	ev, ok := Translate(d.repeatCode, d.mods, d.caps)
	if !ok {
		d.CancelRepeat()
		return nil
	}
	ev.Repeat = true
	d.repeatAt = d.repeatAt.Add(d.interval)
	if !d.repeatAt.After(now) {
		d.repeatAt = now.Add(d.interval)
	}
	return []KeyEvent{ev}
}
