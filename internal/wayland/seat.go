// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/wayland/seat.go
// Summary: wl_seat, wl_pointer and wl_keyboard proxies.

package wayland

import (
	"golang.org/x/sys/unix"

	"github.com/framegrace/texelayer/protocol"
)

const (
	SeatCapPointer  = 1
	SeatCapKeyboard = 2

	opSeatGetPointer  = 0
	opSeatGetKeyboard = 1

	evSeatCapabilities = 0
	evSeatName         = 1
)

type Seat struct {
	Proxy
	Caps           uint32
	OnCapabilities func(caps uint32)
}

func (*Seat) Interface() string { return "wl_seat" }

func (s *Seat) dispatch(opcode uint16, d *protocol.Decoder) error {
	switch opcode {
	case evSeatCapabilities:
		caps := d.Uint()
		s.Caps = caps
		if s.OnCapabilities != nil {
			s.OnCapabilities(caps)
		}
	case evSeatName:
		_ = d.String()
	}
	return nil
}

func (s *Seat) GetPointer() (*Pointer, error) {
	p := &Pointer{}
	s.conn.register(p, s.version)
	return p, s.conn.request(&s.Proxy, s.Interface(), opSeatGetPointer, func(e *protocol.Encoder) {
		e.NewID(p.id)
	})
}

func (s *Seat) GetKeyboard() (*Keyboard, error) {
	k := &Keyboard{}
	s.conn.register(k, s.version)
	return k, s.conn.request(&s.Proxy, s.Interface(), opSeatGetKeyboard, func(e *protocol.Encoder) {
		e.NewID(k.id)
	})
}

const (
	evPointerEnter        = 0
	evPointerLeave        = 1
	evPointerMotion       = 2
	evPointerButton       = 3
	evPointerAxis         = 4
	evPointerFrame        = 5
	evPointerAxisSource   = 6
	evPointerAxisStop     = 7
	evPointerAxisDiscrete = 8
	evPointerAxisValue120 = 9

	// PointerAxisVertical and PointerAxisHorizontal identify scroll axes.
	PointerAxisVertical   = 0
	PointerAxisHorizontal = 1

	ButtonReleased = 0
	ButtonPressed  = 1
)

// Pointer delivers raw events. Since version 5 the compositor groups them
// with OnFrame; older pointers have no frame event.
type Pointer struct {
	Proxy
	OnEnter        func(serial, surface uint32, x, y protocol.Fixed)
	OnLeave        func(serial, surface uint32)
	OnMotion       func(time uint32, x, y protocol.Fixed)
	OnButton       func(serial, time, button, state uint32)
	OnAxis         func(time, axis uint32, value protocol.Fixed)
	OnAxisDiscrete func(axis uint32, discrete int32)
	OnAxisSource   func(source uint32)
	OnFrame        func()
}

func (*Pointer) Interface() string { return "wl_pointer" }

func (p *Pointer) dispatch(opcode uint16, d *protocol.Decoder) error {
	switch opcode {
	case evPointerEnter:
		serial, surface, x, y := d.Uint(), d.Object(), d.Fixed(), d.Fixed()
		if p.OnEnter != nil {
			p.OnEnter(serial, surface, x, y)
		}
	case evPointerLeave:
		serial, surface := d.Uint(), d.Object()
		if p.OnLeave != nil {
			p.OnLeave(serial, surface)
		}
	case evPointerMotion:
		time, x, y := d.Uint(), d.Fixed(), d.Fixed()
		if p.OnMotion != nil {
			p.OnMotion(time, x, y)
		}
	case evPointerButton:
		serial, time, button, state := d.Uint(), d.Uint(), d.Uint(), d.Uint()
		if p.OnButton != nil {
			p.OnButton(serial, time, button, state)
		}
	case evPointerAxis:
		time, axis, value := d.Uint(), d.Uint(), d.Fixed()
		if p.OnAxis != nil {
			p.OnAxis(time, axis, value)
		}
	case evPointerFrame:
		if p.OnFrame != nil {
			p.OnFrame()
		}
	case evPointerAxisSource:
		source := d.Uint()
		if p.OnAxisSource != nil {
			p.OnAxisSource(source)
		}
	case evPointerAxisStop:
		_, _ = d.Uint(), d.Uint()
	case evPointerAxisDiscrete:
		axis, discrete := d.Uint(), d.Int()
		if p.OnAxisDiscrete != nil {
			p.OnAxisDiscrete(axis, discrete)
		}
	case evPointerAxisValue120:
		_, _ = d.Uint(), d.Int()
	default:
		d.Skip()
	}
	return nil
}

const (
	evKeyboardKeymap     = 0
	evKeyboardEnter      = 1
	evKeyboardLeave      = 2
	evKeyboardKey        = 3
	evKeyboardModifiers  = 4
	evKeyboardRepeatInfo = 5

	KeyReleased = 0
	KeyPressed  = 1
)

// Keyboard delivers evdev key codes. The keymap fd is closed on receipt;
// translation uses a built-in layout table.
type Keyboard struct {
	Proxy
	OnEnter      func(serial, surface uint32, keys []byte)
	OnLeave      func(serial, surface uint32)
	OnKey        func(serial, time, key, state uint32)
	OnModifiers  func(serial, depressed, latched, locked, group uint32)
	OnRepeatInfo func(rate, delay int32)
}

func (*Keyboard) Interface() string { return "wl_keyboard" }

func (k *Keyboard) dispatch(opcode uint16, d *protocol.Decoder) error {
	switch opcode {
	case evKeyboardKeymap:
		_ = d.Uint()
		if fd := d.FD(); fd >= 0 {
			unix.Close(fd)
		}
		_ = d.Uint()
	case evKeyboardEnter:
		serial, surface, keys := d.Uint(), d.Object(), d.Array()
		if k.OnEnter != nil {
			k.OnEnter(serial, surface, keys)
		}
	case evKeyboardLeave:
		serial, surface := d.Uint(), d.Object()
		if k.OnLeave != nil {
			k.OnLeave(serial, surface)
		}
	case evKeyboardKey:
		serial, time, key, state := d.Uint(), d.Uint(), d.Uint(), d.Uint()
		if k.OnKey != nil {
			k.OnKey(serial, time, key, state)
		}
	case evKeyboardModifiers:
		serial, dep, lat, lock, group := d.Uint(), d.Uint(), d.Uint(), d.Uint(), d.Uint()
		if k.OnModifiers != nil {
			k.OnModifiers(serial, dep, lat, lock, group)
		}
	case evKeyboardRepeatInfo:
		rate, delay := d.Int(), d.Int()
		if k.OnRepeatInfo != nil {
			k.OnRepeatInfo(rate, delay)
		}
	}
	return nil
}
