// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtimeadapter/seat.go
// Summary: Feeds wl_seat pointer and keyboard events into the event loop.
// Notes: Pointer sub-events are collected until wl_pointer.frame; pointers
//   older than version 5 have no frame event and flush per event.

package runtimeadapter

import (
	"log"

	"github.com/framegrace/texelayer/input"
	"github.com/framegrace/texelayer/internal/wayland"
	"github.com/framegrace/texelayer/protocol"
)

// Sink receives input, normally *loop.Loop.
type Sink interface {
	PostPointer(frame input.PointerFrame)
	PostKey(code uint32, pressed bool)
	PostModifiers(depressed, latched, locked uint32)
	PostRepeatInfo(rate, delayMs int32)
	PostKeyboardLeave()
}

// SeatInput owns the seat's pointer and keyboard.
type SeatInput struct {
	sink    Sink
	surface uint32
	// Cursor is the shape set on pointer enter.
	Cursor uint32

	pointer  *wayland.Pointer
	keyboard *wayland.Keyboard
	shape    *wayland.CursorShapeDevice
	shapeMgr *wayland.CursorShapeManager

	frame   input.PointerFrame
	framed  bool
	focused bool
}

// NewSeatInput routes input for the surface with the given object id.
func NewSeatInput(sink Sink, surfaceID uint32) *SeatInput {
	return &SeatInput{sink: sink, surface: surfaceID, Cursor: wayland.CursorShapeDefault}
}

// Bind acquires devices for the capabilities already advertised and
// follows later changes.
func (s *SeatInput) Bind(seat *wayland.Seat, shapes *wayland.CursorShapeManager) error {
	if seat == nil {
		return nil
	}
	s.shapeMgr = shapes
	seat.OnCapabilities = func(caps uint32) {
		if err := s.bindCaps(seat, caps); err != nil {
			log.Printf("Input: seat capabilities: %v", err)
		}
	}
	return s.bindCaps(seat, seat.Caps)
}

func (s *SeatInput) bindCaps(seat *wayland.Seat, caps uint32) error {
	if caps&wayland.SeatCapPointer != 0 && s.pointer == nil {
		p, err := seat.GetPointer()
		if err != nil {
			return err
		}
		s.pointer = p
		s.framed = p.Version() >= 5
		s.attachPointer(p)
		if s.shapeMgr != nil {
			if s.shape, err = s.shapeMgr.GetPointer(p); err != nil {
				return err
			}
		}
	}
	if caps&wayland.SeatCapKeyboard != 0 && s.keyboard == nil {
		k, err := seat.GetKeyboard()
		if err != nil {
			return err
		}
		s.keyboard = k
		s.attachKeyboard(k)
	}
	return nil
}

func (s *SeatInput) attachPointer(p *wayland.Pointer) {
	p.OnEnter = s.pointerEnter
	p.OnLeave = s.pointerLeave
	p.OnMotion = s.pointerMotion
	p.OnButton = s.pointerButton
	p.OnAxis = s.pointerAxis
	p.OnAxisDiscrete = s.pointerAxisDiscrete
	p.OnAxisSource = s.pointerAxisSource
	p.OnFrame = s.flush
}

func (s *SeatInput) push(raw input.RawPointer) {
	s.frame = append(s.frame, raw)
	if !s.framed {
		s.flush()
	}
}

func (s *SeatInput) flush() {
	if len(s.frame) == 0 {
		return
	}
	frame := s.frame
	s.frame = nil
	s.sink.PostPointer(frame)
}

func (s *SeatInput) pointerEnter(serial, surface uint32, x, y protocol.Fixed) {
	if surface != s.surface {
		return
	}
	s.focused = true
	if s.shape != nil {
		if err := s.shape.SetShape(serial, s.Cursor); err != nil {
			log.Printf("Input: set cursor: %v", err)
		}
	}
	s.push(input.RawPointer{Kind: input.RawEnter, Serial: serial, X: x.Float(), Y: y.Float()})
}

func (s *SeatInput) pointerLeave(serial, surface uint32) {
	if !s.focused {
		return
	}
	s.focused = false
	s.push(input.RawPointer{Kind: input.RawLeave, Serial: serial})
}

func (s *SeatInput) pointerMotion(_ uint32, x, y protocol.Fixed) {
	if !s.focused {
		return
	}
	s.push(input.RawPointer{Kind: input.RawMotion, X: x.Float(), Y: y.Float()})
}

func (s *SeatInput) pointerButton(serial, _ uint32, button, state uint32) {
	if !s.focused {
		return
	}
	s.push(input.RawPointer{Kind: input.RawButton, Serial: serial, Button: button, Pressed: state == wayland.ButtonPressed})
}

func (s *SeatInput) pointerAxis(_ uint32, axis uint32, value protocol.Fixed) {
	if !s.focused {
		return
	}
	s.push(input.RawPointer{Kind: input.RawAxis, Axis: int(axis), Value: value.Float()})
}

func (s *SeatInput) pointerAxisDiscrete(axis uint32, discrete int32) {
	if !s.focused {
		return
	}
	s.push(input.RawPointer{Kind: input.RawAxisDiscrete, Axis: int(axis), Discrete: discrete})
}

func (s *SeatInput) pointerAxisSource(source uint32) {
	if !s.focused {
		return
	}
	s.push(input.RawPointer{Kind: input.RawAxisSource, Source: source})
}

func (s *SeatInput) attachKeyboard(k *wayland.Keyboard) {
	// keys held on enter are ignored; their releases arrive anyway
	k.OnEnter = func(_, _ uint32, _ []byte) {}
	k.OnLeave = func(_, _ uint32) { s.sink.PostKeyboardLeave() }
	k.OnKey = func(_, _, key, state uint32) {
		s.sink.PostKey(key, state == wayland.KeyPressed)
	}
	k.OnModifiers = func(_, depressed, latched, locked, _ uint32) {
		s.sink.PostModifiers(depressed, latched, locked)
	}
	k.OnRepeatInfo = func(rate, delay int32) {
		s.sink.PostRepeatInfo(rate, delay)
	}
}

// ParseCursor maps a config name to a cursor shape.
func ParseCursor(name string) uint32 {
	if name == "pointer" {
		return wayland.CursorShapePointer
	}
	return wayland.CursorShapeDefault
}
