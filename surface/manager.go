// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: surface/manager.go
// Summary: Owns the layer surface and its two shared-memory buffer slots.
// Usage: The event loop acquires a slot, renders into it, presents it, and
//   waits for CanPresent before drawing again.
// Notes: A slot handed to the compositor stays SlotAttached until its
//   wl_buffer.release is processed; nothing writes into it before then.

package surface

import (
	"errors"
	"fmt"
	"image"
	"log"
)

var (
	// ErrBothAttached means both slots are held by the compositor. With one
	// frame in flight at a time this cannot happen unless release
	// tracking is broken, so it is fatal.
	ErrBothAttached = errors.New("surface: both buffer slots attached")
	// ErrFrameInFlight is returned by Present before the previous frame
	// callback fired.
	ErrFrameInFlight = errors.New("surface: frame already in flight")
	ErrSlotAttached  = errors.New("surface: slot is attached to the compositor")
	ErrStaleSlot     = errors.New("surface: slot belongs to a previous size")
	ErrNoSize        = errors.New("surface: compositor sent no size and none was requested")
	ErrClosed        = errors.New("surface: closed by compositor")
)

// Buffer is one compositor-visible pixel buffer in ARGB8888 layout.
type Buffer interface {
	Pixels() []byte
	Destroy() error
}

// Listener receives surface-level events from the backend.
type Listener interface {
	HandleConfigure(width, height int) error
	HandlePreferredScale(scale int) error
	HandleClosed()
}

// Backend is the protocol side of the manager. The wayland implementation
// lives in wayland.go; tests use an in-memory one.
type Backend interface {
	SetListener(l Listener)
	// Configure creates the surface with its layer role and commits it
	// without a buffer.
	Configure(cfg Config) error
	// Roundtrip blocks until the compositor handled all requests so far.
	Roundtrip() error
	// DispatchPending handles events that already arrived without blocking.
	DispatchPending() error
	NewBuffer(width, height, stride int, onRelease func()) (Buffer, error)
	// Present attaches buf, damages the rectangle, requests a frame
	// callback and commits.
	Present(buf Buffer, damage image.Rectangle, scale int, onFrame func()) error
	Close() error
}

// SlotState is the ownership state of a buffer slot.
type SlotState int

const (
	SlotFree SlotState = iota
	SlotAttached
)

func (s SlotState) String() string {
	if s == SlotAttached {
		return "attached"
	}
	return "free"
}

// Slot is a writable pixel buffer.
type Slot struct {
	buf    Buffer
	state  SlotState
	gen    int
	Width  int
	Height int
	Stride int
}

// Pixels is the slot memory in ARGB8888 (BGRA byte order).
func (s *Slot) Pixels() []byte { return s.buf.Pixels() }

func (s *Slot) State() SlotState { return s.state }

// Manager drives the surface and buffer lifecycle.
type Manager struct {
	backend Backend
	cfg     Config

	width, height int
	scale         int
	configured    bool
	closed        bool

	gen           int
	slots         [2]*Slot
	retired       []*Slot
	frameInFlight bool

	// OnConfigure runs after the logical size or scale changed.
	OnConfigure func(width, height, scale int)
	// OnClosed runs when the compositor withdraws the surface.
	OnClosed func()
	// OnFrame runs when the compositor is ready for the next frame.
	OnFrame func()
}

// New creates the surface, waits for its first configure and allocates the
// slots.
func New(backend Backend, cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{backend: backend, cfg: cfg, scale: max(cfg.Scale, 1)}
	backend.SetListener(m)
	if err := backend.Configure(cfg); err != nil {
		return nil, err
	}
	for !m.configured {
		if err := backend.Roundtrip(); err != nil {
			return nil, err
		}
		if m.closed {
			return nil, ErrClosed
		}
	}
	return m, nil
}

// Size returns the logical size.
func (m *Manager) Size() (int, int) { return m.width, m.height }

func (m *Manager) Scale() int { return m.scale }

// BufferSize returns the pixel size of the slots.
func (m *Manager) BufferSize() (int, int) { return m.width * m.scale, m.height * m.scale }

// CanPresent reports whether no frame is in flight.
func (m *Manager) CanPresent() bool { return !m.frameInFlight }

func (m *Manager) Closed() bool { return m.closed }

// HandleConfigure applies a compositor configure. Zero dimensions take the
// requested size.
func (m *Manager) HandleConfigure(width, height int) error {
	if width == 0 {
		width = m.cfg.Width
	}
	if height == 0 {
		height = m.cfg.Height
	}
	if width <= 0 || height <= 0 {
		return ErrNoSize
	}
	first := !m.configured
	m.configured = true
	if !first && width == m.width && height == m.height {
		return nil
	}
	if err := m.Resize(width, height); err != nil {
		return err
	}
	return nil
}

// HandlePreferredScale reallocates at the new buffer scale.
func (m *Manager) HandlePreferredScale(scale int) error {
	if scale < 1 || scale == m.scale {
		return nil
	}
	m.scale = scale
	if !m.configured {
		return nil
	}
	return m.realloc()
}

func (m *Manager) HandleClosed() {
	m.closed = true
	if m.OnClosed != nil {
		m.OnClosed()
	}
}

// Resize reallocates both slots for a new logical size. Slots still held by
// the compositor are retired and destroyed when released.
func (m *Manager) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("surface: invalid size %dx%d", width, height)
	}
	if width == m.width && height == m.height && m.slots[0] != nil {
		return nil
	}
	m.width, m.height = width, height
	return m.realloc()
}

func (m *Manager) realloc() error {
	m.gen++
	for i, s := range m.slots {
		if s == nil {
			continue
		}
		if s.state == SlotAttached {
			m.retired = append(m.retired, s)
		} else if err := s.buf.Destroy(); err != nil {
			log.Printf("Surface: destroying slot: %v", err)
		}
		m.slots[i] = nil
	}
	bw, bh := m.BufferSize()
	for i := range m.slots {
		s := &Slot{gen: m.gen, Width: bw, Height: bh, Stride: bw * 4}
		buf, err := m.backend.NewBuffer(bw, bh, s.Stride, func() { m.release(s) })
		if err != nil {
			return fmt.Errorf("surface: allocating %dx%d slot: %w", bw, bh, err)
		}
		s.buf = buf
		m.slots[i] = s
	}
	if m.OnConfigure != nil {
		m.OnConfigure(m.width, m.height, m.scale)
	}
	return nil
}

func (m *Manager) release(s *Slot) {
	s.state = SlotFree
	if s.gen == m.gen {
		return
	}
	for i, r := range m.retired {
		if r == s {
			m.retired = append(m.retired[:i], m.retired[i+1:]...)
			break
		}
	}
	if err := s.buf.Destroy(); err != nil {
		log.Printf("Surface: destroying retired slot: %v", err)
	}
}

func (m *Manager) free() *Slot {
	for _, s := range m.slots {
		if s != nil && s.state == SlotFree {
			return s
		}
	}
	return nil
}

// Acquire returns a slot that is safe to write. When both are attached it
// processes already-received events once, since a release may be queued,
// and fails if that did not free a slot.
func (m *Manager) Acquire() (*Slot, error) {
	if s := m.free(); s != nil {
		return s, nil
	}
	if err := m.backend.DispatchPending(); err != nil {
		return nil, err
	}
	if s := m.free(); s != nil {
		return s, nil
	}
	return nil, ErrBothAttached
}

// Present hands the slot to the compositor. An empty damage rectangle
// damages the whole buffer.
func (m *Manager) Present(s *Slot, damage image.Rectangle) error {
	if m.frameInFlight {
		return ErrFrameInFlight
	}
	if s.state == SlotAttached {
		return ErrSlotAttached
	}
	if s.gen != m.gen {
		return ErrStaleSlot
	}
	full := image.Rect(0, 0, s.Width, s.Height)
	if damage.Empty() {
		damage = full
	} else {
		damage = damage.Intersect(full)
	}
	if err := m.backend.Present(s.buf, damage, m.scale, m.frameDone); err != nil {
		return err
	}
	s.state = SlotAttached
	m.frameInFlight = true
	return nil
}

// Render acquires a slot, lets fill write its pixels and presents it.
func (m *Manager) Render(fill func(pixels []byte, stride int) error, damage image.Rectangle) error {
	s, err := m.Acquire()
	if err != nil {
		return err
	}
	if err := fill(s.Pixels(), s.Stride); err != nil {
		return err
	}
	return m.Present(s, damage)
}

func (m *Manager) frameDone() {
	m.frameInFlight = false
	if m.OnFrame != nil {
		m.OnFrame()
	}
}

// SlotStates reports the state of both current slots.
func (m *Manager) SlotStates() [2]SlotState {
	var st [2]SlotState
	for i, s := range m.slots {
		if s != nil {
			st[i] = s.state
		}
	}
	return st
}

// Close destroys every buffer and the surface.
func (m *Manager) Close() error {
	for _, s := range append(m.slots[:], m.retired...) {
		if s != nil {
			s.buf.Destroy()
		}
	}
	m.slots = [2]*Slot{}
	m.retired = nil
	return m.backend.Close()
}
