// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/wayland/core.go
// Summary: Core protocol objects: display, registry, callback, compositor,
//   surface, shm, shm pool and buffer.

package wayland

import (
	"github.com/framegrace/texelayer/protocol"
)

const (
	opDisplaySync        = 0
	opDisplayGetRegistry = 1

	evDisplayError    = 0
	evDisplayDeleteID = 1
)

// Display is the wl_display singleton, object id 1.
type Display struct {
	Proxy
}

func (*Display) Interface() string { return "wl_display" }

func (d *Display) Sync() (*Callback, error) {
	cb := &Callback{}
	d.conn.register(cb, 1)
	return cb, d.conn.request(&d.Proxy, d.Interface(), opDisplaySync, func(e *protocol.Encoder) {
		e.NewID(cb.id)
	})
}

func (d *Display) GetRegistry() (*Registry, error) {
	r := &Registry{}
	d.conn.register(r, 1)
	return r, d.conn.request(&d.Proxy, d.Interface(), opDisplayGetRegistry, func(e *protocol.Encoder) {
		e.NewID(r.id)
	})
}

func (d *Display) dispatch(opcode uint16, dec *protocol.Decoder) error {
	switch opcode {
	case evDisplayError:
		perr := &ProtocolError{ObjectID: dec.Object(), Code: dec.Uint(), Message: dec.String()}
		if err := dec.Err(); err != nil {
			return err
		}
		return perr
	case evDisplayDeleteID:
		d.conn.deleteID(dec.Uint())
	}
	return nil
}

const (
	opRegistryBind = 0

	evRegistryGlobal       = 0
	evRegistryGlobalRemove = 1
)

// Global describes one advertised compositor global.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

type Registry struct {
	Proxy
	OnGlobal       func(g Global)
	OnGlobalRemove func(name uint32)
}

func (*Registry) Interface() string { return "wl_registry" }

// Bind creates obj as an instance of the global at the given version.
func (r *Registry) Bind(g Global, version uint32, obj object) error {
	r.conn.register(obj, version)
	p := obj.base()
	return r.conn.request(&r.Proxy, r.Interface(), opRegistryBind, func(e *protocol.Encoder) {
		e.Uint(g.Name)
		e.String(obj.Interface())
		e.Uint(version)
		e.NewID(p.id)
	})
}

func (r *Registry) dispatch(opcode uint16, d *protocol.Decoder) error {
	switch opcode {
	case evRegistryGlobal:
		g := Global{Name: d.Uint(), Interface: d.String(), Version: d.Uint()}
		if r.OnGlobal != nil && d.Err() == nil {
			r.OnGlobal(g)
		}
	case evRegistryGlobalRemove:
		name := d.Uint()
		if r.OnGlobalRemove != nil {
			r.OnGlobalRemove(name)
		}
	}
	return nil
}

// Callback fires once; the compositor destroys it after done.
type Callback struct {
	Proxy
	OnDone func(data uint32)
}

func (*Callback) Interface() string { return "wl_callback" }

func (cb *Callback) dispatch(opcode uint16, d *protocol.Decoder) error {
	if opcode != 0 {
		return nil
	}
	data := d.Uint()
	cb.conn.forget(cb.id)
	if cb.OnDone != nil {
		cb.OnDone(data)
	}
	return nil
}

const opCompositorCreateSurface = 0

type Compositor struct {
	Proxy
}

func (*Compositor) Interface() string { return "wl_compositor" }

func (*Compositor) dispatch(uint16, *protocol.Decoder) error { return nil }

func (c *Compositor) CreateSurface() (*Surface, error) {
	s := &Surface{}
	c.conn.register(s, c.version)
	return s, c.conn.request(&c.Proxy, c.Interface(), opCompositorCreateSurface, func(e *protocol.Encoder) {
		e.NewID(s.id)
	})
}

const (
	opSurfaceDestroy        = 0
	opSurfaceAttach         = 1
	opSurfaceDamage         = 2
	opSurfaceFrame          = 3
	opSurfaceCommit         = 6
	opSurfaceSetBufferScale = 8
	opSurfaceDamageBuffer   = 9

	evSurfacePreferredBufferScale = 2
)

type Surface struct {
	Proxy
	OnPreferredScale func(scale int32)
}

func (*Surface) Interface() string { return "wl_surface" }

func (s *Surface) dispatch(opcode uint16, d *protocol.Decoder) error {
	switch opcode {
	case evSurfacePreferredBufferScale:
		scale := d.Int()
		if s.OnPreferredScale != nil {
			s.OnPreferredScale(scale)
		}
	default:
		// enter/leave reference outputs, which are never bound.
		d.Skip()
	}
	return nil
}

// Attach sets the pending buffer. A nil buffer detaches.
func (s *Surface) Attach(b *Buffer, x, y int32) error {
	var id uint32
	if b != nil {
		id = b.id
	}
	return s.conn.request(&s.Proxy, s.Interface(), opSurfaceAttach, func(e *protocol.Encoder) {
		e.Object(id)
		e.Int(x)
		e.Int(y)
	})
}

func (s *Surface) Damage(x, y, w, h int32) error {
	return s.rect(opSurfaceDamage, x, y, w, h)
}

// DamageBuffer damages in buffer coordinates; requires version 4.
func (s *Surface) DamageBuffer(x, y, w, h int32) error {
	return s.rect(opSurfaceDamageBuffer, x, y, w, h)
}

func (s *Surface) rect(op uint16, x, y, w, h int32) error {
	return s.conn.request(&s.Proxy, s.Interface(), op, func(e *protocol.Encoder) {
		e.Int(x)
		e.Int(y)
		e.Int(w)
		e.Int(h)
	})
}

func (s *Surface) Frame() (*Callback, error) {
	cb := &Callback{}
	s.conn.register(cb, 1)
	return cb, s.conn.request(&s.Proxy, s.Interface(), opSurfaceFrame, func(e *protocol.Encoder) {
		e.NewID(cb.id)
	})
}

// SetBufferScale requires version 3.
func (s *Surface) SetBufferScale(scale int32) error {
	return s.conn.request(&s.Proxy, s.Interface(), opSurfaceSetBufferScale, func(e *protocol.Encoder) {
		e.Int(scale)
	})
}

func (s *Surface) Commit() error {
	return s.conn.request(&s.Proxy, s.Interface(), opSurfaceCommit, nil)
}

func (s *Surface) Destroy() error {
	s.conn.forget(s.id)
	return s.conn.request(&s.Proxy, s.Interface(), opSurfaceDestroy, nil)
}

// FormatARGB8888 is the one pixel format every compositor must support.
// In memory it is B, G, R, A on little-endian hosts.
const FormatARGB8888 = 0

const (
	opShmCreatePool = 0

	evShmFormat = 0
)

type Shm struct {
	Proxy
	Formats []uint32
}

func (*Shm) Interface() string { return "wl_shm" }

func (s *Shm) dispatch(opcode uint16, d *protocol.Decoder) error {
	if opcode == evShmFormat {
		s.Formats = append(s.Formats, d.Uint())
	}
	return nil
}

// CreatePool shares fd with the compositor. The caller may close fd once
// the request has been sent.
func (s *Shm) CreatePool(fd int, size int32) (*ShmPool, error) {
	p := &ShmPool{}
	s.conn.register(p, 1)
	return p, s.conn.request(&s.Proxy, s.Interface(), opShmCreatePool, func(e *protocol.Encoder) {
		e.NewID(p.id)
		e.FD(fd)
		e.Int(size)
	})
}

const (
	opShmPoolCreateBuffer = 0
	opShmPoolDestroy      = 1
)

type ShmPool struct {
	Proxy
}

func (*ShmPool) Interface() string { return "wl_shm_pool" }

func (*ShmPool) dispatch(uint16, *protocol.Decoder) error { return nil }

func (p *ShmPool) CreateBuffer(offset, width, height, stride int32, format uint32) (*Buffer, error) {
	b := &Buffer{}
	p.conn.register(b, 1)
	return b, p.conn.request(&p.Proxy, p.Interface(), opShmPoolCreateBuffer, func(e *protocol.Encoder) {
		e.NewID(b.id)
		e.Int(offset)
		e.Int(width)
		e.Int(height)
		e.Int(stride)
		e.Uint(format)
	})
}

func (p *ShmPool) Destroy() error {
	p.conn.forget(p.id)
	return p.conn.request(&p.Proxy, p.Interface(), opShmPoolDestroy, nil)
}

const (
	opBufferDestroy = 0

	evBufferRelease = 0
)

type Buffer struct {
	Proxy
	OnRelease func()
}

func (*Buffer) Interface() string { return "wl_buffer" }

func (b *Buffer) dispatch(opcode uint16, _ *protocol.Decoder) error {
	if opcode == evBufferRelease && b.OnRelease != nil {
		b.OnRelease()
	}
	return nil
}

func (b *Buffer) Destroy() error {
	b.conn.forget(b.id)
	return b.conn.request(&b.Proxy, b.Interface(), opBufferDestroy, nil)
}
