// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: surface/wayland.go
// Summary: Backend implementation over a wlr layer-shell surface.

package surface

import (
	"image"
	"log"

	"github.com/framegrace/texelayer/internal/wayland"
)

// WaylandBackend creates a wl_surface with the zwlr_layer_surface_v1 role
// and shm buffers for it.
type WaylandBackend struct {
	client   *wayland.Client
	surface  *wayland.Surface
	layer    *wayland.LayerSurface
	listener Listener
	scale    int
	// err holds a failure raised inside an event handler until the next
	// dispatch call returns it.
	err error
}

func NewWaylandBackend(c *wayland.Client) *WaylandBackend {
	return &WaylandBackend{client: c, scale: 1}
}

// Surface exposes the wl_surface so input can match pointer focus.
func (b *WaylandBackend) Surface() *wayland.Surface { return b.surface }

func (b *WaylandBackend) SetListener(l Listener) { b.listener = l }

func (b *WaylandBackend) Configure(cfg Config) error {
	s, err := b.client.Compositor.CreateSurface()
	if err != nil {
		return err
	}
	b.surface = s
	s.OnPreferredScale = func(scale int32) {
		if err := b.listener.HandlePreferredScale(int(scale)); err != nil {
			b.fail(err)
		}
	}

	shell := b.client.LayerShell
	ls, err := shell.GetLayerSurface(s, 0, uint32(cfg.Layer), cfg.Namespace)
	if err != nil {
		return err
	}
	b.layer = ls
	ls.OnConfigure = func(serial, w, h uint32) {
		if err := ls.AckConfigure(serial); err != nil {
			b.fail(err)
			return
		}
		if err := b.listener.HandleConfigure(int(w), int(h)); err != nil {
			log.Printf("Surface: configure %dx%d: %v", w, h, err)
			b.fail(err)
		}
	}
	ls.OnClosed = func() { b.listener.HandleClosed() }

	if err := ls.SetSize(uint32(cfg.Width), uint32(cfg.Height)); err != nil {
		return err
	}
	if err := ls.SetAnchor(uint32(cfg.Anchor)); err != nil {
		return err
	}
	m := cfg.Margins
	if err := ls.SetMargin(int32(m.Top), int32(m.Right), int32(m.Bottom), int32(m.Left)); err != nil {
		return err
	}
	if err := ls.SetExclusiveZone(int32(cfg.ExclusiveZone)); err != nil {
		return err
	}
	if err := ls.SetKeyboardInteractivity(keyboardMode(cfg.Keyboard, shell.Version())); err != nil {
		return err
	}
	return s.Commit()
}

// keyboardMode maps to the protocol values, downgrading on-demand to
// exclusive on layer-shell versions that lack it.
func keyboardMode(k KeyboardMode, version uint32) uint32 {
	switch k {
	case KeyboardExclusive:
		return wayland.KeyboardInteractivityExclusive
	case KeyboardOnDemand:
		if version < 4 {
			return wayland.KeyboardInteractivityExclusive
		}
		return wayland.KeyboardInteractivityOnDemand
	}
	return wayland.KeyboardInteractivityNone
}

func (b *WaylandBackend) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *WaylandBackend) takeErr(err error) error {
	if err != nil {
		return err
	}
	err, b.err = b.err, nil
	return err
}

func (b *WaylandBackend) Roundtrip() error {
	return b.takeErr(b.client.Conn.Roundtrip())
}

func (b *WaylandBackend) DispatchPending() error {
	return b.takeErr(b.client.Conn.DispatchPending())
}

type shmBuffer struct {
	file   *shmFile
	pool   *wayland.ShmPool
	buffer *wayland.Buffer
}

func (s *shmBuffer) Pixels() []byte { return s.file.data }

func (s *shmBuffer) Destroy() error {
	if err := s.buffer.Destroy(); err != nil {
		return err
	}
	if err := s.pool.Destroy(); err != nil {
		return err
	}
	return s.file.unmap()
}

func (b *WaylandBackend) NewBuffer(width, height, stride int, onRelease func()) (Buffer, error) {
	size := stride * height
	f, err := newShmFile(size)
	if err != nil {
		return nil, err
	}
	pool, err := b.client.Shm.CreatePool(f.fd, int32(size))
	if err != nil {
		f.unmap()
		return nil, err
	}
	f.closeFD()
	buf, err := pool.CreateBuffer(0, int32(width), int32(height), int32(stride), wayland.FormatARGB8888)
	if err != nil {
		pool.Destroy()
		f.unmap()
		return nil, err
	}
	buf.OnRelease = onRelease
	return &shmBuffer{file: f, pool: pool, buffer: buf}, nil
}

func (b *WaylandBackend) Present(buf Buffer, damage image.Rectangle, scale int, onFrame func()) error {
	sb := buf.(*shmBuffer)
	s := b.surface
	if scale != b.scale && s.Version() >= 3 {
		if err := s.SetBufferScale(int32(scale)); err != nil {
			return err
		}
		b.scale = scale
	}
	if err := s.Attach(sb.buffer, 0, 0); err != nil {
		return err
	}
	dx, dy, dw, dh := int32(damage.Min.X), int32(damage.Min.Y), int32(damage.Dx()), int32(damage.Dy())
	if s.Version() >= 4 {
		if err := s.DamageBuffer(dx, dy, dw, dh); err != nil {
			return err
		}
	} else {
		sc := int32(max(b.scale, 1))
		if err := s.Damage(dx/sc, dy/sc, (dw+sc-1)/sc, (dh+sc-1)/sc); err != nil {
			return err
		}
	}
	cb, err := s.Frame()
	if err != nil {
		return err
	}
	cb.OnDone = func(uint32) { onFrame() }
	return s.Commit()
}

func (b *WaylandBackend) Close() error {
	if b.layer != nil {
		b.layer.Destroy()
	}
	if b.surface != nil {
		b.surface.Destroy()
	}
	return nil
}
