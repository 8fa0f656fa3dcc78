// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/wayland/layershell.go
// Summary: zwlr_layer_shell_v1 and wp_cursor_shape_v1 proxies.

package wayland

import (
	"github.com/framegrace/texelayer/protocol"
)

const (
	LayerBackground = 0
	LayerBottom     = 1
	LayerTop        = 2
	LayerOverlay    = 3

	AnchorTop    = 1
	AnchorBottom = 2
	AnchorLeft   = 4
	AnchorRight  = 8

	KeyboardInteractivityNone      = 0
	KeyboardInteractivityExclusive = 1
	KeyboardInteractivityOnDemand  = 2
)

const opLayerShellGetLayerSurface = 0

type LayerShell struct {
	Proxy
}

func (*LayerShell) Interface() string { return "zwlr_layer_shell_v1" }

func (*LayerShell) dispatch(uint16, *protocol.Decoder) error { return nil }

// GetLayerSurface assigns the layer role to s. A zero output lets the
// compositor pick one.
func (l *LayerShell) GetLayerSurface(s *Surface, output uint32, layer uint32, namespace string) (*LayerSurface, error) {
	ls := &LayerSurface{}
	l.conn.register(ls, l.version)
	return ls, l.conn.request(&l.Proxy, l.Interface(), opLayerShellGetLayerSurface, func(e *protocol.Encoder) {
		e.NewID(ls.id)
		e.Object(s.id)
		e.Object(output)
		e.Uint(layer)
		e.String(namespace)
	})
}

const (
	opLayerSurfaceSetSize                  = 0
	opLayerSurfaceSetAnchor                = 1
	opLayerSurfaceSetExclusiveZone         = 2
	opLayerSurfaceSetMargin                = 3
	opLayerSurfaceSetKeyboardInteractivity = 4
	opLayerSurfaceAckConfigure             = 6
	opLayerSurfaceDestroy                  = 7

	evLayerSurfaceConfigure = 0
	evLayerSurfaceClosed    = 1
)

type LayerSurface struct {
	Proxy
	OnConfigure func(serial, width, height uint32)
	OnClosed    func()
}

func (*LayerSurface) Interface() string { return "zwlr_layer_surface_v1" }

func (ls *LayerSurface) dispatch(opcode uint16, d *protocol.Decoder) error {
	switch opcode {
	case evLayerSurfaceConfigure:
		serial, w, h := d.Uint(), d.Uint(), d.Uint()
		if d.Err() != nil {
			return nil
		}
		if ls.OnConfigure != nil {
			ls.OnConfigure(serial, w, h)
		}
	case evLayerSurfaceClosed:
		if ls.OnClosed != nil {
			ls.OnClosed()
		}
	}
	return nil
}

func (ls *LayerSurface) SetSize(w, h uint32) error {
	return ls.conn.request(&ls.Proxy, ls.Interface(), opLayerSurfaceSetSize, func(e *protocol.Encoder) {
		e.Uint(w)
		e.Uint(h)
	})
}

func (ls *LayerSurface) SetAnchor(anchor uint32) error {
	return ls.conn.request(&ls.Proxy, ls.Interface(), opLayerSurfaceSetAnchor, func(e *protocol.Encoder) {
		e.Uint(anchor)
	})
}

func (ls *LayerSurface) SetExclusiveZone(zone int32) error {
	return ls.conn.request(&ls.Proxy, ls.Interface(), opLayerSurfaceSetExclusiveZone, func(e *protocol.Encoder) {
		e.Int(zone)
	})
}

func (ls *LayerSurface) SetMargin(top, right, bottom, left int32) error {
	return ls.conn.request(&ls.Proxy, ls.Interface(), opLayerSurfaceSetMargin, func(e *protocol.Encoder) {
		e.Int(top)
		e.Int(right)
		e.Int(bottom)
		e.Int(left)
	})
}

// SetKeyboardInteractivity: on-demand needs version 4; callers downgrade.
func (ls *LayerSurface) SetKeyboardInteractivity(mode uint32) error {
	return ls.conn.request(&ls.Proxy, ls.Interface(), opLayerSurfaceSetKeyboardInteractivity, func(e *protocol.Encoder) {
		e.Uint(mode)
	})
}

func (ls *LayerSurface) AckConfigure(serial uint32) error {
	return ls.conn.request(&ls.Proxy, ls.Interface(), opLayerSurfaceAckConfigure, func(e *protocol.Encoder) {
		e.Uint(serial)
	})
}

func (ls *LayerSurface) Destroy() error {
	ls.conn.forget(ls.id)
	return ls.conn.request(&ls.Proxy, ls.Interface(), opLayerSurfaceDestroy, nil)
}

const (
	opCursorShapeManagerGetPointer = 1
	opCursorShapeDeviceSetShape    = 1

	// CursorShapeDefault is the plain arrow.
	CursorShapeDefault = 1
	CursorShapePointer = 4
)

type CursorShapeManager struct {
	Proxy
}

func (*CursorShapeManager) Interface() string { return "wp_cursor_shape_manager_v1" }

func (*CursorShapeManager) dispatch(uint16, *protocol.Decoder) error { return nil }

func (m *CursorShapeManager) GetPointer(p *Pointer) (*CursorShapeDevice, error) {
	dev := &CursorShapeDevice{}
	m.conn.register(dev, m.version)
	return dev, m.conn.request(&m.Proxy, m.Interface(), opCursorShapeManagerGetPointer, func(e *protocol.Encoder) {
		e.NewID(dev.id)
		e.Object(p.id)
	})
}

type CursorShapeDevice struct {
	Proxy
}

func (*CursorShapeDevice) Interface() string { return "wp_cursor_shape_device_v1" }

func (*CursorShapeDevice) dispatch(uint16, *protocol.Decoder) error { return nil }

// SetShape must carry the serial of the latest pointer enter.
func (d *CursorShapeDevice) SetShape(serial, shape uint32) error {
	return d.conn.request(&d.Proxy, d.Interface(), opCursorShapeDeviceSetShape, func(e *protocol.Encoder) {
		e.Uint(serial)
		e.Uint(shape)
	})
}
