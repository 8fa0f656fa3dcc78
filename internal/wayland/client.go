// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/wayland/client.go
// Summary: Startup binding of the globals a widget needs.
// Usage: Connect dials, performs the registry roundtrip and binds.

package wayland

import (
	"log"

	"github.com/pkg/errors"
)

// Highest versions this package speaks. Binding never exceeds what the
// compositor advertises.
const (
	maxCompositorVersion  = 6
	maxShmVersion         = 1
	maxSeatVersion        = 7
	maxLayerShellVersion  = 4
	maxCursorShapeVersion = 1
)

// ErrMissingGlobal reports a compositor without a required interface.
var ErrMissingGlobal = errors.New("wayland: required global not advertised")

// Client holds the connection and the bound globals.
type Client struct {
	Conn        *Conn
	Registry    *Registry
	Compositor  *Compositor
	Shm         *Shm
	Seat        *Seat
	LayerShell  *LayerShell
	CursorShape *CursorShapeManager
}

// Connect dials the compositor and binds wl_compositor, wl_shm and
// zwlr_layer_shell_v1 (required), plus wl_seat and the cursor-shape
// manager when present.
func Connect() (*Client, error) {
	conn, err := Dial()
	if err != nil {
		return nil, err
	}
	c, err := Setup(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Setup binds globals on an existing connection.
func Setup(conn *Conn) (*Client, error) {
	c := &Client{Conn: conn}
	reg, err := conn.Display().GetRegistry()
	if err != nil {
		return nil, err
	}
	c.Registry = reg

	globals := make(map[string]Global)
	reg.OnGlobal = func(g Global) {
		if _, dup := globals[g.Interface]; !dup {
			globals[g.Interface] = g
		}
	}
	if err := conn.Roundtrip(); err != nil {
		return nil, err
	}
	reg.OnGlobal = nil

	bind := func(iface string, max uint32, obj object, required bool) (bool, error) {
		g, ok := globals[iface]
		if !ok {
			if required {
				return false, errors.Wrap(ErrMissingGlobal, iface)
			}
			return false, nil
		}
		if err := reg.Bind(g, min(g.Version, max), obj); err != nil {
			return false, err
		}
		return true, nil
	}

	c.Compositor = &Compositor{}
	if _, err := bind("wl_compositor", maxCompositorVersion, c.Compositor, true); err != nil {
		return nil, err
	}
	c.Shm = &Shm{}
	if _, err := bind("wl_shm", maxShmVersion, c.Shm, true); err != nil {
		return nil, err
	}
	c.LayerShell = &LayerShell{}
	if _, err := bind("zwlr_layer_shell_v1", maxLayerShellVersion, c.LayerShell, true); err != nil {
		return nil, err
	}
	seat := &Seat{}
	if ok, err := bind("wl_seat", maxSeatVersion, seat, false); err != nil {
		return nil, err
	} else if ok {
		c.Seat = seat
	} else {
		log.Printf("Wayland: no wl_seat, input disabled")
	}
	shape := &CursorShapeManager{}
	if ok, err := bind("wp_cursor_shape_manager_v1", maxCursorShapeVersion, shape, false); err != nil {
		return nil, err
	} else if ok {
		c.CursorShape = shape
	}

	// Collect shm formats and seat capabilities.
	if err := conn.Roundtrip(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.Conn.Close()
}
