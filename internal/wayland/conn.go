// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/wayland/conn.go
// Summary: Compositor connection, object table and event dispatch.
// Usage: Dial once per process; the event loop calls DispatchPending when
//   Ready fires. Only the loop goroutine touches objects.
// Notes: A reader goroutine moves bytes and file descriptors into an inbox;
//   decoding happens on the caller's goroutine so handlers never race with
//   widget state.

package wayland

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/framegrace/texelayer/protocol"
)

const (
	readBufSize = 4096
	maxFDs      = 28
)

var (
	// ErrNoRuntimeDir is returned when neither an absolute WAYLAND_DISPLAY
	// nor XDG_RUNTIME_DIR is available.
	ErrNoRuntimeDir = errors.New("wayland: XDG_RUNTIME_DIR not set")
	// ErrConnClosed reports that the compositor hung up.
	ErrConnClosed = errors.New("wayland: connection closed")
)

// ProtocolError is the payload of wl_display.error. It is always fatal.
type ProtocolError struct {
	ObjectID uint32
	Code     uint32
	Message  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wayland: protocol error on object %d (code %d): %s", e.ObjectID, e.Code, e.Message)
}

// object is implemented by every proxy type.
type object interface {
	base() *Proxy
	Interface() string
	dispatch(opcode uint16, d *protocol.Decoder) error
}

// Proxy is the client-side handle of a protocol object.
type Proxy struct {
	conn    *Conn
	id      uint32
	version uint32
}

func (p *Proxy) base() *Proxy { return p }

func (p *Proxy) ID() uint32 { return p.id }

func (p *Proxy) Version() uint32 { return p.version }

func (p *Proxy) Conn() *Conn { return p.conn }

type chunk struct {
	data []byte
	fds  []int
}

// Conn is a client connection to the compositor.
type Conn struct {
	sock *net.UnixConn

	objects map[uint32]object
	nextID  uint32
	freeIDs []uint32

	mu      sync.Mutex
	inbox   []chunk
	readErr error
	ready   chan struct{}

	pending []byte
	fds     []int
	enc     protocol.Encoder

	display *Display
	debug   bool
}

// SocketPath resolves the compositor socket the way libwayland does.
func SocketPath() (string, error) {
	name := os.Getenv("WAYLAND_DISPLAY")
	if name == "" {
		name = "wayland-0"
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		return "", ErrNoRuntimeDir
	}
	return filepath.Join(dir, name), nil
}

// Dial connects to the compositor named by the environment.
func Dial() (*Conn, error) {
	path, err := SocketPath()
	if err != nil {
		return nil, err
	}
	sock, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, errors.Wrapf(err, "wayland: dial %s", path)
	}
	return NewConn(sock), nil
}

// NewConn wraps an established socket and starts the reader goroutine.
func NewConn(sock *net.UnixConn) *Conn {
	c := &Conn{
		sock:    sock,
		objects: make(map[uint32]object),
		nextID:  1,
		ready:   make(chan struct{}, 1),
		debug:   os.Getenv("TEXELAYER_DEBUG") != "",
	}
	c.display = &Display{}
	c.register(c.display, 1)
	go c.readLoop()
	return c
}

// Display returns the wl_display singleton.
func (c *Conn) Display() *Display { return c.display }

// Ready fires whenever new bytes (or a read error) are waiting in the inbox.
func (c *Conn) Ready() <-chan struct{} { return c.ready }

func (c *Conn) readLoop() {
	buf := make([]byte, readBufSize)
	oob := make([]byte, unix.CmsgSpace(maxFDs*4))
	for {
		n, oobn, _, _, err := c.sock.ReadMsgUnix(buf, oob)
		var fds []int
		if oobn > 0 {
			fds = parseRights(oob[:oobn])
		}
		c.mu.Lock()
		if n > 0 || len(fds) > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			c.inbox = append(c.inbox, chunk{data: data, fds: fds})
		}
		if err == nil && n == 0 {
			err = ErrConnClosed
		}
		if err != nil {
			c.readErr = err
		}
		c.mu.Unlock()
		select {
		case c.ready <- struct{}{}:
		default:
		}
		if err != nil {
			return
		}
	}
}

func parseRights(oob []byte) []int {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		log.Printf("Wayland: bad control message: %v", err)
		return nil
	}
	var fds []int
	for i := range msgs {
		rights, err := unix.ParseUnixRights(&msgs[i])
		if err != nil {
			continue
		}
		fds = append(fds, rights...)
	}
	return fds
}

// NextFD implements protocol.FDSource over the received descriptor queue.
func (c *Conn) NextFD() (int, bool) {
	if len(c.fds) == 0 {
		return -1, false
	}
	fd := c.fds[0]
	c.fds = c.fds[1:]
	return fd, true
}

// DispatchPending decodes and dispatches every complete event already
// received. It never blocks. A read error is returned only after all data
// that preceded it has been dispatched.
func (c *Conn) DispatchPending() error {
	c.mu.Lock()
	inbox := c.inbox
	c.inbox = nil
	readErr := c.readErr
	c.mu.Unlock()

	for _, ch := range inbox {
		c.pending = append(c.pending, ch.data...)
		c.fds = append(c.fds, ch.fds...)
	}
	msgs, rest, err := protocol.Split(c.pending)
	if err != nil {
		return errors.Wrap(err, "wayland: framing")
	}
	for _, m := range msgs {
		if err := c.dispatch(m); err != nil {
			return err
		}
	}
	c.pending = append(c.pending[:0], rest...)
	if readErr != nil {
		return errors.Wrap(readErr, "wayland: read")
	}
	return nil
}

func (c *Conn) dispatch(m protocol.Message) error {
	obj, ok := c.objects[m.Header.ObjectID]
	if !ok {
		// Events racing a destroy request are dropped.
		if c.debug {
			log.Printf("Wayland: event %d for dead object %d", m.Header.Opcode, m.Header.ObjectID)
		}
		return nil
	}
	if c.debug {
		log.Printf("Wayland: <- %s@%d.%d", obj.Interface(), m.Header.ObjectID, m.Header.Opcode)
	}
	d := protocol.NewDecoder(m.Payload, c)
	if err := obj.dispatch(m.Header.Opcode, d); err != nil {
		return err
	}
	if err := d.Err(); err != nil {
		return errors.Wrapf(err, "wayland: decoding %s event %d", obj.Interface(), m.Header.Opcode)
	}
	return nil
}

// Roundtrip blocks until the compositor has processed every request sent
// so far, dispatching events as they arrive. It is meant for startup,
// before the event loop owns the connection.
func (c *Conn) Roundtrip() error {
	cb, err := c.display.Sync()
	if err != nil {
		return err
	}
	done := false
	cb.OnDone = func(uint32) { done = true }
	for !done {
		<-c.ready
		if err := c.DispatchPending(); err != nil {
			return err
		}
	}
	return nil
}

// Close shuts the socket down; the reader goroutine exits on the error.
func (c *Conn) Close() error {
	for _, fd := range c.fds {
		unix.Close(fd)
	}
	c.fds = nil
	return c.sock.Close()
}

func (c *Conn) register(obj object, version uint32) {
	p := obj.base()
	p.conn = c
	p.version = version
	if n := len(c.freeIDs); n > 0 {
		p.id = c.freeIDs[n-1]
		c.freeIDs = c.freeIDs[:n-1]
	} else {
		p.id = c.nextID
		c.nextID++
	}
	c.objects[p.id] = obj
}

// forget removes the object from dispatch. The id is reused only once the
// compositor acknowledges the deletion with delete_id.
func (c *Conn) forget(id uint32) {
	delete(c.objects, id)
}

func (c *Conn) deleteID(id uint32) {
	delete(c.objects, id)
	c.freeIDs = append(c.freeIDs, id)
}

// request sends one message built by fill. fill may be nil for requests
// without arguments.
func (c *Conn) request(p *Proxy, iface string, opcode uint16, fill func(e *protocol.Encoder)) error {
	c.enc.Reset()
	if fill != nil {
		fill(&c.enc)
	}
	if err := c.enc.Err(); err != nil {
		return errors.Wrapf(err, "wayland: encoding %s request %d", iface, opcode)
	}
	msg, err := protocol.AppendMessage(nil, p.id, opcode, c.enc.Bytes())
	if err != nil {
		return errors.Wrapf(err, "wayland: framing %s request %d", iface, opcode)
	}
	var oob []byte
	if fds := c.enc.FDs(); len(fds) > 0 {
		oob = unix.UnixRights(fds...)
	}
	if c.debug {
		log.Printf("Wayland: -> %s@%d.%d", iface, p.id, opcode)
	}
	if _, _, err := c.sock.WriteMsgUnix(msg, oob, nil); err != nil {
		return errors.Wrapf(err, "wayland: sending %s request %d", iface, opcode)
	}
	return nil
}
