// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/messages.go
// Summary: Argument encoding for the Wayland wire format.
// Usage: Encoder builds request payloads, Decoder walks event payloads.

package protocol

import (
	"errors"
	"math"
)

var (
	errStringTooLong = errors.New("protocol: string exceeds 64KB limit")
	errPayloadShort  = errors.New("protocol: payload too short")
	errExtraBytes    = errors.New("protocol: payload has trailing data")
	errNoFD          = errors.New("protocol: event expects a file descriptor but none was received")
)

// Fixed is the signed 24.8 fixed-point number used for surface coordinates
// and scroll values.
type Fixed int32

// FixedFromFloat converts f to 24.8, rounding to the nearest step.
func FixedFromFloat(f float64) Fixed {
	return Fixed(math.Round(f * 256))
}

// FixedFromInt converts an integer to 24.8.
func FixedFromInt(i int) Fixed {
	return Fixed(i << 8)
}

func (f Fixed) Float() float64 { return float64(f) / 256 }

// Int truncates toward negative infinity, matching integer pixel addressing.
func (f Fixed) Int() int { return int(f >> 8) }

func pad4(n int) int { return (n + 3) &^ 3 }

// Encoder accumulates the arguments of a single request. File descriptors
// are collected separately since they travel as ancillary data.
type Encoder struct {
	buf []byte
	fds []int
	err error
}

func (e *Encoder) Uint(v uint32) { e.buf = order.AppendUint32(e.buf, v) }

func (e *Encoder) Int(v int32) { e.buf = order.AppendUint32(e.buf, uint32(v)) }

func (e *Encoder) Fixed(v Fixed) { e.Int(int32(v)) }

// Object encodes an object reference; 0 is the null object.
func (e *Encoder) Object(id uint32) { e.Uint(id) }

func (e *Encoder) NewID(id uint32) { e.Uint(id) }

// String encodes s with its terminating NUL, padded to a word boundary.
func (e *Encoder) String(s string) {
	n := len(s) + 1
	if n > MaxMessageSize {
		e.err = errStringTooLong
		return
	}
	e.Uint(uint32(n))
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, make([]byte, pad4(n)-len(s))...)
}

func (e *Encoder) Array(b []byte) {
	if len(b) > MaxMessageSize {
		e.err = errStringTooLong
		return
	}
	e.Uint(uint32(len(b)))
	e.buf = append(e.buf, b...)
	e.buf = append(e.buf, make([]byte, pad4(len(b))-len(b))...)
}

func (e *Encoder) FD(fd int) { e.fds = append(e.fds, fd) }

func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) FDs() []int { return e.fds }

func (e *Encoder) Err() error { return e.err }

func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
	e.fds = e.fds[:0]
	e.err = nil
}

// FDSource hands out file descriptors received alongside event bytes, in
// the order the compositor sent them.
type FDSource interface {
	NextFD() (int, bool)
}

// Decoder reads event arguments in order. The first failure is sticky:
// subsequent reads return zero values and Err reports it.
type Decoder struct {
	b   []byte
	fds FDSource
	err error
}

func NewDecoder(payload []byte, fds FDSource) *Decoder {
	return &Decoder{b: payload, fds: fds}
}

func (d *Decoder) word() uint32 {
	if d.err != nil {
		return 0
	}
	if len(d.b) < 4 {
		d.err = errPayloadShort
		return 0
	}
	v := order.Uint32(d.b)
	d.b = d.b[4:]
	return v
}

func (d *Decoder) Uint() uint32 { return d.word() }

func (d *Decoder) Int() int32 { return int32(d.word()) }

func (d *Decoder) Fixed() Fixed { return Fixed(d.word()) }

func (d *Decoder) Object() uint32 { return d.word() }

func (d *Decoder) String() string {
	n := int(d.word())
	if d.err != nil || n == 0 {
		return ""
	}
	b := d.Array0(n)
	if len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b)
}

func (d *Decoder) Array() []byte {
	n := int(d.word())
	if d.err != nil {
		return nil
	}
	return d.Array0(n)
}

// Array0 consumes n data bytes plus padding.
func (d *Decoder) Array0(n int) []byte {
	if d.err != nil {
		return nil
	}
	p := pad4(n)
	if len(d.b) < p {
		d.err = errPayloadShort
		return nil
	}
	out := make([]byte, n)
	copy(out, d.b[:n])
	d.b = d.b[p:]
	return out
}

func (d *Decoder) FD() int {
	if d.err != nil {
		return -1
	}
	if d.fds == nil {
		d.err = errNoFD
		return -1
	}
	fd, ok := d.fds.NextFD()
	if !ok {
		d.err = errNoFD
		return -1
	}
	return fd
}

// Skip discards the remaining arguments of an event the caller does not
// decode.
func (d *Decoder) Skip() { d.b = nil }

// Err reports the first decoding failure. Trailing bytes are an error too,
// because they mean the caller disagrees with the sender about the
// message signature.
func (d *Decoder) Err() error {
	if d.err != nil {
		return d.err
	}
	if len(d.b) != 0 {
		return errExtraBytes
	}
	return nil
}
