// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/protocol.go
// Summary: Wayland wire framing: the 8-byte message header.
// Usage: Used by internal/wayland to frame requests and split inbound events.

package protocol

import (
	"encoding/binary"
	"errors"
)

const (
	// HeaderSize is the fixed size of every message header.
	HeaderSize = 8
	// MaxMessageSize is the largest message the 16-bit size field can carry.
	MaxMessageSize = 1<<16 - 1
)

// Header describes the fixed portion of every message on the wire: the
// target object, the request or event opcode, and the total message size
// including the header itself.
type Header struct {
	ObjectID uint32
	Opcode   uint16
	Size     uint16
}

// PayloadLen returns the number of argument bytes following the header.
func (h Header) PayloadLen() int {
	return int(h.Size) - HeaderSize
}

var (
	ErrShortHeader     = errors.New("protocol: short header")
	ErrInvalidSize     = errors.New("protocol: invalid message size")
	ErrMessageTooLarge = errors.New("protocol: message exceeds 64KB limit")
	ErrUnaligned       = errors.New("protocol: payload not 32-bit aligned")
)

// order is the host byte order; the wire format is native-endian.
var order = binary.NativeEndian

// ParseHeader decodes a header from the first HeaderSize bytes of b.
func ParseHeader(b []byte) (Header, error) {
	var hdr Header
	if len(b) < HeaderSize {
		return hdr, ErrShortHeader
	}
	hdr.ObjectID = order.Uint32(b[0:4])
	word := order.Uint32(b[4:8])
	hdr.Opcode = uint16(word & 0xffff)
	hdr.Size = uint16(word >> 16)
	if hdr.Size < HeaderSize || hdr.Size%4 != 0 {
		return hdr, ErrInvalidSize
	}
	return hdr, nil
}

// AppendMessage appends a framed message to dst and returns the extended
// slice. The payload must already be padded to 32-bit words.
func AppendMessage(dst []byte, objectID uint32, opcode uint16, payload []byte) ([]byte, error) {
	size := HeaderSize + len(payload)
	if size > MaxMessageSize {
		return dst, ErrMessageTooLarge
	}
	if len(payload)%4 != 0 {
		return dst, ErrUnaligned
	}
	dst = order.AppendUint32(dst, objectID)
	dst = order.AppendUint32(dst, uint32(size)<<16|uint32(opcode))
	return append(dst, payload...), nil
}

// Split carves complete messages off the front of buf. It returns the
// messages found and the unconsumed tail, which holds a partial message
// when the socket read ended mid-frame.
func Split(buf []byte) (msgs []Message, rest []byte, err error) {
	for len(buf) >= HeaderSize {
		hdr, err := ParseHeader(buf)
		if err != nil {
			return msgs, buf, err
		}
		if len(buf) < int(hdr.Size) {
			break
		}
		msgs = append(msgs, Message{Header: hdr, Payload: buf[HeaderSize:hdr.Size]})
		buf = buf[hdr.Size:]
	}
	return msgs, buf, nil
}

// Message pairs a parsed header with its argument bytes.
type Message struct {
	Header  Header
	Payload []byte
}
