// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/protocol_test.go
// Summary: Exercises wire framing to keep the message header layout reliable.
// Usage: Executed during `go test` to guard against regressions.

package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestAppendSplitRoundTrip(t *testing.T) {
	payload := []byte{1, 0, 0, 0, 2, 0, 0, 0}

	buf, err := AppendMessage(nil, 7, 3, payload)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if len(buf) != HeaderSize+len(payload) {
		t.Fatalf("expected %d bytes, got %d", HeaderSize+len(payload), len(buf))
	}

	msgs, rest, err := Split(buf)
	if err != nil || len(msgs) != 1 || len(rest) != 0 {
		t.Fatalf("split: %d msgs, %d rest, %v", len(msgs), len(rest), err)
	}
	hdr := msgs[0].Header
	if hdr.ObjectID != 7 || hdr.Opcode != 3 || hdr.Size != 16 {
		t.Fatalf("header mismatch: %+v", hdr)
	}
	if !bytes.Equal(msgs[0].Payload, payload) {
		t.Fatalf("payload mismatch: %v vs %v", msgs[0].Payload, payload)
	}
}

func TestHeaderWordLayout(t *testing.T) {
	buf, err := AppendMessage(nil, 1, 2, make([]byte, 4))
	if err != nil {
		t.Fatal(err)
	}
	word := order.Uint32(buf[4:8])
	if word != 12<<16|2 {
		t.Fatalf("size/opcode word = %#x", word)
	}
}

func TestParseHeaderRejectsBadSize(t *testing.T) {
	buf := make([]byte, HeaderSize)
	order.PutUint32(buf[4:], 6<<16)
	if _, err := ParseHeader(buf); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
	if _, err := ParseHeader(buf[:4]); !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestSplitKeepsPartialTail(t *testing.T) {
	var stream []byte
	stream, _ = AppendMessage(stream, 1, 0, make([]byte, 4))
	stream, _ = AppendMessage(stream, 2, 1, nil)
	full := len(stream)
	stream, _ = AppendMessage(stream, 3, 2, make([]byte, 8))
	partial := stream[:full+HeaderSize+4]

	msgs, rest, err := Split(partial)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 complete messages, got %d", len(msgs))
	}
	if msgs[1].Header.ObjectID != 2 || len(msgs[1].Payload) != 0 {
		t.Fatalf("unexpected second message %+v", msgs[1])
	}
	if len(rest) != HeaderSize+4 {
		t.Fatalf("expected partial tail of %d bytes, got %d", HeaderSize+4, len(rest))
	}
}
