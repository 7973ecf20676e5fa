// Copyright 2025 momentics@gmail.com
// License: Apache 2.0

// frame_codec_test.go - frame serialization, parsing and masking.
package protocol_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/momentics/layer8-ws/api"
	"github.com/momentics/layer8-ws/protocol"
)

var lenient = protocol.MaskPolicy{}

func TestFrameRoundTrip(t *testing.T) {
	for _, op := range protocol.OpCodes {
		for _, masked := range []bool{false, true} {
			f := &protocol.Frame{Fin: true, Opcode: op, Payload: []byte("hello"), Masked: masked}
			if masked {
				f.MaskKey = [4]byte{0xde, 0xad, 0xbe, 0xef}
			}
			raw := f.Bytes()
			got, n, err := protocol.ParseFrame(raw, lenient, 0)
			if err != nil {
				t.Fatalf("%s masked=%t: parse failed: %v", op, masked, err)
			}
			if n != len(raw) {
				t.Fatalf("%s: consumed %d, want %d", op, n, len(raw))
			}
			if got.Opcode != op || !got.Fin || got.Masked != masked {
				t.Fatalf("%s: header mismatch: %v", op, got)
			}
			if !bytes.Equal(got.Payload, []byte("hello")) {
				t.Fatalf("%s: payload %q", op, got.Payload)
			}
			if masked && got.MaskKey != f.MaskKey {
				t.Fatalf("mask key %x, want %x", got.MaskKey, f.MaskKey)
			}
		}
	}
}

func TestSerializeDoesNotMutatePayload(t *testing.T) {
	payload := []byte("abcdef")
	f := &protocol.Frame{Fin: true, Opcode: protocol.OpcodeBinary, Masked: true, MaskKey: [4]byte{1, 2, 3, 4}, Payload: payload}
	raw := f.Bytes()
	if !bytes.Equal(payload, []byte("abcdef")) {
		t.Fatalf("payload mutated: %q", payload)
	}
	if bytes.Equal(raw[len(raw)-6:], payload) {
		t.Fatal("payload was not masked on the wire")
	}
}

func TestLengthFieldMinimality(t *testing.T) {
	cases := []struct {
		size      int
		indicator byte
		header    int
	}{
		{0, 0, 2},
		{1, 1, 2},
		{125, 125, 2},
		{126, 126, 4},
		{65535, 126, 4},
		{65536, 127, 10},
		{70000, 127, 10},
	}
	for _, c := range cases {
		f := protocol.NewDataFrame(protocol.OpcodeBinary, make([]byte, c.size), true)
		raw := f.Bytes()
		if raw[1]&protocol.LengthBits != c.indicator {
			t.Fatalf("size %d: indicator %d, want %d", c.size, raw[1]&protocol.LengthBits, c.indicator)
		}
		if len(raw) != c.header+c.size {
			t.Fatalf("size %d: wire length %d, want %d", c.size, len(raw), c.header+c.size)
		}
		if f.WireLen() != len(raw) {
			t.Fatalf("size %d: WireLen %d, encoded %d", c.size, f.WireLen(), len(raw))
		}
		got, _, err := protocol.ParseFrame(raw, lenient, 0)
		if err != nil || len(got.Payload) != c.size {
			t.Fatalf("size %d: parse: %v", c.size, err)
		}
	}
}

func TestParseAcceptsNonMinimalLength(t *testing.T) {
	// 5-byte payload encoded with a 16-bit length, then with a 64-bit length.
	raw16 := []byte{0x82, 126, 0, 5, 'a', 'b', 'c', 'd', 'e'}
	raw64 := []byte{0x82, 127, 0, 0, 0, 0, 0, 0, 0, 5, 'a', 'b', 'c', 'd', 'e'}
	for _, raw := range [][]byte{raw16, raw64} {
		f, n, err := protocol.ParseFrame(raw, lenient, 0)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if n != len(raw) || string(f.Payload) != "abcde" {
			t.Fatalf("got %v consumed %d", f, n)
		}
	}
}

func TestParseIncomplete(t *testing.T) {
	raw := protocol.NewDataFrame(protocol.OpcodeText, make([]byte, 300), true).Bytes()
	for i := 0; i < len(raw); i++ {
		f, n, err := protocol.ParseFrame(raw[:i], lenient, 0)
		if f != nil || n != 0 || err != nil {
			t.Fatalf("prefix %d: got (%v, %d, %v), want incomplete", i, f, n, err)
		}
	}
}

func TestParseRejectsMalformedHeaders(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		want error
	}{
		{"rsv1", []byte{0xC2, 0x00}, protocol.ErrReservedBits},
		{"rsv3", []byte{0x92, 0x00}, protocol.ErrReservedBits},
		{"opcode 3", []byte{0x83, 0x00}, protocol.ErrUnknownOpcode},
		{"opcode 0xB", []byte{0x8B, 0x00}, protocol.ErrUnknownOpcode},
		{"fragmented ping", []byte{0x09, 0x00}, protocol.ErrFragmentedControl},
		{"oversized close", []byte{0x88, 126, 0, 126}, protocol.ErrControlTooLarge},
		{"64-bit msb", []byte{0x82, 127, 0x80, 0, 0, 0, 0, 0, 0, 0}, protocol.ErrIllegalLength},
	}
	for _, c := range cases {
		_, _, err := protocol.ParseFrame(c.raw, lenient, 0)
		if !errors.Is(err, c.want) {
			t.Fatalf("%s: got %v, want %v", c.name, err, c.want)
		}
		if !errors.Is(err, api.ErrProtocol) {
			t.Fatalf("%s: %v is not a protocol error", c.name, err)
		}
	}
}

func TestParseMaskPolicy(t *testing.T) {
	masked := (&protocol.Frame{Fin: true, Opcode: protocol.OpcodeText, Masked: true, Payload: []byte("x")}).Bytes()
	plain := protocol.NewDataFrame(protocol.OpcodeText, []byte("x"), true).Bytes()

	client := protocol.RoleClient.Policy(protocol.DefaultConfig())
	server := protocol.RoleServer.Policy(protocol.DefaultConfig())
	lenientServer := protocol.RoleServer.Policy(protocol.Config{AcceptUnmaskedFrames: true})

	if _, _, err := protocol.ParseFrame(masked, client, 0); !errors.Is(err, protocol.ErrMaskedFrame) {
		t.Fatalf("client accepted masked frame: %v", err)
	}
	if _, _, err := protocol.ParseFrame(plain, client, 0); err != nil {
		t.Fatalf("client rejected plain frame: %v", err)
	}
	if _, _, err := protocol.ParseFrame(plain, server, 0); !errors.Is(err, protocol.ErrUnmaskedFrame) {
		t.Fatalf("server accepted unmasked frame: %v", err)
	}
	if _, _, err := protocol.ParseFrame(masked, server, 0); err != nil {
		t.Fatalf("server rejected masked frame: %v", err)
	}
	if _, _, err := protocol.ParseFrame(plain, lenientServer, 0); err != nil {
		t.Fatalf("lenient server rejected unmasked frame: %v", err)
	}
}

func TestParseSizeLimit(t *testing.T) {
	raw := protocol.NewDataFrame(protocol.OpcodeBinary, make([]byte, 200), true).Bytes()
	// Only the header is present: the limit must trip before the payload arrives.
	_, _, err := protocol.ParseFrame(raw[:4], lenient, 100)
	if !errors.Is(err, protocol.ErrFrameTooLarge) {
		t.Fatalf("got %v, want ErrFrameTooLarge", err)
	}
	if _, _, err := protocol.ParseFrame(raw, lenient, uint64(len(raw))); err != nil {
		t.Fatalf("frame at the limit rejected: %v", err)
	}
}

func TestMaskInvolution(t *testing.T) {
	payloads := [][]byte{nil, []byte("a"), []byte("abcd"), []byte("abcdefghijk"), bytes.Repeat([]byte{0xff}, 1025)}
	for _, p := range payloads {
		key := protocol.NewMaskKey()
		buf := append([]byte(nil), p...)
		protocol.MaskBytes(buf, key)
		protocol.MaskBytes(buf, key)
		if !bytes.Equal(buf, p) {
			t.Fatalf("mask twice with %x changed %q into %q", key, p, buf)
		}
	}
}
