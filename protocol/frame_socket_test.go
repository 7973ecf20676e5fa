// Copyright 2025 momentics@gmail.com
// License: Apache 2.0

// frame_socket_test.go - buffered frame reads and writes over fake streams.
package protocol_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/momentics/layer8-ws/api"
	"github.com/momentics/layer8-ws/fake"
	"github.com/momentics/layer8-ws/protocol"
)

func TestFrameSocketClientServer(t *testing.T) {
	a, b := fake.Pipe()
	client := protocol.NewFrameSocket(a, protocol.RoleClient, protocol.DefaultConfig())
	server := protocol.NewFrameSocket(b, protocol.RoleServer, protocol.DefaultConfig())

	if err := client.WriteFrame(protocol.NewDataFrame(protocol.OpcodeText, []byte("hello"), true)); err != nil {
		t.Fatalf("client write: %v", err)
	}
	if err := client.Flush(); err != nil {
		t.Fatalf("client flush: %v", err)
	}
	if a.Flushes() != 1 {
		t.Fatalf("stream flushed %d times, want 1", a.Flushes())
	}

	f, err := server.ReadFrame(0)
	if err != nil {
		t.Fatalf("server read: %v", err)
	}
	if !f.Masked {
		t.Fatal("client frame arrived unmasked")
	}
	if string(f.Payload) != "hello" {
		t.Fatalf("payload %q", f.Payload)
	}

	if err := server.WriteFrame(protocol.NewDataFrame(protocol.OpcodeBinary, []byte("world"), true)); err != nil {
		t.Fatalf("server write: %v", err)
	}
	if err := server.Flush(); err != nil {
		t.Fatalf("server flush: %v", err)
	}
	f, err = client.ReadFrame(0)
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	if f.Masked || string(f.Payload) != "world" {
		t.Fatalf("unexpected server frame %v %q", f, f.Payload)
	}
	if client.BytesWritten() != server.BytesRead() {
		t.Fatalf("byte accounting: wrote %d, read %d", client.BytesWritten(), server.BytesRead())
	}
}

func TestFrameSocketFreshMaskPerFrame(t *testing.T) {
	s := fake.NewStream()
	client := protocol.NewFrameSocket(s, protocol.RoleClient, protocol.DefaultConfig())
	seen := map[[4]byte]bool{}
	for i := 0; i < 16; i++ {
		if err := client.WriteFrame(protocol.NewDataFrame(protocol.OpcodeBinary, []byte("x"), true)); err != nil {
			t.Fatal(err)
		}
	}
	client.Flush()
	raw := s.Drain()
	r := protocol.NewFrameReader(raw, protocol.MaskPolicy{RequireMasked: true})
	for {
		f, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		seen[f.MaskKey] = true
	}
	if len(seen) < 2 {
		t.Fatalf("mask key reused across frames: %d distinct keys", len(seen))
	}
}

func TestFrameSocketReassemblesPartialReads(t *testing.T) {
	var wire []byte
	payloads := [][]byte{[]byte("one"), bytes.Repeat([]byte("x"), 300), bytes.Repeat([]byte("y"), 70000), nil}
	for _, p := range payloads {
		wire = append(wire, protocol.NewDataFrame(protocol.OpcodeBinary, p, true).Bytes()...)
	}
	for _, chunk := range []int{1, 3, 7, 4096} {
		s := fake.NewStreamFrom(wire)
		s.SetReadChunk(chunk)
		sock := protocol.NewFrameSocket(s, protocol.RoleClient, protocol.Config{ReadBufferSize: 16})
		for i, p := range payloads {
			f, err := sock.ReadFrame(0)
			if err != nil {
				t.Fatalf("chunk %d frame %d: %v", chunk, i, err)
			}
			if !bytes.Equal(f.Payload, p) {
				t.Fatalf("chunk %d frame %d: payload length %d, want %d", chunk, i, len(f.Payload), len(p))
			}
		}
		if f, err := sock.ReadFrame(0); f != nil || err != io.EOF {
			t.Fatalf("chunk %d: got (%v, %v), want (nil, io.EOF)", chunk, f, err)
		}
	}
}

func TestFrameSocketCleanEOF(t *testing.T) {
	sock := protocol.NewFrameSocket(fake.NewStream(), protocol.RoleServer, protocol.DefaultConfig())
	f, err := sock.ReadFrame(0)
	if f != nil || err != io.EOF {
		t.Fatalf("got (%v, %v), want (nil, io.EOF)", f, err)
	}
}

func TestFrameSocketEOFInsideFrame(t *testing.T) {
	raw := protocol.NewDataFrame(protocol.OpcodeBinary, []byte("truncated"), true).Bytes()
	sock := protocol.NewFrameSocket(fake.NewStreamFrom(raw[:5]), protocol.RoleClient, protocol.DefaultConfig())
	_, err := sock.ReadFrame(0)
	if !errors.Is(err, api.ErrIO) {
		t.Fatalf("got %v, want an io error", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("got %v, want io.ErrUnexpectedEOF cause", err)
	}
}

func TestFrameSocketReadError(t *testing.T) {
	boom := errors.New("boom")
	s := fake.NewStream()
	s.SetReadError(boom)
	sock := protocol.NewFrameSocket(s, protocol.RoleClient, protocol.DefaultConfig())
	_, err := sock.ReadFrame(0)
	if !errors.Is(err, boom) || api.CodeOf(err) != api.ErrCodeIO {
		t.Fatalf("got %v, want wrapped io error", err)
	}
}

func TestFrameSocketSizeLimit(t *testing.T) {
	raw := protocol.NewDataFrame(protocol.OpcodeBinary, make([]byte, 1000), true).Bytes()
	sock := protocol.NewFrameSocket(fake.NewStreamFrom(raw), protocol.RoleClient, protocol.Config{MaxReadSize: 512})
	if _, err := sock.ReadFrame(0); !errors.Is(err, protocol.ErrFrameTooLarge) {
		t.Fatalf("config limit: got %v", err)
	}

	sock = protocol.NewFrameSocket(fake.NewStreamFrom(raw), protocol.RoleClient, protocol.DefaultConfig())
	if _, err := sock.ReadFrame(100); !errors.Is(err, protocol.ErrFrameTooLarge) {
		t.Fatalf("per-call limit: got %v", err)
	}
}

func TestFrameSocketWriteValidates(t *testing.T) {
	sock := protocol.NewFrameSocket(fake.NewStream(), protocol.RoleServer, protocol.DefaultConfig())
	bad := []*protocol.Frame{
		{Fin: false, Opcode: protocol.OpcodePing},
		{Fin: true, Opcode: protocol.OpcodePong, Payload: make([]byte, 126)},
		{Fin: true, Opcode: protocol.OpCode(0x3)},
		{Fin: true, Rsv: 1, Opcode: protocol.OpcodeText},
	}
	for _, f := range bad {
		if err := sock.WriteFrame(f); !errors.Is(err, api.ErrProtocol) {
			t.Fatalf("%v: got %v, want protocol error", f, err)
		}
	}
	if err := sock.WriteFrame(nil); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("nil frame: got %v", err)
	}
}

func TestFrameSocketWriteAndFlushErrors(t *testing.T) {
	boom := errors.New("boom")
	s := fake.NewStream()
	s.SetFlushError(boom)
	sock := protocol.NewFrameSocket(s, protocol.RoleServer, protocol.DefaultConfig())
	if err := sock.WriteFrame(protocol.NewDataFrame(protocol.OpcodeText, []byte("a"), true)); err != nil {
		t.Fatalf("buffered write failed: %v", err)
	}
	if err := sock.Flush(); !errors.Is(err, boom) || !errors.Is(err, api.ErrIO) {
		t.Fatalf("flush: got %v", err)
	}

	s = fake.NewStream()
	s.SetWriteError(boom)
	sock = protocol.NewFrameSocket(s, protocol.RoleServer, protocol.DefaultConfig())
	sock.WriteFrame(protocol.NewDataFrame(protocol.OpcodeText, []byte("a"), true))
	if err := sock.Flush(); !errors.Is(err, boom) {
		t.Fatalf("flush over failing writer: got %v", err)
	}
}

func TestFrameSocketSetConfig(t *testing.T) {
	raw := (&protocol.Frame{Fin: true, Opcode: protocol.OpcodeText, Payload: []byte("hi")}).Bytes()
	sock := protocol.NewFrameSocket(fake.NewStreamFrom(raw, raw), protocol.RoleServer, protocol.DefaultConfig())
	if _, err := sock.ReadFrame(0); !errors.Is(err, protocol.ErrUnmaskedFrame) {
		t.Fatalf("default server accepted unmasked frame: %v", err)
	}
	cfg := sock.Config()
	cfg.AcceptUnmaskedFrames = true
	sock.SetConfig(cfg)
	if f, err := sock.ReadFrame(0); err != nil || string(f.Payload) != "hi" {
		t.Fatalf("lenient server: %v %v", f, err)
	}
}

func TestFrameReader(t *testing.T) {
	one := protocol.NewDataFrame(protocol.OpcodeText, []byte("one"), true).Bytes()
	two := protocol.NewDataFrame(protocol.OpcodeText, []byte("two"), true).Bytes()
	buf := append(append([]byte{}, one...), two...)

	r := protocol.NewFrameReader(buf, protocol.MaskPolicy{})
	for _, want := range []string{"one", "two"} {
		f, err := r.Next()
		if err != nil || string(f.Payload) != want {
			t.Fatalf("got %v %v, want %q", f, err, want)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("got %v, want io.EOF", err)
	}

	r = protocol.NewFrameReader(two[:len(two)-1], protocol.MaskPolicy{})
	if _, err := r.Next(); err != io.ErrUnexpectedEOF {
		t.Fatalf("got %v, want io.ErrUnexpectedEOF", err)
	}
	if r.Remaining() != len(two)-1 {
		t.Fatalf("remaining %d", r.Remaining())
	}
}
