// Copyright 2025 momentics@gmail.com
// License: Apache 2.0

// fuzz_test.go - arbitrary input must never panic the parser or the socket.
package protocol_test

import (
	"errors"
	"io"
	"testing"

	"github.com/momentics/layer8-ws/api"
	"github.com/momentics/layer8-ws/fake"
	"github.com/momentics/layer8-ws/protocol"
)

func FuzzParseFrame(f *testing.F) {
	f.Add([]byte{0x81, 0x05, 'h', 'e', 'l', 'l', 'o'})
	f.Add([]byte{0x82, 0xFE, 0x00, 0x80, 1, 2, 3, 4})
	f.Add([]byte{0x88, 0x02, 0x03, 0xE8})
	f.Fuzz(func(t *testing.T, data []byte) {
		fr, n, err := protocol.ParseFrame(data, protocol.MaskPolicy{}, 1<<20)
		if err != nil {
			if !errors.Is(err, api.ErrProtocol) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}
		if fr == nil {
			return
		}
		if n > len(data) {
			t.Fatalf("consumed %d of %d bytes", n, len(data))
		}
		if err := fr.Validate(); err != nil {
			t.Fatalf("parsed frame fails validation: %v", err)
		}
	})
}

func FuzzReadFrameClient(f *testing.F) {
	f.Add([]byte{0x81, 0x02, 'h', 'i', 0x89, 0x00})
	f.Add([]byte{0x82, 0x7F, 0, 0, 0, 0, 0, 0, 0x01, 0x00})
	f.Fuzz(func(t *testing.T, data []byte) {
		sock := protocol.NewFrameSocket(fake.NewStreamFrom(data), protocol.RoleClient, protocol.Config{MaxReadSize: 1 << 20})
		for i := 0; i < 64; i++ {
			fr, err := sock.ReadFrame(0)
			if err == io.EOF {
				return
			}
			if err != nil {
				return
			}
			if fr == nil {
				t.Fatal("nil frame without error")
			}
		}
	})
}
