// File: layer8/streamer.go
// Package layer8 composes a frame socket with an optional end-to-end
// encrypted envelope.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// With a shared secret every application frame is serialized, encrypted,
// wrapped in an envelope and sent as the payload of one final Binary frame.
// The receiver reverses the steps and parses the decrypted bytes as a fresh,
// independent frame stream holding exactly one frame.

package layer8

import (
	"bytes"
	"errors"
	"io"
	"log"

	"github.com/momentics/layer8-ws/api"
	"github.com/momentics/layer8-ws/pool"
	"github.com/momentics/layer8-ws/protocol"
)

// innerBufs holds serialization buffers for inner frames.
var innerBufs = pool.NewSyncPool(func() *bytes.Buffer { return new(bytes.Buffer) })

// maxRetainedInnerBuf caps the buffers returned to innerBufs.
const maxRetainedInnerBuf = 64 << 10

// releaseInnerBuf returns buf to innerBufs unless it grew past the cap.
func releaseInnerBuf(buf *bytes.Buffer) bool {
	if buf.Cap() > maxRetainedInnerBuf {
		return false
	}
	buf.Reset()
	innerBufs.Put(buf)
	return true
}

// Streamer exchanges Messages over one connection.
// It is not safe for concurrent use; Stats may be read from any goroutine.
type Streamer struct {
	sock     *protocol.FrameSocket
	key      api.SymmetricKey
	codec    api.EnvelopeCodec
	observer api.FrameObserver
	logger   *log.Logger
	stats    counters
}

// NewStreamer wraps an already-upgraded stream. role fixes the masking policy.
func NewStreamer(stream io.ReadWriter, role protocol.Role, opts ...Option) *Streamer {
	return newStreamer(stream, role, buildOptions(opts))
}

func newStreamer(stream io.ReadWriter, role protocol.Role, o *options) *Streamer {
	s := &Streamer{
		sock:     protocol.NewFrameSocket(stream, role, o.cfg),
		key:      o.key,
		codec:    o.codec,
		observer: o.observer,
		logger:   o.logger,
	}
	if o.probes != nil {
		o.probes.RegisterProbe(o.probeName, func() any { return s.Stats() })
	}
	s.debugf("new %s streamer, encrypted=%t", role, s.key != nil)
	return s
}

// Role returns the connection role.
func (s *Streamer) Role() protocol.Role { return s.sock.Role() }

// Stream returns the underlying byte stream.
func (s *Streamer) Stream() io.ReadWriter { return s.sock.Stream() }

// Encrypted reports whether a shared secret is set.
func (s *Streamer) Encrypted() bool { return s.key != nil }

// SetSharedSecret sets the key used for both directions. Both peers must
// agree on it before any encrypted frame is exchanged.
func (s *Streamer) SetSharedSecret(key api.SymmetricKey) {
	s.key = key
}

// SetConfig adjusts the socket configuration in place.
func (s *Streamer) SetConfig(fn func(*protocol.Config)) {
	cfg := s.sock.Config()
	fn(&cfg)
	s.sock.SetConfig(cfg)
}

// Stats returns a snapshot of the counters.
func (s *Streamer) Stats() Stats { return s.stats.snapshot() }

// Read returns the next frame as a FrameMessage. It returns (nil, io.EOF) when
// the stream ends cleanly between frames.
func (s *Streamer) Read() (protocol.Message, error) {
	before := s.sock.BytesRead()
	outer, err := s.sock.ReadFrame(0)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, s.fail(err)
	}
	wire := s.sock.BytesRead() - before
	s.stats.bytesRead.Add(wire)

	f := outer
	if s.key != nil {
		if f, err = s.open(outer); err != nil {
			return nil, s.fail(err)
		}
	}
	s.stats.framesRead.Add(1)
	s.observe(api.Inbound, f, int(wire))
	return protocol.FrameMessage{Raw: f}, nil
}

// open recovers the single inner frame carried by an outer frame.
func (s *Streamer) open(outer *protocol.Frame) (*protocol.Frame, error) {
	if outer.Opcode != protocol.OpcodeBinary || !outer.Fin {
		return nil, api.NewError(api.ErrCodeProtocol, ErrUnexpectedOuterFrame.Message).
			WithContext("opcode", outer.Opcode.String()).
			WithContext("fin", outer.Fin)
	}
	ct, err := s.codec.Decode(outer.Payload)
	if err != nil {
		return nil, asKind(err, api.ErrCodeEnvelope, "envelope decode failed")
	}
	plain, err := s.key.Decrypt(ct)
	if err != nil {
		return nil, asKind(err, api.ErrCodeCrypto, "decryption failed")
	}
	s.stats.opened.Add(1)

	r := protocol.NewFrameReader(plain, protocol.MaskPolicy{})
	inner, err := r.Next()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, api.Wrap(api.ErrCodeNestedFrameMissing, "failed to read nested frame", err).
				WithContext("decrypted", len(plain))
		}
		return nil, err
	}
	if n := r.Remaining(); n > 0 {
		return nil, api.NewError(api.ErrCodeProtocol, ErrTrailingInnerBytes.Message).WithContext("trailing", n)
	}
	if !inner.Fin || inner.Opcode == protocol.OpcodeContinuation {
		return nil, ErrFragmentedInner
	}
	s.debugf("opened envelope: %d wire bytes -> %s", len(outer.Payload), inner)
	return inner, nil
}

// Write converts m into exactly one frame and buffers it for sending.
func (s *Streamer) Write(m protocol.Message) error {
	if m == nil {
		return s.fail(ErrNilMessage)
	}
	f := m.Frame()
	if f == nil {
		return s.fail(ErrNilMessage)
	}
	before := s.sock.BytesWritten()
	out := f
	if s.key != nil {
		// The key or codec may alias buf, so it stays checked out until
		// the outer frame has been written.
		buf := innerBufs.Get()
		defer releaseInnerBuf(buf)
		var err error
		if out, err = s.seal(f, buf); err != nil {
			return s.fail(err)
		}
	}
	if err := s.sock.WriteFrame(out); err != nil {
		return s.fail(err)
	}
	wire := s.sock.BytesWritten() - before
	s.stats.bytesWritten.Add(wire)
	s.stats.framesWritten.Add(1)
	s.observe(api.Outbound, f, int(wire))
	return nil
}

// seal wraps f into an outer Binary frame carrying its encrypted encoding.
func (s *Streamer) seal(f *protocol.Frame, buf *bytes.Buffer) (*protocol.Frame, error) {
	if !f.Fin || f.Opcode == protocol.OpcodeContinuation {
		return nil, ErrFragmentedInner
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	inner := *f
	inner.Masked = false
	inner.MaskKey = [4]byte{}

	buf.Reset()
	buf.Grow(inner.WireLen())
	raw := inner.AppendTo(buf.AvailableBuffer())

	ct, err := s.key.Encrypt(raw)
	if err != nil {
		return nil, asKind(err, api.ErrCodeCrypto, "encryption failed")
	}
	payload, err := s.codec.Encode(ct)
	if err != nil {
		return nil, asKind(err, api.ErrCodeEnvelope, "envelope encode failed")
	}
	s.stats.sealed.Add(1)
	s.debugf("sealed %s into %d envelope bytes", f, len(payload))
	return protocol.NewDataFrame(protocol.OpcodeBinary, payload, true), nil
}

// Send writes m and flushes. Flush failures are returned.
func (s *Streamer) Send(m protocol.Message) error {
	if err := s.Write(m); err != nil {
		return err
	}
	return s.Flush()
}

// Flush pushes buffered frames to the stream.
func (s *Streamer) Flush() error {
	if err := s.sock.Flush(); err != nil {
		return s.fail(err)
	}
	return nil
}

// Close sends a Close message with the optional status, flushes and closes
// the stream when it is an io.Closer. The first error wins.
func (s *Streamer) Close(cf *protocol.CloseFrame) error {
	m, err := protocol.NewClose(cf)
	if err == nil {
		err = s.Send(m)
	}
	if c, ok := s.sock.Stream().(io.Closer); ok {
		if cerr := c.Close(); err == nil && cerr != nil {
			err = api.Wrap(api.ErrCodeIO, "close failed", cerr)
		}
	}
	return err
}

func (s *Streamer) fail(err error) error {
	s.stats.failures.Add(1)
	s.debugf("error: %v", err)
	return err
}

func (s *Streamer) observe(dir api.Direction, f *protocol.Frame, wire int) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveFrame(api.FrameEvent{
		Direction: dir,
		Opcode:    byte(f.Opcode),
		WireBytes: wire,
		Payload:   len(f.Payload),
		Encrypted: s.key != nil,
	})
}

func (s *Streamer) debugf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf("layer8: "+format, args...)
	}
}
