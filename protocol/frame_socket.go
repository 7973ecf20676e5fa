// File: protocol/frame_socket.go
// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FrameSocket turns a byte stream into discrete frames and back.
// It is not safe for concurrent use; one goroutine owns one socket.

package protocol

import (
	"bufio"
	"errors"
	"io"

	"github.com/momentics/layer8-ws/api"
)

// maxEmptyReads bounds consecutive (0, nil) reads before giving up.
const maxEmptyReads = 100

// maxRetainedWriteBuf caps the encode buffer kept between writes.
const maxRetainedWriteBuf = 64 << 10

// FrameSocket reads and writes whole frames over a stream.
type FrameSocket struct {
	stream api.Stream
	role   Role
	cfg    Config
	policy MaskPolicy

	in    []byte // inbound bytes, in[off:] not yet consumed
	off   int
	chunk []byte
	rerr  error // read error deferred until buffered frames are drained

	w    *bufio.Writer
	wbuf []byte

	bytesRead    uint64
	bytesWritten uint64
}

// NewFrameSocket wraps stream. Zero fields in cfg take their defaults.
func NewFrameSocket(stream io.ReadWriter, role Role, cfg Config) *FrameSocket {
	cfg = cfg.normalized()
	return &FrameSocket{
		stream: stream,
		role:   role,
		cfg:    cfg,
		policy: role.Policy(cfg),
		chunk:  make([]byte, cfg.ReadBufferSize),
		w:      bufio.NewWriterSize(stream, cfg.WriteBufferSize),
	}
}

// Stream returns the underlying stream.
func (s *FrameSocket) Stream() io.ReadWriter { return s.stream }

// Role returns the role fixed at construction.
func (s *FrameSocket) Role() Role { return s.role }

// Config returns the effective configuration.
func (s *FrameSocket) Config() Config { return s.cfg }

// SetConfig replaces the configuration. WriteBufferSize only applies at
// construction time.
func (s *FrameSocket) SetConfig(cfg Config) {
	cfg = cfg.normalized()
	if cfg.ReadBufferSize != len(s.chunk) {
		s.chunk = make([]byte, cfg.ReadBufferSize)
	}
	s.cfg = cfg
	s.policy = s.role.Policy(cfg)
}

// Buffered returns the number of inbound bytes read but not yet consumed.
func (s *FrameSocket) Buffered() int { return len(s.in) - s.off }

// BytesRead returns the wire bytes consumed by returned frames.
func (s *FrameSocket) BytesRead() uint64 { return s.bytesRead }

// BytesWritten returns the wire bytes handed to the writer.
func (s *FrameSocket) BytesWritten() uint64 { return s.bytesWritten }

// ReadFrame blocks until one complete frame is available.
//
// It returns (nil, io.EOF) when the stream ends cleanly with no partial frame
// buffered. limit bounds header plus payload; zero means Config.MaxReadSize.
func (s *FrameSocket) ReadFrame(limit uint64) (*Frame, error) {
	if limit == 0 {
		limit = s.cfg.MaxReadSize
	}
	empty := 0
	for {
		f, n, err := ParseFrame(s.in[s.off:], s.policy, limit)
		if err != nil {
			return nil, err
		}
		if f != nil {
			s.consume(n)
			return f, nil
		}

		if s.rerr != nil {
			err := s.rerr
			s.rerr = nil
			return nil, s.readFailure(err)
		}

		s.compact()
		n, err = s.stream.Read(s.chunk)
		if n > 0 {
			s.in = append(s.in, s.chunk[:n]...)
			empty = 0
		}
		if err != nil {
			s.rerr = err
			continue
		}
		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return nil, api.Wrap(api.ErrCodeIO, "read failed", io.ErrNoProgress)
			}
		}
	}
}

func (s *FrameSocket) readFailure(err error) error {
	if !errors.Is(err, io.EOF) {
		return api.Wrap(api.ErrCodeIO, "read failed", err)
	}
	if s.Buffered() == 0 {
		return io.EOF
	}
	return api.Wrap(api.ErrCodeIO, "stream ended inside a frame", io.ErrUnexpectedEOF).
		WithContext("buffered", s.Buffered())
}

func (s *FrameSocket) consume(n int) {
	s.off += n
	s.bytesRead += uint64(n)
	if s.off == len(s.in) {
		s.in = s.in[:0]
		s.off = 0
	}
}

// compact moves unconsumed bytes to the front of the buffer.
func (s *FrameSocket) compact() {
	if s.off == 0 {
		return
	}
	n := copy(s.in, s.in[s.off:])
	s.in = s.in[:n]
	s.off = 0
}

// WriteFrame validates and serializes one frame into the write buffer,
// applying the role's masking policy. Call Flush to push it to the stream.
func (s *FrameSocket) WriteFrame(f *Frame) error {
	if f == nil {
		return api.NewError(api.ErrCodeInvalidArgument, "nil frame")
	}
	if err := f.Validate(); err != nil {
		return err
	}
	out := *f
	out.Masked = s.policy.MaskOutbound
	if out.Masked {
		out.MaskKey = NewMaskKey()
	} else {
		out.MaskKey = [4]byte{}
	}

	s.wbuf = out.AppendTo(s.wbuf[:0])
	n, err := s.w.Write(s.wbuf)
	s.bytesWritten += uint64(n)
	if cap(s.wbuf) > maxRetainedWriteBuf {
		s.wbuf = nil
	}
	if err != nil {
		return api.Wrap(api.ErrCodeIO, "write failed", err)
	}
	return nil
}

// Flush pushes buffered frames to the stream and then flushes the stream
// itself when it supports it.
func (s *FrameSocket) Flush() error {
	if err := s.w.Flush(); err != nil {
		return api.Wrap(api.ErrCodeIO, "flush failed", err)
	}
	if fl, ok := s.stream.(api.Flusher); ok {
		if err := fl.Flush(); err != nil {
			return api.Wrap(api.ErrCodeIO, "flush failed", err)
		}
	}
	return nil
}
