// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake byte streams for testing and development.
// Provides predictable, controllable behavior for the frame socket and
// streamer: chunked delivery, injected failures, flush accounting.

package fake

import (
	"io"
	"sync"

	"github.com/eapache/queue"
)

// chunks is a FIFO of byte slices shared between the two ends of a pipe.
type chunks struct {
	mu sync.Mutex
	q  *queue.Queue
}

func newChunks() *chunks { return &chunks{q: queue.New()} }

func (c *chunks) push(b []byte) {
	if len(b) == 0 {
		return
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	c.mu.Lock()
	c.q.Add(cp)
	c.mu.Unlock()
}

func (c *chunks) pop() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.q.Length() == 0 {
		return nil, false
	}
	return c.q.Remove().([]byte), true
}

func (c *chunks) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.q.Length()
}

// Stream is an in-memory api.Stream.
//
// Reads drain whatever has been written or fed so far and report io.EOF when
// nothing is pending, like a rewound in-memory buffer. Each write is kept as
// a separate chunk so tests can observe and tamper with individual writes.
type Stream struct {
	mu        sync.Mutex
	in        *chunks
	out       *chunks
	head      []byte
	readChunk int
	closed    bool
	readErr   error
	writeErr  error
	flushErr  error
	flushes   int
	written   int
}

// NewStream returns a loopback stream: bytes written are read back.
func NewStream() *Stream {
	c := newChunks()
	return &Stream{in: c, out: c}
}

// NewStreamFrom returns a stream whose read side is preloaded with data.
func NewStreamFrom(data ...[]byte) *Stream {
	s := NewStream()
	for _, d := range data {
		s.Feed(d)
	}
	return s
}

// Pipe returns two connected streams: writes on one are read on the other.
func Pipe() (*Stream, *Stream) {
	ab, ba := newChunks(), newChunks()
	return &Stream{in: ba, out: ab}, &Stream{in: ab, out: ba}
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return 0, s.readErr
	}
	if len(s.head) == 0 {
		next, ok := s.in.pop()
		if !ok {
			return 0, io.EOF
		}
		s.head = next
	}
	n := len(p)
	if s.readChunk > 0 && n > s.readChunk {
		n = s.readChunk
	}
	n = copy(p[:n], s.head)
	s.head = s.head[n:]
	return n, nil
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	s.out.push(p)
	s.written += len(p)
	return len(p), nil
}

// Flush counts flushes and returns the injected flush error, if any.
func (s *Stream) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return s.flushErr
}

// Close implements io.Closer. Pending inbound bytes remain readable.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Feed appends data to the read side.
func (s *Stream) Feed(data []byte) {
	s.in.push(data)
}

// Drain removes and concatenates every chunk written so far that the peer
// (or, for a loopback stream, this stream) has not read yet.
func (s *Stream) Drain() []byte {
	var out []byte
	for {
		b, ok := s.out.pop()
		if !ok {
			return out
		}
		out = append(out, b...)
	}
}

// Pending returns the number of unread chunks on the write side.
func (s *Stream) Pending() int { return s.out.len() }

// SetReadChunk limits every Read to at most n bytes; zero removes the limit.
func (s *Stream) SetReadChunk(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readChunk = n
}

// SetReadError configures the stream to return err on Read.
func (s *Stream) SetReadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// SetWriteError configures the stream to return err on Write.
func (s *Stream) SetWriteError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// SetFlushError configures the stream to return err on Flush.
func (s *Stream) SetFlushError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushErr = err
}

// Flushes returns how many times Flush was called.
func (s *Stream) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}

// Written returns the total bytes accepted by Write.
func (s *Stream) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// Closed reports whether Close was called.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
