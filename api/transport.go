// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Defines the byte-stream abstraction the frame socket runs on top of.
// Any ordered, reliable, bidirectional channel qualifies: TCP connections,
// QUIC streams, in-memory buffers.

package api

import "io"

// Stream is the raw, already-upgraded byte channel owned by a frame socket.
type Stream interface {
	io.Reader
	io.Writer
}

// Flusher is implemented by streams that buffer writes.
type Flusher interface {
	Flush() error
}
