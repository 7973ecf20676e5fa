// File: protocol/config.go
// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

// Config tunes a FrameSocket.
type Config struct {
	// AcceptUnmaskedFrames lets a server accept unmasked client frames.
	AcceptUnmaskedFrames bool
	// MaxReadSize bounds the size of a single frame read from the wire.
	MaxReadSize uint64
	// ReadBufferSize is the chunk size used for each read from the stream.
	ReadBufferSize int
	// WriteBufferSize sizes the buffered writer in front of the stream.
	WriteBufferSize int
}

// DefaultConfig returns the baseline socket configuration.
func DefaultConfig() Config {
	return Config{
		MaxReadSize:     DefaultMaxReadSize,
		ReadBufferSize:  defaultReadBufferSize,
		WriteBufferSize: defaultWriteBufferSize,
	}
}

// normalized fills zero fields with defaults.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.MaxReadSize == 0 {
		c.MaxReadSize = d.MaxReadSize
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize <= 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	return c
}
