// Package layer8
// Author: momentics <momentics@gmail.com>

package layer8

import "sync/atomic"

// Stats is a point-in-time copy of a streamer's counters.
type Stats struct {
	FramesRead    uint64 // application frames returned by Read
	FramesWritten uint64 // application frames accepted by Write
	BytesRead     uint64 // wire bytes consumed
	BytesWritten  uint64 // wire bytes produced
	Sealed        uint64 // envelopes encrypted
	Opened        uint64 // envelopes decrypted
	Failures      uint64 // Read/Write/Flush calls that returned an error
}

// counters is safe to read from probe goroutines while the owner writes.
type counters struct {
	framesRead    atomic.Uint64
	framesWritten atomic.Uint64
	bytesRead     atomic.Uint64
	bytesWritten  atomic.Uint64
	sealed        atomic.Uint64
	opened        atomic.Uint64
	failures      atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		FramesRead:    c.framesRead.Load(),
		FramesWritten: c.framesWritten.Load(),
		BytesRead:     c.bytesRead.Load(),
		BytesWritten:  c.bytesWritten.Load(),
		Sealed:        c.sealed.Load(),
		Opened:        c.opened.Load(),
		Failures:      c.failures.Load(),
	}
}
