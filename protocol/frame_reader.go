// Package protocol
// Author: momentics <momentics@gmail.com>

package protocol

import "io"

// FrameReader parses frames out of a byte slice it owns.
// It shares no state with any FrameSocket.
type FrameReader struct {
	buf    []byte
	off    int
	policy MaskPolicy
}

// NewFrameReader takes ownership of buf.
func NewFrameReader(buf []byte, policy MaskPolicy) *FrameReader {
	return &FrameReader{buf: buf, policy: policy}
}

// Next returns the next frame. It returns io.EOF once every byte has been
// consumed and io.ErrUnexpectedEOF if the remaining bytes hold only part
// of a frame.
func (r *FrameReader) Next() (*Frame, error) {
	if r.off == len(r.buf) {
		return nil, io.EOF
	}
	f, n, err := ParseFrame(r.buf[r.off:], r.policy, 0)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, io.ErrUnexpectedEOF
	}
	r.off += n
	return f, nil
}

// Remaining returns the number of unconsumed bytes.
func (r *FrameReader) Remaining() int { return len(r.buf) - r.off }
