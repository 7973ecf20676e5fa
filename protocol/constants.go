// Package protocol
// Author: momentics <momentics@gmail.com>
//
// WebSocket wire protocol constants

package protocol

const (
	// Frame limit settings
	MaxControlPayloadLen = 125
	MaxFrameHeaderLen    = 14 // for extended payloads with masking

	// Bit masks
	FinBit     = 0x80
	RsvBits    = 0x70
	OpcodeBits = 0x0F
	MaskBit    = 0x80
	LengthBits = 0x7F

	// Length indicators
	len16 = 126
	len64 = 127

	// DefaultMaxReadSize bounds a single logical read (1 GiB).
	DefaultMaxReadSize = 1 << 30

	defaultReadBufferSize  = 4096
	defaultWriteBufferSize = 4096
)

// CloseCode is the status code carried by a Close frame.
type CloseCode uint16

// Close codes
const (
	CloseNormalClosure      CloseCode = 1000
	CloseGoingAway          CloseCode = 1001
	CloseProtocolError      CloseCode = 1002
	CloseUnsupportedData    CloseCode = 1003
	CloseNoStatusRcvd       CloseCode = 1005
	CloseAbnormalClosure    CloseCode = 1006
	CloseInvalidPayloadData CloseCode = 1007
	ClosePolicyViolation    CloseCode = 1008
	CloseMessageTooBig      CloseCode = 1009
	CloseMissingExtension   CloseCode = 1010
	CloseInternalServerErr  CloseCode = 1011
)

// IsSendable reports whether the code may appear on the wire.
// 1005 and 1006 are reserved for local use.
func (c CloseCode) IsSendable() bool {
	switch {
	case c >= 1000 && c <= 1003:
		return true
	case c >= 1007 && c <= 1011:
		return true
	case c >= 3000 && c <= 4999:
		return true
	}
	return false
}
