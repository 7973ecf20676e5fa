// Package protocol
// Author: momentics <momentics@gmail.com>
//
// WebSocket frame model. A Frame is owned by exactly one layer at a time:
// the FrameSocket while on the wire boundary, the caller once returned.

package protocol

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Frame represents one WebSocket frame.
// Payload always holds application bytes; masking is applied on the wire only.
type Frame struct {
	Fin     bool   // FIN bit
	Rsv     byte   // RSV1..RSV3 in the low three bits
	Opcode  OpCode // Operation code
	Masked  bool   // Whether the frame is (or was) masked on the wire
	MaskKey [4]byte
	Payload []byte
}

// CloseFrame is the optional status carried by a Close frame.
type CloseFrame struct {
	Code   CloseCode
	Reason string
}

// NewDataFrame builds a Text, Binary or Continuation frame.
func NewDataFrame(opcode OpCode, payload []byte, fin bool) *Frame {
	return &Frame{Fin: fin, Opcode: opcode, Payload: payload}
}

// NewPingFrame builds a Ping frame; payloads over 125 bytes are rejected.
func NewPingFrame(payload []byte) (*Frame, error) {
	return newControlFrame(OpcodePing, payload)
}

// NewPongFrame builds a Pong frame; payloads over 125 bytes are rejected.
func NewPongFrame(payload []byte) (*Frame, error) {
	return newControlFrame(OpcodePong, payload)
}

// NewCloseFrame builds a Close frame. A nil cf produces an empty payload.
func NewCloseFrame(cf *CloseFrame) (*Frame, error) {
	if cf == nil {
		return &Frame{Fin: true, Opcode: OpcodeClose}, nil
	}
	if !cf.Code.IsSendable() {
		return nil, protocolErr(ErrInvalidCloseCode, "code", uint16(cf.Code))
	}
	if !utf8.ValidString(cf.Reason) {
		return nil, ErrInvalidUTF8
	}
	payload := make([]byte, 2+len(cf.Reason))
	binary.BigEndian.PutUint16(payload, uint16(cf.Code))
	copy(payload[2:], cf.Reason)
	return newControlFrame(OpcodeClose, payload)
}

func newControlFrame(opcode OpCode, payload []byte) (*Frame, error) {
	if len(payload) > MaxControlPayloadLen {
		return nil, protocolErr(ErrControlTooLarge, "length", len(payload))
	}
	return &Frame{Fin: true, Opcode: opcode, Payload: payload}, nil
}

// Validate checks the invariants every frame must satisfy before it is written.
func (f *Frame) Validate() error {
	if !f.Opcode.IsValid() {
		return protocolErr(ErrUnknownOpcode, "opcode", byte(f.Opcode))
	}
	if f.Rsv&0x07 != 0 {
		return ErrReservedBits
	}
	if f.Opcode.IsControl() {
		if !f.Fin {
			return ErrFragmentedControl
		}
		if len(f.Payload) > MaxControlPayloadLen {
			return protocolErr(ErrControlTooLarge, "length", len(f.Payload))
		}
	}
	return nil
}

// CloseFrame decodes the status of a Close frame. An empty payload yields nil.
func (f *Frame) CloseFrame() (*CloseFrame, error) {
	if f.Opcode != OpcodeClose {
		return nil, protocolErr(ErrInvalidClosePayload, "opcode", f.Opcode.String())
	}
	switch len(f.Payload) {
	case 0:
		return nil, nil
	case 1:
		return nil, ErrInvalidClosePayload
	}
	code := CloseCode(binary.BigEndian.Uint16(f.Payload))
	if !code.IsSendable() {
		return nil, protocolErr(ErrInvalidCloseCode, "code", uint16(code))
	}
	reason := f.Payload[2:]
	if !utf8.Valid(reason) {
		return nil, ErrInvalidUTF8
	}
	return &CloseFrame{Code: code, Reason: string(reason)}, nil
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame{fin=%t opcode=%s masked=%t len=%d}", f.Fin, f.Opcode, f.Masked, len(f.Payload))
}
