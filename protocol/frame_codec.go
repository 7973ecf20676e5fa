// File: protocol/frame_codec.go
// Package protocol implements the frame codec with frame size enforcement.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Encoding always selects the minimal payload length representation.
// Decoding is permissive about non-minimal lengths and strict about
// everything else.

package protocol

import (
	"encoding/binary"
	"math"
)

// payloadHeaderLen returns the size of the length section (indicator byte
// included) for a payload of n bytes.
func payloadHeaderLen(n int) int {
	switch {
	case n <= MaxControlPayloadLen:
		return 1
	case n <= math.MaxUint16:
		return 3
	default:
		return 9
	}
}

// WireLen returns the number of bytes AppendTo will produce.
func (f *Frame) WireLen() int {
	n := 1 + payloadHeaderLen(len(f.Payload)) + len(f.Payload)
	if f.Masked {
		n += 4
	}
	return n
}

// AppendTo serializes the frame onto dst and returns the extended slice.
// The payload is masked with MaskKey when Masked is set; f itself is untouched.
func (f *Frame) AppendTo(dst []byte) []byte {
	b0 := byte(f.Opcode) & OpcodeBits
	b0 |= (f.Rsv & 0x07) << 4
	if f.Fin {
		b0 |= FinBit
	}
	var maskBit byte
	if f.Masked {
		maskBit = MaskBit
	}

	plen := len(f.Payload)
	switch {
	case plen <= MaxControlPayloadLen:
		dst = append(dst, b0, byte(plen)|maskBit)
	case plen <= math.MaxUint16:
		dst = append(dst, b0, len16|maskBit)
		dst = binary.BigEndian.AppendUint16(dst, uint16(plen))
	default:
		dst = append(dst, b0, len64|maskBit)
		dst = binary.BigEndian.AppendUint64(dst, uint64(plen))
	}

	if f.Masked {
		dst = append(dst, f.MaskKey[:]...)
	}
	start := len(dst)
	dst = append(dst, f.Payload...)
	if f.Masked {
		MaskBytes(dst[start:], f.MaskKey)
	}
	return dst
}

// Bytes returns the complete wire encoding of the frame.
func (f *Frame) Bytes() []byte {
	return f.AppendTo(make([]byte, 0, f.WireLen()))
}

// ParseFrame decodes one frame from the front of raw.
//
// It returns the frame and the number of bytes consumed. If raw does not yet
// hold a complete frame it returns (nil, 0, nil) and the caller should retry
// with more data. limit bounds the total size of the frame (header included);
// zero disables the check.
func ParseFrame(raw []byte, policy MaskPolicy, limit uint64) (*Frame, int, error) {
	if len(raw) < 2 {
		return nil, 0, nil // Incomplete
	}

	fin := raw[0]&FinBit != 0
	rsv := (raw[0] & RsvBits) >> 4
	opcode := OpCode(raw[0] & OpcodeBits)
	masked := raw[1]&MaskBit != 0
	length := uint64(raw[1] & LengthBits)

	// Validate first byte.
	switch {
	case rsv != 0:
		return nil, 0, ErrReservedBits
	case !opcode.IsValid():
		return nil, 0, protocolErr(ErrUnknownOpcode, "opcode", byte(opcode))
	case opcode.IsControl() && !fin:
		return nil, 0, ErrFragmentedControl
	case opcode.IsControl() && length > MaxControlPayloadLen:
		return nil, 0, protocolErr(ErrControlTooLarge, "indicator", length)
	}

	// Client frames must always be masked, server frames never.
	switch {
	case masked && policy.RejectMasked:
		return nil, 0, ErrMaskedFrame
	case !masked && policy.RequireMasked:
		return nil, 0, ErrUnmaskedFrame
	}

	offset := uint64(2)
	switch length {
	case len16:
		if len(raw) < 4 {
			return nil, 0, nil // Incomplete
		}
		length = uint64(binary.BigEndian.Uint16(raw[2:]))
		offset += 2
	case len64:
		if len(raw) < 10 {
			return nil, 0, nil // Incomplete
		}
		length = binary.BigEndian.Uint64(raw[2:])
		if length > math.MaxInt64 {
			return nil, 0, ErrIllegalLength
		}
		offset += 8
	}
	if masked {
		offset += 4
	}

	total := offset + length
	if limit > 0 && total > limit {
		return nil, 0, protocolErr(ErrFrameTooLarge, "size", total)
	}
	if total > math.MaxInt {
		return nil, 0, protocolErr(ErrFrameTooLarge, "size", total)
	}
	if uint64(len(raw)) < total {
		return nil, 0, nil // Incomplete
	}

	f := &Frame{
		Fin:     fin,
		Opcode:  opcode,
		Masked:  masked,
		Payload: make([]byte, length),
	}
	if masked {
		copy(f.MaskKey[:], raw[offset-4:offset])
	}
	copy(f.Payload, raw[offset:total])
	if masked {
		MaskBytes(f.Payload, f.MaskKey)
	}
	return f, int(total), nil
}
