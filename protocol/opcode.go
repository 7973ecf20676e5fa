// Package protocol
// Author: momentics <momentics@gmail.com>

package protocol

import "fmt"

// OpCode identifies a frame's purpose.
type OpCode byte

const (
	OpcodeContinuation OpCode = 0x0
	OpcodeText         OpCode = 0x1
	OpcodeBinary       OpCode = 0x2
	OpcodeClose        OpCode = 0x8
	OpcodePing         OpCode = 0x9
	OpcodePong         OpCode = 0xA
)

// OpCodes lists every opcode the codec accepts.
var OpCodes = []OpCode{
	OpcodeContinuation,
	OpcodeText,
	OpcodeBinary,
	OpcodeClose,
	OpcodePing,
	OpcodePong,
}

// IsValid reports whether o is defined by RFC 6455.
func (o OpCode) IsValid() bool {
	switch o {
	case OpcodeContinuation, OpcodeText, OpcodeBinary, OpcodeClose, OpcodePing, OpcodePong:
		return true
	}
	return false
}

// IsControl reports whether o is a control opcode (Close/Ping/Pong).
func (o OpCode) IsControl() bool {
	return o >= OpcodeClose
}

// IsData reports whether o is a data opcode (Continuation/Text/Binary).
func (o OpCode) IsData() bool {
	return o < OpcodeClose
}

func (o OpCode) String() string {
	switch o {
	case OpcodeContinuation:
		return "continuation"
	case OpcodeText:
		return "text"
	case OpcodeBinary:
		return "binary"
	case OpcodeClose:
		return "close"
	case OpcodePing:
		return "ping"
	case OpcodePong:
		return "pong"
	default:
		return fmt.Sprintf("opcode(0x%x)", byte(o))
	}
}
