// File: protocol/message.go
// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Message is the public unit of communication. The variant set is closed:
// Text, Binary, Ping, Pong, Close and FrameMessage.

package protocol

import (
	"fmt"
	"unicode/utf8"

	"github.com/momentics/layer8-ws/api"
)

// MessageKind tags a Message variant.
type MessageKind uint8

const (
	KindText MessageKind = iota
	KindBinary
	KindPing
	KindPong
	KindClose
	KindFrame
)

// MessageKinds lists every variant.
var MessageKinds = []MessageKind{KindText, KindBinary, KindPing, KindPong, KindClose, KindFrame}

func (k MessageKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	case KindPing:
		return "ping"
	case KindPong:
		return "pong"
	case KindClose:
		return "close"
	case KindFrame:
		return "frame"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Message is implemented only by the variants in this package.
type Message interface {
	Kind() MessageKind
	// Frame converts the message into exactly one frame.
	Frame() *Frame
	isMessage()
}

// Text is a UTF-8 text message.
type Text struct{ s string }

// NewText builds a Text message from s.
func NewText(s string) (Text, error) {
	if !utf8.ValidString(s) {
		return Text{}, ErrInvalidUTF8
	}
	return Text{s: s}, nil
}

// TextFromBytes builds a Text message, failing with an Encoding error when b
// is not valid UTF-8.
func TextFromBytes(b []byte) (Text, error) {
	if !utf8.Valid(b) {
		return Text{}, ErrInvalidUTF8
	}
	return Text{s: string(b)}, nil
}

func (t Text) String() string  { return t.s }
func (Text) Kind() MessageKind { return KindText }
func (t Text) Frame() *Frame   { return NewDataFrame(OpcodeText, []byte(t.s), true) }
func (Text) isMessage()        {}

// Binary is a binary data message.
type Binary []byte

func (Binary) Kind() MessageKind { return KindBinary }
func (b Binary) Frame() *Frame   { return NewDataFrame(OpcodeBinary, b, true) }
func (Binary) isMessage()        {}

// Ping carries at most 125 bytes.
type Ping struct{ payload []byte }

// NewPing fails with a Protocol error when payload exceeds 125 bytes.
func NewPing(payload []byte) (Ping, error) {
	if len(payload) > MaxControlPayloadLen {
		return Ping{}, protocolErr(ErrControlTooLarge, "length", len(payload))
	}
	return Ping{payload: payload}, nil
}

func (p Ping) Payload() []byte { return p.payload }
func (Ping) Kind() MessageKind { return KindPing }
func (p Ping) Frame() *Frame   { return &Frame{Fin: true, Opcode: OpcodePing, Payload: p.payload} }
func (Ping) isMessage()        {}

// Pong carries at most 125 bytes.
type Pong struct{ payload []byte }

// NewPong fails with a Protocol error when payload exceeds 125 bytes.
func NewPong(payload []byte) (Pong, error) {
	if len(payload) > MaxControlPayloadLen {
		return Pong{}, protocolErr(ErrControlTooLarge, "length", len(payload))
	}
	return Pong{payload: payload}, nil
}

func (p Pong) Payload() []byte { return p.payload }
func (Pong) Kind() MessageKind { return KindPong }
func (p Pong) Frame() *Frame   { return &Frame{Fin: true, Opcode: OpcodePong, Payload: p.payload} }
func (Pong) isMessage()        {}

// Close carries an optional status.
type Close struct {
	cf    *CloseFrame
	frame *Frame
}

// NewClose validates cf up front. A nil cf closes without a status.
func NewClose(cf *CloseFrame) (Close, error) {
	f, err := NewCloseFrame(cf)
	if err != nil {
		return Close{}, err
	}
	if cf != nil {
		c := *cf
		cf = &c
	}
	return Close{cf: cf, frame: f}, nil
}

// CloseFrame returns the status, or nil for a bare close.
func (c Close) CloseFrame() *CloseFrame { return c.cf }
func (Close) Kind() MessageKind         { return KindClose }
func (Close) isMessage()                {}

func (c Close) Frame() *Frame {
	if c.frame == nil {
		return &Frame{Fin: true, Opcode: OpcodeClose}
	}
	f := *c.frame
	return &f
}

// FrameMessage passes a pre-built frame through unchanged.
type FrameMessage struct {
	Raw *Frame
}

func (FrameMessage) Kind() MessageKind { return KindFrame }
func (m FrameMessage) Frame() *Frame   { return m.Raw }
func (FrameMessage) isMessage()        {}

// Decode converts the raw frame into its typed variant; see FromFrame.
func (m FrameMessage) Decode() (Message, error) { return FromFrame(m.Raw) }

// FromFrame maps a frame to the matching variant. Continuation and non-final
// frames have no typed form and come back as FrameMessage.
func FromFrame(f *Frame) (Message, error) {
	if f == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "nil frame")
	}
	if !f.Fin || f.Opcode == OpcodeContinuation {
		return FrameMessage{Raw: f}, nil
	}
	var (
		m   Message
		err error
	)
	switch f.Opcode {
	case OpcodeText:
		m, err = TextFromBytes(f.Payload)
	case OpcodeBinary:
		m = Binary(f.Payload)
	case OpcodePing:
		m, err = NewPing(f.Payload)
	case OpcodePong:
		m, err = NewPong(f.Payload)
	case OpcodeClose:
		var cf *CloseFrame
		if cf, err = f.CloseFrame(); err == nil {
			m, err = NewClose(cf)
		}
	default:
		err = protocolErr(ErrUnknownOpcode, "opcode", byte(f.Opcode))
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
