// File: envelope/envelope.go
// Package envelope serializes Layer8 ciphertext into outer frame payloads.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The outer WebSocket frame already delimits the envelope, so codecs never
// scan for boundaries inside the payload.

package envelope

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"

	"github.com/momentics/layer8-ws/api"
)

// Version is the leading byte of the binary envelope.
const Version byte = 0x01

const binaryHeaderLen = 5

// Binary is the default codec: version(1) | length(uint32 BE) | ciphertext.
type Binary struct{}

var _ api.EnvelopeCodec = Binary{}

// Encode implements api.EnvelopeCodec.
func (Binary) Encode(ciphertext []byte) ([]byte, error) {
	if uint64(len(ciphertext)) > uint64(^uint32(0)) {
		return nil, api.NewError(api.ErrCodeEnvelope, "ciphertext too large").WithContext("length", len(ciphertext))
	}
	out := make([]byte, binaryHeaderLen, binaryHeaderLen+len(ciphertext))
	out[0] = Version
	binary.BigEndian.PutUint32(out[1:], uint32(len(ciphertext)))
	return append(out, ciphertext...), nil
}

// Decode implements api.EnvelopeCodec. The declared length must match the
// payload exactly.
func (Binary) Decode(transport []byte) ([]byte, error) {
	if len(transport) < binaryHeaderLen {
		return nil, api.NewError(api.ErrCodeEnvelope, "envelope too short").WithContext("length", len(transport))
	}
	if transport[0] != Version {
		return nil, api.NewError(api.ErrCodeEnvelope, "unknown envelope version").WithContext("version", transport[0])
	}
	n := binary.BigEndian.Uint32(transport[1:])
	if uint64(n) != uint64(len(transport)-binaryHeaderLen) {
		return nil, api.NewError(api.ErrCodeEnvelope, "envelope length mismatch").
			WithContext("declared", n).
			WithContext("actual", len(transport)-binaryHeaderLen)
	}
	return transport[binaryHeaderLen:], nil
}

// JSON wraps ciphertext as {"data":"<base64>"} for peers that still speak
// the JSON round-trip envelope.
type JSON struct{}

var _ api.EnvelopeCodec = JSON{}

type jsonEnvelope struct {
	Data string `json:"data"`
}

var strictBase64 = base64.StdEncoding.Strict()

// Encode implements api.EnvelopeCodec.
func (JSON) Encode(ciphertext []byte) ([]byte, error) {
	b, err := json.Marshal(jsonEnvelope{Data: strictBase64.EncodeToString(ciphertext)})
	if err != nil {
		return nil, api.Wrap(api.ErrCodeEnvelope, "envelope encode failed", err)
	}
	return b, nil
}

// Decode implements api.EnvelopeCodec. Only the exact bytes Encode produces
// are accepted: other key spellings, extra keys and whitespace are rejected.
func (c JSON) Decode(transport []byte) ([]byte, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(transport, &env); err != nil {
		return nil, api.Wrap(api.ErrCodeEnvelope, "envelope decode failed", err)
	}
	b, err := strictBase64.DecodeString(env.Data)
	if err != nil {
		return nil, api.Wrap(api.ErrCodeEnvelope, "envelope payload is not base64", err)
	}
	canonical, err := c.Encode(b)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(canonical, transport) {
		return nil, api.NewError(api.ErrCodeEnvelope, "envelope is not in canonical form")
	}
	return b, nil
}
