// Package protocol
// Author: momentics <momentics@gmail.com>

package protocol

import "github.com/momentics/layer8-ws/api"

// Protocol violations surfaced by the codec. All carry api.ErrCodeProtocol
// except ErrInvalidUTF8 which carries api.ErrCodeEncoding.
var (
	ErrReservedBits        = api.NewError(api.ErrCodeProtocol, "reserved bits set without negotiated extension")
	ErrUnknownOpcode       = api.NewError(api.ErrCodeProtocol, "unknown opcode")
	ErrFragmentedControl   = api.NewError(api.ErrCodeProtocol, "fragmented control frame")
	ErrControlTooLarge     = api.NewError(api.ErrCodeProtocol, "control frame payload greater than 125 bytes")
	ErrUnmaskedFrame       = api.NewError(api.ErrCodeProtocol, "unmasked frame from client")
	ErrMaskedFrame         = api.NewError(api.ErrCodeProtocol, "masked frame from server")
	ErrFrameTooLarge       = api.NewError(api.ErrCodeProtocol, "frame exceeds read size limit")
	ErrInvalidCloseCode    = api.NewError(api.ErrCodeProtocol, "invalid close code")
	ErrInvalidClosePayload = api.NewError(api.ErrCodeProtocol, "invalid close payload")
	ErrIllegalLength       = api.NewError(api.ErrCodeProtocol, "illegal payload length")
	ErrInvalidUTF8         = api.NewError(api.ErrCodeEncoding, "payload contains invalid UTF-8 text")
)

// protocolErr returns a fresh copy of sentinel with context attached, leaving
// the shared sentinel untouched. The copy still matches sentinel via errors.Is.
func protocolErr(sentinel *api.Error, key string, value any) *api.Error {
	return api.NewError(sentinel.Code, sentinel.Message).WithContext(key, value)
}
