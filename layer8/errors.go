// Package layer8
// Author: momentics <momentics@gmail.com>

package layer8

import "github.com/momentics/layer8-ws/api"

// Overlay failures. Decode, decrypt and nested parse failures carry
// api.ErrCodeEnvelope, api.ErrCodeCrypto and api.ErrCodeNestedFrameMissing.
var (
	ErrFragmentedInner      = api.NewError(api.ErrCodeProtocol, "fragmented frames cannot cross the encrypted overlay")
	ErrUnexpectedOuterFrame = api.NewError(api.ErrCodeProtocol, "encrypted stream carried a frame that is not a final binary frame")
	ErrTrailingInnerBytes   = api.NewError(api.ErrCodeProtocol, "decrypted envelope holds bytes after the inner frame")
	ErrMissingPublicKey     = api.NewError(api.ErrCodeInvalidArgument, "peer did not send a Layer8 public key")
	ErrNilMessage           = api.NewError(api.ErrCodeInvalidArgument, "nil message")
)

// asKind makes sure err carries code, wrapping it with msg otherwise.
func asKind(err error, code api.ErrorCode, msg string) error {
	if api.CodeOf(err) == code {
		return err
	}
	return api.Wrap(code, msg, err)
}
