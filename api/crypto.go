// File: api/crypto.go
// Author: momentics <momentics@gmail.com>
//
// Contracts consumed by the Layer8 overlay. The overlay treats both the
// symmetric key and the envelope codec as opaque collaborators.

package api

// SymmetricKey encrypts and decrypts whole inner frames.
// Implementations must authenticate: Decrypt of modified input must fail.
type SymmetricKey interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// EnvelopeCodec turns ciphertext into transport-safe bytes and back.
type EnvelopeCodec interface {
	Encode(ciphertext []byte) ([]byte, error)
	Decode(transport []byte) ([]byte, error)
}
