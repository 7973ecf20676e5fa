// Package secret
// Author: momentics <momentics@gmail.com>

package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/momentics/layer8-ws/api"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the length of every symmetric key in bytes.
const KeySize = 32

// Suite selects the AEAD.
type Suite uint8

const (
	AES256GCM Suite = iota
	ChaCha20Poly1305
)

func (s Suite) String() string {
	switch s {
	case AES256GCM:
		return "AES-256-GCM"
	case ChaCha20Poly1305:
		return "ChaCha20-Poly1305"
	default:
		return fmt.Sprintf("suite(%d)", uint8(s))
	}
}

// SymmetricKey encrypts and authenticates inner frames.
// Ciphertexts are laid out as nonce || sealed data.
// It is immutable and safe for concurrent use.
type SymmetricKey struct {
	suite Suite
	aead  cipher.AEAD
}

var _ api.SymmetricKey = (*SymmetricKey)(nil)

// NewSymmetricKey builds a key for suite from KeySize bytes of material.
func NewSymmetricKey(suite Suite, key []byte) (*SymmetricKey, error) {
	if len(key) != KeySize {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "symmetric key must be 32 bytes").WithContext("length", len(key))
	}
	var (
		aead cipher.AEAD
		err  error
	)
	switch suite {
	case AES256GCM:
		var block cipher.Block
		if block, err = aes.NewCipher(key); err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case ChaCha20Poly1305:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, api.NewError(api.ErrCodeInvalidArgument, "unsupported suite").WithContext("suite", suite.String())
	}
	if err != nil {
		return nil, api.Wrap(api.ErrCodeCrypto, "cipher setup failed", err)
	}
	return &SymmetricKey{suite: suite, aead: aead}, nil
}

// Suite returns the AEAD in use.
func (k *SymmetricKey) Suite() Suite { return k.suite }

// Encrypt seals plaintext under a fresh random nonce.
func (k *SymmetricKey) Encrypt(plaintext []byte) ([]byte, error) {
	ns := k.aead.NonceSize()
	out := make([]byte, ns, ns+len(plaintext)+k.aead.Overhead())
	if _, err := rand.Read(out); err != nil {
		return nil, api.Wrap(api.ErrCodeCrypto, "nonce generation failed", err)
	}
	return k.aead.Seal(out, out[:ns], plaintext, nil), nil
}

// Decrypt opens a ciphertext produced by Encrypt. Any modification fails.
func (k *SymmetricKey) Decrypt(ciphertext []byte) ([]byte, error) {
	ns := k.aead.NonceSize()
	if len(ciphertext) < ns+k.aead.Overhead() {
		return nil, api.NewError(api.ErrCodeCrypto, "ciphertext too short").WithContext("length", len(ciphertext))
	}
	plain, err := k.aead.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return nil, api.Wrap(api.ErrCodeCrypto, "decryption failed", err)
	}
	return plain, nil
}
