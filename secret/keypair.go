// File: secret/keypair.go
// Package secret derives Layer8 symmetric keys from ECDH key agreement.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package secret

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/momentics/layer8-ws/api"
	"golang.org/x/crypto/hkdf"
)

// Curve selects the key agreement group.
type Curve uint8

const (
	P256 Curve = iota
	X25519
)

func (c Curve) String() string {
	switch c {
	case P256:
		return "P-256"
	case X25519:
		return "X25519"
	default:
		return fmt.Sprintf("curve(%d)", uint8(c))
	}
}

func (c Curve) ecdh() (ecdh.Curve, error) {
	switch c {
	case P256:
		return ecdh.P256(), nil
	case X25519:
		return ecdh.X25519(), nil
	default:
		return nil, api.NewError(api.ErrCodeInvalidArgument, "unsupported curve").WithContext("curve", c.String())
	}
}

// hkdfInfo labels keys derived for the Layer8 overlay.
const hkdfInfo = "layer8 symmetric key"

// PrivateKey is one side's ephemeral key pair.
type PrivateKey struct {
	curve Curve
	key   *ecdh.PrivateKey
}

// PublicKey is the shareable half of a key pair.
type PublicKey struct {
	curve Curve
	key   *ecdh.PublicKey
}

// GenerateKeyPair creates a fresh key pair on curve.
func GenerateKeyPair(curve Curve) (*PrivateKey, error) {
	c, err := curve.ecdh()
	if err != nil {
		return nil, err
	}
	k, err := c.GenerateKey(rand.Reader)
	if err != nil {
		return nil, api.Wrap(api.ErrCodeCrypto, "key generation failed", err)
	}
	return &PrivateKey{curve: curve, key: k}, nil
}

// Curve returns the key's curve.
func (k *PrivateKey) Curve() Curve { return k.curve }

// Public returns the public half.
func (k *PrivateKey) Public() *PublicKey {
	return &PublicKey{curve: k.curve, key: k.key.PublicKey()}
}

// SharedSecret agrees on a secret with peer and expands it into a symmetric
// key for suite. Both sides obtain the same key.
func (k *PrivateKey) SharedSecret(peer *PublicKey, suite Suite) (*SymmetricKey, error) {
	if peer == nil || peer.curve != k.curve {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "peer key on a different curve")
	}
	shared, err := k.key.ECDH(peer.key)
	if err != nil {
		return nil, api.Wrap(api.ErrCodeCrypto, "key agreement failed", err)
	}
	material := make([]byte, KeySize)
	kdf := hkdf.New(sha256.New, shared, nil, []byte(hkdfInfo+" "+suite.String()))
	if _, err := io.ReadFull(kdf, material); err != nil {
		return nil, api.Wrap(api.ErrCodeCrypto, "key derivation failed", err)
	}
	return NewSymmetricKey(suite, material)
}

// Curve returns the key's curve.
func (p *PublicKey) Curve() Curve { return p.curve }

// Bytes returns the encoded public point.
func (p *PublicKey) Bytes() []byte { return p.key.Bytes() }

// Encode returns the URL-safe base64 form used in handshake headers:
// a curve byte followed by the public point.
func (p *PublicKey) Encode() string {
	return base64.RawURLEncoding.EncodeToString(append([]byte{byte(p.curve)}, p.key.Bytes()...))
}

// ParsePublicKey decodes a raw public point on curve.
func ParsePublicKey(curve Curve, b []byte) (*PublicKey, error) {
	c, err := curve.ecdh()
	if err != nil {
		return nil, err
	}
	k, err := c.NewPublicKey(b)
	if err != nil {
		return nil, api.Wrap(api.ErrCodeCrypto, "invalid public key", err)
	}
	return &PublicKey{curve: curve, key: k}, nil
}

// DecodePublicKey reverses PublicKey.Encode.
func DecodePublicKey(s string) (*PublicKey, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, api.Wrap(api.ErrCodeCrypto, "invalid public key encoding", err)
	}
	if len(b) < 2 {
		return nil, api.NewError(api.ErrCodeCrypto, "public key too short")
	}
	return ParsePublicKey(Curve(b[0]), b[1:])
}
