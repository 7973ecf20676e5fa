// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Payload masking per RFC 6455 section 5.3.

package protocol

import "crypto/rand"

// MaskBytes XORs buf in place with the repeating 4-byte key.
// Applying it twice with the same key restores the input.
func MaskBytes(buf []byte, key [4]byte) {
	for i := 0; i < len(buf); i++ {
		buf[i] ^= key[i&3]
	}
}

// NewMaskKey returns a fresh unpredictable masking key.
func NewMaskKey() [4]byte {
	var key [4]byte
	if _, err := rand.Read(key[:]); err != nil {
		// crypto/rand.Read does not fail on supported platforms.
		panic("protocol: crypto/rand unavailable: " + err.Error())
	}
	return key
}
