package crypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// NonceSize is the XChaCha20-Poly1305 nonce length, which is also the length
// of the nonce carried by every note.
const NonceSize = chacha20poly1305.NonceSizeX

// Overhead is the authentication tag appended to every sealed field.
const Overhead = chacha20poly1305.Overhead

// Seal encrypts plaintext with XChaCha20-Poly1305.
//
// Parameters:
//   - key: A 32-byte symmetric encryption key.
//   - nonce: The 24-byte note nonce. Each key must only ever see one nonce
//     per plaintext, so callers derive a separate key per sealed field.
//   - plaintext: The data to be encrypted.
//   - additionalData: Data to be authenticated but not encrypted.
//
// Returns the ciphertext, which includes the authentication tag.
func Seal(key []byte, nonce [NonceSize]byte, plaintext, additionalData []byte) ([]byte, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("invalid key size: must be %d bytes", chacha20poly1305.KeySize)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create XChaCha20-Poly1305 AEAD: %w", err)
	}
	return aead.Seal(nil, nonce[:], plaintext, additionalData), nil
}

// Open decrypts a field sealed with Seal.
func Open(key []byte, nonce [NonceSize]byte, ciphertext, additionalData []byte) ([]byte, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("invalid key size: must be %d bytes", chacha20poly1305.KeySize)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create XChaCha20-Poly1305 AEAD: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce[:], ciphertext, additionalData)
	if err != nil {
		// either a wrong key or tampered ciphertext / additional data
		return nil, fmt.Errorf("failed to open sealed field: %w", err)
	}
	return plaintext, nil
}
