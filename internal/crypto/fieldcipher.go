package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// EnvelopePrefix tags every ciphertext produced by the FieldCipher. The
// version tag lets readers distinguish ciphertext from plaintext that was
// stored while encryption was off.
const EnvelopePrefix = "rv1:"

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// GenerateKey returns a fresh random 32-byte cipher key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return key, nil
}

// FieldCipher encrypts and decrypts individual string values with
// AES-256-GCM under one fixed key. The key is fixed for the process
// lifetime and never exposed.
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher creates a FieldCipher for a 32-byte key.
func NewFieldCipher(key []byte) (*FieldCipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("field cipher key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return &FieldCipher{aead: aead}, nil
}

// Encrypt seals plaintext into a self-contained envelope:
// "rv1:" + base64(nonce || ciphertext || tag). A fresh nonce is drawn per
// call, so equal plaintexts produce distinct envelopes.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return EnvelopePrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an envelope produced by Encrypt. It fails with
// ErrInvalidEncoding when the input is not a well-formed envelope and with
// ErrIntegrityFailure when the authentication tag does not verify
// (tampering or wrong key).
func (c *FieldCipher) Decrypt(envelope string) (string, error) {
	encoded, ok := strings.CutPrefix(envelope, EnvelopePrefix)
	if !ok {
		return "", &Error{Kind: KindInvalidEncoding, Err: fmt.Errorf("missing %q prefix", EnvelopePrefix)}
	}
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", &Error{Kind: KindInvalidEncoding, Err: err}
	}
	nonceSize := c.aead.NonceSize()
	if len(sealed) < nonceSize+c.aead.Overhead() {
		return "", &Error{Kind: KindInvalidEncoding, Err: fmt.Errorf("envelope too short: %d bytes", len(sealed))}
	}
	plaintext, err := c.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", &Error{Kind: KindIntegrityFailure, Err: err}
	}
	return string(plaintext), nil
}

// IsEnvelope reports whether value carries the cipher's envelope tag.
// Used by the record gate to detect mode mismatches.
func IsEnvelope(value string) bool {
	return strings.HasPrefix(value, EnvelopePrefix)
}
