package core

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	tokenSecretContext = "recordvault-token-v1"
	fieldKeyContext    = "recordvault-field-v1"

	rootKeySize = 32
	derivedSize = 32
)

// Keyring derives the process keys from a single root key at startup:
// the token-signing secret and the field cipher key, under distinct HKDF
// contexts. It is immutable after construction and safe for concurrent
// use without locking. Keys live only in memory and are never logged.
type Keyring struct {
	tokenSecret []byte
	fieldKey    []byte
}

// GenerateRootKey returns a fresh random 32-byte root key.
func GenerateRootKey() ([]byte, error) {
	key := make([]byte, rootKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generating root key: %w", err)
	}
	return key, nil
}

// NewKeyring derives all process keys from rootKey.
func NewKeyring(rootKey []byte) (*Keyring, error) {
	if len(rootKey) != rootKeySize {
		return nil, fmt.Errorf("root key must be %d bytes, got %d", rootKeySize, len(rootKey))
	}
	tokenSecret, err := derive(rootKey, tokenSecretContext)
	if err != nil {
		return nil, err
	}
	fieldKey, err := derive(rootKey, fieldKeyContext)
	if err != nil {
		return nil, err
	}
	return &Keyring{tokenSecret: tokenSecret, fieldKey: fieldKey}, nil
}

// derive produces a 32-byte key from the root key using HKDF-SHA256.
func derive(rootKey []byte, context string) ([]byte, error) {
	out := make([]byte, derivedSize)
	r := hkdf.New(sha256.New, rootKey, nil, []byte(context))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("deriving key for %s: %w", context, err)
	}
	return out, nil
}

// TokenSecret returns the HMAC secret for token signing.
func (k *Keyring) TokenSecret() []byte { return k.tokenSecret }

// FieldKey returns the field cipher key.
func (k *Keyring) FieldKey() []byte { return k.fieldKey }
