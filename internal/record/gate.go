package record

import (
	"fmt"

	"github.com/org/recordvault/internal/crypto"
	"github.com/org/recordvault/pkg/models"
)

// Gate applies the encrypt-on-write / decrypt-on-read transform to a
// record's sensitive fields. The encryption mode and sensitive-field set
// are fixed at construction; the gate holds no mutable state and is safe
// for concurrent use.
//
// Toggling the encryption mode between writing and reading the same
// record is an inherent inconsistency in this design: the gate detects it
// as a cipher error but cannot repair it.
type Gate struct {
	cipher    *crypto.FieldCipher
	sensitive []string
	encrypt   bool
}

// NewGate creates a Gate. sensitiveFields names the string-typed fields
// subject to the transform; encryptionMode is the startup-fixed toggle.
func NewGate(cipher *crypto.FieldCipher, sensitiveFields []string, encryptionMode bool) *Gate {
	return &Gate{cipher: cipher, sensitive: sensitiveFields, encrypt: encryptionMode}
}

// EncryptionEnabled reports the gate's mode.
func (g *Gate) EncryptionEnabled() bool { return g.encrypt }

// PrepareForStorage returns the at-rest form of record. With encryption
// off the record passes through unchanged. With encryption on, every
// sensitive field is replaced by its ciphertext envelope. The transform
// runs on a clone and is swapped in whole, so a failure never leaves a
// partially transformed record behind. The envelope prefix is reserved:
// a sensitive plaintext that already starts with it is rejected as
// invalid rather than wrapped a second time.
func (g *Gate) PrepareForStorage(record *models.Record) (*models.Record, error) {
	if !g.encrypt {
		return record, nil
	}
	out := record.Clone()
	for _, name := range g.sensitive {
		raw, ok := out.Fields[name]
		if !ok {
			continue
		}
		value, ok := raw.(string)
		if !ok {
			return nil, &crypto.Error{Kind: crypto.KindInvalidEncoding,
				Err: fmt.Errorf("sensitive field %q is %T, not string", name, raw)}
		}
		if crypto.IsEnvelope(value) {
			// Already ciphertext on the write path: the value leaked
			// through a gate somewhere. Refuse rather than double-wrap.
			return nil, &crypto.Error{Kind: crypto.KindInvalidEncoding,
				Err: fmt.Errorf("sensitive field %q is already encrypted", name)}
		}
		envelope, err := g.cipher.Encrypt(value)
		if err != nil {
			return nil, fmt.Errorf("encrypting field %q: %w", name, err)
		}
		out.Fields[name] = envelope
	}
	return out, nil
}

// PrepareForPresentation returns the wire form of record. With encryption
// on, every sensitive field is decrypted; a value that does not carry the
// ciphertext envelope, or does not decrypt cleanly, is a cipher error.
// With encryption off the record passes through, except that a value
// still carrying the envelope means the record was written under the
// opposite mode, which is surfaced as a cipher error rather than
// returned as if it were plaintext.
func (g *Gate) PrepareForPresentation(record *models.Record) (*models.Record, error) {
	if !g.encrypt {
		for _, name := range g.sensitive {
			if value, ok := record.Fields[name].(string); ok && crypto.IsEnvelope(value) {
				return nil, &crypto.Error{Kind: crypto.KindIntegrityFailure,
					Err: fmt.Errorf("field %q is encrypted but encryption is disabled", name)}
			}
		}
		return record, nil
	}

	out := record.Clone()
	for _, name := range g.sensitive {
		raw, ok := out.Fields[name]
		if !ok {
			continue
		}
		value, ok := raw.(string)
		if !ok {
			return nil, &crypto.Error{Kind: crypto.KindInvalidEncoding,
				Err: fmt.Errorf("sensitive field %q is %T, not string", name, raw)}
		}
		plaintext, err := g.cipher.Decrypt(value)
		if err != nil {
			return nil, fmt.Errorf("decrypting field %q: %w", name, err)
		}
		out.Fields[name] = plaintext
	}
	return out, nil
}
