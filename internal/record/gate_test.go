package record

import (
	"errors"
	"testing"

	"github.com/org/recordvault/internal/crypto"
	"github.com/org/recordvault/pkg/models"
)

var sensitiveFields = []string{"empName", "password", "department"}

func newTestCipher(t *testing.T) *crypto.FieldCipher {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	c, err := crypto.NewFieldCipher(key)
	if err != nil {
		t.Fatalf("NewFieldCipher: %v", err)
	}
	return c
}

func testRecord() *models.Record {
	return &models.Record{
		ID: "r1",
		Fields: map[string]any{
			"empName":    "John Doe",
			"password":   "password123",
			"age":        30,
			"department": "IT",
		},
	}
}

func TestGateRoundTripEncrypted(t *testing.T) {
	gate := NewGate(newTestCipher(t), sensitiveFields, true)
	original := testRecord()

	stored, err := gate.PrepareForStorage(original)
	if err != nil {
		t.Fatalf("PrepareForStorage: %v", err)
	}

	// Sensitive fields are enveloped, others untouched
	for _, name := range sensitiveFields {
		v, ok := stored.Fields[name].(string)
		if !ok || !crypto.IsEnvelope(v) {
			t.Errorf("field %q not encrypted at rest: %v", name, stored.Fields[name])
		}
		if v == original.Fields[name] {
			t.Errorf("field %q unchanged by encryption", name)
		}
	}
	if stored.Fields["age"] != 30 {
		t.Errorf("non-sensitive field changed: %v", stored.Fields["age"])
	}

	presented, err := gate.PrepareForPresentation(stored)
	if err != nil {
		t.Fatalf("PrepareForPresentation: %v", err)
	}
	for name, want := range original.Fields {
		if presented.Fields[name] != want {
			t.Errorf("field %q round trip mismatch: got %v want %v", name, presented.Fields[name], want)
		}
	}
}

func TestGateRoundTripPlaintext(t *testing.T) {
	gate := NewGate(newTestCipher(t), sensitiveFields, false)
	original := testRecord()

	stored, err := gate.PrepareForStorage(original)
	if err != nil {
		t.Fatalf("PrepareForStorage: %v", err)
	}
	for name, want := range original.Fields {
		if stored.Fields[name] != want {
			t.Errorf("field %q changed with encryption off: got %v want %v", name, stored.Fields[name], want)
		}
	}

	presented, err := gate.PrepareForPresentation(stored)
	if err != nil {
		t.Fatalf("PrepareForPresentation: %v", err)
	}
	for name, want := range original.Fields {
		if presented.Fields[name] != want {
			t.Errorf("field %q changed with encryption off: got %v", name, presented.Fields[name])
		}
	}
}

// A record written with encryption on then read with encryption off must
// surface a cipher error, never ciphertext dressed up as plaintext.
func TestGateModeMismatchOnThenOff(t *testing.T) {
	cipher := newTestCipher(t)
	onGate := NewGate(cipher, sensitiveFields, true)
	offGate := NewGate(cipher, sensitiveFields, false)

	stored, err := onGate.PrepareForStorage(testRecord())
	if err != nil {
		t.Fatalf("PrepareForStorage: %v", err)
	}
	_, err = offGate.PrepareForPresentation(stored)
	if !errors.Is(err, crypto.ErrIntegrityFailure) {
		t.Errorf("expected ErrIntegrityFailure, got %v", err)
	}
}

// A record written with encryption off then read with encryption on fails
// because the stored value is not a well-formed envelope.
func TestGateModeMismatchOffThenOn(t *testing.T) {
	cipher := newTestCipher(t)
	offGate := NewGate(cipher, sensitiveFields, false)
	onGate := NewGate(cipher, sensitiveFields, true)

	stored, err := offGate.PrepareForStorage(testRecord())
	if err != nil {
		t.Fatalf("PrepareForStorage: %v", err)
	}
	_, err = onGate.PrepareForPresentation(stored)
	if !errors.Is(err, crypto.ErrInvalidEncoding) {
		t.Errorf("expected ErrInvalidEncoding, got %v", err)
	}
}

func TestGateMissingSensitiveFieldSkipped(t *testing.T) {
	gate := NewGate(newTestCipher(t), sensitiveFields, true)
	record := &models.Record{ID: "r2", Fields: map[string]any{"empName": "Jane", "age": 41}}

	stored, err := gate.PrepareForStorage(record)
	if err != nil {
		t.Fatalf("PrepareForStorage: %v", err)
	}
	if _, present := stored.Fields["password"]; present {
		t.Error("absent sensitive field should stay absent")
	}

	presented, err := gate.PrepareForPresentation(stored)
	if err != nil {
		t.Fatalf("PrepareForPresentation: %v", err)
	}
	if presented.Fields["empName"] != "Jane" {
		t.Errorf("round trip mismatch: %v", presented.Fields["empName"])
	}
}

func TestGateNonStringSensitiveField(t *testing.T) {
	gate := NewGate(newTestCipher(t), sensitiveFields, true)
	record := &models.Record{ID: "r3", Fields: map[string]any{"password": 12345}}

	_, err := gate.PrepareForStorage(record)
	if !errors.Is(err, crypto.ErrInvalidEncoding) {
		t.Errorf("expected ErrInvalidEncoding, got %v", err)
	}
}

// A failing transform must not leave the input record partially mutated.
func TestGateNoPartialTransform(t *testing.T) {
	gate := NewGate(newTestCipher(t), sensitiveFields, true)
	record := &models.Record{ID: "r4", Fields: map[string]any{
		"empName":  "John Doe",
		"password": 12345, // fails after empName would have been encrypted
	}}

	_, err := gate.PrepareForStorage(record)
	if err == nil {
		t.Fatal("expected transform failure")
	}
	if record.Fields["empName"] != "John Doe" {
		t.Errorf("input record mutated: %v", record.Fields["empName"])
	}
}

func TestGateRejectsDoubleEncryption(t *testing.T) {
	cipher := newTestCipher(t)
	gate := NewGate(cipher, sensitiveFields, true)
	envelope, err := cipher.Encrypt("x")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	record := &models.Record{ID: "r5", Fields: map[string]any{"password": envelope}}

	_, err = gate.PrepareForStorage(record)
	if !errors.Is(err, crypto.ErrInvalidEncoding) {
		t.Errorf("expected ErrInvalidEncoding, got %v", err)
	}
}
