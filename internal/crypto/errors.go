package crypto

import "fmt"

// ErrorKind discriminates cipher failures.
type ErrorKind int

const (
	// KindInvalidEncoding means the input was not a well-formed
	// ciphertext envelope.
	KindInvalidEncoding ErrorKind = iota
	// KindIntegrityFailure means the authentication tag did not verify:
	// the value was tampered with or sealed under a different key.
	KindIntegrityFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidEncoding:
		return "invalid_encoding"
	case KindIntegrityFailure:
		return "integrity_failure"
	}
	return "unknown"
}

// Error is a cipher failure. Retrying with the same input yields the same
// failure; callers should treat it as data corruption or a mode mismatch.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cipher: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("cipher: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidEncoding  = &Error{Kind: KindInvalidEncoding}
	ErrIntegrityFailure = &Error{Kind: KindIntegrityFailure}
)
