package auth

import "fmt"

// ErrorKind discriminates authentication failures so callers can map each
// one to a distinct outcome.
type ErrorKind int

const (
	// KindMissing means no credential was presented at all.
	KindMissing ErrorKind = iota
	// KindMalformed means the token could not be parsed into its claims.
	KindMalformed
	// KindBadSignature means the signature did not verify under the
	// service secret.
	KindBadSignature
	// KindExpired means the token's expiry time has passed.
	KindExpired
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindMalformed:
		return "malformed"
	case KindBadSignature:
		return "bad_signature"
	case KindExpired:
		return "expired"
	}
	return "unknown"
}

// Error is an authentication failure. It wraps the underlying cause, if
// any, and carries the Kind.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s token: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("auth: %s token", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is match on Kind, so sentinel values below work through
// wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrMissing      = &Error{Kind: KindMissing}
	ErrMalformed    = &Error{Kind: KindMalformed}
	ErrBadSignature = &Error{Kind: KindBadSignature}
	ErrExpired      = &Error{Kind: KindExpired}
)
