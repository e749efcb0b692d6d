package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestIssueAndValidate(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)

	for _, subject := range []string{"admin", "jane", "service-account-7"} {
		tok, err := svc.Issue(subject)
		if err != nil {
			t.Fatalf("Issue(%q): %v", subject, err)
		}
		got, err := svc.Validate(tok)
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if got != subject {
			t.Errorf("subject mismatch: got %q want %q", got, subject)
		}
	}
}

func TestIssueEmptySubject(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)
	if _, err := svc.Issue(""); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestValidateExpired(t *testing.T) {
	for _, ttl := range []time.Duration{time.Second, time.Minute, time.Hour} {
		// JWT timestamps have second precision; start on a whole second so
		// the expiry boundary is exact.
		clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
		svc := NewTokenService(testSecret, ttl, clock)

		tok, err := svc.Issue("admin")
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}

		// Still valid just before expiry
		clock.Advance(ttl - time.Millisecond)
		if _, err := svc.Validate(tok); err != nil {
			t.Fatalf("ttl=%v: expected valid before expiry, got %v", ttl, err)
		}

		clock.Advance(2 * time.Millisecond)
		_, err = svc.Validate(tok)
		if !errors.Is(err, ErrExpired) {
			t.Errorf("ttl=%v: expected ErrExpired, got %v", ttl, err)
		}
	}
}

func TestValidateWrongSecret(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)
	other := NewTokenService([]byte("another-secret-another-secret!!!"), time.Hour, nil)

	tok, err := svc.Issue("admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, err = other.Validate(tok)
	if !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature, got %v", err)
	}
}

func TestValidateMalformed(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)
	for _, tok := range []string{"", "garbage", "not.a.jwt", "a.b"} {
		_, err := svc.Validate(tok)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("Validate(%q): expected ErrMalformed, got %v", tok, err)
		}
	}
}

// Flipping any single bit of an issued token must fail validation, never
// succeed with a different subject.
func TestValidateBitFlip(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)
	tok, err := svc.Issue("admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for i := 0; i < len(tok); i++ {
		if tok[i] == '.' {
			continue
		}
		mutated := tok[:i] + string(tok[i]^0x01) + tok[i+1:]
		if mutated == tok {
			continue
		}
		subject, err := svc.Validate(mutated)
		if err == nil && subject != "admin" {
			t.Fatalf("bit flip at %d validated with subject %q", i, subject)
		}
		if err != nil && !errors.Is(err, ErrBadSignature) && !errors.Is(err, ErrMalformed) {
			t.Fatalf("bit flip at %d: unexpected error kind: %v", i, err)
		}
	}
}

func TestValidateNoSideEffects(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, nil)
	tok, _ := svc.Issue("admin")

	// Validity is recomputed on each check; repeated validation keeps
	// returning the same result.
	for i := 0; i < 3; i++ {
		subject, err := svc.Validate(tok)
		if err != nil || subject != "admin" {
			t.Fatalf("check %d: got (%q, %v)", i, subject, err)
		}
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: KindBadSignature}
	if !strings.Contains(err.Error(), "bad_signature") {
		t.Errorf("unexpected error string: %q", err.Error())
	}
}
