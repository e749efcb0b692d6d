package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// DefaultTTL is the token lifetime used when none is configured.
const DefaultTTL = time.Hour

// TokenService issues and validates stateless bearer tokens. Tokens are
// HS256-signed JWTs; validity is a pure function of the token content and
// the current time, so there is nothing to store or revoke server-side.
// Rotating the signing secret invalidates all outstanding tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

// NewTokenService creates a TokenService signing with secret. A ttl of 0
// selects DefaultTTL; a nil clock selects the real clock.
func NewTokenService(secret []byte, ttl time.Duration, clock clockwork.Clock) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenService{secret: secret, ttl: ttl, clock: clock}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue creates a signed token for subject, valid from now for the
// configured TTL.
func (s *TokenService) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("auth: empty subject")
	}
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate parses and verifies tokenString and returns its subject.
// Failures are *Error values: ErrMalformed when the token cannot be
// parsed, ErrBadSignature when the HMAC does not verify, ErrExpired when
// the expiry has passed.
func (s *TokenService) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", &Error{Kind: KindExpired, Err: err}
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", &Error{Kind: KindBadSignature, Err: err}
		default:
			return "", &Error{Kind: KindMalformed, Err: err}
		}
	}
	if !token.Valid {
		return "", &Error{Kind: KindBadSignature}
	}
	return claims.Subject, nil
}
