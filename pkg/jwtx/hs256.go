package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256 signs and verifies identity tokens with a shared HMAC secret.
type HS256 struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option configures an HS256.
type Option func(*HS256)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(h *HS256) { h.now = now }
}

// WithIssuer stamps tokens with iss and requires it on verification.
func WithIssuer(issuer string) Option {
	return func(h *HS256) { h.issuer = issuer }
}

// NewHS256 returns an HS256 issuer/verifier. An empty secret is refused, we
// never fall back to a default key.
func NewHS256(secret []byte, ttl time.Duration, opts ...Option) (*HS256, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	h := &HS256{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *HS256) Alg() string { return jwt.SigningMethodHS256.Alg() }

// TTL reports the lifetime given to issued tokens.
func (h *HS256) TTL() time.Duration { return h.ttl }

// Issue mints a token for the user that expires TTL after now.
func (h *HS256) Issue(userID int64, username string) (string, error) {
	if h == nil || len(h.secret) == 0 {
		return "", ErrMissingSecret
	}
	return h.Sign(NewClaims(userID, username, h.ttl, h.issuer, h.now()))
}

// Sign takes your claims and turns them into a signed JWT string.
func (h *HS256) Sign(claims Claims) (string, error) {
	if h == nil || len(h.secret) == 0 {
		return "", ErrMissingSecret
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify validates the JWT string and returns its parsed Claims. Every
// failure except a missing secret wraps ErrInvalidToken.
func (h *HS256) Verify(tokenStr string) (Claims, error) {
	if h == nil || len(h.secret) == 0 {
		return Claims{}, ErrMissingSecret
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(h.now),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		// WithValidMethods already pins the alg, this guards the key type.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAlgMismatch
		}
		return h.secret, nil
	})
	if err != nil {
		return Claims{}, invalid(classify(err))
	}
	if !token.Valid {
		return Claims{}, invalid(ErrInvalidSig)
	}

	if err := claims.ValidateExpiry(h.now()); err != nil {
		return Claims{}, invalid(err)
	}
	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return Claims{}, invalid(err)
	}
	if err := claims.ValidateIdentity(); err != nil {
		return Claims{}, invalid(err)
	}

	return claims, nil
}

func invalid(reason error) error {
	return fmt.Errorf("%w: %w", ErrInvalidToken, reason)
}

// classify maps parser errors onto our own sentinels so logs stay readable.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenUnverifiable), errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return fmt.Errorf("%w: %w", ErrInvalidClaim, err)
	}
}
