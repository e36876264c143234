package jwtx

import (
	"errors"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
//
// Other services embed a Verifier built from the same secret to
// authenticate bearer tokens without calling back to the auth service.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	// ErrMissingSecret means the signing secret is unset. It is a
	// configuration fault, never a property of the token.
	ErrMissingSecret = errors.New("jwtx: signing secret is not configured")

	// ErrInvalidToken wraps every verification failure. Callers should not
	// branch on the underlying reason beyond logging it.
	ErrInvalidToken = errors.New("jwtx: invalid token")

	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrAlgMismatch  = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)
