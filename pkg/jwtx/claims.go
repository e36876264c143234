package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an identity token stays valid after issue.
// There is no refresh or revocation, a token lives until it expires.
const DefaultTokenTTL = 24 * time.Hour

// Claims are the identity claims shared with every service that trusts the
// signing secret. The task service reads `userId` directly, so the JSON names
// are part of the wire contract.
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`

	jwt.RegisteredClaims
}

// NewClaims builds claims for a user issued at now and expiring after ttl.
func NewClaims(userID int64, username string, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateIdentity makes sure the token names a user.
func (c *Claims) ValidateIdentity() error {
	if c.UserID <= 0 || c.Username == "" {
		return ErrInvalidClaim
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired at the given instant.
// A token without an expiry is rejected; every token we issue carries one.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}
