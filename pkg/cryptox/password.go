package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor used for every stored password. It is fixed
// so hashes produced by different instances are interchangeable.
const Cost = 10

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned when a password exceeds MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("cryptox: password exceeds 72 bytes")

// HashPassword returns a salted bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash.
//
// A mismatch is reported as (false, nil). An error means the stored hash
// could not be parsed, which callers should treat as a failed login too.
func VerifyPassword(password, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("cryptox: verify password: %w", err)
	}
}

// NewDummyHash hashes a random secret at the standard cost. Verifying
// against it takes as long as verifying a real account, which keeps unknown
// usernames indistinguishable from wrong passwords.
func NewDummyHash() (string, error) {
	secret, err := GenerateToken(DummySecretBytes)
	if err != nil {
		return "", err
	}
	return HashPassword(secret)
}
