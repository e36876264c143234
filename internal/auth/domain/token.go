package domain

import "time"

// Identity is who a verified token says the caller is.
type Identity struct {
	UserID   int64
	Username string
}

// IssuedToken is the result of a successful login.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
	Identity
}
