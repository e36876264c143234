package service

import (
	"regexp"

	"github.com/aussiebroadwan/taskauth/pkg/cryptox"
	"github.com/aussiebroadwan/taskauth/pkg/passwordx"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,30}$`)

// User facing validation messages.
const (
	MsgFieldsRequired  = "Username and password are required"
	MsgInvalidUsername = "Username must be 3-30 characters and contain only letters, numbers, underscores and hyphens"
	MsgWeakPassword    = "Password does not meet strength requirements"
	MsgPasswordTooLong = "Password must be at most 72 bytes"
)

// ValidUsername reports whether name has the accepted shape.
func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}

func validateRegistration(username, password string) error {
	if username == "" || password == "" {
		return &ValidationError{Field: "username", Message: MsgFieldsRequired}
	}
	if !ValidUsername(username) {
		return &ValidationError{Field: "username", Message: MsgInvalidUsername}
	}
	if len(password) > cryptox.MaxPasswordBytes {
		return &ValidationError{Field: "password", Message: MsgPasswordTooLong}
	}

	res := passwordx.Evaluate(password)
	if !res.Valid {
		return &ValidationError{
			Field:        "password",
			Message:      MsgWeakPassword,
			Requirements: res.MissingDescriptions(),
		}
	}
	return nil
}
