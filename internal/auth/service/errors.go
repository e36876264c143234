package service

import (
	"errors"
	"time"

	"github.com/aussiebroadwan/taskauth/pkg/ratelimit"
)

var (
	ErrInvalidInput       = errors.New("invalid_input")
	ErrDuplicateUsername  = errors.New("duplicate_username")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrRateLimited        = errors.New("rate_limited")
	ErrMissingToken       = errors.New("missing_token")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrConfiguration      = errors.New("configuration_error")
	ErrUnavailable        = errors.New("unavailable")
	ErrUserNotFound       = errors.New("user_not_found")
)

// ValidationError describes rejected input. Requirements lists the password
// rules that were not met, it is empty for every other field.
type ValidationError struct {
	Field        string
	Message      string
	Requirements []string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// RateLimitError carries the limiter decision so callers can advertise when
// to retry.
type RateLimitError struct {
	Action   ratelimit.Action
	Decision ratelimit.Decision
}

func (e *RateLimitError) Error() string { return "rate limited: " + string(e.Action) }

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// RetryAfter is how long until the caller's window resets.
func (e *RateLimitError) RetryAfter() time.Duration { return e.Decision.RetryAfter }
