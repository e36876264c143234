package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// APIError is a non-2xx reply from the auth service.
type APIError struct {
	// StatusCode is the HTTP status of the reply.
	StatusCode int

	// Message is the "error" field of the body.
	Message string

	// Requirements lists unmet password rules on a 400 from register.
	Requirements []string

	// RetryAfter is parsed from the Retry-After header on a 429.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("authsdk: %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is match an APIError against the status sentinels below.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.StatusCode == e.StatusCode
}

// Status sentinels for errors.Is.
var (
	ErrBadRequest   = &APIError{StatusCode: http.StatusBadRequest}
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}
	ErrNotFound     = &APIError{StatusCode: http.StatusNotFound}
	ErrConflict     = &APIError{StatusCode: http.StatusConflict}
	ErrRateLimited  = &APIError{StatusCode: http.StatusTooManyRequests}
	ErrServerError  = &APIError{StatusCode: http.StatusInternalServerError}
	ErrUnavailable  = &APIError{StatusCode: http.StatusServiceUnavailable}
)

// parseErrorResponse turns a failed reply into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		apiErr.Message = errResp.Error
		apiErr.Requirements = errResp.Requirements
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
		apiErr.RetryAfter = time.Duration(secs) * time.Second
	}

	return apiErr
}
