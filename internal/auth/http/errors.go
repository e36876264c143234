package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/taskauth/internal/auth/service"
	"github.com/aussiebroadwan/taskauth/pkg/authsdk"
	"github.com/aussiebroadwan/taskauth/pkg/httpx"
	"github.com/aussiebroadwan/taskauth/pkg/slogx"
)

// Response messages. Login failures share one message whatever the cause.
const (
	MsgInvalidBody        = "Invalid request body"
	MsgUsernameTaken      = "Username already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgUserNotFound       = "User not found"
	MsgConfiguration      = "Server configuration error"
	MsgUnavailable        = "Service temporarily unavailable"
	MsgInternal           = "Internal server error"
	MsgRegistered         = "User registered successfully"
)

// writeServiceError maps a service error onto its HTTP reply.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var (
		rlErr  *service.RateLimitError
		valErr *service.ValidationError
	)

	switch {
	case errors.As(err, &rlErr):
		httpx.WriteRateLimited(w, rlErr.Decision)

	case errors.As(err, &valErr):
		httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ErrorResponse{
			Error:        valErr.Message,
			Requirements: valErr.Requirements,
		})

	case errors.Is(err, service.ErrDuplicateUsername):
		httpx.WriteError(w, http.StatusConflict, MsgUsernameTaken)

	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, MsgInvalidCredentials)

	case errors.Is(err, service.ErrMissingToken):
		httpx.WriteBearerError(w, httpx.MsgMissingToken)

	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteBearerError(w, httpx.MsgInvalidToken)

	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, MsgUserNotFound)

	case errors.Is(err, service.ErrConfiguration):
		log.ErrorContext(ctx, "server misconfigured", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, MsgConfiguration)

	case errors.Is(err, service.ErrUnavailable):
		log.WarnContext(ctx, "store overloaded", "err", err)
		w.Header().Set("Retry-After", "1")
		httpx.WriteError(w, http.StatusServiceUnavailable, MsgUnavailable)

	default:
		slogx.LogError(ctx, log, "unhandled service error", err)
		httpx.WriteError(w, http.StatusInternalServerError, MsgInternal)
	}
}
