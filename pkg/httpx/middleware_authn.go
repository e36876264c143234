package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/taskauth/pkg/jwtx"
	"github.com/aussiebroadwan/taskauth/pkg/slogx"
)

// Bearer token failures. The messages are deliberately generic, they never
// say whether a token was expired, forged or malformed.
const (
	MsgMissingToken = "Access token required"
	MsgInvalidToken = "Invalid or expired token"
)

// MsgVerifierUnavailable answers requests whose token could not be checked
// at all, for example when a remote verifier is unreachable.
const MsgVerifierUnavailable = "Authentication temporarily unavailable"

// BearerToken extracts the token from an "Authorization: Bearer" header.
// It returns "" when the header is absent or uses another scheme.
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthnMiddleware rejects requests without a valid bearer token and stores
// the verified claims in the request context.
//
// Any service holding the signing secret can use it to protect its own
// routes without a round trip to the auth service.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := BearerToken(r)
			if raw == "" {
				WriteBearerError(w, MsgMissingToken)
				return
			}

			claims, err := v.Verify(raw)
			switch {
			case err == nil:
			case errors.Is(err, jwtx.ErrInvalidToken):
				log.InfoContext(ctx, "jwt verify failed", "err", err)
				WriteBearerError(w, MsgInvalidToken)
				return
			case errors.Is(err, jwtx.ErrMissingSecret):
				log.ErrorContext(ctx, "jwt verifier has no signing secret")
				WriteError(w, http.StatusInternalServerError, "Server configuration error")
				return
			default:
				// Not a verdict on the token. The client keeps its session
				// and retries.
				slogx.LogError(ctx, log, "jwt verifier unavailable", err)
				w.Header().Set("Retry-After", "1")
				WriteError(w, http.StatusServiceUnavailable, MsgVerifierUnavailable)
				return
			}

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WriteBearerError writes an RFC 6750 style 401 with a JSON body.
func WriteBearerError(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteError(w, http.StatusUnauthorized, msg)
}
