package http

import (
	"net/http"

	"github.com/aussiebroadwan/taskauth/internal/auth/service"
	"github.com/aussiebroadwan/taskauth/pkg/httpx"
	"github.com/aussiebroadwan/taskauth/pkg/ratelimit"
)

// trackAdmission attaches a ratelimit.Tracker to r so the service's
// admission decision can be copied onto the response.
func trackAdmission(r *http.Request) (*http.Request, *ratelimit.Tracker) {
	ctx, tr := ratelimit.WithTracker(r.Context())
	return r.WithContext(ctx), tr
}

// writeBudget sets the X-RateLimit headers from the recorded decision. It
// must run before the status is written.
func writeBudget(w http.ResponseWriter, tr *ratelimit.Tracker) {
	if d, ok := tr.Decision(); ok {
		httpx.SetRateLimitHeaders(w, d)
	}
}

// rejectBody answers a body that did not decode. The request still spends
// budget under action, and a caller already over the limit gets the 429.
func rejectBody(w http.ResponseWriter, r *http.Request, tr *ratelimit.Tracker, auth *service.AuthService, key string, action ratelimit.Action) {
	_, err := auth.Admit(r.Context(), key, action)
	writeBudget(w, tr)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteError(w, http.StatusBadRequest, MsgInvalidBody)
}
