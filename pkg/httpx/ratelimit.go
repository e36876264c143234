package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/taskauth/pkg/ratelimit"
	"github.com/aussiebroadwan/taskauth/pkg/slogx"
	"golang.org/x/time/rate"
)

// MsgRateLimited is the one body every rate limited caller sees, whether it
// is one request over or a hundred.
const MsgRateLimited = "Too many requests, please try again later"

// WriteRateLimited writes a 429 with Retry-After and limit headers.
func WriteRateLimited(w http.ResponseWriter, d ratelimit.Decision) {
	SetRateLimitHeaders(w, d)
	w.Header().Set("Retry-After", strconv.Itoa(d.RetryAfterSeconds()))
	WriteError(w, http.StatusTooManyRequests, MsgRateLimited)
}

// SetRateLimitHeaders advertises the caller's current budget.
func SetRateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	if !d.ResetAt.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	}
}

// RateLimitMiddleware admits each request through l under action, keyed by
// keyExtractor.
func RateLimitMiddleware(l *ratelimit.Limiter, action ratelimit.Action, keyExtractor KeyExtractor) Middleware {
	// A flood of denials from one origin should not flood the logs too.
	sampled := &rate.Sometimes{First: 3, Interval: 10 * time.Second}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			key := keyExtractor(r)
			d := l.Admit(key, action)
			if !d.Allowed {
				sampled.Do(func() {
					slogx.FromContext(ctx).WarnContext(ctx, "rate limit exceeded",
						"key", key,
						"action", string(action),
						"retry_after", d.RetryAfterSeconds(),
					)
				})
				WriteRateLimited(w, d)
				return
			}

			SetRateLimitHeaders(w, d)
			next.ServeHTTP(w, r)
		})
	}
}
