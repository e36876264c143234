package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/taskauth/internal/auth/store"
	"github.com/aussiebroadwan/taskauth/pkg/authsdk"
	"github.com/aussiebroadwan/taskauth/pkg/httpx"
	"github.com/aussiebroadwan/taskauth/pkg/slogx"
)

// HealthHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe returning service name, version and uptime. Always 200 while the process runs.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, service, version, uptime"
//	@Router			/health [get].
func HealthHandler(startTime time.Time, service, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  "healthy",
			Service: service,
			Version: version,
			Uptime:  time.Since(startTime).Truncate(time.Second).String(),
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe that also pings the user store.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, service, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{Database: "ok"}
		overallStatus := "healthy"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			slogx.LogError(r.Context(), slogx.FromContext(r.Context()), "readiness check failed", err)
			checks.Database = "error"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Service: service,
			Version: version,
			Uptime:  time.Since(startTime).Truncate(time.Second).String(),
			Checks:  checks,
		})
	}
}
