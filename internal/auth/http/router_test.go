package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskauth/internal/auth/domain"
	authhttp "github.com/aussiebroadwan/taskauth/internal/auth/http"
	"github.com/aussiebroadwan/taskauth/internal/auth/service"
	"github.com/aussiebroadwan/taskauth/internal/auth/store"
	"github.com/aussiebroadwan/taskauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/taskauth/pkg/authsdk"
	"github.com/aussiebroadwan/taskauth/pkg/httpx"
	"github.com/aussiebroadwan/taskauth/pkg/jwtx"
	"github.com/aussiebroadwan/taskauth/pkg/ratelimit"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Str0ng!Passw0rd"

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	router *authhttp.Router
	svc    *service.AuthService
	clock  *fakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return newHarnessWithStore(t, st)
}

func newHarnessWithStore(t *testing.T, st store.Store) *harness {
	t.Helper()

	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	limiter, err := ratelimit.New(ratelimit.DefaultPolicies(), ratelimit.WithClock(clock.Now))
	require.NoError(t, err)

	tokens, err := jwtx.NewHS256([]byte("test-secret"), 0, jwtx.WithClock(clock.Now))
	require.NoError(t, err)

	svc, err := service.NewAuthService(st, limiter, tokens, nil)
	require.NoError(t, err)
	svc.Now = clock.Now

	router := authhttp.NewRouter(svc, st, authhttp.Options{
		BuildVersion: "test",
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "# metrics\n")
		}),
	})
	router.ApplyRoutes()

	return &harness{router: router, svc: svc, clock: clock}
}

// do sends one request from addr through the full middleware chain.
func (h *harness) do(t *testing.T, method, path, addr, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			rdr = strings.NewReader(s)
		} else {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			rdr = bytes.NewReader(b)
		}
	}

	req := httptest.NewRequest(method, path, rdr)
	req.RemoteAddr = addr + ":40000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func creds(username, password string) authsdk.CredentialsRequest {
	return authsdk.CredentialsRequest{Username: username, Password: password}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("creates user", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", creds("alice_99", strongPassword))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
		require.Equal(t, fmt.Sprint(h.clock.Now().Add(time.Hour).Unix()), rec.Header().Get("X-RateLimit-Reset"))

		resp := decode[authsdk.RegisterResponse](t, rec)
		require.Equal(t, authhttp.MsgRegistered, resp.Message)
		require.Positive(t, resp.UserID)
	})

	t.Run("weak password lists requirements", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", creds("alice_99", "weakpass"))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode[authsdk.ErrorResponse](t, rec)
		require.Equal(t, service.MsgWeakPassword, resp.Error)
		require.NotEmpty(t, resp.Requirements)
	})

	t.Run("invalid username", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", creds("al", strongPassword))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decode[authsdk.ErrorResponse](t, rec)
		require.Equal(t, service.MsgInvalidUsername, resp.Error)
		require.Empty(t, resp.Requirements)
	})

	t.Run("malformed body", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", `{"username":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, authhttp.MsgInvalidBody, decode[authsdk.ErrorResponse](t, rec).Error)
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("malformed bodies spend the budget", func(t *testing.T) {
		h := newHarness(t)

		for range 3 {
			rec := h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", `not json`)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		}

		rec := h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", `not json`)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "3600", rec.Header().Get("Retry-After"))

		rec = h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", creds("alice_99", strongPassword))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("duplicate username ignoring case", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", creds("alice_99", strongPassword))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.2", "", creds("ALICE_99", strongPassword))
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Equal(t, authhttp.MsgUsernameTaken, decode[authsdk.ErrorResponse](t, rec).Error)
	})

	t.Run("fourth attempt in an hour is limited", func(t *testing.T) {
		h := newHarness(t)

		for i := range 3 {
			rec := h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", creds(fmt.Sprintf("user_%d", i), strongPassword))
			require.Equal(t, http.StatusCreated, rec.Code)
		}

		rec := h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", creds("user_3", strongPassword))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, httpx.MsgRateLimited, decode[authsdk.ErrorResponse](t, rec).Error)
		require.Equal(t, "3600", rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		// Another address has its own window.
		rec = h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.2", "", creds("user_3", strongPassword))
		require.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("issues a verifiable token", func(t *testing.T) {
		h := newHarness(t)
		require.Equal(t, http.StatusCreated,
			h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", creds("alice_99", strongPassword)).Code)

		rec := h.do(t, http.MethodPost, "/api/auth/login", "192.0.2.1", "", creds("alice_99", strongPassword))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
		require.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))

		resp := decode[authsdk.LoginResponse](t, rec)
		require.NotEmpty(t, resp.Token)
		require.Equal(t, "alice_99", resp.Username)
		require.Positive(t, resp.UserID)

		rec = h.do(t, http.MethodPost, "/api/auth/verify", "192.0.2.1", resp.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		v := decode[authsdk.VerifyResponse](t, rec)
		require.True(t, v.Valid)
		require.Equal(t, resp.UserID, v.UserID)
		require.Equal(t, "alice_99", v.Username)
	})

	t.Run("unknown user and wrong password look the same", func(t *testing.T) {
		h := newHarness(t)
		require.Equal(t, http.StatusCreated,
			h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", creds("alice_99", strongPassword)).Code)

		wrong := h.do(t, http.MethodPost, "/api/auth/login", "192.0.2.1", "", creds("alice_99", "Wr0ng!Passw0rd"))
		unknown := h.do(t, http.MethodPost, "/api/auth/login", "192.0.2.1", "", creds("nobody_here", strongPassword))

		require.Equal(t, http.StatusUnauthorized, wrong.Code)
		require.Equal(t, "4", wrong.Header().Get("X-RateLimit-Remaining"))
		require.Equal(t, "3", unknown.Header().Get("X-RateLimit-Remaining"))
		require.Equal(t, wrong.Code, unknown.Code)
		require.Equal(t, wrong.Body.String(), unknown.Body.String())
		require.Equal(t, authhttp.MsgInvalidCredentials, decode[authsdk.ErrorResponse](t, wrong).Error)
	})

	t.Run("missing fields", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodPost, "/api/auth/login", "192.0.2.1", "", creds("alice_99", ""))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, service.MsgFieldsRequired, decode[authsdk.ErrorResponse](t, rec).Error)
	})

	t.Run("limited caller with malformed body gets 429", func(t *testing.T) {
		h := newHarness(t)

		for range 5 {
			rec := h.do(t, http.MethodPost, "/api/auth/login", "192.0.2.1", "", `{"username":`)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		}

		rec := h.do(t, http.MethodPost, "/api/auth/login", "192.0.2.1", "", `{"username":`)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, httpx.MsgRateLimited, decode[authsdk.ErrorResponse](t, rec).Error)
	})

	t.Run("sixth attempt is limited until the window ends", func(t *testing.T) {
		h := newHarness(t)
		require.Equal(t, http.StatusCreated,
			h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", creds("alice_99", strongPassword)).Code)

		for range 5 {
			rec := h.do(t, http.MethodPost, "/api/auth/login", "192.0.2.1", "", creds("alice_99", "Wr0ng!Passw0rd"))
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		}

		// Correct credentials do not bypass the limit.
		rec := h.do(t, http.MethodPost, "/api/auth/login", "192.0.2.1", "", creds("alice_99", strongPassword))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "900", rec.Header().Get("Retry-After"))
		require.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))

		h.clock.Advance(15 * time.Minute)

		rec = h.do(t, http.MethodPost, "/api/auth/login", "192.0.2.1", "", creds("alice_99", strongPassword))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestVerifyEndpoint(t *testing.T) {
	h := newHarness(t)

	expired, err := jwtx.NewHS256([]byte("test-secret"), time.Hour,
		jwtx.WithClock(func() time.Time { return h.clock.Now().Add(-2 * time.Hour) }))
	require.NoError(t, err)
	expiredToken, err := expired.Issue(1, "alice_99")
	require.NoError(t, err)

	forged, err := jwtx.NewHS256([]byte("another-secret"), 0, jwtx.WithClock(h.clock.Now))
	require.NoError(t, err)
	forgedToken, err := forged.Issue(1, "alice_99")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		msg   string
	}{
		{name: "missing", token: "", msg: httpx.MsgMissingToken},
		{name: "garbage", token: "not-a-jwt", msg: httpx.MsgInvalidToken},
		{name: "wrong secret", token: forgedToken, msg: httpx.MsgInvalidToken},
		{name: "expired", token: expiredToken, msg: httpx.MsgInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(t, http.MethodPost, "/api/auth/verify", "192.0.2.1", tt.token, nil)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
			require.Equal(t, tt.msg, decode[authsdk.ErrorResponse](t, rec).Error)
		})
	}
}

func TestProfileEndpoint(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, http.StatusCreated,
		h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", creds("alice_99", strongPassword)).Code)
	login := decode[authsdk.LoginResponse](t,
		h.do(t, http.MethodPost, "/api/auth/login", "192.0.2.1", "", creds("alice_99", strongPassword)))

	t.Run("returns account", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/api/auth/me", "192.0.2.1", login.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "100", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "99", rec.Header().Get("X-RateLimit-Remaining"))

		resp := decode[authsdk.ProfileResponse](t, rec)
		require.Equal(t, login.UserID, resp.UserID)
		require.Equal(t, "alice_99", resp.Username)
		require.True(t, resp.CreatedAt.Equal(h.clock.Now()))
	})

	t.Run("requires token", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/api/auth/me", "192.0.2.1", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, httpx.MsgMissingToken, decode[authsdk.ErrorResponse](t, rec).Error)
	})

	t.Run("deleted account", func(t *testing.T) {
		ghost, err := h.svc.Tokens.Issue(9999, "ghost")
		require.NoError(t, err)

		rec := h.do(t, http.MethodGet, "/api/auth/me", "192.0.2.1", ghost, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, authhttp.MsgUserNotFound, decode[authsdk.ErrorResponse](t, rec).Error)
	})
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t)

	t.Run("health", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/health", "192.0.2.1", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("X-RateLimit-Limit"))

		resp := decode[authsdk.HealthResponse](t, rec)
		require.Equal(t, "healthy", resp.Status)
		require.Equal(t, "auth-service", resp.Service)
		require.Equal(t, "test", resp.Version)
		require.Nil(t, resp.Checks)
	})

	t.Run("readyz", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/readyz", "192.0.2.1", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "100", rec.Header().Get("X-RateLimit-Limit"))

		resp := decode[authsdk.HealthResponse](t, rec)
		require.Equal(t, "healthy", resp.Status)
		require.NotNil(t, resp.Checks)
		require.Equal(t, "ok", resp.Checks.Database)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/metrics", "192.0.2.1", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "# metrics")
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/api/auth/nope", "192.0.2.1", "", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// overloadedStore fails every query the way a saturated Guard does.
type overloadedStore struct {
	store.Store
}

func (s overloadedStore) Users() store.Users { return overloadedUsers{} }

func (s overloadedStore) Ping(context.Context) error { return store.ErrBusy }

type overloadedUsers struct{}

func (overloadedUsers) CreateUser(context.Context, domain.User) (domain.User, error) {
	return domain.User{}, store.ErrBusy
}

func (overloadedUsers) GetUserByUsername(context.Context, string) (domain.User, error) {
	return domain.User{}, store.ErrTimeout
}

func (overloadedUsers) GetUserByID(context.Context, int64) (domain.User, error) {
	return domain.User{}, store.ErrBusy
}

func TestOverloadedStore(t *testing.T) {
	h := newHarnessWithStore(t, overloadedStore{})

	t.Run("register", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/auth/register", "192.0.2.1", "", creds("alice_99", strongPassword))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "1", rec.Header().Get("Retry-After"))
		require.Equal(t, authhttp.MsgUnavailable, decode[authsdk.ErrorResponse](t, rec).Error)
	})

	t.Run("login", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/auth/login", "192.0.2.1", "", creds("alice_99", strongPassword))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("readyz degraded", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/readyz", "192.0.2.1", "", nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		resp := decode[authsdk.HealthResponse](t, rec)
		require.Equal(t, "degraded", resp.Status)
		require.Equal(t, "error", resp.Checks.Database)
		require.NotContains(t, rec.Body.String(), store.ErrBusy.Error())
	})

	t.Run("verify needs no store", func(t *testing.T) {
		token, err := h.svc.Tokens.Issue(1, "alice_99")
		require.NoError(t, err)

		rec := h.do(t, http.MethodPost, "/api/auth/verify", "192.0.2.1", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCORSPreflight(t *testing.T) {
	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	limiter := ratelimit.MustNew(ratelimit.DefaultPolicies())
	svc, err := service.NewAuthService(st, limiter, nil, nil)
	require.NoError(t, err)

	router := authhttp.NewRouter(svc, st, authhttp.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	router.ApplyRoutes()

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
