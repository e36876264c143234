package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/taskauth/internal/auth/domain"
	"github.com/aussiebroadwan/taskauth/internal/auth/store"
	"github.com/aussiebroadwan/taskauth/pkg/cryptox"
	"github.com/aussiebroadwan/taskauth/pkg/jwtx"
	"github.com/aussiebroadwan/taskauth/pkg/ratelimit"
	"github.com/aussiebroadwan/taskauth/pkg/slogx"
)

// Tokens issues and verifies identity tokens.
type Tokens interface {
	jwtx.Issuer
	jwtx.Verifier
	TTL() time.Duration
}

// LoginResult is what a successful login hands back to the caller.
type LoginResult = domain.IssuedToken

// Attempt outcomes reported to the Recorder.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidInput       = "invalid_input"
	OutcomeDuplicate          = "duplicate"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeRateLimited        = "rate_limited"
	OutcomeUnavailable        = "unavailable"
	OutcomeError              = "error"
)

// Recorder receives auth metrics. NewAuthService substitutes a no-op for
// nil.
type Recorder interface {
	AuthAttempt(op, outcome string)
	RateLimited(action ratelimit.Action)
	HashDuration(d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) AuthAttempt(string, string)   {}
func (noopRecorder) RateLimited(ratelimit.Action) {}
func (noopRecorder) HashDuration(time.Duration)   {}

// AuthService registers users, logs them in and verifies their tokens.
type AuthService struct {
	Store   store.Store
	Limiter *ratelimit.Limiter
	Tokens  Tokens
	Metrics Recorder
	Now     func() time.Time

	dummyHash string
}

// NewAuthService wires the service and precomputes the hash used to verify
// logins for unknown usernames.
func NewAuthService(st store.Store, limiter *ratelimit.Limiter, tokens Tokens, metrics Recorder) (*AuthService, error) {
	if st == nil || limiter == nil {
		return nil, errors.New("service: store and limiter are required")
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}

	dummy, err := cryptox.NewDummyHash()
	if err != nil {
		return nil, fmt.Errorf("service: dummy hash: %w", err)
	}

	return &AuthService{
		Store:     st,
		Limiter:   limiter,
		Tokens:    tokens,
		Metrics:   metrics,
		Now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// Register creates a user after the caller passes the registration limit
// and both fields validate.
func (s *AuthService) Register(ctx context.Context, clientKey, username, password string) (domain.User, error) {
	const op = "register"
	l := slogx.FromContext(ctx)

	if _, err := s.Admit(ctx, clientKey, ratelimit.ActionRegister); err != nil {
		s.Metrics.AuthAttempt(op, OutcomeRateLimited)
		return domain.User{}, err
	}

	if err := validateRegistration(username, password); err != nil {
		s.Metrics.AuthAttempt(op, OutcomeInvalidInput)
		return domain.User{}, err
	}

	hash, err := s.hash(password)
	if err != nil {
		s.Metrics.AuthAttempt(op, OutcomeError)
		return domain.User{}, err
	}

	user, err := s.Store.Users().CreateUser(ctx, domain.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			s.Metrics.AuthAttempt(op, OutcomeDuplicate)
			l.Info("registration rejected, username taken", slog.String("username", username))
			return domain.User{}, ErrDuplicateUsername
		}
		err = unavailable(err)
		s.Metrics.AuthAttempt(op, outcomeFor(err))
		return domain.User{}, err
	}

	s.Metrics.AuthAttempt(op, OutcomeSuccess)
	l.Info("user registered", slog.Int64("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}

// Login checks the credentials and issues a token. Unknown users and wrong
// passwords both yield ErrInvalidCredentials after the same bcrypt work.
func (s *AuthService) Login(ctx context.Context, clientKey, username, password string) (LoginResult, error) {
	const op = "login"
	l := slogx.FromContext(ctx)

	if _, err := s.Admit(ctx, clientKey, ratelimit.ActionLogin); err != nil {
		s.Metrics.AuthAttempt(op, OutcomeRateLimited)
		return LoginResult{}, err
	}

	if username == "" || password == "" {
		s.Metrics.AuthAttempt(op, OutcomeInvalidInput)
		return LoginResult{}, &ValidationError{Field: "username", Message: MsgFieldsRequired}
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	found := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		err = unavailable(err)
		s.Metrics.AuthAttempt(op, outcomeFor(err))
		return LoginResult{}, err
	}

	hash := s.dummyHash
	if found {
		hash = user.PasswordHash
	}

	ok, verr := cryptox.VerifyPassword(password, hash)
	if verr != nil {
		l.Warn("password verification errored", slog.Bool("user_found", found), slog.Any("err", verr))
	}
	if !found || !ok {
		s.Metrics.AuthAttempt(op, OutcomeInvalidCredentials)
		l.Info("login failed", slog.String("username", username))
		return LoginResult{}, ErrInvalidCredentials
	}

	if s.Tokens == nil {
		s.Metrics.AuthAttempt(op, OutcomeError)
		l.Error("token issuer is not configured")
		return LoginResult{}, ErrConfiguration
	}

	token, err := s.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		s.Metrics.AuthAttempt(op, OutcomeError)
		if errors.Is(err, jwtx.ErrMissingSecret) {
			l.Error("jwt signing secret is not configured")
			return LoginResult{}, ErrConfiguration
		}
		return LoginResult{}, fmt.Errorf("service: issue token: %w", err)
	}

	s.Metrics.AuthAttempt(op, OutcomeSuccess)
	l.Info("user logged in", slog.Int64("user_id", user.ID))

	return LoginResult{
		Token:     token,
		ExpiresAt: s.now().Add(s.Tokens.TTL()),
		Identity:  domain.Identity{UserID: user.ID, Username: user.Username},
	}, nil
}

// Verify checks a bearer token. It touches neither the store nor the
// limiter.
func (s *AuthService) Verify(ctx context.Context, bearer string) (domain.Identity, error) {
	if bearer == "" {
		return domain.Identity{}, ErrMissingToken
	}
	if s.Tokens == nil {
		return domain.Identity{}, ErrConfiguration
	}

	claims, err := s.Tokens.Verify(bearer)
	if err != nil {
		if errors.Is(err, jwtx.ErrMissingSecret) {
			return domain.Identity{}, ErrConfiguration
		}
		slogx.FromContext(ctx).Debug("token rejected", slog.Any("err", err))
		return domain.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return domain.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// Profile returns the stored user behind a verified token.
func (s *AuthService) Profile(ctx context.Context, clientKey string, userID int64) (domain.User, error) {
	if _, err := s.Admit(ctx, clientKey, ratelimit.ActionGeneral); err != nil {
		return domain.User{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, unavailable(err)
	}
	return user, nil
}

// Admit spends one unit of the caller's budget for action. Register, Login
// and Profile call it first; transports call it directly for requests they
// reject before reaching those, so rejected requests still count. The
// decision is also recorded on the context's ratelimit.Tracker.
func (s *AuthService) Admit(ctx context.Context, clientKey string, action ratelimit.Action) (ratelimit.Decision, error) {
	d := s.Limiter.Admit(clientKey, action)
	ratelimit.Track(ctx, d)
	if d.Allowed {
		return d, nil
	}
	s.Metrics.RateLimited(action)
	return d, &RateLimitError{Action: action, Decision: d}
}

func (s *AuthService) hash(password string) (string, error) {
	start := time.Now()
	hash, err := cryptox.HashPassword(password)
	s.Metrics.HashDuration(time.Since(start))
	if err != nil {
		return "", fmt.Errorf("service: hash password: %w", err)
	}
	return hash, nil
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// unavailable marks store overload as ErrUnavailable and leaves every other
// error alone.
func unavailable(err error) error {
	if errors.Is(err, store.ErrBusy) || errors.Is(err, store.ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func outcomeFor(err error) string {
	if errors.Is(err, ErrUnavailable) {
		return OutcomeUnavailable
	}
	return OutcomeError
}
