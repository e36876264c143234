package authsdk

import "time"

// ============================================================================
// Request Types
// ============================================================================

// CredentialsRequest is the body of both register and login.
type CredentialsRequest struct {
	Username string `json:"username" example:"alice_99"`
	Password string `json:"password" example:"Str0ng!Passw0rd"`
}

// ============================================================================
// Response Types
// ============================================================================

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	// Error is a human readable message. It never says whether a login
	// failed on the username or the password.
	Error string `json:"error" example:"Invalid credentials"`

	// Requirements lists the password rules that were not met.
	Requirements []string `json:"requirements,omitempty"`
}

// RegisterResponse is returned from POST /api/auth/register.
type RegisterResponse struct {
	Message string `json:"message" example:"User registered successfully"`
	UserID  int64  `json:"userId" example:"1"`
}

// LoginResponse is returned from POST /api/auth/login.
type LoginResponse struct {
	// Token is an HS256 JWT valid for 24 hours.
	Token    string `json:"token"`
	UserID   int64  `json:"userId" example:"1"`
	Username string `json:"username" example:"alice_99"`
}

// VerifyResponse is returned from POST /api/auth/verify.
type VerifyResponse struct {
	Valid    bool   `json:"valid" example:"true"`
	UserID   int64  `json:"userId" example:"1"`
	Username string `json:"username" example:"alice_99"`
}

// ProfileResponse is returned from GET /api/auth/me.
type ProfileResponse struct {
	UserID    int64     `json:"userId" example:"1"`
	Username  string    `json:"username" example:"alice_99"`
	CreatedAt time.Time `json:"createdAt"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned from GET /health and GET /readyz.
type HealthResponse struct {
	Status  string        `json:"status" example:"healthy"`
	Service string        `json:"service" example:"auth-service"`
	Version string        `json:"version" example:"1.0.0"`
	Uptime  string        `json:"uptime" example:"1h2m3s"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency on /readyz.
type HealthChecks struct {
	Database string `json:"database" example:"ok"`
}
