package http

import (
	"net/http"

	"github.com/aussiebroadwan/taskauth/internal/auth/service"
	"github.com/aussiebroadwan/taskauth/pkg/authsdk"
	"github.com/aussiebroadwan/taskauth/pkg/httpx"
	"github.com/aussiebroadwan/taskauth/pkg/ratelimit"
)

type RegisterHandler struct {
	Auth    *service.AuthService
	KeyFunc httpx.KeyExtractor
}

// ServeHTTP creates an account.
//
//	@Summary		Register a user
//	@Description	Creates an account. The username must be 3-30 letters, digits, underscores or hyphens and is unique ignoring case.
//	@Description	The password needs at least 12 characters with a lowercase letter, an uppercase letter, a digit and one of @$!%*?&#.
//	@Description	Limited to 3 attempts per hour per client address.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CredentialsRequest	true	"Username and password"
//	@Success		201		{object}	authsdk.RegisterResponse	"User created"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Invalid username or weak password, unmet rules in requirements"
//	@Failure		409		{object}	authsdk.ErrorResponse		"Username already exists"
//	@Failure		429		{object}	authsdk.ErrorResponse		"Too many requests"
//	@Failure		500		{object}	authsdk.ErrorResponse		"Internal server error"
//	@Failure		503		{object}	authsdk.ErrorResponse		"Store overloaded"
//	@Router			/api/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r, tr := trackAdmission(r)
	key := h.KeyFunc(r)

	var req authsdk.CredentialsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		rejectBody(w, r, tr, h.Auth, key, ratelimit.ActionRegister)
		return
	}

	user, err := h.Auth.Register(r.Context(), key, req.Username, req.Password)
	writeBudget(w, tr)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		Message: MsgRegistered,
		UserID:  user.ID,
	})
}
