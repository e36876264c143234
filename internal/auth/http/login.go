package http

import (
	"net/http"

	"github.com/aussiebroadwan/taskauth/internal/auth/service"
	"github.com/aussiebroadwan/taskauth/pkg/authsdk"
	"github.com/aussiebroadwan/taskauth/pkg/httpx"
	"github.com/aussiebroadwan/taskauth/pkg/ratelimit"
)

type LoginHandler struct {
	Auth    *service.AuthService
	KeyFunc httpx.KeyExtractor
}

// ServeHTTP exchanges a username and password for a token.
//
//	@Summary		Log in
//	@Description	Returns an HS256 JWT valid for 24 hours. Unknown usernames and wrong passwords get the same 401.
//	@Description	Limited to 5 attempts per 15 minutes per client address.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CredentialsRequest	true	"Username and password"
//	@Success		200		{object}	authsdk.LoginResponse		"Token and identity"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Missing username or password"
//	@Failure		401		{object}	authsdk.ErrorResponse		"Invalid credentials"
//	@Failure		429		{object}	authsdk.ErrorResponse		"Too many requests"
//	@Failure		500		{object}	authsdk.ErrorResponse		"Server configuration error"
//	@Failure		503		{object}	authsdk.ErrorResponse		"Store overloaded"
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r, tr := trackAdmission(r)
	key := h.KeyFunc(r)

	var req authsdk.CredentialsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		rejectBody(w, r, tr, h.Auth, key, ratelimit.ActionLogin)
		return
	}

	res, err := h.Auth.Login(r.Context(), key, req.Username, req.Password)
	writeBudget(w, tr)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Token:    res.Token,
		UserID:   res.UserID,
		Username: res.Username,
	})
}
