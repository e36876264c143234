package http

import (
	"net/http"

	"github.com/aussiebroadwan/taskauth/internal/auth/service"
	"github.com/aussiebroadwan/taskauth/pkg/authsdk"
	"github.com/aussiebroadwan/taskauth/pkg/httpx"
)

type VerifyHandler struct {
	Auth *service.AuthService
}

// ServeHTTP checks the bearer token.
//
//	@Summary		Verify a token
//	@Description	Checks the signature and expiry of the bearer token and returns the identity inside it.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.VerifyResponse	"Token is valid"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing, invalid or expired token"
//	@Router			/api/auth/verify [post].
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := h.Auth.Verify(r.Context(), httpx.BearerToken(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.VerifyResponse{
		Valid:    true,
		UserID:   id.UserID,
		Username: id.Username,
	})
}
