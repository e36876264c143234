package http

import (
	"net/http"

	"github.com/aussiebroadwan/taskauth/internal/auth/service"
	"github.com/aussiebroadwan/taskauth/pkg/authsdk"
	"github.com/aussiebroadwan/taskauth/pkg/httpx"
)

type ProfileHandler struct {
	Auth    *service.AuthService
	KeyFunc httpx.KeyExtractor
}

// ServeHTTP returns the authenticated user's account.
//
//	@Summary		Current user
//	@Description	Returns the account behind the bearer token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ProfileResponse	"Account"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing, invalid or expired token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"Account no longer exists"
//	@Failure		429	{object}	authsdk.ErrorResponse	"Too many requests"
//	@Router			/api/auth/me [get].
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r, tr := trackAdmission(r)
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteBearerError(w, httpx.MsgInvalidToken)
		return
	}

	user, err := h.Auth.Profile(ctx, h.KeyFunc(r), userID)
	writeBudget(w, tr)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	})
}
