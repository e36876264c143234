package authsdk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/taskauth/pkg/jwtx"
)

// RemoteVerifier checks tokens by calling the auth service's verify
// endpoint. Services that do not hold the signing secret use it with
// httpx.AuthnMiddleware.
type RemoteVerifier struct {
	Client  *SDKClient
	Timeout time.Duration
}

var _ jwtx.Verifier = (*RemoteVerifier)(nil)

// NewRemoteVerifier returns a verifier with a 5 second per-call timeout.
func NewRemoteVerifier(client *SDKClient) *RemoteVerifier {
	return &RemoteVerifier{Client: client, Timeout: 5 * time.Second}
}

// Verify implements jwtx.Verifier. A 401 maps to jwtx.ErrInvalidToken.
// Transport errors and other statuses are returned unwrapped, so
// httpx.AuthnMiddleware answers them with 503 rather than 401.
func (v *RemoteVerifier) Verify(token string) (jwtx.Claims, error) {
	ctx := context.Background()
	if v.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.Timeout)
		defer cancel()
	}

	res, err := v.Client.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return jwtx.Claims{}, fmt.Errorf("%w: %w", jwtx.ErrInvalidToken, err)
		}
		return jwtx.Claims{}, err
	}
	if !res.Valid {
		return jwtx.Claims{}, jwtx.ErrInvalidToken
	}

	return jwtx.Claims{UserID: res.UserID, Username: res.Username}, nil
}
