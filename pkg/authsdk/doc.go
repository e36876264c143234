/*
Package authsdk provides a client SDK for the task app authentication service.

# Overview

The service registers users, logs them in with a username and password and
issues HS256 JWTs valid for 24 hours. Other services check those tokens
either locally with jwtx and the shared secret, or remotely through this SDK.

# SDKClient vs Session

  - SDKClient: unauthenticated operations and token checks
  - Session: a logged in user's token plus the calls that need it

	client := authsdk.NewSDKClient("http://localhost:8001")

	// Create an account
	reg, err := client.Register(ctx, "alice_99", "Str0ng!Passw0rd")

	// Log in
	session, err := client.AuthenticateWithPassword(ctx, "alice_99", "Str0ng!Passw0rd")

	// Who am I?
	profile, err := session.Profile(ctx)

Tokens cannot be refreshed. When Session.Expired reports true, log in again.

# Verifying tokens from another service

A service holding the signing secret should verify locally:

	v, err := jwtx.NewHS256([]byte(secret), 0)
	mux.Handle("GET /api/tasks", httpx.Chain(tasks, httpx.AuthnMiddleware(v)))

A service without the secret can delegate to the auth service:

	v := authsdk.NewRemoteVerifier(authsdk.NewSDKClient(authURL))
	mux.Handle("GET /api/tasks", httpx.Chain(tasks, httpx.AuthnMiddleware(v)))

# Error Handling

Every non-2xx reply is an *APIError carrying the status, the message and,
for weak passwords, the unmet requirements. Match on status with errors.Is:

	_, err := client.Register(ctx, name, pass)
	switch {
	case errors.Is(err, authsdk.ErrConflict):
		// username taken
	case errors.Is(err, authsdk.ErrRateLimited):
		var apiErr *authsdk.APIError
		errors.As(err, &apiErr)
		time.Sleep(apiErr.RetryAfter)
	}

Login failures never say whether the username or the password was wrong.
*/
package authsdk
