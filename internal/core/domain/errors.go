package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the user lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates the upstream service rejected a request with 429
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstream indicates an upstream service failed after exhausting retries
	ErrUpstream = errors.New("upstream failure")

	// ErrInvalidUpstreamResponse indicates a 2xx upstream response that failed schema validation
	ErrInvalidUpstreamResponse = errors.New("invalid upstream response")

	// ErrIndexingInProgress indicates indexing is already running for this document
	ErrIndexingInProgress = errors.New("indexing already in progress")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")
)
