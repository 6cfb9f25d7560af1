package auth

import "errors"

var (
	// ErrEmptyPassword is returned when attempting to hash an empty password.
	ErrEmptyPassword = errors.New("auth.empty_password")

	// ErrInvalidCredentials covers both unknown-username and wrong-password
	// sign-in failures so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("auth.invalid_credentials")

	// ErrInvalidState indicates the OAuth callback state did not match the
	// value stashed when the flow started.
	ErrInvalidState = errors.New("auth.oauth_invalid_state")

	// ErrCodeExchange indicates the authorization code exchange failed.
	ErrCodeExchange = errors.New("auth.oauth_code_exchange_failed")

	// ErrProfileFetch indicates the provider profile request failed.
	ErrProfileFetch = errors.New("auth.oauth_profile_fetch_failed")
)
