package user

import "errors"

var (
	// ErrNotFound indicates no user matches the given id or username.
	ErrNotFound = errors.New("user.not_found")

	// ErrUsernameTaken indicates the username uniqueness constraint fired.
	ErrUsernameTaken = errors.New("user.username_taken")

	// ErrEmailTaken indicates the email uniqueness constraint fired.
	ErrEmailTaken = errors.New("user.email_taken")

	// ErrEmptyPatch indicates an update with no fields to change.
	ErrEmptyPatch = errors.New("user.empty_patch")
)
