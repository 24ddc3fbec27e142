package domain

import "errors"

var (
	// ErrValidation wraps all malformed-input failures; the message of
	// the wrapping error carries the rule that was violated.
	ErrValidation = errors.New("validation failed")

	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrEmailVerified      = errors.New("email already verified")
	ErrUserDisabled       = errors.New("account deactivated")

	// ErrInvalidToken covers reset/verification tokens that are absent,
	// expired, or already consumed, and malformed or expired JWTs.
	ErrInvalidToken = errors.New("invalid or expired token")

	ErrSessionNotFound = errors.New("chat session not found")
	ErrBranchNotFound  = errors.New("branch not found")

	// ErrStorage is the generic persistence failure surfaced to callers;
	// the underlying cause is logged, never returned.
	ErrStorage = errors.New("storage failure")
)
