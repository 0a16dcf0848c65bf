// Package service implements the authentication and session-lifecycle
// core: OTP issuance and validation, password checks, TOTP second
// factor, and access/refresh token issuance with rotation and reuse
// detection.  Handlers translate the sentinel errors below into
// transport-level statuses; none of them leaks internal state.
package service

import "errors"

var (
	// ErrInvalidCode – no outstanding verification code matches the
	// submitted (email, code, purpose) triple.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrCodeExpired – the code matched but its TTL has elapsed.
	ErrCodeExpired = errors.New("verification code expired")

	// ErrEmailAlreadyExists – registration (or a REGISTER OTP request)
	// for an address that already has an account.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrEmailNotFound – no account for the given email address.
	ErrEmailNotFound = errors.New("email not found")

	// ErrUserNotFound – no account for the given user id.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPassword – password comparison failed.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidOTP – TOTP verification failed, or a TOTP code was
	// required (secret enrolled) and none was supplied.
	ErrInvalidOTP = errors.New("invalid one-time password")

	// ErrOTPDispatchFailed – the mail collaborator reported an error
	// delivering the code.  The code row itself is retained so a retry
	// can overwrite it.
	ErrOTPDispatchFailed = errors.New("failed to send verification code")

	// ErrUnauthorized – a refresh token that is malformed, expired, was
	// never issued here, or has already been consumed.  Deliberately one
	// class: callers cannot distinguish "never existed" from "already
	// used".
	ErrUnauthorized = errors.New("unauthorized")
)
