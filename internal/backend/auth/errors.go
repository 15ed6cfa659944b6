package auth

import "errors"

var (
	// ErrInvalidCredentials indicates the email/password pair was rejected.
	ErrInvalidCredentials = errors.New("auth backend: invalid credentials")
	// ErrEmailAlreadyInUse indicates sign-up hit an existing account.
	ErrEmailAlreadyInUse = errors.New("auth backend: email already in use")
	// ErrWeakPassword indicates the password failed backend policy.
	ErrWeakPassword = errors.New("auth backend: weak password")
	// ErrUserDisabled indicates the account has been disabled by an administrator.
	ErrUserDisabled = errors.New("auth backend: user disabled")
	// ErrUserNotFound indicates no account exists for the supplied identifier.
	ErrUserNotFound = errors.New("auth backend: user not found")
	// ErrTokenInvalid indicates the session token failed verification.
	ErrTokenInvalid = errors.New("auth backend: token invalid")
	// ErrUnavailable indicates the auth backend could not be reached.
	ErrUnavailable = errors.New("auth backend: unavailable")
)
