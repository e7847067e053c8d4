package model

import "errors"

var (
	// Input
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")

	// Credentials and sessions
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrTooManyRequests    = errors.New("too many requests")

	// Tokens
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenReused     = errors.New("refresh token is expired or used")
	ErrAlreadyVerified = errors.New("email is already verified")

	// Domain lookups
	ErrProjectNotFound = errors.New("project not found")
	ErrMemberNotFound  = errors.New("member not found in project")
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubTaskNotFound = errors.New("subtask not found")
	ErrNoteNotFound    = errors.New("note not found")
)

// IsNotFound reports whether err is any of the lookup-miss sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrSubTaskNotFound) ||
		errors.Is(err, ErrNoteNotFound)
}
