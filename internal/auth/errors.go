package auth

import (
	"errors"
	"strings"
)

// Internal error kinds for the authentication flow. Login failures are
// deliberately collapsed to one generic message at the HTTP boundary; these
// sentinels exist so logs and tests can still tell the cases apart.
var (
	ErrUserNotFound            = errors.New("no user found with this identifier")
	ErrInvalidCredentials      = errors.New("incorrect password")
	ErrNotVerified             = errors.New("account is not verified")
	ErrInvalidVerificationCode = errors.New("invalid verification code")
	ErrCodeExpired             = errors.New("verification code has expired")
	ErrAlreadyVerified         = errors.New("account is already verified")
	ErrEmailSendFailed         = errors.New("verification email could not be sent")
)

// ValidationError carries every failed rule of the shared sign-up schema.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}
