package auth

import (
	apperrors "github.com/jrsteele09/npl-portal/internal/errors"
)

// Inline messages shown on the login form
const (
	MissingCredentialsMsg = "Please enter both username and password"
	InvalidCredentialsMsg = "Invalid username or password"
	LoginFailedMsg        = "Login failed. Please try again."
)

// LoginErrorMessage maps a Login failure to the message shown to the user
func LoginErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case apperrors.Is(err, apperrors.ErrMissingCredentials):
		return MissingCredentialsMsg
	case apperrors.Is(err, apperrors.ErrInvalidCredentials):
		return InvalidCredentialsMsg
	default:
		return LoginFailedMsg
	}
}
