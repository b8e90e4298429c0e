package service

import (
	"errors"
	"fmt"
	"net/mail"
	"unicode/utf8"

	"github.com/aussiebroadwan/gymauth/pkg/cryptox"
)

// Sentinel errors returned by the services. Their text is the error code
// written on the wire.
var (
	ErrInvalidCredentials    = errors.New("invalid_credentials")
	ErrDuplicateEmail        = errors.New("duplicate_email")
	ErrInvalidRole           = errors.New("invalid_role")
	ErrInvalidRefreshToken   = errors.New("invalid_refresh_token")
	ErrUserInactive          = errors.New("user_inactive_or_missing")
	ErrInvalidOrExpiredToken = errors.New("invalid_or_expired_token")
	ErrUserNotFound          = errors.New("user_not_found")
	ErrValidation            = errors.New("validation_error")
)

const (
	MinPasswordLength = 6
	MaxNameLength     = 50
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email is not valid")
	}
	return nil
}

func validatePassword(pw string) error {
	switch {
	case utf8.RuneCountInString(pw) < MinPasswordLength:
		return invalid("password must be at least %d characters", MinPasswordLength)
	case len(pw) > cryptox.MaxPasswordBytes:
		return invalid("password must be at most %d bytes", cryptox.MaxPasswordBytes)
	}
	return nil
}

// validateName allows an empty name; registration with only an email and
// password is accepted.
func validateName(name string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return invalid("name must be at most %d characters", MaxNameLength)
	}
	return nil
}
