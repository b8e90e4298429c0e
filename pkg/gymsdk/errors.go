package gymsdk

import (
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/gymauth/pkg/httpx"
)

// Error codes carried in the "code" field of failed responses.
const (
	ErrorCodeBadRequest            = "bad_request"
	ErrorCodeValidation            = "validation_error"
	ErrorCodeInvalidCredentials    = "invalid_credentials"
	ErrorCodeDuplicateEmail        = "duplicate_email"
	ErrorCodeInvalidRole           = "invalid_role"
	ErrorCodeMissingToken          = "missing_token"
	ErrorCodeTokenExpired          = "token_expired"
	ErrorCodeTokenInvalid          = "token_invalid"
	ErrorCodeInvalidRefreshToken   = "invalid_refresh_token"
	ErrorCodeUserInactive          = "user_inactive_or_missing"
	ErrorCodeAccessDenied          = "access_denied"
	ErrorCodeInvalidOrExpiredToken = "invalid_or_expired_token"
	ErrorCodeNotFound              = "not_found"
	ErrorCodeRateLimited           = "rate_limit_exceeded"
	ErrorCodeServerError           = "server_error"
)

// APIError is a failed response. The server writes it with WriteError and
// the client decodes it back from the response envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string

	// Detail is internal error text, only present in development.
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so callers can use errors.Is against the predefined
// values regardless of message or detail.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e with a different message.
func (e *APIError) WithMessage(msg string) *APIError {
	cp := *e
	cp.Message = msg
	return &cp
}

// WithDetail returns a copy of e carrying internal detail.
func (e *APIError) WithDetail(detail string) *APIError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WriteError writes e as a failure envelope.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, httpx.Envelope{
		Success: false,
		Code:    e.Code,
		Message: e.Message,
		Detail:  e.Detail,
	})
}

// NewAPIError builds a custom error.
func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

var (
	ErrBadRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeBadRequest,
		Message:    "request body must be a single JSON object",
	}

	ErrValidation = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeValidation,
		Message:    "validation failed",
	}

	// ErrInvalidCredentials covers unknown email, wrong password and
	// inactive account alike.
	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidCredentials,
		Message:    "invalid email or password",
	}

	ErrDuplicateEmail = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeDuplicateEmail,
		Message:    "user with this email already exists",
	}

	ErrInvalidRole = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRole,
		Message:    "role must be one of admin, trainer, member",
	}

	ErrMissingToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeMissingToken,
		Message:    "access token required",
	}

	ErrTokenExpired = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeTokenExpired,
		Message:    "access token expired",
	}

	ErrTokenInvalid = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeTokenInvalid,
		Message:    "invalid access token",
	}

	ErrInvalidRefreshToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidRefreshToken,
		Message:    "invalid or expired refresh token",
	}

	ErrUserInactive = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeUserInactive,
		Message:    "user not found or inactive",
	}

	ErrAccessDenied = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeAccessDenied,
		Message:    "access denied",
	}

	ErrInvalidOrExpiredToken = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidOrExpiredToken,
		Message:    "invalid or expired reset token",
	}

	ErrNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeNotFound,
		Message:    "resource not found",
	}

	ErrRateLimited = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Code:       ErrorCodeRateLimited,
		Message:    "too many requests",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Message:    "internal server error",
	}
)
