package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/policy"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/service"
	"github.com/aussiebroadwan/gymauth/pkg/gymsdk"
	"github.com/aussiebroadwan/gymauth/pkg/httpx"
	"github.com/aussiebroadwan/gymauth/pkg/slogx"
)

// responder maps service errors onto API errors. Dev echoes internal error
// text in the detail field.
type responder struct {
	Dev bool
}

func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := rs.apiError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
		if rs.Dev {
			apiErr = apiErr.WithDetail(err.Error())
		}
	}
	apiErr.WriteError(w)
}

func (rs responder) apiError(err error) *gymsdk.APIError {
	switch {
	case errors.Is(err, httpx.ErrBadBody):
		return gymsdk.ErrBadRequest
	case errors.Is(err, service.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
		return gymsdk.ErrValidation.WithMessage(msg)
	case errors.Is(err, service.ErrInvalidCredentials):
		return gymsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrDuplicateEmail):
		return gymsdk.ErrDuplicateEmail
	case errors.Is(err, service.ErrInvalidRole):
		return gymsdk.ErrInvalidRole
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return gymsdk.ErrInvalidRefreshToken
	case errors.Is(err, service.ErrUserInactive):
		return gymsdk.ErrUserInactive
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		return gymsdk.ErrInvalidOrExpiredToken
	case errors.Is(err, service.ErrUserNotFound):
		return gymsdk.ErrNotFound.WithMessage("user not found")
	case errors.Is(err, policy.ErrAccessDenied):
		return gymsdk.ErrAccessDenied
	default:
		return gymsdk.ErrServerError
	}
}

func (rs responder) ok(w http.ResponseWriter, status int, message string, data any) {
	httpx.WriteData(w, status, message, data)
}
