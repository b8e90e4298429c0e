package http

import (
	"net/http"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/policy"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/service"
	"github.com/aussiebroadwan/gymauth/pkg/gymsdk"
	"github.com/aussiebroadwan/gymauth/pkg/httpx"
	"github.com/aussiebroadwan/gymauth/pkg/slogx"
)

// forgotPasswordMessage is returned whether or not the email is registered.
const forgotPasswordMessage = "If the email exists, a password reset link has been sent"

// AuthHandler serves /api/auth/*.
type AuthHandler struct {
	responder
	AuthService *service.AuthService
}

func publicUser(u domain.User) gymsdk.User {
	return sdkUser(domain.Redact(u))
}

func sdkUser(p domain.PublicUser) gymsdk.User {
	return gymsdk.User{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		Phone:     p.Phone,
		Role:      p.Role.String(),
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func clientMetadata(r *http.Request) domain.ClientMetadata {
	return domain.ClientMetadata{
		UserAgent: r.UserAgent(),
		IPAddress: httpx.ClientIP(r),
	}
}

func (h *AuthHandler) session(w http.ResponseWriter, r *http.Request, u domain.User, status int, message string) {
	pair, err := h.AuthService.IssueSession(r.Context(), u, clientMetadata(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, status, message, gymsdk.AuthResponse{
		User:         publicUser(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchanges email and password for an access token and a refresh token.
//	@Description	Unknown email, wrong password and deactivated account all return the same 401.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		gymsdk.LoginRequest								true	"Credentials"
//	@Success		200		{object}	httpx.Envelope{data=gymsdk.AuthResponse}	"user, accessToken, refreshToken"
//	@Failure		400		{object}	httpx.Envelope								"bad_request, validation_error"
//	@Failure		401		{object}	httpx.Envelope								"invalid_credentials"
//	@Failure		429		{object}	httpx.Envelope								"rate_limit_exceeded"
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req gymsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		gymsdk.ErrValidation.WithMessage("email and password are required").WriteError(w)
		return
	}

	u, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.session(w, r, u, http.StatusOK, "Login successful")
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Creates an account and logs it in. Role defaults to member.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		gymsdk.RegisterRequest							true	"New account"
//	@Success		201		{object}	httpx.Envelope{data=gymsdk.AuthResponse}	"user, accessToken, refreshToken"
//	@Failure		400		{object}	httpx.Envelope								"duplicate_email, invalid_role, validation_error"
//	@Failure		429		{object}	httpx.Envelope								"rate_limit_exceeded"
//	@Router			/api/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req gymsdk.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.session(w, r, u, http.StatusCreated, "User registered successfully")
}

// HandleRefresh godoc
//
//	@Summary		Refresh access token
//	@Description	Exchanges a refresh token for a new access token. A new refresh token is
//	@Description	only returned when rotation is enabled.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		gymsdk.RefreshRequest								true	"Refresh token"
//	@Success		200		{object}	httpx.Envelope{data=gymsdk.RefreshResponse}	"accessToken"
//	@Failure		401		{object}	httpx.Envelope									"invalid_refresh_token, user_inactive_or_missing"
//	@Router			/api/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req gymsdk.RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.RefreshToken == "" {
		gymsdk.ErrInvalidRefreshToken.WriteError(w)
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), req.RefreshToken, clientMetadata(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Token refreshed", gymsdk.RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Revokes the given refresh token. Succeeds for unknown or already revoked tokens.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		gymsdk.LogoutRequest	false	"Refresh token to revoke"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		401		{object}	httpx.Envelope	"missing_token, token_expired, token_invalid"
//	@Router			/api/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req gymsdk.LogoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		slogx.FromContext(r.Context()).Debug("logout without refresh token", "err", err)
	}

	if err := h.AuthService.Revoke(r.Context(), req.RefreshToken); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Logout successful", nil)
}

// HandleLogoutAll godoc
//
//	@Summary		Log out everywhere
//	@Description	Revokes every refresh token of the caller.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope
//	@Failure		401	{object}	httpx.Envelope	"missing_token, token_expired, token_invalid"
//	@Router			/api/auth/logout-all [post].
func (h *AuthHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.FromContext(r.Context())
	if err := h.AuthService.RevokeAll(r.Context(), p.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Logged out from all devices", nil)
}

// HandleMe godoc
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope{data=gymsdk.UserResponse}
//	@Failure		401	{object}	httpx.Envelope	"missing_token, token_expired, token_invalid, user_inactive_or_missing"
//	@Router			/api/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := policy.FromContext(r.Context())
	u, err := h.AuthService.CurrentUser(r.Context(), p.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", gymsdk.UserResponse{User: publicUser(u)})
}

// HandleForgotPassword godoc
//
//	@Summary		Request a password reset
//	@Description	Always answers with the same 200 so the endpoint cannot be used to discover accounts.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		gymsdk.ForgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		400		{object}	httpx.Envelope	"bad_request"
//	@Router			/api/auth/forgot-password [post].
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req gymsdk.ForgotPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	// Failures only happen for registered emails, so they are logged and
	// answered like success.
	if err := h.AuthService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		slogx.FromContext(r.Context()).Error("password reset request failed", "err", err)
	}
	h.ok(w, http.StatusOK, forgotPasswordMessage, nil)
}

// HandleResetPassword godoc
//
//	@Summary		Reset password
//	@Description	Redeems a reset token from the email link. All sessions of the account are revoked.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string							true	"Reset token"
//	@Param			body	body		gymsdk.ResetPasswordRequest	true	"New password"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		400		{object}	httpx.Envelope	"invalid_or_expired_token, validation_error"
//	@Router			/api/auth/reset-password/{token} [post].
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req gymsdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.AuthService.CompletePasswordReset(r.Context(), r.PathValue("token"), req.Password); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Password reset successful", nil)
}
