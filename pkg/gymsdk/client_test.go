package gymsdk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/gymauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestAPIError_WriteAndDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
		ErrTokenExpired.WithDetail("exp in the past").WriteError(w)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Me(context.Background(), "stale")
	require.ErrorIs(t, err, ErrTokenExpired)
	require.False(t, errors.Is(err, ErrTokenInvalid))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "exp in the past", apiErr.Detail)
}

func TestClient_DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req LoginRequest
		require.NoError(t, httpx.DecodeJSON(r, &req))
		require.Equal(t, "a@x.com", req.Email)

		httpx.WriteData(w, http.StatusOK, "Login successful", AuthResponse{
			User:         User{ID: "u1", Email: req.Email, Role: "member", Active: true},
			AccessToken:  "access",
			RefreshToken: "refresh",
		})
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL+"/").Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "u1", got.User.ID)
	require.True(t, got.User.Active)
	require.Equal(t, "access", got.AccessToken)
	require.Equal(t, "refresh", got.RefreshToken)
}

func TestClient_NonJSONFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).ForgotPassword(context.Background(), "a@x.com")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Contains(t, apiErr.Message, "upstream exploded")
}

func TestPageQuery(t *testing.T) {
	require.Equal(t, "", pageQuery(nil, 0, 0))
	require.Equal(t, "?limit=5&page=2", pageQuery(nil, 2, 5))
}
