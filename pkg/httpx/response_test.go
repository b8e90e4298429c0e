package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/gymauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteData(rec, http.StatusCreated, "created", map[string]string{"id": "1"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"success":true,"message":"created","data":{"id":"1"}}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Email string `json:"email"`
	}

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c","extra":1}`))
		var b body
		require.NoError(t, httpx.DecodeJSON(req, &b))
		require.Equal(t, "a@b.c", b.Email)
	})

	for name, raw := range map[string]string{
		"empty":         "",
		"not json":      "email=a",
		"trailing data": `{"email":"a"} {"email":"b"}`,
		"wrong type":    `{"email":5}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
			var b body
			require.ErrorIs(t, httpx.DecodeJSON(req, &b), httpx.ErrBadBody)
		})
	}
}

func TestChainAndRecover(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	var recovered any
	h := httpx.Chain(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
		mw("outer"),
		httpx.Recover(func(_ *http.Request, v any) { recovered = v }),
		mw("inner"),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner"}, order)
	require.Equal(t, "boom", recovered)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "server_error", env.Code)
}
