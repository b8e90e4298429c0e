package gymsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a gymauth server. Methods that need an identity take the
// access token explicitly; the client keeps no session state.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for baseURL (without the /api suffix).
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func do[T any](ctx context.Context, c *Client, method, path, accessToken string, body any) (T, error) {
	var zero T

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("failed to encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return zero, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("failed to read response body: %w", err)
	}

	var env Response[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return zero, &APIError{StatusCode: resp.StatusCode, Code: ErrorCodeServerError, Message: strings.TrimSpace(string(raw))}
		}
		return zero, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		return zero, &APIError{
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Message:    env.Message,
			Detail:     env.Detail,
		}
	}
	return env.Data, nil
}

type empty struct{}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	return do[AuthResponse](ctx, c, http.MethodPost, "/api/auth/register", "", req)
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	return do[AuthResponse](ctx, c, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: email, Password: password})
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (RefreshResponse, error) {
	return do[RefreshResponse](ctx, c, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: refreshToken})
}

func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	_, err := do[empty](ctx, c, http.MethodPost, "/api/auth/logout", accessToken, LogoutRequest{RefreshToken: refreshToken})
	return err
}

func (c *Client) LogoutAll(ctx context.Context, accessToken string) error {
	_, err := do[empty](ctx, c, http.MethodPost, "/api/auth/logout-all", accessToken, nil)
	return err
}

func (c *Client) Me(ctx context.Context, accessToken string) (User, error) {
	r, err := do[UserResponse](ctx, c, http.MethodGet, "/api/auth/me", accessToken, nil)
	return r.User, err
}

// ForgotPassword always succeeds for well-formed requests.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := do[empty](ctx, c, http.MethodPost, "/api/auth/forgot-password", "", ForgotPasswordRequest{Email: email})
	return err
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	_, err := do[empty](ctx, c, http.MethodPost, "/api/auth/reset-password/"+url.PathEscape(token), "", ResetPasswordRequest{Password: password})
	return err
}

func (c *Client) ListMembers(ctx context.Context, accessToken string, page, limit int) (UserListResponse, error) {
	return do[UserListResponse](ctx, c, http.MethodGet, "/api/members"+pageQuery(nil, page, limit), accessToken, nil)
}

func (c *Client) GetMember(ctx context.Context, accessToken, id string) (User, error) {
	r, err := do[UserResponse](ctx, c, http.MethodGet, "/api/members/"+url.PathEscape(id), accessToken, nil)
	return r.User, err
}

func (c *Client) UpdateMember(ctx context.Context, accessToken, id string, req UpdateProfileRequest) (User, error) {
	r, err := do[UserResponse](ctx, c, http.MethodPut, "/api/members/"+url.PathEscape(id), accessToken, req)
	return r.User, err
}

// ListUsersFilter narrows the admin listing. Zero values mean no filter.
type ListUsersFilter struct {
	Role   string
	Active *bool
	Page   int
	Limit  int
}

func (c *Client) ListUsers(ctx context.Context, accessToken string, f ListUsersFilter) (UserListResponse, error) {
	q := url.Values{}
	if f.Role != "" {
		q.Set("role", f.Role)
	}
	if f.Active != nil {
		q.Set("active", strconv.FormatBool(*f.Active))
	}
	return do[UserListResponse](ctx, c, http.MethodGet, "/api/users"+pageQuery(q, f.Page, f.Limit), accessToken, nil)
}

func (c *Client) CreateUser(ctx context.Context, accessToken string, req CreateUserRequest) (User, error) {
	r, err := do[UserResponse](ctx, c, http.MethodPost, "/api/users", accessToken, req)
	return r.User, err
}

func (c *Client) GetUser(ctx context.Context, accessToken, id string) (User, error) {
	r, err := do[UserResponse](ctx, c, http.MethodGet, "/api/users/"+url.PathEscape(id), accessToken, nil)
	return r.User, err
}

func (c *Client) UpdateUser(ctx context.Context, accessToken, id string, req UpdateUserRequest) (User, error) {
	r, err := do[UserResponse](ctx, c, http.MethodPut, "/api/users/"+url.PathEscape(id), accessToken, req)
	return r.User, err
}

func (c *Client) DeleteUser(ctx context.Context, accessToken, id string) error {
	_, err := do[empty](ctx, c, http.MethodDelete, "/api/users/"+url.PathEscape(id), accessToken, nil)
	return err
}

func (c *Client) ToggleUserStatus(ctx context.Context, accessToken, id string) (User, error) {
	r, err := do[UserResponse](ctx, c, http.MethodPatch, "/api/users/"+url.PathEscape(id)+"/status", accessToken, nil)
	return r.User, err
}

// Livez reports the liveness probe. It is not wrapped in an envelope.
func (c *Client) Livez(ctx context.Context) (HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// Readyz reports the readiness probe.
func (c *Client) Readyz(ctx context.Context) (HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return HealthResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return HealthResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var h HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return HealthResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return h, NewAPIError(resp.StatusCode, ErrorCodeServerError, "service not ready: "+h.Status)
	}
	return h, nil
}

func pageQuery(q url.Values, page, limit int) string {
	if q == nil {
		q = url.Values{}
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
