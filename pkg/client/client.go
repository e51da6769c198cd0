// Package client is a Go client for the shop API that keeps its login state
// in a session.Store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/storefront/shop-api/pkg/session"
)

// ErrUnauthorized matches any APIError with status 401.
var ErrUnauthorized = errors.New("client: unauthorized")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: %d %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, store *session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		session: store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Mobile   string `json:"mobile,omitempty"`
}

type RegisterResult struct {
	Token string          `json:"token"`
	User  session.Profile `json:"user"`
}

// ProfileUpdate sends only the non-nil fields.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Mobile *string `json:"mobile,omitempty"`
}

// Register creates an account. The session is not touched; call Login.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	var res RegisterResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &res, false); err != nil {
		return nil, err
	}
	return &res, nil
}

// Login authenticates and stores the token and profile in the session.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Profile, error) {
	var res struct {
		Success bool            `json:"success"`
		Token   string          `json:"token"`
		User    session.Profile `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &res, false); err != nil {
		return nil, err
	}
	if err := c.session.LoginSuccess(res.User, res.Token); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (c *Client) Profile(ctx context.Context) (*session.Profile, error) {
	var p session.Profile
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*session.Profile, error) {
	var p session.Profile
	if err := c.do(ctx, http.MethodPut, "/api/users/me", upd, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) AddAddress(ctx context.Context, addr session.Address) (*session.Profile, error) {
	var p session.Profile
	if err := c.do(ctx, http.MethodPost, "/api/users/me/addresses", addr, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

// Logout revokes the token server-side and always clears the local session.
func (c *Client) Logout(ctx context.Context) error {
	var remote error
	if c.session.Token() != "" {
		remote = c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, true)
		if errors.Is(remote, ErrUnauthorized) {
			// do already cleared the session.
			return nil
		}
	}
	return errors.Join(remote, c.session.Logout())
}

// do sends in as JSON and decodes a 2xx body into out. With auth set, the
// bearer token is attached and a 401 logs the session out.
func (c *Client) do(ctx context.Context, method, path string, in, out any, auth bool) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token := c.session.Token()
		if token == "" {
			return &APIError{Status: http.StatusUnauthorized, Message: "not logged in"}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
		if auth && resp.StatusCode == http.StatusUnauthorized {
			_ = c.session.Logout()
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func errorMessage(r io.Reader) string {
	var env struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != "" {
		return env.Error
	}
	return strings.TrimSpace(string(raw))
}
