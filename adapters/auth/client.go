package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"todo-gateway/core"
)

// Client talks to the identity provider's HTTP endpoints. Authentication
// material in is the caller's Cookie header, nothing else; out comes the
// resolved identity and, separately, a minted bearer token.
type Client struct {
	log        *slog.Logger
	baseURL    string
	httpClient *http.Client
}

func NewClient(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log:        log,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sessionResponse struct {
	User *core.User `json:"user"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// ResolveSession asks the provider who the cookies belong to. No active
// session comes back as absent, not as an error.
func (c *Client) ResolveSession(ctx context.Context, cookieHeader string) (core.User, bool, error) {
	resp, err := c.get(ctx, "/get-session", cookieHeader)
	if err != nil {
		return core.User{}, false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return core.User{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return core.User{}, false, fmt.Errorf("session endpoint responded %d", resp.StatusCode)
	}

	var out sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return core.User{}, false, fmt.Errorf("decode session response: %w", err)
	}
	// the provider answers 200 with a null body when nobody is signed in
	if out.User == nil || out.User.ID == "" {
		return core.User{}, false, nil
	}
	return *out.User, true, nil
}

// MintToken fetches a short-lived bearer token scoped to the cookie session.
func (c *Client) MintToken(ctx context.Context, cookieHeader string) (string, error) {
	resp, err := c.get(ctx, "/token", cookieHeader)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint responded %d: %w", resp.StatusCode, core.ErrUnauthenticated)
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("token missing from provider response: %w", core.ErrUnauthenticated)
	}
	return out.Token, nil
}

func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.get(ctx, "/ok", "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth provider responded %d: %w", resp.StatusCode, core.ErrUnavailable)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path, cookieHeader string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth provider unreachable: %w: %w", core.ErrUnavailable, err)
	}
	return resp, nil
}

var _ core.AuthProvider = (*Client)(nil)
