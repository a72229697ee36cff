package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"todo-gateway/adapters/rest"
	"todo-gateway/core"
	"todo-gateway/pkg/res"
)

// Relay re-issues inbound requests to the downstream backend. Per request it
// resolves the caller's session from cookies, mints a bearer token with those
// same cookies, and forwards with only the token attached — cookies never
// cross the boundary. Tokens are not cached: every call re-mints.
type Relay struct {
	log        *slog.Logger
	auth       core.AuthProvider
	backendURL string
	client     *http.Client
	timeout    time.Duration
	devMode    bool
}

func NewRelay(log *slog.Logger, auth core.AuthProvider, backendURL string, timeout time.Duration, devMode bool) *Relay {
	return &Relay{
		log:        log,
		auth:       auth,
		backendURL: backendURL,
		client:     &http.Client{},
		timeout:    timeout,
		devMode:    devMode,
	}
}

type pathFunc func(r *http.Request) (string, error)

// Forward builds the generic relay handler for one route. The downstream
// status and body are relayed verbatim; only relay-side infrastructure
// failure turns into a 503.
func (rl *Relay) Forward(path pathFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := path(r)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), rl.timeout)
		defer cancel()

		token, ok := rl.authorize(ctx, w, r)
		if !ok {
			return
		}

		u := rl.backendURL + target
		if r.URL.RawQuery != "" {
			u += "?" + r.URL.RawQuery
		}

		req, err := http.NewRequestWithContext(ctx, r.Method, u, r.Body)
		if err != nil {
			rl.fail(w, http.StatusInternalServerError, "internal error", err)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := rl.client.Do(req)
		if err != nil {
			rl.log.Error("backend unreachable", "method", r.Method, "path", target, "error", err)
			rl.fail(w, http.StatusServiceUnavailable, "service unavailable", err)
			return
		}
		defer func() { _ = resp.Body.Close() }()

		res.Relay(w, resp.StatusCode, resp.Header.Get("Content-Type"), resp.Body)
	}
}

// authorize runs the two auth round-trips. On failure it writes the response
// itself and returns ok=false. "No session" and "mint failed" both come back
// as 401; they differ only in what gets logged.
func (rl *Relay) authorize(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	cookie := r.Header.Get("Cookie")

	_, ok, err := rl.auth.ResolveSession(ctx, cookie)
	if err != nil {
		rl.log.Error("session resolve failed", "path", r.URL.Path, "error", err)
		if errors.Is(err, core.ErrUnavailable) {
			rl.fail(w, http.StatusServiceUnavailable, "service unavailable", err)
		} else {
			res.Error(w, "Unauthorized", http.StatusUnauthorized)
		}
		return "", false
	}
	if !ok {
		rl.log.Debug("unauthenticated request", "path", r.URL.Path)
		res.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}

	token, err := rl.auth.MintToken(ctx, cookie)
	if err != nil {
		rl.log.Error("bearer token mint failed", "path", r.URL.Path, "error", err)
		if errors.Is(err, core.ErrUnavailable) {
			rl.fail(w, http.StatusServiceUnavailable, "service unavailable", err)
		} else {
			res.Error(w, "Unauthorized", http.StatusUnauthorized)
		}
		return "", false
	}
	return token, true
}

// fail writes a relay-side failure. Error detail only leaks in dev mode.
func (rl *Relay) fail(w http.ResponseWriter, code int, msg string, err error) {
	if rl.devMode && err != nil {
		msg = msg + ": " + err.Error()
	}
	res.Error(w, msg, code)
}
