package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todo-gateway/core"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(discardLogger(), srv.URL, 5*time.Second)
}

func TestResolveSession_Present(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get-session" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Cookie"); got != "session_token=abc" {
			t.Errorf("expected forwarded cookie, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":"u1","email":"u@example.com","name":"U"}}`))
	}))

	user, ok, err := c.ResolveSession(context.Background(), "session_token=abc")
	if err != nil || !ok {
		t.Fatalf("expected session, got ok=%v err=%v", ok, err)
	}
	if user.ID != "u1" || user.Email != "u@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestResolveSession_NullBodyIsAbsent(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`null`))
	}))

	_, ok, err := c.ResolveSession(context.Background(), "session_token=abc")
	if err != nil {
		t.Fatalf("absence is not an error, got %v", err)
	}
	if ok {
		t.Fatalf("expected absent session")
	}
}

func TestResolveSession_401IsAbsent(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, ok, err := c.ResolveSession(context.Background(), "")
	if err != nil || ok {
		t.Fatalf("expected absent without error, got ok=%v err=%v", ok, err)
	}
}

func TestMintToken_Success(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"jwt-123"}`))
	}))

	token, err := c.MintToken(context.Background(), "session_token=abc")
	if err != nil {
		t.Fatalf("MintToken returned error: %v", err)
	}
	if token != "jwt-123" {
		t.Fatalf("unexpected token %q", token)
	}
}

func TestMintToken_FailureIsUnauthenticated(t *testing.T) {
	t.Parallel()

	for name, handler := range map[string]http.HandlerFunc{
		"non-200":       func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		"missing token": func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{}`)) },
	} {
		c := newTestClient(t, handler)
		_, err := c.MintToken(context.Background(), "session_token=abc")
		if !errors.Is(err, core.ErrUnauthenticated) {
			t.Fatalf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestClient_UnreachableProviderIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewClient(discardLogger(), srv.URL, time.Second)

	_, _, err := c.ResolveSession(context.Background(), "")
	if !errors.Is(err, core.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
