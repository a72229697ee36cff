package gate

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGate() *Gate {
	return New(discardLogger(), []string{"/dashboard"}, "/login", "session_token")
}

func request(t *testing.T, path, cookie string) *http.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		r.Header.Set("Cookie", cookie)
	}
	return r
}

func TestGateCheck_UnprotectedAlwaysAllows(t *testing.T) {
	t.Parallel()

	g := newTestGate()

	for _, path := range []string{"/", "/login", "/api/todos", "/about"} {
		if d := g.Check(request(t, path, "")); !d.Allow {
			t.Fatalf("path %s: expected allow without cookie", path)
		}
		if d := g.Check(request(t, path, "session_token=abc")); !d.Allow {
			t.Fatalf("path %s: expected allow with cookie", path)
		}
	}
}

func TestGateCheck_ProtectedWithoutCookieRedirects(t *testing.T) {
	t.Parallel()

	g := newTestGate()

	d := g.Check(request(t, "/dashboard/todos", ""))
	if d.Allow {
		t.Fatalf("expected redirect for protected path without cookie")
	}
	if want := "/login?from=%2Fdashboard%2Ftodos"; d.Redirect != want {
		t.Fatalf("expected redirect %q, got %q", want, d.Redirect)
	}
}

func TestGateCheck_ProtectedWithCookieAllows(t *testing.T) {
	t.Parallel()

	g := newTestGate()

	if d := g.Check(request(t, "/dashboard", "session_token=abc")); !d.Allow {
		t.Fatalf("expected allow with session cookie present")
	}
}

func TestGateCheck_EmptyCookieValueTreatedAsAbsent(t *testing.T) {
	t.Parallel()

	g := newTestGate()

	if d := g.Check(request(t, "/dashboard", "session_token=")); d.Allow {
		t.Fatalf("expected redirect for empty cookie value")
	}
}

func TestGateCheck_CookieReadErrorFailsClosed(t *testing.T) {
	t.Parallel()

	g := newTestGate()
	g.cookiePresent = func(*http.Request, string) (bool, error) {
		return true, errors.New("malformed cookie header")
	}

	d := g.Check(request(t, "/dashboard", "session_token=abc"))
	if d.Allow {
		t.Fatalf("expected fail-closed redirect on cookie read error")
	}
	if want := "/login?from=%2Fdashboard"; d.Redirect != want {
		t.Fatalf("expected redirect %q, got %q", want, d.Redirect)
	}
}

func TestGateCheck_CookieParserPanicFailsClosed(t *testing.T) {
	t.Parallel()

	g := newTestGate()
	g.cookiePresent = func(*http.Request, string) (bool, error) {
		panic("parser exploded")
	}

	if d := g.Check(request(t, "/dashboard", "session_token=abc")); d.Allow {
		t.Fatalf("expected fail-closed redirect on parser panic")
	}
}

func TestGateMiddleware_RedirectsWith302(t *testing.T) {
	t.Parallel()

	g := newTestGate()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	g.Middleware(next).ServeHTTP(rec, request(t, "/dashboard", ""))

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?from=%2Fdashboard" {
		t.Fatalf("unexpected redirect location %q", loc)
	}

	rec = httptest.NewRecorder()
	g.Middleware(next).ServeHTTP(rec, request(t, "/dashboard", "session_token=abc"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through 200, got %d", rec.Code)
	}
}
