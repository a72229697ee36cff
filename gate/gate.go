package gate

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Gate is the optimistic pre-check run before protected page loads. It only
// asks "is a session cookie present" and redirects to login when it is not;
// actual trust decisions happen server-side on every privileged call. It is
// not a security boundary.
type Gate struct {
	log        *slog.Logger
	protected  []string
	loginPath  string
	cookieName string

	// swapped in tests to exercise the fail-closed path
	cookiePresent func(r *http.Request, name string) (bool, error)
}

type Decision struct {
	Allow    bool
	Redirect string
}

func New(log *slog.Logger, protectedPrefixes []string, loginPath, cookieName string) *Gate {
	return &Gate{
		log:           log,
		protected:     protectedPrefixes,
		loginPath:     loginPath,
		cookieName:    cookieName,
		cookiePresent: cookiePresent,
	}
}

// Check allows unprotected paths unconditionally. On protected paths a
// missing cookie redirects to login with the original path in the "from"
// parameter; any failure while reading cookies is treated the same way.
func (g *Gate) Check(r *http.Request) Decision {
	path := r.URL.Path

	if !g.isProtected(path) {
		return Decision{Allow: true}
	}

	present, err := g.checkCookie(r)
	if err != nil {
		g.log.Warn("session cookie check failed, redirecting", "path", path, "error", err)
		present = false
	}
	if !present {
		return Decision{Redirect: g.loginURL(path)}
	}
	return Decision{Allow: true}
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d := g.Check(r); !d.Allow {
			http.Redirect(w, r, d.Redirect, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) isProtected(path string) bool {
	for _, prefix := range g.protected {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// checkCookie never lets a parser blow-up turn into an Allow.
func (g *Gate) checkCookie(r *http.Request) (present bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			g.log.Warn("cookie parser panicked", "panic", rec)
			present = false
			err = nil
		}
	}()
	return g.cookiePresent(r, g.cookieName)
}

func (g *Gate) loginURL(from string) string {
	u := url.URL{Path: g.loginPath}
	q := url.Values{}
	q.Set("from", from)
	u.RawQuery = q.Encode()
	return u.String()
}

func cookiePresent(r *http.Request, name string) (bool, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if err == http.ErrNoCookie {
			return false, nil
		}
		return false, err
	}
	return c != nil && c.Value != "", nil
}
