package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"todo-gateway/core"
)

// Store holds the authenticated session for one browser session worth of
// cookie material. It is the only writer of that state; any number of
// readers and subscribers may observe it.
type Store struct {
	log      *slog.Logger
	provider core.AuthProvider
	cookie   string

	mu      sync.RWMutex
	current *core.Session
	subs    map[int]func(core.Session, bool)
	nextSub int

	now func() time.Time
}

func NewStore(log *slog.Logger, provider core.AuthProvider, cookieHeader string) *Store {
	return &Store{
		log:      log,
		provider: provider,
		cookie:   cookieHeader,
		subs:     make(map[int]func(core.Session, bool)),
		now:      time.Now,
	}
}

// Current returns the held session. A session whose token already expired is
// handed out token-less, never with a stale token.
func (s *Store) Current() (core.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return core.Session{}, false
	}

	sess := *s.current
	if sess.Token != "" && !sess.ExpiresAt.IsZero() && !s.now().Before(sess.ExpiresAt) {
		sess.Token = ""
	}
	return sess, true
}

// Refresh asks the identity provider for the active session and mints a
// bearer token for it. No active session is a normal outcome, not an error.
// A failed mint keeps the session, token-less: that is a provider-side
// partial failure and is logged as such.
func (s *Store) Refresh(ctx context.Context) (core.Session, bool, error) {
	user, ok, err := s.provider.ResolveSession(ctx, s.cookie)
	if err != nil {
		s.set(nil)
		return core.Session{}, false, fmt.Errorf("resolve session: %w", err)
	}
	if !ok {
		s.set(nil)
		return core.Session{}, false, nil
	}

	sess := core.Session{User: user}

	token, err := s.provider.MintToken(ctx, s.cookie)
	switch {
	case err != nil:
		s.log.Warn("session present but token mint failed", "user_id", user.ID, "error", err)
	case token == "":
		s.log.Warn("session present but token endpoint returned no token", "user_id", user.ID)
	default:
		sess.Token = token
		sess.ExpiresAt = tokenExpiry(token)
	}

	s.set(&sess)
	return sess, true, nil
}

// Clear drops the session, e.g. after sign-out.
func (s *Store) Clear() {
	s.set(nil)
}

// Subscribe registers fn to be called synchronously after every successful
// Refresh or Clear. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(core.Session, bool)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Token implements core.TokenSource. A token-less session counts as
// unauthenticated here, exactly like no session at all.
func (s *Store) Token(ctx context.Context) (string, error) {
	if sess, ok := s.Current(); ok && sess.Token != "" {
		return sess.Token, nil
	}

	sess, ok, err := s.Refresh(ctx)
	if err != nil {
		return "", err
	}
	if !ok || sess.Token == "" {
		return "", core.ErrUnauthenticated
	}
	return sess.Token, nil
}

func (s *Store) set(sess *core.Session) {
	s.mu.Lock()
	s.current = sess

	fns := make([]func(core.Session, bool), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	var out core.Session
	if sess != nil {
		out = *sess
	}
	for _, fn := range fns {
		fn(out, sess != nil)
	}
}

// tokenExpiry reads exp from the minted JWT without verifying it; the
// backend is the verifier, the store only needs to know when to stop
// handing the token out.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
