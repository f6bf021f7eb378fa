package auth

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/npl-portal/internal/errors"
	"github.com/jrsteele09/npl-portal/sessions"
	"github.com/rs/zerolog/log"
)

// State of a browser session as seen by the gate
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

const (
	LoginPath   = "/login"
	DefaultPath = "/"
)

// Paths reachable without a session
var publicPaths = map[string]bool{
	LoginPath:      true,
	"/auth/login":  true,
	"/auth/logout": true,
	"/healthz":     true,
}

const staticPrefix = "/static/"

// Gate owns the authenticated/unauthenticated transitions of a session key.
// It is the only writer of the session store.
type Gate struct {
	store    sessions.Store
	provider Provider
	maxAge   time.Duration
}

type GateOption func(*Gate)

// WithMaxAge caps how long a session lives regardless of the token's own expiry
func WithMaxAge(maxAge time.Duration) GateOption {
	return func(g *Gate) {
		g.maxAge = maxAge
	}
}

func NewGate(store sessions.Store, provider Provider, opts ...GateOption) *Gate {
	g := &Gate{store: store, provider: provider}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resolve reads the current state for key from the store
func (g *Gate) Resolve(ctx context.Context, key string) (sessions.Session, State) {
	if key == "" {
		return sessions.Session{}, Unauthenticated
	}
	s, ok := g.store.Load(ctx, key)
	if !ok {
		return sessions.Session{}, Unauthenticated
	}
	return s, Authenticated
}

// Verify reports why key no longer has a usable session: ErrSessionExpired
// once the session held by ctx's handle has passed its expiry, otherwise
// ErrSessionNotFound when the handle was invalidated or the store has no
// record. It returns nil while the session is live.
func (g *Gate) Verify(ctx context.Context, key string) error {
	if h, ok := sessions.HandleFrom(ctx); ok && h.Key == key {
		if h.Invalidated() {
			return apperrors.ErrSessionNotFound
		}
		if s, ok := h.Session(); ok && s.Expired(sessions.NowTimeFunc()) {
			return apperrors.ErrSessionExpired
		}
	}
	if _, state := g.Resolve(ctx, key); state != Authenticated {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

// Login authenticates creds and stores the new session under key. On any
// error the store is left untouched.
func (g *Gate) Login(ctx context.Context, key string, creds Credentials) (sessions.Session, error) {
	grant, err := g.provider.Authenticate(ctx, creds.Normalize())
	if err != nil {
		return sessions.Session{}, err
	}

	now := sessions.NowTimeFunc()
	s := sessions.Session{
		User:      grant.User,
		Token:     grant.Token,
		CreatedAt: now,
		ExpiresAt: grant.ExpiresAt,
	}
	if g.maxAge > 0 {
		limit := now.Add(g.maxAge)
		if s.ExpiresAt.IsZero() || s.ExpiresAt.After(limit) {
			s.ExpiresAt = limit
		}
	}

	if err := g.store.Save(ctx, key, s); err != nil {
		return sessions.Session{}, err
	}
	log.Info().Str("user", s.User.Username).Str("role", s.User.Role).Msg("User signed in")
	return s, nil
}

// Logout clears the session for key. The store is cleared before returning.
func (g *Gate) Logout(ctx context.Context, key string) error {
	if h, ok := sessions.HandleFrom(ctx); ok && h.Key == key {
		h.Invalidate()
	}
	if key == "" {
		return nil
	}
	return g.store.Clear(ctx, key)
}

// Invalidate handles a rejected token: the request's handle loses its session
// and the stored record is cleared.
func (g *Gate) Invalidate(ctx context.Context) {
	h, ok := sessions.HandleFrom(ctx)
	if !ok {
		return
	}
	h.Invalidate()
	if h.Key == "" {
		return
	}
	if err := g.store.Clear(ctx, h.Key); err != nil {
		log.Err(err).Msg("Failed to clear invalidated session")
		return
	}
	log.Info().Msg("Session invalidated by backend")
}

// Decide routes a request for path in the given state. It returns the
// redirect target when the request must not proceed.
func (g *Gate) Decide(state State, path string) (string, bool) {
	if state == Authenticated && path == LoginPath {
		return DefaultPath, false
	}
	if IsPublicPath(path) {
		return "", true
	}
	if state == Unauthenticated {
		return LoginPath, false
	}
	return "", true
}

func IsPublicPath(path string) bool {
	return publicPaths[path] || strings.HasPrefix(path, staticPrefix)
}
