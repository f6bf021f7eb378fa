package sessions

import (
	"context"
	"sync"
)

type contextKey struct{}

// Handle is the request-scoped view of a browser's session. It is the only
// route by which handlers and the backend client see the session.
type Handle struct {
	Key string

	mu          sync.RWMutex
	session     *Session
	invalidated bool
}

func NewHandle(key string, session *Session) *Handle {
	h := &Handle{Key: key}
	if session != nil {
		s := *session
		h.session = &s
	}
	return h
}

// Session returns a copy of the current session, if any
func (h *Handle) Session() (Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.session == nil {
		return Session{}, false
	}
	return *h.session, true
}

// Token returns the bearer token or "" when there is no session
func (h *Handle) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.session == nil {
		return ""
	}
	return h.session.Token
}

// Invalidate drops the session from the handle. Callers must also clear the store.
func (h *Handle) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = nil
	h.invalidated = true
}

// Invalidated reports whether the backend rejected this handle's token during the request
func (h *Handle) Invalidated() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.invalidated
}

func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, contextKey{}, h)
}

func HandleFrom(ctx context.Context) (*Handle, bool) {
	h, ok := ctx.Value(contextKey{}).(*Handle)
	return h, ok && h != nil
}
