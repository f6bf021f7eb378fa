package server

import (
	"net/http"

	"github.com/jrsteele09/npl-portal/auth"
	"github.com/jrsteele09/npl-portal/sessions"
)

// RequireSession resolves the session cookie into a request-scoped handle and
// applies the auth gate. Unauthenticated requests for protected pages are sent
// to the login page; an authenticated visit to the login page goes home.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := sessionKey(r)
		session, state := s.gate.Resolve(r.Context(), key)

		if target, ok := s.gate.Decide(state, r.URL.Path); !ok {
			if state == auth.Unauthenticated && key != "" {
				// Stale cookie: the stored record is gone or was discarded
				s.feeds.Remove(key)
				s.clearSessionCookie(w, r)
			}
			redirectSuccess(w, r, target)
			return
		}

		var handle *sessions.Handle
		if state == auth.Authenticated {
			handle = sessions.NewHandle(key, &session)
		} else {
			handle = sessions.NewHandle(key, nil)
		}
		next(w, r.WithContext(sessions.WithHandle(r.Context(), handle)))
	}
}

// currentSession is the session of a request that passed RequireSession
func currentSession(r *http.Request) (sessions.Session, bool) {
	h, ok := sessions.HandleFrom(r.Context())
	if !ok {
		return sessions.Session{}, false
	}
	return h.Session()
}

// currentUser is the signed-in user for a request that passed RequireSession
func currentUser(r *http.Request) (sessions.User, bool) {
	session, ok := currentSession(r)
	if !ok {
		return sessions.User{}, false
	}
	return session.User, true
}

func sessionInvalidated(r *http.Request) bool {
	h, ok := sessions.HandleFrom(r.Context())
	return ok && h.Invalidated()
}
