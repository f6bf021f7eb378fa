package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/npl-portal/auth"
	apperrors "github.com/jrsteele09/npl-portal/internal/errors"
	"github.com/rs/zerolog/log"
)

// sessionCookieName is the cookie holding the opaque session store key
const sessionCookieName = "auth"

// Messages shown inline when a backend call fails
const (
	timeoutMsg     = "The server took too long to respond. Please try again."
	unreachableMsg = "Unable to reach the server. Check your connection and try again."
	notFoundMsg    = "The requested item could not be found."
	requestFailMsg = "Something went wrong while loading data. Please try again."
)

func sessionKey(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Server) cookieSecure(r *http.Request) bool {
	return s.config.GetCookieSecure() || getScheme(r) == "https"
}

func (s *Server) SetSessionCookie(w http.ResponseWriter, key string, r *http.Request, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	s.SetSessionCookie(w, "", r, -1)
}

// backendFailure routes a failed backend call. When the backend rejected the
// session the response is written as a redirect to the login page and handled
// is true; otherwise msg is the inline error to render.
func (s *Server) backendFailure(w http.ResponseWriter, r *http.Request, err error) (msg string, handled bool) {
	if sessionInvalidated(r) || apperrors.IsUnauthorized(err) {
		s.feeds.Remove(sessionKey(r))
		s.clearSessionCookie(w, r)
		redirectSuccess(w, r, auth.LoginPath)
		return "", true
	}
	logError(r.Method, r.URL.Path, err)
	return backendErrorMessage(err), false
}

func backendErrorMessage(err error) string {
	var se *apperrors.ServerError
	switch {
	case apperrors.Is(err, apperrors.ErrTimeout):
		return timeoutMsg
	case apperrors.Is(err, apperrors.ErrUnreachable):
		return unreachableMsg
	case apperrors.Is(err, apperrors.ErrNotFound):
		return notFoundMsg
	case apperrors.As(err, &se) && se.Status == http.StatusNotFound:
		return notFoundMsg
	default:
		log.Debug().Err(err).Msg("Unclassified backend error")
		return requestFailMsg
	}
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	fullPath := path + sep + "error=" + url.QueryEscape(errorMsg)

	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", fullPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
