package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/npl-portal/auth"
	"github.com/jrsteele09/npl-portal/internal/config"
	"github.com/jrsteele09/npl-portal/users"
	"github.com/rs/zerolog/log"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName   string
	Error     string
	Username  string // Preserve username on error
	DemoHints []users.DemoHint
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderLogin(w, http.StatusOK, r.URL.Query().Get("username"), r.URL.Query().Get("error"))
	}
}

// LoginSubmissionHandler processes the login form submission (POST /auth/login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		creds := auth.Credentials{
			Username: r.FormValue("username"),
			Password: r.FormValue("password"),
		}

		// Every login gets a fresh key so a leaked cookie can't outlive its session
		key := uuid.NewString()
		if _, err := s.gate.Login(r.Context(), key, creds); err != nil {
			log.Info().Err(err).Str("username", strings.TrimSpace(creds.Username)).Msg("Login failed")
			s.renderLogin(w, loginFailureStatus(err), creds.Username, auth.LoginErrorMessage(err))
			return
		}

		if previous := sessionKey(r); previous != "" {
			s.endSession(r, previous)
		}

		s.SetSessionCookie(w, key, r, int(s.config.GetSessionMaxAge().Seconds()))
		redirectSuccess(w, r, auth.DefaultPath)
	}
}

// LogoutHandler ends the user session and returns to the login page
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.endSession(r, sessionKey(r))
		s.clearSessionCookie(w, r)
		redirectSuccess(w, r, auth.LoginPath)
	}
}

func (s *Server) endSession(r *http.Request, key string) {
	if key == "" {
		return
	}
	s.feeds.Remove(key)
	if err := s.gate.Logout(r.Context(), key); err != nil {
		log.Err(err).Msg("Failed to clear session")
	}
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, username, errorMsg string) {
	data := LoginPageData{
		AppName:  s.config.GetAppName(),
		Error:    errorMsg,
		Username: username,
	}
	if s.config.GetAuthProvider() == config.AuthProviderDemo {
		data.DemoHints = users.DemoHints()
	}
	s.render(w, status, pageLogin, data)
}

func loginFailureStatus(err error) int {
	switch auth.LoginErrorMessage(err) {
	case auth.MissingCredentialsMsg:
		return http.StatusBadRequest
	case auth.InvalidCredentialsMsg:
		return http.StatusUnauthorized
	}
	return http.StatusBadGateway
}
