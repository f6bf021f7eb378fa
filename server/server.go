package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/jrsteele09/npl-portal/auth"
	"github.com/jrsteele09/npl-portal/backend"
	"github.com/jrsteele09/npl-portal/internal/config"
	"github.com/jrsteele09/npl-portal/notifications"
	"github.com/jrsteele09/npl-portal/reports"
	"github.com/jrsteele09/npl-portal/server/ui"
	"github.com/rs/zerolog/log"
)

// Backend is the part of the collections API the pages read from
type Backend interface {
	DashboardStats(ctx context.Context) (backend.DashboardStats, error)
	Report(ctx context.Context, kind reports.Kind) ([]reports.Record, error)
}

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config
	gate   *auth.Gate
	api    Backend
	feeds  *notifications.Registry
	pages  map[string]*template.Template
}

func New(config config.Config, gate *auth.Gate, api Backend, feeds *notifications.Registry) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:    config.GetEnv(),
		mux:    http.NewServeMux(),
		config: config,
		gate:   gate,
		api:    api,
		feeds:  feeds,
		pages:  pages,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%s] %s", ui.Method(method), path)
}

func logError(method, path string, err error) {
	log.Error().Msgf("[%s] %s %s", ui.Method(method), path, ui.Red.Render(err.Error()))
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
