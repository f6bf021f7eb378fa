package server

import (
	"net/http"

	"github.com/jrsteele09/npl-portal/backend"
)

// DashboardHandler renders the portfolio metrics (GET /)
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.newPageData(r, RouteDashboard, "Dashboard")

		stats, err := s.api.DashboardStats(r.Context())
		if err != nil {
			msg, handled := s.backendFailure(w, r, err)
			if handled {
				return
			}
			data.Error = msg
			stats = backend.DashboardStats{}
		}
		data.Content = stats

		s.render(w, http.StatusOK, pageDashboard, data)
	}
}

// PlaceholderHandler renders a gated page that has no content yet
func (s *Server) PlaceholderHandler(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, http.StatusOK, pagePlaceholder, s.newPageData(r, r.URL.Path, title))
	}
}
