package server

import (
	"net/http"

	"github.com/jrsteele09/npl-portal/sessions"
)

// PageData is what layout.html renders around every page's content block
type PageData struct {
	AppName string
	User    sessions.User
	Active  string // Route of the highlighted navigation entry
	Title   string
	Error   string // Inline error banner
	Content any
}

func (s *Server) newPageData(r *http.Request, active, title string) PageData {
	user, _ := currentUser(r)
	return PageData{
		AppName: s.config.GetAppName(),
		User:    user,
		Active:  active,
		Title:   title,
	}
}
