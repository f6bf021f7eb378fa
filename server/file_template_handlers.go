package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*
var templateFiles embed.FS

const contentTypeHTML = "text/html; charset=utf-8"

// Page templates, each rendered inside layout.html unless it is standalone
const (
	pageLogin         = "login.html"
	pageDashboard     = "dashboard.html"
	pageReports       = "reports.html"
	pageNotifications = "notifications.html"
	pagePlaceholder   = "placeholder.html"
)

// Partials rendered on their own for htmx swaps and the notification stream
const partialNotificationList = "notification_list"

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"money": func(v float64) string {
		return formatAmount(v)
	},
	"percent": func(v float64) string {
		return fmt.Sprintf("%.1f%%", v)
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("02 Jan 2006 15:04")
	},
}

// ParseTemplate parses a page together with the shared layout and partials
func ParseTemplate(name string) (*template.Template, error) {
	files := []string{"layout.html", "partials.html", name}
	if name == pageLogin {
		files = []string{name}
	}
	return template.New(name).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), files...)
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{pageLogin, pageDashboard, pageReports, pageNotifications, pagePlaceholder} {
		tmpl, err := ParseTemplate(name)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// render writes a full page. Layout pages execute "layout", the login page executes itself.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	s.renderTemplate(w, status, name, entryTemplate(name), data)
}

// renderPartial writes one named block of a page, for htmx swaps
func (s *Server) renderPartial(w http.ResponseWriter, page, partial string, data any) {
	s.renderTemplate(w, http.StatusOK, page, partial, data)
}

func (s *Server) renderTemplate(w http.ResponseWriter, status int, page, entry string, data any) {
	tmpl, ok := s.pages[page]
	if !ok {
		log.Error().Str("template", page).Msg("Unknown template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, entry, data); err != nil {
		log.Err(err).Str("template", page).Msg("Failed to render template")
	}
}

func entryTemplate(name string) string {
	if name == pageLogin {
		return name
	}
	return "layout"
}

var amountPrinter = message.NewPrinter(language.English)

// formatAmount renders a currency amount with thousands separators, e.g. "KES 1,234,567.50"
func formatAmount(v float64) string {
	return amountPrinter.Sprintf("KES %.2f", v)
}
