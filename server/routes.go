package server

import (
	"net/http"
	"strings"
)

func (s *Server) initRoutes() {
	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Pages (require a session)
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteReports, ChainMiddleware(s.ReportsHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteReportExport, ChainMiddleware(s.ReportExportHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteCallCenter, ChainMiddleware(s.PlaceholderHandler("Call Center"), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteLoans, ChainMiddleware(s.PlaceholderHandler("Loans"), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RoutePromises, ChainMiddleware(s.PlaceholderHandler("Promises"), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RoutePartners, ChainMiddleware(s.PlaceholderHandler("Partners"), s.HTMLMiddleWare(s.RequireSession)...))

	// Notifications
	s.RegisterRouteHandler("GET "+RouteNotifications, ChainMiddleware(s.NotificationsHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteNotificationStream, ChainMiddleware(s.NotificationStreamHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteNotificationRead, ChainMiddleware(s.MarkNotificationReadHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteNotificationReadAll, ChainMiddleware(s.MarkAllNotificationsReadHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteNotificationSamples, ChainMiddleware(s.AddSampleNotificationsHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteNotificationClear, ChainMiddleware(s.ClearNotificationsHandler(), s.HTMLMiddleWare(s.RequireSession)...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	s.RegisterRouteHandler("GET "+RouteStatic, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare(s.CacheMiddleware)...))

	// Anything else lands on the dashboard, which is itself gated
	s.RegisterRouteFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
	})
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, RouteStatic)
		if filePath == "" || strings.Contains(filePath, "..") {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err := StreamFile(w, r, filePath); err != nil {
			logError(r.Method, r.URL.Path, err)
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}
