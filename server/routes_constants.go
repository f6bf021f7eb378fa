package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login & Logout
	RouteLogin      = "/login"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Pages
	RouteDashboard     = "/"
	RouteReports       = "/reports"
	RouteReportExport  = "/reports/{kind}/export"
	RouteNotifications = "/notifications"
	RouteCallCenter    = "/call-center"
	RouteLoans         = "/loans"
	RoutePromises      = "/promises"
	RoutePartners      = "/partners"

	// Notification actions
	RouteNotificationStream  = "/notifications/stream"
	RouteNotificationRead    = "/notifications/{id}/read"
	RouteNotificationReadAll = "/notifications/read-all"
	RouteNotificationSamples = "/notifications/samples"
	RouteNotificationClear   = "/notifications/clear"

	RouteHealth = "/healthz"

	// Static Asset Routes (patterns)
	RouteStatic = "/static/"
)
