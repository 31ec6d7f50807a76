package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// OAuth Routes - Installation
	RouteOAuthInstall    = "/oauth/install"
	RouteOAuthCallback   = "/oauth/callback"
	RouteOAuthStatus     = "/oauth/status"
	RouteOAuthDisconnect = "/oauth/disconnect"

	// Webhooks
	RouteWebhookInstall = "/webhooks/install"

	// Auth Routes - Session
	RouteAuthLogout = "/auth/logout"
	RouteAuthError  = "/auth/error"

	// API Routes (tenant context required)
	RouteAPIContext  = "/api/context"
	RouteAPILocation = "/api/location"

	// Operations
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
