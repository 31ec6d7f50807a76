package server

import "net/http"

func (s *Server) initRoutes() {
	// Installation
	s.RegisterRouteFunc("GET "+RouteOAuthInstall, ChainMiddleware(s.InstallHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteOAuthCallback, ChainMiddleware(s.CallbackHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteWebhookInstall, ChainMiddleware(s.InstallWebhookHandler(), s.StdMiddleware()...))

	// Installation management
	s.RegisterRouteFunc("GET "+RouteOAuthStatus, ChainMiddleware(s.StatusHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteOAuthDisconnect, ChainMiddleware(s.DisconnectHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteFunc("OPTIONS "+RouteOAuthDisconnect, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))

	// Session
	s.RegisterRouteFunc("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthError, ChainMiddleware(s.AuthErrorHandler(), s.BrowserMiddleware()...))

	// Tenant-scoped API
	s.RegisterRouteFunc("GET "+RouteAPIContext, ChainMiddleware(s.ContextHandler(), s.APIMiddleware(s.RequireTenantContext())...))
	s.RegisterRouteFunc("GET "+RouteAPILocation, ChainMiddleware(s.LocationHandler(), s.APIMiddleware(s.RequireTenantContext())...))
	s.RegisterRouteFunc("OPTIONS /api/", ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))

	// Operations
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	if s.metrics != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics)
	}
}

// PreflightHandler answers CORS preflight requests. CorsMiddleware has already
// written the headers.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
