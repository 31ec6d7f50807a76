package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-crm-connector/auth"
)

// setSessionCookie stores the session credential. The app runs in a third-party
// iframe, so the cookie must be SameSite=None, which browsers only accept with Secure.
func (s *Server) setSessionCookie(w http.ResponseWriter, sessionToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    sessionToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   int(s.auth.SessionLifetime().Seconds()),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   -1,
	})
}

// connectURL is where a tenant without an installation is sent to authorize
func (s *Server) connectURL(tenantID string) string {
	u := s.config.GetBaseURL() + RouteOAuthInstall
	if tenantID != "" {
		u += "?" + url.Values{auth.TenantQueryParam: {tenantID}}.Encode()
	}
	return u
}

// redirectWithError sends the browser to the error page with a machine-readable code
func redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, RouteAuthError+"?error="+url.QueryEscape(code), http.StatusFound)
}
