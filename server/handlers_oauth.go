package server

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"

	"github.com/jrsteele09/go-crm-connector/auth"
	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/rs/zerolog/log"
)

const maxWebhookBody = 64 << 10

// InstallHandler starts an installation and redirects to the platform's consent page
func (s *Server) InstallHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hint := auth.Hint{
			TenantID:        r.URL.Query().Get(auth.TenantQueryParam),
			ParentAccountID: r.URL.Query().Get("companyId"),
		}

		consentURL, err := s.auth.BeginAuthorization(r.Context(), hint)
		if err != nil {
			log.Err(err).Str("request_id", requestID(r.Context())).Msg("failed to start authorization")
			redirectWithError(w, r, auth.ErrorCodeInternal)
			return
		}
		http.Redirect(w, r, consentURL, http.StatusFound)
	}
}

// CallbackHandler completes an installation, sets the session cookie and lands the
// browser in the app. Failures land on the error page.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		result, err := s.auth.CompleteAuthorization(r.Context(), auth.CallbackRequest{
			Code:          query.Get("code"),
			State:         query.Get("state"),
			ProviderError: query.Get("error"),
		})
		if err != nil {
			code := auth.ErrorCode(err)
			logEvent := log.Warn()
			if code == auth.ErrorCodeInternal {
				logEvent = log.Error()
			}
			logEvent.Err(err).Str("request_id", requestID(r.Context())).Str("error_code", code).Msg("authorization callback failed")
			redirectWithError(w, r, code)
			return
		}

		log.Info().
			Str("tenant_id", result.TenantID).
			Str("parent_account_id", result.ParentAccountID).
			Msg("tenant installed")

		s.setSessionCookie(w, result.SessionToken)
		http.Redirect(w, r, s.config.GetLandingURL(), http.StatusFound)
	}
}

// InstallWebhookHandler always answers 200 so the platform does not retry; failures
// are logged.
func (s *Server) InstallWebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer w.WriteHeader(http.StatusOK)

		var event auth.InstallEvent
		if err := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBody)).Decode(&event); err != nil {
			log.Warn().Err(err).Str("request_id", requestID(r.Context())).Msg("unreadable install webhook")
			return
		}

		if err := s.auth.HandleInstallEvent(r.Context(), event); err != nil {
			logEvent := log.Error()
			if apperrors.Is(err, apperrors.ErrConfiguration) {
				logEvent = log.Warn().Bool("misconfigured", true)
			}
			logEvent.Err(err).Str("request_id", requestID(r.Context())).Str("tenant_id", event.LocationID).Msg("install webhook not applied")
		}
	}
}

// StatusHandler reports the stored installation state of ?locationId=
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.URL.Query().Get(auth.TenantQueryParam)
		if tenantID == "" {
			writeJSONError(w, errorInvalidRequest, "locationId is required", http.StatusBadRequest)
			return
		}

		status, err := s.auth.Status(r.Context(), tenantID)
		if err != nil {
			log.Err(err).Str("tenant_id", tenantID).Msg("failed to read installation status")
			writeJSONError(w, errorInternal, "could not read installation", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

// DisconnectHandler deletes the installation of the session's tenant and clears the cookie
func (s *Server) DisconnectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := sessionFrom(r.Context()).TenantID
		if err := s.auth.Disconnect(r.Context(), tenantID); err != nil {
			log.Err(err).Str("tenant_id", tenantID).Msg("failed to disconnect tenant")
			writeJSONError(w, errorInternal, "could not disconnect", http.StatusInternalServerError)
			return
		}
		s.clearSessionCookie(w)
		writeJSON(w, http.StatusOK, map[string]any{"tenantId": tenantID, "disconnected": true})
	}
}

// LogoutHandler clears the session cookie. Sessions are not stored server-side.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.clearSessionCookie(w)
		http.Redirect(w, r, s.config.GetLandingURL(), http.StatusFound)
	}
}

// AuthErrorHandler renders a plain page with the machine-readable error code
func (s *Server) AuthErrorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("error")
		if code == "" {
			code = auth.ErrorCodeInternal
		}

		status := http.StatusBadRequest
		switch code {
		case auth.ErrorCodeProviderUnavailable:
			status = http.StatusServiceUnavailable
		case auth.ErrorCodeInternal:
			status = http.StatusInternalServerError
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<!doctype html><html><head><title>%s</title></head><body><h1>Connection failed</h1><p id="error" data-error="%s">%s</p><p><a href="%s">Try again</a></p></body></html>`,
			html.EscapeString(s.config.GetAppName()), html.EscapeString(code), html.EscapeString(code), html.EscapeString(RouteOAuthInstall))
	}
}
