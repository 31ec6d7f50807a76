package server

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/rs/zerolog/log"
)

// ContextHandler returns the tenant the request resolved to
func (s *Server) ContextHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := resolutionFrom(r.Context())
		writeJSON(w, http.StatusOK, map[string]string{"tenantId": res.TenantID})
	}
}

// LocationHandler reads the tenant's location from the platform, refreshing the
// access token once if the platform rejects it.
func (s *Server) LocationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := resolutionFrom(r.Context())

		var body any
		err := s.auth.CallWithRefresh(r.Context(), res, func(ctx context.Context, accessToken string) error {
			location, err := s.crm.GetLocation(ctx, accessToken, res.TenantID)
			if err != nil {
				return err
			}
			body = location
			return nil
		})

		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, body)
		case apperrors.Is(err, apperrors.ErrNeedsConnect):
			log.Info().Err(err).Str("tenant_id", res.TenantID).Msg("tenant must reconnect")
			s.writeNeedsConnect(w, res.TenantID)
		case apperrors.Is(err, apperrors.ErrProviderUnavailable):
			log.Warn().Err(err).Str("tenant_id", res.TenantID).Msg("platform unavailable")
			writeJSONError(w, errorProviderUnavailable, "platform unavailable, retry later", http.StatusServiceUnavailable)
		case apperrors.Is(err, apperrors.ErrNotFound):
			writeJSONError(w, errorNotFound, "location not found", http.StatusNotFound)
		default:
			log.Err(err).Str("tenant_id", res.TenantID).Msg("location request failed")
			writeJSONError(w, errorInternal, "location request failed", http.StatusInternalServerError)
		}
	}
}

// HealthHandler pings the backing store
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.health != nil {
			if err := s.health(r.Context()); err != nil {
				log.Err(err).Msg("health check failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
