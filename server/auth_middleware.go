package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-crm-connector/auth"
	"github.com/jrsteele09/go-crm-connector/sessions"
	"github.com/rs/zerolog/log"
)

// RequireTenantContext resolves the tenant of the request and requires an
// installation. No tenant answers 400, a tenant without installation answers 409
// with the URL to connect it.
func (s *Server) RequireTenantContext() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			res, err := s.auth.Resolve(r.Context(), r)
			if err != nil {
				log.Err(err).Str("request_id", requestID(r.Context())).Msg("failed to resolve tenant")
				writeJSONError(w, errorInternal, "could not resolve tenant", http.StatusInternalServerError)
				return
			}
			if res == nil {
				writeJSONError(w, errorMissingContext, "no tenant context on request", http.StatusBadRequest)
				return
			}
			if res.NeedsConnect {
				s.writeNeedsConnect(w, res.TenantID)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyResolution, res)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireSession admits only requests carrying a verified session cookie. A
// request that also names a tenant must name the session's tenant. Missing or
// invalid sessions answer 401, a mismatched tenant answers 403.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, err := s.auth.SessionFromRequest(r)
			if err != nil {
				log.Debug().Err(err).Str("request_id", requestID(r.Context())).Msg("rejected request without session")
				writeJSONError(w, errorUnauthorized, "a valid session is required", http.StatusUnauthorized)
				return
			}
			if requested := auth.RequestedTenant(r); requested != "" && requested != session.TenantID {
				log.Warn().
					Str("request_id", requestID(r.Context())).
					Str("tenant_id", session.TenantID).
					Str("requested_tenant_id", requested).
					Msg("session does not belong to requested tenant")
				writeJSONError(w, errorForbidden, "session does not belong to this tenant", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			next(w, r.WithContext(ctx))
		}
	}
}

// resolutionFrom returns the tenant context stored by RequireTenantContext
func resolutionFrom(ctx context.Context) *auth.Resolution {
	res, _ := ctx.Value(ContextKeyResolution).(*auth.Resolution)
	return res
}

// sessionFrom returns the session stored by RequireSession
func sessionFrom(ctx context.Context) *sessions.Session {
	session, _ := ctx.Value(ContextKeySession).(*sessions.Session)
	return session
}
