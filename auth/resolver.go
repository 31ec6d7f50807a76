package auth

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/sessions"
	"github.com/rs/zerolog/log"
)

// Where a request can name its tenant, in priority order
const (
	TenantHeader      = "X-Tenant-Id"
	TenantQueryParam  = "locationId"
	SessionCookieName = "session"
)

// Resolution is the tenant context of a request. NeedsConnect is set when the
// tenant is known but has no installation.
type Resolution struct {
	TenantID     string
	AccessToken  string
	NeedsConnect bool
	Session      *sessions.Session
}

// Resolve finds the tenant of a request and its stored access token. It returns
// nil, nil when the request names no tenant. The token is not checked against the
// platform; a stale token shows up as a rejected call.
func (s *Service) Resolve(ctx context.Context, r *http.Request) (*Resolution, error) {
	res := s.candidate(r)
	if res == nil {
		s.metrics.IncResolution("no_context")
		return nil, nil
	}

	installation, err := s.repos.Tenants.Get(ctx, res.TenantID)
	if err != nil {
		s.metrics.IncResolution("error")
		return nil, apperrors.Wrapf(err, "[Service Resolve] read installation %s", res.TenantID)
	}
	if !installation.IsInstalled() {
		s.metrics.IncResolution("needs_connect")
		res.NeedsConnect = true
		return res, nil
	}

	s.metrics.IncResolution("resolved")
	res.AccessToken = installation.AccessToken
	return res, nil
}

func (s *Service) candidate(r *http.Request) *Resolution {
	if tenantID := RequestedTenant(r); tenantID != "" {
		return &Resolution{TenantID: tenantID}
	}

	session, err := s.SessionFromRequest(r)
	if err != nil {
		if r.Header.Get("Cookie") != "" {
			log.Debug().Err(err).Msg("ignoring invalid session cookie")
		}
		return nil
	}
	return &Resolution{TenantID: session.TenantID, Session: session}
}

// RequestedTenant returns the tenant named by the header or the query, or "".
func RequestedTenant(r *http.Request) string {
	if tenantID := r.Header.Get(TenantHeader); tenantID != "" {
		return tenantID
	}
	return r.URL.Query().Get(TenantQueryParam)
}

// SessionFromRequest verifies the session cookie of r. A missing cookie wraps
// ErrInvalidSession like a forged or expired one.
func (s *Service) SessionFromRequest(r *http.Request) (*sessions.Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidSession, "[Service SessionFromRequest] no session cookie")
	}
	session, err := s.sessions.Verify(cookie.Value)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Service SessionFromRequest]")
	}
	return session, nil
}
