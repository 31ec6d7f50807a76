// Package auth owns the tenant identity lifecycle: starting and completing the
// authorization flow, the auto-install webhook, resolving the tenant of a request
// and running platform calls with a refresh-and-retry.
package auth

import (
	"context"
	"time"

	"github.com/jrsteele09/go-crm-connector/internal/metrics"
	"github.com/jrsteele09/go-crm-connector/server/authflowrepo"
	"github.com/jrsteele09/go-crm-connector/sessions"
	"github.com/jrsteele09/go-crm-connector/tenants"
	"github.com/jrsteele09/go-crm-connector/token"
	"github.com/pkg/errors"
)

// Provider is the platform's OAuth surface
type Provider interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*token.Grant, error)
	HasAgencyToken() bool
	ExchangeAgencyToken(ctx context.Context, parentAccountID, tenantID string) (*token.Grant, error)
}

// Refresher renews a tenant's access token
type Refresher interface {
	Refresh(ctx context.Context, tenantID string) (*tenants.Installation, error)
}

// Repos holds all repository dependencies for the Service
type Repos struct {
	AuthFlows authflowrepo.Repo // Short-lived correlation state of in-flight authorizations
	Tenants   tenants.Repo      // Installation records
}

// Service provides the tenant identity and token lifecycle operations.
type Service struct {
	repos     Repos
	provider  Provider
	writer    tenants.InstallationWriter
	refresher Refresher
	sessions  *sessions.Codec
	metrics   *metrics.Metrics
	nowTime   func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService initializes a new Service with required dependencies. The writer is
// the only path by which the callback and the webhook persist installations.
func NewService(
	repos Repos,
	provider Provider,
	writer tenants.InstallationWriter,
	refresher Refresher,
	codec *sessions.Codec,
	options ...ServiceOption,
) (*Service, error) {
	if repos.AuthFlows == nil {
		return nil, errors.New("[NewService] AuthFlows repo is required")
	}
	if repos.Tenants == nil {
		return nil, errors.New("[NewService] Tenants repo is required")
	}
	if provider == nil {
		return nil, errors.New("[NewService] provider is required")
	}
	if writer == nil {
		return nil, errors.New("[NewService] installation writer is required")
	}
	if refresher == nil {
		return nil, errors.New("[NewService] refresher is required")
	}
	if codec == nil {
		return nil, errors.New("[NewService] session codec is required")
	}

	s := &Service{
		repos:     repos,
		provider:  provider,
		writer:    writer,
		refresher: refresher,
		sessions:  codec,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// SessionLifetime is the lifetime of issued session credentials
func (s *Service) SessionLifetime() time.Duration {
	return s.sessions.Lifetime()
}
