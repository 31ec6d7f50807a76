// Package refresh renews a tenant's access token with its stored refresh token and
// writes the rotated credential back to the token store.
package refresh

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/internal/metrics"
	"github.com/jrsteele09/go-crm-connector/tenants"
	"github.com/jrsteele09/go-crm-connector/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Refresher is the provider side of a refresh token grant
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*token.Grant, error)
}

// Manager serialises refreshes per tenant. Concurrent callers in this process share
// one provider call. A refresh lost to another process is recovered by reading the
// store once more and returning the winner's record.
type Manager struct {
	repo      tenants.Repo
	writer    tenants.InstallationWriter
	refresher Refresher
	metrics   *metrics.Metrics
	group     singleflight.Group
}

type ManagerOption func(*Manager)

func WithMetrics(m *metrics.Metrics) ManagerOption {
	return func(mgr *Manager) {
		mgr.metrics = m
	}
}

// NewManager creates a refresh manager that reads from repo and writes through writer
func NewManager(repo tenants.Repo, writer tenants.InstallationWriter, refresher Refresher, opts ...ManagerOption) *Manager {
	m := &Manager{
		repo:      repo,
		writer:    writer,
		refresher: refresher,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Refresh returns the tenant's renewed installation.
//
// Errors: ErrNotInstalled when the tenant has no record, ErrRefreshFailed when the
// record cannot be refreshed or the provider rejects the refresh token, and
// ErrProviderUnavailable on network failure or timeout.
func (m *Manager) Refresh(ctx context.Context, tenantID string) (*tenants.Installation, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("[refresh Refresh] tenant id is required: %w", apperrors.ErrInvalidInput)
	}

	// The flight is shared, so one caller going away must not cancel it for the rest.
	// The provider client bounds it with its own timeout.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := m.group.Do(tenantID, func() (any, error) {
		return m.refresh(flightCtx, tenantID)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug().Str("tenant_id", tenantID).Msg("joined in-flight refresh")
	}

	installation := *v.(*tenants.Installation)
	return &installation, nil
}

func (m *Manager) refresh(ctx context.Context, tenantID string) (*tenants.Installation, error) {
	current, err := m.repo.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("[refresh Refresh] read %s: %w", tenantID, err)
	}
	if !current.IsInstalled() {
		m.metrics.IncRefresh("not_installed")
		return nil, fmt.Errorf("[refresh Refresh] %s: %w", tenantID, apperrors.ErrNotInstalled)
	}
	if !current.HasRefreshToken() {
		m.metrics.IncRefresh("no_refresh_token")
		return nil, fmt.Errorf("[refresh Refresh] %s has no refresh token: %w", tenantID, apperrors.ErrRefreshFailed)
	}

	grant, err := m.refresher.Refresh(ctx, current.RefreshToken)
	if err != nil {
		return m.recover(ctx, tenantID, current, err)
	}

	next := grant.Installation(tenants.SourceRefresh)
	if next.RefreshToken == "" {
		next.RefreshToken = current.RefreshToken
	}
	if next.ParentAccountID == "" {
		next.ParentAccountID = current.ParentAccountID
	}
	if next.UserType == "" {
		next.UserType = current.UserType
	}
	if next.Scope == "" {
		next.Scope = current.Scope
	}

	if err := m.writer.WriteInstallation(ctx, tenantID, next); err != nil {
		m.metrics.IncRefresh("store_error")
		return nil, fmt.Errorf("[refresh Refresh] %w", err)
	}

	m.metrics.IncRefresh("success")
	log.Info().Str("tenant_id", tenantID).Bool("rotated", next.RefreshToken != current.RefreshToken).Msg("access token refreshed")
	return next, nil
}

// recover handles a failed provider call. When the provider rejected the refresh
// token and the store now holds a different one, another process has already
// rotated it and that record is returned.
func (m *Manager) recover(ctx context.Context, tenantID string, used *tenants.Installation, cause error) (*tenants.Installation, error) {
	if apperrors.Is(cause, apperrors.ErrProviderUnavailable) {
		m.metrics.IncRefresh("provider_unavailable")
		log.Warn().Err(cause).Str("tenant_id", tenantID).Msg("refresh failed, provider unavailable")
		return nil, fmt.Errorf("[refresh Refresh] %s: %w", tenantID, cause)
	}

	if apperrors.Is(cause, token.ErrRejected) {
		latest, err := m.repo.Get(ctx, tenantID)
		if err == nil && latest.IsInstalled() && latest.RefreshToken != used.RefreshToken {
			m.metrics.IncRefresh("superseded")
			log.Info().Str("tenant_id", tenantID).Msg("refresh token was rotated elsewhere, using stored record")
			return latest, nil
		}
	}

	m.metrics.IncRefresh("rejected")
	log.Warn().Err(cause).Str("tenant_id", tenantID).Msg("refresh rejected")
	return nil, fmt.Errorf("[refresh Refresh] %s: %v: %w", tenantID, cause, apperrors.ErrRefreshFailed)
}
