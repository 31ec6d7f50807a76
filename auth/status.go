package auth

import (
	"context"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/rs/zerolog/log"
)

// InstallStatus reports what the store holds for a tenant, without calling the platform
type InstallStatus struct {
	TenantID        string `json:"locationId"`
	Installed       bool   `json:"installed"`
	HasAccessToken  bool   `json:"hasAccessToken"`
	HasRefreshToken bool   `json:"hasRefreshToken"`
}

func (s *Service) Status(ctx context.Context, tenantID string) (*InstallStatus, error) {
	if tenantID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "[Service Status] tenant id is required")
	}
	exists, err := s.repos.Tenants.Exists(ctx, tenantID)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Service Status] %s", tenantID)
	}
	status := &InstallStatus{TenantID: tenantID, Installed: exists}
	if !exists {
		return status, nil
	}

	installation, err := s.repos.Tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Service Status] %s", tenantID)
	}
	status.HasAccessToken = installation.IsInstalled()
	status.HasRefreshToken = installation.HasRefreshToken()
	return status, nil
}

// Disconnect deletes the tenant's installation. Deleting an absent one is not an error.
func (s *Service) Disconnect(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "[Service Disconnect] tenant id is required")
	}
	if err := s.repos.Tenants.Delete(ctx, tenantID); err != nil {
		return apperrors.Wrapf(err, "[Service Disconnect] %s", tenantID)
	}
	log.Info().Str("tenant_id", tenantID).Msg("installation deleted")
	return nil
}
