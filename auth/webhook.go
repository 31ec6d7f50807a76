package auth

import (
	"context"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/tenants"
	"github.com/rs/zerolog/log"
)

// InstallEventType is the only webhook event that writes an installation
const InstallEventType = "INSTALL"

// InstallEvent is the platform's app install webhook payload
type InstallEvent struct {
	Type       string `json:"type"`
	LocationID string `json:"locationId"`
	CompanyID  string `json:"companyId"`
	UserID     string `json:"userId,omitempty"`
}

// HandleInstallEvent mints a location token through the agency exchange and writes
// it. Events of other types are ignored. A failure writes nothing.
func (s *Service) HandleInstallEvent(ctx context.Context, event InstallEvent) error {
	err := s.handleInstallEvent(ctx, event)
	switch {
	case err == nil:
	case apperrors.Is(err, apperrors.ErrConfiguration):
		s.metrics.IncWebhookEvent("misconfigured")
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		s.metrics.IncWebhookEvent("invalid")
	default:
		s.metrics.IncWebhookEvent("failed")
	}
	return err
}

func (s *Service) handleInstallEvent(ctx context.Context, event InstallEvent) error {
	if event.Type != InstallEventType {
		s.metrics.IncWebhookEvent("ignored")
		log.Debug().Str("type", event.Type).Str("tenant_id", event.LocationID).Msg("ignoring webhook event")
		return nil
	}
	if event.LocationID == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "[Service HandleInstallEvent] locationId is required")
	}
	if !s.provider.HasAgencyToken() {
		return apperrors.Wrapf(apperrors.ErrConfiguration, "[Service HandleInstallEvent] agency token is not configured")
	}
	if event.CompanyID == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "[Service HandleInstallEvent] companyId is required for %s", event.LocationID)
	}

	grant, err := s.provider.ExchangeAgencyToken(ctx, event.CompanyID, event.LocationID)
	if err != nil {
		return apperrors.Wrapf(err, "[Service HandleInstallEvent] agency exchange for %s", event.LocationID)
	}

	installation := grant.Installation(tenants.SourceWebhook)
	if installation.ParentAccountID == "" {
		installation.ParentAccountID = event.CompanyID
	}
	if err := s.writer.WriteInstallation(ctx, event.LocationID, installation); err != nil {
		return apperrors.Wrapf(err, "[Service HandleInstallEvent]")
	}

	s.metrics.IncWebhookEvent("installed")
	return nil
}
