package auth

import (
	"context"

	"github.com/jrsteele09/go-crm-connector/crm"
	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/rs/zerolog/log"
)

// PlatformCall is a tenant-scoped call made with an access token
type PlatformCall func(ctx context.Context, accessToken string) error

// CallWithRefresh runs call with the resolved token. If the platform rejects the
// token it refreshes once and retries once. A failed refresh, or a second rejection,
// becomes a NeedsConnectError for the tenant. The provider being unavailable is not
// a reason to reconnect and is returned as is.
func (s *Service) CallWithRefresh(ctx context.Context, res *Resolution, call PlatformCall) error {
	if res == nil {
		return apperrors.Wrapf(apperrors.ErrMissingTenantContext, "[Service CallWithRefresh]")
	}
	if res.NeedsConnect {
		return &apperrors.NeedsConnectError{TenantID: res.TenantID, Cause: apperrors.ErrNotInstalled}
	}

	err := call(ctx, res.AccessToken)
	if !apperrors.Is(err, crm.ErrUnauthorized) {
		return err
	}

	log.Info().Str("tenant_id", res.TenantID).Msg("access token rejected, refreshing")
	installation, err := s.refresher.Refresh(ctx, res.TenantID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrProviderUnavailable) {
			return apperrors.Wrapf(err, "[Service CallWithRefresh]")
		}
		return &apperrors.NeedsConnectError{TenantID: res.TenantID, Cause: err}
	}
	res.AccessToken = installation.AccessToken

	err = call(ctx, installation.AccessToken)
	if apperrors.Is(err, crm.ErrUnauthorized) {
		return &apperrors.NeedsConnectError{TenantID: res.TenantID, Cause: err}
	}
	return err
}
