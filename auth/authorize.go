package auth

import (
	"context"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/tenants"
	"github.com/rs/zerolog/log"
)

// Hint is what the caller knows about the tenant before consent. Both fields are
// optional; the provider's token response has the final say.
type Hint struct {
	TenantID        string
	ParentAccountID string
}

// CallbackRequest carries the query parameters of the OAuth redirect
type CallbackRequest struct {
	Code          string
	State         string
	ProviderError string
}

// CallbackResult is a completed authorization
type CallbackResult struct {
	TenantID        string
	ParentAccountID string
	UserID          string
	SessionToken    string
	Installation    *tenants.Installation
}

// BeginAuthorization records the hint under a fresh state and returns the consent URL.
func (s *Service) BeginAuthorization(ctx context.Context, hint Hint) (string, error) {
	state, err := s.repos.AuthFlows.Create(ctx, hint.TenantID, hint.ParentAccountID)
	if err != nil {
		return "", apperrors.Wrapf(err, "[Service BeginAuthorization] create state")
	}

	log.Info().
		Str("tenant_hint", hint.TenantID).
		Str("parent_account_hint", hint.ParentAccountID).
		Msg("authorization started")
	return s.provider.AuthCodeURL(state), nil
}

// CompleteAuthorization exchanges the code, writes the installation and issues a
// session for the tenant. Nothing is written unless every step succeeds.
//
// A missing or expired state is tolerated: the tenant may still be disclosed by the
// token response. When both disclose a tenant and they differ, the token response wins.
func (s *Service) CompleteAuthorization(ctx context.Context, req CallbackRequest) (*CallbackResult, error) {
	result, err := s.completeAuthorization(ctx, req)
	if err != nil {
		s.metrics.IncAuthorizationResult(ErrorCode(err))
		return nil, err
	}
	s.metrics.IncAuthorizationResult("success")
	return result, nil
}

func (s *Service) completeAuthorization(ctx context.Context, req CallbackRequest) (*CallbackResult, error) {
	if req.ProviderError != "" {
		return nil, apperrors.Wrapf(apperrors.ErrAuthorizationFailed, "[Service CompleteAuthorization] provider returned %q", req.ProviderError)
	}
	if req.Code == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "[Service CompleteAuthorization] code is required")
	}

	var hint Hint
	if req.State != "" {
		flow, err := s.repos.AuthFlows.Consume(ctx, req.State)
		if err != nil {
			return nil, apperrors.Wrapf(err, "[Service CompleteAuthorization] consume state")
		}
		s.metrics.IncCorrelationConsume(flow != nil)
		if flow != nil {
			hint = Hint{TenantID: flow.TenantID, ParentAccountID: flow.ParentAccountID}
		}
	}

	grant, err := s.provider.ExchangeCode(ctx, req.Code)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrProviderUnavailable) {
			return nil, apperrors.Wrapf(err, "[Service CompleteAuthorization] exchange code")
		}
		log.Warn().Err(err).Str("tenant_hint", hint.TenantID).Msg("code exchange rejected")
		return nil, apperrors.Wrapf(apperrors.ErrAuthorizationFailed, "[Service CompleteAuthorization] exchange code: %v", err)
	}

	tenantID := grant.TenantID
	switch {
	case tenantID == "":
		tenantID = hint.TenantID
	case hint.TenantID != "" && hint.TenantID != tenantID:
		log.Warn().
			Str("tenant_id", tenantID).
			Str("tenant_hint", hint.TenantID).
			Msg("token response tenant differs from hint, using token response")
	}
	if tenantID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrMissingTenantContext, "[Service CompleteAuthorization] no tenant in token response or state")
	}

	installation := grant.Installation(tenants.SourceOAuth)
	if installation.ParentAccountID == "" {
		installation.ParentAccountID = hint.ParentAccountID
	}

	sessionToken, err := s.sessions.Issue(tenantID, installation.ParentAccountID, grant.UserID)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Service CompleteAuthorization] issue session")
	}
	if err := s.writer.WriteInstallation(ctx, tenantID, installation); err != nil {
		return nil, apperrors.Wrapf(err, "[Service CompleteAuthorization] write installation")
	}

	return &CallbackResult{
		TenantID:        tenantID,
		ParentAccountID: installation.ParentAccountID,
		UserID:          grant.UserID,
		SessionToken:    sessionToken,
		Installation:    installation,
	}, nil
}
