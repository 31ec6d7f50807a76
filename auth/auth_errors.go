package auth

import (
	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
)

// Error codes carried on /auth/error?error=<code>
const (
	ErrorCodeMissingTenantContext = "missing_tenant_context"
	ErrorCodeAuthorizationFailed  = "authorization_failed"
	ErrorCodeProviderUnavailable  = "provider_unavailable"
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeInternal             = "internal_error"
)

// ErrorCode maps a callback failure onto its machine-readable code
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case apperrors.Is(err, apperrors.ErrMissingTenantContext):
		return ErrorCodeMissingTenantContext
	case apperrors.Is(err, apperrors.ErrAuthorizationFailed):
		return ErrorCodeAuthorizationFailed
	case apperrors.Is(err, apperrors.ErrProviderUnavailable):
		return ErrorCodeProviderUnavailable
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return ErrorCodeInvalidRequest
	default:
		return ErrorCodeInternal
	}
}
