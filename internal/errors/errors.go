package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy for the connector
var (
	// Deployment errors
	ErrConfiguration = errors.New("configuration error")

	// Authorization flow errors
	ErrMissingTenantContext = errors.New("missing tenant context")
	ErrAuthorizationFailed  = errors.New("authorization failed")

	// Installation errors
	ErrNotInstalled  = errors.New("tenant not installed")
	ErrNeedsConnect  = errors.New("tenant needs to connect")
	ErrRefreshFailed = errors.New("token refresh failed")

	// Session errors
	ErrInvalidSession = errors.New("invalid session")

	// Infrastructure errors
	ErrProviderUnavailable = errors.New("provider unavailable")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// NeedsConnectError carries the tenant that must re-authorize. It matches
// ErrNeedsConnect with errors.Is.
type NeedsConnectError struct {
	TenantID string
	Cause    error
}

func (e *NeedsConnectError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tenant %s needs to connect: %v", e.TenantID, e.Cause)
	}
	return fmt.Sprintf("tenant %s needs to connect", e.TenantID)
}

func (e *NeedsConnectError) Is(target error) bool {
	return target == ErrNeedsConnect
}

func (e *NeedsConnectError) Unwrap() error {
	return e.Cause
}
