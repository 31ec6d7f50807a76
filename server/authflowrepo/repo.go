package authflowrepo

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// DefaultTTL bounds how long an authorization redirect can take before its state is forgotten
const DefaultTTL = 600 * time.Second

// stateLength is the number of random bytes behind each state value
const stateLength = 32

// AuthFlowState is the context recorded when an authorization flow starts so the
// callback can recover it after the provider redirect.
type AuthFlowState struct {
	TenantID        string    `json:"tenant_id,omitempty"`
	ParentAccountID string    `json:"parent_account_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Repo stores single-use authorization flow states.
type Repo interface {
	// Create records the flow context and returns the opaque state to embed in the consent URL.
	Create(ctx context.Context, tenantID, parentAccountID string) (string, error)

	// Consume atomically reads and deletes the state. Returns nil, nil when the
	// state is unknown, expired, or was already consumed.
	Consume(ctx context.Context, state string) (*AuthFlowState, error)
}

// generateState creates a random, URL-safe state string
func generateState() (string, error) {
	b := make([]byte, stateLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
