package tenants

import "context"

// Repo is the token store. Writes replace the whole record; concurrent writers
// for the same tenant resolve to one of the writes, never a merge.
type Repo interface {
	// Get returns nil, nil when the tenant has no record.
	Get(ctx context.Context, tenantID string) (*Installation, error)
	Put(ctx context.Context, tenantID string, installation *Installation) error
	// Exists is a local probe and never calls the platform.
	Exists(ctx context.Context, tenantID string) (bool, error)
	// Delete is idempotent.
	Delete(ctx context.Context, tenantID string) error
}
