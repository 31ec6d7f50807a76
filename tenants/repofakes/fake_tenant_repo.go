package tenantrepofakes

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/go-crm-connector/tenants"
)

var _ tenants.Repo = (*FakeTenantRepo)(nil)

// FakeTenantRepo is an in-memory token store. Records are copied on the way in and
// out so callers never share a pointer with the store.
type FakeTenantRepo struct {
	installations map[string]tenants.Installation
	lock          sync.RWMutex
}

func NewFakeTenantRepo() *FakeTenantRepo {
	return &FakeTenantRepo{
		installations: make(map[string]tenants.Installation),
	}
}

func (tr *FakeTenantRepo) Get(_ context.Context, tenantID string) (*tenants.Installation, error) {
	if tenantID == "" {
		return nil, errors.New("tenantID is required")
	}
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	inst, ok := tr.installations[tenantID]
	if !ok {
		return nil, nil
	}
	return &inst, nil
}

func (tr *FakeTenantRepo) Put(_ context.Context, tenantID string, installation *tenants.Installation) error {
	if tenantID == "" {
		return errors.New("tenantID is required")
	}
	if installation == nil {
		return errors.New("installation cannot be nil")
	}
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.installations[tenantID] = *installation
	return nil
}

func (tr *FakeTenantRepo) Exists(_ context.Context, tenantID string) (bool, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	_, ok := tr.installations[tenantID]
	return ok, nil
}

func (tr *FakeTenantRepo) Delete(_ context.Context, tenantID string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	delete(tr.installations, tenantID)
	return nil
}

// Len returns the number of stored installations
func (tr *FakeTenantRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.installations)
}
