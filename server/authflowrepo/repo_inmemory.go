package authflowrepo

import (
	"context"
	"errors"
	"sync"
	"time"
)

var _ Repo = (*InMemoryRepo)(nil)

type inMemoryEntry struct {
	state     AuthFlowState
	expiresAt time.Time
}

// InMemoryRepo is a thread-safe in-memory implementation of Repo. It only serves a
// single process and is meant for DEV and tests.
type InMemoryRepo struct {
	mu      sync.Mutex
	states  map[string]inMemoryEntry
	ttl     time.Duration
	nowFunc func() time.Time
}

type InMemoryOption func(*InMemoryRepo)

// WithNowFunc overrides the clock (primarily for testing)
func WithNowFunc(now func() time.Time) InMemoryOption {
	return func(r *InMemoryRepo) {
		r.nowFunc = now
	}
}

// WithTTL overrides DefaultTTL
func WithTTL(ttl time.Duration) InMemoryOption {
	return func(r *InMemoryRepo) {
		r.ttl = ttl
	}
}

// NewInMemoryRepo creates a new in-memory auth flow state repository
func NewInMemoryRepo(opts ...InMemoryOption) *InMemoryRepo {
	r := &InMemoryRepo{
		states:  make(map[string]inMemoryEntry),
		ttl:     DefaultTTL,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *InMemoryRepo) Create(_ context.Context, tenantID, parentAccountID string) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	r.purgeExpired(now)
	r.states[state] = inMemoryEntry{
		state: AuthFlowState{
			TenantID:        tenantID,
			ParentAccountID: parentAccountID,
			CreatedAt:       now,
		},
		expiresAt: now.Add(r.ttl),
	}
	return state, nil
}

func (r *InMemoryRepo) Consume(_ context.Context, state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.states[state]
	if !ok {
		return nil, nil
	}
	delete(r.states, state)

	if !r.nowFunc().Before(entry.expiresAt) {
		return nil, nil
	}

	s := entry.state
	return &s, nil
}

// purgeExpired drops abandoned flows. Caller holds mu.
func (r *InMemoryRepo) purgeExpired(now time.Time) {
	for k, e := range r.states {
		if !now.Before(e.expiresAt) {
			delete(r.states, k)
		}
	}
}
