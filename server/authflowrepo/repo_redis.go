package authflowrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const stateKeyPrefix = "authflow:"

var _ Repo = (*RedisRepo)(nil)

// RedisRepo keeps flow states in Redis so any replica can finish a flow another
// replica started. Expiry is delegated to the key TTL.
type RedisRepo struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	nowFunc   func() time.Time
}

type RedisOption func(*RedisRepo)

// WithRedisTTL overrides DefaultTTL
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *RedisRepo) {
		r.ttl = ttl
	}
}

// NewRedisRepo creates a Redis-backed auth flow state repository
func NewRedisRepo(client redis.UniversalClient, keyPrefix string, opts ...RedisOption) *RedisRepo {
	r := &RedisRepo{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       DefaultTTL,
		nowFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisRepo) key(state string) string {
	return r.keyPrefix + stateKeyPrefix + state
}

func (r *RedisRepo) Create(ctx context.Context, tenantID, parentAccountID string) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(AuthFlowState{
		TenantID:        tenantID,
		ParentAccountID: parentAccountID,
		CreatedAt:       r.nowFunc().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("[authflowrepo Create] marshal state: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(state), data, r.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("[authflowrepo Create] store state: %w", err)
	}
	if !ok {
		return "", errors.New("[authflowrepo Create] state collision")
	}
	return state, nil
}

// Consume relies on GETDEL so exactly one concurrent caller receives the entry.
func (r *RedisRepo) Consume(ctx context.Context, state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	data, err := r.client.GetDel(ctx, r.key(state)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[authflowrepo Consume] read state: %w", err)
	}

	var s AuthFlowState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("[authflowrepo Consume] decode state: %w", err)
	}
	return &s, nil
}
