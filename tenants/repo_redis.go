package tenants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const installationKeyPrefix = "installation:"

var _ Repo = (*RedisRepo)(nil)

// RedisRepo stores one JSON document per tenant. Records have no TTL; they live
// until the tenant disconnects.
type RedisRepo struct {
	client    redis.UniversalClient
	keyPrefix string
	sealer    *Sealer
}

type RedisRepoOption func(*RedisRepo)

// WithSealer encrypts token fields before they reach Redis
func WithSealer(sealer *Sealer) RedisRepoOption {
	return func(r *RedisRepo) {
		r.sealer = sealer
	}
}

func NewRedisRepo(client redis.UniversalClient, keyPrefix string, opts ...RedisRepoOption) *RedisRepo {
	r := &RedisRepo{
		client:    client,
		keyPrefix: keyPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisRepo) key(tenantID string) string {
	return r.keyPrefix + installationKeyPrefix + tenantID
}

func (r *RedisRepo) Get(ctx context.Context, tenantID string) (*Installation, error) {
	if tenantID == "" {
		return nil, errors.New("tenantID is required")
	}

	data, err := r.client.Get(ctx, r.key(tenantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[tenants RedisRepo Get] %s: %w", tenantID, err)
	}

	var inst Installation
	if err := json.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("[tenants RedisRepo Get] decode %s: %w", tenantID, err)
	}
	if r.sealer != nil {
		if inst.AccessToken, err = r.sealer.Open(tenantID, inst.AccessToken); err != nil {
			return nil, fmt.Errorf("[tenants RedisRepo Get] open access token: %w", err)
		}
		if inst.RefreshToken, err = r.sealer.Open(tenantID, inst.RefreshToken); err != nil {
			return nil, fmt.Errorf("[tenants RedisRepo Get] open refresh token: %w", err)
		}
	}
	return &inst, nil
}

// Put writes the whole record with a single SET.
func (r *RedisRepo) Put(ctx context.Context, tenantID string, installation *Installation) error {
	if tenantID == "" {
		return errors.New("tenantID is required")
	}
	if installation == nil {
		return errors.New("installation cannot be nil")
	}

	stored := *installation
	if r.sealer != nil {
		var err error
		if stored.AccessToken, err = r.sealer.Seal(tenantID, installation.AccessToken); err != nil {
			return fmt.Errorf("[tenants RedisRepo Put] seal access token: %w", err)
		}
		if stored.RefreshToken, err = r.sealer.Seal(tenantID, installation.RefreshToken); err != nil {
			return fmt.Errorf("[tenants RedisRepo Put] seal refresh token: %w", err)
		}
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("[tenants RedisRepo Put] encode: %w", err)
	}
	if err := r.client.Set(ctx, r.key(tenantID), data, 0).Err(); err != nil {
		return fmt.Errorf("[tenants RedisRepo Put] %s: %w", tenantID, err)
	}
	return nil
}

func (r *RedisRepo) Exists(ctx context.Context, tenantID string) (bool, error) {
	if tenantID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, r.key(tenantID)).Result()
	if err != nil {
		return false, fmt.Errorf("[tenants RedisRepo Exists] %s: %w", tenantID, err)
	}
	return n > 0, nil
}

func (r *RedisRepo) Delete(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return errors.New("tenantID is required")
	}
	if err := r.client.Del(ctx, r.key(tenantID)).Err(); err != nil {
		return fmt.Errorf("[tenants RedisRepo Delete] %s: %w", tenantID, err)
	}
	return nil
}
