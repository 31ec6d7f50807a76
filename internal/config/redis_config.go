package config

import "time"

const (
	redisURLEnvVar       = "REDIS_URL"
	redisKeyPrefixEnvVar = "REDIS_KEY_PREFIX"
)

type RedisConfig interface {
	GetRedisURL() string
	GetRedisKeyPrefix() string
	GetRedisDialTimeout() time.Duration
	GetRedisReadTimeout() time.Duration
	GetRedisWriteTimeout() time.Duration
}

type Redis struct{}

var _ RedisConfig = Redis{}

// GetRedisURL returns the Redis connection URL. Empty selects in-memory stores (DEV only).
func (Redis) GetRedisURL() string {
	return GetEnv(redisURLEnvVar, "")
}

func (Redis) GetRedisKeyPrefix() string {
	return GetEnv(redisKeyPrefixEnvVar, "crm:")
}

func (Redis) GetRedisDialTimeout() time.Duration {
	return GetDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
}

func (Redis) GetRedisReadTimeout() time.Duration {
	return GetDuration("REDIS_READ_TIMEOUT", 3*time.Second)
}

func (Redis) GetRedisWriteTimeout() time.Duration {
	return GetDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
}
