package config

import (
	"encoding/base64"
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
	RedisConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetLandingURL() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Security
	Redis
}

func New() Config {
	return mainConfig{}
}

// Validate reports every missing or malformed setting the connector cannot run
// without. The returned error wraps ErrConfiguration.
func Validate(c Config) error {
	var problems []string

	required := map[string]string{
		clientIDEnvVar:     c.GetClientID(),
		clientSecretEnvVar: c.GetClientSecret(),
		redirectURIEnvVar:  c.GetRedirectURI(),
		authorizeURLEnvVar: c.GetAuthorizeURL(),
		tokenURLEnvVar:     c.GetTokenURL(),
	}
	for _, name := range sortedKeys(required) {
		if strings.TrimSpace(required[name]) == "" {
			problems = append(problems, name+" is not set")
		}
	}

	secret := c.GetSessionSecret()
	switch {
	case secret == "":
		problems = append(problems, sessionSecretEnvVar+" is not set")
	case len(secret) < MinSessionSecretLength:
		problems = append(problems, fmt.Sprintf("%s must be at least %d bytes", sessionSecretEnvVar, MinSessionSecretLength))
	}

	if key := c.GetTokenEncryptionKey(); key != "" {
		raw, err := base64.StdEncoding.DecodeString(key)
		if err != nil || len(raw) != TokenEncryptionKeyLength {
			problems = append(problems, fmt.Sprintf("%s must be %d bytes, base64 encoded", tokenEncryptionKeyEnvVar, TokenEncryptionKeyLength))
		}
	}

	if c.GetEnv() != "DEV" && c.GetRedisURL() == "" {
		problems = append(problems, redisURLEnvVar+" is required outside DEV")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}
