package config_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-crm-connector/internal/config"
	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/stretchr/testify/require"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", "DEV")
	t.Setenv("CRM_CLIENT_ID", "client-1")
	t.Setenv("CRM_CLIENT_SECRET", "secret-1")
	t.Setenv("CRM_REDIRECT_URI", "https://quotes.example.com/oauth/callback")
	t.Setenv("SESSION_SECRET", strings.Repeat("s", 32))
	t.Setenv("TOKEN_ENCRYPTION_KEY", "")
	t.Setenv("REDIS_URL", "")
}

func TestValidate(t *testing.T) {
	t.Run("valid dev configuration", func(t *testing.T) {
		setValidEnv(t)
		require.NoError(t, config.Validate(config.New()))
	})

	t.Run("missing session secret is fatal", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("SESSION_SECRET", "")
		err := config.Validate(config.New())
		require.ErrorIs(t, err, apperrors.ErrConfiguration)
		require.Contains(t, err.Error(), "SESSION_SECRET is not set")
	})

	t.Run("short session secret is rejected", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("SESSION_SECRET", "too-short")
		err := config.Validate(config.New())
		require.ErrorIs(t, err, apperrors.ErrConfiguration)
		require.Contains(t, err.Error(), "at least 32 bytes")
	})

	t.Run("missing client id and redirect uri are listed", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("CRM_CLIENT_ID", "")
		t.Setenv("CRM_REDIRECT_URI", "")
		err := config.Validate(config.New())
		require.ErrorIs(t, err, apperrors.ErrConfiguration)
		require.Contains(t, err.Error(), "CRM_CLIENT_ID is not set")
		require.Contains(t, err.Error(), "CRM_REDIRECT_URI is not set")
	})

	t.Run("bad encryption key", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("TOKEN_ENCRYPTION_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
		err := config.Validate(config.New())
		require.ErrorIs(t, err, apperrors.ErrConfiguration)
		require.Contains(t, err.Error(), "TOKEN_ENCRYPTION_KEY")
	})

	t.Run("redis required in production", func(t *testing.T) {
		setValidEnv(t)
		t.Setenv("ENV", "PROD")
		err := config.Validate(config.New())
		require.ErrorIs(t, err, apperrors.ErrConfiguration)
		require.Contains(t, err.Error(), "REDIS_URL")
	})
}

func TestGetters(t *testing.T) {
	t.Run("port gets a colon prefix", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		require.Equal(t, ":9090", config.New().GetPort())
	})

	t.Run("scopes are space separated", func(t *testing.T) {
		t.Setenv("CRM_SCOPES", "locations.readonly  contacts.write")
		require.Equal(t, []string{"locations.readonly", "contacts.write"}, config.New().GetScopes())
	})

	t.Run("provider timeout falls back on garbage", func(t *testing.T) {
		t.Setenv("PROVIDER_TIMEOUT", "soon")
		require.Equal(t, 10*time.Second, config.New().GetProviderTimeout())
		t.Setenv("PROVIDER_TIMEOUT", "5s")
		require.Equal(t, 5*time.Second, config.New().GetProviderTimeout())
	})

	t.Run("allowed origins", func(t *testing.T) {
		t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
		origins := config.New().GetAllowedOrigins()
		require.True(t, origins.IsAllowedOrigin("https://a.example.com"))
		require.True(t, origins.IsAllowedOrigin("https://b.example.com"))
		require.False(t, origins.IsAllowedOrigin("https://c.example.com"))
	})
}
