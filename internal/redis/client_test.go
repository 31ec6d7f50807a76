package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-crm-connector/internal/config"
	platformredis "github.com/jrsteele09/go-crm-connector/internal/redis"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("no url selects in-memory", func(t *testing.T) {
		t.Setenv("REDIS_URL", "")
		client, err := platformredis.New(ctx, config.Redis{})
		require.NoError(t, err)
		require.Nil(t, client)
	})

	t.Run("bad url", func(t *testing.T) {
		t.Setenv("REDIS_URL", "not a url")
		_, err := platformredis.New(ctx, config.Redis{})
		require.Error(t, err)
	})

	t.Run("connects and reports health", func(t *testing.T) {
		mr := miniredis.RunT(t)
		t.Setenv("REDIS_URL", "redis://"+mr.Addr())

		client, err := platformredis.New(ctx, config.Redis{})
		require.NoError(t, err)
		require.NotNil(t, client)
		require.NoError(t, client.Health(ctx))

		mr.Close()
		require.Error(t, client.Health(ctx))
		require.NoError(t, client.Close())
	})
}
