package authflowrepo_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-crm-connector/server/authflowrepo"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type repoUnderTest struct {
	repo authflowrepo.Repo
	// advance moves the repo's notion of time forward
	advance func(d time.Duration)
}

func newInMemory(t *testing.T) repoUnderTest {
	t.Helper()
	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := authflowrepo.NewInMemoryRepo(authflowrepo.WithNowFunc(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}))
	return repoUnderTest{
		repo: repo,
		advance: func(d time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			now = now.Add(d)
		},
	}
}

func newRedis(t *testing.T) repoUnderTest {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repoUnderTest{
		repo:    authflowrepo.NewRedisRepo(client, "test:"),
		advance: mr.FastForward,
	}
}

func forEachRepo(t *testing.T, fn func(t *testing.T, r repoUnderTest)) {
	t.Run("inmemory", func(t *testing.T) { fn(t, newInMemory(t)) })
	t.Run("redis", func(t *testing.T) { fn(t, newRedis(t)) })
}

func TestRepo_CreateConsume(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r repoUnderTest) {
		ctx := context.Background()

		state, err := r.repo.Create(ctx, "loc_123", "comp_1")
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(state), 43)

		entry, err := r.repo.Consume(ctx, state)
		require.NoError(t, err)
		require.NotNil(t, entry)
		require.Equal(t, "loc_123", entry.TenantID)
		require.Equal(t, "comp_1", entry.ParentAccountID)

		again, err := r.repo.Consume(ctx, state)
		require.NoError(t, err)
		require.Nil(t, again)
	})
}

func TestRepo_StatesAreUnique(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r repoUnderTest) {
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			state, err := r.repo.Create(context.Background(), "loc_123", "")
			require.NoError(t, err)
			require.False(t, seen[state])
			seen[state] = true
		}
	})
}

func TestRepo_UnknownState(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r repoUnderTest) {
		entry, err := r.repo.Consume(context.Background(), "never-created")
		require.NoError(t, err)
		require.Nil(t, entry)

		_, err = r.repo.Consume(context.Background(), "")
		require.Error(t, err)
	})
}

func TestRepo_Expiry(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r repoUnderTest) {
		ctx := context.Background()

		expired, err := r.repo.Create(ctx, "loc_123", "")
		require.NoError(t, err)
		r.advance(601 * time.Second)

		entry, err := r.repo.Consume(ctx, expired)
		require.NoError(t, err)
		require.Nil(t, entry)

		fresh, err := r.repo.Create(ctx, "loc_456", "")
		require.NoError(t, err)
		r.advance(599 * time.Second)

		entry, err = r.repo.Consume(ctx, fresh)
		require.NoError(t, err)
		require.NotNil(t, entry)
		require.Equal(t, "loc_456", entry.TenantID)
	})
}

func TestRepo_ConcurrentConsume(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r repoUnderTest) {
		ctx := context.Background()

		for round := 0; round < 20; round++ {
			state, err := r.repo.Create(ctx, "loc_123", "")
			require.NoError(t, err)

			var wins atomic.Int32
			var wg sync.WaitGroup
			start := make(chan struct{})
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					entry, err := r.repo.Consume(ctx, state)
					if err == nil && entry != nil {
						wins.Add(1)
					}
				}()
			}
			close(start)
			wg.Wait()

			require.Equal(t, int32(1), wins.Load())
		}
	})
}
