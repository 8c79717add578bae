package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendscope/internal/domain/platform"
	"trendscope/internal/domain/trend"
)

func newTestCache(t *testing.T) (*RunCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRunCache(client, time.Hour), mr
}

func request() trend.Request {
	return trend.Request{
		Keywords:  []string{"passive income", "side hustle"},
		TimeRange: platform.Range7d,
		Platforms: []platform.Platform{platform.Video, platform.Forum},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	miss, err := c.Get(ctx, request())
	require.NoError(t, err)
	assert.Nil(t, miss)

	stored := &trend.RunResult{
		RunID:  "run-1",
		Status: trend.StatusCompleted,
		Topics: []trend.Topic{{ClusterKey: "passive income"}},
	}
	require.NoError(t, c.Set(ctx, request(), stored))

	got, err := c.Get(ctx, request())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, trend.StatusCompleted, got.Status)
	require.Len(t, got.Topics, 1)
	assert.Equal(t, "passive income", got.Topics[0].ClusterKey)
}

func TestCacheKeyOrderInsensitive(t *testing.T) {
	a := trend.Request{
		Keywords:  []string{"b", "a"},
		TimeRange: platform.Range7d,
		Platforms: []platform.Platform{platform.Forum, platform.Video},
	}
	b := trend.Request{
		Keywords:  []string{"A ", "b"},
		TimeRange: platform.Range7d,
		Platforms: []platform.Platform{platform.Video, platform.Forum},
	}
	assert.Equal(t, Key(a), Key(b))

	different := trend.Request{
		Keywords:  []string{"a", "b"},
		TimeRange: platform.Range24h,
		Platforms: []platform.Platform{platform.Video, platform.Forum},
	}
	assert.NotEqual(t, Key(a), Key(different))
}

func TestCacheKeyAppliesRequestDefaults(t *testing.T) {
	implicit := trend.Request{Keywords: []string{"side hustle"}}
	explicit := trend.Request{
		Keywords:  []string{"side hustle"},
		TimeRange: platform.Range7d,
		Platforms: platform.All(),
	}
	assert.Equal(t, Key(implicit), Key(explicit))

	subset := trend.Request{
		Keywords:  []string{"side hustle"},
		TimeRange: platform.Range7d,
		Platforms: []platform.Platform{platform.Forum},
	}
	assert.NotEqual(t, Key(implicit), Key(subset))
}

func TestCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, request(), &trend.RunResult{RunID: "run-2"}))

	mr.FastForward(2 * time.Hour)

	got, err := c.Get(ctx, request())
	require.NoError(t, err)
	assert.Nil(t, got)
}
