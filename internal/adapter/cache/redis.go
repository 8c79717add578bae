// Package cache implements the run-result cache. Identical requests
// within the TTL window are served from Redis instead of re-fetching
// every platform.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"trendscope/internal/domain/platform"
	"trendscope/internal/domain/trend"
)

// RunCache stores completed run results keyed by a digest of the request.
type RunCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRunCache creates a cache around an existing Redis client.
func NewRunCache(client *redis.Client, ttl time.Duration) *RunCache {
	return &RunCache{client: client, ttl: ttl}
}

// Key derives the cache key for a request. Keyword and platform order do
// not matter: the inputs are sorted before hashing. Requests are keyed
// after defaulting, so an implicit all-platforms request shares the
// entry of its explicit equivalent.
func Key(req trend.Request) string {
	keywords := make([]string, len(req.Keywords))
	for i, kw := range req.Keywords {
		keywords[i] = strings.ToLower(strings.TrimSpace(kw))
	}
	sort.Strings(keywords)

	reqPlatforms := req.Platforms
	if len(reqPlatforms) == 0 {
		reqPlatforms = platform.All()
	}
	platforms := make([]string, len(reqPlatforms))
	for i, p := range reqPlatforms {
		platforms[i] = string(p)
	}
	sort.Strings(platforms)

	timeRange := req.TimeRange
	if timeRange == "" {
		timeRange = platform.Range7d
	}

	digest := sha256.Sum256([]byte(strings.Join(keywords, ",") + "|" + string(timeRange) + "|" + strings.Join(platforms, ",")))
	return "run:" + hex.EncodeToString(digest[:])
}

// Get returns the cached result for the request, or (nil, nil) on a miss.
func (c *RunCache) Get(ctx context.Context, req trend.Request) (*trend.RunResult, error) {
	data, err := c.client.Get(ctx, Key(req)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached run: %w", err)
	}

	var result trend.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached run: %w", err)
	}
	return &result, nil
}

// Set stores a run result under the request's key for the cache TTL.
func (c *RunCache) Set(ctx context.Context, req trend.Request, result *trend.RunResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode run for cache: %w", err)
	}
	if err := c.client.Set(ctx, Key(req), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache run: %w", err)
	}
	return nil
}
