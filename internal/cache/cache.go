// Package cache provides a Redis read-through cache for search result pages.
// The catalog only changes when the sync job runs, so even a short TTL
// absorbs most repeated queries (storefronts tend to hammer the same terms).
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vuquimar/api-rei-do-pano/internal/domain"
)

const keyPrefix = "search:"

// DefaultTTL keeps entries well under the sync interval.
const DefaultTTL = 5 * time.Minute

// SearchCache stores serialized result pages in Redis.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSearchCache creates a Redis-backed result cache. A non-positive ttl
// falls back to DefaultTTL.
func NewSearchCache(client *redis.Client, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SearchCache{
		client: client,
		ttl:    ttl,
	}
}

// Key derives the cache key for a normalized query and page coordinates.
// The query text is hashed so arbitrary user input never lands in key space.
func Key(normalizedQuery string, page, pageSize int) string {
	sum := sha256.Sum256([]byte(normalizedQuery))
	return fmt.Sprintf("%s%x:%d:%d", keyPrefix, sum[:16], page, pageSize)
}

// Get retrieves a cached result page. A miss returns (nil, nil).
func (c *SearchCache) Get(ctx context.Context, key string) (*domain.ResultPage, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get result page: %w", err)
	}

	var page domain.ResultPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("unmarshal result page: %w", err)
	}

	return &page, nil
}

// Set stores a result page under key with the configured TTL.
func (c *SearchCache) Set(ctx context.Context, key string, page domain.ResultPage) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal result page: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set result page: %w", err)
	}

	return nil
}
