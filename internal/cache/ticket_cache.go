package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dom "Ticketing/internal/domain"
	"Ticketing/internal/repo"

	"github.com/redis/go-redis/v9"
)

const (
	keyListPrefix = "ticket:list:"
	keyStats      = "ticket:stats"
)

// TicketCache caches list results and the stats aggregate in Redis.
type TicketCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTicketCache returns a new TicketCache.
func NewTicketCache(rdb *redis.Client, ttl time.Duration) *TicketCache {
	return &TicketCache{rdb: rdb, ttl: ttl}
}

// ListKey derives the cache key for a list filter. Search is normalized the
// same way the query matches it, so equivalent queries share an entry.
func ListKey(f repo.ListFilter) string {
	return keyListPrefix + fmt.Sprintf("search=%s|status=%s|priority=%s|limit=%d|offset=%d",
		strings.ToLower(strings.TrimSpace(f.Search)), f.Status, f.Priority, f.Limit, f.Offset)
}

// GetList returns the cached list for key, or nil on miss.
func (c *TicketCache) GetList(ctx context.Context, key string) ([]dom.Ticket, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Ticket
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list under key.
func (c *TicketCache) SetList(ctx context.Context, key string, list []dom.Ticket) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}

// GetStats returns the cached stats, or nil on miss.
func (c *TicketCache) GetStats(ctx context.Context) (*repo.TicketStats, error) {
	b, err := c.rdb.Get(ctx, keyStats).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s repo.TicketStats
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetStats stores the stats aggregate.
func (c *TicketCache) SetStats(ctx context.Context, s repo.TicketStats) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyStats, b, c.ttl).Err()
}

// InvalidateAll removes the stats entry and every list entry (cache
// invalidation on write).
func (c *TicketCache) InvalidateAll(ctx context.Context) error {
	if err := c.rdb.Del(ctx, keyStats).Err(); err != nil {
		return err
	}
	iter := c.rdb.Scan(ctx, 0, keyListPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
