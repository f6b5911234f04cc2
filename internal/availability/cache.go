package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a short-TTL Redis cache for resolved availability views. A nil
// *Cache is a valid no-op: every Get misses and every Set is dropped.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client. Returns nil when the client is nil so
// callers can wire it unconditionally.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(practitionerID string, day time.Time) string {
	return fmt.Sprintf("availability:%s:%s", practitionerID, day.Format("2006-01-02"))
}

// Get returns a cached view if present and decodable.
func (c *Cache) Get(ctx context.Context, practitionerID string, day time.Time) ([]Slot, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.key(practitionerID, day)).Bytes()
	if err != nil {
		return nil, false
	}
	var slots []Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

// Set stores a view. Failures are ignored: the cache is best-effort.
func (c *Cache) Set(ctx context.Context, practitionerID string, day time.Time, slots []Slot) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(practitionerID, day), raw, c.ttl)
}

// Invalidate drops the cached view for one practitioner-day, called after a
// booking or cancellation lands to shorten the staleness window.
func (c *Cache) Invalidate(ctx context.Context, practitionerID string, day time.Time) {
	if c == nil {
		return
	}
	c.client.Del(ctx, c.key(practitionerID, day))
}
