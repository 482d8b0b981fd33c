package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps recent lookup results in redis for a short TTL.
type Cache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewCache(rdb redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(kind, term string, limit int) string {
	return fmt.Sprintf("livo:lookup:%s:%d:%s", kind, limit, strings.ToLower(strings.TrimSpace(term)))
}

// Get returns cached items; ok is false on a miss.
func (c *Cache) Get(ctx context.Context, kind, term string, limit int) (items []Item, ok bool, err error) {
	raw, err := c.rdb.Get(ctx, cacheKey(kind, term, limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("decode cached lookup: %w", err)
	}
	return items, true, nil
}

func (c *Cache) Set(ctx context.Context, kind, term string, limit int, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(kind, term, limit), raw, c.ttl).Err()
}
