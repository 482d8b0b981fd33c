package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrExportInProgress is returned when the slot for a user and report is taken.
var ErrExportInProgress = errors.New("an export for this report is already running")

// Slot admits at most one running export per key. release must be called once
// the export finishes.
type Slot interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// MemorySlot is a Slot for a single process.
type MemorySlot struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{held: make(map[string]struct{})}
}

func (s *MemorySlot) Acquire(_ context.Context, key string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.held[key]; busy {
		return nil, ErrExportInProgress
	}
	s.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.held, key)
			s.mu.Unlock()
		})
	}, nil
}

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisClient is what the redis slot needs from *redis.Client.
type RedisClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

type redisSlot struct {
	rdb    RedisClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSlot returns a Slot shared by every instance behind the same redis.
// ttl bounds how long a crashed export can hold its slot. A failed release is
// logged and the slot frees itself after ttl.
func NewRedisSlot(rdb RedisClient, ttl time.Duration, logger *zap.Logger) Slot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisSlot{rdb: rdb, ttl: ttl, logger: logger}
}

func slotKey(key string) string {
	return fmt.Sprintf("livo:export:slot:%s", key)
}

func (s *redisSlot) Acquire(ctx context.Context, key string) (func(), error) {
	k := slotKey(key)
	token := uuid.NewString()

	ok, err := s.rdb.SetNX(ctx, k, token, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire export slot: %w", err)
	}
	if !ok {
		return nil, ErrExportInProgress
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, s.rdb, []string{k}, token).Err(); err != nil {
				s.logger.Warn("Failed to release export slot",
					zap.String("slot", key),
					zap.Duration("expires_in", s.ttl),
					zap.Error(err),
				)
			}
		})
	}, nil
}
