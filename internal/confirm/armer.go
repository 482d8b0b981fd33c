// Package confirm implements two-step confirmation: the first press arms a row
// for a short window, a second press on the same row inside the window confirms it.
package confirm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultWindow is how long an armed key waits for the confirming press.
const DefaultWindow = 3 * time.Second

type Outcome int

const (
	Armed Outcome = iota + 1
	Confirmed
)

func (o Outcome) String() string {
	switch o {
	case Armed:
		return "armed"
	case Confirmed:
		return "confirmed"
	}
	return "unknown"
}

// Armer holds at most one armed row per scope. Press on the armed row confirms
// and disarms it; Press on any other row re-arms the scope for that row, so a
// click elsewhere never leaves an earlier row armed. Reset disarms the scope.
type Armer interface {
	Press(ctx context.Context, scope, id string) (Outcome, error)
	Reset(ctx context.Context, scope string) error
	Window() time.Duration
}

// Key scopes a confirmation to one user acting on one entity type.
func Key(userID, entity string) string {
	return userID + ":" + entity
}

type armedRow struct {
	id       string
	deadline time.Time
}

type MemoryArmer struct {
	mu     sync.Mutex
	window time.Duration
	armed  map[string]armedRow
	now    func() time.Time
}

func NewMemoryArmer(window time.Duration) *MemoryArmer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &MemoryArmer{
		window: window,
		armed:  make(map[string]armedRow),
		now:    time.Now,
	}
}

func (a *MemoryArmer) Window() time.Duration { return a.window }

func (a *MemoryArmer) Press(_ context.Context, scope, id string) (Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	a.sweep(now)
	if cur, ok := a.armed[scope]; ok && cur.id == id {
		delete(a.armed, scope)
		return Confirmed, nil
	}
	a.armed[scope] = armedRow{id: id, deadline: now.Add(a.window)}
	return Armed, nil
}

func (a *MemoryArmer) Reset(_ context.Context, scope string) error {
	a.mu.Lock()
	delete(a.armed, scope)
	a.mu.Unlock()
	return nil
}

// sweep drops expired scopes. Caller holds mu.
func (a *MemoryArmer) sweep(now time.Time) {
	for k, cur := range a.armed {
		if !now.Before(cur.deadline) {
			delete(a.armed, k)
		}
	}
}

// pressScript confirms when the scope holds ARGV[1], otherwise arms it for
// ARGV[1] with a TTL of ARGV[2] milliseconds. Returns 1 on confirm.
var pressScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 0
`)

// RedisArmer shares armed scopes across instances. Scopes expire with the window.
type RedisArmer struct {
	rdb    redis.Cmdable
	window time.Duration
}

func NewRedisArmer(rdb redis.Cmdable, window time.Duration) *RedisArmer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisArmer{rdb: rdb, window: window}
}

func armKey(scope string) string {
	return fmt.Sprintf("livo:confirm:%s", scope)
}

func (a *RedisArmer) Window() time.Duration { return a.window }

func (a *RedisArmer) Press(ctx context.Context, scope, id string) (Outcome, error) {
	n, err := pressScript.Run(ctx, a.rdb, []string{armKey(scope)}, id, a.window.Milliseconds()).Int()
	if err != nil {
		return 0, fmt.Errorf("confirm %s/%s: %w", scope, id, err)
	}
	if n == 1 {
		return Confirmed, nil
	}
	return Armed, nil
}

func (a *RedisArmer) Reset(ctx context.Context, scope string) error {
	if err := a.rdb.Del(ctx, armKey(scope)).Err(); err != nil {
		return fmt.Errorf("reset %s: %w", scope, err)
	}
	return nil
}
