package lookup

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period after the last keystroke before a lookup runs.
const DefaultDelay = 300 * time.Millisecond

// Debouncer calls fn with the most recent value once no new value has arrived
// for delay. Each Trigger restarts the wait.
type Debouncer[T any] struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func(T)
	timer *time.Timer
	value T
}

func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.value = v
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	v := d.value
	d.timer = nil
	d.mu.Unlock()
	d.fn(v)
}

// Stop cancels a pending call.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
