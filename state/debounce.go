package state

import (
	"sync"
	"time"
)

// Debounced propagates a changing value only after it has been quiet for
// delay. A Set during the wait restarts the interval.
type Debounced[T any] struct {
	delay    time.Duration
	onSettle func(T)

	mu    sync.Mutex
	value T
	gen   uint64
	timer *time.Timer
}

func NewDebounced[T any](initial T, delay time.Duration, onSettle func(T)) *Debounced[T] {
	return &Debounced[T]{delay: delay, onSettle: onSettle, value: initial}
}

func (d *Debounced[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// a newer Set superseded this one
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.value = v
		d.timer = nil
		d.mu.Unlock()

		if d.onSettle != nil {
			d.onSettle(v)
		}
	})
}

// Value returns the last propagated value.
func (d *Debounced[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Stop drops any pending propagation.
func (d *Debounced[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
