// Package dedup collapses concurrent fetches of the same resource into one
// outstanding call.
package dedup

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Deduplicator allows at most one in-flight call per key. Callers that arrive
// while a call is running join it and receive its result.
type Deduplicator struct {
	group singleflight.Group

	mu       sync.Mutex
	inflight map[string]int
}

// New creates an empty Deduplicator.
func New() *Deduplicator {
	return &Deduplicator{inflight: make(map[string]int)}
}

// Execute returns the result of the in-flight call registered under key, or
// starts fn and registers it. The registration is dropped once fn returns,
// successfully or not, so the next Execute starts fresh.
//
// ctx only bounds how long this caller waits. The shared call keeps running
// for other callers; fn must carry its own cancellation.
func (d *Deduplicator) Execute(ctx context.Context, key string, fn func() (any, error)) (any, error) {
	ch := d.group.DoChan(key, func() (any, error) {
		d.track(key, 1)
		defer d.track(key, -1)
		return fn()
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Do is a typed wrapper around Execute.
func Do[T any](ctx context.Context, d *Deduplicator, key string, fn func() (T, error)) (T, error) {
	v, err := d.Execute(ctx, key, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if v == nil {
		var zero T
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("dedup: key %q holds a %T result, not %T", key, v, zero)
	}
	return typed, nil
}

// InFlight returns the number of keys with a running call.
func (d *Deduplicator) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}

// Clear forgets every registration. Calls already running complete for the
// callers waiting on them, but new callers start a fresh call.
func (d *Deduplicator) Clear() {
	d.mu.Lock()
	keys := make([]string, 0, len(d.inflight))
	for k := range d.inflight {
		keys = append(keys, k)
	}
	d.mu.Unlock()

	for _, k := range keys {
		d.group.Forget(k)
	}
}

func (d *Deduplicator) track(key string, delta int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inflight[key] += delta
	if d.inflight[key] <= 0 {
		delete(d.inflight, key)
	}
}
