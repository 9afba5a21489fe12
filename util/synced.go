package util

import (
	"sync"
	"sync/atomic"
)

// SafeFlag is safe to use concurrently.
type SafeFlag struct {
	value int32
}

// NewSafeBool creates a new SafeFlag.
func NewSafeBool() *SafeFlag {
	return &SafeFlag{}
}

// Set sets the value of the flag and returns the new value.
func (sb *SafeFlag) Set(newValue bool) bool {
	var intValue int32
	if newValue {
		intValue = 1
	}
	atomic.StoreInt32(&sb.value, intValue)
	return newValue
}

// Value returns the current value of the flag.
func (sb *SafeFlag) Value() bool {
	return atomic.LoadInt32(&sb.value) != 0
}

// Latest is a single value slot written by asynchronous producers. Each
// request takes a generation from Begin; Publish only lands when its
// generation is still the newest, so a slow stale answer never overwrites a
// fresher one.
type Latest[T any] struct {
	mu    sync.Mutex
	gen   uint64
	value T
	ok    bool
}

// Begin starts a new generation and invalidates any in-flight producer.
func (l *Latest[T]) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	return l.gen
}

// Publish stores v if gen is still current. It reports whether v was kept.
func (l *Latest[T]) Publish(gen uint64, v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	l.value = v
	l.ok = true
	return true
}

// Current reports whether gen is still the newest generation.
func (l *Latest[T]) Current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return gen == l.gen
}

// Get returns the last published value.
func (l *Latest[T]) Get() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.ok
}

// Reset clears the slot and invalidates in-flight producers.
func (l *Latest[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	var zero T
	l.value = zero
	l.ok = false
}
