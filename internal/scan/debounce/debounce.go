// Package debounce suppresses the rapid duplicate reads hardware barcode
// wedges produce: one physical scan often fires two or three identical
// keystroke bursts within a few hundred milliseconds. The guard discards
// repeats of the same value inside a rolling window; a different value is
// never suppressed.
package debounce

import (
	"context"
	"sync"
	"time"
)

// DefaultWindow is how long a repeat of the same scanned value is discarded.
const DefaultWindow = 1500 * time.Millisecond

// Guard decides whether a scanned value should be processed. Allow returns
// false when the same value was already seen inside the window for the same
// key; the first sighting (re)arms the window.
type Guard interface {
	Allow(ctx context.Context, key, value string) (bool, error)
}

// Memory is a per-process guard for a single station.
type Memory struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// MemoryOption configures a Memory guard.
type MemoryOption func(*Memory)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(window time.Duration, opts ...MemoryOption) *Memory {
	if window <= 0 {
		window = DefaultWindow
	}
	m := &Memory{
		window: window,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Allow(_ context.Context, key, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	k := key + "\x00" + value
	if last, ok := m.seen[k]; ok && now.Sub(last) < m.window {
		return false, nil
	}
	m.seen[k] = now

	// Drop expired entries so long sessions don't accumulate every value
	// ever scanned.
	for other, at := range m.seen {
		if now.Sub(at) >= m.window {
			delete(m.seen, other)
		}
	}
	return true, nil
}
