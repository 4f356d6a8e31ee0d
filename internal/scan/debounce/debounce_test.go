package debounce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuard(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := func() time.Time { return now }
	advance := func(d time.Duration) { now = now.Add(d) }

	guard := NewMemory(1500*time.Millisecond, WithClock(clock))

	allow := func(key, value string) bool {
		ok, err := guard.Allow(ctx, key, value)
		require.NoError(t, err)
		return ok
	}

	t.Run("first sighting passes, repeat inside the window is discarded", func(t *testing.T) {
		assert.True(t, allow("s1", "abc"))
		assert.False(t, allow("s1", "abc"))

		advance(1400 * time.Millisecond)
		assert.False(t, allow("s1", "abc"))
	})

	t.Run("repeat after the window passes", func(t *testing.T) {
		advance(1600 * time.Millisecond)
		assert.True(t, allow("s1", "abc"))
	})

	t.Run("a different value is never suppressed", func(t *testing.T) {
		assert.True(t, allow("s1", "def"))
		assert.True(t, allow("s1", "ghi"))
	})

	t.Run("windows are scoped per key", func(t *testing.T) {
		assert.True(t, allow("s2", "def"))
	})

	t.Run("zero window falls back to the default", func(t *testing.T) {
		g := NewMemory(0)
		assert.Equal(t, DefaultWindow, g.window)
	})
}

func TestMemoryGuardPrunesExpiredEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	guard := NewMemory(time.Second, WithClock(func() time.Time { return now }))

	for _, v := range []string{"a", "b", "c"} {
		_, err := guard.Allow(ctx, "s", v)
		require.NoError(t, err)
	}
	now = now.Add(2 * time.Second)
	_, err := guard.Allow(ctx, "s", "d")
	require.NoError(t, err)

	guard.mu.Lock()
	defer guard.mu.Unlock()
	assert.Len(t, guard.seen, 1)
}
