//go:build integration

package debounce_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanledger/internal/scan/debounce"
	"scanledger/pkg/testutil/containers"
)

func TestRedisGuard(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	require.NoError(t, rc.FlushAll(ctx))

	guard := debounce.NewRedis(rc.Client, 300*time.Millisecond)

	allowed, err := guard.Allow(ctx, "station-1", "abc")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = guard.Allow(ctx, "station-1", "abc")
	require.NoError(t, err)
	assert.False(t, allowed, "repeat inside the window")

	allowed, err = guard.Allow(ctx, "station-1", "def")
	require.NoError(t, err)
	assert.True(t, allowed, "different value is never suppressed")

	allowed, err = guard.Allow(ctx, "station-2", "abc")
	require.NoError(t, err)
	assert.True(t, allowed, "windows are scoped per key")

	time.Sleep(400 * time.Millisecond)
	allowed, err = guard.Allow(ctx, "station-1", "abc")
	require.NoError(t, err)
	assert.True(t, allowed, "repeat after expiry")
}
