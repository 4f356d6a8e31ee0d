package debounce

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a shared guard for stations behind one gateway: several wedges
// feeding the same process pool still debounce against a single window.
// SETNX with a PX expiry is both the check and the arm in one round trip.
type Redis struct {
	client *redis.Client
	window time.Duration
}

func NewRedis(client *redis.Client, window time.Duration) *Redis {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Redis{client: client, window: window}
}

func (r *Redis) Allow(ctx context.Context, key, value string) (bool, error) {
	redisKey := fmt.Sprintf("scanledger:debounce:%s:%s", key, value)
	set, err := r.client.SetNX(ctx, redisKey, 1, r.window).Result()
	if err != nil {
		return false, fmt.Errorf("debounce check: %w", err)
	}
	return set, nil
}
