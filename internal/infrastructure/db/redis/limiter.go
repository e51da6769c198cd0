package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// INCR the window counter and set its expiry on the first hit, atomically.
var fixedWindowScript = redis.NewScript(`
local c = redis.call("INCR", KEYS[1])
if c == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return c
`)

// LoginLimiter allows at most limit attempts per key within window.
// Key format: login:<key>
type LoginLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewLoginLimiter(client *redis.Client, limit int, window time.Duration) *LoginLimiter {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginLimiter{client: client, limit: limit, window: window}
}

// Allow counts one attempt for key. A non-positive limit disables throttling.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	count, err := fixedWindowScript.Run(ctx, l.client, []string{"login:" + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("login limiter: %w", err)
	}
	return count <= int64(l.limit), nil
}
