package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript performs the check-and-increment atomically so the counter never
// passes the cap, matching MemoryStore semantics. KEYS[1] counter,
// ARGV[1] max, ARGV[2] window ms. Returns {count, pttl_ms, allowed}.
var incrScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
    return {current, redis.call('PTTL', KEYS[1]), 0}
end
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {count, redis.call('PTTL', KEYS[1]), 1}
`)

// RedisStore shares fixed-window counters across server instances. Errors
// fail open: an unreachable Redis must not take request serving down with it.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

func (s *RedisStore) Increment(key string, cfg Config) Result {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	vals, err := incrScript.Run(ctx, s.client, []string{"ratelimit:" + key},
		cfg.Max, cfg.Window.Milliseconds()).Int64Slice()
	if err != nil || len(vals) != 3 {
		log.Printf("ratelimit: redis increment failed for %s: %v", key, err)
		return Result{Allowed: true, Limit: cfg.Max, Remaining: cfg.Max - 1, Reset: time.Now().Add(cfg.Window)}
	}

	count, ttlMs, allowed := vals[0], vals[1], vals[2] == 1

	reset := time.Now().Add(cfg.Window)
	if ttlMs > 0 {
		reset = time.Now().Add(time.Duration(ttlMs) * time.Millisecond)
	}

	remaining := cfg.Max - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Result{Allowed: allowed, Limit: cfg.Max, Remaining: remaining, Reset: reset}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
