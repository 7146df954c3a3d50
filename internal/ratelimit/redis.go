package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces limiter keys in a shared Redis.
const keyPrefix = "ratelimit:"

// connectionTimeout bounds the startup connection check.
const connectionTimeout = 5 * time.Second

// ErrEmptyAddress is returned when the Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

// RedisConfig holds the connection settings for the Redis-backed store.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// admitScript performs the prune-count-record step server-side so that
// concurrent checks for the same identity serialize inside Redis. One
// sorted set per key; scores and cutoffs are microsecond timestamps (safe
// inside Lua's double-precision numbers, unlike nanoseconds).
//
// ARGV: 1 cutoff (µs), 2 quota, 3 score (µs), 4 member, 5 ttl (ms).
var admitScript = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
if redis.call("ZCARD", KEYS[1]) >= tonumber(ARGV[2]) then
	return 0
end
redis.call("ZADD", KEYS[1], ARGV[3], ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[5])
return 1
`)

// RedisStore backs the limiter with one Redis sorted set per identity,
// shared across service instances.
type RedisStore struct {
	client redis.UniversalClient
	seq    atomic.Int64
}

// NewRedisStore creates a store over an existing client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient creates and verifies a Redis client for the store.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// Admit implements Store.
func (s *RedisStore) Admit(ctx context.Context, key string, now time.Time, window time.Duration, quota int) (bool, error) {
	score := now.UnixMicro()
	cutoff := now.Add(-window).UnixMicro()

	// The sequence suffix keeps members unique when two admissions land in
	// the same microsecond.
	member := strconv.FormatInt(score, 10) + "-" + strconv.FormatInt(s.seq.Add(1), 10)

	res, err := admitScript.Run(ctx, s.client,
		[]string{keyPrefix + key},
		cutoff, quota, score, member, window.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit admit: %w", err)
	}

	return res == 1, nil
}
