package redis

import (
	"context"
	"time"
)

// ZMember is one sorted set entry together with its score
type ZMember struct {
	Score  float64
	Member string
}

// Client is the narrow Redis surface the agents depend on. Keeping it an
// interface lets package tests substitute in-memory fakes.
type Client interface {
	// Set stores a value under key, with zero ttl meaning no expiry
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// HSet writes a single field of a hash
	HSet(ctx context.Context, key string, field string, value interface{}) error

	// ZAdd inserts member into a sorted set under the given score
	ZAdd(ctx context.Context, key string, score float64, member interface{}) error

	// ZRangeByScoreWithScores returns sorted set members within a score range
	ZRangeByScoreWithScores(ctx context.Context, key string, min, max float64) ([]ZMember, error)

	// ZRemRangeByScore drops members whose score falls between min and max
	ZRemRangeByScore(ctx context.Context, key string, min, max string) error

	// ZRemRangeByRank removes members with ranks between start and stop
	ZRemRangeByRank(ctx context.Context, key string, start, stop int64) error

	// ZCard reports the number of members in a sorted set
	ZCard(ctx context.Context, key string) (int64, error)

	// Keys lists the keys matching a glob pattern
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Expire attaches a TTL to an existing key
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Ping verifies the connection is alive
	Ping(ctx context.Context) error

	// Close releases the underlying connection
	Close() error
}
