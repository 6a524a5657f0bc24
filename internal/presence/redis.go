package presence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const onlineKey = "presence:online"

// RedisTracker shares presence between instances through a sorted set scored
// by last activity (unix seconds).
type RedisTracker struct {
	rdb    *redis.Client
	window time.Duration
}

func NewRedisTracker(ctx context.Context, addr, password string, window time.Duration) (*RedisTracker, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisTracker{rdb: rdb, window: window}, nil
}

func (t *RedisTracker) Touch(ctx context.Context, userID uuid.UUID) error {
	return t.rdb.ZAdd(ctx, onlineKey, redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: userID.String(),
	}).Err()
}

func (t *RedisTracker) Online(ctx context.Context) ([]uuid.UUID, error) {
	from := strconv.FormatInt(time.Now().Add(-t.window).Unix(), 10)
	members, err := t.rdb.ZRangeByScore(ctx, onlineKey, &redis.ZRangeBy{Min: "(" + from, Max: "+inf"}).Result()
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if id, err := uuid.Parse(m); err == nil {
			out = append(out, id)
		}
	}
	return out, nil
}

func (t *RedisTracker) Sweep(ctx context.Context) error {
	upTo := strconv.FormatInt(time.Now().Add(-t.window).Unix(), 10)
	return t.rdb.ZRemRangeByScore(ctx, onlineKey, "-inf", upTo).Err()
}

func (t *RedisTracker) Close() error {
	return t.rdb.Close()
}
