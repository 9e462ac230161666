package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned by Broker pops when nothing is queued.
var ErrEmpty = errors.New("worker: queue empty")

// Broker is a set of FIFO lists keyed by name.
type Broker interface {
	Push(ctx context.Context, key string, data []byte) error
	// Pop blocks up to timeout for the oldest entry of any of keys.
	Pop(ctx context.Context, timeout time.Duration, keys ...string) (string, []byte, error)
	// TryPop takes the oldest entry of key without blocking.
	TryPop(ctx context.Context, key string) ([]byte, error)
	Len(ctx context.Context, key string) (int64, error)
}

// RedisBroker keeps each queue in a redis list: LPUSH to enqueue,
// BRPOP/RPOP to dequeue.
type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb}
}

func (b *RedisBroker) Push(ctx context.Context, key string, data []byte) error {
	return b.rdb.LPush(ctx, key, data).Err()
}

func (b *RedisBroker) Pop(ctx context.Context, timeout time.Duration, keys ...string) (string, []byte, error) {
	res, err := b.rdb.BRPop(ctx, timeout, keys...).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil, ErrEmpty
	}
	if err != nil {
		return "", nil, err
	}
	if len(res) < 2 {
		return "", nil, ErrEmpty
	}
	return res[0], []byte(res[1]), nil
}

func (b *RedisBroker) TryPop(ctx context.Context, key string) ([]byte, error) {
	raw, err := b.rdb.RPop(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	return raw, err
}

func (b *RedisBroker) Len(ctx context.Context, key string) (int64, error) {
	return b.rdb.LLen(ctx, key).Result()
}
