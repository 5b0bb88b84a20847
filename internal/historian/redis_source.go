package historian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/hanamikoji/internal/cache"
	"github.com/redis/go-redis/v9"
)

// RedisSource pops records from the list cache.ActionPublisher writes to.
type RedisSource struct {
	rdb   *redis.Client
	queue string
}

func NewRedisSource(rdb *redis.Client, queue string) *RedisSource {
	if queue == "" {
		queue = cache.DefaultQueueName
	}
	return &RedisSource{rdb: rdb, queue: queue}
}

func (r *RedisSource) Pop(ctx context.Context, timeout time.Duration) (*cache.GameActionRecord, error) {
	res, err := r.rdb.BLPop(ctx, timeout, r.queue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return nil, nil
	}
	var rec cache.GameActionRecord
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return nil, fmt.Errorf("invalid action record: %w", err)
	}
	return &rec, nil
}
