package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/models"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "hanamikoji:game:"

// RedisStore keeps each game as a JSON string that expires after ttl of inactivity.
// A zero ttl keeps games forever.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(id uuid.UUID) string {
	return redisKeyPrefix + id.String()
}

func (s *RedisStore) Load(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	data, err := s.rdb.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get game %s: %w", id, err)
	}

	var g models.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game %s: %w", id, err)
	}
	return &g, nil
}

func (s *RedisStore) Save(ctx context.Context, g *models.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal game %s: %w", g.ID, err)
	}
	if err := s.rdb.Set(ctx, redisKey(g.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set game %s: %w", g.ID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.rdb.Del(ctx, redisKey(id)).Err()
}
