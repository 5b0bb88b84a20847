// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for game action logs.
const DefaultQueueName = "hanamikoji_actions"

// GameActionRecord holds the minimal info needed by the historian.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"game_id"`
	ActionIndex   int                    `json:"action_index"`
	Round         int                    `json:"round"`
	RecordType    string                 `json:"record_type"`
	ActorUserID   uuid.UUID              `json:"actor_user_id"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// NewGameActionRecord converts a game log entry into a queue record.
func NewGameActionRecord(gameID uuid.UUID, rec models.ActionRecord) GameActionRecord {
	payload := map[string]interface{}{}
	if len(rec.CardIDs) > 0 {
		payload["card_ids"] = rec.CardIDs
	}
	if rec.GeishaID != "" {
		payload["geisha_id"] = rec.GeishaID
	}
	if len(rec.Groups) > 0 {
		payload["groups"] = rec.Groups
	}
	if rec.ChosenGroup != nil {
		payload["chosen_group"] = *rec.ChosenGroup
	}
	return GameActionRecord{
		GameID:        gameID,
		ActionIndex:   rec.Index,
		Round:         rec.Round,
		RecordType:    string(rec.Type),
		ActorUserID:   rec.PlayerID,
		ActionType:    string(rec.ActionType),
		ActionPayload: payload,
		Timestamp:     rec.Timestamp.UnixMilli(),
	}
}

// Connect creates a Redis client for addr and db and checks it with a ping.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// ActionPublisher pushes action records onto the historian queue.
type ActionPublisher struct {
	rdb   *redis.Client
	queue string
}

// NewActionPublisher returns a publisher for queue, or DefaultQueueName when empty.
func NewActionPublisher(rdb *redis.Client, queue string) *ActionPublisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &ActionPublisher{rdb: rdb, queue: queue}
}

// Queue is the Redis list the publisher writes to.
func (p *ActionPublisher) Queue() string {
	return p.queue
}

// Publish serializes the records to JSON and pushes them to the queue in order.
func (p *ActionPublisher) Publish(ctx context.Context, records ...GameActionRecord) error {
	if len(records) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal GameActionRecord: %w", err)
		}
		values = append(values, data)
	}
	if err := p.rdb.RPush(ctx, p.queue, values...).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}
