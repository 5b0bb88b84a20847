package historian

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/hanamikoji/internal/cache"
	"github.com/jason-s-yu/hanamikoji/internal/database"
)

// PostgresSink stores batches in the game_actions table.
type PostgresSink struct {
	pool *pgxpool.Pool
}

func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

func (p *PostgresSink) Write(ctx context.Context, records []cache.GameActionRecord) error {
	actions := make([]database.GameAction, 0, len(records))
	for _, rec := range records {
		a, err := toGameAction(rec)
		if err != nil {
			return err
		}
		actions = append(actions, a)
	}
	return database.InsertGameActions(ctx, p.pool, actions)
}

func toGameAction(rec cache.GameActionRecord) (database.GameAction, error) {
	payload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return database.GameAction{}, fmt.Errorf("marshal payload of %s/%d: %w", rec.GameID, rec.ActionIndex, err)
	}
	if rec.ActionPayload == nil {
		payload = nil
	}
	return database.GameAction{
		GameID:     rec.GameID,
		Index:      rec.ActionIndex,
		Round:      rec.Round,
		RecordType: rec.RecordType,
		ActorID:    rec.ActorUserID,
		ActionType: rec.ActionType,
		Payload:    payload,
		CreatedAt:  rec.Timestamp,
	}, nil
}
