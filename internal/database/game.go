// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/hanamikoji/internal/models"
)

// ErrGameNotFound is returned by LoadGame for an unknown id.
var ErrGameNotFound = errors.New("game not found")

// UpsertGame writes the full game state as JSON. When the game is finished the
// per-player results are written in the same transaction.
func UpsertGame(ctx context.Context, pool *pgxpool.Pool, g *models.Game) error {
	state, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	err = pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var winner *uuid.UUID
		if g.WinnerID != uuid.Nil {
			winner = &g.WinnerID
		}
		upsertGame := `
			INSERT INTO games (id, status, state, winner_id, win_condition, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE
			SET status = $2, state = $3, winner_id = $4, win_condition = $5, updated_at = $7
		`
		if _, e := tx.Exec(ctx, upsertGame,
			g.ID, string(g.Status), state, winner, string(g.WinCondition), g.CreatedAt, g.UpdatedAt,
		); e != nil {
			return e
		}
		if g.Status != models.GameFinished {
			return nil
		}
		return recordResultsTx(ctx, tx, g)
	})
	if err != nil {
		return fmt.Errorf("tx upsert game %s: %w", g.ID, err)
	}
	return nil
}

// recordResultsTx stores the final standing of each player from the favor record.
func recordResultsTx(ctx context.Context, tx pgx.Tx, g *models.Game) error {
	if _, err := tx.Exec(ctx, `UPDATE games SET end_time = NOW() WHERE id = $1 AND end_time IS NULL`, g.ID); err != nil {
		return err
	}

	geishas := make(map[uuid.UUID]int)
	charm := make(map[uuid.UUID]int)
	for _, gs := range g.Geishas {
		if pid := g.FavorRecord[gs.ID]; pid != uuid.Nil {
			geishas[pid]++
			charm[pid] += gs.CharmValue
		}
	}

	q := `
		INSERT INTO game_results (game_id, player_id, name, geishas, charm, did_win)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, player_id)
		DO UPDATE SET geishas = $4, charm = $5, did_win = $6
	`
	for _, p := range g.Players {
		if _, err := tx.Exec(ctx, q, g.ID, p.ID, p.Name, geishas[p.ID], charm[p.ID], p.ID == g.WinnerID); err != nil {
			return err
		}
	}
	return nil
}

// LoadGame reads a game's state back.
func LoadGame(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*models.Game, error) {
	var state []byte
	err := pool.QueryRow(ctx, `SELECT state FROM games WHERE id = $1`, id).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select game %s: %w", id, err)
	}

	var g models.Game
	if err := json.Unmarshal(state, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game %s: %w", id, err)
	}
	return &g, nil
}

// GameAction is one row of the game_actions table.
type GameAction struct {
	GameID     uuid.UUID
	Index      int
	Round      int
	RecordType string
	ActorID    uuid.UUID
	ActionType string
	Payload    json.RawMessage
	CreatedAt  int64
}

// InsertGameActions writes a batch of action rows in one transaction. Rows already
// stored are skipped so replays of the queue are harmless.
func InsertGameActions(ctx context.Context, pool *pgxpool.Pool, actions []GameAction) error {
	q := `
		INSERT INTO game_actions (
			game_id, action_index, round, record_type, actor_id, action_type, action_payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, to_timestamp($8::double precision / 1000))
		ON CONFLICT (game_id, action_index) DO NOTHING
	`
	err := pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, a := range actions {
			var actor *uuid.UUID
			if a.ActorID != uuid.Nil {
				actor = &a.ActorID
			}
			payload := a.Payload
			if len(payload) == 0 {
				payload = json.RawMessage(`{}`)
			}
			if _, err := tx.Exec(ctx, q,
				a.GameID, a.Index, a.Round, a.RecordType, actor, a.ActionType, []byte(payload), a.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert action %s/%d: %w", a.GameID, a.Index, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx insert game actions: %w", err)
	}
	return nil
}
