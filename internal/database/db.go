package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Connect opens a pgx pool for url and checks it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	logrus.WithField("host", config.ConnConfig.Host).Info("connected to database")
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id            UUID PRIMARY KEY,
	status        TEXT NOT NULL,
	state         JSONB NOT NULL,
	winner_id     UUID,
	win_condition TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	end_time      TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS game_results (
	game_id   UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	player_id UUID NOT NULL,
	name      TEXT NOT NULL,
	geishas   INT NOT NULL,
	charm     INT NOT NULL,
	did_win   BOOLEAN NOT NULL,
	PRIMARY KEY (game_id, player_id)
);

CREATE TABLE IF NOT EXISTS game_actions (
	game_id        UUID NOT NULL,
	action_index   INT NOT NULL,
	round          INT NOT NULL,
	record_type    TEXT NOT NULL,
	actor_id       UUID,
	action_type    TEXT,
	action_payload JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (game_id, action_index)
);
`

// EnsureSchema creates the tables used by the game store and the historian.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
