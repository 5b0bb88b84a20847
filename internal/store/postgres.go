package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/hanamikoji/internal/database"
	"github.com/jason-s-yu/hanamikoji/internal/models"
)

// PostgresStore keeps games in the games table and writes final results when a game
// finishes.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Load(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	g, err := database.LoadGame(ctx, s.pool, id)
	if errors.Is(err, database.ErrGameNotFound) {
		return nil, ErrNotFound
	}
	return g, err
}

func (s *PostgresStore) Save(ctx context.Context, g *models.Game) error {
	return database.UpsertGame(ctx, s.pool, g)
}
