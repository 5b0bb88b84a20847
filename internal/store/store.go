// Package store persists games by id. Implementations hold their own copies: a game
// returned by Load is never shared with the store.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/models"
)

// ErrNotFound is returned by Load for an unknown game id.
var ErrNotFound = errors.New("game not found")

// Repository loads and saves games keyed by id.
type Repository interface {
	Load(ctx context.Context, id uuid.UUID) (*models.Game, error)
	Save(ctx context.Context, g *models.Game) error
}
