package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/catalog"
	"github.com/jason-s-yu/hanamikoji/internal/database"
	"github.com/jason-s-yu/hanamikoji/internal/game"
	"github.com/jason-s-yu/hanamikoji/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(t *testing.T) *models.Game {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	e, err := game.NewEngine(cat)
	require.NoError(t, err)
	g, err := e.CreateGame("Alice", "Bob")
	require.NoError(t, err)
	return g
}

// exerciseRepository runs the behavior every Repository must share.
func exerciseRepository(t *testing.T, repo Repository) {
	ctx := context.Background()
	g := newGame(t)

	_, err := repo.Load(ctx, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Save(ctx, g))
	loaded, err := repo.Load(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, loaded.ID)
	assert.Equal(t, g.Status, loaded.Status)
	assert.Equal(t, g.Round.Deck, loaded.Round.Deck)
	assert.Equal(t, g.Players[0].HandCards, loaded.Players[0].HandCards)
	require.Len(t, loaded.Cards, 21)
	assert.NoError(t, game.CheckInvariants(loaded))

	loaded.Status = models.GameFinished
	loaded.WinnerID = loaded.Players[0].ID
	loaded.WinCondition = models.WinResignation
	require.NoError(t, repo.Save(ctx, loaded))
	again, err := repo.Load(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameFinished, again.Status)
	assert.Equal(t, loaded.WinnerID, again.WinnerID)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseRepository(t, s)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStoreIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	g := newGame(t)
	require.NoError(t, s.Save(ctx, g))

	g.Players[0].Name = "Mallory"
	loaded, err := s.Load(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", loaded.Players[0].Name)

	loaded.Round.Deck = nil
	again, err := s.Load(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, again.Round.Deck, 8)

	s.Delete(g.ID)
	_, err = s.Load(ctx, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	s := NewRedisStore(rdb, time.Minute)
	exerciseRepository(t, s)

	_, err := s.Load(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := database.Connect(ctx, url)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, database.EnsureSchema(ctx, pool))

	exerciseRepository(t, NewPostgresStore(pool))
}
