package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/models"
)

// MemoryStore keeps games in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*models.Game
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[uuid.UUID]*models.Game),
	}
}

func (s *MemoryStore) Load(_ context.Context, id uuid.UUID) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, exists := s.games[id]
	if !exists {
		return nil, ErrNotFound
	}
	return g.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g.Clone()
	return nil
}

func (s *MemoryStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

// Len returns the number of stored games.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}
