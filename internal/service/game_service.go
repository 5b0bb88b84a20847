// Package service runs engine transitions against a store, one game at a time.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/cache"
	"github.com/jason-s-yu/hanamikoji/internal/game"
	"github.com/jason-s-yu/hanamikoji/internal/models"
	"github.com/jason-s-yu/hanamikoji/internal/store"
	"github.com/sirupsen/logrus"
)

// Publisher receives new log entries for the historian.
type Publisher interface {
	Publish(ctx context.Context, records ...cache.GameActionRecord) error
}

// Notifier is told about every saved change to a game.
type Notifier interface {
	GameUpdated(g *models.Game)
}

// GameService loads a game, applies one engine transition, saves the result and fans
// it out. Calls for the same game are serialized.
type GameService struct {
	engine    *game.Engine
	repo      store.Repository
	locks     *KeyedMutex
	publisher Publisher
	notifier  Notifier
	logger    *logrus.Logger
}

// Option configures a GameService.
type Option func(*GameService)

func WithPublisher(p Publisher) Option {
	return func(s *GameService) { s.publisher = p }
}

func WithNotifier(n Notifier) Option {
	return func(s *GameService) { s.notifier = n }
}

func WithLogger(l *logrus.Logger) Option {
	return func(s *GameService) { s.logger = l }
}

func NewGameService(engine *game.Engine, repo store.Repository, opts ...Option) *GameService {
	s := &GameService{
		engine: engine,
		repo:   repo,
		locks:  NewKeyedMutex(),
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetNotifier replaces the notifier after construction, used when the notifier itself
// depends on the service.
func (s *GameService) SetNotifier(n Notifier) {
	s.notifier = n
}

// CreateGame starts a new game and stores it.
func (s *GameService) CreateGame(ctx context.Context, player1, player2 string) (*models.Game, error) {
	g, err := s.engine.CreateGame(player1, player2)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, g); err != nil {
		return nil, err
	}
	s.publish(ctx, g, 0)
	s.logger.WithField("game_id", g.ID).Info("game stored")
	return g, nil
}

// ApplyAction runs a player's action against the stored game.
func (s *GameService) ApplyAction(ctx context.Context, gameID uuid.UUID, a models.Action) (*models.Game, error) {
	return s.mutate(ctx, gameID, a.PlayerID, func(g *models.Game) (*models.Game, error) {
		return s.engine.ApplyAction(g, a)
	})
}

// ChooseGroup resolves a pending offer.
func (s *GameService) ChooseGroup(ctx context.Context, gameID uuid.UUID, c models.Choice) (*models.Game, error) {
	return s.mutate(ctx, gameID, c.PlayerID, func(g *models.Game) (*models.Game, error) {
		return s.engine.ChooseGroup(g, c)
	})
}

// Resign ends the game for playerID.
func (s *GameService) Resign(ctx context.Context, gameID, playerID uuid.UUID) (*models.Game, error) {
	return s.mutate(ctx, gameID, playerID, func(g *models.Game) (*models.Game, error) {
		return s.engine.Resign(g, playerID)
	})
}

// Load returns the stored game.
func (s *GameService) Load(ctx context.Context, gameID uuid.UUID) (*models.Game, error) {
	return s.repo.Load(ctx, gameID)
}

// View returns the game as seen by viewerID.
func (s *GameService) View(ctx context.Context, gameID, viewerID uuid.UUID) (*game.PublicView, error) {
	g, err := s.repo.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return game.SnapshotFor(g, viewerID)
}

func (s *GameService) mutate(ctx context.Context, gameID, playerID uuid.UUID, transition func(*models.Game) (*models.Game, error)) (*models.Game, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	log := s.logger.WithFields(logrus.Fields{"game_id": gameID, "player_id": playerID})

	g, err := s.repo.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	next, err := transition(g)
	switch {
	case errors.Is(err, game.ErrInvariantViolation):
		log.WithError(err).Error("engine produced an inconsistent game; state not saved")
		return nil, err
	case errors.Is(err, game.ErrRejected):
		log.WithField("reason", game.ReasonOf(err)).Info("action rejected")
		return nil, err
	case err != nil:
		return nil, err
	}

	if err := s.repo.Save(ctx, next); err != nil {
		log.WithError(err).Error("failed to save game")
		return nil, err
	}
	s.publish(ctx, next, len(g.Log))
	if s.notifier != nil {
		s.notifier.GameUpdated(next)
	}
	if next.Status == models.GameFinished && g.Status != models.GameFinished {
		log.WithFields(logrus.Fields{
			"winner":    next.WinnerID,
			"condition": next.WinCondition,
		}).Info("game over")
	}
	return next, nil
}

// publish sends log entries from index from onward. Failures are logged only; the
// game state is already saved.
func (s *GameService) publish(ctx context.Context, g *models.Game, from int) {
	if s.publisher == nil || from >= len(g.Log) {
		return
	}
	records := make([]cache.GameActionRecord, 0, len(g.Log)-from)
	for _, rec := range g.Log[from:] {
		records = append(records, cache.NewGameActionRecord(g.ID, rec))
	}
	if err := s.publisher.Publish(ctx, records...); err != nil {
		s.logger.WithError(err).WithField("game_id", g.ID).Warn("failed to publish game actions")
	}
}
