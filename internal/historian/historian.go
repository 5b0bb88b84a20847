// Package historian drains game log records from the Redis queue into Postgres in
// batches.
package historian

import (
	"context"
	"errors"
	"time"

	"github.com/jason-s-yu/hanamikoji/internal/cache"
	"github.com/sirupsen/logrus"
)

// Source yields queued records. Pop returns (nil, nil) when nothing arrived within
// timeout.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*cache.GameActionRecord, error)
}

// Sink persists a batch of records atomically.
type Sink interface {
	Write(ctx context.Context, records []cache.GameActionRecord) error
}

// Service accumulates records from a Source and flushes them to a Sink when the batch
// is full or the flush interval elapses.
type Service struct {
	source        Source
	sink          Sink
	batchSize     int
	flushInterval time.Duration
	logger        *logrus.Logger

	batch []cache.GameActionRecord
}

func NewService(source Source, sink Sink, batchSize int, flushInterval time.Duration, logger *logrus.Logger) *Service {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Service{
		source:        source,
		sink:          sink,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        logger,
		batch:         make([]cache.GameActionRecord, 0, batchSize),
	}
}

// Run pops records until ctx is cancelled, then flushes what is left and returns.
// The batch is owned by this goroutine.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	s.logger.Info("historian started")
	for {
		select {
		case <-ctx.Done():
			// ctx is gone; give the final write its own deadline.
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			s.flush(flushCtx)
			cancel()
			s.logger.Info("historian stopped")
			return nil

		case <-ticker.C:
			s.flush(ctx)

		default:
			rec, err := s.source.Pop(ctx, s.flushInterval)
			if err != nil {
				if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
					s.logger.WithError(err).Error("failed to pop action record")
				}
				continue
			}
			if rec == nil {
				continue
			}
			s.batch = append(s.batch, *rec)
			if len(s.batch) >= s.batchSize {
				s.flush(ctx)
			}
		}
	}
}

// flush writes the pending batch. On failure the batch is kept and retried on the next
// flush; the sink skips rows it already stored.
func (s *Service) flush(ctx context.Context) {
	if len(s.batch) == 0 {
		return
	}
	if err := s.sink.Write(ctx, s.batch); err != nil {
		s.logger.WithError(err).WithField("pending", len(s.batch)).Error("failed to flush action batch")
		return
	}
	s.logger.WithField("count", len(s.batch)).Debug("flushed actions")
	s.batch = make([]cache.GameActionRecord, 0, s.batchSize)
}
