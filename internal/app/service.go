// Package service owns the score store and implements the operations the
// host shell invokes.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	repository "github.com/okian/tilescores/internal/adapters/repository"
	"github.com/okian/tilescores/internal/domain/model"
	"github.com/okian/tilescores/pkg/logger"
	"github.com/okian/tilescores/pkg/metrics"
)

// Service implements the API dependencies for the leaderboard.
type Service struct {
	mu sync.RWMutex

	store repository.Store

	// Configuration
	dbPath string
	clock  func() time.Time

	// State
	started bool
	closer  interface{ Close() error }

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDBPath sets the SQLite file the service opens on Start.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used to stamp new scores.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.clock = now
	}
}

// WithStore injects an already opened store. Start then skips opening a file.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath: "scores.db",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store and ensures its schema. A failure here is fatal to
// the process: there is no degraded mode without the store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		s.logger.Info(ctx, "opening score store", logger.String("path", s.dbPath))
		store, err := repository.Open(ctx, s.dbPath,
			repository.WithLogger(s.logger.Named("repository")),
			repository.WithClock(s.clock),
		)
		if err != nil {
			return fmt.Errorf("start service: %w", err)
		}
		s.store = store
		s.closer = store
	}

	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateTotalScores(n)
		s.logger.Info(ctx, "leaderboard service started", logger.Int("scores", n))
	} else {
		s.logger.Warn(ctx, "leaderboard service started without a row count", logger.Error(err))
	}

	s.started = true
	return nil
}

// Stop closes the store if the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping leaderboard service...")

	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			s.logger.Error(context.Background(), "close score store", logger.Error(err))
		}
		s.closer = nil
		s.store = nil
	}

	s.started = false
	s.logger.Info(context.Background(), "leaderboard service stopped")
}

func (s *Service) ready() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// AddScore records a completion time for a player.
func (s *Service) AddScore(ctx context.Context, name string, seconds float64) (model.Score, error) {
	store, err := s.ready()
	if err != nil {
		return model.Score{}, err
	}

	score, err := store.Record(ctx, name, seconds)
	if err != nil {
		return model.Score{}, err
	}

	metrics.RecordScoreRecorded(score.Time)
	s.logger.Debug(ctx, "score added",
		logger.Int64("id", *score.ID),
		logger.String("name", score.Name),
		logger.Float64("time", score.Time),
	)
	return score, nil
}

// TopScores returns up to limit scores, best time first.
func (s *Service) TopScores(ctx context.Context, limit int) ([]model.Score, error) {
	store, err := s.ready()
	if err != nil {
		return nil, err
	}

	scores, err := store.TopScores(ctx, limit)
	if err != nil {
		return nil, err
	}

	metrics.RecordTopScoresQuery()
	if len(scores) > 0 {
		metrics.UpdateBestTime(scores[0].Time)
	}
	return scores, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"dbPath":  s.dbPath,
	}

	if s.started && s.store != nil {
		n, err := s.store.Count(context.Background())
		if err != nil {
			stats["error"] = err.Error()
			return stats
		}
		stats["totalScores"] = n
		metrics.UpdateTotalScores(n)
	}

	return stats
}
