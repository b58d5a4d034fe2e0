package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/tilescores/internal/domain/model"
	"github.com/okian/tilescores/pkg/logger"
	"github.com/okian/tilescores/pkg/metrics"
)

const driverName = "sqlite"

const (
	insertScore    = `INSERT INTO scores (name, time, timestamp) VALUES (?, ?, ?)`
	selectTopScore = `SELECT id, name, time, timestamp FROM scores ORDER BY time ASC, id ASC LIMIT ?`
	countScores    = `SELECT COUNT(*) FROM scores`
)

// SQLiteStore keeps scores in a single SQLite file.
//
// All access goes through one pinned connection guarded by mu, so reads
// always observe fully committed writes and writes never interleave. A panic
// inside the critical section poisons the store; every later call fails with
// ErrLockPoisoned.
type SQLiteStore struct {
	mu       sync.Mutex
	db       *sqlx.DB
	conn     *sqlx.Conn
	poisoned bool

	path   string
	now    func() time.Time
	logger logger.Logger
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the SQLite file at path, pins a single
// connection and ensures the scores table exists.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: storage path is required", ErrSchema)
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create data dir: %w", ErrSchema, err)
		}
	}

	s := &SQLiteStore{
		path:   cleanPath,
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sqlx.Open(driverName, cleanPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db: %w", ErrSchema, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping sqlite db: %w", ErrSchema, err)
	}
	conn, err := db.Connx(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: acquire connection: %w", ErrSchema, err)
	}
	if err := EnsureSchema(ctx, conn); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}

	s.db = db
	s.conn = conn

	s.logger.Info(ctx, "score store opened", logger.String("path", cleanPath))
	return s, nil
}

// Path returns the cleaned database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the connection and the underlying pool.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	connErr := s.conn.Close()
	dbErr := s.db.Close()
	s.conn = nil
	s.db = nil
	if connErr != nil {
		return connErr
	}
	return dbErr
}

// withConn runs fn while holding the guard. The context handed to fn is
// detached from cancellation: once an operation owns the connection it runs
// to completion or failure.
func (s *SQLiteStore) withConn(ctx context.Context, op string, fn func(context.Context, *sqlx.Conn) error) (err error) {
	waitStart := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.RecordRepositoryLockWait(sinceMs(waitStart))

	if s.poisoned {
		return fmt.Errorf("%w: %s", ErrLockPoisoned, op)
	}
	if s.conn == nil {
		return fmt.Errorf("%w: %s", ErrClosed, op)
	}

	defer func() {
		if r := recover(); r != nil {
			s.poisoned = true
			s.logger.Error(ctx, "panic while holding store guard",
				logger.String("op", op),
				logger.Any("panic", r),
			)
			err = fmt.Errorf("%w: %s panicked: %v", ErrLockPoisoned, op, r)
		}
	}()

	return fn(context.WithoutCancel(ctx), s.conn)
}

// Record inserts one score stamped with the current wall-clock second.
// Name and time are stored as given.
func (s *SQLiteStore) Record(ctx context.Context, name string, t float64) (model.Score, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(sinceMs(start))
	}()

	var score model.Score
	err := s.withConn(ctx, "record", func(ctx context.Context, conn *sqlx.Conn) error {
		now := s.now()
		if now.Unix() < 0 {
			return fmt.Errorf("%w: wall clock %s is before the unix epoch", ErrClock, now.UTC().Format(time.RFC3339))
		}
		timestamp := now.Unix()

		res, err := conn.ExecContext(ctx, insertScore, name, t, timestamp)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("%w: last insert id: %w", ErrWrite, err)
		}

		score = model.Score{ID: &id, Name: name, Time: t, Timestamp: timestamp}
		return nil
	})
	if err != nil {
		metrics.RecordErrorByComponent("repository", kindLabel(err))
		s.logger.Error(ctx, "record score failed", logger.String("name", name), logger.Error(err))
		return model.Score{}, err
	}

	s.logger.Debug(ctx, "score recorded",
		logger.Int64("id", *score.ID),
		logger.String("name", score.Name),
		logger.Float64("time", score.Time),
	)
	return score, nil
}

// TopScores returns up to limit scores, best (lowest) time first. Equal times
// keep insertion order.
func (s *SQLiteStore) TopScores(ctx context.Context, limit int) ([]model.Score, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(sinceMs(start))
	}()

	scores := []model.Score{}
	err := s.withConn(ctx, "top_scores", func(ctx context.Context, conn *sqlx.Conn) error {
		if limit <= 0 {
			return nil
		}

		rows, err := conn.QueryxContext(ctx, selectTopScore, limit)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRead, err)
		}
		defer rows.Close()

		for rows.Next() {
			var sc model.Score
			if err := rows.StructScan(&sc); err != nil {
				return fmt.Errorf("%w: %w", ErrDecode, err)
			}
			scores = append(scores, sc)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrRead, err)
		}
		return nil
	})
	if err != nil {
		metrics.RecordErrorByComponent("repository", kindLabel(err))
		s.logger.Error(ctx, "top scores failed", logger.Int("limit", limit), logger.Error(err))
		return nil, err
	}
	return scores, nil
}

// Count returns the number of stored scores.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.withConn(ctx, "count", func(ctx context.Context, conn *sqlx.Conn) error {
		if err := conn.GetContext(ctx, &n, countScores); err != nil {
			return fmt.Errorf("%w: %w", ErrRead, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
