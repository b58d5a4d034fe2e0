// Package repository persists leaderboard scores and serves ranked reads.
package repository

import (
	"context"

	"github.com/okian/tilescores/internal/domain/model"
)

// Store provides read/write access to the scores table.
type Store interface {
	// Record inserts one score stamped with the current time and returns it
	// with the store-assigned id.
	Record(ctx context.Context, name string, time float64) (model.Score, error)

	// TopScores returns up to limit scores ordered by time ascending.
	// A non-positive limit yields an empty slice.
	TopScores(ctx context.Context, limit int) ([]model.Score, error)

	// Count returns the number of stored scores.
	Count(ctx context.Context) (int, error)
}
