package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const createScoresTable = `CREATE TABLE IF NOT EXISTS scores (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	time REAL NOT NULL,
	timestamp INTEGER NOT NULL
)`

// EnsureSchema creates the scores table when it does not exist yet.
// It is safe to call on every start.
func EnsureSchema(ctx context.Context, db sqlx.ExecerContext) error {
	if _, err := db.ExecContext(ctx, createScoresTable); err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	return nil
}
