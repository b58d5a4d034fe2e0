// Package model contains domain models passed between layers.
package model

// Score is a single leaderboard entry. Lower Time is better.
type Score struct {
	ID        *int64  `json:"id" db:"id"`               // nil until the store assigns it
	Name      string  `json:"name" db:"name"`           // player display name, not unique
	Time      float64 `json:"time" db:"time"`           // completion time in seconds
	Timestamp int64   `json:"timestamp" db:"timestamp"` // unix seconds, set at insert
}

// Persisted reports whether the store has assigned an identifier.
func (s Score) Persisted() bool {
	return s.ID != nil
}
