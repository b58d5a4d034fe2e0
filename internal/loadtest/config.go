// Package loadtest fires concurrent add_score calls at a running service and
// checks the ranked read that follows.
package loadtest

import (
	"time"

	"github.com/okian/tilescores/internal/domain/model"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumScores  int           // Number of scores to submit
	TopN       int           // Number of top entries to fetch afterwards
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	MinTime    float64       // Lower bound of generated completion times
	MaxTime    float64       // Upper bound of generated completion times
	Seed       int64         // Seed for time generation; 0 picks one from the clock
	OutputFile string        // Optional JSON file receiving submitted scores
}

// Submission is one generated score before it is sent.
type Submission struct {
	Name string  `json:"name"`
	Time float64 `json:"time"`
}

// Stats holds run statistics.
type Stats struct {
	Generated int
	Succeeded int
	Failed    int
	Returned  int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Result is what a run produced: the scores the service acknowledged and the
// ranked read taken after all submissions finished.
type Result struct {
	Stored []model.Score
	Top    []model.Score
	Stats  Stats
}
