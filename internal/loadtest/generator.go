package loadtest

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// generateSubmissions builds n submissions with unique player names and
// times uniformly drawn from [min, max).
func generateSubmissions(n int, minTime, maxTime float64, seed int64) []Submission {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if maxTime <= minTime {
		maxTime = minTime + 1
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // load data, not security sensitive

	out := make([]Submission, n)
	for i := range out {
		out[i] = Submission{
			Name: "player-" + uuid.NewString()[:8],
			Time: minTime + rng.Float64()*(maxTime-minTime),
		}
	}
	return out
}
