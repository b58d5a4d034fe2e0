package loadtest

import (
	"fmt"
	"math"

	"github.com/okian/tilescores/internal/domain/model"
)

// Verify checks a ranked read taken after every score in stored was
// acknowledged. The store may already hold rows from earlier runs, so the
// first place only has to be at least as good as the best submitted time.
func Verify(stored, top []model.Score, topN int) error {
	seen := make(map[int64]struct{}, len(stored))
	best := math.Inf(1)
	for _, s := range stored {
		if s.ID == nil {
			return fmt.Errorf("%w: score for %q has no id", ErrVerification, s.Name)
		}
		if _, dup := seen[*s.ID]; dup {
			return fmt.Errorf("%w: id %d returned twice", ErrVerification, *s.ID)
		}
		seen[*s.ID] = struct{}{}
		if s.Time < best {
			best = s.Time
		}
	}

	if want := min(topN, len(stored)); len(top) < want {
		return fmt.Errorf("%w: expected at least %d ranked scores, got %d", ErrVerification, want, len(top))
	}
	if len(top) > topN {
		return fmt.Errorf("%w: limit %d exceeded with %d scores", ErrVerification, topN, len(top))
	}

	for i := 1; i < len(top); i++ {
		if top[i].Time < top[i-1].Time {
			return fmt.Errorf("%w: rank %d (%.3f) is better than rank %d (%.3f)",
				ErrVerification, i+1, top[i].Time, i, top[i-1].Time)
		}
	}

	if len(stored) > 0 && len(top) > 0 && top[0].Time > best {
		return fmt.Errorf("%w: best submitted time %.3f missing from first place (%.3f)",
			ErrVerification, best, top[0].Time)
	}
	return nil
}
