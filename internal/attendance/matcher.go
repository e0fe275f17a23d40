package attendance

import (
	"context"
	"fmt"

	"github.com/luckymoturi/AttendanceProject/internal/database"
)

// Matcher decides which enrolled identity a face embedding belongs to.
type Matcher struct {
	store     database.IdentityStore
	threshold float64
	limit     int
}

// NewMatcher creates a matcher over the identity store. threshold is the
// minimum cosine similarity for an accepted match; limit bounds the
// candidate set fetched from the store.
func NewMatcher(store database.IdentityStore, threshold float64, limit int) *Matcher {
	if threshold <= 0 {
		threshold = database.DefaultMatchThreshold
	}
	if limit <= 0 {
		limit = database.DefaultMatchLimit
	}
	return &Matcher{store: store, threshold: threshold, limit: limit}
}

// Match returns the closest enrolled identity above the threshold along
// with its similarity. An empty name means no identity cleared the
// threshold; that is a normal outcome, not an error. Ties are broken by
// highest similarity, then by store order.
func (m *Matcher) Match(ctx context.Context, embedding []float32) (string, float64, error) {
	neighbors, err := m.store.NearestNeighbors(ctx, embedding, m.threshold, m.limit)
	if err != nil {
		return "", 0, fmt.Errorf("nearest neighbor query: %w", err)
	}
	if len(neighbors) == 0 {
		return "", 0, nil
	}
	return neighbors[0].Name, neighbors[0].Similarity, nil
}
