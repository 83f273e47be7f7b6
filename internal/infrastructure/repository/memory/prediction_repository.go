package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
)

type PredictionRepository struct {
	store *Store
}

func NewPredictionRepository(store *Store) *PredictionRepository {
	return &PredictionRepository{store: store}
}

func (r *PredictionRepository) Get(_ context.Context, userID string, matchID int64) (prediction.Prediction, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.predictions[predictionKey{userID: userID, matchID: matchID}]
	return clonePrediction(item), ok, nil
}

// Upsert replaces the stored guess and clears any points computed for the old one.
func (r *PredictionRepository) Upsert(_ context.Context, item prediction.Prediction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item.Points = nil
	item.ScoredAt = nil
	r.store.predictions[predictionKey{userID: item.UserID, matchID: item.MatchID}] = item
	return nil
}

func (r *PredictionRepository) ListByMatch(_ context.Context, matchID int64) ([]prediction.Prediction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for key, item := range r.store.predictions {
		if key.matchID == matchID {
			out = append(out, clonePrediction(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *PredictionRepository) ListByUserAndMatches(_ context.Context, userID string, matchIDs []int64) ([]prediction.Prediction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]prediction.Prediction, 0, len(matchIDs))
	for _, matchID := range matchIDs {
		if item, ok := r.store.predictions[predictionKey{userID: userID, matchID: matchID}]; ok {
			out = append(out, clonePrediction(item))
		}
	}
	return out, nil
}

// ApplyScores overwrites points, so applying the same scores twice is a no-op.
func (r *PredictionRepository) ApplyScores(_ context.Context, matchID int64, scores []prediction.Score, scoredAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, score := range scores {
		key := predictionKey{userID: score.UserID, matchID: matchID}
		item, ok := r.store.predictions[key]
		if !ok {
			continue
		}
		points := score.Points
		at := scoredAt
		item.Points = &points
		item.ScoredAt = &at
		r.store.predictions[key] = item
	}
	return nil
}

func clonePrediction(item prediction.Prediction) prediction.Prediction {
	copied := item
	if item.Points != nil {
		points := *item.Points
		copied.Points = &points
	}
	if item.ScoredAt != nil {
		at := *item.ScoredAt
		copied.ScoredAt = &at
	}
	return copied
}
