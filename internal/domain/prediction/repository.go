package prediction

import (
	"context"
	"time"
)

// Repository persists predictions and the points the scoring rule assigns to them.
type Repository interface {
	Get(ctx context.Context, userID string, matchID int64) (Prediction, bool, error)
	Upsert(ctx context.Context, item Prediction) error
	ListByMatch(ctx context.Context, matchID int64) ([]Prediction, error)
	ListByUserAndMatches(ctx context.Context, userID string, matchIDs []int64) ([]Prediction, error)
	ApplyScores(ctx context.Context, matchID int64, scores []Score, scoredAt time.Time) error
}
