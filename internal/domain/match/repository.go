package match

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (Match, bool, error)
	// GetForUpdate locks the match row for the rest of the surrounding transaction.
	GetForUpdate(ctx context.Context, id int64) (Match, bool, error)
	ListByRound(ctx context.Context, roundID int64) ([]Match, error)
	ListByRounds(ctx context.Context, roundIDs []int64) ([]Match, error)
	Create(ctx context.Context, item Match) (Match, error)
	SaveResult(ctx context.Context, item Match) error
}
