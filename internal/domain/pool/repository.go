package pool

import "context"

// Repository persists pools.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Pool, bool, error)
	Create(ctx context.Context, item Pool) (Pool, error)
}
