package championship

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (Championship, bool, error)
	ListByPool(ctx context.Context, poolID int64) ([]Championship, error)
	Create(ctx context.Context, item Championship) (Championship, error)
}
