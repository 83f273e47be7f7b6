package round

import (
	"context"
	"time"
)

// Repository persists rounds. The ForShare and ForUpdate variants take row locks
// when called inside a transaction.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Round, bool, error)
	GetForShare(ctx context.Context, id int64) (Round, bool, error)
	GetForUpdate(ctx context.Context, id int64) (Round, bool, error)
	List(ctx context.Context, filter Filter) ([]Round, error)
	Create(ctx context.Context, item Round) (Round, error)
	MarkFinalized(ctx context.Context, id int64, at time.Time) error
}
