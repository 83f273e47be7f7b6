package ranking

import "context"

// Repository aggregates scored predictions. Only predictions with points count.
type Repository interface {
	Totals(ctx context.Context, scope Scope) ([]Total, error)
}
