package usecase

import "context"

// TxManager runs fn inside one store transaction. Repositories called with the
// context handed to fn join that transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func txOrPassthrough(tx TxManager) TxManager {
	if tx == nil {
		return passthroughTx{}
	}
	return tx
}
