package participant

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Participant, bool, error)
	List(ctx context.Context) ([]Participant, error)
	Upsert(ctx context.Context, item Participant) (Participant, error)
}
