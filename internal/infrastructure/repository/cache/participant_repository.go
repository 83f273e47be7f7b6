package cache

import (
	"context"

	"github.com/riskibarqy/bolao-sca/internal/domain/participant"
	basecache "github.com/riskibarqy/bolao-sca/internal/platform/cache"
)

const participantListKey = "participant:list"

// ParticipantRepository caches the directory listing used by every ranking build.
// Single-row reads gate betting and always go to the backing store.
type ParticipantRepository struct {
	next  participant.Repository
	cache *basecache.Store
}

func NewParticipantRepository(next participant.Repository, cache *basecache.Store) *ParticipantRepository {
	return &ParticipantRepository{next: next, cache: cache}
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (participant.Participant, bool, error) {
	return r.next.GetByID(ctx, id)
}

func (r *ParticipantRepository) List(ctx context.Context) ([]participant.Participant, error) {
	v, err := r.cache.GetOrLoad(ctx, participantListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]participant.Participant(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]participant.Participant)
	return append([]participant.Participant(nil), items...), nil
}

func (r *ParticipantRepository) Upsert(ctx context.Context, item participant.Participant) (participant.Participant, error) {
	saved, err := r.next.Upsert(ctx, item)
	if err != nil {
		return participant.Participant{}, err
	}
	r.cache.Delete(ctx, participantListKey)
	return saved, nil
}
