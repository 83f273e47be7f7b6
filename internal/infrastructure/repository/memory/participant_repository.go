package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/bolao-sca/internal/domain/participant"
)

type ParticipantRepository struct {
	store *Store
}

func NewParticipantRepository(store *Store) *ParticipantRepository {
	return &ParticipantRepository{store: store}
}

func (r *ParticipantRepository) GetByID(_ context.Context, id string) (participant.Participant, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.participants[id]
	return item, ok, nil
}

func (r *ParticipantRepository) List(_ context.Context) ([]participant.Participant, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]participant.Participant, 0, len(r.store.participants))
	for _, item := range r.store.participants {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Upsert keeps the original CreatedAt of an existing participant.
func (r *ParticipantRepository) Upsert(_ context.Context, item participant.Participant) (participant.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if current, ok := r.store.participants[item.ID]; ok && !current.CreatedAt.IsZero() {
		item.CreatedAt = current.CreatedAt
	}
	r.store.participants[item.ID] = item
	return item, nil
}
