package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/bolao-sca/internal/domain/round"
)

type RoundRepository struct {
	store *Store
}

func NewRoundRepository(store *Store) *RoundRepository {
	return &RoundRepository{store: store}
}

func (r *RoundRepository) GetByID(_ context.Context, id int64) (round.Round, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.rounds[id]
	return cloneRound(item), ok, nil
}

// GetForShare and GetForUpdate rely on Store.WithinTx for isolation.
func (r *RoundRepository) GetForShare(ctx context.Context, id int64) (round.Round, bool, error) {
	return r.GetByID(ctx, id)
}

func (r *RoundRepository) GetForUpdate(ctx context.Context, id int64) (round.Round, bool, error) {
	return r.GetByID(ctx, id)
}

func (r *RoundRepository) List(_ context.Context, filter round.Filter) ([]round.Round, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]round.Round, 0, len(r.store.rounds))
	for _, item := range r.store.rounds {
		if filter.ChampionshipID > 0 && item.ChampionshipID != filter.ChampionshipID {
			continue
		}
		out = append(out, cloneRound(item))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *RoundRepository) Create(_ context.Context, item round.Round) (round.Round, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item.ID = r.store.nextID("rounds", item.ID)
	r.store.rounds[item.ID] = cloneRound(item)
	return item, nil
}

func (r *RoundRepository) MarkFinalized(_ context.Context, id int64, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.rounds[id]
	if !ok {
		return fmt.Errorf("round %d not found", id)
	}
	if item.Finalized {
		return nil
	}
	item.Finalized = true
	item.FinalizedAt = &at
	r.store.rounds[id] = item
	return nil
}

func cloneRound(item round.Round) round.Round {
	copied := item
	if item.FinalizedAt != nil {
		at := *item.FinalizedAt
		copied.FinalizedAt = &at
	}
	return copied
}
