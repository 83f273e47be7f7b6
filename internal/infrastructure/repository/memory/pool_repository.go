package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/bolao-sca/internal/domain/championship"
	"github.com/riskibarqy/bolao-sca/internal/domain/pool"
)

type PoolRepository struct {
	store *Store
}

func NewPoolRepository(store *Store) *PoolRepository {
	return &PoolRepository{store: store}
}

func (r *PoolRepository) GetByID(_ context.Context, id int64) (pool.Pool, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.pools[id]
	return item, ok, nil
}

func (r *PoolRepository) Create(_ context.Context, item pool.Pool) (pool.Pool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item.ID = r.store.nextID("pools", item.ID)
	r.store.pools[item.ID] = item
	return item, nil
}

type ChampionshipRepository struct {
	store *Store
}

func NewChampionshipRepository(store *Store) *ChampionshipRepository {
	return &ChampionshipRepository{store: store}
}

func (r *ChampionshipRepository) GetByID(_ context.Context, id int64) (championship.Championship, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.championships[id]
	return item, ok, nil
}

func (r *ChampionshipRepository) ListByPool(_ context.Context, poolID int64) ([]championship.Championship, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]championship.Championship, 0)
	for _, item := range r.store.championships {
		if poolID > 0 && item.PoolID != poolID {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ChampionshipRepository) Create(_ context.Context, item championship.Championship) (championship.Championship, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item.ID = r.store.nextID("championships", item.ID)
	r.store.championships[item.ID] = item
	return item, nil
}
