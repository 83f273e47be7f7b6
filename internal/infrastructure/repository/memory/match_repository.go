package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/bolao-sca/internal/domain/match"
)

type MatchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.matches[id]
	return cloneMatch(item), ok, nil
}

func (r *MatchRepository) GetForUpdate(ctx context.Context, id int64) (match.Match, bool, error) {
	return r.GetByID(ctx, id)
}

func (r *MatchRepository) ListByRound(ctx context.Context, roundID int64) ([]match.Match, error) {
	return r.ListByRounds(ctx, []int64{roundID})
}

func (r *MatchRepository) ListByRounds(_ context.Context, roundIDs []int64) ([]match.Match, error) {
	wanted := make(map[int64]struct{}, len(roundIDs))
	for _, id := range roundIDs {
		wanted[id] = struct{}{}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.store.matches {
		if _, ok := wanted[item.RoundID]; !ok {
			continue
		}
		out = append(out, cloneMatch(item))
	}
	sortMatches(out)
	return out, nil
}

func (r *MatchRepository) Create(_ context.Context, item match.Match) (match.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.rounds[item.RoundID]; !ok {
		return match.Match{}, fmt.Errorf("round %d not found", item.RoundID)
	}
	item.ID = r.store.nextID("matches", item.ID)
	r.store.matches[item.ID] = cloneMatch(item)
	return cloneMatch(item), nil
}

// SaveResult only moves a match from unset to set.
func (r *MatchRepository) SaveResult(_ context.Context, item match.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.matches[item.ID]
	if !ok {
		return fmt.Errorf("match %d not found", item.ID)
	}
	if current.Finalized {
		return fmt.Errorf("match %d already has a result", item.ID)
	}

	current.Result = item.Result
	current.DisplayScore = item.DisplayScore
	current.Finalized = item.Finalized
	current.FinalizedAt = item.FinalizedAt
	r.store.matches[item.ID] = cloneMatch(current)
	return nil
}

// sortMatches orders by kickoff with undated matches last, then by ID.
func sortMatches(items []match.Match) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].KickoffAt, items[j].KickoffAt
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return items[i].ID < items[j].ID
	})
}

func cloneMatch(item match.Match) match.Match {
	copied := item
	if item.KickoffAt != nil {
		at := *item.KickoffAt
		copied.KickoffAt = &at
	}
	if item.FinalizedAt != nil {
		at := *item.FinalizedAt
		copied.FinalizedAt = &at
	}
	return copied
}
