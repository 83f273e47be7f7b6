package memory

import (
	"context"

	"github.com/riskibarqy/bolao-sca/internal/domain/ranking"
)

type RankingRepository struct {
	store *Store
}

func NewRankingRepository(store *Store) *RankingRepository {
	return &RankingRepository{store: store}
}

func (r *RankingRepository) Totals(_ context.Context, scope ranking.Scope) ([]ranking.Total, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byUser := make(map[string]*ranking.Total)
	order := make([]string, 0)
	for key, item := range r.store.predictions {
		if item.Points == nil || !r.inScope(key.matchID, scope) {
			continue
		}
		total, ok := byUser[key.userID]
		if !ok {
			total = &ranking.Total{UserID: key.userID}
			byUser[key.userID] = total
			order = append(order, key.userID)
		}
		total.Points += *item.Points
		total.Scored++
		if *item.Points > 0 {
			total.Hits++
		}
	}

	out := make([]ranking.Total, 0, len(order))
	for _, userID := range order {
		out = append(out, *byUser[userID])
	}
	return out, nil
}

// inScope must be called with mu held.
func (r *RankingRepository) inScope(matchID int64, scope ranking.Scope) bool {
	m, ok := r.store.matches[matchID]
	if !ok || !m.Finalized {
		return false
	}
	if scope.RoundID > 0 && m.RoundID != scope.RoundID {
		return false
	}

	rd, ok := r.store.rounds[m.RoundID]
	if !ok {
		return false
	}
	if scope.ChampionshipID > 0 && rd.ChampionshipID != scope.ChampionshipID {
		return false
	}
	if scope.PoolID == 0 && scope.Year == 0 {
		return true
	}

	c, ok := r.store.championships[rd.ChampionshipID]
	if !ok {
		return false
	}
	if scope.PoolID > 0 && c.PoolID != scope.PoolID {
		return false
	}
	return scope.Year == 0 || c.Year == scope.Year
}
