package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/bolao-sca/internal/domain/championship"
	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	"github.com/riskibarqy/bolao-sca/internal/domain/participant"
	"github.com/riskibarqy/bolao-sca/internal/domain/pool"
	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
	"github.com/riskibarqy/bolao-sca/internal/domain/round"
)

type txKey struct{}

// Store holds every table of the in-memory backend. Repositories are thin views
// over one Store so that transactions and aggregate queries see the same data.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	seq map[string]int64

	pools         map[int64]pool.Pool
	championships map[int64]championship.Championship
	rounds        map[int64]round.Round
	matches       map[int64]match.Match
	participants  map[string]participant.Participant
	predictions   map[predictionKey]prediction.Prediction
}

type predictionKey struct {
	userID  string
	matchID int64
}

func NewStore() *Store {
	return &Store{
		seq:           make(map[string]int64),
		pools:         make(map[int64]pool.Pool),
		championships: make(map[int64]championship.Championship),
		rounds:        make(map[int64]round.Round),
		matches:       make(map[int64]match.Match),
		participants:  make(map[string]participant.Participant),
		predictions:   make(map[predictionKey]prediction.Prediction),
	}
}

// WithinTx serializes fn against every other transaction on the store. Nested
// calls reuse the outer transaction. There is no rollback, so callers must finish
// their checks before the first write.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

// nextID must be called with mu held for writing.
func (s *Store) nextID(table string, explicit int64) int64 {
	if explicit > 0 {
		if explicit > s.seq[table] {
			s.seq[table] = explicit
		}
		return explicit
	}
	s.seq[table]++
	return s.seq[table]
}
