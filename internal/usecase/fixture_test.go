package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/bolao-sca/internal/domain/lock"
	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
	"github.com/riskibarqy/bolao-sca/internal/domain/ranking"
	"github.com/riskibarqy/bolao-sca/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/bolao-sca/internal/platform/clock"
	"github.com/riskibarqy/bolao-sca/internal/platform/logging"
)

var (
	saoPaulo = clock.MustSaoPaulo()
	admin    = Actor{UserID: "admin-1", Admin: true}

	// 2026-03-04 is a Wednesday.
	wednesdayNoon  = time.Date(2026, time.March, 4, 12, 0, 0, 0, saoPaulo)
	fridayKickoff  = time.Date(2026, time.March, 6, 20, 0, 0, 0, saoPaulo)
	saturdayAfter  = time.Date(2026, time.March, 7, 15, 0, 0, 0, saoPaulo)
	mondayKickoff  = time.Date(2026, time.March, 9, 20, 0, 0, 0, saoPaulo)
	tuesdayMorning = time.Date(2026, time.March, 10, 10, 0, 0, 0, saoPaulo)
)

type testEnv struct {
	store        *memory.Store
	clock        *clock.Fixed
	metrics      *countingMetrics
	predictions  *PredictionService
	results      *ResultService
	rankings     *RankingService
	schedule     *ScheduleService
	participants *ParticipantService
}

func newTestEnv(t *testing.T, seed memory.SeedData) *testEnv {
	t.Helper()

	store := memory.NewStore()
	if err := store.Load(seed, prediction.DefaultRule(), wednesdayNoon); err != nil {
		t.Fatalf("load seed: %v", err)
	}

	clk := clock.NewFixed(wednesdayNoon, saoPaulo)
	window := lock.DefaultWindow(saoPaulo)
	rule := prediction.DefaultRule()
	metrics := &countingMetrics{counts: make(map[string]int)}
	logger := logging.NewNop()

	poolRepo := memory.NewPoolRepository(store)
	championshipRepo := memory.NewChampionshipRepository(store)
	roundRepo := memory.NewRoundRepository(store)
	matchRepo := memory.NewMatchRepository(store)
	predictionRepo := memory.NewPredictionRepository(store)
	participantRepo := memory.NewParticipantRepository(store)
	rankingRepo := memory.NewRankingRepository(store)

	rankings := NewRankingService(roundRepo, rankingRepo, participantRepo, newMapBoardCache(), metrics, logger)
	return &testEnv{
		store:        store,
		clock:        clk,
		metrics:      metrics,
		predictions:  NewPredictionService(participantRepo, roundRepo, matchRepo, predictionRepo, store, window, rule, clk, metrics, logger),
		results:      NewResultService(roundRepo, matchRepo, predictionRepo, store, rule, rankings, clk, metrics, logger, 2),
		rankings:     rankings,
		schedule:     NewScheduleService(poolRepo, championshipRepo, roundRepo, matchRepo, window, clk),
		participants: NewParticipantService(participantRepo, rankings, clk),
	}
}

// weekSeed is one pool with round 1 holding a Friday match, a Monday match and an
// undated match, plus a second empty round.
func weekSeed() memory.SeedData {
	friday := fridayKickoff
	monday := mondayKickoff
	return memory.SeedData{
		Pools:         []memory.SeedPool{{ID: 1, Name: "Bolão"}},
		Championships: []memory.SeedChampionship{{ID: 1, PoolID: 1, Name: "Série A", Year: 2026}},
		Rounds: []memory.SeedRound{
			{ID: 1, ChampionshipID: 1, Name: "Rodada 1"},
			{ID: 2, ChampionshipID: 1, Name: "Rodada 2"},
		},
		Matches: []memory.SeedMatch{
			{ID: 1, RoundID: 1, HomeTeam: "Time X", AwayTeam: "Time Y", KickoffAt: &friday},
			{ID: 2, RoundID: 1, HomeTeam: "Time Z", AwayTeam: "Time W", KickoffAt: &monday},
			{ID: 3, RoundID: 1, HomeTeam: "Time K", AwayTeam: "Time L"},
		},
		Participants: []memory.SeedParticipant{
			{ID: "alice", Name: "Alice", Authorized: true},
			{ID: "bob", Name: "Bob", Authorized: true},
			{ID: "carol", Name: "Carol", Nickname: "Carolzinha", Authorized: true},
			{ID: "dave", Name: "Dave", Authorized: false},
			{ID: "eve", Name: "Eve", Authorized: true, Banned: true},
		},
	}
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *countingMetrics) PredictionSubmitted(result string) { m.inc("submit:" + result) }
func (m *countingMetrics) Finalized(kind string)             { m.inc("finalize:" + kind) }
func (m *countingMetrics) RankingComputed(scope string, _ time.Duration) {
	m.inc("ranking:" + scope)
}

func (m *countingMetrics) inc(key string) {
	m.mu.Lock()
	m.counts[key]++
	m.mu.Unlock()
}

func (m *countingMetrics) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

type mapBoardCache struct {
	mu     sync.Mutex
	boards map[string]ranking.Board
}

func newMapBoardCache() *mapBoardCache {
	return &mapBoardCache{boards: make(map[string]ranking.Board)}
}

func (c *mapBoardCache) GetOrLoad(ctx context.Context, key string, load func(context.Context) (ranking.Board, error)) (ranking.Board, error) {
	c.mu.Lock()
	board, ok := c.boards[key]
	c.mu.Unlock()
	if ok {
		return board, nil
	}

	board, err := load(ctx)
	if err != nil {
		return ranking.Board{}, err
	}
	c.mu.Lock()
	c.boards[key] = board
	c.mu.Unlock()
	return board, nil
}

func (c *mapBoardCache) Invalidate(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.boards {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.boards, key)
		}
	}
	return nil
}

func memorySeedParticipant(i int) memory.SeedParticipant {
	id := "racer-" + string(rune('a'+i))
	return memory.SeedParticipant{ID: id, Name: id, Authorized: true}
}
