package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
	"github.com/riskibarqy/bolao-sca/internal/domain/ranking"
	"github.com/riskibarqy/bolao-sca/internal/domain/round"
)

var seedNow = time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)

func TestStore_WithinTx_NestedCallsReuseOuterTransaction(t *testing.T) {
	store := NewStore()

	calls := 0
	err := store.WithinTx(t.Context(), func(ctx context.Context) error {
		return store.WithinTx(ctx, func(context.Context) error {
			calls++
			return nil
		})
	})
	if err != nil {
		t.Fatalf("nested tx: %v", err)
	}
	if calls != 1 {
		t.Fatalf("unexpected call count: %d", calls)
	}
}

func TestStore_WithinTx_Serializes(t *testing.T) {
	store := NewStore()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		overlap bool
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.WithinTx(context.Background(), func(context.Context) error {
				mu.Lock()
				active++
				if active > 1 {
					overlap = true
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if overlap {
		t.Fatalf("transactions overlapped")
	}
}

func TestPredictionRepository_UpsertClearsPoints(t *testing.T) {
	store := NewStore()
	if err := store.Load(rankingFixture(), prediction.DefaultRule(), seedNow); err != nil {
		t.Fatalf("load seed: %v", err)
	}
	repo := NewPredictionRepository(store)

	before, ok, err := repo.Get(t.Context(), "ana", 1)
	if err != nil || !ok {
		t.Fatalf("get prediction: ok=%v err=%v", ok, err)
	}
	if !before.Scored() {
		t.Fatalf("expected seeded prediction to be scored")
	}

	if err := repo.Upsert(t.Context(), prediction.Prediction{UserID: "ana", MatchID: 1, Outcome: match.OutcomeDraw, SubmittedAt: seedNow}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	after, _, _ := repo.Get(t.Context(), "ana", 1)
	if after.Scored() || after.ScoredAt != nil {
		t.Fatalf("expected points to be cleared, got %+v", after)
	}
}

func TestPredictionRepository_ApplyScoresIsIdempotent(t *testing.T) {
	store := NewStore()
	if err := store.Load(rankingFixture(), prediction.DefaultRule(), seedNow); err != nil {
		t.Fatalf("load seed: %v", err)
	}
	repo := NewPredictionRepository(store)
	totals := NewRankingRepository(store)

	scores := []prediction.Score{{UserID: "ana", Points: 1}, {UserID: "bia", Points: 0}}
	for range 2 {
		if err := repo.ApplyScores(t.Context(), 1, scores, seedNow); err != nil {
			t.Fatalf("apply scores: %v", err)
		}
	}

	got, err := totals.Totals(t.Context(), ranking.Scope{RoundID: 1})
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	for _, total := range got {
		if total.UserID == "ana" && total.Points != 1 {
			t.Fatalf("unexpected ana points after double apply: %d", total.Points)
		}
	}
}

func TestRankingRepository_Totals_FiltersByScope(t *testing.T) {
	store := NewStore()
	if err := store.Load(rankingFixture(), prediction.DefaultRule(), seedNow); err != nil {
		t.Fatalf("load seed: %v", err)
	}
	repo := NewRankingRepository(store)

	tests := []struct {
		name  string
		scope ranking.Scope
		want  map[string]int
	}{
		{name: "round one", scope: ranking.Scope{RoundID: 1}, want: map[string]int{"ana": 1, "bia": 0}},
		{name: "round two", scope: ranking.Scope{RoundID: 2}, want: map[string]int{"ana": 1}},
		{name: "whole pool", scope: ranking.Scope{PoolID: 1}, want: map[string]int{"ana": 2, "bia": 0}},
		{name: "year filter", scope: ranking.Scope{Year: 2025}, want: map[string]int{"ana": 1}},
		{name: "other pool", scope: ranking.Scope{PoolID: 99}, want: map[string]int{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.Totals(t.Context(), tc.scope)
			if err != nil {
				t.Fatalf("totals: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("unexpected total count: got=%+v want=%v", got, tc.want)
			}
			for _, total := range got {
				if want, ok := tc.want[total.UserID]; !ok || want != total.Points {
					t.Fatalf("unexpected total for %s: got=%d want=%d", total.UserID, total.Points, want)
				}
			}
		})
	}
}

func TestRankingRepository_Totals_IgnoresPendingPredictions(t *testing.T) {
	store := NewStore()
	if err := store.Load(rankingFixture(), prediction.DefaultRule(), seedNow); err != nil {
		t.Fatalf("load seed: %v", err)
	}

	got, err := NewRankingRepository(store).Totals(t.Context(), ranking.Scope{RoundID: 3})
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no totals for an unscored round, got %+v", got)
	}
}

func TestMatchRepository_ListByRound_UndatedLast(t *testing.T) {
	store := NewStore()
	if err := store.Load(DemoSeed(seedNow, time.UTC), prediction.DefaultRule(), seedNow); err != nil {
		t.Fatalf("load demo seed: %v", err)
	}

	items, err := NewMatchRepository(store).ListByRound(t.Context(), 1)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("unexpected match count: %d", len(items))
	}
	if items[len(items)-1].KickoffAt != nil {
		t.Fatalf("expected undated match last, got %+v", items[len(items)-1])
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := `
pools:
  - id: 7
    name: Escritório
championships:
  - id: 3
    pool_id: 7
    name: Copa do Brasil
    year: 2026
rounds:
  - id: 11
    championship_id: 3
    name: Oitavas
matches:
  - id: 21
    round_id: 11
    home_team: Bahia
    away_team: Vitória
    kickoff_at: 2026-05-09T19:00:00-03:00
participants:
  - id: u-1
    name: Fulano
    authorized: true
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	data, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("load seed file: %v", err)
	}
	store := NewStore()
	if err := store.Load(data, prediction.DefaultRule(), seedNow); err != nil {
		t.Fatalf("apply seed: %v", err)
	}

	m, ok, _ := NewMatchRepository(store).GetByID(t.Context(), 21)
	if !ok || m.KickoffAt == nil || m.RoundID != 11 {
		t.Fatalf("unexpected seeded match: ok=%v match=%+v", ok, m)
	}

	created, err := NewRoundRepository(store).Create(t.Context(), roundFor(3))
	if err != nil {
		t.Fatalf("create round: %v", err)
	}
	if created.ID != 12 {
		t.Fatalf("expected sequence to continue after seeded ids, got %d", created.ID)
	}
}

func rankingFixture() SeedData {
	return SeedData{
		Pools: []SeedPool{{ID: 1, Name: "Pool"}},
		Championships: []SeedChampionship{
			{ID: 1, PoolID: 1, Name: "Série A", Year: 2026},
			{ID: 2, PoolID: 1, Name: "Série A", Year: 2025},
		},
		Rounds: []SeedRound{
			{ID: 1, ChampionshipID: 1, Name: "R1"},
			{ID: 2, ChampionshipID: 2, Name: "R2"},
			{ID: 3, ChampionshipID: 1, Name: "R3"},
		},
		Matches: []SeedMatch{
			{ID: 1, RoundID: 1, HomeTeam: "A", AwayTeam: "B", Result: "HOME_WIN"},
			{ID: 2, RoundID: 2, HomeTeam: "C", AwayTeam: "D", Result: "DRAW"},
			{ID: 3, RoundID: 3, HomeTeam: "E", AwayTeam: "F"},
		},
		Participants: []SeedParticipant{
			{ID: "ana", Name: "Ana", Authorized: true},
			{ID: "bia", Name: "Bia", Authorized: true},
		},
		Predictions: []SeedPrediction{
			{UserID: "ana", MatchID: 1, Outcome: "HOME_WIN"},
			{UserID: "bia", MatchID: 1, Outcome: "AWAY_WIN"},
			{UserID: "ana", MatchID: 2, Outcome: "DRAW"},
			{UserID: "bia", MatchID: 3, Outcome: "DRAW"},
		},
	}
}

func roundFor(championshipID int64) round.Round {
	return round.Round{ChampionshipID: championshipID, Name: "Quartas", CreatedAt: seedNow}
}
