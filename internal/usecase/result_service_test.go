package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/bolao-sca/internal/domain/match"
)

func TestResultService_FinalizeMatch_ScoresPredictions(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	ctx := t.Context()

	for user, outcome := range map[string]string{"alice": "HOME_WIN", "bob": "DRAW", "carol": "AWAY_WIN"} {
		if _, err := env.predictions.Submit(ctx, SubmitPredictionInput{UserID: user, MatchID: 1, Outcome: outcome}); err != nil {
			t.Fatalf("submit %s: %v", user, err)
		}
	}

	result, err := env.results.FinalizeMatch(ctx, admin, FinalizeMatchInput{MatchID: 1, Outcome: "HOME_WIN", DisplayScore: " 3 x 0 "})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if result.Scored != 3 || result.Hits != 1 {
		t.Fatalf("unexpected finalize result: %+v", result)
	}
	if !result.Match.Finalized || result.Match.Result != match.OutcomeHomeWin || result.Match.DisplayScore != "3 x 0" {
		t.Fatalf("unexpected finalized match: %+v", result.Match)
	}

	board, err := env.rankings.RoundRanking(ctx, 1)
	if err != nil {
		t.Fatalf("round ranking: %v", err)
	}
	points := map[string]int{}
	for _, entry := range board.Entries {
		points[entry.UserID] = entry.Points
	}
	if points["alice"] != 1 || points["bob"] != 0 || points["carol"] != 0 {
		t.Fatalf("unexpected points: %v", points)
	}
	if board.Entries[0].UserID != "alice" {
		t.Fatalf("expected alice first, got %+v", board.Entries[0])
	}
}

func TestResultService_FinalizeMatch_OnlyOnce(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	ctx := t.Context()

	if _, err := env.results.FinalizeMatch(ctx, admin, FinalizeMatchInput{MatchID: 1, Outcome: "DRAW"}); err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	_, err := env.results.FinalizeMatch(ctx, admin, FinalizeMatchInput{MatchID: 1, Outcome: "HOME_WIN"})
	if !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("expected ErrAlreadyFinalized, got %v", err)
	}

	details, err := env.schedule.GetRound(ctx, 1)
	if err != nil {
		t.Fatalf("get round: %v", err)
	}
	if details.Matches[0].Match.Result != match.OutcomeDraw {
		t.Fatalf("result changed after second finalize: %+v", details.Matches[0].Match)
	}
}

func TestResultService_FinalizeMatch_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		input   FinalizeMatchInput
		wantErr error
	}{
		{name: "anonymous", actor: Actor{}, input: FinalizeMatchInput{MatchID: 1, Outcome: "DRAW"}, wantErr: ErrUnauthorized},
		{name: "not admin", actor: Actor{UserID: "alice"}, input: FinalizeMatchInput{MatchID: 1, Outcome: "DRAW"}, wantErr: ErrForbidden},
		{name: "bad outcome", actor: admin, input: FinalizeMatchInput{MatchID: 1, Outcome: "WIN"}, wantErr: match.ErrInvalidOutcome},
		{name: "unknown match", actor: admin, input: FinalizeMatchInput{MatchID: 404, Outcome: "DRAW"}, wantErr: ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, weekSeed())
			_, err := env.results.FinalizeMatch(t.Context(), tc.actor, tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestResultService_FinalizeRound(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	ctx := t.Context()

	got, err := env.results.FinalizeRound(ctx, admin, 1)
	if err != nil {
		t.Fatalf("finalize round: %v", err)
	}
	if !got.Finalized || got.FinalizedAt == nil {
		t.Fatalf("unexpected round: %+v", got)
	}

	if _, err := env.results.FinalizeRound(ctx, admin, 1); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("expected ErrAlreadyFinalized, got %v", err)
	}
	if _, err := env.results.FinalizeMatch(ctx, admin, FinalizeMatchInput{MatchID: 2, Outcome: "DRAW"}); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("expected match in closed round to be frozen, got %v", err)
	}
	if _, err := env.results.FinalizeRound(ctx, admin, 77); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if env.metrics.count("finalize:round") != 1 {
		t.Fatalf("unexpected finalize metric count: %+v", env.metrics.counts)
	}
}

func TestResultService_RescoreRound_IsIdempotent(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	ctx := t.Context()

	for _, input := range []SubmitPredictionInput{
		{UserID: "alice", MatchID: 1, Outcome: "HOME_WIN"},
		{UserID: "bob", MatchID: 1, Outcome: "HOME_WIN"},
		{UserID: "alice", MatchID: 2, Outcome: "DRAW"},
		{UserID: "carol", MatchID: 2, Outcome: "AWAY_WIN"},
	} {
		if _, err := env.predictions.Submit(ctx, input); err != nil {
			t.Fatalf("submit %+v: %v", input, err)
		}
	}
	for _, input := range []FinalizeMatchInput{{MatchID: 1, Outcome: "HOME_WIN"}, {MatchID: 2, Outcome: "DRAW"}} {
		if _, err := env.results.FinalizeMatch(ctx, admin, input); err != nil {
			t.Fatalf("finalize %+v: %v", input, err)
		}
	}

	before, err := env.rankings.RoundRanking(ctx, 1)
	if err != nil {
		t.Fatalf("ranking before rescore: %v", err)
	}

	for range 2 {
		summary, err := env.results.RescoreRound(ctx, admin, 1)
		if err != nil {
			t.Fatalf("rescore: %v", err)
		}
		if len(summary.Matches) != 2 || summary.Scored != 4 || summary.FailedCount != 0 {
			t.Fatalf("unexpected rescore summary: %+v", summary)
		}
	}

	after, err := env.rankings.RoundRanking(ctx, 1)
	if err != nil {
		t.Fatalf("ranking after rescore: %v", err)
	}
	if len(before.Entries) != len(after.Entries) {
		t.Fatalf("entry count changed: before=%d after=%d", len(before.Entries), len(after.Entries))
	}
	for i := range before.Entries {
		if before.Entries[i] != after.Entries[i] {
			t.Fatalf("entry %d changed: before=%+v after=%+v", i, before.Entries[i], after.Entries[i])
		}
	}
	if after.Entries[0].UserID != "alice" || after.Entries[0].Points != 2 {
		t.Fatalf("unexpected leader: %+v", after.Entries[0])
	}
}

func TestResultService_RescoreRound_NothingFinalized(t *testing.T) {
	env := newTestEnv(t, weekSeed())

	summary, err := env.results.RescoreRound(t.Context(), admin, 2)
	if err != nil {
		t.Fatalf("rescore: %v", err)
	}
	if len(summary.Matches) != 0 || summary.WorkerCount != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
