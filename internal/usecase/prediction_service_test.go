package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/riskibarqy/bolao-sca/internal/domain/lock"
	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
)

func TestPredictionService_WeeklyScenario(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	ctx := t.Context()

	status, err := env.schedule.GetMatchLockState(ctx, 1)
	if err != nil {
		t.Fatalf("lock state: %v", err)
	}
	if status.State != lock.StateOpen {
		t.Fatalf("expected open on wednesday, got %s", status.State)
	}

	if _, err := env.predictions.Submit(ctx, SubmitPredictionInput{UserID: "alice", MatchID: 1, Outcome: "HOME_WIN"}); err != nil {
		t.Fatalf("submit on wednesday: %v", err)
	}

	env.clock.Set(saturdayAfter)
	_, err = env.predictions.Submit(ctx, SubmitPredictionInput{UserID: "alice", MatchID: 1, Outcome: "DRAW"})
	var closed *PredictionsClosedError
	if !errors.As(err, &closed) {
		t.Fatalf("expected PredictionsClosedError, got %v", err)
	}
	if closed.Reason() != lock.ReasonBySchedule {
		t.Fatalf("unexpected close reason: %s", closed.Reason())
	}
	if !errors.Is(err, ErrPredictionsClosed) {
		t.Fatalf("expected error to wrap ErrPredictionsClosed")
	}

	if _, err := env.results.FinalizeMatch(ctx, admin, FinalizeMatchInput{MatchID: 1, Outcome: "HOME_WIN", DisplayScore: "2 x 1"}); err != nil {
		t.Fatalf("finalize match: %v", err)
	}

	board, err := env.rankings.RoundRanking(ctx, 1)
	if err != nil {
		t.Fatalf("round ranking: %v", err)
	}
	if len(board.Entries) != 1 {
		t.Fatalf("unexpected entry count: %+v", board.Entries)
	}
	if got := board.Entries[0]; got.UserID != "alice" || got.Points != prediction.DefaultPointsPerHit || got.Position != 1 {
		t.Fatalf("unexpected ranking entry: %+v", got)
	}
}

func TestPredictionService_Submit_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		input   SubmitPredictionInput
		wantErr error
	}{
		{name: "missing identity", input: SubmitPredictionInput{MatchID: 1, Outcome: "DRAW"}, wantErr: ErrUnauthorized},
		{name: "unknown participant", input: SubmitPredictionInput{UserID: "ghost", MatchID: 1, Outcome: "DRAW"}, wantErr: ErrNotFound},
		{name: "not authorized", input: SubmitPredictionInput{UserID: "dave", MatchID: 1, Outcome: "DRAW"}, wantErr: ErrForbidden},
		{name: "banned", input: SubmitPredictionInput{UserID: "eve", MatchID: 1, Outcome: "DRAW"}, wantErr: ErrUnauthorized},
		{name: "unknown match", input: SubmitPredictionInput{UserID: "alice", MatchID: 99, Outcome: "DRAW"}, wantErr: ErrNotFound},
		{name: "invalid match id", input: SubmitPredictionInput{UserID: "alice", MatchID: 0, Outcome: "DRAW"}, wantErr: ErrInvalidInput},
		{name: "invalid outcome", input: SubmitPredictionInput{UserID: "alice", MatchID: 1, Outcome: "2x1"}, wantErr: match.ErrInvalidOutcome},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, weekSeed())
			_, err := env.predictions.Submit(t.Context(), tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestPredictionService_Submit_LockCheckedBeforeOutcome(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	env.clock.Set(saturdayAfter)

	_, err := env.predictions.Submit(t.Context(), SubmitPredictionInput{UserID: "alice", MatchID: 3, Outcome: "not-an-outcome"})
	if !errors.Is(err, ErrPredictionsClosed) {
		t.Fatalf("expected predictions closed, got %v", err)
	}
	if env.metrics.count("submit:closed") != 1 {
		t.Fatalf("expected closed submission to be counted")
	}
}

func TestPredictionService_Submit_PendingFinalizationAfterKickoff(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	env.clock.Set(tuesdayMorning)

	_, err := env.predictions.Submit(t.Context(), SubmitPredictionInput{UserID: "alice", MatchID: 2, Outcome: "DRAW"})
	var closed *PredictionsClosedError
	if !errors.As(err, &closed) {
		t.Fatalf("expected PredictionsClosedError, got %v", err)
	}
	if closed.Reason() != lock.ReasonPendingFinalization {
		t.Fatalf("unexpected close reason: %s", closed.Reason())
	}

	// The undated match is only gated by the weekly window.
	if _, err := env.predictions.Submit(t.Context(), SubmitPredictionInput{UserID: "alice", MatchID: 3, Outcome: "DRAW"}); err != nil {
		t.Fatalf("submit undated match: %v", err)
	}
}

func TestPredictionService_Submit_OverwritesAndResetsPoints(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	ctx := t.Context()

	first, err := env.predictions.Submit(ctx, SubmitPredictionInput{UserID: "bob", MatchID: 1, Outcome: "home_win"})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if !first.Changed || first.Prediction.Outcome != match.OutcomeHomeWin {
		t.Fatalf("unexpected first result: %+v", first)
	}

	again, err := env.predictions.Submit(ctx, SubmitPredictionInput{UserID: "bob", MatchID: 1, Outcome: " HOME_WIN "})
	if err != nil {
		t.Fatalf("repeat submit: %v", err)
	}
	if again.Changed {
		t.Fatalf("expected identical submit to be a no-op")
	}

	changed, err := env.predictions.Submit(ctx, SubmitPredictionInput{UserID: "bob", MatchID: 1, Outcome: "AWAY_WIN"})
	if err != nil {
		t.Fatalf("changed submit: %v", err)
	}
	if !changed.Changed || changed.Prediction.Points != nil {
		t.Fatalf("unexpected changed result: %+v", changed)
	}
	if env.metrics.count("submit:accepted") != 2 || env.metrics.count("submit:unchanged") != 1 {
		t.Fatalf("unexpected metrics: %+v", env.metrics.counts)
	}
}

func TestPredictionService_Submit_ClosedAfterFinalize(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	ctx := t.Context()

	if _, err := env.results.FinalizeMatch(ctx, admin, FinalizeMatchInput{MatchID: 1, Outcome: "DRAW"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	_, err := env.predictions.Submit(ctx, SubmitPredictionInput{UserID: "alice", MatchID: 1, Outcome: "DRAW"})
	var closed *PredictionsClosedError
	if !errors.As(err, &closed) || closed.State != lock.StateClosedBySchedule {
		t.Fatalf("expected closed by schedule, got %v", err)
	}

	if _, err := env.results.FinalizeRound(ctx, admin, 1); err != nil {
		t.Fatalf("finalize round: %v", err)
	}
	_, err = env.predictions.Submit(ctx, SubmitPredictionInput{UserID: "alice", MatchID: 3, Outcome: "DRAW"})
	if !errors.Is(err, ErrPredictionsClosed) {
		t.Fatalf("expected round finalization to freeze match 3, got %v", err)
	}
}

func TestPredictionService_ListUserRound_Statuses(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	ctx := t.Context()

	for _, input := range []SubmitPredictionInput{
		{UserID: "carol", MatchID: 1, Outcome: "AWAY_WIN"},
		{UserID: "carol", MatchID: 2, Outcome: "DRAW"},
	} {
		if _, err := env.predictions.Submit(ctx, input); err != nil {
			t.Fatalf("submit %+v: %v", input, err)
		}
	}

	items, err := env.predictions.ListUserRound(ctx, "carol", 1)
	if err != nil {
		t.Fatalf("list user round: %v", err)
	}
	want := map[int64]prediction.Status{1: prediction.StatusPending, 2: prediction.StatusPending, 3: prediction.StatusOpen}
	for _, item := range items {
		if item.Status != want[item.Match.ID] {
			t.Fatalf("match %d: got status %s want %s", item.Match.ID, item.Status, want[item.Match.ID])
		}
	}

	if _, err := env.results.FinalizeMatch(ctx, admin, FinalizeMatchInput{MatchID: 1, Outcome: "AWAY_WIN"}); err != nil {
		t.Fatalf("finalize match 1: %v", err)
	}
	if _, err := env.results.FinalizeMatch(ctx, admin, FinalizeMatchInput{MatchID: 2, Outcome: "HOME_WIN"}); err != nil {
		t.Fatalf("finalize match 2: %v", err)
	}
	env.clock.Set(saturdayAfter)

	items, err = env.predictions.ListUserRound(ctx, "carol", 1)
	if err != nil {
		t.Fatalf("list user round after finalize: %v", err)
	}
	want = map[int64]prediction.Status{1: prediction.StatusHit, 2: prediction.StatusMiss, 3: prediction.StatusClosed}
	for _, item := range items {
		if item.Status != want[item.Match.ID] {
			t.Fatalf("match %d: got status %s want %s", item.Match.ID, item.Status, want[item.Match.ID])
		}
	}

	others, err := env.predictions.ListUserRound(ctx, "bob", 1)
	if err != nil {
		t.Fatalf("list bob round: %v", err)
	}
	if others[0].Status != prediction.StatusMissed {
		t.Fatalf("expected bob to have missed match 1, got %s", others[0].Status)
	}
}

// Submissions racing a finalization either land before it and get scored, or
// are rejected. None may be left unscored on a finalized match.
func TestPredictionService_Submit_RacesFinalize(t *testing.T) {
	seed := weekSeed()
	for i := range 20 {
		seed.Participants = append(seed.Participants, memorySeedParticipant(i))
	}
	env := newTestEnv(t, seed)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = env.predictions.Submit(ctx, SubmitPredictionInput{UserID: seed.Participants[len(seed.Participants)-20+i].ID, MatchID: 1, Outcome: "HOME_WIN"})
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := env.results.FinalizeMatch(ctx, admin, FinalizeMatchInput{MatchID: 1, Outcome: "HOME_WIN"}); err != nil {
			t.Errorf("finalize: %v", err)
		}
	}()
	wg.Wait()

	board, err := env.rankings.RoundRanking(ctx, 1)
	if err != nil {
		t.Fatalf("round ranking: %v", err)
	}
	items, err := env.results.predictionRepo.ListByMatch(ctx, 1)
	if err != nil {
		t.Fatalf("list predictions: %v", err)
	}
	for _, item := range items {
		if !item.Scored() {
			t.Fatalf("prediction of %s was written after finalization", item.UserID)
		}
	}
	if len(board.Entries) != len(items) {
		t.Fatalf("ranking has %d entries for %d predictions", len(board.Entries), len(items))
	}
}
