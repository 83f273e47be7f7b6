package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/bolao-sca/internal/domain/lock"
	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
	"github.com/riskibarqy/bolao-sca/internal/infrastructure/repository/memory"
	predictionmock "github.com/riskibarqy/bolao-sca/internal/mocks/domain/prediction"
	"github.com/riskibarqy/bolao-sca/internal/platform/clock"
	"github.com/riskibarqy/bolao-sca/internal/platform/logging"
)

func newMockedPredictionService(t *testing.T, repo prediction.Repository) (*PredictionService, *countingMetrics) {
	t.Helper()

	store := memory.NewStore()
	if err := store.Load(weekSeed(), prediction.DefaultRule(), wednesdayNoon); err != nil {
		t.Fatalf("load seed: %v", err)
	}
	metrics := &countingMetrics{counts: make(map[string]int)}
	svc := NewPredictionService(
		memory.NewParticipantRepository(store),
		memory.NewRoundRepository(store),
		memory.NewMatchRepository(store),
		repo,
		nil,
		lock.DefaultWindow(saoPaulo),
		prediction.DefaultRule(),
		clock.NewFixed(wednesdayNoon, saoPaulo),
		metrics,
		logging.NewNop(),
	)
	return svc, metrics
}

func TestPredictionService_Submit_UpsertFailure(t *testing.T) {
	repo := predictionmock.NewRepository(t)
	repo.On("Get", mock.Anything, "alice", int64(1)).
		Return(prediction.Prediction{}, false, nil).
		Once()
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(item prediction.Prediction) bool {
		return item.UserID == "alice" && item.MatchID == 1 && item.Outcome == match.OutcomeHomeWin
	})).
		Return(errors.New("connection reset")).
		Once()

	svc, metrics := newMockedPredictionService(t, repo)
	_, err := svc.Submit(t.Context(), SubmitPredictionInput{UserID: "alice", MatchID: 1, Outcome: "HOME_WIN"})
	if err == nil {
		t.Fatalf("expected storage error")
	}
	if errors.Is(err, ErrPredictionsClosed) || errors.Is(err, ErrInvalidInput) {
		t.Fatalf("storage failure must not look like a domain error: %v", err)
	}
	if got := metrics.count("submit:" + submitResultRejected); got != 1 {
		t.Fatalf("expected one rejected submission, got %d", got)
	}
}

func TestPredictionService_Submit_SameOutcomeSkipsWrite(t *testing.T) {
	repo := predictionmock.NewRepository(t)
	repo.On("Get", mock.Anything, "bob", int64(2)).
		Return(prediction.Prediction{UserID: "bob", MatchID: 2, Outcome: match.OutcomeDraw, SubmittedAt: wednesdayNoon}, true, nil).
		Once()

	svc, _ := newMockedPredictionService(t, repo)
	result, err := svc.Submit(t.Context(), SubmitPredictionInput{UserID: "bob", MatchID: 2, Outcome: "draw"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Changed {
		t.Fatalf("resubmitting the same outcome must not count as a change")
	}
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestPredictionService_Submit_ClosedNeverTouchesStorage(t *testing.T) {
	repo := predictionmock.NewRepository(t)

	svc, metrics := newMockedPredictionService(t, repo)
	svc.clock = clock.NewFixed(saturdayAfter, saoPaulo)

	_, err := svc.Submit(t.Context(), SubmitPredictionInput{UserID: "alice", MatchID: 3, Outcome: "AWAY_WIN"})
	var closed *PredictionsClosedError
	if !errors.As(err, &closed) || closed.State != lock.StateClosedBySchedule {
		t.Fatalf("expected closed by schedule, got %v", err)
	}
	if got := metrics.count("submit:" + submitResultClosed); got != 1 {
		t.Fatalf("expected one closed submission, got %d", got)
	}
}
