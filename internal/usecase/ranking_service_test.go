package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/bolao-sca/internal/domain/participant"
	"github.com/riskibarqy/bolao-sca/internal/domain/ranking"
	"github.com/riskibarqy/bolao-sca/internal/domain/round"
	participantmock "github.com/riskibarqy/bolao-sca/internal/mocks/domain/participant"
	rankingmock "github.com/riskibarqy/bolao-sca/internal/mocks/domain/ranking"
	roundmock "github.com/riskibarqy/bolao-sca/internal/mocks/domain/round"
	"github.com/riskibarqy/bolao-sca/internal/platform/logging"
)

func TestRankingService_RoundRanking_TieBreakUsingMockery(t *testing.T) {
	t.Parallel()

	roundRepo := roundmock.NewRepository(t)
	rankingRepo := rankingmock.NewRepository(t)
	participantRepo := participantmock.NewRepository(t)
	metrics := &countingMetrics{counts: make(map[string]int)}

	service := NewRankingService(roundRepo, rankingRepo, participantRepo, nil, metrics, logging.NewNop())

	roundRepo.
		On("GetByID", mock.Anything, int64(5)).
		Return(round.Round{ID: 5}, true, nil).
		Once()
	rankingRepo.
		On("Totals", mock.Anything, ranking.Scope{RoundID: 5}).
		Return([]ranking.Total{
			{UserID: "u-zeca", Points: 3, Hits: 3, Scored: 4},
			{UserID: "u-alvaro", Points: 3, Hits: 3, Scored: 4},
			{UserID: "u-erico", Points: 1, Hits: 1, Scored: 4},
			{UserID: "u-lurker", Points: 0, Hits: 0, Scored: 0},
			{UserID: "u-banned", Points: 1, Hits: 1, Scored: 2},
		}, nil).
		Once()
	participantRepo.
		On("List", mock.Anything).
		Return([]participant.Participant{
			{ID: "u-zeca", Name: "zeca"},
			{ID: "u-alvaro", Name: "Álvaro"},
			{ID: "u-erico", Name: "Érico", Withdrawn: true},
			{ID: "u-banned", Name: "Beto", Banned: true},
		}, nil).
		Once()

	board, err := service.RoundRanking(context.Background(), 5)
	if err != nil {
		t.Fatalf("round ranking: %v", err)
	}

	want := []struct {
		userID   string
		position int
		status   string
	}{
		{"u-alvaro", 1, "active"},
		{"u-zeca", 1, "active"},
		{"u-banned", 2, "banned"},
		{"u-erico", 2, "withdrawn"},
	}
	if len(board.Entries) != len(want) {
		t.Fatalf("unexpected entry count: %+v", board.Entries)
	}
	for i, w := range want {
		got := board.Entries[i]
		if got.UserID != w.userID || got.Position != w.position || got.Status() != w.status {
			t.Fatalf("entry %d: got=%+v want=%+v", i, got, w)
		}
	}
	if metrics.count("ranking:round") != 1 {
		t.Fatalf("expected ranking build to be recorded")
	}
}

func TestRankingService_RoundRanking_RoundNotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	roundRepo := roundmock.NewRepository(t)
	service := NewRankingService(roundRepo, rankingmock.NewRepository(t), participantmock.NewRepository(t), nil, nil, logging.NewNop())

	roundRepo.
		On("GetByID", mock.Anything, int64(9)).
		Return(round.Round{}, false, nil).
		Once()

	if _, err := service.RoundRanking(context.Background(), 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRankingService_RoundRanking_PropagatesLoadErrorUsingMockery(t *testing.T) {
	t.Parallel()

	roundRepo := roundmock.NewRepository(t)
	rankingRepo := rankingmock.NewRepository(t)
	participantRepo := participantmock.NewRepository(t)
	service := NewRankingService(roundRepo, rankingRepo, participantRepo, nil, nil, logging.NewNop())

	boom := errors.New("db down")
	roundRepo.On("GetByID", mock.Anything, int64(1)).Return(round.Round{ID: 1}, true, nil).Once()
	rankingRepo.On("Totals", mock.Anything, ranking.Scope{RoundID: 1}).Return(nil, boom).Once()
	participantRepo.On("List", mock.Anything).Return([]participant.Participant{}, nil).Maybe()

	if _, err := service.RoundRanking(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
}

func TestRankingService_GlobalRanking_ValidatesScope(t *testing.T) {
	env := newTestEnv(t, weekSeed())

	if _, err := env.rankings.GlobalRanking(t.Context(), ranking.Scope{RoundID: 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for round scope, got %v", err)
	}
	if _, err := env.rankings.GlobalRanking(t.Context(), ranking.Scope{Year: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative year, got %v", err)
	}
}

func TestRankingService_GlobalRanking_InvalidatedOnFinalize(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	ctx := t.Context()
	scope := ranking.Scope{PoolID: 1, Year: 2026}

	if _, err := env.predictions.Submit(ctx, SubmitPredictionInput{UserID: "alice", MatchID: 1, Outcome: "DRAW"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	empty, err := env.rankings.GlobalRanking(ctx, scope)
	if err != nil {
		t.Fatalf("global ranking: %v", err)
	}
	if len(empty.Entries) != 0 {
		t.Fatalf("expected no entries before finalization, got %+v", empty.Entries)
	}

	if _, err := env.results.FinalizeMatch(ctx, admin, FinalizeMatchInput{MatchID: 1, Outcome: "DRAW"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	board, err := env.rankings.GlobalRanking(ctx, scope)
	if err != nil {
		t.Fatalf("global ranking after finalize: %v", err)
	}
	if len(board.Entries) != 1 || board.Entries[0].Points != 1 {
		t.Fatalf("expected cached board to be invalidated, got %+v", board.Entries)
	}
	if env.metrics.count("ranking:global") != 2 {
		t.Fatalf("expected two global builds, got %d", env.metrics.count("ranking:global"))
	}
}

func TestRankingService_DisplayNameChangeInvalidates(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	ctx := t.Context()

	if _, err := env.predictions.Submit(ctx, SubmitPredictionInput{UserID: "bob", MatchID: 1, Outcome: "DRAW"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.results.FinalizeMatch(ctx, admin, FinalizeMatchInput{MatchID: 1, Outcome: "AWAY_WIN"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if _, err := env.rankings.RoundRanking(ctx, 1); err != nil {
		t.Fatalf("warm ranking: %v", err)
	}

	if _, err := env.participants.Upsert(ctx, admin, UpsertParticipantInput{UserID: "bob", Name: "Roberto", Nickname: "Bobão", Authorized: true}); err != nil {
		t.Fatalf("upsert participant: %v", err)
	}

	board, err := env.rankings.RoundRanking(ctx, 1)
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if board.Entries[0].DisplayName != "Bobão" || board.Entries[0].Points != 0 {
		t.Fatalf("unexpected entry after rename: %+v", board.Entries[0])
	}
}
