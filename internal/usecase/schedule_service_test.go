package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/bolao-sca/internal/domain/lock"
	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	"github.com/riskibarqy/bolao-sca/internal/domain/round"
	matchmock "github.com/riskibarqy/bolao-sca/internal/mocks/domain/match"
	roundmock "github.com/riskibarqy/bolao-sca/internal/mocks/domain/round"
	"github.com/riskibarqy/bolao-sca/internal/platform/clock"
)

func TestScheduleService_GetMatchLockState_Bounds(t *testing.T) {
	env := newTestEnv(t, weekSeed())

	status, err := env.schedule.GetMatchLockState(t.Context(), 1)
	if err != nil {
		t.Fatalf("lock state: %v", err)
	}

	wantClose := time.Date(2026, time.March, 7, 14, 0, 0, 0, saoPaulo)
	wantReopen := time.Date(2026, time.March, 9, 0, 0, 0, 0, saoPaulo)
	if !status.ClosesAt.Equal(wantClose) || !status.ReopensAt.Equal(wantReopen) {
		t.Fatalf("unexpected bounds: closes=%s reopens=%s", status.ClosesAt, status.ReopensAt)
	}
	if status.Reason != "" {
		t.Fatalf("open state must not carry a reason, got %q", status.Reason)
	}
}

func TestScheduleService_GetRoundLockState(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want lock.State
	}{
		{name: "midweek", now: wednesdayNoon, want: lock.StateOpen},
		{name: "weekend", now: saturdayAfter, want: lock.StateClosedBySchedule},
		{name: "tuesday with undated match", now: tuesdayMorning, want: lock.StateOpen},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, weekSeed())
			env.clock.Set(tc.now)

			status, err := env.schedule.GetRoundLockState(t.Context(), 1)
			if err != nil {
				t.Fatalf("round lock state: %v", err)
			}
			if status.State != tc.want {
				t.Fatalf("got %s want %s", status.State, tc.want)
			}
		})
	}
}

func TestScheduleService_GetRound_PendingFinalization(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	ctx := t.Context()

	if _, err := env.results.FinalizeMatch(ctx, admin, FinalizeMatchInput{MatchID: 1, Outcome: "DRAW"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	// Round 2 gets a single match that has kicked off by Tuesday.
	kickoff := mondayKickoff
	created, err := env.schedule.CreateMatch(ctx, admin, CreateMatchInput{RoundID: 2, HomeTeam: "A", AwayTeam: "B", KickoffAt: &kickoff})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	env.clock.Set(tuesdayMorning)

	details, err := env.schedule.GetRound(ctx, created.RoundID)
	if err != nil {
		t.Fatalf("get round: %v", err)
	}
	if details.Lock.State != lock.StateClosedPendingFinalization || details.Lock.Reason != lock.ReasonPendingFinalization {
		t.Fatalf("unexpected round lock: %+v", details.Lock)
	}
	if details.Matches[0].Lock != lock.StateClosedPendingFinalization {
		t.Fatalf("unexpected match lock: %+v", details.Matches[0])
	}
}

func TestScheduleService_DetectCurrentRound(t *testing.T) {
	env := newTestEnv(t, weekSeed())

	got, ok, err := env.schedule.DetectCurrentRound(t.Context(), 1)
	if err != nil {
		t.Fatalf("detect current: %v", err)
	}
	if !ok || got.ID != 1 {
		t.Fatalf("expected round 1, got ok=%v round=%+v", ok, got)
	}

	_, ok, err = env.schedule.DetectCurrentRound(t.Context(), 42)
	if err != nil {
		t.Fatalf("detect current on empty championship: %v", err)
	}
	if ok {
		t.Fatalf("expected no current round for an empty championship")
	}
}

func TestScheduleService_DetectCurrentRound_UsingMockery(t *testing.T) {
	t.Parallel()

	roundRepo := roundmock.NewRepository(t)
	matchRepo := matchmock.NewRepository(t)
	now := time.Date(2026, time.April, 15, 12, 0, 0, 0, saoPaulo)
	service := NewScheduleService(nil, nil, roundRepo, matchRepo, lock.DefaultWindow(saoPaulo), clock.NewFixed(now, saoPaulo))

	past := now.Add(-72 * time.Hour)
	soon := now.Add(48 * time.Hour)
	roundRepo.
		On("List", mock.Anything, round.Filter{ChampionshipID: 3}).
		Return([]round.Round{{ID: 10, ChampionshipID: 3}, {ID: 11, ChampionshipID: 3}}, nil).
		Once()
	matchRepo.
		On("ListByRounds", mock.Anything, []int64{10, 11}).
		Return([]match.Match{
			{ID: 1, RoundID: 10, KickoffAt: &past, Finalized: true, Result: match.OutcomeDraw},
			{ID: 2, RoundID: 11, KickoffAt: &soon},
		}, nil).
		Once()

	got, ok, err := service.DetectCurrentRound(context.Background(), 3)
	if err != nil {
		t.Fatalf("detect current: %v", err)
	}
	if !ok || got.ID != 11 {
		t.Fatalf("expected round 11, got ok=%v round=%+v", ok, got)
	}
}

func TestScheduleService_Create(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	ctx := t.Context()

	p, err := env.schedule.CreatePool(ctx, admin, CreatePoolInput{Name: "  Firma  "})
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	if p.Name != "Firma" || p.ID <= 1 {
		t.Fatalf("unexpected pool: %+v", p)
	}

	c, err := env.schedule.CreateChampionship(ctx, admin, CreateChampionshipInput{PoolID: p.ID, Name: "Copa", Year: 2026})
	if err != nil {
		t.Fatalf("create championship: %v", err)
	}
	r, err := env.schedule.CreateRound(ctx, admin, CreateRoundInput{ChampionshipID: c.ID, Name: "Final"})
	if err != nil {
		t.Fatalf("create round: %v", err)
	}
	m, err := env.schedule.CreateMatch(ctx, admin, CreateMatchInput{RoundID: r.ID, HomeTeam: "Santos", AwayTeam: "Ponte"})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	if m.KickoffAt != nil || m.Finalized {
		t.Fatalf("unexpected match: %+v", m)
	}

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{name: "pool not admin", run: func() error {
			_, err := env.schedule.CreatePool(ctx, Actor{UserID: "alice"}, CreatePoolInput{Name: "x"})
			return err
		}, wantErr: ErrForbidden},
		{name: "pool blank name", run: func() error {
			_, err := env.schedule.CreatePool(ctx, admin, CreatePoolInput{Name: " "})
			return err
		}, wantErr: ErrInvalidInput},
		{name: "championship unknown pool", run: func() error {
			_, err := env.schedule.CreateChampionship(ctx, admin, CreateChampionshipInput{PoolID: 999, Name: "x", Year: 2026})
			return err
		}, wantErr: ErrNotFound},
		{name: "round unknown championship", run: func() error {
			_, err := env.schedule.CreateRound(ctx, admin, CreateRoundInput{ChampionshipID: 999, Name: "x"})
			return err
		}, wantErr: ErrNotFound},
		{name: "match same teams", run: func() error {
			_, err := env.schedule.CreateMatch(ctx, admin, CreateMatchInput{RoundID: r.ID, HomeTeam: "Santos", AwayTeam: "santos"})
			return err
		}, wantErr: ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	if _, err := env.results.FinalizeRound(ctx, admin, r.ID); err != nil {
		t.Fatalf("finalize round: %v", err)
	}
	if _, err := env.schedule.CreateMatch(ctx, admin, CreateMatchInput{RoundID: r.ID, HomeTeam: "A", AwayTeam: "B"}); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("expected ErrAlreadyFinalized, got %v", err)
	}
}
