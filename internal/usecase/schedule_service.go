package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/bolao-sca/internal/domain/championship"
	"github.com/riskibarqy/bolao-sca/internal/domain/lock"
	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	"github.com/riskibarqy/bolao-sca/internal/domain/pool"
	"github.com/riskibarqy/bolao-sca/internal/domain/round"
	"github.com/riskibarqy/bolao-sca/internal/platform/clock"
)

// ScheduleService owns pools, championships, rounds and matches, and answers
// lock-state and current-round questions about them.
type ScheduleService struct {
	poolRepo         pool.Repository
	championshipRepo championship.Repository
	roundRepo        round.Repository
	matchRepo        match.Repository
	window           lock.Window
	clock            clock.Clock
}

type LockStatus struct {
	State       lock.State
	Reason      lock.Reason
	ClosesAt    time.Time
	ReopensAt   time.Time
	EvaluatedAt time.Time
}

type MatchWithLock struct {
	Match match.Match
	Lock  lock.State
}

type RoundDetails struct {
	Round   round.Round
	Lock    LockStatus
	Matches []MatchWithLock
}

type CreatePoolInput struct {
	Name string
}

type CreateChampionshipInput struct {
	PoolID int64
	Name   string
	Year   int
}

type CreateRoundInput struct {
	ChampionshipID int64
	Name           string
}

type CreateMatchInput struct {
	RoundID   int64
	HomeTeam  string
	AwayTeam  string
	KickoffAt *time.Time
}

func NewScheduleService(
	poolRepo pool.Repository,
	championshipRepo championship.Repository,
	roundRepo round.Repository,
	matchRepo match.Repository,
	window lock.Window,
	clk clock.Clock,
) *ScheduleService {
	return &ScheduleService{
		poolRepo:         poolRepo,
		championshipRepo: championshipRepo,
		roundRepo:        roundRepo,
		matchRepo:        matchRepo,
		window:           window,
		clock:            clk,
	}
}

func (s *ScheduleService) GetMatchLockState(ctx context.Context, matchID int64) (LockStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GetMatchLockState", attrMatchID.Int64(matchID))
	defer span.End()

	m, r, err := loadMatchAndRound(ctx, s.matchRepo, s.roundRepo, matchID, false)
	if err != nil {
		return LockStatus{}, err
	}

	now := s.clock.Now()
	return s.status(now, s.window.Evaluate(now, lockTarget(r, m))), nil
}

func (s *ScheduleService) GetRoundLockState(ctx context.Context, roundID int64) (LockStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GetRoundLockState", attrRoundID.Int64(roundID))
	defer span.End()

	details, err := s.GetRound(ctx, roundID)
	if err != nil {
		return LockStatus{}, err
	}
	return details.Lock, nil
}

func (s *ScheduleService) GetRound(ctx context.Context, roundID int64) (RoundDetails, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GetRound", attrRoundID.Int64(roundID))
	defer span.End()

	if roundID <= 0 {
		return RoundDetails{}, fmt.Errorf("%w: round id must be positive", ErrInvalidInput)
	}

	r, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return RoundDetails{}, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return RoundDetails{}, fmt.Errorf("%w: round=%d", ErrNotFound, roundID)
	}

	matches, err := s.matchRepo.ListByRound(ctx, roundID)
	if err != nil {
		return RoundDetails{}, fmt.Errorf("list matches by round: %w", err)
	}

	now := s.clock.Now()
	targets := make([]lock.Target, 0, len(matches))
	items := make([]MatchWithLock, 0, len(matches))
	for _, m := range matches {
		target := lockTarget(r, m)
		targets = append(targets, target)
		items = append(items, MatchWithLock{Match: m, Lock: s.window.Evaluate(now, target)})
	}

	return RoundDetails{
		Round:   r,
		Lock:    s.status(now, s.window.EvaluateRound(now, r.Finalized, targets)),
		Matches: items,
	}, nil
}

func (s *ScheduleService) ListRounds(ctx context.Context, championshipID int64) ([]round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.ListRounds")
	defer span.End()

	if championshipID < 0 {
		return nil, fmt.Errorf("%w: championship id must not be negative", ErrInvalidInput)
	}

	rounds, err := s.roundRepo.List(ctx, round.Filter{ChampionshipID: championshipID})
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	return rounds, nil
}

// DetectCurrentRound returns false when there are no rounds to choose from.
func (s *ScheduleService) DetectCurrentRound(ctx context.Context, championshipID int64) (round.Round, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.DetectCurrentRound")
	defer span.End()

	rounds, err := s.ListRounds(ctx, championshipID)
	if err != nil {
		return round.Round{}, false, err
	}
	if len(rounds) == 0 {
		return round.Round{}, false, nil
	}

	ids := make([]int64, 0, len(rounds))
	for _, r := range rounds {
		ids = append(ids, r.ID)
	}
	matches, err := s.matchRepo.ListByRounds(ctx, ids)
	if err != nil {
		return round.Round{}, false, fmt.Errorf("list matches for current round detection: %w", err)
	}

	fixturesByRound := make(map[int64][]round.Fixture, len(rounds))
	for _, m := range matches {
		fixturesByRound[m.RoundID] = append(fixturesByRound[m.RoundID], round.Fixture{
			KickoffAt: m.KickoffAt,
			Finalized: m.Finalized,
		})
	}

	candidates := make([]round.Candidate, 0, len(rounds))
	byID := make(map[int64]round.Round, len(rounds))
	for _, r := range rounds {
		byID[r.ID] = r
		candidates = append(candidates, round.Candidate{
			ID:        r.ID,
			Finalized: r.Finalized,
			Matches:   fixturesByRound[r.ID],
		})
	}

	id, ok := round.DetectCurrent(s.clock.Now(), s.clock.Location(), candidates)
	if !ok {
		return round.Round{}, false, nil
	}
	return byID[id], true, nil
}

func (s *ScheduleService) CreatePool(ctx context.Context, actor Actor, input CreatePoolInput) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.CreatePool")
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return pool.Pool{}, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return pool.Pool{}, fmt.Errorf("%w: pool name is required", ErrInvalidInput)
	}

	created, err := s.poolRepo.Create(ctx, pool.Pool{Name: name, CreatedAt: s.clock.Now()})
	if err != nil {
		return pool.Pool{}, fmt.Errorf("create pool: %w", err)
	}
	return created, nil
}

func (s *ScheduleService) CreateChampionship(ctx context.Context, actor Actor, input CreateChampionshipInput) (championship.Championship, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.CreateChampionship")
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return championship.Championship{}, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" || input.PoolID <= 0 || input.Year <= 0 {
		return championship.Championship{}, fmt.Errorf("%w: pool id, name and year are required", ErrInvalidInput)
	}

	if _, exists, err := s.poolRepo.GetByID(ctx, input.PoolID); err != nil {
		return championship.Championship{}, fmt.Errorf("get pool: %w", err)
	} else if !exists {
		return championship.Championship{}, fmt.Errorf("%w: pool=%d", ErrNotFound, input.PoolID)
	}

	created, err := s.championshipRepo.Create(ctx, championship.Championship{
		PoolID:    input.PoolID,
		Name:      name,
		Year:      input.Year,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		return championship.Championship{}, fmt.Errorf("create championship: %w", err)
	}
	return created, nil
}

func (s *ScheduleService) CreateRound(ctx context.Context, actor Actor, input CreateRoundInput) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.CreateRound")
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return round.Round{}, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" || input.ChampionshipID <= 0 {
		return round.Round{}, fmt.Errorf("%w: championship id and name are required", ErrInvalidInput)
	}

	if _, exists, err := s.championshipRepo.GetByID(ctx, input.ChampionshipID); err != nil {
		return round.Round{}, fmt.Errorf("get championship: %w", err)
	} else if !exists {
		return round.Round{}, fmt.Errorf("%w: championship=%d", ErrNotFound, input.ChampionshipID)
	}

	created, err := s.roundRepo.Create(ctx, round.Round{
		ChampionshipID: input.ChampionshipID,
		Name:           name,
		CreatedAt:      s.clock.Now(),
	})
	if err != nil {
		return round.Round{}, fmt.Errorf("create round: %w", err)
	}
	return created, nil
}

func (s *ScheduleService) CreateMatch(ctx context.Context, actor Actor, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.CreateMatch")
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return match.Match{}, err
	}
	home := strings.TrimSpace(input.HomeTeam)
	away := strings.TrimSpace(input.AwayTeam)
	if input.RoundID <= 0 || home == "" || away == "" {
		return match.Match{}, fmt.Errorf("%w: round id, home team and away team are required", ErrInvalidInput)
	}
	if strings.EqualFold(home, away) {
		return match.Match{}, fmt.Errorf("%w: home and away team must differ", ErrInvalidInput)
	}

	r, exists, err := s.roundRepo.GetByID(ctx, input.RoundID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: round=%d", ErrNotFound, input.RoundID)
	}
	if r.Finalized {
		return match.Match{}, fmt.Errorf("%w: round=%d", ErrAlreadyFinalized, r.ID)
	}

	created, err := s.matchRepo.Create(ctx, match.Match{
		RoundID:   input.RoundID,
		HomeTeam:  home,
		AwayTeam:  away,
		KickoffAt: input.KickoffAt,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}
	return created, nil
}

func (s *ScheduleService) status(now time.Time, state lock.State) LockStatus {
	closesAt, reopensAt := s.window.Bounds(now)
	return LockStatus{
		State:       state,
		Reason:      state.Reason(),
		ClosesAt:    closesAt,
		ReopensAt:   reopensAt,
		EvaluatedAt: now,
	}
}

func lockTarget(r round.Round, m match.Match) lock.Target {
	return lock.Target{
		RoundFinalized: r.Finalized,
		MatchFinalized: m.Finalized,
		KickoffAt:      m.KickoffAt,
	}
}

// loadMatchAndRound reads a match and its round, taking row locks when forUpdate
// is set: the match exclusively and the round shared.
func loadMatchAndRound(ctx context.Context, matchRepo match.Repository, roundRepo round.Repository, matchID int64, forUpdate bool) (match.Match, round.Round, error) {
	if matchID <= 0 {
		return match.Match{}, round.Round{}, fmt.Errorf("%w: match id must be positive", ErrInvalidInput)
	}

	getMatch := matchRepo.GetByID
	getRound := roundRepo.GetByID
	if forUpdate {
		getMatch = matchRepo.GetForUpdate
		getRound = roundRepo.GetForShare
	}

	m, exists, err := getMatch(ctx, matchID)
	if err != nil {
		return match.Match{}, round.Round{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, round.Round{}, fmt.Errorf("%w: match=%d", ErrNotFound, matchID)
	}

	r, exists, err := getRound(ctx, m.RoundID)
	if err != nil {
		return match.Match{}, round.Round{}, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return match.Match{}, round.Round{}, fmt.Errorf("%w: round=%d", ErrNotFound, m.RoundID)
	}

	return m, r, nil
}
