package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
	"github.com/riskibarqy/bolao-sca/internal/domain/round"
	"github.com/riskibarqy/bolao-sca/internal/platform/clock"
	"github.com/riskibarqy/bolao-sca/internal/platform/logging"
)

const defaultRescoreWorkers = 4

type FinalizeMatchInput struct {
	MatchID      int64
	Outcome      string
	DisplayScore string
}

type FinalizeMatchResult struct {
	Match  match.Match
	Scored int
	Hits   int
}

type RescoreMatchResult struct {
	MatchID int64
	Scored  int
	Hits    int
	Error   string
}

type RescoreRoundResult struct {
	RoundID     int64
	WorkerCount int
	Matches     []RescoreMatchResult
	Scored      int
	FailedCount int
}

// ResultService records match outcomes and round closures and keeps prediction
// points in step with them.
type ResultService struct {
	roundRepo      round.Repository
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	tx             TxManager
	rule           prediction.Rule
	rankings       RankingInvalidator
	clock          clock.Clock
	metrics        MetricsRecorder
	logger         *logging.Logger
	workers        int
}

func NewResultService(
	roundRepo round.Repository,
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	tx TxManager,
	rule prediction.Rule,
	rankings RankingInvalidator,
	clk clock.Clock,
	metrics MetricsRecorder,
	logger *logging.Logger,
	workers int,
) *ResultService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultRescoreWorkers
	}

	return &ResultService{
		roundRepo:      roundRepo,
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		tx:             txOrPassthrough(tx),
		rule:           rule,
		rankings:       rankings,
		clock:          clk,
		metrics:        metricsOrNop(metrics),
		logger:         logger,
		workers:        workers,
	}
}

// FinalizeMatch sets the result once and scores every prediction for the match in
// the same transaction. Rankings are invalidated only after commit.
func (s *ResultService) FinalizeMatch(ctx context.Context, actor Actor, input FinalizeMatchInput) (FinalizeMatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.FinalizeMatch", attrMatchID.Int64(input.MatchID))
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return FinalizeMatchResult{}, err
	}
	if input.MatchID <= 0 {
		return FinalizeMatchResult{}, fmt.Errorf("%w: match id must be positive", ErrInvalidInput)
	}
	outcome, err := match.ParseOutcome(input.Outcome)
	if err != nil {
		return FinalizeMatchResult{}, err
	}

	var result FinalizeMatchResult
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		m, r, err := loadMatchAndRound(ctx, s.matchRepo, s.roundRepo, input.MatchID, true)
		if err != nil {
			return err
		}
		if m.Finalized {
			return fmt.Errorf("%w: match=%d", ErrAlreadyFinalized, m.ID)
		}
		if r.Finalized {
			return fmt.Errorf("%w: round=%d is closed", ErrAlreadyFinalized, r.ID)
		}

		now := s.clock.Now()
		m.Result = outcome
		m.DisplayScore = strings.TrimSpace(input.DisplayScore)
		m.Finalized = true
		m.FinalizedAt = &now
		if err := s.matchRepo.SaveResult(ctx, m); err != nil {
			return fmt.Errorf("save match result: %w", err)
		}

		scored, hits, err := s.scoreMatch(ctx, m, now)
		if err != nil {
			return err
		}
		result = FinalizeMatchResult{Match: m, Scored: scored, Hits: hits}
		return nil
	})
	if err != nil {
		return FinalizeMatchResult{}, err
	}

	s.afterCommit(ctx, finalizedKindMatch)
	s.logger.InfoContext(ctx, "match finalized",
		"match_id", result.Match.ID,
		"round_id", result.Match.RoundID,
		"result", string(result.Match.Result),
		"scored", result.Scored,
		"hits", result.Hits,
		"admin_id", actor.UserID,
	)
	return result, nil
}

// FinalizeRound closes a round for betting. Matches without a result stay frozen.
func (s *ResultService) FinalizeRound(ctx context.Context, actor Actor, roundID int64) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.FinalizeRound", attrRoundID.Int64(roundID))
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return round.Round{}, err
	}
	if roundID <= 0 {
		return round.Round{}, fmt.Errorf("%w: round id must be positive", ErrInvalidInput)
	}

	var out round.Round
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		r, exists, err := s.roundRepo.GetForUpdate(ctx, roundID)
		if err != nil {
			return fmt.Errorf("get round: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: round=%d", ErrNotFound, roundID)
		}
		if r.Finalized {
			return fmt.Errorf("%w: round=%d", ErrAlreadyFinalized, roundID)
		}

		now := s.clock.Now()
		if err := s.roundRepo.MarkFinalized(ctx, roundID, now); err != nil {
			return fmt.Errorf("mark round finalized: %w", err)
		}
		r.Finalized = true
		r.FinalizedAt = &now
		out = r
		return nil
	})
	if err != nil {
		return round.Round{}, err
	}

	s.afterCommit(ctx, finalizedKindRound)
	s.logger.InfoContext(ctx, "round finalized", "round_id", roundID, "admin_id", actor.UserID)
	return out, nil
}

// RescoreRound recomputes points for every finalized match of a round. Running it
// twice yields the same points.
func (s *ResultService) RescoreRound(ctx context.Context, actor Actor, roundID int64) (RescoreRoundResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.RescoreRound", attrRoundID.Int64(roundID))
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return RescoreRoundResult{}, err
	}
	if roundID <= 0 {
		return RescoreRoundResult{}, fmt.Errorf("%w: round id must be positive", ErrInvalidInput)
	}

	if _, exists, err := s.roundRepo.GetByID(ctx, roundID); err != nil {
		return RescoreRoundResult{}, fmt.Errorf("get round: %w", err)
	} else if !exists {
		return RescoreRoundResult{}, fmt.Errorf("%w: round=%d", ErrNotFound, roundID)
	}

	matches, err := s.matchRepo.ListByRound(ctx, roundID)
	if err != nil {
		return RescoreRoundResult{}, fmt.Errorf("list matches by round: %w", err)
	}

	targets := make([]int64, 0, len(matches))
	for _, m := range matches {
		if m.Finalized {
			targets = append(targets, m.ID)
		}
	}

	workerCount := min(s.workers, max(len(targets), 1))
	result := RescoreRoundResult{
		RoundID:     roundID,
		WorkerCount: workerCount,
		Matches:     make([]RescoreMatchResult, 0, len(targets)),
	}
	if len(targets) == 0 {
		return result, nil
	}

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return RescoreRoundResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var (
		mu      sync.Mutex
		workers sync.WaitGroup
		failed  atomic.Int32
	)
	for _, matchID := range targets {
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			row := RescoreMatchResult{MatchID: matchID}
			scored, hits, err := s.rescoreMatch(ctx, matchID)
			if err != nil {
				failed.Add(1)
				row.Error = err.Error()
				s.logger.WarnContext(ctx, "rescore match failed", "match_id", matchID, "error", err)
			} else {
				row.Scored = scored
				row.Hits = hits
			}

			mu.Lock()
			result.Matches = append(result.Matches, row)
			mu.Unlock()
		}); err != nil {
			workers.Done()
			return RescoreRoundResult{}, fmt.Errorf("submit rescore task: %w", err)
		}
	}
	workers.Wait()

	sort.Slice(result.Matches, func(i, j int) bool {
		return result.Matches[i].MatchID < result.Matches[j].MatchID
	})
	for _, row := range result.Matches {
		result.Scored += row.Scored
	}
	result.FailedCount = int(failed.Load())

	s.afterCommit(ctx, finalizedKindRescore)
	s.logger.InfoContext(ctx, "round rescored",
		"round_id", roundID,
		"matches", len(result.Matches),
		"failed", result.FailedCount,
		"admin_id", actor.UserID,
	)
	return result, nil
}

func (s *ResultService) rescoreMatch(ctx context.Context, matchID int64) (int, int, error) {
	var scored, hits int
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		m, exists, err := s.matchRepo.GetForUpdate(ctx, matchID)
		if err != nil {
			return fmt.Errorf("get match: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: match=%d", ErrNotFound, matchID)
		}
		if !m.Finalized || !m.Result.Valid() {
			return nil
		}

		scored, hits, err = s.scoreMatch(ctx, m, s.clock.Now())
		return err
	})
	return scored, hits, err
}

func (s *ResultService) scoreMatch(ctx context.Context, m match.Match, at time.Time) (int, int, error) {
	items, err := s.predictionRepo.ListByMatch(ctx, m.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("list predictions by match: %w", err)
	}
	if len(items) == 0 {
		return 0, 0, nil
	}

	scores := s.rule.ScoreMatch(m.Result, items)
	if err := s.predictionRepo.ApplyScores(ctx, m.ID, scores, at); err != nil {
		return 0, 0, fmt.Errorf("apply prediction scores: %w", err)
	}

	hits := 0
	for _, score := range scores {
		if score.Points > 0 {
			hits++
		}
	}
	return len(scores), hits, nil
}

func (s *ResultService) afterCommit(ctx context.Context, kind string) {
	s.metrics.Finalized(kind)
	if s.rankings != nil {
		s.rankings.Invalidate(ctx)
	}
}
