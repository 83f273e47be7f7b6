package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/bolao-sca/internal/domain/participant"
	"github.com/riskibarqy/bolao-sca/internal/domain/ranking"
	"github.com/riskibarqy/bolao-sca/internal/domain/round"
	"github.com/riskibarqy/bolao-sca/internal/platform/logging"
)

const rankingCachePrefix = "ranking:"

// BoardCache memoizes computed boards. Invalidate drops every key under prefix.
type BoardCache interface {
	GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (ranking.Board, error)) (ranking.Board, error)
	Invalidate(ctx context.Context, prefix string) error
}

// RankingInvalidator is called after any write that changes points or names.
type RankingInvalidator interface {
	Invalidate(ctx context.Context)
}

type RankingService struct {
	roundRepo       round.Repository
	rankingRepo     ranking.Repository
	participantRepo participant.Repository
	cache           BoardCache
	metrics         MetricsRecorder
	logger          *logging.Logger
}

func NewRankingService(
	roundRepo round.Repository,
	rankingRepo ranking.Repository,
	participantRepo participant.Repository,
	cache BoardCache,
	metrics MetricsRecorder,
	logger *logging.Logger,
) *RankingService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RankingService{
		roundRepo:       roundRepo,
		rankingRepo:     rankingRepo,
		participantRepo: participantRepo,
		cache:           cache,
		metrics:         metricsOrNop(metrics),
		logger:          logger,
	}
}

func (s *RankingService) RoundRanking(ctx context.Context, roundID int64) (ranking.Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.RoundRanking", attrRoundID.Int64(roundID))
	defer span.End()

	if roundID <= 0 {
		return ranking.Board{}, fmt.Errorf("%w: round id must be positive", ErrInvalidInput)
	}

	_, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return ranking.Board{}, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return ranking.Board{}, fmt.Errorf("%w: round=%d", ErrNotFound, roundID)
	}

	return s.board(ctx, ranking.Scope{RoundID: roundID})
}

// GlobalRanking sums every scored prediction matching the pool, championship and
// year filters. Zero filters are ignored.
func (s *RankingService) GlobalRanking(ctx context.Context, scope ranking.Scope) (ranking.Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.GlobalRanking", attrRankingScope.String(scope.Key()))
	defer span.End()

	if scope.RoundID != 0 {
		return ranking.Board{}, fmt.Errorf("%w: global ranking cannot be scoped to a round", ErrInvalidInput)
	}
	if scope.PoolID < 0 || scope.ChampionshipID < 0 || scope.Year < 0 {
		return ranking.Board{}, fmt.Errorf("%w: ranking filters must not be negative", ErrInvalidInput)
	}

	return s.board(ctx, scope)
}

// Invalidate drops every cached board. Failures are logged and left to expire by TTL.
func (s *RankingService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, rankingCachePrefix); err != nil {
		s.logger.WarnContext(ctx, "ranking cache invalidation failed", "error", err)
	}
}

func (s *RankingService) board(ctx context.Context, scope ranking.Scope) (ranking.Board, error) {
	if s.cache == nil {
		return s.compute(ctx, scope)
	}
	return s.cache.GetOrLoad(ctx, rankingCachePrefix+scope.Key(), func(ctx context.Context) (ranking.Board, error) {
		return s.compute(ctx, scope)
	})
}

func (s *RankingService) compute(ctx context.Context, scope ranking.Scope) (ranking.Board, error) {
	start := time.Now()

	var (
		totals       []ranking.Total
		participants []participant.Participant
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		items, err := s.rankingRepo.Totals(ctx, scope)
		if err != nil {
			return fmt.Errorf("aggregate ranking totals: %w", err)
		}
		totals = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.participantRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("list participants: %w", err)
		}
		participants = items
		return nil
	})
	if err := p.Wait(); err != nil {
		return ranking.Board{}, err
	}

	board := ranking.Build(scope, totals, participants)
	s.metrics.RankingComputed(scopeLabel(scope), time.Since(start))
	return board, nil
}

func scopeLabel(scope ranking.Scope) string {
	if scope.IsRound() {
		return "round"
	}
	return "global"
}
