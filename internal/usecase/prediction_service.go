package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/bolao-sca/internal/domain/lock"
	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	"github.com/riskibarqy/bolao-sca/internal/domain/participant"
	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
	"github.com/riskibarqy/bolao-sca/internal/domain/round"
	"github.com/riskibarqy/bolao-sca/internal/platform/clock"
	"github.com/riskibarqy/bolao-sca/internal/platform/logging"
)

// SubmitPredictionInput is the incoming payload for placing or changing a bet.
type SubmitPredictionInput struct {
	UserID  string
	MatchID int64
	Outcome string
}

type SubmitPredictionResult struct {
	Prediction prediction.Prediction
	// Changed is false when the stored outcome already matched the request.
	Changed bool
}

// UserMatchPrediction is a participant's view of one match in a round.
type UserMatchPrediction struct {
	Match      match.Match
	Lock       lock.State
	Prediction *prediction.Prediction
	Status     prediction.Status
	Points     int
}

type PredictionService struct {
	participantRepo participant.Repository
	roundRepo       round.Repository
	matchRepo       match.Repository
	predictionRepo  prediction.Repository
	tx              TxManager
	window          lock.Window
	rule            prediction.Rule
	clock           clock.Clock
	metrics         MetricsRecorder
	logger          *logging.Logger
}

func NewPredictionService(
	participantRepo participant.Repository,
	roundRepo round.Repository,
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	tx TxManager,
	window lock.Window,
	rule prediction.Rule,
	clk clock.Clock,
	metrics MetricsRecorder,
	logger *logging.Logger,
) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PredictionService{
		participantRepo: participantRepo,
		roundRepo:       roundRepo,
		matchRepo:       matchRepo,
		predictionRepo:  predictionRepo,
		tx:              txOrPassthrough(tx),
		window:          window,
		rule:            rule,
		clock:           clk,
		metrics:         metricsOrNop(metrics),
		logger:          logger,
	}
}

// Submit places or replaces the caller's bet on a match. The lock is evaluated
// against the match and round rows read under lock in the same transaction as
// the write, so a concurrent finalization cannot interleave.
func (s *PredictionService) Submit(ctx context.Context, input SubmitPredictionInput) (SubmitPredictionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit",
		attrUserID.String(input.UserID), attrMatchID.Int64(input.MatchID))
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return SubmitPredictionResult{}, fmt.Errorf("%w: missing caller identity", ErrUnauthorized)
	}
	if input.MatchID <= 0 {
		s.metrics.PredictionSubmitted(submitResultRejected)
		return SubmitPredictionResult{}, fmt.Errorf("%w: match id must be positive", ErrInvalidInput)
	}

	var result SubmitPredictionResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		member, exists, err := s.participantRepo.GetByID(ctx, input.UserID)
		if err != nil {
			return fmt.Errorf("get participant: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: participant=%s", ErrNotFound, input.UserID)
		}
		if !member.CanPredict() {
			return fmt.Errorf("%w: participant=%s is not allowed to bet", ErrForbidden, input.UserID)
		}

		m, r, err := loadMatchAndRound(ctx, s.matchRepo, s.roundRepo, input.MatchID, true)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if state := s.window.Evaluate(now, lockTarget(r, m)); !state.IsOpen() {
			return &PredictionsClosedError{MatchID: m.ID, State: state}
		}

		outcome, err := match.ParseOutcome(input.Outcome)
		if err != nil {
			return err
		}

		current, exists, err := s.predictionRepo.Get(ctx, input.UserID, m.ID)
		if err != nil {
			return fmt.Errorf("get prediction: %w", err)
		}
		if exists && current.Outcome == outcome {
			result = SubmitPredictionResult{Prediction: current}
			return nil
		}

		item := prediction.Prediction{
			UserID:      input.UserID,
			MatchID:     m.ID,
			Outcome:     outcome,
			SubmittedAt: now,
		}
		if err := s.predictionRepo.Upsert(ctx, item); err != nil {
			return fmt.Errorf("upsert prediction: %w", err)
		}
		result = SubmitPredictionResult{Prediction: item, Changed: true}
		return nil
	})
	if err != nil {
		s.metrics.PredictionSubmitted(submitOutcomeLabel(err))
		return SubmitPredictionResult{}, err
	}

	if result.Changed {
		s.metrics.PredictionSubmitted(submitResultAccepted)
		s.logger.InfoContext(ctx, "prediction submitted",
			"user_id", input.UserID,
			"match_id", input.MatchID,
			"outcome", string(result.Prediction.Outcome),
		)
	} else {
		s.metrics.PredictionSubmitted(submitResultUnchanged)
	}
	return result, nil
}

// ListUserRound returns every match of a round with the caller's bet, its lock
// state and the resolved status.
func (s *PredictionService) ListUserRound(ctx context.Context, userID string, roundID int64) ([]UserMatchPrediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListUserRound",
		attrUserID.String(userID), attrRoundID.Int64(roundID))
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: missing caller identity", ErrUnauthorized)
	}
	if roundID <= 0 {
		return nil, fmt.Errorf("%w: round id must be positive", ErrInvalidInput)
	}

	r, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: round=%d", ErrNotFound, roundID)
	}

	matches, err := s.matchRepo.ListByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("list matches by round: %w", err)
	}
	if len(matches) == 0 {
		return []UserMatchPrediction{}, nil
	}

	matchIDs := make([]int64, 0, len(matches))
	for _, m := range matches {
		matchIDs = append(matchIDs, m.ID)
	}
	items, err := s.predictionRepo.ListByUserAndMatches(ctx, userID, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("list predictions by user: %w", err)
	}
	byMatch := make(map[int64]prediction.Prediction, len(items))
	for _, item := range items {
		byMatch[item.MatchID] = item
	}

	now := s.clock.Now()
	out := make([]UserMatchPrediction, 0, len(matches))
	for _, m := range matches {
		state := s.window.Evaluate(now, lockTarget(r, m))

		var mine *prediction.Prediction
		if item, ok := byMatch[m.ID]; ok {
			mine = &item
		}
		status, points := s.rule.Resolve(m, mine, state.IsOpen())
		out = append(out, UserMatchPrediction{
			Match:      m,
			Lock:       state,
			Prediction: mine,
			Status:     status,
			Points:     points,
		})
	}
	return out, nil
}

func submitOutcomeLabel(err error) string {
	if errors.Is(err, ErrPredictionsClosed) {
		return submitResultClosed
	}
	return submitResultRejected
}
