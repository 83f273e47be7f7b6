package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/bolao-sca/internal/domain/participant"
	"github.com/riskibarqy/bolao-sca/internal/platform/clock"
)

type UpsertParticipantInput struct {
	UserID     string
	Name       string
	Nickname   string
	Authorized bool
	Banned     bool
	Withdrawn  bool
}

type ParticipantService struct {
	repo     participant.Repository
	rankings RankingInvalidator
	clock    clock.Clock
}

func NewParticipantService(repo participant.Repository, rankings RankingInvalidator, clk clock.Clock) *ParticipantService {
	return &ParticipantService{repo: repo, rankings: rankings, clock: clk}
}

// Upsert creates or replaces the pool membership record of a user.
func (s *ParticipantService) Upsert(ctx context.Context, actor Actor, input UpsertParticipantInput) (participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.Upsert")
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return participant.Participant{}, err
	}

	input.UserID = strings.TrimSpace(input.UserID)
	input.Name = strings.TrimSpace(input.Name)
	input.Nickname = strings.TrimSpace(input.Nickname)
	if input.UserID == "" {
		return participant.Participant{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return participant.Participant{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	now := s.clock.Now()
	item := participant.Participant{
		ID:         input.UserID,
		Name:       input.Name,
		Nickname:   input.Nickname,
		Authorized: input.Authorized,
		Banned:     input.Banned,
		Withdrawn:  input.Withdrawn,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	saved, err := s.repo.Upsert(ctx, item)
	if err != nil {
		return participant.Participant{}, fmt.Errorf("upsert participant: %w", err)
	}

	if s.rankings != nil {
		s.rankings.Invalidate(ctx)
	}
	return saved, nil
}

func (s *ParticipantService) Get(ctx context.Context, userID string) (participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.Get", attrUserID.String(userID))
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return participant.Participant{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	item, exists, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return participant.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	if !exists {
		return participant.Participant{}, fmt.Errorf("%w: participant=%s", ErrNotFound, userID)
	}
	return item, nil
}
