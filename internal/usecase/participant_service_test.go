package usecase

import (
	"errors"
	"testing"
	"time"
)

func TestParticipantService_Upsert(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	ctx := t.Context()

	original, err := env.participants.Get(ctx, "dave")
	if err != nil {
		t.Fatalf("get participant: %v", err)
	}

	env.clock.Advance(time.Hour)
	saved, err := env.participants.Upsert(ctx, admin, UpsertParticipantInput{UserID: " dave ", Name: " Dave ", Authorized: true})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if saved.ID != "dave" || saved.Name != "Dave" || !saved.Authorized {
		t.Fatalf("unexpected participant: %+v", saved)
	}
	if !saved.CreatedAt.Equal(original.CreatedAt) || !saved.UpdatedAt.After(original.UpdatedAt) {
		t.Fatalf("unexpected timestamps: created=%s updated=%s", saved.CreatedAt, saved.UpdatedAt)
	}

	if _, err := env.predictions.Submit(ctx, SubmitPredictionInput{UserID: "dave", MatchID: 1, Outcome: "DRAW"}); err != nil {
		t.Fatalf("authorized participant should be able to bet: %v", err)
	}
}

func TestParticipantService_Upsert_Rejections(t *testing.T) {
	env := newTestEnv(t, weekSeed())
	ctx := t.Context()

	if _, err := env.participants.Upsert(ctx, Actor{UserID: "alice"}, UpsertParticipantInput{UserID: "x", Name: "X"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := env.participants.Upsert(ctx, admin, UpsertParticipantInput{UserID: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := env.participants.Get(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
