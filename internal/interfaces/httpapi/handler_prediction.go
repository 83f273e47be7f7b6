package httpapi

import (
	"net/http"

	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
	"github.com/riskibarqy/bolao-sca/internal/usecase"
)

func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPrediction")
	defer span.End()

	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitPredictionRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	actor := actorFromContext(ctx)
	result, err := h.predictionService.Submit(ctx, usecase.SubmitPredictionInput{
		UserID:  actor.UserID,
		MatchID: matchID,
		Outcome: req.Outcome,
	})
	if err != nil {
		h.fail(ctx, w, "submit prediction failed", err, "user_id", actor.UserID, "match_id", matchID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, submitPredictionDTO{
		Prediction: predictionToDTO(result.Prediction),
		Changed:    result.Changed,
	})
}

func (h *Handler) ListMyRoundPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyRoundPredictions")
	defer span.End()

	roundID, err := pathInt64(r, "roundID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	actor := actorFromContext(ctx)
	items, err := h.predictionService.ListUserRound(ctx, actor.UserID, roundID)
	if err != nil {
		h.fail(ctx, w, "list user predictions failed", err, "user_id", actor.UserID, "round_id", roundID)
		return
	}

	out := make([]userMatchPredictionDTO, 0, len(items))
	for _, item := range items {
		var outcome *string
		if item.Prediction != nil {
			v := string(item.Prediction.Outcome)
			outcome = &v
		}
		out = append(out, userMatchPredictionDTO{
			Match:   matchToDTO(item.Match, item.Lock),
			Outcome: outcome,
			Status:  string(item.Status),
			Points:  item.Points,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func predictionToDTO(p prediction.Prediction) predictionDTO {
	return predictionDTO{
		UserID:      p.UserID,
		MatchID:     p.MatchID,
		Outcome:     string(p.Outcome),
		Points:      p.Points,
		SubmittedAt: formatTime(p.SubmittedAt),
		ScoredAt:    formatTimePtr(p.ScoredAt),
	}
}
