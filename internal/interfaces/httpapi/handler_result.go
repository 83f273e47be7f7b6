package httpapi

import (
	"net/http"

	"github.com/riskibarqy/bolao-sca/internal/usecase"
)

func (h *Handler) FinalizeMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinalizeMatch")
	defer span.End()

	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req finalizeMatchRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.resultService.FinalizeMatch(ctx, actorFromContext(ctx), usecase.FinalizeMatchInput{
		MatchID:      matchID,
		Outcome:      req.Outcome,
		DisplayScore: req.DisplayScore,
	})
	if err != nil {
		h.fail(ctx, w, "finalize match failed", err, "match_id", matchID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, finalizeMatchDTO{
		Match:  matchToDTO(result.Match, ""),
		Scored: result.Scored,
		Hits:   result.Hits,
	})
}

func (h *Handler) FinalizeRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinalizeRound")
	defer span.End()

	roundID, err := pathInt64(r, "roundID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	finalized, err := h.resultService.FinalizeRound(ctx, actorFromContext(ctx), roundID)
	if err != nil {
		h.fail(ctx, w, "finalize round failed", err, "round_id", roundID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, roundToDTO(finalized))
}

func (h *Handler) RescoreRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RescoreRound")
	defer span.End()

	roundID, err := pathInt64(r, "roundID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.resultService.RescoreRound(ctx, actorFromContext(ctx), roundID)
	if err != nil {
		h.fail(ctx, w, "rescore round failed", err, "round_id", roundID)
		return
	}

	matches := make([]rescoreMatchDTO, 0, len(result.Matches))
	for _, item := range result.Matches {
		matches = append(matches, rescoreMatchDTO{
			MatchID: item.MatchID,
			Scored:  item.Scored,
			Hits:    item.Hits,
			Error:   item.Error,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, rescoreRoundDTO{
		RoundID:     result.RoundID,
		WorkerCount: result.WorkerCount,
		Scored:      result.Scored,
		FailedCount: result.FailedCount,
		Matches:     matches,
	})
}
