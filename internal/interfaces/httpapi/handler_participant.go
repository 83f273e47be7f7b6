package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/riskibarqy/bolao-sca/internal/usecase"
)

func (h *Handler) UpsertParticipant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertParticipant")
	defer span.End()

	userID := strings.TrimSpace(chi.URLParam(r, "userID"))

	var req upsertParticipantRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	saved, err := h.participantService.Upsert(ctx, actorFromContext(ctx), usecase.UpsertParticipantInput{
		UserID:     userID,
		Name:       req.Name,
		Nickname:   req.Nickname,
		Authorized: req.Authorized,
		Banned:     req.Banned,
		Withdrawn:  req.Withdrawn,
	})
	if err != nil {
		h.fail(ctx, w, "upsert participant failed", err, "user_id", userID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, participantToDTO(saved))
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMe")
	defer span.End()

	actor := actorFromContext(ctx)
	me, err := h.participantService.Get(ctx, actor.UserID)
	if err != nil {
		h.fail(ctx, w, "get participant failed", err, "user_id", actor.UserID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, participantToDTO(me))
}
