package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/bolao-sca/internal/usecase"
)

func (h *Handler) ListRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRounds")
	defer span.End()

	championshipID, err := queryInt64(r, "championship_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rounds, err := h.scheduleService.ListRounds(ctx, championshipID)
	if err != nil {
		h.fail(ctx, w, "list rounds failed", err, "championship_id", championshipID)
		return
	}

	items := make([]roundDTO, 0, len(rounds))
	for _, item := range rounds {
		items = append(items, roundToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetCurrentRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentRound")
	defer span.End()

	championshipID, err := queryInt64(r, "championship_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	current, ok, err := h.scheduleService.DetectCurrentRound(ctx, championshipID)
	if err != nil {
		h.fail(ctx, w, "detect current round failed", err, "championship_id", championshipID)
		return
	}
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no rounds for championship=%d", usecase.ErrNotFound, championshipID))
		return
	}

	details, err := h.scheduleService.GetRound(ctx, current.ID)
	if err != nil {
		h.fail(ctx, w, "get current round failed", err, "round_id", current.ID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, roundDetailToDTO(details))
}

func (h *Handler) GetRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRound")
	defer span.End()

	roundID, err := pathInt64(r, "roundID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	details, err := h.scheduleService.GetRound(ctx, roundID)
	if err != nil {
		h.fail(ctx, w, "get round failed", err, "round_id", roundID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, roundDetailToDTO(details))
}

func (h *Handler) GetRoundLock(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoundLock")
	defer span.End()

	roundID, err := pathInt64(r, "roundID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	status, err := h.scheduleService.GetRoundLockState(ctx, roundID)
	if err != nil {
		h.fail(ctx, w, "get round lock failed", err, "round_id", roundID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, lockToDTO(status))
}

func (h *Handler) GetMatchLock(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchLock")
	defer span.End()

	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	status, err := h.scheduleService.GetMatchLockState(ctx, matchID)
	if err != nil {
		h.fail(ctx, w, "get match lock failed", err, "match_id", matchID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, lockToDTO(status))
}

func (h *Handler) CreatePool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePool")
	defer span.End()

	var req createPoolRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.scheduleService.CreatePool(ctx, actorFromContext(ctx), usecase.CreatePoolInput{Name: req.Name})
	if err != nil {
		h.fail(ctx, w, "create pool failed", err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, poolToDTO(created))
}

func (h *Handler) CreateChampionship(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateChampionship")
	defer span.End()

	var req createChampionshipRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.scheduleService.CreateChampionship(ctx, actorFromContext(ctx), usecase.CreateChampionshipInput{
		PoolID: req.PoolID,
		Name:   req.Name,
		Year:   req.Year,
	})
	if err != nil {
		h.fail(ctx, w, "create championship failed", err, "pool_id", req.PoolID)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, championshipToDTO(created))
}

func (h *Handler) CreateRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateRound")
	defer span.End()

	var req createRoundRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.scheduleService.CreateRound(ctx, actorFromContext(ctx), usecase.CreateRoundInput{
		ChampionshipID: req.ChampionshipID,
		Name:           req.Name,
	})
	if err != nil {
		h.fail(ctx, w, "create round failed", err, "championship_id", req.ChampionshipID)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, roundToDTO(created))
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	roundID, err := pathInt64(r, "roundID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createMatchRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.scheduleService.CreateMatch(ctx, actorFromContext(ctx), usecase.CreateMatchInput{
		RoundID:   roundID,
		HomeTeam:  req.HomeTeam,
		AwayTeam:  req.AwayTeam,
		KickoffAt: req.KickoffAt,
	})
	if err != nil {
		h.fail(ctx, w, "create match failed", err, "round_id", roundID)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(created, ""))
}
