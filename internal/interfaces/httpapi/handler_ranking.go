package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/riskibarqy/bolao-sca/internal/domain/ranking"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) GetRoundRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoundRanking")
	defer span.End()

	roundID, err := pathInt64(r, "roundID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.rankingService.RoundRanking(ctx, roundID)
	if err != nil {
		h.fail(ctx, w, "get round ranking failed", err, "round_id", roundID)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, rankingToDTO(board))
}

func (h *Handler) GetGlobalRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGlobalRanking")
	defer span.End()

	scope, err := globalScopeFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.rankingService.GlobalRanking(ctx, scope)
	if err != nil {
		h.fail(ctx, w, "get global ranking failed", err, "scope", scope.Key())
		return
	}
	writeSuccess(ctx, w, http.StatusOK, rankingToDTO(board))
}

// ExportRanking renders the round ranking when round_id is given, the global one otherwise.
func (h *Handler) ExportRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportRanking")
	defer span.End()

	roundID, err := queryInt64(r, "round_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.exportBoard(ctx, r, roundID)
	if err != nil {
		h.fail(ctx, w, "export ranking failed", err, "round_id", roundID)
		return
	}

	buf, err := buildRankingWorkbook(board)
	if err != nil {
		h.fail(ctx, w, "build ranking workbook failed", err, "scope", board.Scope.Key())
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+rankingFileName(board.Scope)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) exportBoard(ctx context.Context, r *http.Request, roundID int64) (ranking.Board, error) {
	if roundID != 0 {
		return h.rankingService.RoundRanking(ctx, roundID)
	}
	scope, err := globalScopeFromQuery(r)
	if err != nil {
		return ranking.Board{}, err
	}
	return h.rankingService.GlobalRanking(ctx, scope)
}

func globalScopeFromQuery(r *http.Request) (ranking.Scope, error) {
	poolID, err := queryInt64(r, "pool_id")
	if err != nil {
		return ranking.Scope{}, err
	}
	championshipID, err := queryInt64(r, "championship_id")
	if err != nil {
		return ranking.Scope{}, err
	}
	year, err := queryInt64(r, "year")
	if err != nil {
		return ranking.Scope{}, err
	}
	return ranking.Scope{PoolID: poolID, ChampionshipID: championshipID, Year: int(year)}, nil
}
