package httpapi

import (
	"time"

	"github.com/riskibarqy/bolao-sca/internal/domain/championship"
	"github.com/riskibarqy/bolao-sca/internal/domain/lock"
	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	"github.com/riskibarqy/bolao-sca/internal/domain/participant"
	"github.com/riskibarqy/bolao-sca/internal/domain/pool"
	"github.com/riskibarqy/bolao-sca/internal/domain/ranking"
	"github.com/riskibarqy/bolao-sca/internal/domain/round"
	"github.com/riskibarqy/bolao-sca/internal/usecase"
)

// submitPredictionRequest leaves the outcome unvalidated: the lock is checked
// before the outcome is parsed.
type submitPredictionRequest struct {
	Outcome string `json:"outcome"`
}

type finalizeMatchRequest struct {
	Outcome      string `json:"outcome" validate:"required"`
	DisplayScore string `json:"display_score" validate:"omitempty,max=20"`
}

type createPoolRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type createChampionshipRequest struct {
	PoolID int64  `json:"pool_id" validate:"required,gt=0"`
	Name   string `json:"name" validate:"required,max=100"`
	Year   int    `json:"year" validate:"required,gte=1900,lte=3000"`
}

type createRoundRequest struct {
	ChampionshipID int64  `json:"championship_id" validate:"required,gt=0"`
	Name           string `json:"name" validate:"required,max=100"`
}

type createMatchRequest struct {
	HomeTeam  string     `json:"home_team" validate:"required,max=100"`
	AwayTeam  string     `json:"away_team" validate:"required,max=100"`
	KickoffAt *time.Time `json:"kickoff_at"`
}

type upsertParticipantRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Nickname   string `json:"nickname" validate:"omitempty,max=50"`
	Authorized bool   `json:"authorized"`
	Banned     bool   `json:"banned"`
	Withdrawn  bool   `json:"withdrawn"`
}

type lockDTO struct {
	State       lock.State  `json:"state"`
	Reason      lock.Reason `json:"reason,omitempty"`
	Open        bool        `json:"open"`
	ClosesAt    string      `json:"closes_at"`
	ReopensAt   string      `json:"reopens_at"`
	EvaluatedAt string      `json:"evaluated_at"`
}

type poolDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type championshipDTO struct {
	ID        int64  `json:"id"`
	PoolID    int64  `json:"pool_id"`
	Name      string `json:"name"`
	Year      int    `json:"year"`
	CreatedAt string `json:"created_at"`
}

type roundDTO struct {
	ID             int64   `json:"id"`
	ChampionshipID int64   `json:"championship_id"`
	Name           string  `json:"name"`
	Finalized      bool    `json:"finalized"`
	FinalizedAt    *string `json:"finalized_at,omitempty"`
}

type matchDTO struct {
	ID           int64      `json:"id"`
	RoundID      int64      `json:"round_id"`
	HomeTeam     string     `json:"home_team"`
	AwayTeam     string     `json:"away_team"`
	KickoffAt    *string    `json:"kickoff_at"`
	Result       string     `json:"result,omitempty"`
	DisplayScore string     `json:"display_score,omitempty"`
	Finalized    bool       `json:"finalized"`
	FinalizedAt  *string    `json:"finalized_at,omitempty"`
	Lock         lock.State `json:"lock,omitempty"`
}

type roundDetailDTO struct {
	Round   roundDTO   `json:"round"`
	Lock    lockDTO    `json:"lock"`
	Matches []matchDTO `json:"matches"`
}

type predictionDTO struct {
	UserID      string  `json:"user_id"`
	MatchID     int64   `json:"match_id"`
	Outcome     string  `json:"outcome"`
	Points      *int    `json:"points"`
	SubmittedAt string  `json:"submitted_at"`
	ScoredAt    *string `json:"scored_at,omitempty"`
}

type submitPredictionDTO struct {
	Prediction predictionDTO `json:"prediction"`
	Changed    bool          `json:"changed"`
}

type userMatchPredictionDTO struct {
	Match   matchDTO `json:"match"`
	Outcome *string  `json:"outcome"`
	Status  string   `json:"status"`
	Points  int      `json:"points"`
}

type finalizeMatchDTO struct {
	Match  matchDTO `json:"match"`
	Scored int      `json:"scored"`
	Hits   int      `json:"hits"`
}

type rescoreMatchDTO struct {
	MatchID int64  `json:"match_id"`
	Scored  int    `json:"scored"`
	Hits    int    `json:"hits"`
	Error   string `json:"error,omitempty"`
}

type rescoreRoundDTO struct {
	RoundID     int64             `json:"round_id"`
	WorkerCount int               `json:"worker_count"`
	Scored      int               `json:"scored"`
	FailedCount int               `json:"failed_count"`
	Matches     []rescoreMatchDTO `json:"matches"`
}

type rankingScopeDTO struct {
	RoundID        int64 `json:"round_id,omitempty"`
	PoolID         int64 `json:"pool_id,omitempty"`
	ChampionshipID int64 `json:"championship_id,omitempty"`
	Year           int   `json:"year,omitempty"`
}

type rankingEntryDTO struct {
	Position    int    `json:"position"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Points      int    `json:"points"`
	Hits        int    `json:"hits"`
	Scored      int    `json:"scored"`
	Status      string `json:"status"`
}

type rankingDTO struct {
	Scope   rankingScopeDTO   `json:"scope"`
	Entries []rankingEntryDTO `json:"entries"`
}

type participantDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Nickname    string `json:"nickname,omitempty"`
	DisplayName string `json:"display_name"`
	Authorized  bool   `json:"authorized"`
	Banned      bool   `json:"banned"`
	Withdrawn   bool   `json:"withdrawn"`
	UpdatedAt   string `json:"updated_at"`
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := formatTime(*t)
	return &v
}

func lockToDTO(s usecase.LockStatus) lockDTO {
	return lockDTO{
		State:       s.State,
		Reason:      s.Reason,
		Open:        s.State.IsOpen(),
		ClosesAt:    formatTime(s.ClosesAt),
		ReopensAt:   formatTime(s.ReopensAt),
		EvaluatedAt: formatTime(s.EvaluatedAt),
	}
}

func poolToDTO(p pool.Pool) poolDTO {
	return poolDTO{ID: p.ID, Name: p.Name, CreatedAt: formatTime(p.CreatedAt)}
}

func championshipToDTO(c championship.Championship) championshipDTO {
	return championshipDTO{
		ID:        c.ID,
		PoolID:    c.PoolID,
		Name:      c.Name,
		Year:      c.Year,
		CreatedAt: formatTime(c.CreatedAt),
	}
}

func roundToDTO(r round.Round) roundDTO {
	return roundDTO{
		ID:             r.ID,
		ChampionshipID: r.ChampionshipID,
		Name:           r.Name,
		Finalized:      r.Finalized,
		FinalizedAt:    formatTimePtr(r.FinalizedAt),
	}
}

func matchToDTO(m match.Match, state lock.State) matchDTO {
	return matchDTO{
		ID:           m.ID,
		RoundID:      m.RoundID,
		HomeTeam:     m.HomeTeam,
		AwayTeam:     m.AwayTeam,
		KickoffAt:    formatTimePtr(m.KickoffAt),
		Result:       string(m.Result),
		DisplayScore: m.DisplayScore,
		Finalized:    m.Finalized,
		FinalizedAt:  formatTimePtr(m.FinalizedAt),
		Lock:         state,
	}
}

func roundDetailToDTO(details usecase.RoundDetails) roundDetailDTO {
	matches := make([]matchDTO, 0, len(details.Matches))
	for _, item := range details.Matches {
		matches = append(matches, matchToDTO(item.Match, item.Lock))
	}
	return roundDetailDTO{
		Round:   roundToDTO(details.Round),
		Lock:    lockToDTO(details.Lock),
		Matches: matches,
	}
}

func rankingToDTO(board ranking.Board) rankingDTO {
	entries := make([]rankingEntryDTO, 0, len(board.Entries))
	for _, e := range board.Entries {
		entries = append(entries, rankingEntryDTO{
			Position:    e.Position,
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			Points:      e.Points,
			Hits:        e.Hits,
			Scored:      e.Scored,
			Status:      e.Status(),
		})
	}
	return rankingDTO{
		Scope: rankingScopeDTO{
			RoundID:        board.Scope.RoundID,
			PoolID:         board.Scope.PoolID,
			ChampionshipID: board.Scope.ChampionshipID,
			Year:           board.Scope.Year,
		},
		Entries: entries,
	}
}

func participantToDTO(p participant.Participant) participantDTO {
	return participantDTO{
		ID:          p.ID,
		Name:        p.Name,
		Nickname:    p.Nickname,
		DisplayName: p.DisplayName(),
		Authorized:  p.Authorized,
		Banned:      p.Banned,
		Withdrawn:   p.Withdrawn,
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}
