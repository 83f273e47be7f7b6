package prediction

import (
	"time"

	"github.com/riskibarqy/bolao-sca/internal/domain/match"
)

// Prediction is one participant's guess for one match, unique per (UserID, MatchID).
// Points stays nil until the match is finalized and scored.
type Prediction struct {
	UserID      string
	MatchID     int64
	Outcome     match.Outcome
	Points      *int
	SubmittedAt time.Time
	ScoredAt    *time.Time
}

func (p Prediction) Scored() bool {
	return p.Points != nil
}

// Status describes a participant's standing on a single match.
type Status string

const (
	// StatusOpen: no prediction yet and the match still accepts one.
	StatusOpen Status = "open"
	// StatusClosed: no prediction and the match is locked but has no result yet.
	StatusClosed Status = "closed"
	// StatusMissed: the participant did not bet on a finalized match.
	StatusMissed  Status = "missed"
	StatusPending Status = "pending"
	StatusHit     Status = "hit"
	StatusMiss    Status = "miss"
)
