package prediction

import (
	"fmt"

	"github.com/riskibarqy/bolao-sca/internal/domain/match"
)

const DefaultPointsPerHit = 1

// Rule awards PointsPerHit for an exact three-way match and nothing otherwise.
type Rule struct {
	PointsPerHit int
}

func DefaultRule() Rule {
	return Rule{PointsPerHit: DefaultPointsPerHit}
}

func (r Rule) Validate() error {
	if r.PointsPerHit <= 0 {
		return fmt.Errorf("points per hit must be > 0, got %d", r.PointsPerHit)
	}
	return nil
}

func (r Rule) Score(result, guess match.Outcome) int {
	if !result.Valid() || result != guess {
		return 0
	}
	return r.PointsPerHit
}

// Score is the computed award for one participant on one match.
type Score struct {
	UserID string
	Points int
}

func (r Rule) ScoreMatch(result match.Outcome, predictions []Prediction) []Score {
	out := make([]Score, 0, len(predictions))
	for _, item := range predictions {
		out = append(out, Score{
			UserID: item.UserID,
			Points: r.Score(result, item.Outcome),
		})
	}
	return out
}

// Resolve returns the status and points of a participant on a match.
// item is nil when the participant did not bet. Stored points win over recomputation.
func (r Rule) Resolve(m match.Match, item *Prediction, open bool) (Status, int) {
	if item == nil {
		switch {
		case m.Finalized:
			return StatusMissed, 0
		case open:
			return StatusOpen, 0
		default:
			return StatusClosed, 0
		}
	}
	if !m.Finalized {
		return StatusPending, 0
	}

	points := r.Score(m.Result, item.Outcome)
	if item.Points != nil {
		points = *item.Points
	}
	if points > 0 {
		return StatusHit, points
	}
	return StatusMiss, 0
}
