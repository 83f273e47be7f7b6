package match

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidOutcome = errors.New("invalid outcome")

// Outcome is the three-way result classification shared by results and predictions.
type Outcome string

const (
	OutcomeHomeWin Outcome = "HOME_WIN"
	OutcomeAwayWin Outcome = "AWAY_WIN"
	OutcomeDraw    Outcome = "DRAW"
)

func ParseOutcome(raw string) (Outcome, error) {
	switch value := Outcome(strings.ToUpper(strings.TrimSpace(raw))); value {
	case OutcomeHomeWin, OutcomeAwayWin, OutcomeDraw:
		return value, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, raw)
	}
}

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeHomeWin, OutcomeAwayWin, OutcomeDraw:
		return true
	default:
		return false
	}
}

// Match is one fixture inside a round. A nil KickoffAt means the date is not defined yet.
// Finalized implies Result is set.
type Match struct {
	ID           int64
	RoundID      int64
	HomeTeam     string
	AwayTeam     string
	KickoffAt    *time.Time
	Result       Outcome
	DisplayScore string
	Finalized    bool
	FinalizedAt  *time.Time
	CreatedAt    time.Time
}

func (m Match) HasResult() bool {
	return m.Result != ""
}
