package ranking

import (
	"fmt"
	"strconv"
	"strings"
)

// Scope selects the matches whose points are summed. Zero fields mean no restriction
// and every non-zero field must hold.
type Scope struct {
	RoundID        int64
	PoolID         int64
	ChampionshipID int64
	Year           int
}

func (s Scope) IsRound() bool {
	return s.RoundID > 0
}

// Key is stable for equal scopes and is used for cache keys.
func (s Scope) Key() string {
	if s.IsRound() {
		return "round:" + strconv.FormatInt(s.RoundID, 10)
	}
	return fmt.Sprintf("global:pool=%d:championship=%d:year=%d", s.PoolID, s.ChampionshipID, s.Year)
}

// Total is a participant's aggregate over the scored predictions inside a scope.
type Total struct {
	UserID string
	Points int
	Hits   int
	Scored int
}

type Entry struct {
	Position    int
	UserID      string
	DisplayName string
	Points      int
	Hits        int
	Scored      int
	Banned      bool
	Withdrawn   bool
}

func (e Entry) Status() string {
	switch {
	case e.Banned:
		return "banned"
	case e.Withdrawn:
		return "withdrawn"
	default:
		return "active"
	}
}

type Board struct {
	Scope   Scope
	Entries []Entry
}

func normalizeName(v string) string {
	return strings.TrimSpace(v)
}
