package round

import "time"

// Round is a batch of matches sharing one betting deadline.
// Finalized only ever moves from false to true.
type Round struct {
	ID             int64
	ChampionshipID int64
	Name           string
	Finalized      bool
	FinalizedAt    *time.Time
	CreatedAt      time.Time
}

// Filter narrows List. Zero values mean no restriction.
type Filter struct {
	ChampionshipID int64
}
