package championship

import "time"

// Championship is a competition inside a pool that groups rounds.
type Championship struct {
	ID        int64
	PoolID    int64
	Name      string
	Year      int
	CreatedAt time.Time
}
