package pool

import "time"

// Pool is the bolão: the top-level betting competition container.
type Pool struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
