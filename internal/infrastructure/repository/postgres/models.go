package postgres

import (
	"database/sql"
	"time"
)

type poolTableModel struct {
	ID        int64     `db:"id,readonly"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type championshipTableModel struct {
	ID        int64     `db:"id,readonly"`
	PoolID    int64     `db:"pool_id"`
	Name      string    `db:"name"`
	Year      int       `db:"year"`
	CreatedAt time.Time `db:"created_at"`
}

type roundTableModel struct {
	ID             int64        `db:"id,readonly"`
	ChampionshipID int64        `db:"championship_id"`
	Name           string       `db:"name"`
	Finalized      bool         `db:"finalized"`
	FinalizedAt    sql.NullTime `db:"finalized_at"`
	CreatedAt      time.Time    `db:"created_at"`
}

type matchTableModel struct {
	ID           int64          `db:"id,readonly"`
	RoundID      int64          `db:"round_id"`
	HomeTeam     string         `db:"home_team"`
	AwayTeam     string         `db:"away_team"`
	KickoffAt    sql.NullTime   `db:"kickoff_at"`
	Result       sql.NullString `db:"result"`
	DisplayScore string         `db:"display_score"`
	Finalized    bool           `db:"finalized"`
	FinalizedAt  sql.NullTime   `db:"finalized_at"`
	CreatedAt    time.Time      `db:"created_at"`
}

type participantTableModel struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Nickname   string    `db:"nickname"`
	Authorized bool      `db:"authorized"`
	Banned     bool      `db:"banned"`
	Withdrawn  bool      `db:"withdrawn"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type predictionTableModel struct {
	UserID      string        `db:"user_id"`
	MatchID     int64         `db:"match_id"`
	Outcome     string        `db:"outcome"`
	Points      sql.NullInt32 `db:"points"`
	SubmittedAt time.Time     `db:"submitted_at"`
	ScoredAt    sql.NullTime  `db:"scored_at"`
}

type rankingTotalRow struct {
	UserID string `db:"user_id"`
	Points int    `db:"points"`
	Hits   int    `db:"hits"`
	Scored int    `db:"scored"`
}
