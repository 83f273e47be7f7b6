package postgres

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
	"github.com/riskibarqy/bolao-sca/internal/infrastructure/repository/memory"
)

var seedSequences = []string{"pools", "championships", "rounds", "matches"}

// BootstrapSeed loads data into an empty database. A database that already has a
// pool is left untouched.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, data memory.SeedData, rule prediction.Rule, now time.Time) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM pools`); err != nil {
		return crerr.Wrap(err, "count pools for bootstrap seed")
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin seed tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	exec := func(label, query string, arg map[string]any) error {
		sqlQuery, args, err := sqlx.Named(query, arg)
		if err != nil {
			return crerr.Wrapf(err, "bind seed %s query", label)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(sqlQuery), args...); err != nil {
			return crerr.Wrapf(err, "seed %s", label)
		}
		return nil
	}

	for _, p := range data.Pools {
		if err := exec(fmt.Sprintf("pool %d", p.ID), `
INSERT INTO pools (id, name, created_at)
VALUES (:id, :name, :created_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":         p.ID,
			"name":       p.Name,
			"created_at": now,
		}); err != nil {
			return err
		}
	}

	for _, c := range data.Championships {
		if err := exec(fmt.Sprintf("championship %d", c.ID), `
INSERT INTO championships (id, pool_id, name, year, created_at)
VALUES (:id, :pool_id, :name, :year, :created_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":         c.ID,
			"pool_id":    c.PoolID,
			"name":       c.Name,
			"year":       c.Year,
			"created_at": now,
		}); err != nil {
			return err
		}
	}

	for _, r := range data.Rounds {
		var finalizedAt *time.Time
		if r.Finalized {
			finalizedAt = &now
		}
		if err := exec(fmt.Sprintf("round %d", r.ID), `
INSERT INTO rounds (id, championship_id, name, finalized, finalized_at, created_at)
VALUES (:id, :championship_id, :name, :finalized, :finalized_at, :created_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":              r.ID,
			"championship_id": r.ChampionshipID,
			"name":            r.Name,
			"finalized":       r.Finalized,
			"finalized_at":    nullTime(finalizedAt),
			"created_at":      now,
		}); err != nil {
			return err
		}
	}

	results := make(map[int64]match.Outcome, len(data.Matches))
	for _, m := range data.Matches {
		var (
			result      match.Outcome
			finalizedAt *time.Time
		)
		if m.Result != "" {
			outcome, err := match.ParseOutcome(m.Result)
			if err != nil {
				return crerr.Wrapf(err, "seed match %d", m.ID)
			}
			result = outcome
			finalizedAt = &now
			results[m.ID] = outcome
		}
		if err := exec(fmt.Sprintf("match %d", m.ID), `
INSERT INTO matches (id, round_id, home_team, away_team, kickoff_at, result, display_score, finalized, finalized_at, created_at)
VALUES (:id, :round_id, :home_team, :away_team, :kickoff_at, :result, :display_score, :finalized, :finalized_at, :created_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":            m.ID,
			"round_id":      m.RoundID,
			"home_team":     m.HomeTeam,
			"away_team":     m.AwayTeam,
			"kickoff_at":    nullTime(m.KickoffAt),
			"result":        nullOutcome(result),
			"display_score": m.DisplayScore,
			"finalized":     result != "",
			"finalized_at":  nullTime(finalizedAt),
			"created_at":    now,
		}); err != nil {
			return err
		}
	}

	for _, p := range data.Participants {
		if err := exec("participant "+p.ID, `
INSERT INTO participants (id, name, nickname, authorized, banned, withdrawn, created_at, updated_at)
VALUES (:id, :name, :nickname, :authorized, :banned, :withdrawn, :created_at, :created_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":         p.ID,
			"name":       p.Name,
			"nickname":   p.Nickname,
			"authorized": p.Authorized,
			"banned":     p.Banned,
			"withdrawn":  p.Withdrawn,
			"created_at": now,
		}); err != nil {
			return err
		}
	}

	for _, p := range data.Predictions {
		outcome, err := match.ParseOutcome(p.Outcome)
		if err != nil {
			return crerr.Wrapf(err, "seed prediction %s/%d", p.UserID, p.MatchID)
		}
		var (
			points   *int
			scoredAt *time.Time
		)
		if result, ok := results[p.MatchID]; ok {
			v := rule.Score(result, outcome)
			points = &v
			scoredAt = &now
		}
		if err := exec(fmt.Sprintf("prediction %s/%d", p.UserID, p.MatchID), `
INSERT INTO predictions (user_id, match_id, outcome, points, submitted_at, scored_at)
VALUES (:user_id, :match_id, :outcome, :points, :submitted_at, :scored_at)
ON CONFLICT (user_id, match_id) DO NOTHING`, map[string]any{
			"user_id":      p.UserID,
			"match_id":     p.MatchID,
			"outcome":      string(outcome),
			"points":       nullInt(points),
			"submitted_at": now,
			"scored_at":    nullTime(scoredAt),
		}); err != nil {
			return err
		}
	}

	// Explicit ids do not advance the serial sequences.
	for _, table := range seedSequences {
		query := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`, table, table)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return crerr.Wrapf(err, "reset %s sequence", table)
		}
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit seed tx")
	}
	return nil
}
