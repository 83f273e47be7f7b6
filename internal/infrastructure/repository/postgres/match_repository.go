package postgres

import (
	"context"
	"database/sql"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	qb "github.com/riskibarqy/bolao-sca/internal/platform/querybuilder"
)

const (
	matchColumns = "id, round_id, home_team, away_team, kickoff_at, result, display_score, finalized, finalized_at, created_at"
	matchOrder   = "kickoff_at ASC NULLS LAST"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	return r.get(ctx, id, qb.LockNone)
}

func (r *MatchRepository) GetForUpdate(ctx context.Context, id int64) (match.Match, bool, error) {
	return r.get(ctx, id, qb.LockForUpdate)
}

func (r *MatchRepository) get(ctx context.Context, id int64, lock qb.RowLock) (match.Match, bool, error) {
	query, args, err := qb.Select(matchColumns).From("matches").
		Where(qb.Eq("id", id)).
		Lock(lock).
		ToSQL()
	if err != nil {
		return match.Match{}, false, crerr.Wrap(err, "build get match query")
	}

	var row matchTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, crerr.Wrapf(err, "get match %d", id)
	}
	return matchFromRow(row), true, nil
}

func (r *MatchRepository) ListByRound(ctx context.Context, roundID int64) ([]match.Match, error) {
	return r.ListByRounds(ctx, []int64{roundID})
}

func (r *MatchRepository) ListByRounds(ctx context.Context, roundIDs []int64) ([]match.Match, error) {
	if len(roundIDs) == 0 {
		return []match.Match{}, nil
	}

	query, args, err := qb.Select(matchColumns).From("matches").
		Where(qb.In("round_id", int64sToAny(roundIDs))).
		OrderBy(matchOrder, "id ASC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list matches query")
	}

	var rows []matchTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list matches by rounds")
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) (match.Match, error) {
	query, args, err := qb.InsertModel("matches", matchTableModel{
		RoundID:      item.RoundID,
		HomeTeam:     item.HomeTeam,
		AwayTeam:     item.AwayTeam,
		KickoffAt:    nullTime(item.KickoffAt),
		Result:       nullOutcome(item.Result),
		DisplayScore: item.DisplayScore,
		Finalized:    item.Finalized,
		FinalizedAt:  nullTime(item.FinalizedAt),
		CreatedAt:    item.CreatedAt,
	}, "RETURNING "+matchColumns)
	if err != nil {
		return match.Match{}, crerr.Wrap(err, "build insert match query")
	}

	var row matchTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		return match.Match{}, crerr.Wrap(err, "insert match")
	}
	return matchFromRow(row), nil
}

// SaveResult writes the result of a match that has none yet. Results are never
// overwritten.
func (r *MatchRepository) SaveResult(ctx context.Context, item match.Match) error {
	query, args, err := qb.Update("matches").
		Set("result", nullOutcome(item.Result)).
		Set("display_score", item.DisplayScore).
		Set("finalized", item.Finalized).
		Set("finalized_at", nullTime(item.FinalizedAt)).
		Where(qb.Eq("id", item.ID), qb.Eq("finalized", false)).
		ToSQL()
	if err != nil {
		return crerr.Wrap(err, "build save match result query")
	}

	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return crerr.Wrapf(err, "save match %d result", item.ID)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return crerr.Wrapf(err, "save match %d result rows", item.ID)
	}
	if affected == 0 {
		return crerr.Newf("match %d not found or already has a result", item.ID)
	}
	return nil
}

func nullOutcome(v match.Outcome) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(v), Valid: true}
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:           row.ID,
		RoundID:      row.RoundID,
		HomeTeam:     row.HomeTeam,
		AwayTeam:     row.AwayTeam,
		KickoffAt:    timePtr(row.KickoffAt),
		Result:       match.Outcome(row.Result.String),
		DisplayScore: row.DisplayScore,
		Finalized:    row.Finalized,
		FinalizedAt:  timePtr(row.FinalizedAt),
		CreatedAt:    row.CreatedAt,
	}
}
