package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/bolao-sca/internal/domain/ranking"
	qb "github.com/riskibarqy/bolao-sca/internal/platform/querybuilder"
)

type RankingRepository struct {
	db *sqlx.DB
}

func NewRankingRepository(db *sqlx.DB) *RankingRepository {
	return &RankingRepository{db: db}
}

// Totals sums scored predictions on finalized matches inside scope.
func (r *RankingRepository) Totals(ctx context.Context, scope ranking.Scope) ([]ranking.Total, error) {
	query, args, err := totalsQuery(scope)
	if err != nil {
		return nil, crerr.Wrap(err, "build ranking totals query")
	}

	var rows []rankingTotalRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrapf(err, "select ranking totals %s", scope.Key())
	}

	out := make([]ranking.Total, 0, len(rows))
	for _, row := range rows {
		out = append(out, ranking.Total{
			UserID: row.UserID,
			Points: row.Points,
			Hits:   row.Hits,
			Scored: row.Scored,
		})
	}
	return out, nil
}

func totalsQuery(scope ranking.Scope) (string, []any, error) {
	builder := qb.Select(
		"p.user_id",
		"COALESCE(SUM(p.points), 0) AS points",
		"COUNT(*) FILTER (WHERE p.points > 0) AS hits",
		"COUNT(*) AS scored",
	).From("predictions p").
		Join("JOIN matches m ON m.id = p.match_id").
		Where(qb.Expr("p.points IS NOT NULL"), qb.Eq("m.finalized", true))

	if scope.RoundID > 0 {
		builder = builder.Where(qb.Eq("m.round_id", scope.RoundID))
	}
	if scope.ChampionshipID > 0 || scope.PoolID > 0 || scope.Year > 0 {
		builder = builder.Join("JOIN rounds r ON r.id = m.round_id")
	}
	if scope.ChampionshipID > 0 {
		builder = builder.Where(qb.Eq("r.championship_id", scope.ChampionshipID))
	}
	if scope.PoolID > 0 || scope.Year > 0 {
		builder = builder.Join("JOIN championships c ON c.id = r.championship_id")
	}
	if scope.PoolID > 0 {
		builder = builder.Where(qb.Eq("c.pool_id", scope.PoolID))
	}
	if scope.Year > 0 {
		builder = builder.Where(qb.Eq("c.year", scope.Year))
	}

	return builder.GroupBy("p.user_id").OrderBy("p.user_id ASC").ToSQL()
}
