package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/bolao-sca/internal/domain/round"
	qb "github.com/riskibarqy/bolao-sca/internal/platform/querybuilder"
)

const roundColumns = "id, championship_id, name, finalized, finalized_at, created_at"

type RoundRepository struct {
	db *sqlx.DB
}

func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) GetByID(ctx context.Context, id int64) (round.Round, bool, error) {
	return r.get(ctx, id, qb.LockNone)
}

func (r *RoundRepository) GetForShare(ctx context.Context, id int64) (round.Round, bool, error) {
	return r.get(ctx, id, qb.LockForShare)
}

func (r *RoundRepository) GetForUpdate(ctx context.Context, id int64) (round.Round, bool, error) {
	return r.get(ctx, id, qb.LockForUpdate)
}

func (r *RoundRepository) get(ctx context.Context, id int64, lock qb.RowLock) (round.Round, bool, error) {
	query, args, err := qb.Select(roundColumns).From("rounds").
		Where(qb.Eq("id", id)).
		Lock(lock).
		ToSQL()
	if err != nil {
		return round.Round{}, false, crerr.Wrap(err, "build get round query")
	}

	var row roundTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, crerr.Wrapf(err, "get round %d", id)
	}
	return roundFromRow(row), true, nil
}

func (r *RoundRepository) List(ctx context.Context, filter round.Filter) ([]round.Round, error) {
	builder := qb.Select(roundColumns).From("rounds").OrderBy("id ASC")
	if filter.ChampionshipID > 0 {
		builder = builder.Where(qb.Eq("championship_id", filter.ChampionshipID))
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list rounds query")
	}

	var rows []roundTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list rounds")
	}

	out := make([]round.Round, 0, len(rows))
	for _, row := range rows {
		out = append(out, roundFromRow(row))
	}
	return out, nil
}

func (r *RoundRepository) Create(ctx context.Context, item round.Round) (round.Round, error) {
	query, args, err := qb.InsertModel("rounds", roundTableModel{
		ChampionshipID: item.ChampionshipID,
		Name:           item.Name,
		Finalized:      item.Finalized,
		FinalizedAt:    nullTime(item.FinalizedAt),
		CreatedAt:      item.CreatedAt,
	}, "RETURNING "+roundColumns)
	if err != nil {
		return round.Round{}, crerr.Wrap(err, "build insert round query")
	}

	var row roundTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		return round.Round{}, crerr.Wrap(err, "insert round")
	}
	return roundFromRow(row), nil
}

// MarkFinalized is a no-op for a round that is already finalized so the first
// finalization time is kept.
func (r *RoundRepository) MarkFinalized(ctx context.Context, id int64, at time.Time) error {
	query, args, err := qb.Update("rounds").
		Set("finalized", true).
		Set("finalized_at", at).
		Where(qb.Eq("id", id), qb.Eq("finalized", false)).
		ToSQL()
	if err != nil {
		return crerr.Wrap(err, "build finalize round query")
	}

	if _, err := conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "finalize round %d", id)
	}
	return nil
}

func roundFromRow(row roundTableModel) round.Round {
	return round.Round{
		ID:             row.ID,
		ChampionshipID: row.ChampionshipID,
		Name:           row.Name,
		Finalized:      row.Finalized,
		FinalizedAt:    timePtr(row.FinalizedAt),
		CreatedAt:      row.CreatedAt,
	}
}
