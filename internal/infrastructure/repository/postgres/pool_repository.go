package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/bolao-sca/internal/domain/championship"
	"github.com/riskibarqy/bolao-sca/internal/domain/pool"
	qb "github.com/riskibarqy/bolao-sca/internal/platform/querybuilder"
)

const (
	poolColumns         = "id, name, created_at"
	championshipColumns = "id, pool_id, name, year, created_at"
)

type PoolRepository struct {
	db *sqlx.DB
}

func NewPoolRepository(db *sqlx.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

func (r *PoolRepository) GetByID(ctx context.Context, id int64) (pool.Pool, bool, error) {
	query, args, err := qb.Select(poolColumns).From("pools").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return pool.Pool{}, false, crerr.Wrap(err, "build get pool query")
	}

	var row poolTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pool.Pool{}, false, nil
		}
		return pool.Pool{}, false, crerr.Wrapf(err, "get pool %d", id)
	}
	return poolFromRow(row), true, nil
}

func (r *PoolRepository) Create(ctx context.Context, item pool.Pool) (pool.Pool, error) {
	query, args, err := qb.InsertModel("pools", poolTableModel{
		Name:      item.Name,
		CreatedAt: item.CreatedAt,
	}, "RETURNING "+poolColumns)
	if err != nil {
		return pool.Pool{}, crerr.Wrap(err, "build insert pool query")
	}

	var row poolTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		return pool.Pool{}, crerr.Wrap(err, "insert pool")
	}
	return poolFromRow(row), nil
}

func poolFromRow(row poolTableModel) pool.Pool {
	return pool.Pool{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}
}

type ChampionshipRepository struct {
	db *sqlx.DB
}

func NewChampionshipRepository(db *sqlx.DB) *ChampionshipRepository {
	return &ChampionshipRepository{db: db}
}

func (r *ChampionshipRepository) GetByID(ctx context.Context, id int64) (championship.Championship, bool, error) {
	query, args, err := qb.Select(championshipColumns).From("championships").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return championship.Championship{}, false, crerr.Wrap(err, "build get championship query")
	}

	var row championshipTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return championship.Championship{}, false, nil
		}
		return championship.Championship{}, false, crerr.Wrapf(err, "get championship %d", id)
	}
	return championshipFromRow(row), true, nil
}

func (r *ChampionshipRepository) ListByPool(ctx context.Context, poolID int64) ([]championship.Championship, error) {
	query, args, err := qb.Select(championshipColumns).From("championships").
		Where(qb.Eq("pool_id", poolID)).
		OrderBy("year DESC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list championships query")
	}

	var rows []championshipTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrapf(err, "list championships by pool %d", poolID)
	}

	out := make([]championship.Championship, 0, len(rows))
	for _, row := range rows {
		out = append(out, championshipFromRow(row))
	}
	return out, nil
}

func (r *ChampionshipRepository) Create(ctx context.Context, item championship.Championship) (championship.Championship, error) {
	query, args, err := qb.InsertModel("championships", championshipTableModel{
		PoolID:    item.PoolID,
		Name:      item.Name,
		Year:      item.Year,
		CreatedAt: item.CreatedAt,
	}, "RETURNING "+championshipColumns)
	if err != nil {
		return championship.Championship{}, crerr.Wrap(err, "build insert championship query")
	}

	var row championshipTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		return championship.Championship{}, crerr.Wrap(err, "insert championship")
	}
	return championshipFromRow(row), nil
}

func championshipFromRow(row championshipTableModel) championship.Championship {
	return championship.Championship{
		ID:        row.ID,
		PoolID:    row.PoolID,
		Name:      row.Name,
		Year:      row.Year,
		CreatedAt: row.CreatedAt,
	}
}
