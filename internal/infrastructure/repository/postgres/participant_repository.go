package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/bolao-sca/internal/domain/participant"
	qb "github.com/riskibarqy/bolao-sca/internal/platform/querybuilder"
)

const participantColumns = "id, name, nickname, authorized, banned, withdrawn, created_at, updated_at"

// created_at survives updates.
const upsertParticipantSuffix = `ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	nickname = EXCLUDED.nickname,
	authorized = EXCLUDED.authorized,
	banned = EXCLUDED.banned,
	withdrawn = EXCLUDED.withdrawn,
	updated_at = EXCLUDED.updated_at
RETURNING ` + participantColumns

type ParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (participant.Participant, bool, error) {
	query, args, err := qb.Select(participantColumns).From("participants").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return participant.Participant{}, false, crerr.Wrap(err, "build get participant query")
	}

	var row participantTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return participant.Participant{}, false, nil
		}
		return participant.Participant{}, false, crerr.Wrapf(err, "get participant %s", id)
	}
	return participantFromRow(row), true, nil
}

func (r *ParticipantRepository) List(ctx context.Context) ([]participant.Participant, error) {
	query, args, err := qb.Select(participantColumns).From("participants").
		OrderBy("id ASC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list participants query")
	}

	var rows []participantTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "list participants")
	}

	out := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, participantFromRow(row))
	}
	return out, nil
}

func (r *ParticipantRepository) Upsert(ctx context.Context, item participant.Participant) (participant.Participant, error) {
	query, args, err := qb.InsertModel("participants", participantTableModel{
		ID:         item.ID,
		Name:       item.Name,
		Nickname:   item.Nickname,
		Authorized: item.Authorized,
		Banned:     item.Banned,
		Withdrawn:  item.Withdrawn,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}, upsertParticipantSuffix)
	if err != nil {
		return participant.Participant{}, crerr.Wrap(err, "build upsert participant query")
	}

	var row participantTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		return participant.Participant{}, crerr.Wrapf(err, "upsert participant %s", item.ID)
	}
	return participantFromRow(row), nil
}

func participantFromRow(row participantTableModel) participant.Participant {
	return participant.Participant{
		ID:         row.ID,
		Name:       row.Name,
		Nickname:   row.Nickname,
		Authorized: row.Authorized,
		Banned:     row.Banned,
		Withdrawn:  row.Withdrawn,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
