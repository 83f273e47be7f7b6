package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/bolao-sca/internal/domain/match"
	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
	qb "github.com/riskibarqy/bolao-sca/internal/platform/querybuilder"
)

const predictionColumns = "user_id, match_id, outcome, points, submitted_at, scored_at"

// A changed guess drops points computed for the previous one.
const upsertPredictionSuffix = `ON CONFLICT (user_id, match_id) DO UPDATE SET
	outcome = EXCLUDED.outcome,
	submitted_at = EXCLUDED.submitted_at,
	points = NULL,
	scored_at = NULL`

const applyScoresQuery = `
UPDATE predictions AS p
SET points = s.points, scored_at = $1
FROM unnest($2::text[], $3::int[]) AS s(user_id, points)
WHERE p.match_id = $4 AND p.user_id = s.user_id`

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Get(ctx context.Context, userID string, matchID int64) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select(predictionColumns).From("predictions").
		Where(qb.Eq("user_id", userID), qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, crerr.Wrap(err, "build get prediction query")
	}

	var row predictionTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, crerr.Wrapf(err, "get prediction %s/%d", userID, matchID)
	}
	return predictionFromRow(row), true, nil
}

func (r *PredictionRepository) Upsert(ctx context.Context, item prediction.Prediction) error {
	query, args, err := qb.InsertModel("predictions", predictionTableModel{
		UserID:      item.UserID,
		MatchID:     item.MatchID,
		Outcome:     string(item.Outcome),
		SubmittedAt: item.SubmittedAt,
	}, upsertPredictionSuffix)
	if err != nil {
		return crerr.Wrap(err, "build upsert prediction query")
	}

	if _, err := conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "upsert prediction %s/%d", item.UserID, item.MatchID)
	}
	return nil
}

func (r *PredictionRepository) ListByMatch(ctx context.Context, matchID int64) ([]prediction.Prediction, error) {
	query, args, err := qb.Select(predictionColumns).From("predictions").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("user_id ASC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list predictions by match query")
	}
	return r.list(ctx, query, args)
}

func (r *PredictionRepository) ListByUserAndMatches(ctx context.Context, userID string, matchIDs []int64) ([]prediction.Prediction, error) {
	if len(matchIDs) == 0 {
		return []prediction.Prediction{}, nil
	}

	query, args, err := qb.Select(predictionColumns).From("predictions").
		Where(qb.Eq("user_id", userID), qb.In("match_id", int64sToAny(matchIDs))).
		OrderBy("match_id ASC").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list user predictions query")
	}
	return r.list(ctx, query, args)
}

func (r *PredictionRepository) list(ctx context.Context, query string, args []any) ([]prediction.Prediction, error) {
	var rows []predictionTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "select predictions")
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out, nil
}

// ApplyScores overwrites points in one statement, so applying the same scores
// twice leaves the table unchanged.
func (r *PredictionRepository) ApplyScores(ctx context.Context, matchID int64, scores []prediction.Score, scoredAt time.Time) error {
	if len(scores) == 0 {
		return nil
	}

	userIDs := make([]string, 0, len(scores))
	points := make([]int64, 0, len(scores))
	for _, item := range scores {
		userIDs = append(userIDs, item.UserID)
		points = append(points, int64(item.Points))
	}

	if _, err := conn(ctx, r.db).ExecContext(ctx, applyScoresQuery, scoredAt, pq.Array(userIDs), pq.Array(points), matchID); err != nil {
		return crerr.Wrapf(err, "apply scores for match %d", matchID)
	}
	return nil
}

func predictionFromRow(row predictionTableModel) prediction.Prediction {
	points := intPtr(row.Points)
	return prediction.Prediction{
		UserID:      row.UserID,
		MatchID:     row.MatchID,
		Outcome:     match.Outcome(row.Outcome),
		Points:      points,
		SubmittedAt: row.SubmittedAt,
		ScoredAt:    timePtr(row.ScoredAt),
	}
}
