package assessment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = eris.New("assessment record not found")

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ db queryable }

// NewRepoPG returns a PostgreSQL-backed Repository. db is usually a
// *pgxpool.Pool.
func NewRepoPG(db queryable) Repository {
	return &repoPG{db: db}
}

const recordCols = `id, user_id, module_type, input_snapshot, result_snapshot,
	risk_percentage, risk_level, recommendations, created_at`

func (r *repoPG) scan(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.UserID, &rec.ModuleType, &rec.InputSnapshot, &rec.ResultSnapshot,
		&rec.RiskPercentage, &rec.RiskLevel, &rec.Recommendations, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	err := r.db.QueryRow(ctx, `
		INSERT INTO assessment_results (id, user_id, module_type, input_snapshot, result_snapshot,
			risk_percentage, risk_level, recommendations)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at`,
		rec.ID, rec.UserID, rec.ModuleType, rec.InputSnapshot, rec.ResultSnapshot,
		rec.RiskPercentage, rec.RiskLevel, rec.Recommendations).Scan(&rec.CreatedAt)
	if err != nil {
		return eris.Wrapf(err, "insert %s assessment", rec.ModuleType)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := r.scan(r.db.QueryRow(ctx, `SELECT `+recordCols+` FROM assessment_results WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "get assessment %s", id)
	}
	return rec, nil
}

func (r *repoPG) ListByUser(ctx context.Context, userID, moduleType string, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM assessment_results
		WHERE user_id = $1 AND ($2 = '' OR module_type = $2)`, userID, moduleType).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "count assessments")
	}
	rows, err := r.db.Query(ctx, `SELECT `+recordCols+` FROM assessment_results
		WHERE user_id = $1 AND ($2 = '' OR module_type = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`, userID, moduleType, limit, offset)
	if err != nil {
		return nil, 0, eris.Wrap(err, "list assessments")
	}
	defer rows.Close()
	var items []*Record
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, 0, eris.Wrap(err, "scan assessment")
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}
