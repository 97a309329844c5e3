package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recordColumns = []string{"id", "user_id", "module_type", "input_snapshot", "result_snapshot",
	"risk_percentage", "risk_level", "recommendations", "created_at"}

func TestRepoPG_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	rec := &Record{
		UserID:          "alice",
		ModuleType:      ModuleStroke,
		InputSnapshot:   json.RawMessage(`{"age":70}`),
		ResultSnapshot:  json.RawMessage(`{}`),
		RiskPercentage:  12.5,
		RiskLevel:       "moderate",
		Recommendations: []string{"Walk daily."},
	}
	mock.ExpectQuery("INSERT INTO assessment_results").
		WithArgs(pgxmock.AnyArg(), "alice", ModuleStroke, rec.InputSnapshot, rec.ResultSnapshot,
			12.5, "moderate", []string{"Walk daily."}).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	require.NoError(t, NewRepoPG(mock).Create(context.Background(), rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, created, rec.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoPG_CreateError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO assessment_results").WillReturnError(errors.New("disk full"))
	err = NewRepoPG(mock).Create(context.Background(), &Record{ModuleType: ModuleStroke})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRepoPG_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM assessment_results WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(recordColumns).AddRow(
			id, "alice", ModuleDementia, json.RawMessage(`{"age":70}`), json.RawMessage(`{"module":"dementia"}`),
			90.0, "high", []string{"See a specialist."}, created))

	rec, err := NewRepoPG(mock).GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "high", rec.RiskLevel)
	assert.Equal(t, []string{"See a specialist."}, rec.Recommendations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoPG_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("FROM assessment_results WHERE id").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err = NewRepoPG(mock).GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepoPG_ListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("alice", ModuleStroke).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs("alice", ModuleStroke, 2, 0).
		WillReturnRows(pgxmock.NewRows(recordColumns).
			AddRow(uuid.New(), "alice", ModuleStroke, json.RawMessage(`{}`), json.RawMessage(`{}`),
				12.5, "moderate", []string{"a"}, created).
			AddRow(uuid.New(), "alice", ModuleStroke, json.RawMessage(`{}`), json.RawMessage(`{}`),
				3.0, "low", []string{"b"}, created.Add(-time.Hour)))

	items, total, err := NewRepoPG(mock).ListByUser(context.Background(), "alice", ModuleStroke, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "moderate", items[0].RiskLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}
