package db

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFiles() fstest.MapFS {
	return fstest.MapFS{
		"002_indexes.sql":  {Data: []byte("CREATE INDEX idx ON assessment_results (user_id);")},
		"001_results.sql":  {Data: []byte("CREATE TABLE assessment_results (id UUID PRIMARY KEY);")},
		"README.md":        {Data: []byte("not a migration")},
		"notes.sql":        {Data: []byte("-- no version prefix")},
		"abc_invalid.sql":  {Data: []byte("-- non-numeric prefix")},
		"nested/003_x.sql": {Data: []byte("-- ignored, not at root")},
	}
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := NewMigrator(nil, testFiles()).LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "001_results.sql", migrations[0].Name)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE assessment_results")
	assert.Equal(t, 2, migrations[1].Version)
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	files := fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"01_b.sql":  {Data: []byte("SELECT 2;")},
	}
	_, err := NewMigrator(nil, files).LoadMigrations()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate migration version 1")
}

func TestLoadMigrations_Empty(t *testing.T) {
	migrations, err := NewMigrator(nil, fstest.MapFS{}).LoadMigrations()
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestUp_FreshDB(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT version, applied_at FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"version", "applied_at"}))
	for _, name := range []string{"001_results.sql", "002_indexes.sql"} {
		mock.ExpectBegin()
		mock.ExpectExec("CREATE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WithArgs(pgxmock.AnyArg(), name).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
	}

	n, err := NewMigrator(mock, testFiles()).Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUp_SkipsApplied(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT version, applied_at FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"version", "applied_at"}).AddRow(1, time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE INDEX").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs(2, "002_indexes.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := NewMigrator(mock, testFiles()).Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUp_FailureStopsAndRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT version, applied_at FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"version", "applied_at"}))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE assessment_results").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	n, err := NewMigrator(mock, testFiles()).Up(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, err.Error(), "001_results.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT version, applied_at FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"version", "applied_at"}).AddRow(1, at))

	statuses, err := NewMigrator(mock, testFiles()).Status(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Applied)
	require.NotNil(t, statuses[0].AppliedAt)
	assert.Equal(t, at, *statuses[0].AppliedAt)
	assert.False(t, statuses[1].Applied)
	assert.Nil(t, statuses[1].AppliedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
