package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorsAs(err error, target any) bool { return errors.As(err, target) }

func TestBaseSQLAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	base := &BaseSQLAdapter{}

	assert.NoError(t, base.Close())
	assert.False(t, base.IsConnected())
	assert.ErrorIs(t, base.Exec(ctx, "SELECT 1"), ErrNotConnected)
	assert.ErrorIs(t, base.Ping(ctx), ErrNotConnected)

	rows, err := base.Query(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Nil(t, rows)

	_, err = base.TableMetadataCommon(ctx, "analytics.events", "main", QuestionPlaceholder)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestBaseSQLAdapter_Exec(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		sql       string
		errMsg    string
	}{
		{
			name: "exec success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("SET threads").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			sql: "SET threads = 4",
		},
		{
			name: "exec with error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSTALL nope").WillReturnError(assert.AnError)
			},
			sql:    "INSTALL nope",
			errMsg: "failed to execute SQL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			base := &BaseSQLAdapter{DB: db}
			err = base.Exec(context.Background(), tt.sql)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBaseSQLAdapter_Query(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		sql       string
		wantRows  int
		errMsg    string
	}{
		{
			name: "query success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name"}).
					AddRow(1, "alice").
					AddRow(2, "bob")
				mock.ExpectQuery("SELECT id, name FROM analytics.users").WillReturnRows(rows)
			},
			sql:      "SELECT id, name FROM analytics.users",
			wantRows: 2,
		},
		{
			name: "query with error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT broken").WillReturnError(assert.AnError)
			},
			sql:    "SELECT broken",
			errMsg: "failed to execute query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setupMock(mock)

			base := &BaseSQLAdapter{DB: db}
			rows, err := base.Query(context.Background(), tt.sql)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Nil(t, rows)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			defer func() { _ = rows.Close() }()

			n := 0
			for rows.Next() {
				n++
			}
			require.NoError(t, rows.Err())
			assert.Equal(t, tt.wantRows, n)
		})
	}
}

func TestBaseSQLAdapter_CloseAndPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectClose()

	base := &BaseSQLAdapter{DB: db}
	assert.True(t, base.IsConnected())
	require.NoError(t, base.Ping(context.Background()))
	require.NoError(t, base.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseQualifiedName(t *testing.T) {
	tests := []struct {
		table      string
		wantSchema string
		wantName   string
	}{
		{"analytics.events", "analytics", "events"},
		{"events", "main", "events"},
		{"a.b.c", "main", "a.b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			schema, name := ParseQualifiedName(tt.table, "main")
			assert.Equal(t, tt.wantSchema, schema)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", QuestionPlaceholder(3))
	assert.Equal(t, "$3", DollarPlaceholder(3))
}

func TestTableMetadataCommon(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM information_schema\.columns\s+WHERE table_schema = \$1 AND table_name = \$2`).
		WithArgs("analytics", "events").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
			AddRow("id", "BIGINT", "NO", 1).
			AddRow("ts", "TIMESTAMP", "YES", 2))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM analytics\.events`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	base := &BaseSQLAdapter{DB: db}
	md, err := base.TableMetadataCommon(context.Background(), "analytics.events", "public", DollarPlaceholder)
	require.NoError(t, err)

	assert.Equal(t, "analytics", md.Schema)
	assert.Equal(t, "events", md.Name)
	assert.Equal(t, int64(12), md.RowCount)
	assert.Equal(t, []Column{
		{Name: "id", Type: "BIGINT", Nullable: false, Position: 1},
		{Name: "ts", Type: "TIMESTAMP", Nullable: true, Position: 2},
	}, md.Columns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableMetadataCommon_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("information_schema").
		WithArgs("main", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}))

	base := &BaseSQLAdapter{DB: db}
	_, err = base.TableMetadataCommon(context.Background(), "missing", "main", QuestionPlaceholder)

	var notFound *TableNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Table)
}

func TestTableMetadataCommon_CountFailureIsZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("information_schema").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "ordinal_position"}).
			AddRow("id", "INTEGER", "NO", 1))
	mock.ExpectQuery("SELECT COUNT").WillReturnError(assert.AnError)

	base := &BaseSQLAdapter{DB: db}
	md, err := base.TableMetadataCommon(context.Background(), "analytics.t", "main", QuestionPlaceholder)
	require.NoError(t, err)
	assert.Zero(t, md.RowCount)
}

func TestNewFromDB(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectPing()

	a := NewFromDB(db, "duckdb", nil)
	require.NoError(t, a.Connect(context.Background(), Config{Type: "duckdb"}))
	assert.Equal(t, "duckdb", a.DialectName())
	assert.Equal(t, "duckdb", a.Cfg.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}
