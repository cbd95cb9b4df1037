package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNotConnected is returned by operations on an adapter with no open database.
var ErrNotConnected = errors.New("database connection not established")

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed it in concrete adapters to get Close, Exec, Query and Ping.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return ErrNotConnected
	}
	if _, err := b.DB.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string) (*sql.Rows, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return rows, nil
}

// Ping verifies the connection.
func (b *BaseSQLAdapter) Ping(ctx context.Context) error {
	if b.DB == nil {
		return ErrNotConnected
	}
	return b.DB.PingContext(ctx)
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// ParseQualifiedName splits a table reference into schema and name, using
// defaultSchema when none is given.
func ParseQualifiedName(table, defaultSchema string) (schema, name string) {
	if parts := strings.Split(table, "."); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return defaultSchema, table
}

// Placeholder formats the nth bind parameter for a dialect.
type Placeholder func(n int) string

// QuestionPlaceholder renders every parameter as "?".
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder renders parameters as $1, $2, ...
func DollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

// TableMetadataCommon reads column metadata from information_schema.columns.
// Table names must already be validated by the caller.
func (b *BaseSQLAdapter) TableMetadataCommon(ctx context.Context, table, defaultSchema string, ph Placeholder) (*Metadata, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}

	schema, tableName := ParseQualifiedName(table, defaultSchema)

	//nolint:gosec // placeholders are fixed strings
	query := fmt.Sprintf(`
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, ph(1), ph(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, &TableNotFoundError{Table: table}
	}

	return &Metadata{
		Schema:   schema,
		Name:     tableName,
		Columns:  columns,
		RowCount: b.CountRows(ctx, schema+"."+tableName),
	}, nil
}

// CountRows returns COUNT(*) for a validated table name, or 0 if the count fails.
func (b *BaseSQLAdapter) CountRows(ctx context.Context, qualified string) int64 {
	var n int64
	//nolint:gosec // table names are validated by caller
	if err := b.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+qualified).Scan(&n); err != nil {
		return 0
	}
	return n
}

// TableNotFoundError is returned when metadata lookup finds no columns.
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %s not found", e.Table)
}

// DBAdapter wraps an already open *sql.DB. Connect only pings it.
type DBAdapter struct {
	BaseSQLAdapter
	dialect       string
	defaultSchema string
	placeholder   Placeholder
}

// NewFromDB wraps db as an Adapter reporting the given dialect. Metadata
// lookups use information_schema with "?" placeholders and schema "main".
func NewFromDB(db *sql.DB, dialect string, logger *slog.Logger) *DBAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DBAdapter{
		BaseSQLAdapter: BaseSQLAdapter{DB: db, Logger: logger},
		dialect:        dialect,
		defaultSchema:  "main",
		placeholder:    QuestionPlaceholder,
	}
}

// Connect checks the wrapped handle is usable.
func (a *DBAdapter) Connect(ctx context.Context, cfg Config) error {
	a.Cfg = cfg
	return a.Ping(ctx)
}

// TableMetadata reads metadata through information_schema.
func (a *DBAdapter) TableMetadata(ctx context.Context, table string) (*Metadata, error) {
	return a.TableMetadataCommon(ctx, table, a.defaultSchema, a.placeholder)
}

// DialectName returns the dialect given to NewFromDB.
func (a *DBAdapter) DialectName() string { return a.dialect }

var _ Adapter = (*DBAdapter)(nil)
