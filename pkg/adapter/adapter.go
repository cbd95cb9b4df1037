// Package adapter defines the contract between the reference query engine
// and the databases it serves, plus a registry of named implementations.
//
// Concrete adapters live in pkg/adapters/ subdirectories and register
// themselves from init. Import them with a blank identifier.
package adapter

import (
	"context"
	"database/sql"
)

// Config holds connection settings for an adapter. Fields that do not apply
// to a given engine are ignored.
type Config struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	ReadOnly bool
	Options  map[string]string
	Params   map[string]any
}

// Column describes a table column.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Position int    `json:"position"`
}

// Metadata describes a table.
type Metadata struct {
	Schema   string   `json:"schema"`
	Name     string   `json:"name"`
	Columns  []Column `json:"columns"`
	RowCount int64    `json:"rowCount"`
}

// Adapter is a connection to one database engine.
type Adapter interface {
	// Connect opens the connection described by cfg.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the connection.
	Close() error

	// Query runs sql and returns the open rows. The caller closes them.
	Query(ctx context.Context, sql string) (*sql.Rows, error)

	// Ping checks the connection is alive.
	Ping(ctx context.Context) error

	// TableMetadata returns the columns and row count of a schema-qualified table.
	TableMetadata(ctx context.Context, table string) (*Metadata, error)

	// DialectName names the engine's SQL dialect.
	DialectName() string
}
