// Package driver exposes a remote query engine through database/sql.
//
//	db, err := sql.Open("leapquery", "https://engine.example.com?token=...")
//
// Queries are validated by the guard (unless guard=false), parameters are
// inlined as literals, and each query is one HTTP request. Transactions are
// not supported.
package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"slices"

	"github.com/leapstack-labs/leapquery/pkg/guard"
	"github.com/leapstack-labs/leapquery/pkg/remote"
	"github.com/leapstack-labs/leapquery/pkg/wire"
)

// DriverName is the name registered with database/sql.
const DriverName = "leapquery"

func init() {
	sql.Register(DriverName, &Driver{})
}

var (
	ErrTransactionsUnsupported = errors.New("leapquery: transactions are not supported")
	ErrNamedArgs               = errors.New("leapquery: named arguments are not supported, use $N placeholders")
)

// RejectedError is returned when the guard refuses a query. Nothing is sent.
type RejectedError struct {
	Result guard.ValidationResult
}

func (e *RejectedError) Error() string {
	return "leapquery: query rejected: " + e.Result.Error()
}

// Driver implements driver.Driver and driver.DriverContext.
type Driver struct{}

// Open parses name as a DSN and returns a connection.
func (d *Driver) Open(name string) (driver.Conn, error) {
	c, err := d.OpenConnector(name)
	if err != nil {
		return nil, err
	}
	return c.Connect(context.Background())
}

// OpenConnector parses name as a DSN.
func (d *Driver) OpenConnector(name string) (driver.Connector, error) {
	opts, err := ParseDSN(name)
	if err != nil {
		return nil, err
	}
	return NewConnector(opts), nil
}

// Connector holds one remote.Conn shared by every database/sql connection.
type Connector struct {
	opts   Options
	remote *remote.Conn
	guard  *guard.Guard
}

// NewConnector builds a Connector for use with sql.OpenDB.
func NewConnector(opts Options) *Connector {
	c := &Connector{
		opts: opts,
		remote: remote.New(remote.Config{
			Endpoint:  opts.Endpoint,
			Token:     opts.Token,
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
			Logger:    opts.Logger,
		}),
	}
	if opts.Guard {
		c.guard = guard.New(opts.GuardConfig, opts.Logger)
	}
	return c
}

// Connect returns a connection. No network traffic happens.
func (c *Connector) Connect(context.Context) (driver.Conn, error) {
	return &conn{connector: c}, nil
}

// Driver returns the package Driver.
func (c *Connector) Driver() driver.Driver { return &Driver{} }

type conn struct {
	connector *Connector
}

var (
	_ driver.Conn               = (*conn)(nil)
	_ driver.QueryerContext     = (*conn)(nil)
	_ driver.ExecerContext      = (*conn)(nil)
	_ driver.ConnPrepareContext = (*conn)(nil)
	_ driver.Pinger             = (*conn)(nil)
	_ driver.NamedValueChecker  = (*conn)(nil)
)

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *conn) PrepareContext(_ context.Context, query string) (driver.Stmt, error) {
	return &stmt{conn: c, query: query}, nil
}

func (c *conn) Close() error { return nil }

func (c *conn) Begin() (driver.Tx, error) { return nil, ErrTransactionsUnsupported }

func (c *conn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return nil, ErrTransactionsUnsupported
}

// Ping does not contact the engine.
func (c *conn) Ping(context.Context) error { return nil }

// CheckNamedValue accepts anything wire.FromAny can represent, so slices and
// maps reach the engine as array and JSON literals.
func (c *conn) CheckNamedValue(nv *driver.NamedValue) error {
	if nv.Name != "" {
		return ErrNamedArgs
	}
	v, err := wire.FromAny(nv.Value)
	if err != nil {
		return err
	}
	nv.Value = v
	return nil
}

func (c *conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	res, err := c.run(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return newRows(res), nil
}

func (c *conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if _, err := c.run(ctx, query, args); err != nil {
		return nil, err
	}
	return driver.ResultNoRows, nil
}

func (c *conn) run(ctx context.Context, query string, args []driver.NamedValue) (*resultSet, error) {
	if g := c.connector.guard; g != nil {
		if verdict := g.Check(query); !verdict.Valid {
			return nil, &RejectedError{Result: verdict}
		}
	}

	params, err := positional(args)
	if err != nil {
		return nil, err
	}

	res, err := c.connector.remote.Run(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	return &resultSet{columns: res.ColumnNames(), rows: res.Rows()}, nil
}

// positional orders args by ordinal and rejects named ones.
func positional(args []driver.NamedValue) ([]any, error) {
	sorted := slices.Clone(args)
	slices.SortFunc(sorted, func(a, b driver.NamedValue) int { return a.Ordinal - b.Ordinal })

	params := make([]any, len(sorted))
	for i, nv := range sorted {
		if nv.Name != "" {
			return nil, ErrNamedArgs
		}
		params[i] = nv.Value
	}
	return params, nil
}

type stmt struct {
	conn  *conn
	query string
}

var (
	_ driver.StmtQueryContext = (*stmt)(nil)
	_ driver.StmtExecContext  = (*stmt)(nil)
)

func (s *stmt) Close() error { return nil }

// NumInput returns -1: placeholders are not counted client-side.
func (s *stmt) NumInput() int { return -1 }

func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), named(args))
}

func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), named(args))
}

func (s *stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	return s.conn.ExecContext(ctx, s.query, args)
}

func (s *stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	return s.conn.QueryContext(ctx, s.query, args)
}

func named(args []driver.Value) []driver.NamedValue {
	out := make([]driver.NamedValue, len(args))
	for i, v := range args {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return out
}
