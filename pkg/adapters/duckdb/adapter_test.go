package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/leapquery/internal/testutil"
	"github.com/leapstack-labs/leapquery/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adapterConfig(path string, readOnly bool) adapter.Config {
	return adapter.Config{Type: "duckdb", Path: path, ReadOnly: readOnly}
}

func connect(t *testing.T, cfg adapter.Config) *Adapter {
	t.Helper()
	adp := New(testutil.NewTestLogger(t))
	require.NoError(t, adp.Connect(context.Background(), cfg))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestAdapter_Registered(t *testing.T) {
	assert.True(t, adapter.IsRegistered("duckdb"))

	a, err := adapter.NewAdapter(adapter.Config{Type: "duckdb"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "duckdb", a.DialectName())
}

func TestAdapter_Connect(t *testing.T) {
	t.Run("in-memory", func(t *testing.T) {
		adp := connect(t, adapterConfig(":memory:", false))
		assert.True(t, adp.IsConnected())
		assert.NoError(t, adp.Ping(context.Background()))
	})

	t.Run("file-based", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.duckdb")
		connect(t, adapterConfig(path, false))
		_, err := os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("bad params", func(t *testing.T) {
		adp := New(nil)
		err := adp.Connect(context.Background(), adapter.Config{Params: map[string]any{"bogus": 1}})
		require.Error(t, err)
		assert.False(t, adp.IsConnected())
	})
}

func TestAdapter_QueryTypes(t *testing.T) {
	adp := connect(t, adapterConfig(":memory:", false))

	rows, err := adp.Query(context.Background(),
		"SELECT 42::INTEGER AS v, 'x' AS s, DATE '2024-01-02' AS d, TIMESTAMP '2024-01-02 03:04:05' AS ts")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	var (
		v  int32
		s  string
		d  time.Time
		ts time.Time
	)
	require.NoError(t, rows.Scan(&v, &s, &d, &ts))
	require.NoError(t, rows.Err())

	assert.Equal(t, int32(42), v)
	assert.Equal(t, "x", s)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), d.UTC())
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), ts.UTC())
}

func TestAdapter_Params(t *testing.T) {
	adp := connect(t, adapter.Config{
		Params: map[string]any{"settings": map[string]any{"threads": 1}},
	})

	var threads string
	require.NoError(t, adp.DB.QueryRowContext(context.Background(),
		"SELECT current_setting('threads')::VARCHAR").Scan(&threads))
	assert.Equal(t, "1", threads)
}

func TestAdapter_TableMetadata(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, adapterConfig(":memory:", false))

	require.NoError(t, adp.Exec(ctx, "CREATE SCHEMA analytics"))
	require.NoError(t, adp.Exec(ctx, "CREATE TABLE analytics.events (id BIGINT NOT NULL, name VARCHAR)"))
	require.NoError(t, adp.Exec(ctx, "INSERT INTO analytics.events VALUES (1, 'a'), (2, 'b')"))

	md, err := adp.TableMetadata(ctx, "analytics.events")
	require.NoError(t, err)
	assert.Equal(t, "analytics", md.Schema)
	assert.Equal(t, "events", md.Name)
	assert.Equal(t, int64(2), md.RowCount)
	require.Len(t, md.Columns, 2)
	assert.Equal(t, "id", md.Columns[0].Name)
	assert.False(t, md.Columns[0].Nullable)
	assert.Equal(t, "name", md.Columns[1].Name)
	assert.True(t, md.Columns[1].Nullable)

	_, err = adp.TableMetadata(ctx, "analytics.missing")
	var notFound *adapter.TableNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestAdapter_ReadOnly(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ro.duckdb")

	rw := New(nil)
	require.NoError(t, rw.Connect(ctx, adapterConfig(path, false)))
	require.NoError(t, rw.Exec(ctx, "CREATE TABLE t (id INTEGER)"))
	require.NoError(t, rw.Close())

	ro := connect(t, adapterConfig(path, true))
	assert.Error(t, ro.Exec(ctx, "INSERT INTO t VALUES (1)"))

	rows, err := ro.Query(ctx, "SELECT count(*) FROM t")
	require.NoError(t, err)
	_ = rows.Close()
}
