package remote

import (
	"context"
	"testing"

	"github.com/leapstack-labs/leapquery/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStmt_BindRunDestroy(t *testing.T) {
	engine := &echoEngine{body: `{"success":true,"data":[{"v":42}],"columns":["v"]}`}
	c := New(Config{Endpoint: "http://engine", Transport: handlerTransport(engine)})

	stmt := c.Prepare("SELECT $1::INTEGER AS v")
	assert.Equal(t, "SELECT $1::INTEGER AS v", stmt.Query())
	assert.Empty(t, engine.queries, "prepare must not contact the engine")

	require.NoError(t, stmt.Bind(42))
	assert.Equal(t, []wire.Value{wire.Int(42)}, stmt.Bound())

	res, err := stmt.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 42::INTEGER AS v"}, engine.queries)
	assert.Equal(t, [][]wire.Value{{wire.Int(42)}}, res.Rows())

	stmt.DestroySync()
	assert.Empty(t, stmt.Bound())
	assert.ErrorIs(t, stmt.Bind(1), ErrStatementDestroyed)

	_, err = stmt.Run(context.Background())
	assert.ErrorIs(t, err, ErrStatementDestroyed)
	_, err = stmt.Stream(context.Background())
	assert.ErrorIs(t, err, ErrStatementDestroyed)

	stmt.DestroySync()
	assert.Len(t, engine.queries, 1)
}

func TestStmt_RebindReplaces(t *testing.T) {
	engine := &echoEngine{body: `{"success":true,"data":[]}`}
	c := New(Config{Endpoint: "http://engine", Transport: handlerTransport(engine)})

	stmt := c.Prepare("SELECT $1, $2")
	require.NoError(t, stmt.Bind(1, "a"))
	require.NoError(t, stmt.Bind(2))

	_, err := stmt.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 2, $2"}, engine.queries)
}

func TestStmt_BindFailureKeepsPrevious(t *testing.T) {
	c := New(Config{Endpoint: "http://engine"})
	stmt := c.Prepare("SELECT $1")

	require.NoError(t, stmt.Bind(7))
	err := stmt.Bind(func() {})
	require.Error(t, err)
	assert.Equal(t, []wire.Value{wire.Int(7)}, stmt.Bound())
}

func TestStmt_RunWithoutBind(t *testing.T) {
	engine := &echoEngine{body: `{"success":true,"data":[]}`}
	c := New(Config{Endpoint: "http://engine", Transport: handlerTransport(engine)})

	_, err := c.Prepare("SELECT $1").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT $1"}, engine.queries)
}
