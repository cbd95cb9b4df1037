package commands

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapquery/internal/audit"
)

func seedAuditLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	store, err := audit.Open(path, nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, audit.Entry{Query: "SELECT 1", StatementType: "SELECT", Success: true, RowCount: 1}))
	require.NoError(t, store.Record(ctx, audit.Entry{Query: "DROP TABLE t", Rejected: true, Error: "nope"}))
	return path
}

func TestAuditCommand_JSON(t *testing.T) {
	cfg := configWithOutput("json")
	cfg.Server.AuditLog = seedAuditLog(t)

	stdout, _, err := runCommand(t, NewAuditCommand(), cfg, "")
	require.NoError(t, err)

	var rep auditReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Equal(t, audit.Summary{Total: 2, Success: 1, Rejected: 1}, rep.Summary)
	require.Len(t, rep.Entries, 2)
}

func TestAuditCommand_Table(t *testing.T) {
	cfg := configWithOutput("table")
	cfg.Server.AuditLog = seedAuditLog(t)

	stdout, _, err := runCommand(t, NewAuditCommand(), cfg, "", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "rejected")
	assert.NotContains(t, stdout, "SELECT 1")
	assert.Contains(t, stdout, "2 queries: 1 ok, 1 rejected, 0 failed")
}

func TestAuditCommand_NotConfigured(t *testing.T) {
	_, _, err := runCommand(t, NewAuditCommand(), nil, "")
	require.ErrorIs(t, err, errNoAuditLog)
}

func TestTruncateOneLine(t *testing.T) {
	assert.Equal(t, "SELECT a FROM t", truncateOneLine("SELECT a\n  FROM t", 60))
	assert.Equal(t, "abcdefg...", truncateOneLine("abcdefghijklmnop", 10))
}
