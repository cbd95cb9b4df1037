package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapquery/internal/cli/commands"
)

func execRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(bytes.NewReader(nil))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRoot_Subcommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"validate", "ident", "query", "serve", "config", "version", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestRoot_ConfigCommandAppliesFlags(t *testing.T) {
	stdout, _, err := execRoot(t, "config", "-o", "json",
		"--endpoint", "http://engine.local:8080", "--token", "secret", "--timeout", "1500")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	remote := got["remote"].(map[string]any)
	assert.Equal(t, "http://engine.local:8080", remote["endpoint"])
	assert.Equal(t, "********", remote["token"])
	assert.InDelta(t, 1500, remote["timeout_ms"], 0)
	assert.Equal(t, "json", got["output"])
}

func TestRoot_ConfigCommandYAML(t *testing.T) {
	stdout, _, err := execRoot(t, "config", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "remote:")
	assert.Contains(t, stdout, "timeout_ms: 30000")
	assert.Contains(t, stdout, "- analytics")
}

func TestRoot_ConfigFileFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("identifiers:\n  allowed_namespaces: [reporting]\n"), 0o600))

	_, _, err := execRoot(t, "--config", path, "ident", "--namespace", "reporting", "-o", "json")
	require.NoError(t, err)

	_, _, err = execRoot(t, "--config", path, "ident", "--namespace", "analytics", "-o", "json")
	require.ErrorIs(t, err, commands.ErrRejected)
}

func TestRoot_InvalidConfigFails(t *testing.T) {
	_, _, err := execRoot(t, "validate", "--endpoint", "ftp://engine", "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRoot_SelectOnlyFlag(t *testing.T) {
	_, _, err := execRoot(t, "validate", "-o", "text", "INSERT INTO analytics.t VALUES (1)")
	require.ErrorIs(t, err, commands.ErrRejected)

	stdout, _, err := execRoot(t, "validate", "-o", "text", "--select-only=false", "SHOW TABLES")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ valid")
}

func TestRoot_VerboseLogsToStderr(t *testing.T) {
	_, stderr, err := execRoot(t, "-v", "validate", "-o", "json", "DELETE FROM t")
	require.ErrorIs(t, err, commands.ErrRejected)
	assert.Contains(t, stderr, "query rejected")
}

func TestCompletionCommand(t *testing.T) {
	stdout, _, err := execRoot(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "leapquery")
}
