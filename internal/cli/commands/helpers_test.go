package commands

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapquery/internal/config"
	"github.com/leapstack-labs/leapquery/internal/testutil"
)

// runCommand executes cmd with cfg in its context and returns stdout and
// stderr. A nil cfg uses the defaults.
func runCommand(t *testing.T, cmd *cobra.Command, cfg *config.Config, stdin string, args ...string) (string, string, error) {
	t.Helper()

	if cfg == nil {
		cfg = config.Default()
	}
	ctx := config.WithConfig(context.Background(), cfg)
	ctx = config.WithLogger(ctx, testutil.NewTestLogger(t))

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(io.NopCloser(strings.NewReader(stdin)))
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetContext(ctx)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func configWithOutput(output string) *config.Config {
	cfg := config.Default()
	cfg.Output = output
	return cfg
}
