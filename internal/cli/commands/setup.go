package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapquery/internal/cli/output"
	"github.com/leapstack-labs/leapquery/internal/config"
	"github.com/leapstack-labs/leapquery/pkg/guard"
	"github.com/leapstack-labs/leapquery/pkg/remote"
)

// ErrRejected is returned when validation fails, so the process exits non-zero
// after the verdict has been printed.
var ErrRejected = errors.New("validation failed")

// errNoSQL is returned when no SQL was given and stdin is a terminal.
var errNoSQL = errors.New("no SQL given (pass it as an argument, with --input, or on stdin)")

// CommandContext holds shared resources for command execution.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds a CommandContext from the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}
}

// Guard returns a guard built from the configuration.
func (c *CommandContext) Guard() *guard.Guard {
	return guard.New(c.Cfg.GuardConfig(), c.Logger)
}

// Remote returns a client for the configured engine.
func (c *CommandContext) Remote() (*remote.Conn, error) {
	if err := c.Cfg.RequireEndpoint(); err != nil {
		return nil, err
	}
	return remote.New(c.Cfg.RemoteConfig(c.Logger)), nil
}

// readSQL takes SQL from args, then --input, then piped stdin. It reports
// false when there is no SQL and stdin is a terminal.
func readSQL(cmd *cobra.Command, args []string, input string) (string, bool, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), true, nil
	case input != "":
		content, err := os.ReadFile(input)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), true, nil
	case !output.IsTerminal(cmd.InOrStdin()):
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(content), true, nil
	}
	return "", false, nil
}
