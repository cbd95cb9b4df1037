package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapquery/internal/cli/output"
	"github.com/leapstack-labs/leapquery/internal/config"
	"github.com/leapstack-labs/leapquery/pkg/remote"
)

const (
	replPrompt         = "leapquery> "
	replContinuePrompt = "      ...> "
)

func runQueryREPL(cmd *cobra.Command, cc *CommandContext, conn *remote.Conn) error {
	ctx := cmd.Context()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// The REPL always renders for a terminal unless a format was chosen.
	if cc.Cfg.Output == string(output.ModeAuto) {
		cc.Renderer = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeTable)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "leapquery REPL (engine: %s)\n", conn.Endpoint())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(ctx, cmd, cc, line); quit {
				break
			}
			continue
		}

		// Accumulate multi-line SQL until semicolon
		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString(" ")
			rl.SetPrompt(replContinuePrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		query := strings.TrimSuffix(buf.String(), ";")
		buf.Reset()

		if err := executeQuery(ctx, cc, conn, query, nil); err != nil && !errors.Is(err, ErrRejected) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

// handleDotCommand runs a REPL dot-command and reports whether to exit.
func handleDotCommand(_ context.Context, cmd *cobra.Command, cc *CommandContext, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())

	case ".validate":
		sql := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))
		if sql == "" {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .validate <sql>")
			return false
		}
		if err := renderVerdict(cc.Renderer, cc.Guard().Check(sql)); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}

	case ".format":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "format: %s\n", cc.Renderer.Mode())
			return false
		}
		mode := strings.ToLower(parts[1])
		if mode == string(output.ModeAuto) || !slices.Contains(config.OutputFormats, mode) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown format: %s\n", parts[1])
			return false
		}
		cc.Renderer = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(mode))

	case ".clear":
		_, _ = fmt.Fprint(cmd.OutOrStdout(), "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help             Show this help message
  .validate <sql>   Run the statement guard without executing
  .format [name]    Show or set the output format (table, json, yaml, csv, markdown)
  .clear            Clear the screen
  .quit / .exit     Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// historyFile returns the REPL history path under the user cache directory,
// or "" to disable history.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "leapquery")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "query_history")
}

func newREPLCompleter() *readline.PrefixCompleter {
	formats := make([]readline.PrefixCompleterInterface, 0, len(config.OutputFormats))
	for _, f := range config.OutputFormats {
		if f != string(output.ModeAuto) {
			formats = append(formats, readline.PcItem(f))
		}
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".validate"),
		readline.PcItem(".format", formats...),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
