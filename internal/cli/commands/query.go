package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapquery/pkg/remote"
	"github.com/leapstack-labs/leapquery/pkg/wire"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Input  string
	Params []string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a query against the remote engine",
		Long: `Validate SQL with the statement guard, then run it on the engine at
remote.endpoint and render the result.

Positional placeholders ($1, $2, ...) are bound from --param values in order.
Each value is read as a JSON literal when it parses as one (42, true, null,
"text") and as plain text otherwise.

When invoked without SQL on a terminal, enters interactive REPL mode.`,
		Example: `  leapquery query "SELECT * FROM analytics.orders LIMIT 10"

  # Bind parameters
  leapquery query "SELECT * FROM analytics.orders WHERE id = $1" -p 42

  # Output as JSON
  leapquery query "SELECT 1 AS one" -o json

  # Interactive mode
  leapquery query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "Positional parameter value (repeatable)")
	cmd.Flags().Bool("select-only", true, "Allow only SELECT and SHOW statements")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cc := NewCommandContext(cmd)

	conn, err := cc.Remote()
	if err != nil {
		return err
	}

	sql, ok, err := readSQL(cmd, args, opts.Input)
	if err != nil {
		return err
	}
	if !ok {
		if len(opts.Params) > 0 {
			return fmt.Errorf("--param needs SQL")
		}
		return runQueryREPL(cmd, cc, conn)
	}

	return executeQuery(cmd.Context(), cc, conn, sql, parseParams(opts.Params))
}

// executeQuery guards, prepares, binds and runs sql, then renders the result.
func executeQuery(ctx context.Context, cc *CommandContext, conn *remote.Conn, sql string, params []any) error {
	if res := cc.Guard().Check(sql); !res.Valid {
		if err := renderVerdict(cc.Renderer, res); err != nil {
			return err
		}
		return ErrRejected
	}

	stmt := conn.Prepare(sql)
	defer stmt.DestroySync()

	if err := stmt.Bind(params...); err != nil {
		return err
	}

	res, err := stmt.Run(ctx)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return renderResult(cc.Renderer, res)
}

// parseParams reads each value as a JSON literal, falling back to text.
func parseParams(raw []string) []any {
	params := make([]any, len(raw))
	for i, s := range raw {
		v, err := wire.DecodeJSON([]byte(s))
		if err != nil {
			v = wire.Text(s)
		}
		params[i] = v
	}
	return params
}
