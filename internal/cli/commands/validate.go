package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapquery/internal/cli/output"
	"github.com/leapstack-labs/leapquery/pkg/guard"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "validate [SQL]",
		Short: "Check whether SQL may be sent to the engine",
		Long: `Run the statement guard over SQL without sending it anywhere.

The guard rejects empty or oversized text, stacked statements, anything that
is not a query when select_only is set, and calls to file, extension and
export functions. The exit status is non-zero when the query is rejected.`,
		Example: `  leapquery validate "SELECT * FROM analytics.orders"
  echo "DROP TABLE t" | leapquery validate -o json
  leapquery validate --input report.sql --select-only=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, ok, err := readSQL(cmd, args, input)
			if err != nil {
				return err
			}
			if !ok {
				return errNoSQL
			}

			cc := NewCommandContext(cmd)
			res := cc.Guard().Check(sql)
			if err := renderVerdict(cc.Renderer, res); err != nil {
				return err
			}
			if !res.Valid {
				return ErrRejected
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Read SQL from file")
	cmd.Flags().Bool("select-only", true, "Allow only SELECT and SHOW statements")

	return cmd
}

func renderVerdict(r *output.Renderer, res guard.ValidationResult) error {
	if ok, err := r.WriteStructured(res); ok {
		return err
	}

	s := r.Styles()
	if res.Valid {
		r.Success(fmt.Sprintf("valid %s", res.StatementType))
		return nil
	}

	header := "rejected"
	if res.StatementType != "" {
		header += " " + res.StatementType
	}
	r.Println(s.Error.Render("✗ " + header))
	for _, msg := range res.Errors {
		r.Printf("  %s %s\n", s.Muted.Render("-"), msg)
	}
	return nil
}
