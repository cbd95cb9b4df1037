package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapquery/internal/cli/output"
	"github.com/leapstack-labs/leapquery/pkg/ident"
)

// identVerdict is one row of ident output.
type identVerdict struct {
	Name  string     `json:"name" yaml:"name"`
	Valid bool       `json:"valid" yaml:"valid"`
	Code  ident.Code `json:"code,omitempty" yaml:"code,omitempty"`
	Error string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewIdentCommand creates the ident command.
func NewIdentCommand() *cobra.Command {
	var (
		asTable     bool
		asNamespace bool
	)

	cmd := &cobra.Command{
		Use:   "ident <name>...",
		Short: "Validate schema and table identifiers",
		Long: `Validate identifiers against the naming rules, the reserved keyword list
and the namespace allow-list (identifiers.allowed_namespaces).

By default each argument is checked as a bare identifier. With --table each
argument must be a qualified "namespace.table" name; with --namespace each
argument must also be an allowed namespace.`,
		Example: `  leapquery ident orders customer_id
  leapquery ident --table analytics.orders
  leapquery ident --namespace staging -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			cfg := cc.Cfg.IdentConfig()

			check := ident.ValidateIdentifier
			switch {
			case asTable:
				check = ident.ValidateQualifiedTableName
			case asNamespace:
				check = ident.ValidateNamespace
			}

			verdicts := make([]identVerdict, 0, len(args))
			allValid := true
			for _, name := range args {
				res := check(name, cfg)
				allValid = allValid && res.Valid
				verdicts = append(verdicts, identVerdict{
					Name:  name,
					Valid: res.Valid,
					Code:  res.Code,
					Error: res.Error,
				})
			}

			if err := renderIdentVerdicts(cc.Renderer, verdicts); err != nil {
				return err
			}
			if !allValid {
				return ErrRejected
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asTable, "table", false, "Validate qualified namespace.table names")
	cmd.Flags().BoolVar(&asNamespace, "namespace", false, "Validate allowed namespaces")
	cmd.MarkFlagsMutuallyExclusive("table", "namespace")

	return cmd
}

func renderIdentVerdicts(r *output.Renderer, verdicts []identVerdict) error {
	if ok, err := r.WriteStructured(verdicts); ok {
		return err
	}

	s := r.Styles()
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Valid", "Code", "Error"})
	for _, v := range verdicts {
		mark := s.Success.Render("yes")
		if !v.Valid {
			mark = s.Error.Render("no")
		}
		t.AppendRow(table.Row{v.Name, mark, string(v.Code), v.Error})
	}

	if r.Mode() == output.ModeMarkdown {
		t.RenderMarkdown()
		return nil
	}
	t.Render()
	return nil
}
