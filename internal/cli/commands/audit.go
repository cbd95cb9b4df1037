package commands

import (
	"errors"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapquery/internal/audit"
	"github.com/leapstack-labs/leapquery/internal/cli/output"
)

var errNoAuditLog = errors.New("server.audit_log is not configured\nHint: pass --audit-log or set it in leapquery.yaml")

type auditReport struct {
	Summary audit.Summary `json:"summary" yaml:"summary"`
	Entries []audit.Entry `json:"entries" yaml:"entries"`
}

// NewAuditCommand creates the audit command.
func NewAuditCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show queries recorded by the reference engine",
		Long: `List the most recent queries from the audit log written by
"leapquery serve --audit-log", newest first, with counts by outcome.`,
		Example: `  leapquery audit --audit-log ./audit.db
  leapquery audit --limit 100 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			path := cc.Cfg.Server.AuditLog
			if path == "" {
				return errNoAuditLog
			}

			store, err := audit.Open(path, cc.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			sum, err := store.Summarize(ctx)
			if err != nil {
				return err
			}
			entries, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []audit.Entry{}
			}

			return renderAudit(cc.Renderer, auditReport{Summary: sum, Entries: entries})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	cmd.Flags().String("audit-log", "", "Audit log file")

	return cmd
}

func renderAudit(r *output.Renderer, rep auditReport) error {
	if ok, err := r.WriteStructured(rep); ok {
		return err
	}

	s := r.Styles()
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Time", "Status", "Type", "Rows", "Duration", "Query"})

	for _, e := range rep.Entries {
		status := e.Status()
		switch status {
		case "ok":
			status = s.Success.Render(status)
		case "rejected":
			status = s.Warning.Render(status)
		default:
			status = s.Error.Render(status)
		}
		t.AppendRow(table.Row{
			e.CreatedAt.Local().Format(time.DateTime),
			status,
			e.StatementType,
			e.RowCount,
			e.Duration.Round(time.Microsecond).String(),
			truncateOneLine(e.Query, 60),
		})
	}

	if r.Mode() == output.ModeMarkdown {
		t.RenderMarkdown()
	} else {
		t.Render()
	}
	r.Printf("%d queries: %d ok, %d rejected, %d failed\n",
		rep.Summary.Total, rep.Summary.Success, rep.Summary.Rejected, rep.Summary.Failed)
	return nil
}

func truncateOneLine(s string, maxLen int) string {
	runes := []rune(strings.Join(strings.Fields(s), " "))
	if len(runes) <= maxLen {
		return string(runes)
	}
	return string(runes[:maxLen-3]) + "..."
}
