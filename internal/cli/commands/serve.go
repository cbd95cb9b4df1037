package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapquery/internal/audit"
	"github.com/leapstack-labs/leapquery/internal/config"
	"github.com/leapstack-labs/leapquery/internal/server"
	"github.com/leapstack-labs/leapquery/pkg/adapter"
	"github.com/leapstack-labs/leapquery/pkg/guard"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference query engine",
		Long: `Serve POST /query over a local database so the remote driver has an
engine to talk to.

The database is opened through the adapter named by server.adapter (duckdb,
sqlite or postgres). Unless --no-guard is given, queries pass the same
statement guard the client applies before they reach the database. With
--audit-log every request is recorded; see "leapquery audit".`,
		Example: `  leapquery serve
  leapquery serve --adapter sqlite --database ./warehouse.db
  leapquery serve --database ./scratch.duckdb --read-only=false
  leapquery serve --addr :9000 --no-guard`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default "+config.DefaultAddr+")")
	cmd.Flags().String("adapter", "", "Database adapter: duckdb, sqlite, postgres")
	cmd.Flags().String("database", "", "Database path, or name for postgres")
	cmd.Flags().Bool("read-only", true, "Open the database read-only (in-memory databases stay writable)")
	cmd.Flags().Bool("no-guard", false, "Disable the server-side statement guard")
	cmd.Flags().String("audit-log", "", "Record every query in this SQLite file")

	_ = cmd.RegisterFlagCompletionFunc("adapter", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return adapter.ListAdapters(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cc := NewCommandContext(cmd)
	acfg := cc.Cfg.AdapterConfig()

	db, err := adapter.NewAdapter(acfg, cc.Logger)
	if err != nil {
		return err
	}
	if err := db.Connect(ctx, acfg); err != nil {
		return fmt.Errorf("failed to connect %s: %w", acfg.Type, err)
	}
	defer func() { _ = db.Close() }()

	var g *guard.Guard
	if cc.Cfg.Server.Guard {
		g = cc.Guard()
	} else {
		cc.Renderer.Warning("statement guard disabled")
	}

	scfg := server.Config{
		Addr:    cc.Cfg.Server.Addr,
		Adapter: db,
		Guard:   g,
		Ident:   cc.Cfg.IdentConfig(),
		Logger:  cc.Logger,
	}
	if path := cc.Cfg.Server.AuditLog; path != "" {
		store, err := audit.Open(path, cc.Logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		scfg.Audit = store
	}
	srv := server.New(scfg)

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Serving %s (%s) on http://%s\n", acfg.Path, db.DialectName(), cc.Cfg.Server.Addr)
	return srv.Serve(ctx)
}
