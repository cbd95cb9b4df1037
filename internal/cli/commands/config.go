package commands

import (
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration after merging defaults, the config file,
LEAPQUERY_ environment variables and flags. Secrets are redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			redacted := cc.Cfg.Redacted()

			if ok, err := cc.Renderer.WriteStructured(redacted); ok {
				return err
			}
			if cc.Cfg.File != "" {
				cc.Renderer.Printf("# %s\n", cc.Cfg.File)
			}
			return cc.Renderer.YAML(redacted)
		},
	}
}
