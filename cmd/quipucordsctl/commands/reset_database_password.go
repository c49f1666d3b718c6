package commands

import (
	"github.com/spf13/cobra"

	"github.com/quipucords/quipucordsctl/internal/config"
)

// NewResetDatabasePasswordCommand creates the reset-database-password command.
func NewResetDatabasePasswordCommand(cfg *config.Config) *cobra.Command {
	var prompt bool

	cmd := &cobra.Command{
		Use:   "reset-database-password",
		Short: "Reset the server's database password",
		Long: "Reset the password the server uses for its PostgreSQL database.\n" +
			"An existing database keeps its old password until reinitialized.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt := newRuntime(cfg)
			if err := rt.podman.EnsureSocket(ctx); err != nil {
				return err
			}
			opts := databasePasswordOptions()
			opts.MustPrompt = prompt
			return resetOutcome(rt.secrets.ResetSecret(ctx, opts))
		},
	}

	cmd.Flags().BoolVar(&prompt, "prompt", false, "prompt for the new value instead of generating one")
	return cmd
}
