package commands

import (
	"github.com/spf13/cobra"

	"github.com/quipucords/quipucordsctl/internal/config"
)

// NewResetSessionSecretCommand creates the reset-session-secret command.
func NewResetSessionSecretCommand(cfg *config.Config) *cobra.Command {
	var prompt bool

	cmd := &cobra.Command{
		Use:   "reset-session-secret",
		Short: "Reset the server's session signing secret",
		Long: "Reset the secret the server uses to sign login sessions. All\n" +
			"active sessions are invalidated.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt := newRuntime(cfg)
			if err := rt.podman.EnsureSocket(ctx); err != nil {
				return err
			}
			opts := sessionSecretOptions()
			opts.MustPrompt = prompt
			return resetOutcome(rt.secrets.ResetSecret(ctx, opts))
		},
	}

	cmd.Flags().BoolVar(&prompt, "prompt", false, "prompt for the new value instead of generating one")
	return cmd
}
