package commands

import (
	"github.com/spf13/cobra"

	"github.com/quipucords/quipucordsctl/internal/config"
)

// NewResetAdminUsernameCommand creates the reset-admin-username command.
func NewResetAdminUsernameCommand(cfg *config.Config) *cobra.Command {
	var prompt bool

	cmd := &cobra.Command{
		Use:   "reset-admin-username",
		Short: "Reset the server's login username",
		Long: "Reset the username used to log in to the server's web interface.\n" +
			"Replacing an existing username always requires confirmation, and a\n" +
			"username identical to the stored password is rejected.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt := newRuntime(cfg)
			if err := rt.podman.EnsureSocket(ctx); err != nil {
				return err
			}

			similar := rt.secrets.BuildSimilarValueCheck(ctx, ServerPasswordSecretName, "server login password")
			opts := serverUsernameOptions(similar)
			opts.MustPrompt = prompt
			return resetOutcome(rt.secrets.ResetUsername(ctx, opts))
		},
	}

	cmd.Flags().BoolVar(&prompt, "prompt", false, "prompt for the new value even if the environment provides one")
	return cmd
}
