package commands

import (
	"github.com/spf13/cobra"

	"github.com/quipucords/quipucordsctl/internal/config"
	"github.com/quipucords/quipucordsctl/internal/secrets"
)

// NewResetAdminPasswordCommand creates the reset-admin-password command.
func NewResetAdminPasswordCommand(cfg *config.Config) *cobra.Command {
	var prompt bool

	cmd := &cobra.Command{
		Use:   "reset-admin-password",
		Short: "Reset the server's login password",
		Long: "Reset the password used to log in to the server's web interface.\n" +
			"The value may come from the environment, an interactive prompt, or\n" +
			"random generation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt := newRuntime(cfg)
			if err := rt.podman.EnsureSocket(ctx); err != nil {
				return err
			}

			similar := rt.secrets.BuildSimilarValueCheck(ctx, ServerUsernameSecretName, "server login username")
			if similar == nil {
				similar = &secrets.SimilarValueCheck{
					Value: defaultServerUsername,
					Name:  "server login username",
				}
			}
			similar.MaxSimilarity = serverPasswordMaxSimilarity

			opts := serverPasswordOptions(similar)
			opts.MustPrompt = prompt
			opts.MayPrompt = true
			return resetOutcome(rt.secrets.ResetSecret(ctx, opts))
		},
	}

	cmd.Flags().BoolVar(&prompt, "prompt", false, "prompt for the new value even if the environment provides one")
	return cmd
}
