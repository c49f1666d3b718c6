package commands

import (
	"github.com/spf13/cobra"

	"github.com/quipucords/quipucordsctl/internal/config"
)

// NewResetRedisPasswordCommand creates the reset-redis-password command.
func NewResetRedisPasswordCommand(cfg *config.Config) *cobra.Command {
	var prompt bool

	cmd := &cobra.Command{
		Use:   "reset-redis-password",
		Short: "Reset the server's Redis password",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt := newRuntime(cfg)
			if err := rt.podman.EnsureSocket(ctx); err != nil {
				return err
			}
			opts := redisPasswordOptions()
			opts.MustPrompt = prompt
			return resetOutcome(rt.secrets.ResetSecret(ctx, opts))
		},
	}

	cmd.Flags().BoolVar(&prompt, "prompt", false, "prompt for the new value instead of generating one")
	return cmd
}
