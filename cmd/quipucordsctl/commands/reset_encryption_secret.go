package commands

import (
	"github.com/spf13/cobra"

	"github.com/quipucords/quipucordsctl/internal/config"
)

// NewResetEncryptionSecretCommand creates the reset-encryption-secret command.
func NewResetEncryptionSecretCommand(cfg *config.Config) *cobra.Command {
	var prompt bool

	cmd := &cobra.Command{
		Use:   "reset-encryption-secret",
		Short: "Reset the server's data encryption secret",
		Long: "Reset the secret the server uses to encrypt stored credentials.\n" +
			"Data encrypted with the old secret becomes unreadable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt := newRuntime(cfg)
			if err := rt.podman.EnsureSocket(ctx); err != nil {
				return err
			}
			opts := encryptionSecretOptions()
			opts.MustPrompt = prompt
			return resetOutcome(rt.secrets.ResetSecret(ctx, opts))
		},
	}

	cmd.Flags().BoolVar(&prompt, "prompt", false, "prompt for the new value instead of generating one")
	return cmd
}
