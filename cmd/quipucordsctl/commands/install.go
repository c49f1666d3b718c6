package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quipucords/quipucordsctl/internal/config"
	qcerrors "github.com/quipucords/quipucordsctl/internal/errors"
	"github.com/quipucords/quipucordsctl/internal/merge"
	"github.com/quipucords/quipucordsctl/internal/secrets"
)

// NewInstallCommand creates the install command.
func NewInstallCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: fmt.Sprintf("Install and configure the %s server", config.ServerSoftwareName),
		Long: fmt.Sprintf(
			"Install and configure the %s server: create its data directories,\n"+
				"set any missing podman secrets, render its configuration files, and\n"+
				"prepare the systemd user services.", config.ServerSoftwareName),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runInstall(cmd.Context(), newRuntime(cfg)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Installation complete. Start the server with:\n\n"+
					"    systemctl --user start %s-app\n", config.ServerSoftwarePackage)
			return nil
		},
	}
}

func runInstall(ctx context.Context, rt *runtime) error {
	if err := rt.podman.EnsureSocket(ctx); err != nil {
		return err
	}

	if err := createDataDirs(rt.cfg); err != nil {
		return err
	}

	if err := ensureRequiredSecrets(ctx, rt); err != nil {
		return err
	}

	engine := merge.NewEngine(rt.logger, rt.cfg.OverrideConfDir)
	if err := engine.RenderAll(rt.cfg.ServerEnvDir, rt.cfg.SystemdUnitsDir); err != nil {
		return err
	}
	rt.logger.Info("Server configuration was written.")

	if err := rt.systemctl.ReloadDaemon(ctx); err != nil {
		return err
	}

	if err := rt.loginctl.EnableLinger(ctx); err != nil {
		// The server still works for a logged-in user; do not fail the
		// whole install over lingering.
		rt.logger.Warn("Could not enable lingering; server services will stop at logout: %v", err)
	}
	return nil
}

func createDataDirs(cfg *config.Config) error {
	for _, dir := range cfg.DataSubdirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// ensureRequiredSecrets sets every missing required secret, in dependency
// order, failing fast on the first one that cannot be set. Values come from
// environment variables when provided and are generated randomly otherwise;
// install never prompts.
func ensureRequiredSecrets(ctx context.Context, rt *runtime) error {
	optionBuilders := []func() secrets.ResetOptions{
		encryptionSecretOptions,
		sessionSecretOptions,
		func() secrets.ResetOptions { return serverPasswordOptions(installPasswordSimilarity(ctx, rt)) },
		databasePasswordOptions,
		redisPasswordOptions,
	}

	for _, build := range optionBuilders {
		opts := build()
		isSet, err := rt.secrets.IsSet(ctx, opts.SecretName)
		if err != nil {
			return err
		}
		if isSet {
			rt.logger.Debug("Podman secret %s already exists; leaving it unchanged.", opts.SecretName)
			continue
		}
		opts.MustPrompt = false
		opts.MayPrompt = false
		updated, err := rt.secrets.ResetSecret(ctx, opts)
		if err != nil {
			return err
		}
		if !updated {
			return qcerrors.UserError{
				Message: fmt.Sprintf("Required podman secret %s could not be set.", opts.SecretName),
				Suggestion: fmt.Sprintf(
					"Unset or correct the %s environment variable and run install again", opts.EnvVarName),
			}
		}
	}
	return nil
}

func installPasswordSimilarity(ctx context.Context, rt *runtime) *secrets.SimilarValueCheck {
	similar := rt.secrets.BuildSimilarValueCheck(ctx, ServerUsernameSecretName, "server login username")
	if similar == nil {
		similar = &secrets.SimilarValueCheck{Value: defaultServerUsername, Name: "server login username"}
	}
	similar.MaxSimilarity = serverPasswordMaxSimilarity
	return similar
}
