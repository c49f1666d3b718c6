package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quipucords/quipucordsctl/internal/config"
	qcerrors "github.com/quipucords/quipucordsctl/internal/errors"
	"github.com/quipucords/quipucordsctl/internal/templates"
)

// NewUpgradeCommand creates the upgrade command.
func NewUpgradeCommand(cfg *config.Config) *cobra.Command {
	var noPull bool
	var timeoutSeconds int

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: fmt.Sprintf("Upgrade the %s server", config.ServerSoftwareName),
		Long: fmt.Sprintf(
			"Upgrade the %s server: stop its services, refresh its configuration,\n"+
				"and pull the latest container images. The server is not restarted;\n"+
				"restart it when ready.", config.ServerSoftwareName),
		RunE: func(cmd *cobra.Command, args []string) error {
			if timeoutSeconds < 0 {
				return qcerrors.UserError{
					Message: "The --timeout value must not be negative.",
				}
			}
			err := runUpgrade(cmd.Context(), cfg, noPull, time.Duration(timeoutSeconds)*time.Second)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Upgrade complete. Restart the server with:\n\n"+
					"    systemctl --user restart %s-app\n", config.ServerSoftwarePackage)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noPull, "no-pull", false, "skip pulling container images")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", config.DefaultPullTimeoutSeconds,
		"timeout in seconds for each image pull")
	return cmd
}

func runUpgrade(ctx context.Context, cfg *config.Config, noPull bool, pullTimeout time.Duration) error {
	rt := newRuntime(cfg)

	if err := rt.podman.EnsureSocket(ctx); err != nil {
		return err
	}
	if err := rt.systemctl.StopServices(ctx); err != nil {
		return err
	}

	// Re-run install quietly to refresh directories, secrets, and rendered
	// configuration without repeating its prompts and progress output.
	quietCfg := *cfg
	quietCfg.Quiet = true
	quietCfg.Logger = nil
	if err := runInstall(ctx, newRuntime(&quietCfg)); err != nil {
		return err
	}

	if noPull {
		rt.logger.Info("Skipping image pull as requested.")
		return nil
	}

	images := rt.podman.ExpectedContainerImages(cfg.SystemdUnitsDir, templates.UnitFileNames())
	if len(images) == 0 {
		rt.logger.Warn("No container images found in the installed unit files.")
		return nil
	}
	for _, image := range images {
		if err := rt.podman.PullImage(ctx, image, pullTimeout); err != nil {
			return err
		}
	}
	return nil
}
