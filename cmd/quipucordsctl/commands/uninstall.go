package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quipucords/quipucordsctl/internal/config"
	qcerrors "github.com/quipucords/quipucordsctl/internal/errors"
	"github.com/quipucords/quipucordsctl/internal/templates"
)

// NewUninstallCommand creates the uninstall command.
func NewUninstallCommand(cfg *config.Config) *cobra.Command {
	var keepDataDirs bool

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: fmt.Sprintf("Uninstall the %s server", config.ServerSoftwareName),
		Long: fmt.Sprintf(
			"Uninstall the %s server: stop its services and remove its images,\n"+
				"configuration, secrets, and data. The database directory is always\n"+
				"preserved; remove it manually if you are certain.", config.ServerSoftwareName),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUninstall(cmd.Context(), newRuntime(cfg), keepDataDirs)
		},
	}

	cmd.Flags().BoolVar(&keepDataDirs, "keep-data-dirs", false,
		"keep the server's data directories")
	return cmd
}

// runUninstall attempts every removal step even when earlier ones fail, so a
// half-broken installation can still be mostly cleaned up. The command fails
// if any step failed.
func runUninstall(ctx context.Context, rt *runtime, keepDataDirs bool) error {
	ok := true

	if err := rt.systemctl.StopServices(ctx); err != nil {
		rt.logger.Error("Failed to stop server services: %v", err)
		ok = false
	}

	if !removeImages(ctx, rt) {
		ok = false
	}
	if !removeRenderedFiles(rt) {
		ok = false
	}

	if err := rt.systemctl.ReloadDaemon(ctx); err != nil {
		rt.logger.Error("Failed to reload the systemd user daemon: %v", err)
		ok = false
	}

	if keepDataDirs {
		rt.logger.Info("Keeping data directories as requested.")
	} else if !removeDataDirs(rt) {
		ok = false
	}

	for _, name := range allSecretNames {
		if err := rt.podman.DeleteSecret(ctx, name); err != nil {
			rt.logger.Error("Failed to delete podman secret %s: %v", name, err)
			ok = false
		}
	}

	if !ok {
		return qcerrors.UserError{
			Message:    "Uninstall completed with errors.",
			Suggestion: "Re-run with -vv to see which steps failed, then retry",
		}
	}
	rt.logger.Info("%s server was uninstalled.", config.ServerSoftwareName)
	return nil
}

func removeImages(ctx context.Context, rt *runtime) bool {
	ok := true
	images := rt.podman.ExpectedContainerImages(rt.cfg.SystemdUnitsDir, templates.UnitFileNames())
	for _, image := range images {
		if err := rt.podman.RemoveImage(ctx, image); err != nil {
			rt.logger.Error("Failed to remove image %s: %v", image, err)
			ok = false
		}
	}
	return ok
}

func removeRenderedFiles(rt *runtime) bool {
	var paths []string
	for _, name := range templates.EnvFileNames() {
		paths = append(paths, filepath.Join(rt.cfg.ServerEnvDir, name))
	}
	for _, name := range templates.UnitFileNames() {
		paths = append(paths, filepath.Join(rt.cfg.SystemdUnitsDir, name))
	}
	for _, name := range config.SystemdServiceNames {
		paths = append(paths, filepath.Join(rt.cfg.GeneratedServicesDir, name))
	}

	ok := true
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			rt.logger.Error("Failed to remove %s: %v", path, err)
			ok = false
			continue
		}
		rt.logger.Debug("Removed %s", path)
	}
	return ok
}

func removeDataDirs(rt *runtime) bool {
	ok := true
	for _, dir := range rt.cfg.DataSubdirsExcludingDB() {
		if err := os.RemoveAll(dir); err != nil {
			rt.logger.Error("Failed to remove %s: %v", dir, err)
			ok = false
			continue
		}
		rt.logger.Debug("Removed %s", dir)
	}
	rt.logger.Info("The database directory %s was preserved.",
		filepath.Join(rt.cfg.ServerDataDir, "db"))
	return ok
}
