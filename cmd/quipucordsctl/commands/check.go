package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quipucords/quipucordsctl/internal/config"
	qcerrors "github.com/quipucords/quipucordsctl/internal/errors"
	"github.com/quipucords/quipucordsctl/internal/templates"
)

// Item statuses reported by check.
const (
	statusOK       = "OK"
	statusMissing  = "missing"
	statusBadPerms   = "bad permissions"
	statusNotOwned   = "not owned by current user"
	statusInvalid    = "invalid"
	statusUnreadable = "unreadable"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the server installation for problems",
		Long: "Check the server's directories, configuration files, secrets, and\n" +
			"session settings. The exit code is the number of problems found.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), newRuntime(cfg), cmd.OutOrStdout())
		},
	}
}

func runCheck(ctx context.Context, rt *runtime, out io.Writer) error {
	problems := 0
	report := func(item, status string) {
		fmt.Fprintf(out, "%-72s %s\n", item, status)
		if status != statusOK {
			problems++
		}
	}

	for _, dir := range checkDirs(rt.cfg) {
		report(dir, checkPathStatus(dir, true))
	}

	for _, name := range templates.EnvFileNames() {
		path := filepath.Join(rt.cfg.ServerEnvDir, name)
		status := checkPathStatus(path, false)
		if status == statusOK {
			status = checkEnvFileStatus(path)
		}
		report(path, status)
	}
	for _, name := range templates.UnitFileNames() {
		path := filepath.Join(rt.cfg.SystemdUnitsDir, name)
		report(path, checkPathStatus(path, false))
	}

	for _, name := range requiredSecretNames {
		exists, err := rt.podman.SecretExists(ctx, name)
		status := statusOK
		if err != nil || !exists {
			status = statusMissing
		}
		report("podman secret "+name, status)
	}

	lingerStatus := statusOK
	if enabled, err := rt.loginctl.CheckLinger(ctx); err != nil || !enabled {
		lingerStatus = "not enabled"
		problems++
	}
	fmt.Fprintf(out, "%-72s %s\n", "systemd user lingering", lingerStatus)

	if problems > 0 {
		return qcerrors.ProblemsError{
			Count:   problems,
			Message: fmt.Sprintf("Found %d problems.", problems),
		}
	}
	rt.logger.Info("No problems found.")
	return nil
}

func checkDirs(cfg *config.Config) []string {
	dirs := []string{
		cfg.ServerEnvDir,
		cfg.SystemdUnitsDir,
		cfg.ServerDataDir,
	}
	dirs = append(dirs, cfg.DataSubdirs()...)
	return dirs
}

// checkPathStatus verifies a path exists, has the expected type, belongs to
// the current user, and is owner-accessible.
func checkPathStatus(path string, wantDir bool) string {
	info, err := os.Stat(path)
	if err != nil {
		return statusMissing
	}
	if info.IsDir() != wantDir {
		return statusInvalid
	}

	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		if int(stat.Uid) != os.Getuid() {
			return statusNotOwned
		}
	}

	perm := info.Mode().Perm()
	if wantDir {
		if perm&0o700 != 0o700 {
			return statusBadPerms
		}
	} else if perm&0o400 == 0 {
		return statusBadPerms
	}
	return statusOK
}

// checkEnvFileStatus verifies a rendered env file still parses, catching
// hand edits or bad overrides that would break the server's startup.
func checkEnvFileStatus(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		// Stat succeeded but the read did not; this is not necessarily a
		// permission problem.
		return statusUnreadable
	}
	if _, err := godotenv.Parse(bytes.NewReader(data)); err != nil {
		return statusInvalid
	}
	return statusOK
}
