// Package config holds the runtime configuration for one CLI invocation.
//
// The Config struct replaces ad-hoc globals: it is constructed once in main
// from parsed flags and threaded into every component that needs it.
package config

import (
	"os"
	"path/filepath"

	"github.com/quipucords/quipucordsctl/internal/logging"
)

const (
	// ProgramName is this program's executable command.
	ProgramName = "quipucordsctl"
	// ServerSoftwarePackage is used for constructing the server's file paths.
	ServerSoftwarePackage = "quipucords"
	// ServerSoftwareName is the server's user-facing product name.
	ServerSoftwareName = "Quipucords"

	// EnvVarPrefix prefixes every secret's environment variable name.
	EnvVarPrefix = "QUIPUCORDS_"

	// DefaultPullTimeoutSeconds bounds each podman pull during upgrade.
	DefaultPullTimeoutSeconds = 600
	// DefaultJournalctlTimeoutSeconds bounds each journalctl export.
	DefaultJournalctlTimeoutSeconds = 60
)

// SystemdServiceNames are the quadlet-generated services whose logs we export
// and whose generated unit files we clean up on uninstall.
var SystemdServiceNames = []string{
	"quipucords-app.service",
	"quipucords-db.service",
	"quipucords-redis.service",
}

// DataSubdirNames are created under the data dir on install. The db subdir is
// deliberately preserved on uninstall unless the operator removes it manually.
var DataSubdirNames = []string{"data", "db", "log", "sshkeys"}

// Config is the per-invocation runtime configuration.
type Config struct {
	Logger    *logging.Logger
	Verbosity int
	Quiet     bool
	// AssumeYes answers every confirmation prompt with yes.
	AssumeYes bool
	// OverrideConfDir optionally holds operator-supplied override files,
	// matched to shipped templates strictly by identical filename.
	OverrideConfDir string

	// ServerEnvDir receives rendered env files.
	ServerEnvDir string
	// SystemdUnitsDir receives rendered quadlet unit files.
	SystemdUnitsDir string
	// ServerDataDir is the root of the server's persistent data.
	ServerDataDir string
	// GeneratedServicesDir is where the quadlet generator leaves .service
	// files that uninstall must also clean up.
	GeneratedServicesDir string
}

// Default builds a Config rooted at the current user's home directory.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		ServerEnvDir:         filepath.Join(home, ".config", ServerSoftwarePackage, "env"),
		SystemdUnitsDir:      filepath.Join(home, ".config", "containers", "systemd"),
		ServerDataDir:        filepath.Join(home, ".local", "share", ServerSoftwarePackage),
		GeneratedServicesDir: filepath.Join(home, ".config", "systemd", "user"),
	}, nil
}

// DataSubdirs returns the absolute paths of all data subdirectories.
func (c *Config) DataSubdirs() []string {
	paths := make([]string, 0, len(DataSubdirNames))
	for _, name := range DataSubdirNames {
		paths = append(paths, filepath.Join(c.ServerDataDir, name))
	}
	return paths
}

// DataSubdirsExcludingDB returns the data subdirectories that uninstall may
// remove. The database directory is kept so an accidental uninstall does not
// destroy scan history.
func (c *Config) DataSubdirsExcludingDB() []string {
	paths := make([]string, 0, len(DataSubdirNames)-1)
	for _, name := range DataSubdirNames {
		if name == "db" {
			continue
		}
		paths = append(paths, filepath.Join(c.ServerDataDir, name))
	}
	return paths
}
