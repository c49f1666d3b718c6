// Package commands implements the CLI's subcommands. Every command is
// constructed from the shared Config by an exported New*Command function;
// the Registry lists them all for registration on the root command.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/quipucords/quipucordsctl/internal/config"
	"github.com/quipucords/quipucordsctl/internal/console"
	"github.com/quipucords/quipucordsctl/internal/logging"
	"github.com/quipucords/quipucordsctl/internal/loginctl"
	"github.com/quipucords/quipucordsctl/internal/podman"
	"github.com/quipucords/quipucordsctl/internal/secrets"
	"github.com/quipucords/quipucordsctl/internal/shell"
	"github.com/quipucords/quipucordsctl/internal/systemctl"
)

// Registry lists every subcommand constructor, in display order.
var Registry = []func(*config.Config) *cobra.Command{
	NewInstallCommand,
	NewUpgradeCommand,
	NewUninstallCommand,
	NewCheckCommand,
	NewExportLogsCommand,
	NewResetAdminPasswordCommand,
	NewResetAdminUsernameCommand,
	NewResetDatabasePasswordCommand,
	NewResetEncryptionSecretCommand,
	NewResetRedisPasswordCommand,
	NewResetSessionSecretCommand,
}

// runtime bundles the collaborators a command invocation needs. Building it
// lazily inside RunE, after flag parsing, means the logger reflects the
// final verbosity.
type runtime struct {
	cfg       *config.Config
	logger    *logging.Logger
	console   *console.Console
	runner    *shell.Runner
	podman    *podman.Client
	systemctl *systemctl.Client
	loginctl  *loginctl.Client
	secrets   *secrets.Orchestrator
}

func newRuntime(cfg *config.Config) *runtime {
	return newRuntimeWithExecutor(cfg, shell.DefaultExecutor())
}

// newRuntimeWithExecutor lets tests substitute a fake command executor.
func newRuntimeWithExecutor(cfg *config.Config, executor shell.CommandExecutor) *runtime {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New(cfg.Verbosity, cfg.Quiet)
	}
	con := console.New(logger, cfg.Quiet, cfg.AssumeYes)
	runner := shell.NewRunnerWithExecutor(logger, executor)
	podmanClient := podman.NewClient(logger, runner)
	resolver := secrets.NewResolver(logger, con)
	return &runtime{
		cfg:       cfg,
		logger:    logger,
		console:   con,
		runner:    runner,
		podman:    podmanClient,
		systemctl: systemctl.NewClient(logger, runner),
		loginctl:  loginctl.NewClient(logger, runner),
		secrets:   secrets.NewOrchestrator(logger, podmanClient, resolver),
	}
}
