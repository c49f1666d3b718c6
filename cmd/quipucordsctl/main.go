// quipucordsctl installs, configures, and manages a containerized
// Quipucords server on the local host using podman and systemd user
// services.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/quipucords/quipucordsctl/cmd/quipucordsctl/commands"
	"github.com/quipucords/quipucordsctl/internal/config"
	"github.com/quipucords/quipucordsctl/internal/console"
	qcerrors "github.com/quipucords/quipucordsctl/internal/errors"
	"github.com/quipucords/quipucordsctl/internal/logging"
)

func main() {
	cfg, err := config.Default()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Could not determine the home directory: %v\n", err)
		os.Exit(1)
	}

	handleInterrupts()

	root := newRootCommand(cfg)
	if err := root.Execute(); err != nil {
		if message := err.Error(); message != "" && !cfg.Quiet {
			fmt.Fprintf(os.Stderr, "✗ %s\n", message)
		}
		var exitCoder qcerrors.ExitCoder
		if errors.As(err, &exitCoder) {
			os.Exit(exitCoder.ExitCode())
		}
		os.Exit(1)
	}
}

// handleInterrupts aborts on Ctrl-C. A masked prompt may have left the
// terminal with echo disabled, so restore it before exiting.
func handleInterrupts() {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		<-interrupts
		console.RestoreTerminal()
		fmt.Fprintln(os.Stderr, "✗ Exiting due to keyboard interrupt.")
		os.Exit(130)
	}()
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   config.ProgramName,
		Short: fmt.Sprintf("Manage a local %s server installation", config.ServerSoftwareName),
		Long: fmt.Sprintf(
			"%s installs, configures, and manages a containerized %s server\n"+
				"on this host using podman and systemd user services.",
			config.ProgramName, config.ServerSoftwareName),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Logger = logging.New(cfg.Verbosity, cfg.Quiet)
		},
	}

	flags := root.PersistentFlags()
	flags.CountVarP(&cfg.Verbosity, "verbose", "v", "increase output verbosity (repeatable)")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", false, "suppress all output and refuse interactive input")
	flags.BoolVarP(&cfg.AssumeYes, "yes", "y", false, "answer yes to every confirmation prompt")
	flags.StringVarP(&cfg.OverrideConfDir, "override-conf-dir", "c", "",
		"directory holding configuration override files")

	for _, newCommand := range commands.Registry {
		root.AddCommand(newCommand(cfg))
	}
	return root
}
