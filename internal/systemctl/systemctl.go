// Package systemctl wraps the `systemctl --user` operations used to manage
// the server's quadlet-generated services.
package systemctl

import (
	"context"
	"strings"

	"github.com/quipucords/quipucordsctl/internal/logging"
	"github.com/quipucords/quipucordsctl/internal/shell"
)

// Client wraps systemctl invocations.
type Client struct {
	logger *logging.Logger
	runner *shell.Runner
}

// NewClient creates a systemctl client.
func NewClient(logger *logging.Logger, runner *shell.Runner) *Client {
	return &Client{logger: logger, runner: runner}
}

// ServicesInstalled reports whether the named unit is known to the user
// systemd instance. Probing avoids noisy stop failures on a host that never
// had the server installed.
func (c *Client) ServicesInstalled(ctx context.Context, unitName string) (bool, error) {
	stdout, _, exitCode, err := c.runner.RunStatus(ctx, shell.Request{
		Argv: []string{"systemctl", "--user", "list-unit-files", unitName},
	})
	if err != nil {
		return false, err
	}
	return exitCode == 0 && strings.Contains(stdout, unitName), nil
}

// StopServices stops the server's application service and its network unit.
// Quadlet dependency ordering takes the database and redis services down
// with the network.
func (c *Client) StopServices(ctx context.Context) error {
	installed, err := c.ServicesInstalled(ctx, "quipucords-app.service")
	if err != nil {
		return err
	}
	if !installed {
		c.logger.Debug("Server services are not installed; nothing to stop.")
		return nil
	}

	c.logger.Info("Stopping server services.")
	if _, _, err := c.runner.Run(ctx, shell.Request{
		Argv: []string{"systemctl", "--user", "stop", "quipucords-app"},
	}); err != nil {
		return err
	}
	if _, _, err := c.runner.Run(ctx, shell.Request{
		Argv: []string{"systemctl", "--user", "stop", "quipucords-network"},
	}); err != nil {
		return err
	}
	return nil
}

// ReloadDaemon clears failed unit state and reloads the user systemd
// instance so quadlet regenerates services from the installed unit files.
func (c *Client) ReloadDaemon(ctx context.Context) error {
	c.logger.Debug("Reloading systemd user daemon.")
	if _, _, err := c.runner.Run(ctx, shell.Request{
		Argv: []string{"systemctl", "--user", "reset-failed"},
	}); err != nil {
		return err
	}
	if _, _, err := c.runner.Run(ctx, shell.Request{
		Argv: []string{"systemctl", "--user", "daemon-reload"},
	}); err != nil {
		return err
	}
	return nil
}
