// Package loginctl manages systemd user lingering, which keeps the server's
// user services running when the operator is not logged in.
package loginctl

import (
	"context"
	"os/user"
	"strings"

	"github.com/quipucords/quipucordsctl/internal/logging"
	"github.com/quipucords/quipucordsctl/internal/shell"
)

// lingerEnv pins the locale so property output parses predictably.
var lingerEnv = map[string]string{"LANG": "C", "LC_ALL": "C"}

// Client wraps loginctl invocations.
type Client struct {
	logger *logging.Logger
	runner *shell.Runner
	// currentUsername is swappable in tests.
	currentUsername func() (string, error)
}

// NewClient creates a loginctl client.
func NewClient(logger *logging.Logger, runner *shell.Runner) *Client {
	return &Client{logger: logger, runner: runner, currentUsername: defaultUsername}
}

func defaultUsername() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// IsLingerEnabled reports whether lingering is enabled for the current user.
func (c *Client) IsLingerEnabled(ctx context.Context) (bool, error) {
	username, err := c.currentUsername()
	if err != nil {
		return false, err
	}
	stdout, _, err := c.runner.Run(ctx, shell.Request{
		Argv: []string{"loginctl", "show-user", username, "--property=Linger"},
		Env:  lingerEnv,
	})
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(stdout) == "Linger=yes", nil
}

// CheckLinger logs whether lingering is enabled and returns the result.
func (c *Client) CheckLinger(ctx context.Context) (bool, error) {
	enabled, err := c.IsLingerEnabled(ctx)
	if err != nil {
		return false, err
	}
	if enabled {
		c.logger.Debug("Lingering is enabled for the current user.")
	} else {
		c.logger.Warn("Lingering is not enabled for the current user.")
	}
	return enabled, nil
}

// EnableLinger enables lingering for the current user if it is not already
// enabled, so server services survive logout.
func (c *Client) EnableLinger(ctx context.Context) error {
	enabled, err := c.IsLingerEnabled(ctx)
	if err != nil {
		return err
	}
	if enabled {
		c.logger.Debug("Lingering is already enabled for the current user.")
		return nil
	}
	username, err := c.currentUsername()
	if err != nil {
		return err
	}
	c.logger.Info("Enabling lingering for user %s.", username)
	_, _, err = c.runner.Run(ctx, shell.Request{
		Argv: []string{"loginctl", "enable-linger", username},
	})
	return err
}
