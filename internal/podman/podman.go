// Package podman adapts the podman CLI into the secret store and image
// operations the commands need. All calls go through the injectable shell
// executor so tests never touch a real container engine.
package podman

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	qcerrors "github.com/quipucords/quipucordsctl/internal/errors"
	"github.com/quipucords/quipucordsctl/internal/logging"
	"github.com/quipucords/quipucordsctl/internal/secure"
	"github.com/quipucords/quipucordsctl/internal/shell"
	"github.com/quipucords/quipucordsctl/internal/unitfile"
)

var (
	systemctlEnableSocketCmd = []string{"systemctl", "--user", "enable", "--now", "podman.socket"}
	systemctlStatusSocketCmd = []string{"systemctl", "--user", "status", "podman.socket"}
	machineStateCmd          = []string{"podman", "machine", "inspect", "--format", "{{.State}}"}
)

// Client wraps podman CLI invocations.
type Client struct {
	logger *logging.Logger
	runner *shell.Runner
	// goos is swappable in tests to exercise the darwin path.
	goos string
	// statPath is swappable in tests for the socket existence check.
	statPath func(string) (os.FileInfo, error)
}

// NewClient creates a podman client.
func NewClient(logger *logging.Logger, runner *shell.Runner) *Client {
	return &Client{logger: logger, runner: runner, goos: runtime.GOOS, statPath: os.Stat}
}

// EnsureSocket verifies the podman service socket is available, starting it
// where possible. It returns a NotReadyError with remediation guidance when
// podman cannot be used.
func (c *Client) EnsureSocket(ctx context.Context) error {
	c.logger.Debug("Ensuring podman socket is available.")

	if c.goos == "darwin" {
		stdout, _, err := c.runner.Run(ctx, shell.Request{Argv: machineStateCmd})
		if err != nil {
			return qcerrors.NotReadyError{
				Message:    "Podman command failed unexpectedly.",
				Suggestion: "Install podman and run `podman machine start` before using this command",
				Err:        err,
			}
		}
		if strings.TrimSpace(stdout) != "running" {
			return qcerrors.NotReadyError{
				Message:    "Podman machine is not running.",
				Suggestion: "Run `podman machine start` before using this command",
			}
		}
		return nil
	}

	if _, _, err := c.runner.Run(ctx, shell.Request{Argv: systemctlEnableSocketCmd}); err != nil {
		return qcerrors.NotReadyError{
			Message:    "The 'podman.socket' service failed to start.",
			Suggestion: "Check logs and ensure that podman is correctly installed",
			Err:        err,
		}
	}
	if _, _, err := c.runner.Run(ctx, shell.Request{Argv: systemctlStatusSocketCmd}); err != nil {
		return qcerrors.NotReadyError{
			Message:    "The 'podman.socket' service is not running.",
			Suggestion: "Check logs and ensure that podman is correctly installed",
			Err:        err,
		}
	}

	socketPath := c.socketPath()
	if _, err := c.statPath(socketPath); err != nil {
		return qcerrors.NotReadyError{
			Message:    fmt.Sprintf("Podman socket does not exist at expected path (%s).", socketPath),
			Suggestion: "Check logs and ensure that podman is correctly installed",
			Err:        err,
		}
	}
	return nil
}

func (c *Client) socketPath() string {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = fmt.Sprintf("/run/user/%d", os.Getuid())
	}
	return filepath.Join(runtimeDir, "podman", "podman.sock")
}

// SecretExists reports whether the named podman secret exists.
func (c *Client) SecretExists(ctx context.Context, name string) (bool, error) {
	_, _, exitCode, err := c.runner.RunStatus(ctx, shell.Request{
		Argv: []string{"podman", "secret", "exists", name},
	})
	if err != nil {
		return false, err
	}
	return exitCode == 0, nil
}

// SetSecret stores a secret value, replacing an existing one only when
// allowReplace is set. The value is piped through stdin so it never appears
// in a process argument list.
func (c *Client) SetSecret(ctx context.Context, name string, value *secure.Buffer, allowReplace bool) error {
	exists, err := c.SecretExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		if !allowReplace {
			c.logger.Error("A podman secret %s already exists.", name)
			return qcerrors.UserError{
				Message: fmt.Sprintf("A podman secret %s already exists.", name),
			}
		}
		c.logger.Debug("A podman secret %s already exists.", name)
		if _, _, err := c.runner.Run(ctx, shell.Request{
			Argv: []string{"podman", "secret", "rm", name},
		}); err != nil {
			return err
		}
		c.logger.Info("Old podman secret %s was removed.", name)
	}

	err = value.WithValue(func(plaintext []byte) error {
		_, _, runErr := c.runner.Run(ctx, shell.Request{
			Argv:  []string{"podman", "secret", "create", name, "-"},
			Stdin: bytes.NewReader(plaintext),
		})
		return runErr
	})
	if err != nil {
		return err
	}
	c.logger.Info("New podman secret %s was set.", name)
	return nil
}

// DeleteSecret removes the named secret. Deleting an absent secret is not
// an error.
func (c *Client) DeleteSecret(ctx context.Context, name string) error {
	exists, err := c.SecretExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		c.logger.Debug("Podman secret %s does not exist; nothing to delete.", name)
		return nil
	}
	if _, _, err := c.runner.Run(ctx, shell.Request{
		Argv: []string{"podman", "secret", "rm", name},
	}); err != nil {
		return err
	}
	c.logger.Info("Podman secret %s was removed.", name)
	return nil
}

// GetSecret reads a stored secret's value. Used only to compare related
// credentials, never to display.
func (c *Client) GetSecret(ctx context.Context, name string) (string, error) {
	stdout, _, err := c.runner.Run(ctx, shell.Request{
		Argv: []string{"podman", "secret", "inspect", "--showsecret", "--format", "{{.SecretData}}", name},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

// PullImage pulls one container image, bounded by the given timeout.
func (c *Client) PullImage(ctx context.Context, image string, timeout time.Duration) error {
	c.logger.Info("Pulling image %s", image)
	_, _, err := c.runner.Run(ctx, shell.Request{
		Argv:    []string{"podman", "pull", image},
		Timeout: timeout,
	})
	return err
}

// RemoveImage removes one container image.
func (c *Client) RemoveImage(ctx context.Context, image string) error {
	_, _, err := c.runner.Run(ctx, shell.Request{
		Argv: []string{"podman", "rmi", image},
	})
	return err
}

// ExpectedContainerImages collects the distinct Image values from the
// installed .container unit files, sorted for stable processing order.
// Malformed unit files are skipped with a warning.
func (c *Client) ExpectedContainerImages(unitsDir string, unitFileNames []string) []string {
	unique := make(map[string]bool)
	for _, name := range unitFileNames {
		if filepath.Ext(name) != ".container" {
			continue
		}
		path := filepath.Join(unitsDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		doc, err := unitfile.ParseBytes(data, unitfile.Options{AllowNoValue: true})
		if err != nil {
			c.logger.Warn("Skipping the %s container file: %v", name, err)
			continue
		}
		section, ok := doc.Section("Container")
		if !ok {
			continue
		}
		values, ok := section.Values("Image")
		if !ok {
			continue
		}
		for _, image := range values {
			if image != "" {
				unique[image] = true
			}
		}
	}

	images := make([]string, 0, len(unique))
	for image := range unique {
		images = append(images, image)
	}
	sort.Strings(images)
	return images
}
