// Package shell runs external programs (podman, systemctl, loginctl,
// journalctl) with captured output and consistent logging. The
// CommandExecutor interface allows command execution to be faked in tests.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	qcerrors "github.com/quipucords/quipucordsctl/internal/errors"
	"github.com/quipucords/quipucordsctl/internal/logging"
)

// Request describes one external program invocation.
type Request struct {
	// Argv is the command and its arguments, e.g.
	// ["systemctl", "--user", "reset-failed"].
	Argv []string
	// Env holds extra environment variables layered over the current
	// process environment.
	Env map[string]string
	// Stdin, when set, is piped to the command. Used to pass secret
	// values to podman without exposing them in the argument list.
	Stdin io.Reader
	// Stdout, when set, receives the command's stdout directly instead
	// of it being captured. Used for bulk output such as journalctl.
	Stdout io.Writer
	// Timeout bounds the command's runtime; zero means no deadline.
	Timeout time.Duration
}

// CommandExecutor executes an external program.
type CommandExecutor interface {
	// Execute runs the request and returns captured stdout and stderr,
	// the process exit code, and an error if the command could not be
	// started or timed out. A nonzero exit alone is not an Execute error.
	Execute(ctx context.Context, req Request) (stdout, stderr []byte, exitCode int, err error)
}

// RealCommandExecutor runs actual programs via os/exec.
type RealCommandExecutor struct{}

// Execute runs the requested command.
func (RealCommandExecutor) Execute(ctx context.Context, req Request) ([]byte, []byte, int, error) {
	if len(req.Argv) == 0 {
		return nil, nil, -1, errors.New("empty command")
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, req.Argv[0], req.Argv[1:]...)
	if len(req.Env) > 0 {
		env := os.Environ()
		for key, value := range req.Env {
			env = append(env, fmt.Sprintf("%s=%s", key, value))
		}
		cmd.Env = env
	}
	if req.Stdin != nil {
		cmd.Stdin = req.Stdin
	}

	var stdout, stderr bytes.Buffer
	if req.Stdout != nil {
		cmd.Stdout = req.Stdout
	} else {
		cmd.Stdout = &stdout
	}
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), ctxErr
			}
			return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), nil
		}
		return stdout.Bytes(), stderr.Bytes(), -1, err
	}
	return stdout.Bytes(), stderr.Bytes(), 0, nil
}

// DefaultExecutor returns the production executor.
func DefaultExecutor() CommandExecutor {
	return RealCommandExecutor{}
}

// Runner wraps a CommandExecutor with logging and error shaping.
type Runner struct {
	executor CommandExecutor
	logger   *logging.Logger
}

// NewRunner creates a runner with the production executor.
func NewRunner(logger *logging.Logger) *Runner {
	return &Runner{executor: DefaultExecutor(), logger: logger}
}

// NewRunnerWithExecutor creates a runner with an injected executor, for tests.
func NewRunnerWithExecutor(logger *logging.Logger, executor CommandExecutor) *Runner {
	return &Runner{executor: executor, logger: logger}
}

// Run executes the request. A nonzero exit returns a CommandError carrying
// the exit code. Output lines are logged quietly on success and loudly on
// failure so operators see what the failed program reported.
func (r *Runner) Run(ctx context.Context, req Request) (string, string, error) {
	r.logger.Debug("Invoking subprocess with arguments %v", req.Argv)

	stdoutBytes, stderrBytes, exitCode, err := r.executor.Execute(ctx, req)
	stdout := string(stdoutBytes)
	stderr := string(stderrBytes)

	if err != nil {
		r.logger.Error("Subprocess with arguments %v failed due to unexpected error.", req.Argv)
		return stdout, stderr, qcerrors.CommandError{
			Command:  strings.Join(req.Argv, " "),
			ExitCode: exitCode,
			Message:  err.Error(),
			Err:      err,
		}
	}

	logOut := r.logger.Debug
	logErr := r.logger.Debug
	if exitCode != 0 {
		logOut = r.logger.Info
		logErr = r.logger.Error
	}
	for _, line := range splitOutputLines(stdout) {
		logOut("%s", line)
	}
	for _, line := range splitOutputLines(stderr) {
		logErr("%s", line)
	}

	if exitCode != 0 {
		r.logger.Error("Subprocess with arguments %v failed with exit code %d", req.Argv, exitCode)
		return stdout, stderr, qcerrors.CommandError{
			Command:  strings.Join(req.Argv, " "),
			ExitCode: exitCode,
		}
	}
	return stdout, stderr, nil
}

// RunStatus executes the request but treats a nonzero exit as a status
// result instead of an error. Used for probes like `podman secret exists`.
func (r *Runner) RunStatus(ctx context.Context, req Request) (string, string, int, error) {
	r.logger.Debug("Invoking subprocess with arguments %v", req.Argv)

	stdoutBytes, stderrBytes, exitCode, err := r.executor.Execute(ctx, req)
	if err != nil {
		return string(stdoutBytes), string(stderrBytes), exitCode, qcerrors.CommandError{
			Command:  strings.Join(req.Argv, " "),
			ExitCode: exitCode,
			Message:  err.Error(),
			Err:      err,
		}
	}
	return string(stdoutBytes), string(stderrBytes), exitCode, nil
}

// GetEnv reads an environment variable, logging whether it was found.
func (r *Runner) GetEnv(name string) string {
	if value := os.Getenv(name); value != "" {
		r.logger.Debug("Environment variable '%s' found.", name)
		return value
	}
	r.logger.Debug("Environment variable '%s' not found.", name)
	return ""
}

func splitOutputLines(s string) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
