package shell

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qcerrors "github.com/quipucords/quipucordsctl/internal/errors"
	"github.com/quipucords/quipucordsctl/internal/logging"
)

type scriptedExecutor struct {
	calls    []Request
	stdout   string
	stderr   string
	exitCode int
	err      error
}

func (s *scriptedExecutor) Execute(_ context.Context, req Request) ([]byte, []byte, int, error) {
	s.calls = append(s.calls, req)
	return []byte(s.stdout), []byte(s.stderr), s.exitCode, s.err
}

func newTestRunner(executor CommandExecutor) (*Runner, *bytes.Buffer) {
	var logged bytes.Buffer
	logger := logging.NewWithWriter(&logged, logging.LevelDebug, false)
	return NewRunnerWithExecutor(logger, executor), &logged
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("returns_captured_output_on_success", func(t *testing.T) {
		t.Parallel()
		executor := &scriptedExecutor{stdout: "hello\n"}
		runner, _ := newTestRunner(executor)

		stdout, stderr, err := runner.Run(context.Background(), Request{Argv: []string{"true"}})

		require.NoError(t, err)
		assert.Equal(t, "hello\n", stdout)
		assert.Empty(t, stderr)
		require.Len(t, executor.calls, 1)
		assert.Equal(t, []string{"true"}, executor.calls[0].Argv)
	})

	t.Run("nonzero_exit_becomes_a_command_error", func(t *testing.T) {
		t.Parallel()
		executor := &scriptedExecutor{stderr: "boom\n", exitCode: 3}
		runner, logged := newTestRunner(executor)

		_, _, err := runner.Run(context.Background(), Request{Argv: []string{"podman", "pull", "img"}})

		var cmdErr qcerrors.CommandError
		require.ErrorAs(t, err, &cmdErr)
		assert.Equal(t, 3, cmdErr.ExitCode)
		assert.Equal(t, "podman pull img", cmdErr.Command)
		assert.Contains(t, logged.String(), "boom")
		assert.Contains(t, logged.String(), "exit code 3")
	})

	t.Run("execution_failure_becomes_a_command_error", func(t *testing.T) {
		t.Parallel()
		executor := &scriptedExecutor{exitCode: -1, err: errors.New("no such program")}
		runner, _ := newTestRunner(executor)

		_, _, err := runner.Run(context.Background(), Request{Argv: []string{"nope"}})

		var cmdErr qcerrors.CommandError
		require.ErrorAs(t, err, &cmdErr)
		assert.Contains(t, cmdErr.Message, "no such program")
	})
}

func TestRunStatus(t *testing.T) {
	t.Parallel()

	t.Run("nonzero_exit_is_a_status_not_an_error", func(t *testing.T) {
		t.Parallel()
		executor := &scriptedExecutor{exitCode: 1}
		runner, _ := newTestRunner(executor)

		_, _, exitCode, err := runner.RunStatus(context.Background(), Request{
			Argv: []string{"podman", "secret", "exists", "x"},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, exitCode)
	})

	t.Run("execution_failure_is_still_an_error", func(t *testing.T) {
		t.Parallel()
		executor := &scriptedExecutor{exitCode: -1, err: errors.New("spawn failed")}
		runner, _ := newTestRunner(executor)

		_, _, _, err := runner.RunStatus(context.Background(), Request{Argv: []string{"x"}})
		assert.Error(t, err)
	})
}

func TestRealCommandExecutor(t *testing.T) {
	t.Parallel()

	t.Run("empty_argv_fails", func(t *testing.T) {
		t.Parallel()
		_, _, _, err := RealCommandExecutor{}.Execute(context.Background(), Request{})
		assert.Error(t, err)
	})
}
