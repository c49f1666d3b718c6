package loginctl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quipucords/quipucordsctl/internal/logging"
	"github.com/quipucords/quipucordsctl/internal/shell"
)

type fakeExecutor struct {
	calls  []string
	stdout string
}

func (f *fakeExecutor) Execute(_ context.Context, req shell.Request) ([]byte, []byte, int, error) {
	f.calls = append(f.calls, strings.Join(req.Argv, " "))
	return []byte(f.stdout), nil, 0, nil
}

func newTestClient(executor shell.CommandExecutor) *Client {
	logger := logging.NewWithWriter(&bytes.Buffer{}, logging.LevelDebug, false)
	client := NewClient(logger, shell.NewRunnerWithExecutor(logger, executor))
	client.currentUsername = func() (string, error) { return "operator", nil }
	return client
}

func TestIsLingerEnabled(t *testing.T) {
	t.Parallel()

	t.Run("parses_enabled", func(t *testing.T) {
		t.Parallel()
		executor := &fakeExecutor{stdout: "Linger=yes\n"}
		client := newTestClient(executor)

		enabled, err := client.IsLingerEnabled(context.Background())
		require.NoError(t, err)
		assert.True(t, enabled)
		assert.Contains(t, executor.calls, "loginctl show-user operator --property=Linger")
	})

	t.Run("parses_disabled", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(&fakeExecutor{stdout: "Linger=no\n"})

		enabled, err := client.IsLingerEnabled(context.Background())
		require.NoError(t, err)
		assert.False(t, enabled)
	})
}

func TestEnableLinger(t *testing.T) {
	t.Parallel()

	t.Run("enables_when_disabled", func(t *testing.T) {
		t.Parallel()
		executor := &fakeExecutor{stdout: "Linger=no\n"}
		client := newTestClient(executor)

		require.NoError(t, client.EnableLinger(context.Background()))
		assert.Contains(t, executor.calls, "loginctl enable-linger operator")
	})

	t.Run("skips_when_already_enabled", func(t *testing.T) {
		t.Parallel()
		executor := &fakeExecutor{stdout: "Linger=yes\n"}
		client := newTestClient(executor)

		require.NoError(t, client.EnableLinger(context.Background()))
		assert.NotContains(t, executor.calls, "loginctl enable-linger operator")
	})
}
