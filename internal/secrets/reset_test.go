package secrets

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quipucords/quipucordsctl/internal/console"
	qcerrors "github.com/quipucords/quipucordsctl/internal/errors"
	"github.com/quipucords/quipucordsctl/internal/logging"
	"github.com/quipucords/quipucordsctl/internal/secure"
)

type setCall struct {
	name         string
	value        string
	allowReplace bool
}

type fakeStore struct {
	exists    map[string]bool
	values    map[string]string
	setCalls  []setCall
	existsErr error
	setErr    error
	getErr    error
}

func (f *fakeStore) SecretExists(_ context.Context, name string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.exists[name], nil
}

func (f *fakeStore) SetSecret(_ context.Context, name string, value *secure.Buffer, allowReplace bool) error {
	var plaintext string
	_ = value.WithValue(func(v []byte) error {
		plaintext = string(v)
		return nil
	})
	f.setCalls = append(f.setCalls, setCall{name: name, value: plaintext, allowReplace: allowReplace})
	return f.setErr
}

func (f *fakeStore) DeleteSecret(_ context.Context, name string) error {
	delete(f.exists, name)
	return nil
}

func (f *fakeStore) GetSecret(_ context.Context, name string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.values[name], nil
}

func newTestOrchestrator(t *testing.T, store *fakeStore, input string, assumeYes bool) (*Orchestrator, *bytes.Buffer) {
	t.Helper()
	var logged bytes.Buffer
	logger := logging.NewWithWriter(&logged, logging.LevelDebug, false)
	con := console.NewWithStreams(logger, strings.NewReader(input), &bytes.Buffer{}, false, assumeYes)
	resolver := NewResolverWithEnv(logger, con, func(string) string { return "" })
	return NewOrchestrator(logger, store, resolver), &logged
}

func TestResetSecret(t *testing.T) {
	t.Parallel()

	t.Run("creates_missing_secret_without_allowing_replace", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{exists: map[string]bool{}}
		orch, _ := newTestOrchestrator(t, store, "", true)

		updated, err := orch.ResetSecret(context.Background(), ResetOptions{
			SecretName:   "test-secret",
			Requirements: PasswordRequirements(16),
		})

		require.NoError(t, err)
		assert.True(t, updated)
		require.Len(t, store.setCalls, 1)
		assert.Equal(t, "test-secret", store.setCalls[0].name)
		assert.False(t, store.setCalls[0].allowReplace)
		assert.GreaterOrEqual(t, len(store.setCalls[0].value), 16)
	})

	t.Run("replacing_existing_secret_allows_replace", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{exists: map[string]bool{"test-secret": true}}
		orch, _ := newTestOrchestrator(t, store, "", true)

		updated, err := orch.ResetSecret(context.Background(), ResetOptions{
			SecretName:                 "test-secret",
			Requirements:               PasswordRequirements(16),
			MustConfirmReplaceExisting: true,
		})

		require.NoError(t, err)
		assert.True(t, updated)
		require.Len(t, store.setCalls, 1)
		assert.True(t, store.setCalls[0].allowReplace)
	})

	t.Run("declined_replacement_does_not_touch_the_store", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{exists: map[string]bool{"test-secret": true}}
		orch, logged := newTestOrchestrator(t, store, "n\n", false)

		updated, err := orch.ResetSecret(context.Background(), ResetOptions{
			SecretName:                 "test-secret",
			Requirements:               PasswordRequirements(16),
			MustConfirmReplaceExisting: true,
		})

		require.NoError(t, err)
		assert.False(t, updated)
		assert.Empty(t, store.setCalls)
		assert.Contains(t, logged.String(), "not updated")
	})

	t.Run("replace_confirmation_skipped_when_secret_is_missing", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{exists: map[string]bool{}}
		// No input: a confirmation attempt would fail the read.
		orch, _ := newTestOrchestrator(t, store, "", false)

		updated, err := orch.ResetSecret(context.Background(), ResetOptions{
			SecretName:                 "test-secret",
			Requirements:               PasswordRequirements(16),
			MustConfirmReplaceExisting: true,
		})

		require.NoError(t, err)
		assert.True(t, updated)
	})

	t.Run("store_failure_is_a_logged_non_update", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{exists: map[string]bool{}, setErr: errors.New("engine exploded")}
		orch, logged := newTestOrchestrator(t, store, "", true)

		updated, err := orch.ResetSecret(context.Background(), ResetOptions{
			SecretName:   "test-secret",
			Requirements: PasswordRequirements(16),
		})

		require.NoError(t, err)
		assert.False(t, updated)
		assert.Contains(t, logged.String(), "not updated")
	})

	t.Run("not_ready_store_failure_aborts", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{
			exists: map[string]bool{},
			setErr: qcerrors.NotReadyError{Message: "podman socket is down"},
		}
		orch, _ := newTestOrchestrator(t, store, "", true)

		updated, err := orch.ResetSecret(context.Background(), ResetOptions{
			SecretName:   "test-secret",
			Requirements: PasswordRequirements(16),
		})

		require.Error(t, err)
		assert.False(t, updated)
		var notReady qcerrors.NotReadyError
		assert.ErrorAs(t, err, &notReady)
	})

	t.Run("exists_probe_failure_aborts", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{existsErr: errors.New("engine unreachable")}
		orch, _ := newTestOrchestrator(t, store, "", true)

		updated, err := orch.ResetSecret(context.Background(), ResetOptions{
			SecretName:   "test-secret",
			Requirements: PasswordRequirements(16),
		})

		require.Error(t, err)
		assert.False(t, updated)
		assert.Empty(t, store.setCalls)
	})
}

func TestResetUsername(t *testing.T) {
	t.Parallel()

	t.Run("always_confirms_before_replacing", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{exists: map[string]bool{"test-username": true}}
		orch, _ := newTestOrchestrator(t, store, "n\n", false)

		updated, err := orch.ResetUsername(context.Background(), ResetOptions{
			SecretName:   "test-username",
			Requirements: UsernameRequirements(),
		})

		require.NoError(t, err)
		assert.False(t, updated)
		assert.Empty(t, store.setCalls)
	})

	t.Run("prompts_instead_of_generating", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{exists: map[string]bool{}}
		orch, logged := newTestOrchestrator(t, store, "operator\noperator\n", false)

		updated, err := orch.ResetUsername(context.Background(), ResetOptions{
			SecretName:   "test-username",
			Requirements: UsernameRequirements(),
		})

		require.NoError(t, err)
		assert.True(t, updated)
		require.Len(t, store.setCalls, 1)
		assert.Equal(t, "operator", store.setCalls[0].value)
		assert.NotContains(t, logged.String(), "randomly generated")
	})
}

func TestBuildSimilarValueCheck(t *testing.T) {
	t.Parallel()

	t.Run("wraps_the_stored_value", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{values: map[string]string{"test-secret": "stored-value"}}
		orch, _ := newTestOrchestrator(t, store, "", true)

		check := orch.BuildSimilarValueCheck(context.Background(), "test-secret", "related secret")

		require.NotNil(t, check)
		assert.Equal(t, "stored-value", check.Value)
		assert.Equal(t, "related secret", check.Name)
		assert.Equal(t, 1.0, check.MaxSimilarity)
	})

	t.Run("missing_value_yields_no_check", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{values: map[string]string{}}
		orch, _ := newTestOrchestrator(t, store, "", true)

		assert.Nil(t, orch.BuildSimilarValueCheck(context.Background(), "test-secret", "related secret"))
	})

	t.Run("unreadable_value_yields_no_check", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{getErr: errors.New("inspect failed")}
		orch, _ := newTestOrchestrator(t, store, "", true)

		assert.Nil(t, orch.BuildSimilarValueCheck(context.Background(), "test-secret", "related secret"))
	})
}
