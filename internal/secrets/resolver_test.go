package secrets

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quipucords/quipucordsctl/internal/console"
	"github.com/quipucords/quipucordsctl/internal/logging"
	"github.com/quipucords/quipucordsctl/internal/secure"
)

func newTestResolver(t *testing.T, input string, env map[string]string) (*Resolver, *bytes.Buffer) {
	t.Helper()
	var logged bytes.Buffer
	logger := logging.NewWithWriter(&logged, logging.LevelDebug, false)
	con := console.NewWithStreams(logger, strings.NewReader(input), &bytes.Buffer{}, false, false)
	resolver := NewResolverWithEnv(logger, con, func(name string) string { return env[name] })
	return resolver, &logged
}

func bufferValue(t *testing.T, b *secure.Buffer) string {
	t.Helper()
	var got string
	require.NoError(t, b.WithValue(func(value []byte) error {
		got = string(value)
		return nil
	}))
	return got
}

func TestResolverNewValue(t *testing.T) {
	t.Parallel()

	t.Run("uses_valid_environment_value", func(t *testing.T) {
		t.Parallel()
		resolver, _ := newTestResolver(t, "", map[string]string{"TEST_SECRET": "s3cure-enough-value"})

		value, err := resolver.NewValue(ResolveRequest{
			SecretName:   "test-secret",
			EnvVarName:   "TEST_SECRET",
			Requirements: PasswordRequirements(10),
		})

		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, "s3cure-enough-value", bufferValue(t, value))
	})

	t.Run("trims_environment_value", func(t *testing.T) {
		t.Parallel()
		resolver, _ := newTestResolver(t, "", map[string]string{"TEST_SECRET": "  s3cure-enough-value \n"})

		value, err := resolver.NewValue(ResolveRequest{
			SecretName:   "test-secret",
			EnvVarName:   "TEST_SECRET",
			Requirements: PasswordRequirements(10),
		})

		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, "s3cure-enough-value", bufferValue(t, value))
	})

	t.Run("invalid_environment_value_never_falls_back_to_random", func(t *testing.T) {
		t.Parallel()
		resolver, logged := newTestResolver(t, "", map[string]string{"TEST_SECRET": "short"})

		value, err := resolver.NewValue(ResolveRequest{
			SecretName:   "test-secret",
			EnvVarName:   "TEST_SECRET",
			Requirements: PasswordRequirements(10),
		})

		require.NoError(t, err)
		assert.Nil(t, value)
		assert.NotContains(t, logged.String(), "randomly generated")
	})

	t.Run("generates_randomly_when_nothing_is_provided", func(t *testing.T) {
		t.Parallel()
		resolver, logged := newTestResolver(t, "", nil)

		value, err := resolver.NewValue(ResolveRequest{
			SecretName:   "test-secret",
			EnvVarName:   "TEST_SECRET",
			Requirements: PasswordRequirements(10),
		})

		require.NoError(t, err)
		require.NotNil(t, value)
		assert.GreaterOrEqual(t, len(bufferValue(t, value)), 10)
		assert.Contains(t, logged.String(), "randomly generated")
	})

	t.Run("declined_replace_confirmation_returns_nil", func(t *testing.T) {
		t.Parallel()
		resolver, _ := newTestResolver(t, "n\n", map[string]string{"TEST_SECRET": "s3cure-enough-value"})

		value, err := resolver.NewValue(ResolveRequest{
			SecretName:                 "test-secret",
			EnvVarName:                 "TEST_SECRET",
			Requirements:               PasswordRequirements(10),
			MustConfirmReplaceExisting: true,
		})

		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("nonrandom_confirmation_gates_environment_value", func(t *testing.T) {
		t.Parallel()
		resolver, _ := newTestResolver(t, "n\n", map[string]string{"TEST_SECRET": "s3cure-enough-value"})

		value, err := resolver.NewValue(ResolveRequest{
			SecretName:                "test-secret",
			EnvVarName:                "TEST_SECRET",
			Requirements:              PasswordRequirements(10),
			MustConfirmAllowNonrandom: true,
		})

		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("must_prompt_ignores_the_environment", func(t *testing.T) {
		t.Parallel()
		resolver, _ := newTestResolver(t, "prompted-v4lue-ok\nprompted-v4lue-ok\n",
			map[string]string{"TEST_SECRET": "env-v4lue-okokok"})

		value, err := resolver.NewValue(ResolveRequest{
			SecretName:   "test-secret",
			EnvVarName:   "TEST_SECRET",
			Requirements: PasswordRequirements(10),
			MustPrompt:   true,
		})

		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, "prompted-v4lue-ok", bufferValue(t, value))
	})

	t.Run("may_prompt_asks_instead_of_generating", func(t *testing.T) {
		t.Parallel()
		resolver, logged := newTestResolver(t, "prompted-v4lue-ok\nprompted-v4lue-ok\n", nil)

		value, err := resolver.NewValue(ResolveRequest{
			SecretName:   "test-secret",
			EnvVarName:   "TEST_SECRET",
			Requirements: PasswordRequirements(10),
			MayPrompt:    true,
		})

		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, "prompted-v4lue-ok", bufferValue(t, value))
		assert.NotContains(t, logged.String(), "randomly generated")
	})

	t.Run("prompt_mismatch_returns_nil", func(t *testing.T) {
		t.Parallel()
		resolver, logged := newTestResolver(t, "first-v4lue-okok\nsecond-v4lue-okok\n", nil)

		value, err := resolver.NewValue(ResolveRequest{
			SecretName:   "test-secret",
			Requirements: PasswordRequirements(10),
			MustPrompt:   true,
		})

		require.NoError(t, err)
		assert.Nil(t, value)
		assert.Contains(t, logged.String(), "do not match")
	})

	t.Run("invalid_prompted_value_returns_nil", func(t *testing.T) {
		t.Parallel()
		resolver, _ := newTestResolver(t, "short\nshort\n", nil)

		value, err := resolver.NewValue(ResolveRequest{
			SecretName:   "test-secret",
			Requirements: PasswordRequirements(10),
			MustPrompt:   true,
		})

		require.NoError(t, err)
		assert.Nil(t, value)
	})
}
