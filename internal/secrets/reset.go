package secrets

import (
	"context"
	"errors"

	qcerrors "github.com/quipucords/quipucordsctl/internal/errors"
	"github.com/quipucords/quipucordsctl/internal/logging"
	"github.com/quipucords/quipucordsctl/internal/secure"
)

// SecretStore is the container engine's secret storage facility. Implemented
// by the podman adapter; faked in tests.
type SecretStore interface {
	// SecretExists reports whether the named secret is present.
	SecretExists(ctx context.Context, name string) (bool, error)
	// SetSecret stores a value. When the secret already exists it is
	// replaced only if allowReplace is set; otherwise the call fails.
	SetSecret(ctx context.Context, name string, value *secure.Buffer, allowReplace bool) error
	// DeleteSecret removes the named secret if present.
	DeleteSecret(ctx context.Context, name string) error
	// GetSecret reads a stored value. Used only for similarity checks
	// against related credentials.
	GetSecret(ctx context.Context, name string) (string, error)
}

// ResetOptions configure one reset operation.
type ResetOptions struct {
	SecretName   string
	EnvVarName   string
	Messages     Messages
	Requirements Requirements
	// MustConfirmReplaceExisting requires confirmation before replacing
	// an existing secret. It is consulted only when the secret exists.
	MustConfirmReplaceExisting bool
	MustConfirmAllowNonrandom  bool
	MustPrompt                 bool
	MayPrompt                  bool
}

// Orchestrator combines the resolver and the store into the reusable
// reset operation every reset-* command and install share.
type Orchestrator struct {
	logger   *logging.Logger
	store    SecretStore
	resolver *Resolver
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(logger *logging.Logger, store SecretStore, resolver *Resolver) *Orchestrator {
	return &Orchestrator{logger: logger, store: store, resolver: resolver}
}

// ResetSecret resolves and stores a new value for one secret kind.
//
// The returned bool reports whether the secret was updated; declined
// confirmations and validation failures return false without error (they
// are logged, legitimate outcomes). The error return carries only failures
// that should abort the whole command, such as the store being unreachable.
//
// The store's set operation receives allowReplace exactly when the secret
// existed when this operation started; there is no value-equality
// short-circuit, and a race making the secret reappear surfaces as a
// logged not-updated failure.
func (o *Orchestrator) ResetSecret(ctx context.Context, opts ResetOptions) (bool, error) {
	messages := opts.Messages.withDefaults()

	exists, err := o.store.SecretExists(ctx, opts.SecretName)
	if err != nil {
		return false, err
	}

	value, err := o.resolver.NewValue(ResolveRequest{
		SecretName:                 opts.SecretName,
		Messages:                   messages,
		EnvVarName:                 opts.EnvVarName,
		Requirements:               opts.Requirements,
		MustConfirmReplaceExisting: exists && opts.MustConfirmReplaceExisting,
		MustConfirmAllowNonrandom:  opts.MustConfirmAllowNonrandom,
		MustPrompt:                 opts.MustPrompt,
		MayPrompt:                  opts.MayPrompt,
	})
	if err != nil {
		return false, err
	}
	if value == nil {
		o.logger.Error("%s", messages.WasNotUpdated)
		return false, nil
	}
	defer value.Destroy()

	if err := o.store.SetSecret(ctx, opts.SecretName, value, exists); err != nil {
		var notReady qcerrors.NotReadyError
		if errors.As(err, &notReady) {
			return false, err
		}
		o.logger.Error("%s", messages.WasNotUpdated)
		return false, nil
	}

	o.logger.Debug("%s", messages.WasUpdated)
	return true, nil
}

// ResetUsername resets a username-kind secret. It shares ResetSecret's
// skeleton with the password-style character-class rules disabled by the
// caller's requirements, and replacing an existing username always requires
// confirmation to avoid accidental lockout, regardless of the option flag.
func (o *Orchestrator) ResetUsername(ctx context.Context, opts ResetOptions) (bool, error) {
	opts.MustConfirmReplaceExisting = true
	opts.MustConfirmAllowNonrandom = false
	opts.MayPrompt = true
	return o.ResetSecret(ctx, opts)
}

// BuildSimilarValueCheck fetches a related stored secret for use as a
// similarity reference. A missing or unreadable secret yields nil (no
// similarity constraint) so a fresh system can still set its first value.
func (o *Orchestrator) BuildSimilarValueCheck(ctx context.Context, secretName, displayName string) *SimilarValueCheck {
	value, err := o.store.GetSecret(ctx, secretName)
	if err != nil || value == "" {
		o.logger.Debug("No stored value for '%s'; skipping similarity check.", secretName)
		return nil
	}
	return &SimilarValueCheck{Value: value, Name: displayName, MaxSimilarity: 1.0}
}

// IsSet reports whether the named secret already exists in the store.
func (o *Orchestrator) IsSet(ctx context.Context, name string) (bool, error) {
	return o.store.SecretExists(ctx, name)
}
