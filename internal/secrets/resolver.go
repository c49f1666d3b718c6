package secrets

import (
	"os"
	"strings"

	"github.com/quipucords/quipucordsctl/internal/console"
	"github.com/quipucords/quipucordsctl/internal/logging"
	"github.com/quipucords/quipucordsctl/internal/secure"
)

// Resolver decides, for one secret, where its new value comes from:
// environment variable, interactive prompt, or random generation.
type Resolver struct {
	logger  *logging.Logger
	console *console.Console
	// getenv is swappable in tests.
	getenv func(string) string
}

// NewResolver creates a resolver reading from the process environment.
func NewResolver(logger *logging.Logger, con *console.Console) *Resolver {
	return &Resolver{logger: logger, console: con, getenv: os.Getenv}
}

// NewResolverWithEnv creates a resolver with an injected environment lookup.
func NewResolverWithEnv(logger *logging.Logger, con *console.Console, getenv func(string) string) *Resolver {
	return &Resolver{logger: logger, console: con, getenv: getenv}
}

// ResolveRequest describes one value-resolution attempt.
type ResolveRequest struct {
	// SecretName names the podman secret, for log messages.
	SecretName string
	Messages   Messages
	// EnvVarName is the first-choice manual input channel; empty disables
	// environment sourcing.
	EnvVarName   string
	Requirements Requirements
	// MustConfirmReplaceExisting asks before destroying an existing value.
	MustConfirmReplaceExisting bool
	// MustConfirmAllowNonrandom asks before accepting any manually
	// sourced value in place of a generated one.
	MustConfirmAllowNonrandom bool
	// MustPrompt forces interactive entry, skipping the environment.
	MustPrompt bool
	// MayPrompt offers interactive entry when the environment yields
	// nothing. When either prompt flag is set, random generation is
	// never used as a fallback.
	MayPrompt bool
}

// NewValue resolves a new secret value following the request's policy.
//
// It returns the sealed value on success and nil when no new value should
// be set: a validation failure, a prompt mismatch, or the operator
// declining a confirmation. Every failure path has already been logged; a
// declined confirmation is a legitimate do-nothing outcome, not an error.
// A non-nil error means terminal input failed unexpectedly.
func (r *Resolver) NewValue(req ResolveRequest) (*secure.Buffer, error) {
	messages := req.Messages.withDefaults()

	if req.MustConfirmReplaceExisting {
		r.logger.Warn("%s", messages.ReplaceExistingWarning)
		confirmed, err := r.console.Confirm(messages.ReplaceExistingQuestion)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			// Secret value already exists, and the user decided not
			// to replace it.
			return nil, nil
		}
	}

	var newSecret string

	if !req.MustPrompt && req.EnvVarName != "" {
		if value := strings.TrimSpace(r.getenv(req.EnvVarName)); value != "" {
			r.logger.Debug("Environment variable '%s' found.", req.EnvVarName)
			if !Check(r.logger, value, messages, req.Requirements) {
				// An explicitly provided value that fails checks is a
				// hard error; never fall through to random generation.
				return nil, nil
			}
			if req.MustConfirmAllowNonrandom {
				confirmed, err := r.confirmNonrandom(messages)
				if err != nil {
					return nil, err
				}
				if !confirmed {
					return nil, nil
				}
			}
			newSecret = value
		} else {
			r.logger.Debug("Environment variable '%s' not found.", req.EnvVarName)
		}
	}

	if (req.MustPrompt || req.MayPrompt) && newSecret == "" {
		if req.MustConfirmAllowNonrandom {
			confirmed, err := r.confirmNonrandom(messages)
			if err != nil {
				return nil, err
			}
			if !confirmed {
				return nil, nil
			}
		}
		value, err := r.console.PromptSecret(
			messages.PromptEnterValue, messages.PromptConfirmValue, messages.PromptValuesNoMatch)
		if err != nil {
			return nil, err
		}
		if value == "" {
			// Input was requested, but quiet mode prevented it, or
			// the two entries did not match (already logged).
			return nil, nil
		}
		if !Check(r.logger, value, messages, req.Requirements) {
			return nil, nil
		}
		newSecret = value
	}

	if newSecret != "" {
		return secure.NewBuffer(newSecret), nil
	}

	// No interactive input and no environment value: generate randomly.
	newSecret = GenerateRandom(req.Requirements)
	r.logger.Info("New value for podman secret '%s' was randomly generated.", req.SecretName)
	return secure.NewBuffer(newSecret), nil
}

func (r *Resolver) confirmNonrandom(messages Messages) (bool, error) {
	r.logger.Warn("%s", messages.ManualResetWarning)
	return r.console.Confirm(messages.ManualResetQuestion)
}
