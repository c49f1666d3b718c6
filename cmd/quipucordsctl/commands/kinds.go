package commands

import (
	"fmt"

	"github.com/quipucords/quipucordsctl/internal/config"
	"github.com/quipucords/quipucordsctl/internal/secrets"
)

// Podman secret names for each managed credential.
const (
	EncryptionSecretName       = config.ServerSoftwarePackage + "-encryption-secret-key"
	SessionSecretName          = config.ServerSoftwarePackage + "-session-secret-key"
	ServerPasswordSecretName   = config.ServerSoftwarePackage + "-server-password"
	ServerUsernameSecretName   = config.ServerSoftwarePackage + "-server-username"
	DatabasePasswordSecretName = config.ServerSoftwarePackage + "-db-password"
	RedisPasswordSecretName    = config.ServerSoftwarePackage + "-redis-password"
)

// requiredSecretNames must all exist for the server to start. Ordered the
// way install creates them. The server username is deliberately absent: the
// server defaults to "admin" when the secret is missing.
var requiredSecretNames = []string{
	EncryptionSecretName,
	SessionSecretName,
	ServerPasswordSecretName,
	DatabasePasswordSecretName,
	RedisPasswordSecretName,
}

// allSecretNames includes the optional username secret, for uninstall.
var allSecretNames = append(append([]string{}, requiredSecretNames...), ServerUsernameSecretName)

// serverPasswordBlocklist rejects historical default passwords.
var serverPasswordBlocklist = []string{"dscpassw0rd", "qpcpassw0rd"}

// defaultServerUsername is the server's login name when no username secret
// has been set.
const defaultServerUsername = "admin"

// serverPasswordMaxSimilarity fails a password too close to the username.
const serverPasswordMaxSimilarity = 0.7

func kindMessages(description string) secrets.Messages {
	return secrets.Messages{
		ReplaceExistingWarning: fmt.Sprintf(
			"A %s already exists. Resetting it to a new value may result in data loss.", description),
		ReplaceExistingQuestion: fmt.Sprintf(
			"Are you sure you want to replace the existing %s?", description),
		PromptEnterValue:   fmt.Sprintf("Enter the new %s: ", description),
		PromptConfirmValue: fmt.Sprintf("Confirm the new %s: ", description),
		WasUpdated:         fmt.Sprintf("The %s was successfully updated.", description),
		WasNotUpdated:      fmt.Sprintf("The %s was not updated.", description),
	}
}

func encryptionSecretOptions() secrets.ResetOptions {
	return secrets.ResetOptions{
		SecretName:                 EncryptionSecretName,
		EnvVarName:                 config.EnvVarPrefix + "ENCRYPTION_SECRET_KEY",
		Messages:                   kindMessages("server encryption secret"),
		Requirements:               secrets.PasswordRequirements(64),
		MustConfirmReplaceExisting: true,
		MustConfirmAllowNonrandom:  true,
	}
}

func sessionSecretOptions() secrets.ResetOptions {
	return secrets.ResetOptions{
		SecretName:                 SessionSecretName,
		EnvVarName:                 config.EnvVarPrefix + "SESSION_SECRET_KEY",
		Messages:                   kindMessages("server session secret"),
		Requirements:               secrets.PasswordRequirements(64),
		MustConfirmReplaceExisting: true,
		MustConfirmAllowNonrandom:  true,
	}
}

func databasePasswordOptions() secrets.ResetOptions {
	return secrets.ResetOptions{
		SecretName:                 DatabasePasswordSecretName,
		EnvVarName:                 config.EnvVarPrefix + "DBMS_PASSWORD",
		Messages:                   kindMessages("database password"),
		Requirements:               secrets.PasswordRequirements(16),
		MustConfirmReplaceExisting: true,
		MustConfirmAllowNonrandom:  true,
	}
}

func redisPasswordOptions() secrets.ResetOptions {
	return secrets.ResetOptions{
		SecretName:                 RedisPasswordSecretName,
		EnvVarName:                 config.EnvVarPrefix + "REDIS_PASSWORD",
		Messages:                   kindMessages("Redis password"),
		Requirements:               secrets.PasswordRequirements(16),
		MustConfirmReplaceExisting: true,
		MustConfirmAllowNonrandom:  true,
	}
}

// serverPasswordOptions builds the login password policy. similar is the
// username-similarity check, built against the stored username secret when
// one exists and the server's default username otherwise.
func serverPasswordOptions(similar *secrets.SimilarValueCheck) secrets.ResetOptions {
	requirements := secrets.PasswordRequirements(10)
	requirements.Blocklist = serverPasswordBlocklist
	requirements.Similar = similar
	return secrets.ResetOptions{
		SecretName:                 ServerPasswordSecretName,
		EnvVarName:                 config.EnvVarPrefix + "SERVER_PASSWORD",
		Messages:                   kindMessages("server login password"),
		Requirements:               requirements,
		MustConfirmReplaceExisting: true,
	}
}

// serverUsernameOptions builds the login username policy. similar is the
// password-similarity check; a username identical to the stored password
// is rejected.
func serverUsernameOptions(similar *secrets.SimilarValueCheck) secrets.ResetOptions {
	requirements := secrets.UsernameRequirements()
	requirements.Similar = similar
	return secrets.ResetOptions{
		SecretName:   ServerUsernameSecretName,
		EnvVarName:   config.EnvVarPrefix + "SERVER_USERNAME",
		Messages:     kindMessages("server login username"),
		Requirements: requirements,
	}
}
