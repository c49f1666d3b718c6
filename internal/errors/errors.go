// Package errors defines the user-facing error types shared across commands.
package errors

import (
	"fmt"
	"strings"
)

// UserError is an error shown to the operator with remediation context.
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// CommandError represents an external command execution failure.
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
	Err        error
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e CommandError) Unwrap() error {
	return e.Err
}

// NotReadyError means a required external collaborator (the podman socket,
// the systemd user session) is unavailable. The top-level runner shows its
// remediation message instead of a generic failure.
type NotReadyError struct {
	Message    string
	Suggestion string
	Err        error
}

func (e NotReadyError) Error() string {
	msg := e.Message
	if e.Suggestion != "" {
		msg += "\n  💡 Try: " + e.Suggestion
	}
	return msg
}

func (e NotReadyError) Unwrap() error {
	return e.Err
}

// SilentError carries an exit code for a failure whose explanation was
// already logged; the top-level runner exits without printing more.
type SilentError struct {
	Code int
}

func (e SilentError) Error() string {
	return ""
}

// ExitCode returns the carried code, defaulting to 1.
func (e SilentError) ExitCode() int {
	if e.Code < 1 {
		return 1
	}
	return e.Code
}

// ExitCoder lets a command choose its own process exit code. The check
// command uses it to exit with the number of problems it found.
type ExitCoder interface {
	error
	ExitCode() int
}

// ProblemsError carries a problem count as the exit code.
type ProblemsError struct {
	Count   int
	Message string
}

func (e ProblemsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("found %d problems", e.Count)
}

// ExitCode returns the problem count, clamped to a valid exit status.
func (e ProblemsError) ExitCode() int {
	if e.Count < 1 {
		return 1
	}
	if e.Count > 255 {
		return 255
	}
	return e.Count
}
