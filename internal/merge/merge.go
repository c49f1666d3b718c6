// Package merge reconciles shipped configuration templates with optional
// operator override files and writes the rendered results.
//
// Env files merge textually: the override is appended after a timestamped
// comment, and the consumer's later-wins env parsing applies it. Unit files
// merge structurally: an override (section, key) wholly replaces the
// template's value, even when the template accumulated several values for
// that key. The replace semantics are deliberate; downstream units depend on
// overrides discarding, not extending, repeated template keys.
package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	qcerrors "github.com/quipucords/quipucordsctl/internal/errors"
	"github.com/quipucords/quipucordsctl/internal/logging"
	"github.com/quipucords/quipucordsctl/internal/templates"
	"github.com/quipucords/quipucordsctl/internal/unitfile"
)

const overrideNote = "Override content appended by quipucordsctl"

var unitOptions = unitfile.Options{AllowNoValue: true}

// Engine renders templates, merging overrides when present.
type Engine struct {
	logger *logging.Logger
	// overrideDir optionally holds operator override files, matched to
	// templates strictly by identical filename. Empty means no overrides.
	overrideDir string
	now         func() time.Time
}

// NewEngine creates a merge engine.
func NewEngine(logger *logging.Logger, overrideDir string) *Engine {
	return &Engine{logger: logger, overrideDir: overrideDir, now: time.Now}
}

// MergeEnv merges an env template with an optional override file.
// A missing or whitespace-only override leaves the template unchanged.
func (e *Engine) MergeEnv(templateContent []byte, overridePath string) []byte {
	override := e.readOverride(overridePath)
	if override == nil {
		return templateContent
	}
	if strings.TrimSpace(string(override)) == "" {
		e.logger.Debug("Override file %s is empty; using template unchanged.", overridePath)
		return templateContent
	}

	var sb strings.Builder
	sb.Write(templateContent)
	if !strings.HasSuffix(sb.String(), "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("# %s %s\n", overrideNote, e.now().Format(time.RFC3339)))
	sb.Write(override)
	return []byte(sb.String())
}

// MergeUnit merges a unit-file template with an optional override file.
// Every (section, key) present in the override replaces the template's
// entry unconditionally; sections absent from the template are created.
// A malformed template or override is fatal for the invocation.
func (e *Engine) MergeUnit(templateContent []byte, templateName string, overridePath string) ([]byte, error) {
	doc, err := unitfile.ParseBytes(templateContent, unitOptions)
	if err != nil {
		return nil, qcerrors.UserError{
			Message: fmt.Sprintf("Shipped template %s is malformed", templateName),
			Details: err.Error(),
			Err:     err,
		}
	}

	override := e.readOverride(overridePath)
	if override == nil {
		return doc.Bytes(), nil
	}

	overrideDoc, err := unitfile.ParseBytes(override, unitOptions)
	if err != nil {
		return nil, qcerrors.UserError{
			Message:    fmt.Sprintf("Override file %s is malformed", overridePath),
			Details:    err.Error(),
			Suggestion: "Fix the override file's unit-file syntax or remove it",
			Err:        err,
		}
	}

	for _, sectionName := range overrideDoc.SectionNames() {
		overrideSection, _ := overrideDoc.Section(sectionName)
		section := doc.EnsureSection(sectionName)
		for _, key := range overrideSection.Keys() {
			newValues, _ := overrideSection.Values(key)
			oldValues, existed := section.Values(key)
			if existed {
				e.logger.Debug("Override replaces [%s] %s: %v -> %v", sectionName, key, oldValues, newValues)
			} else {
				e.logger.Debug("Override adds [%s] %s: %v", sectionName, key, newValues)
			}
			section.Set(key, newValues)
		}
	}
	return doc.Bytes(), nil
}

// RenderAll renders every shipped env and unit template into its destination
// directory, creating parent directories as needed.
func (e *Engine) RenderAll(envDestDir, unitsDestDir string) error {
	for _, name := range templates.EnvFileNames() {
		content, err := templates.ReadEnv(name)
		if err != nil {
			return err
		}
		rendered := e.MergeEnv(content, e.overridePathFor(name))
		if err := writeRendered(filepath.Join(envDestDir, name), rendered); err != nil {
			return err
		}
		e.logger.Debug("Rendered env file %s", filepath.Join(envDestDir, name))
	}

	for _, name := range templates.UnitFileNames() {
		content, err := templates.ReadUnit(name)
		if err != nil {
			return err
		}
		rendered, err := e.MergeUnit(content, name, e.overridePathFor(name))
		if err != nil {
			return err
		}
		if err := writeRendered(filepath.Join(unitsDestDir, name), rendered); err != nil {
			return err
		}
		e.logger.Debug("Rendered unit file %s", filepath.Join(unitsDestDir, name))
	}
	return nil
}

// overridePathFor maps a template filename to its candidate override path.
func (e *Engine) overridePathFor(templateName string) string {
	if e.overrideDir == "" {
		return ""
	}
	return filepath.Join(e.overrideDir, templateName)
}

// readOverride applies the shared override validity gate: the path must be
// an existing regular file readable by the current user. Missing means "no
// override"; unreadable means "no override" plus a warning so permission
// mistakes are noticed.
func (e *Engine) readOverride(path string) []byte {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			e.logger.Warn("Ignoring override file %s: %v", path, err)
		}
		return nil
	}
	if !info.Mode().IsRegular() {
		e.logger.Warn("Ignoring override file %s: not a regular file.", path)
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Warn("Ignoring override file %s: %v", path, err)
		return nil
	}
	return data
}

func writeRendered(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}
