// Package secrets implements the secret lifecycle: policy validation,
// value sourcing (environment, prompt, random), and reset orchestration
// against the podman secret store.
package secrets

import (
	"unicode"

	"github.com/quipucords/quipucordsctl/internal/logging"
)

// DefaultMinLength is used when a policy does not set its own minimum.
const DefaultMinLength = 16

// SimilarValueCheck rejects candidates too close to a known related value,
// such as a password resembling the login username.
type SimilarValueCheck struct {
	// Value is the reference to compare against.
	Value string
	// Name describes the reference in user-facing messages.
	Name string
	// MaxSimilarity is the quick-ratio threshold; a candidate with
	// similarity >= MaxSimilarity fails.
	MaxSimilarity float64
}

// Requirements describe the policy a candidate secret value must satisfy.
type Requirements struct {
	// MinLength of zero disables the length rule.
	MinLength       int
	RequireDigit    bool
	RequireLetter   bool
	RejectAllDigits bool
	// Blocklist entries fail on exact, case-sensitive match.
	Blocklist []string
	Similar   *SimilarValueCheck
}

// PasswordRequirements returns the standard password policy: minimum length
// plus the server's character-class rules.
func PasswordRequirements(minLength int) Requirements {
	return Requirements{
		MinLength:       minLength,
		RequireDigit:    true,
		RequireLetter:   true,
		RejectAllDigits: true,
	}
}

// UsernameRequirements returns the relaxed policy for usernames: non-empty,
// no character-class rules.
func UsernameRequirements() Requirements {
	return Requirements{MinLength: 1}
}

// Violation identifies one failed validation rule.
type Violation int

// Violations in rule-evaluation order.
const (
	ViolationMinLength Violation = iota
	ViolationRequiresDigit
	ViolationRequiresLetter
	ViolationEntirelyNumeric
	ViolationBlocked
	ViolationTooSimilar
)

// Evaluate checks a candidate against every rule independently and returns
// the violations in rule-evaluation order. It never short-circuits, so the
// operator can be shown every problem at once.
func Evaluate(candidate string, req Requirements) []Violation {
	var violations []Violation

	if req.MinLength > 0 && len(candidate) < req.MinLength {
		violations = append(violations, ViolationMinLength)
	}
	if req.RequireDigit && !containsDigit(candidate) {
		violations = append(violations, ViolationRequiresDigit)
	}
	if req.RequireLetter && !containsLetter(candidate) {
		violations = append(violations, ViolationRequiresLetter)
	}
	if req.RejectAllDigits && isAllDigits(candidate) {
		violations = append(violations, ViolationEntirelyNumeric)
	}
	for _, blocked := range req.Blocklist {
		if candidate == blocked {
			violations = append(violations, ViolationBlocked)
			break
		}
	}
	if req.Similar != nil && QuickRatio(candidate, req.Similar.Value) >= req.Similar.MaxSimilarity {
		violations = append(violations, ViolationTooSimilar)
	}

	return violations
}

// Check evaluates a candidate, logging one error line per violated rule,
// and returns whether all rules passed.
func Check(logger *logging.Logger, candidate string, messages Messages, req Requirements) bool {
	messages = messages.withDefaults()
	violations := Evaluate(candidate, req)
	for _, violation := range violations {
		switch violation {
		case ViolationMinLength:
			logger.Error(messages.CheckFailedMinLength, req.MinLength)
		case ViolationRequiresDigit:
			logger.Error("%s", messages.CheckFailedRequiresNumber)
		case ViolationRequiresLetter:
			logger.Error("%s", messages.CheckFailedRequiresLetter)
		case ViolationEntirelyNumeric:
			logger.Error("%s", messages.CheckFailedEntirelyNumeric)
		case ViolationBlocked:
			logger.Error("%s", messages.CheckFailedBlocked)
		case ViolationTooSimilar:
			logger.Error("%s", messages.CheckFailedTooSimilar)
		}
	}
	return len(violations) == 0
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
