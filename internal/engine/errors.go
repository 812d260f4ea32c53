package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sqlsage/sqlsage/internal/advice"
)

// EvalError represents an error detected during rule evaluation.
//
// Evaluation errors include:
//   - Unknown rule set: the id names no loaded rule set
//   - Invalid fact: the fact fails its own validation, or lacks a field
//     some rule's condition tests
//   - No rule matched: every rule in the set declined the fact
//
// EvalError includes structured fields for diagnostics. The triggering
// fact travels with the error as its rendered field map, so callers can
// report exactly what was evaluated without holding the fact itself.
type EvalError struct {
	// Code identifies the error category.
	Code EvalErrorCode

	// Message is a human-readable description.
	Message string

	// RuleSetID identifies the rule set being evaluated.
	RuleSetID string

	// Fact is the rendered field map of the triggering fact
	// (empty when no fact applies, e.g. unknown rule set).
	Fact string

	// Details contains additional context.
	Details map[string]string
}

// EvalErrorCode categorizes evaluation errors.
type EvalErrorCode string

const (
	// ErrCodeUnknownRuleSet indicates the id names no loaded rule set.
	ErrCodeUnknownRuleSet EvalErrorCode = "UNKNOWN_RULE_SET"

	// ErrCodeInvalidFact indicates the fact cannot be evaluated as given.
	ErrCodeInvalidFact EvalErrorCode = "INVALID_FACT"

	// ErrCodeNoRuleMatched indicates no rule in the set accepted the fact.
	ErrCodeNoRuleMatched EvalErrorCode = "NO_RULE_MATCHED"
)

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.RuleSetID != "" && e.Fact != "" {
		return fmt.Sprintf("%s: %s (rule_set=%s, fact=%s)", e.Code, e.Message, e.RuleSetID, e.Fact)
	}
	if e.RuleSetID != "" {
		return fmt.Sprintf("%s: %s (rule_set=%s)", e.Code, e.Message, e.RuleSetID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnknownRuleSetError returns true if the error is an unknown rule set error.
// Uses errors.As to handle wrapped errors.
func IsUnknownRuleSetError(err error) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeUnknownRuleSet
	}
	return false
}

// IsInvalidFactError returns true if the error is an invalid fact error.
// Uses errors.As to handle wrapped errors.
func IsInvalidFactError(err error) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeInvalidFact
	}
	return false
}

// IsNoRuleMatchedError returns true if the error reports that no rule matched.
// Uses errors.As to handle wrapped errors.
func IsNoRuleMatchedError(err error) bool {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeNoRuleMatched
	}
	return false
}

// NewUnknownRuleSetError creates an EvalError for an unregistered rule set id.
func NewUnknownRuleSetError(ruleSetID string, known []string) *EvalError {
	return &EvalError{
		Code:      ErrCodeUnknownRuleSet,
		Message:   fmt.Sprintf("no rule set loaded with id %q", ruleSetID),
		RuleSetID: ruleSetID,
		Details: map[string]string{
			"known": strings.Join(known, ", "),
		},
	}
}

// NewInvalidFactError creates an EvalError for a fact that cannot be evaluated.
func NewInvalidFactError(ruleSetID string, fact advice.Fact, message string) *EvalError {
	rendered := ""
	if fact != nil {
		rendered = fact.Fields().String()
	}
	return &EvalError{
		Code:      ErrCodeInvalidFact,
		Message:   message,
		RuleSetID: ruleSetID,
		Fact:      rendered,
	}
}

// NewNoRuleMatchedError creates an EvalError for a fact no rule accepted.
func NewNoRuleMatchedError(ruleSetID string, fields advice.FieldMap) *EvalError {
	return &EvalError{
		Code:      ErrCodeNoRuleMatched,
		Message:   "no rule matched the fact",
		RuleSetID: ruleSetID,
		Fact:      fields.String(),
	}
}
