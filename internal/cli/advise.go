package cli

import (
	"errors"
	"fmt"

	"github.com/sqlsage/sqlsage/internal/advice"
	"github.com/sqlsage/sqlsage/internal/engine"
	"github.com/sqlsage/sqlsage/internal/matrix"
	"github.com/sqlsage/sqlsage/internal/rulepack"
)

// AdviceResult is the JSON payload shared by the advisory subcommands.
type AdviceResult struct {
	RuleSet   string            `json:"rule_set"`
	RuleID    string            `json:"rule_id"`
	Outcome   string            `json:"outcome"`
	Rationale []string          `json:"rationale"`
	Fact      map[string]string `json:"fact"`
}

// newAdviceResult assembles the payload from the evaluated fact and the
// matched rule.
func newAdviceResult(ruleSetID, ruleID, outcome string, rationale []string, fact advice.Fact) AdviceResult {
	fields := fact.Fields()
	rendered := make(map[string]string, len(fields))
	for name, value := range fields {
		rendered[name] = advice.FormatValue(value)
	}
	return AdviceResult{
		RuleSet:   ruleSetID,
		RuleID:    ruleID,
		Outcome:   outcome,
		Rationale: rationale,
		Fact:      rendered,
	}
}

// outputAdvice renders a recommendation in the configured format.
func outputAdvice(formatter *OutputFormatter, requestID string, result AdviceResult) error {
	if formatter.Format == "json" {
		return formatter.SuccessWithTrace(result, requestID)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s (rule %s)\n", result.Outcome, result.RuleID)
	for _, line := range result.Rationale {
		fmt.Fprintf(formatter.Writer, "  %s\n", line)
	}
	return nil
}

// outputAdviceError renders an advisory error and returns the ExitError
// carrying its exit code. An unanswerable question (no rule matched, a
// capability the matrix does not track) exits 1; bad caller input exits 2.
func outputAdviceError(formatter *OutputFormatter, err error) error {
	code, message, details, exit := parseAdviceError(err)
	_ = formatter.Error(code, message, details)
	return NewExitError(exit, fmt.Sprintf("%s: %s", code, message))
}

// outputFlagError reports a flag or argument value that failed domain
// parsing, before any evaluation ran.
func outputFlagError(formatter *OutputFormatter, err error) error {
	code := string(engine.ErrCodeInvalidFact)
	_ = formatter.Error(code, err.Error(), nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, err.Error()))
}

// parseAdviceError extracts code, message, details, and exit code from an
// evaluation or lookup error.
func parseAdviceError(err error) (string, string, interface{}, int) {
	var evalErr *engine.EvalError
	if errors.As(err, &evalErr) {
		exit := ExitCommandError
		if evalErr.Code == engine.ErrCodeNoRuleMatched {
			exit = ExitFailure
		}
		message := evalErr.Message
		if evalErr.Fact != "" {
			message = fmt.Sprintf("%s (fact: %s)", evalErr.Message, evalErr.Fact)
		}
		return string(evalErr.Code), message, detailsOrNil(evalErr.Details), exit
	}

	var lookupErr *matrix.LookupError
	if errors.As(err, &lookupErr) {
		return string(lookupErr.Code), lookupErr.Message, detailsOrNil(lookupErr.Details), ExitFailure
	}

	return rulepack.ErrCodeGeneric, err.Error(), nil, ExitCommandError
}

// detailsOrNil keeps empty detail maps out of the JSON envelope.
func detailsOrNil(details map[string]string) interface{} {
	if len(details) == 0 {
		return nil
	}
	return details
}
