package harness

import (
	"fmt"
	"sort"
	"strings"
)

// ExpectationError is recorded when a report entry does not match the
// step's expect clause. It includes the rendered request to help debug
// the mismatch.
type ExpectationError struct {
	Step     int    // One-based request position in the scenario
	Field    string // Which expectation failed
	Expected string // Human-readable expected answer
	Actual   string // Human-readable actual answer
	Request  map[string]string
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	var buf strings.Builder

	// Header with the failing field
	fmt.Fprintf(&buf, "Expectation failed at request %d: %s\n", e.Step, e.Field)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	// Rendered request for context
	if len(e.Request) > 0 {
		fmt.Fprintf(&buf, "\nRequest:\n")
		keys := make([]string, 0, len(e.Request))
		for k := range e.Request {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&buf, "  %s: %s\n", k, e.Request[k])
		}
	}

	return buf.String()
}

// checkExpect compares one report entry against the step's expect clause.
// Returns a message per mismatch; a nil clause judges nothing. step is
// zero-based, messages render it one-based.
func checkExpect(step int, expect *Expect, entry ReportEntry) []string {
	if expect == nil {
		return nil
	}

	var failures []string

	// An expected error code makes the step a failure test: the entry
	// must carry exactly that code, and outcome checks are skipped.
	if expect.Error != "" {
		if entry.Error != expect.Error {
			actual := entry.Error
			if actual == "" {
				actual = fmt.Sprintf("no error (outcome %s)", entry.Outcome)
			}
			failures = append(failures, (&ExpectationError{
				Step:     step + 1,
				Field:    "error",
				Expected: fmt.Sprintf("error code %s", expect.Error),
				Actual:   actual,
				Request:  entry.Request,
			}).Error())
		}
		return failures
	}

	// The step expected an answer but the request failed.
	if entry.Error != "" {
		failures = append(failures, (&ExpectationError{
			Step:     step + 1,
			Field:    "outcome",
			Expected: expect.Outcome,
			Actual:   fmt.Sprintf("error %s", entry.Error),
			Request:  entry.Request,
		}).Error())
		return failures
	}

	if expect.Outcome != "" && entry.Outcome != expect.Outcome {
		failures = append(failures, (&ExpectationError{
			Step:     step + 1,
			Field:    "outcome",
			Expected: expect.Outcome,
			Actual:   entry.Outcome,
			Request:  entry.Request,
		}).Error())
	}

	if expect.Rule != "" && entry.RuleID != expect.Rule {
		failures = append(failures, (&ExpectationError{
			Step:     step + 1,
			Field:    "rule",
			Expected: expect.Rule,
			Actual:   entry.RuleID,
			Request:  entry.Request,
		}).Error())
	}

	if expect.Note != "" && entry.Note != expect.Note {
		failures = append(failures, (&ExpectationError{
			Step:     step + 1,
			Field:    "note",
			Expected: expect.Note,
			Actual:   entry.Note,
			Request:  entry.Request,
		}).Error())
	}

	return failures
}
