package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sqlsage/sqlsage/internal/advice"
)

// Validation error codes
const (
	// General validation errors
	ErrUnsupportedInput = "UNSUPPORTED_INPUT" // unsupported value type for validation

	// Rule set errors
	ErrUnknownRuleSet     = "UNKNOWN_RULE_SET"     // no compiled-in schema for the rule set id
	ErrMissingField       = "MISSING_FIELD"        // required field empty or absent
	ErrInvalidRuleOrder   = "INVALID_RULE_ORDER"   // order must be a positive integer
	ErrDuplicateRuleOrder = "DUPLICATE_RULE_ORDER" // two rules share an order within a set
	ErrDuplicateRuleID    = "DUPLICATE_RULE_ID"    // two rules share an id within a set
	ErrUnknownOutcome     = "UNKNOWN_OUTCOME"      // outcome outside the set's domain
	ErrUnknownFactField   = "UNKNOWN_FACT_FIELD"   // condition references a field the fact lacks
	ErrInvalidCondition   = "INVALID_CONDITION"    // comparator and field kind disagree
	ErrEmptyRationale     = "EMPTY_RATIONALE"      // rationale missing or has blank lines

	// Capability matrix errors
	ErrDuplicateCapability  = "DUPLICATE_CAPABILITY_ENTRY" // two rows share (name, environment)
	ErrInvalidCapabilityRow = "INVALID_CAPABILITY_ROW"     // row fields outside their domains
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled advisory data against the compiled-in
// schemas. Returns all errors found (does not fail-fast). Supports
// RuleSet and []CapabilityRow; every error it reports is fatal at load
// time because serving a half-checked pack would make recommendations
// depend on which rules happened to parse.
func Validate(v any) []ValidationError {
	switch val := v.(type) {
	case *advice.RuleSet:
		return validateRuleSet(val)
	case advice.RuleSet:
		return validateRuleSet(&val)
	case []advice.CapabilityRow:
		return validateCapabilityRows(val)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported value type: %T", v),
			Code:    ErrUnsupportedInput,
		}}
	}
}

// validateRuleSet checks one rule set against its registered schema.
func validateRuleSet(rs *advice.RuleSet) []ValidationError {
	var errs []ValidationError

	schema, ok := advice.SchemaFor(rs.ID)
	if !ok {
		// Without a schema nothing else is checkable.
		return []ValidationError{{
			Field:   "id",
			Message: fmt.Sprintf("no schema registered for rule set %q (known: %s)", rs.ID, strings.Join(advice.RuleSetIDs(), ", ")),
			Code:    ErrUnknownRuleSet,
		}}
	}

	if strings.TrimSpace(rs.Description) == "" {
		errs = append(errs, ValidationError{
			Field:   "description",
			Message: "description is required and must be non-empty",
			Code:    ErrMissingField,
		})
	}

	if len(rs.Rules) == 0 {
		errs = append(errs, ValidationError{
			Field:   "rule",
			Message: "at least one rule is required",
			Code:    ErrMissingField,
		})
	}

	// Track ids and orders for duplicate detection
	ruleIDs := make(map[string]bool)
	orders := make(map[int]bool)

	for i, rule := range rs.Rules {
		if strings.TrimSpace(rule.ID) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rule[%d].id", i),
				Message: "rule id is required and must be non-empty",
				Code:    ErrMissingField,
			})
		} else if ruleIDs[rule.ID] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rule[%d].id", i),
				Message: fmt.Sprintf("duplicate rule id %q", rule.ID),
				Code:    ErrDuplicateRuleID,
			})
		}
		ruleIDs[rule.ID] = true

		if rule.Order < 1 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rule[%d].order", i),
				Message: fmt.Sprintf("order must be a positive integer, got %d", rule.Order),
				Code:    ErrInvalidRuleOrder,
			})
		} else if orders[rule.Order] {
			// A shared order would make first-match depend on file
			// position, so the whole set is rejected.
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rule[%d].order", i),
				Message: fmt.Sprintf("duplicate order %d in rule set %q", rule.Order, rs.ID),
				Code:    ErrDuplicateRuleOrder,
			})
		}
		orders[rule.Order] = true

		if strings.TrimSpace(rule.Summary) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rule[%d].summary", i),
				Message: "rule summary is required and must be non-empty",
				Code:    ErrMissingField,
			})
		}

		if !schema.AllowsOutcome(rule.Outcome) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rule[%d].outcome", i),
				Message: fmt.Sprintf("outcome %q is not valid for rule set %q (want one of %s)", rule.Outcome, rs.ID, strings.Join(schema.Outcomes, ", ")),
				Code:    ErrUnknownOutcome,
			})
		}

		if len(rule.Rationale) == 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rule[%d].rationale", i),
				Message: "rationale must have at least one line",
				Code:    ErrEmptyRationale,
			})
		}
		for j, line := range rule.Rationale {
			if strings.TrimSpace(line) == "" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("rule[%d].rationale[%d]", i, j),
					Message: "rationale lines must be non-empty",
					Code:    ErrEmptyRationale,
				})
			}
		}

		for j, cond := range rule.When {
			errs = append(errs, validateCondition(schema, cond, fmt.Sprintf("rule[%d].when[%d]", i, j))...)
		}
	}

	return errs
}

// validateCondition checks a single condition against the fact schema:
// the field must exist and the comparator must fit its kind.
func validateCondition(schema advice.RuleSetSchema, cond advice.Condition, fieldPath string) []ValidationError {
	spec, ok := schema.Facts[cond.Field]
	if !ok {
		return []ValidationError{{
			Field:   fieldPath + ".field",
			Message: fmt.Sprintf("fact for rule set %q has no field %q (known: %s)", schema.ID, cond.Field, strings.Join(factFieldNames(schema.Facts), ", ")),
			Code:    ErrUnknownFactField,
		}}
	}

	if !isValidCompareOp(cond.Op) {
		return []ValidationError{{
			Field:   fieldPath,
			Message: fmt.Sprintf("unknown comparator %q", cond.Op),
			Code:    ErrInvalidCondition,
		}}
	}

	if cond.Value == nil {
		return []ValidationError{{
			Field:   fieldPath,
			Message: "condition has no operand value",
			Code:    ErrInvalidCondition,
		}}
	}

	if cond.Op == advice.OpEquals {
		return validateEqualsOperand(spec, cond, fieldPath)
	}

	// Ordering comparators need a numeric field and a numeric threshold.
	if !spec.Kind.Numeric() {
		return []ValidationError{{
			Field:   fieldPath,
			Message: fmt.Sprintf("comparator %q requires a numeric field, but %q is %s", cond.Op, cond.Field, spec.Kind),
			Code:    ErrInvalidCondition,
		}}
	}
	if _, ok := advice.NumericValue(cond.Value); !ok {
		return []ValidationError{{
			Field:   fieldPath,
			Message: fmt.Sprintf("comparator %q requires a numeric threshold, got %s", cond.Op, advice.FormatValue(cond.Value)),
			Code:    ErrInvalidCondition,
		}}
	}

	return nil
}

// validateEqualsOperand checks that an equality operand matches the
// field's kind. Equality on float fields is rejected outright: exact
// float comparison against measured percentages is never what a rule
// author means.
func validateEqualsOperand(spec advice.FieldSpec, cond advice.Condition, fieldPath string) []ValidationError {
	switch spec.Kind {
	case advice.KindBool:
		if _, ok := cond.Value.(advice.BoolValue); !ok {
			return []ValidationError{{
				Field:   fieldPath,
				Message: fmt.Sprintf("field %q is bool, operand %s is not", cond.Field, advice.FormatValue(cond.Value)),
				Code:    ErrInvalidCondition,
			}}
		}
	case advice.KindInt:
		if _, ok := cond.Value.(advice.IntValue); !ok {
			return []ValidationError{{
				Field:   fieldPath,
				Message: fmt.Sprintf("field %q is int, operand %s is not", cond.Field, advice.FormatValue(cond.Value)),
				Code:    ErrInvalidCondition,
			}}
		}
	case advice.KindEnum:
		ev, ok := cond.Value.(advice.EnumValue)
		if !ok {
			return []ValidationError{{
				Field:   fieldPath,
				Message: fmt.Sprintf("field %q is an enum, operand %s is not a string", cond.Field, advice.FormatValue(cond.Value)),
				Code:    ErrInvalidCondition,
			}}
		}
		if !containsString(spec.Enum, string(ev)) {
			return []ValidationError{{
				Field:   fieldPath,
				Message: fmt.Sprintf("value %q is not in the domain of %q (want one of %s)", string(ev), cond.Field, strings.Join(spec.Enum, ", ")),
				Code:    ErrInvalidCondition,
			}}
		}
	case advice.KindFloat:
		return []ValidationError{{
			Field:   fieldPath,
			Message: fmt.Sprintf("field %q is a float; use range comparators (at_least, above, at_most, below) instead of equals", cond.Field),
			Code:    ErrInvalidCondition,
		}}
	}
	return nil
}

// validateCapabilityRows checks matrix rows for domain membership and
// duplicate (name, environment) pairs. Names are compared after
// normalization so rows that collide only post-fold are still caught.
func validateCapabilityRows(rows []advice.CapabilityRow) []ValidationError {
	var errs []ValidationError

	if len(rows) == 0 {
		errs = append(errs, ValidationError{
			Field:   "capability",
			Message: "at least one capability row is required",
			Code:    ErrMissingField,
		})
	}

	type matrixKey struct {
		name string
		env  advice.Environment
	}
	seen := make(map[matrixKey]bool)

	for i, row := range rows {
		fieldPath := fmt.Sprintf("capability[%d]", i)

		normalized := advice.NormalizeCapabilityName(row.Name)
		if normalized == "" {
			errs = append(errs, ValidationError{
				Field:   fieldPath + ".name",
				Message: "capability name is required and must be non-empty",
				Code:    ErrInvalidCapabilityRow,
			})
			continue
		}

		if !isValidEnvironment(row.Environment) {
			errs = append(errs, ValidationError{
				Field:   fieldPath + ".environment",
				Message: fmt.Sprintf("unknown environment %q", row.Environment),
				Code:    ErrInvalidCapabilityRow,
			})
			continue
		}

		if !isValidAvailability(row.Availability) {
			errs = append(errs, ValidationError{
				Field:   fieldPath + ".availability",
				Message: fmt.Sprintf("unknown availability %q", row.Availability),
				Code:    ErrInvalidCapabilityRow,
			})
		}

		key := matrixKey{name: normalized, env: row.Environment}
		if seen[key] {
			errs = append(errs, ValidationError{
				Field:   fieldPath,
				Message: fmt.Sprintf("duplicate capability entry for %q in %s", row.Name, row.Environment),
				Code:    ErrDuplicateCapability,
			})
		}
		seen[key] = true
	}

	return errs
}

// isValidCompareOp checks if a comparator is one of the five known ops.
func isValidCompareOp(op advice.CompareOp) bool {
	for _, known := range advice.CompareOps {
		if op == known {
			return true
		}
	}
	return false
}

// isValidEnvironment checks if an environment is in the three-value domain.
func isValidEnvironment(env advice.Environment) bool {
	for _, known := range advice.Environments {
		if env == known {
			return true
		}
	}
	return false
}

// isValidAvailability checks if an availability is in the four-value domain.
func isValidAvailability(a advice.Availability) bool {
	for _, known := range advice.Availabilities {
		if a == known {
			return true
		}
	}
	return false
}

// factFieldNames returns a fact schema's field names sorted for messages.
func factFieldNames(facts advice.FactSchema) []string {
	names := make([]string, 0, len(facts))
	for name := range facts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
