package engine

import (
	"fmt"

	"github.com/sqlsage/sqlsage/internal/advice"
)

// matchRule checks if a fact's fields satisfy a rule's predicate.
//
// The match is determined by:
// 1. Every condition in rule.When must hold against the field map
// 2. An empty When list is the always-true predicate (default rules)
//
// Returns true only if ALL conditions are satisfied.
//
// An error means the fact and the rule disagree structurally (missing
// field, non-numeric value under an ordering comparator). That is an
// INVALID_FACT at the caller, never a silent non-match: silently
// skipping a rule would let a later rule win on a fact the earlier
// rule was never able to see.
func matchRule(fields advice.FieldMap, rule advice.Rule) (bool, error) {
	for _, cond := range rule.When {
		ok, err := evalCondition(fields, cond)
		if err != nil {
			return false, fmt.Errorf("rule %q: %w", rule.ID, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// evalCondition evaluates a single condition against a field map.
//
// Equality compares typed values (numeric values compare across int and
// float). Ordering comparators require both the field value and the
// threshold to be numeric.
func evalCondition(fields advice.FieldMap, cond advice.Condition) (bool, error) {
	value, exists := fields[cond.Field]
	if !exists {
		return false, fmt.Errorf("fact has no field %q", cond.Field)
	}

	if cond.Op == advice.OpEquals {
		return advice.ValuesEqual(value, cond.Value), nil
	}

	fieldNum, ok := advice.NumericValue(value)
	if !ok {
		return false, fmt.Errorf("field %q is %s, not numeric, under comparator %q",
			cond.Field, advice.FormatValue(value), cond.Op)
	}
	threshold, ok := advice.NumericValue(cond.Value)
	if !ok {
		return false, fmt.Errorf("condition on %q has non-numeric threshold %s",
			cond.Field, advice.FormatValue(cond.Value))
	}

	switch cond.Op {
	case advice.OpAtLeast:
		return fieldNum >= threshold, nil
	case advice.OpAbove:
		return fieldNum > threshold, nil
	case advice.OpAtMost:
		return fieldNum <= threshold, nil
	case advice.OpBelow:
		return fieldNum < threshold, nil
	default:
		return false, fmt.Errorf("unknown comparator %q", cond.Op)
	}
}
