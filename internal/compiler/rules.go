package compiler

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/sqlsage/sqlsage/internal/advice"
)

// CompileRuleSet parses a CUE value into an advice.RuleSet.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the rule set struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`ruleset: "merge-vs-split": { ... }`)
//	rs, err := CompileRuleSet("merge-vs-split",
//		v.LookupPath(cue.ParsePath(`ruleset."merge-vs-split"`)))
//
// Rules come back sorted by their declared order. Semantic checks
// (duplicate orders, outcome domains, condition/field agreement) are the
// job of Validate, not this parser.
func CompileRuleSet(id string, v cue.Value) (*advice.RuleSet, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	rs := &advice.RuleSet{ID: id}

	// Parse description (required)
	descVal := v.LookupPath(cue.ParsePath("description"))
	if !descVal.Exists() {
		return nil, &CompileError{
			Field:   "description",
			Message: "description is required",
			Pos:     v.Pos(),
		}
	}
	desc, err := descVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	rs.Description = desc

	// Parse rules (required, at least one)
	ruleVal := v.LookupPath(cue.ParsePath("rule"))
	if !ruleVal.Exists() {
		return nil, &CompileError{
			Field:   "rule",
			Message: "at least one rule is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := ruleVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for idx := 0; iter.Next(); idx++ {
		rule, ruleErr := parseRule(iter.Value(), idx)
		if ruleErr != nil {
			return nil, ruleErr
		}
		rs.Rules = append(rs.Rules, rule)
	}

	if len(rs.Rules) == 0 {
		return nil, &CompileError{
			Field:   "rule",
			Message: "at least one rule is required",
			Pos:     v.Pos(),
		}
	}

	// Declared order is authoritative regardless of row position in the
	// file. Stable sort keeps file position as the tiebreak for the
	// duplicate-order rows Validate will reject anyway.
	sort.SliceStable(rs.Rules, func(i, j int) bool {
		return rs.Rules[i].Order < rs.Rules[j].Order
	})

	return rs, nil
}

// parseRule parses a single rule row.
func parseRule(v cue.Value, idx int) (advice.Rule, error) {
	var rule advice.Rule

	idVal := v.LookupPath(cue.ParsePath("id"))
	if !idVal.Exists() {
		return rule, &CompileError{
			Field:   fmt.Sprintf("rule[%d].id", idx),
			Message: "rule id is required",
			Pos:     v.Pos(),
		}
	}
	id, err := idVal.String()
	if err != nil {
		return rule, formatCUEError(err)
	}
	rule.ID = id

	orderVal := v.LookupPath(cue.ParsePath("order"))
	if !orderVal.Exists() {
		return rule, &CompileError{
			Field:   fmt.Sprintf("rule[%d].order", idx),
			Message: "rule order is required",
			Pos:     v.Pos(),
		}
	}
	order, err := orderVal.Int64()
	if err != nil {
		return rule, &CompileError{
			Field:   fmt.Sprintf("rule[%d].order", idx),
			Message: "rule order must be an integer",
			Pos:     orderVal.Pos(),
		}
	}
	rule.Order = int(order)

	summaryVal := v.LookupPath(cue.ParsePath("summary"))
	if !summaryVal.Exists() {
		return rule, &CompileError{
			Field:   fmt.Sprintf("rule[%d].summary", idx),
			Message: "rule summary (predicate description) is required",
			Pos:     v.Pos(),
		}
	}
	summary, err := summaryVal.String()
	if err != nil {
		return rule, formatCUEError(err)
	}
	rule.Summary = summary

	// when is optional; an absent or empty list is the always-true
	// predicate used by default rows.
	whenVal := v.LookupPath(cue.ParsePath("when"))
	if whenVal.Exists() {
		condIter, err := whenVal.List()
		if err != nil {
			return rule, formatCUEError(err)
		}
		for cidx := 0; condIter.Next(); cidx++ {
			cond, condErr := parseCondition(condIter.Value(), idx, cidx)
			if condErr != nil {
				return rule, condErr
			}
			rule.When = append(rule.When, cond)
		}
	}

	outcomeVal := v.LookupPath(cue.ParsePath("outcome"))
	if !outcomeVal.Exists() {
		return rule, &CompileError{
			Field:   fmt.Sprintf("rule[%d].outcome", idx),
			Message: "rule outcome is required",
			Pos:     v.Pos(),
		}
	}
	outcome, err := outcomeVal.String()
	if err != nil {
		return rule, formatCUEError(err)
	}
	rule.Outcome = outcome

	rationaleVal := v.LookupPath(cue.ParsePath("rationale"))
	if !rationaleVal.Exists() {
		return rule, &CompileError{
			Field:   fmt.Sprintf("rule[%d].rationale", idx),
			Message: "rule rationale is required",
			Pos:     v.Pos(),
		}
	}
	ratIter, err := rationaleVal.List()
	if err != nil {
		return rule, formatCUEError(err)
	}
	for ratIter.Next() {
		line, lineErr := ratIter.Value().String()
		if lineErr != nil {
			return rule, formatCUEError(lineErr)
		}
		rule.Rationale = append(rule.Rationale, line)
	}

	return rule, nil
}

// parseCondition parses one condition row: a field name plus exactly one
// comparator key (equals, at_least, above, at_most, below).
func parseCondition(v cue.Value, ruleIdx, condIdx int) (advice.Condition, error) {
	var cond advice.Condition
	fieldPath := fmt.Sprintf("rule[%d].when[%d]", ruleIdx, condIdx)

	fieldVal := v.LookupPath(cue.ParsePath("field"))
	if !fieldVal.Exists() {
		return cond, &CompileError{
			Field:   fieldPath + ".field",
			Message: "condition field is required",
			Pos:     v.Pos(),
		}
	}
	field, err := fieldVal.String()
	if err != nil {
		return cond, formatCUEError(err)
	}
	cond.Field = field

	found := 0
	for _, op := range advice.CompareOps {
		opVal := v.LookupPath(cue.ParsePath(string(op)))
		if !opVal.Exists() {
			continue
		}
		found++
		if found > 1 {
			return cond, &CompileError{
				Field:   fieldPath,
				Message: "condition must use exactly one comparator (equals, at_least, above, at_most, below)",
				Pos:     v.Pos(),
			}
		}

		cond.Op = op
		value, valErr := parseConditionValue(op, opVal, fieldPath)
		if valErr != nil {
			return cond, valErr
		}
		cond.Value = value
	}

	if found == 0 {
		return cond, &CompileError{
			Field:   fieldPath,
			Message: "condition must use exactly one comparator (equals, at_least, above, at_most, below)",
			Pos:     v.Pos(),
		}
	}

	return cond, nil
}

// parseConditionValue converts a comparator operand to an advice.Value.
// Equality accepts bool, string (enum), and integer operands; the ordering
// comparators require a number and carry it as a float64 threshold.
func parseConditionValue(op advice.CompareOp, v cue.Value, fieldPath string) (advice.Value, error) {
	if op == advice.OpEquals {
		switch v.Kind() {
		case cue.BoolKind:
			b, err := v.Bool()
			if err != nil {
				return nil, formatCUEError(err)
			}
			return advice.BoolValue(b), nil
		case cue.StringKind:
			s, err := v.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			return advice.EnumValue(s), nil
		case cue.IntKind:
			i, err := v.Int64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			return advice.IntValue(i), nil
		default:
			return nil, &CompileError{
				Field:   fieldPath + ".equals",
				Message: fmt.Sprintf("equals operand must be bool, string, or integer, got %v", v.Kind()),
				Pos:     v.Pos(),
			}
		}
	}

	switch v.Kind() {
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return advice.FloatValue(f), nil
	default:
		return nil, &CompileError{
			Field:   fmt.Sprintf("%s.%s", fieldPath, op),
			Message: fmt.Sprintf("%s threshold must be a number, got %v", op, v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
