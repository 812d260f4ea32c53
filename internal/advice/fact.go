package advice

import (
	"fmt"
	"math"
)

// Fact is a user-declared description the engine evaluates rules against.
// Facts carry no behavior beyond domain validation and rendering themselves
// to a FieldMap; they are constructed per advisory request and never stored.
type Fact interface {
	// Fields renders the fact to named values. Every field named by the
	// owning rule set's schema must be present.
	Fields() FieldMap

	// Validate reports the first domain violation (out-of-range numbers,
	// missing enum values). The engine surfaces it as INVALID_FACT.
	Validate() error
}

// QueryShapeFact describes a query shape for construct selection.
//
// OptionalRelation declares that the applied relation's absence must be
// tolerated (OUTER APPLY territory). Shapes that leave it false get
// CROSS APPLY when a table-valued function is involved; the shipped rule's
// rationale names that default as a modeled assumption.
type QueryShapeFact struct {
	NeedsRecursion             bool
	IsCorrelated               bool
	InvokesTableValuedFunction bool
	OptionalRelation           bool
	ReuseCount                 int
	ResultCardinality          Cardinality
}

// Fields implements Fact.
func (f QueryShapeFact) Fields() FieldMap {
	return FieldMap{
		"needs_recursion":               BoolValue(f.NeedsRecursion),
		"is_correlated":                 BoolValue(f.IsCorrelated),
		"invokes_table_valued_function": BoolValue(f.InvokesTableValuedFunction),
		"optional_relation":             BoolValue(f.OptionalRelation),
		"reuse_count":                   IntValue(f.ReuseCount),
		"result_cardinality":            EnumValue(f.ResultCardinality),
	}
}

// Validate implements Fact.
func (f QueryShapeFact) Validate() error {
	if f.ReuseCount < 0 {
		return fmt.Errorf("reuse_count must be >= 0, got %d", f.ReuseCount)
	}
	if _, err := ParseCardinality(string(f.ResultCardinality)); err != nil {
		return fmt.Errorf("result_cardinality: %w", err)
	}
	return nil
}

// FragmentationFact carries a measured index fragmentation percentage.
type FragmentationFact struct {
	FragmentationPercent float64
}

// Fields implements Fact.
func (f FragmentationFact) Fields() FieldMap {
	return FieldMap{
		"fragmentation_percent": FloatValue(f.FragmentationPercent),
	}
}

// Validate implements Fact. The band rules cover [0,100] exactly; anything
// outside, or a non-finite reading, is a caller error rather than a band.
func (f FragmentationFact) Validate() error {
	p := f.FragmentationPercent
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return fmt.Errorf("fragmentation_percent must be a finite number, got %v", p)
	}
	if p < 0 || p > 100 {
		return fmt.Errorf("fragmentation_percent must be within [0,100], got %v", p)
	}
	return nil
}

// MergeDecisionFact describes an upsert for the merge-vs-split advisor.
type MergeDecisionFact struct {
	ConditionalBranchCount int
	NeedsRowLevelAudit     bool
	EstimatedRowCount      RowCountHint
}

// Fields implements Fact.
func (f MergeDecisionFact) Fields() FieldMap {
	return FieldMap{
		"conditional_branch_count": IntValue(f.ConditionalBranchCount),
		"needs_row_level_audit":    BoolValue(f.NeedsRowLevelAudit),
		"estimated_row_count":      EnumValue(f.EstimatedRowCount),
	}
}

// Validate implements Fact.
func (f MergeDecisionFact) Validate() error {
	if f.ConditionalBranchCount < 0 {
		return fmt.Errorf("conditional_branch_count must be >= 0, got %d", f.ConditionalBranchCount)
	}
	if _, err := ParseRowCountHint(string(f.EstimatedRowCount)); err != nil {
		return fmt.Errorf("estimated_row_count: %w", err)
	}
	return nil
}
