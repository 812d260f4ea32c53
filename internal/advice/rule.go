package advice

import (
	"encoding/json"
	"fmt"
)

// CompareOp is the comparator a condition applies to a fact field.
type CompareOp string

const (
	// OpEquals matches bool, enum, and integer fields exactly.
	OpEquals CompareOp = "equals"

	// OpAtLeast matches numeric fields >= the threshold.
	OpAtLeast CompareOp = "at_least"

	// OpAbove matches numeric fields > the threshold.
	OpAbove CompareOp = "above"

	// OpAtMost matches numeric fields <= the threshold.
	OpAtMost CompareOp = "at_most"

	// OpBelow matches numeric fields < the threshold.
	OpBelow CompareOp = "below"
)

// CompareOps lists every comparator a condition row may use.
var CompareOps = []CompareOp{OpEquals, OpAtLeast, OpAbove, OpAtMost, OpBelow}

// Condition is one predicate term of a rule: field <op> value. A rule's
// condition list has AND semantics; the empty list matches every fact,
// which is how a rule set declares its default row.
type Condition struct {
	Field string
	Op    CompareOp
	Value Value
}

// String renders the condition for reports: "reuse_count at_least 2".
func (c Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Op, FormatValue(c.Value))
}

// MarshalJSON renders the condition with its value in report form.
// Conditions only flow outward, to listings and reports; CUE is the sole
// inbound format, so there is no UnmarshalJSON counterpart.
func (c Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Field string    `json:"field"`
		Op    CompareOp `json:"op"`
		Value string    `json:"value"`
	}{c.Field, c.Op, FormatValue(c.Value)})
}

// Rule is one ordered row of a rule set. Order is the declared evaluation
// position, unique within the set; rules evaluate ascending and the first
// whose conditions all hold wins.
type Rule struct {
	ID        string      `json:"id"`
	Order     int         `json:"order"`
	Summary   string      `json:"summary"`
	When      []Condition `json:"when,omitempty"`
	Outcome   string      `json:"outcome"`
	Rationale []string    `json:"rationale"`
}

// RuleSet is an ordered collection of rules for one advisory domain.
// Rules are sorted by Order after compilation and never mutated after load.
type RuleSet struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Rules       []Rule `json:"rules"`
}
