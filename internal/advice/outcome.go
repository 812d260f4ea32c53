package advice

import (
	"fmt"
	"strings"
)

// Rule set identifiers. These are the registry keys the engine evaluates
// against and the `ruleset` labels in the CUE source.
const (
	RuleSetConstructSelection  = "construct-selection"
	RuleSetFragmentationAction = "fragmentation-action"
	RuleSetMergeVsSplit        = "merge-vs-split"
)

// Construct is a relational query construct recommendation.
type Construct string

const (
	ConstructCTE                Construct = "CTE"
	ConstructSubqueryInline     Construct = "SUBQUERY_INLINE"
	ConstructSubqueryCorrelated Construct = "SUBQUERY_CORRELATED"
	ConstructCrossApply         Construct = "CROSS_APPLY"
	ConstructOuterApply         Construct = "OUTER_APPLY"
)

// Constructs lists every construct outcome in its canonical spelling.
var Constructs = []Construct{
	ConstructCTE,
	ConstructSubqueryInline,
	ConstructSubqueryCorrelated,
	ConstructCrossApply,
	ConstructOuterApply,
}

// MaintenanceAction is an index maintenance recommendation.
type MaintenanceAction string

const (
	ActionNone       MaintenanceAction = "NO_ACTION"
	ActionReorganize MaintenanceAction = "REORGANIZE"
	ActionRebuild    MaintenanceAction = "REBUILD"
)

// MaintenanceActions lists every fragmentation outcome.
var MaintenanceActions = []MaintenanceAction{ActionNone, ActionReorganize, ActionRebuild}

// UpsertStrategy is the recommended shape for an upsert statement.
type UpsertStrategy string

const (
	StrategyMerge            UpsertStrategy = "MERGE"
	StrategyUpdateThenInsert UpsertStrategy = "UPDATE_THEN_INSERT"
)

// UpsertStrategies lists every upsert outcome.
var UpsertStrategies = []UpsertStrategy{StrategyMerge, StrategyUpdateThenInsert}

// Cardinality is the declared result shape of a subexpression.
type Cardinality string

const (
	CardinalityScalar Cardinality = "SCALAR"
	CardinalitySet    Cardinality = "SET"
)

// ParseCardinality folds case, so "scalar" and "SCALAR" both parse.
func ParseCardinality(s string) (Cardinality, error) {
	switch canonicalToken(s) {
	case string(CardinalityScalar):
		return CardinalityScalar, nil
	case string(CardinalitySet):
		return CardinalitySet, nil
	default:
		return "", fmt.Errorf("unknown result cardinality %q: must be SCALAR or SET", s)
	}
}

// RowCountHint is the declared magnitude of rows an upsert touches.
type RowCountHint string

const (
	RowCountSmall RowCountHint = "SMALL"
	RowCountLarge RowCountHint = "LARGE"
)

// ParseRowCountHint folds case, so "large" and "LARGE" both parse.
func ParseRowCountHint(s string) (RowCountHint, error) {
	switch canonicalToken(s) {
	case string(RowCountSmall):
		return RowCountSmall, nil
	case string(RowCountLarge):
		return RowCountLarge, nil
	default:
		return "", fmt.Errorf("unknown row count hint %q: must be SMALL or LARGE", s)
	}
}

// canonicalToken maps user or data spellings onto the canonical enum form:
// upper case with underscores ("managed-instance" -> "MANAGED_INSTANCE").
func canonicalToken(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
}

// Recommendation is the untyped result of evaluating one fact against one
// rule set: the matched rule's identity, its outcome constant, and the
// literal rationale text. Exactly one rule produces it (first match wins),
// and Rationale is never empty for a rule set that passed load validation.
type Recommendation struct {
	RuleSetID string   `json:"rule_set_id"`
	RuleID    string   `json:"rule_id"`
	Order     int      `json:"order"`
	Summary   string   `json:"summary"`
	Outcome   string   `json:"outcome"`
	Rationale []string `json:"rationale"`
}

// ConstructRecommendation is the construct-selection result surfaced by the
// advisor facade.
type ConstructRecommendation struct {
	Construct Construct `json:"construct"`
	RuleID    string    `json:"rule_id"`
	Rationale []string  `json:"rationale"`
}

// MaintenanceRecommendation is the fragmentation-action result surfaced by
// the advisor facade.
type MaintenanceRecommendation struct {
	Action    MaintenanceAction `json:"action"`
	RuleID    string            `json:"rule_id"`
	Rationale []string          `json:"rationale"`
}

// UpsertRecommendation is the merge-vs-split result surfaced by the advisor
// facade.
type UpsertRecommendation struct {
	Strategy  UpsertStrategy `json:"strategy"`
	RuleID    string         `json:"rule_id"`
	Rationale []string       `json:"rationale"`
}
