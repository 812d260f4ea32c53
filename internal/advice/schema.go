package advice

// FieldKind categorizes a fact field for condition validation.
type FieldKind int

const (
	KindBool FieldKind = iota
	KindInt
	KindFloat
	KindEnum
)

// String names the kind for validation messages.
func (k FieldKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Numeric reports whether ordering comparators apply to the kind.
func (k FieldKind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// FieldSpec describes one fact field a rule set's conditions may test.
// Enum lists the allowed canonical spellings when Kind is KindEnum.
type FieldSpec struct {
	Kind FieldKind
	Enum []string
}

// FactSchema maps field names to their specs for one rule set.
type FactSchema map[string]FieldSpec

// RuleSetSchema binds a rule set id to the fact fields its conditions may
// reference and the outcome constants its rules may produce. The loader
// validates every compiled rule against this before the engine serves it.
type RuleSetSchema struct {
	ID       string
	Facts    FactSchema
	Outcomes []string
}

// AllowsOutcome reports whether the outcome constant is in the set's domain.
func (s RuleSetSchema) AllowsOutcome(outcome string) bool {
	for _, o := range s.Outcomes {
		if o == outcome {
			return true
		}
	}
	return false
}

// schemas is the compiled-in registry. One entry per advisory domain;
// the CUE pack cannot introduce rule sets the engine has no schema for.
var schemas = map[string]RuleSetSchema{
	RuleSetConstructSelection: {
		ID: RuleSetConstructSelection,
		Facts: FactSchema{
			"needs_recursion":               {Kind: KindBool},
			"is_correlated":                 {Kind: KindBool},
			"invokes_table_valued_function": {Kind: KindBool},
			"optional_relation":             {Kind: KindBool},
			"reuse_count":                   {Kind: KindInt},
			"result_cardinality":            {Kind: KindEnum, Enum: []string{string(CardinalityScalar), string(CardinalitySet)}},
		},
		Outcomes: constructOutcomes(),
	},
	RuleSetFragmentationAction: {
		ID: RuleSetFragmentationAction,
		Facts: FactSchema{
			"fragmentation_percent": {Kind: KindFloat},
		},
		Outcomes: maintenanceOutcomes(),
	},
	RuleSetMergeVsSplit: {
		ID: RuleSetMergeVsSplit,
		Facts: FactSchema{
			"conditional_branch_count": {Kind: KindInt},
			"needs_row_level_audit":    {Kind: KindBool},
			"estimated_row_count":      {Kind: KindEnum, Enum: []string{string(RowCountSmall), string(RowCountLarge)}},
		},
		Outcomes: upsertOutcomes(),
	},
}

// SchemaFor returns the schema for a rule set id, if one is registered.
func SchemaFor(ruleSetID string) (RuleSetSchema, bool) {
	s, ok := schemas[ruleSetID]
	return s, ok
}

// RuleSetIDs returns the registered rule set ids in a fixed order.
func RuleSetIDs() []string {
	return []string{RuleSetConstructSelection, RuleSetFragmentationAction, RuleSetMergeVsSplit}
}

func constructOutcomes() []string {
	out := make([]string, len(Constructs))
	for i, c := range Constructs {
		out[i] = string(c)
	}
	return out
}

func maintenanceOutcomes() []string {
	out := make([]string, len(MaintenanceActions))
	for i, a := range MaintenanceActions {
		out[i] = string(a)
	}
	return out
}

func upsertOutcomes() []string {
	out := make([]string, len(UpsertStrategies))
	for i, s := range UpsertStrategies {
		out[i] = string(s)
	}
	return out
}
