package advice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryShapeFactValidate(t *testing.T) {
	valid := QueryShapeFact{ReuseCount: 0, ResultCardinality: CardinalityScalar}
	assert.NoError(t, valid.Validate())

	negative := QueryShapeFact{ReuseCount: -1, ResultCardinality: CardinalitySet}
	assert.Error(t, negative.Validate(), "negative reuse count is out of domain")

	missingCardinality := QueryShapeFact{ReuseCount: 1}
	assert.Error(t, missingCardinality.Validate(), "cardinality is required")
}

func TestFragmentationFactValidate(t *testing.T) {
	testCases := []struct {
		name    string
		percent float64
		wantErr bool
	}{
		{"lower bound", 0, false},
		{"upper bound", 100, false},
		{"mid band", 12.5, false},
		{"below range", -0.1, true},
		{"above range", 100.1, true},
		{"nan", math.NaN(), true},
		{"positive inf", math.Inf(1), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := FragmentationFact{FragmentationPercent: tc.percent}.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeDecisionFactValidate(t *testing.T) {
	valid := MergeDecisionFact{ConditionalBranchCount: 2, EstimatedRowCount: RowCountSmall}
	assert.NoError(t, valid.Validate())

	negative := MergeDecisionFact{ConditionalBranchCount: -2, EstimatedRowCount: RowCountLarge}
	assert.Error(t, negative.Validate())

	missingHint := MergeDecisionFact{ConditionalBranchCount: 1}
	assert.Error(t, missingHint.Validate(), "row count hint is required")
}

// Every field a rule set's schema names must be rendered by its fact, or a
// validated rule pack could still reference a field evaluation cannot see.
func TestFactFieldsCoverSchemas(t *testing.T) {
	facts := map[string]Fact{
		RuleSetConstructSelection:  QueryShapeFact{ResultCardinality: CardinalityScalar},
		RuleSetFragmentationAction: FragmentationFact{FragmentationPercent: 10},
		RuleSetMergeVsSplit:        MergeDecisionFact{EstimatedRowCount: RowCountSmall},
	}

	for ruleSetID, fact := range facts {
		t.Run(ruleSetID, func(t *testing.T) {
			schema, ok := SchemaFor(ruleSetID)
			require.True(t, ok, "schema must be registered")

			fields := fact.Fields()
			for name, spec := range schema.Facts {
				value, present := fields[name]
				require.True(t, present, "fact must render schema field %q", name)

				switch spec.Kind {
				case KindBool:
					assert.IsType(t, BoolValue(false), value, "field %q", name)
				case KindInt:
					assert.IsType(t, IntValue(0), value, "field %q", name)
				case KindFloat:
					assert.IsType(t, FloatValue(0), value, "field %q", name)
				case KindEnum:
					assert.IsType(t, EnumValue(""), value, "field %q", name)
				}
			}
			assert.Len(t, fields, len(schema.Facts), "fact must not render fields the schema does not name")
		})
	}
}
