package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlsage/sqlsage/internal/advice"
)

func TestEvalConditionEquals(t *testing.T) {
	fields := advice.FieldMap{
		"needs_recursion":    advice.BoolValue(true),
		"reuse_count":        advice.IntValue(2),
		"result_cardinality": advice.EnumValue("SCALAR"),
	}

	tests := []struct {
		name string
		cond advice.Condition
		want bool
	}{
		{
			name: "bool true",
			cond: advice.Condition{Field: "needs_recursion", Op: advice.OpEquals, Value: advice.BoolValue(true)},
			want: true,
		},
		{
			name: "bool false",
			cond: advice.Condition{Field: "needs_recursion", Op: advice.OpEquals, Value: advice.BoolValue(false)},
			want: false,
		},
		{
			name: "int",
			cond: advice.Condition{Field: "reuse_count", Op: advice.OpEquals, Value: advice.IntValue(2)},
			want: true,
		},
		{
			name: "int against float threshold",
			cond: advice.Condition{Field: "reuse_count", Op: advice.OpEquals, Value: advice.FloatValue(2)},
			want: true,
		},
		{
			name: "enum",
			cond: advice.Condition{Field: "result_cardinality", Op: advice.OpEquals, Value: advice.EnumValue("SCALAR")},
			want: true,
		},
		{
			name: "enum mismatch",
			cond: advice.Condition{Field: "result_cardinality", Op: advice.OpEquals, Value: advice.EnumValue("SET")},
			want: false,
		},
		{
			name: "cross-kind never equal",
			cond: advice.Condition{Field: "needs_recursion", Op: advice.OpEquals, Value: advice.EnumValue("true")},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalCondition(fields, tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalConditionOrdering(t *testing.T) {
	fields := advice.FieldMap{"fragmentation_percent": advice.FloatValue(30)}

	tests := []struct {
		op   advice.CompareOp
		val  float64
		want bool
	}{
		{advice.OpAtLeast, 30, true},
		{advice.OpAtLeast, 30.001, false},
		{advice.OpAbove, 29.999, true},
		{advice.OpAbove, 30, false},
		{advice.OpAtMost, 30, true},
		{advice.OpAtMost, 29.999, false},
		{advice.OpBelow, 30.001, true},
		{advice.OpBelow, 30, false},
	}

	for _, tt := range tests {
		cond := advice.Condition{Field: "fragmentation_percent", Op: tt.op, Value: advice.FloatValue(tt.val)}
		got, err := evalCondition(fields, cond)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %v", tt.op, tt.val)
	}
}

func TestEvalConditionIntFieldUnderOrdering(t *testing.T) {
	fields := advice.FieldMap{"reuse_count": advice.IntValue(3)}

	got, err := evalCondition(fields, advice.Condition{Field: "reuse_count", Op: advice.OpAtLeast, Value: advice.FloatValue(2)})
	require.NoError(t, err)
	assert.True(t, got)
}

func TestEvalConditionMissingField(t *testing.T) {
	fields := advice.FieldMap{"reuse_count": advice.IntValue(1)}

	_, err := evalCondition(fields, advice.Condition{Field: "page_density", Op: advice.OpEquals, Value: advice.IntValue(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no field "page_density"`)
}

func TestEvalConditionNonNumericFieldUnderOrdering(t *testing.T) {
	fields := advice.FieldMap{"result_cardinality": advice.EnumValue("SET")}

	_, err := evalCondition(fields, advice.Condition{Field: "result_cardinality", Op: advice.OpAtLeast, Value: advice.FloatValue(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not numeric")
}

func TestEvalConditionNonNumericThreshold(t *testing.T) {
	fields := advice.FieldMap{"reuse_count": advice.IntValue(1)}

	_, err := evalCondition(fields, advice.Condition{Field: "reuse_count", Op: advice.OpBelow, Value: advice.EnumValue("MANY")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-numeric threshold")
}

func TestEvalConditionUnknownComparator(t *testing.T) {
	fields := advice.FieldMap{"reuse_count": advice.IntValue(1)}

	_, err := evalCondition(fields, advice.Condition{Field: "reuse_count", Op: advice.CompareOp("approximately"), Value: advice.IntValue(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown comparator")
}

func TestMatchRuleEmptyWhenAlwaysHolds(t *testing.T) {
	rule := advice.Rule{ID: "default", Order: 99, Outcome: "MERGE"}

	ok, err := matchRule(advice.FieldMap{}, rule)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatchRuleAllConditionsMustHold(t *testing.T) {
	fields := advice.FieldMap{
		"invokes_table_valued_function": advice.BoolValue(true),
		"result_cardinality":            advice.EnumValue("SCALAR"),
	}
	rule := advice.Rule{
		ID: "tvf-set",
		When: []advice.Condition{
			{Field: "invokes_table_valued_function", Op: advice.OpEquals, Value: advice.BoolValue(true)},
			{Field: "result_cardinality", Op: advice.OpEquals, Value: advice.EnumValue("SET")},
		},
	}

	ok, err := matchRule(fields, rule)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchRuleWrapsConditionErrors(t *testing.T) {
	rule := advice.Rule{
		ID: "probing",
		When: []advice.Condition{
			{Field: "page_density", Op: advice.OpBelow, Value: advice.FloatValue(60)},
		},
	}

	_, err := matchRule(advice.FieldMap{}, rule)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "probing"`)
}
