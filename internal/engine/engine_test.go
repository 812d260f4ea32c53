package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlsage/sqlsage/internal/advice"
)

// testFragmentationSet builds the three-band maintenance set by hand so
// the engine tests do not depend on the CUE pipeline.
func testFragmentationSet() advice.RuleSet {
	return advice.RuleSet{
		ID:          advice.RuleSetFragmentationAction,
		Description: "fragmentation bands",
		Rules: []advice.Rule{
			{
				ID:      "light",
				Order:   10,
				Summary: "below 5",
				When: []advice.Condition{
					{Field: "fragmentation_percent", Op: advice.OpBelow, Value: advice.FloatValue(5)},
				},
				Outcome:   string(advice.ActionNone),
				Rationale: []string{"not worth touching"},
			},
			{
				ID:      "moderate",
				Order:   20,
				Summary: "5 up to 30",
				When: []advice.Condition{
					{Field: "fragmentation_percent", Op: advice.OpAtLeast, Value: advice.FloatValue(5)},
					{Field: "fragmentation_percent", Op: advice.OpBelow, Value: advice.FloatValue(30)},
				},
				Outcome:   string(advice.ActionReorganize),
				Rationale: []string{"compact in place"},
			},
			{
				ID:      "heavy",
				Order:   30,
				Summary: "30 and up",
				When: []advice.Condition{
					{Field: "fragmentation_percent", Op: advice.OpAtLeast, Value: advice.FloatValue(30)},
				},
				Outcome:   string(advice.ActionRebuild),
				Rationale: []string{"start fresh"},
			},
		},
	}
}

// testUpsertSet carries overlapping predicates plus an always-true default,
// the shape that exercises first-match precedence.
func testUpsertSet() advice.RuleSet {
	return advice.RuleSet{
		ID:          advice.RuleSetMergeVsSplit,
		Description: "merge or split",
		Rules: []advice.Rule{
			{
				ID:      "audit",
				Order:   10,
				Summary: "audit output needed",
				When: []advice.Condition{
					{Field: "needs_row_level_audit", Op: advice.OpEquals, Value: advice.BoolValue(true)},
				},
				Outcome:   string(advice.StrategyMerge),
				Rationale: []string{"$action output"},
			},
			{
				ID:      "branchy",
				Order:   20,
				Summary: "more than three branches",
				When: []advice.Condition{
					{Field: "conditional_branch_count", Op: advice.OpAbove, Value: advice.FloatValue(3)},
				},
				Outcome:   string(advice.StrategyUpdateThenInsert),
				Rationale: []string{"keep branches reviewable"},
			},
			{
				ID:        "default",
				Order:     30,
				Summary:   "anything else",
				Outcome:   string(advice.StrategyMerge),
				Rationale: []string{"one atomic statement"},
			},
		},
	}
}

func TestNewSortsRulesByOrder(t *testing.T) {
	// Declare rules out of order; the engine must sort by the declared
	// order, not keep file position.
	set := testFragmentationSet()
	set.Rules[0], set.Rules[2] = set.Rules[2], set.Rules[0]

	eng, err := New([]advice.RuleSet{set})
	require.NoError(t, err)

	got, ok := eng.RuleSet(advice.RuleSetFragmentationAction)
	require.True(t, ok)
	require.Len(t, got.Rules, 3)
	assert.Equal(t, []int{10, 20, 30}, []int{got.Rules[0].Order, got.Rules[1].Order, got.Rules[2].Order})

	rec, err := eng.Evaluate(advice.RuleSetFragmentationAction, advice.FragmentationFact{FragmentationPercent: 2})
	require.NoError(t, err)
	assert.Equal(t, "light", rec.RuleID)
}

func TestNewRejectsDuplicateSetID(t *testing.T) {
	_, err := New([]advice.RuleSet{testFragmentationSet(), testFragmentationSet()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate rule set id")
}

func TestNewCopiesRules(t *testing.T) {
	set := testFragmentationSet()
	eng, err := New([]advice.RuleSet{set})
	require.NoError(t, err)

	// Mutating the caller's slice after construction must not reach the
	// engine.
	set.Rules[0].Outcome = string(advice.ActionRebuild)

	rec, err := eng.Evaluate(advice.RuleSetFragmentationAction, advice.FragmentationFact{FragmentationPercent: 1})
	require.NoError(t, err)
	assert.Equal(t, string(advice.ActionNone), rec.Outcome)
}

func TestEvaluateFirstMatchWins(t *testing.T) {
	eng, err := New([]advice.RuleSet{testUpsertSet()})
	require.NoError(t, err)

	// Audit true and five branches satisfy the audit rule, the branchy
	// rule, and the default; only the lowest order answers.
	fact := advice.MergeDecisionFact{
		NeedsRowLevelAudit:     true,
		ConditionalBranchCount: 5,
		EstimatedRowCount:      advice.RowCountSmall,
	}
	rec, err := eng.Evaluate(advice.RuleSetMergeVsSplit, fact)
	require.NoError(t, err)
	assert.Equal(t, "audit", rec.RuleID)
	assert.Equal(t, 10, rec.Order)
	assert.Equal(t, string(advice.StrategyMerge), rec.Outcome)
}

func TestEvaluateDefaultRuleCatchesRest(t *testing.T) {
	eng, err := New([]advice.RuleSet{testUpsertSet()})
	require.NoError(t, err)

	fact := advice.MergeDecisionFact{
		ConditionalBranchCount: 1,
		EstimatedRowCount:      advice.RowCountSmall,
	}
	rec, err := eng.Evaluate(advice.RuleSetMergeVsSplit, fact)
	require.NoError(t, err)
	assert.Equal(t, "default", rec.RuleID)
	assert.Equal(t, []string{"one atomic statement"}, rec.Rationale)
}

func TestEvaluateBandBoundaries(t *testing.T) {
	eng, err := New([]advice.RuleSet{testFragmentationSet()})
	require.NoError(t, err)

	tests := []struct {
		percent float64
		ruleID  string
	}{
		{4.999, "light"},
		{5.0, "moderate"},
		{29.999, "moderate"},
		{30.0, "heavy"},
		{100, "heavy"},
	}
	for _, tt := range tests {
		rec, err := eng.Evaluate(advice.RuleSetFragmentationAction, advice.FragmentationFact{FragmentationPercent: tt.percent})
		require.NoError(t, err, "percent %v", tt.percent)
		assert.Equal(t, tt.ruleID, rec.RuleID, "percent %v", tt.percent)
	}
}

func TestEvaluateUnknownRuleSet(t *testing.T) {
	eng, err := New([]advice.RuleSet{testFragmentationSet()})
	require.NoError(t, err)

	_, err = eng.Evaluate("query-hints", advice.FragmentationFact{FragmentationPercent: 10})
	require.Error(t, err)
	assert.True(t, IsUnknownRuleSetError(err))

	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "query-hints", ee.RuleSetID)
	assert.Contains(t, ee.Details["known"], advice.RuleSetFragmentationAction)
}

func TestEvaluateNilFact(t *testing.T) {
	eng, err := New([]advice.RuleSet{testFragmentationSet()})
	require.NoError(t, err)

	_, err = eng.Evaluate(advice.RuleSetFragmentationAction, nil)
	require.Error(t, err)
	assert.True(t, IsInvalidFactError(err))
}

func TestEvaluateInvalidFact(t *testing.T) {
	eng, err := New([]advice.RuleSet{testFragmentationSet()})
	require.NoError(t, err)

	_, err = eng.Evaluate(advice.RuleSetFragmentationAction, advice.FragmentationFact{FragmentationPercent: 200})
	require.Error(t, err)
	assert.True(t, IsInvalidFactError(err))
	assert.Contains(t, err.Error(), "[0,100]")
}

func TestEvaluateNoRuleMatched(t *testing.T) {
	// Strip the default rule so a fact can fall through the whole set.
	set := testUpsertSet()
	set.Rules = set.Rules[:2]

	eng, err := New([]advice.RuleSet{set})
	require.NoError(t, err)

	fact := advice.MergeDecisionFact{
		ConditionalBranchCount: 1,
		EstimatedRowCount:      advice.RowCountSmall,
	}
	_, err = eng.Evaluate(advice.RuleSetMergeVsSplit, fact)
	require.Error(t, err)
	assert.True(t, IsNoRuleMatchedError(err))

	// The error carries the rendered fact for reporting.
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Fact, "conditional_branch_count=1")
	assert.Contains(t, ee.Fact, "needs_row_level_audit=false")
}

func TestEvaluateMissingFieldIsInvalidFact(t *testing.T) {
	set := testFragmentationSet()
	set.Rules[0].When = []advice.Condition{
		{Field: "page_density", Op: advice.OpBelow, Value: advice.FloatValue(5)},
	}

	eng, err := New([]advice.RuleSet{set})
	require.NoError(t, err)

	// A rule probing a field the fact does not render is a structural
	// disagreement, not a quiet non-match.
	_, err = eng.Evaluate(advice.RuleSetFragmentationAction, advice.FragmentationFact{FragmentationPercent: 1})
	require.Error(t, err)
	assert.True(t, IsInvalidFactError(err))
	assert.Contains(t, err.Error(), "page_density")
}

func TestEvaluateCopiesRationale(t *testing.T) {
	eng, err := New([]advice.RuleSet{testFragmentationSet()})
	require.NoError(t, err)

	rec, err := eng.Evaluate(advice.RuleSetFragmentationAction, advice.FragmentationFact{FragmentationPercent: 50})
	require.NoError(t, err)
	rec.Rationale[0] = "scribbled over"

	again, err := eng.Evaluate(advice.RuleSetFragmentationAction, advice.FragmentationFact{FragmentationPercent: 50})
	require.NoError(t, err)
	assert.Equal(t, []string{"start fresh"}, again.Rationale)
}

func TestRuleSetAccessors(t *testing.T) {
	eng, err := New([]advice.RuleSet{testFragmentationSet(), testUpsertSet()})
	require.NoError(t, err)

	assert.Equal(t, []string{advice.RuleSetFragmentationAction, advice.RuleSetMergeVsSplit}, eng.RuleSetIDs())

	sets := eng.RuleSets()
	require.Len(t, sets, 2)
	sets[0].Rules[0].Outcome = "scribbled"

	got, ok := eng.RuleSet(advice.RuleSetFragmentationAction)
	require.True(t, ok)
	assert.Equal(t, string(advice.ActionNone), got.Rules[0].Outcome)

	_, ok = eng.RuleSet("query-hints")
	assert.False(t, ok)
}
