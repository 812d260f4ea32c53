package advisor

import (
	"log/slog"
	"sync/atomic"

	"github.com/sqlsage/sqlsage/internal/advice"
	"github.com/sqlsage/sqlsage/internal/rulepack"
)

// Advisor answers the four advisory operations against the current
// snapshot. Safe for concurrent use; Reload may run alongside readers.
type Advisor struct {
	snap atomic.Pointer[Snapshot]
}

// New creates an Advisor serving the given snapshot.
func New(snap *Snapshot) *Advisor {
	a := &Advisor{}
	a.snap.Store(snap)
	slog.Info("advisor ready",
		"source", snap.source,
		"rule_sets", len(snap.engine.RuleSetIDs()),
		"capability_rows", snap.matrix.Len(),
	)
	return a
}

// FromPack builds the snapshot and the advisor in one step.
func FromPack(pack *rulepack.Pack) (*Advisor, error) {
	snap, err := NewSnapshot(pack)
	if err != nil {
		return nil, err
	}
	return New(snap), nil
}

// Snapshot returns the snapshot currently serving requests.
func (a *Advisor) Snapshot() *Snapshot {
	return a.snap.Load()
}

// Reload swaps in a snapshot built from the new pack. Requests already
// evaluating keep the snapshot they started with. When the pack fails to
// build, the current snapshot stays in service and the error is returned.
func (a *Advisor) Reload(pack *rulepack.Pack) error {
	snap, err := NewSnapshot(pack)
	if err != nil {
		return err
	}
	a.snap.Store(snap)
	slog.Info("advisor reloaded",
		"source", snap.source,
		"rule_sets", len(snap.engine.RuleSetIDs()),
		"capability_rows", snap.matrix.Len(),
	)
	return nil
}

// SelectConstruct recommends the T-SQL construct for a declared query
// shape.
func (a *Advisor) SelectConstruct(fact advice.QueryShapeFact) (advice.ConstructRecommendation, error) {
	rec, err := a.snap.Load().engine.Evaluate(advice.RuleSetConstructSelection, fact)
	if err != nil {
		return advice.ConstructRecommendation{}, err
	}
	return advice.ConstructRecommendation{
		Construct: advice.Construct(rec.Outcome),
		RuleID:    rec.RuleID,
		Rationale: rec.Rationale,
	}, nil
}

// AdviseFragmentation recommends the maintenance action for a measured
// fragmentation percentage.
func (a *Advisor) AdviseFragmentation(fact advice.FragmentationFact) (advice.MaintenanceRecommendation, error) {
	rec, err := a.snap.Load().engine.Evaluate(advice.RuleSetFragmentationAction, fact)
	if err != nil {
		return advice.MaintenanceRecommendation{}, err
	}
	return advice.MaintenanceRecommendation{
		Action:    advice.MaintenanceAction(rec.Outcome),
		RuleID:    rec.RuleID,
		Rationale: rec.Rationale,
	}, nil
}

// ChooseUpsertStrategy recommends MERGE or an UPDATE-then-INSERT pair for
// an upsert decision.
func (a *Advisor) ChooseUpsertStrategy(fact advice.MergeDecisionFact) (advice.UpsertRecommendation, error) {
	rec, err := a.snap.Load().engine.Evaluate(advice.RuleSetMergeVsSplit, fact)
	if err != nil {
		return advice.UpsertRecommendation{}, err
	}
	return advice.UpsertRecommendation{
		Strategy:  advice.UpsertStrategy(rec.Outcome),
		RuleID:    rec.RuleID,
		Rationale: rec.Rationale,
	}, nil
}

// ResolveCapability answers availability for one capability in one
// environment.
func (a *Advisor) ResolveCapability(name string, env advice.Environment) (advice.CapabilityStatus, error) {
	return a.snap.Load().matrix.Resolve(name, env)
}

// Evaluate runs a fact through an arbitrary loaded rule set. The typed
// operations cover the shipped sets; this is the escape hatch the harness
// uses to exercise custom packs.
func (a *Advisor) Evaluate(ruleSetID string, fact advice.Fact) (*advice.Recommendation, error) {
	return a.snap.Load().engine.Evaluate(ruleSetID, fact)
}
