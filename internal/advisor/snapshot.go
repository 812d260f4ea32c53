package advisor

import (
	"fmt"

	"github.com/sqlsage/sqlsage/internal/advice"
	"github.com/sqlsage/sqlsage/internal/engine"
	"github.com/sqlsage/sqlsage/internal/matrix"
	"github.com/sqlsage/sqlsage/internal/rulepack"
)

// Snapshot binds one loaded pack's rule engine and capability matrix.
// Immutable once built; every advisory request runs against exactly one
// snapshot from start to finish.
type Snapshot struct {
	engine *engine.Engine
	matrix *matrix.Matrix
	source string
}

// NewSnapshot compiles a loaded pack into a servable snapshot. The pack is
// expected to have passed load validation already; errors here are the
// structural ones (duplicate set ids, duplicate matrix cells) that make
// the pack unservable.
func NewSnapshot(pack *rulepack.Pack) (*Snapshot, error) {
	eng, err := engine.New(pack.RuleSets)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}
	mat, err := matrix.New(pack.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("building capability matrix: %w", err)
	}
	return &Snapshot{engine: eng, matrix: mat, source: pack.Source}, nil
}

// Source names the pack this snapshot was built from ("embedded" or a
// directory path).
func (s *Snapshot) Source() string {
	return s.source
}

// RuleSets returns copies of the loaded rule sets in pack order.
func (s *Snapshot) RuleSets() []advice.RuleSet {
	return s.engine.RuleSets()
}

// RuleSet returns one loaded rule set by id.
func (s *Snapshot) RuleSet(id string) (advice.RuleSet, bool) {
	return s.engine.RuleSet(id)
}

// RuleSetIDs returns the loaded rule set ids in pack order.
func (s *Snapshot) RuleSetIDs() []string {
	return s.engine.RuleSetIDs()
}

// CapabilityRows returns the matrix rows in source declaration order.
func (s *Snapshot) CapabilityRows() []advice.CapabilityRow {
	return s.matrix.Rows()
}

// CapabilityNames returns the tracked capability names, sorted.
func (s *Snapshot) CapabilityNames() []string {
	return s.matrix.Names()
}
