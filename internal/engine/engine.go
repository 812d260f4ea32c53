package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/sqlsage/sqlsage/internal/advice"
)

// Engine evaluates advisory rule sets against caller-supplied facts.
//
// The engine holds an immutable snapshot of compiled rule sets. Given a
// rule set id and a fact, it walks the set's rules in ascending order and
// returns the recommendation of the first rule whose predicate holds.
//
// Thread-safety model:
//   - Evaluate(): safe from any goroutine (read-only over immutable state)
//   - hot reload never mutates a served engine; the advisor builds a
//     fresh Engine from the reloaded pack and swaps an atomic pointer
//
// INVARIANTS:
//   - Rules within a set are sorted by order at construction and NEVER reordered
//   - First matching rule wins; later rules are not consulted
//   - Evaluation is pure: same rule set and fact, same answer, every time
type Engine struct {
	sets map[string]*advice.RuleSet
	ids  []string // rule set ids in registration order
}

// New creates an Engine from compiled rule sets.
//
// Each set's rules are copied and sorted by order, so later mutation of
// the caller's slices cannot change what the engine serves. Duplicate
// rule set ids are a construction error: silently keeping one of the
// two would make recommendations depend on registration order.
func New(ruleSets []advice.RuleSet) (*Engine, error) {
	e := &Engine{
		sets: make(map[string]*advice.RuleSet, len(ruleSets)),
	}

	for _, rs := range ruleSets {
		if _, exists := e.sets[rs.ID]; exists {
			return nil, fmt.Errorf("duplicate rule set id %q", rs.ID)
		}

		set := rs
		set.Rules = make([]advice.Rule, len(rs.Rules))
		copy(set.Rules, rs.Rules)
		sort.SliceStable(set.Rules, func(i, j int) bool {
			return set.Rules[i].Order < set.Rules[j].Order
		})

		e.sets[set.ID] = &set
		e.ids = append(e.ids, set.ID)
	}

	return e, nil
}

// Evaluate runs a fact through a rule set and returns the first match.
//
// The evaluation flow:
// 1. Resolve the rule set by id (UNKNOWN_RULE_SET if absent)
// 2. Let the fact validate itself (INVALID_FACT on failure)
// 3. Walk rules in ascending order, testing each predicate
// 4. First rule whose conditions all hold produces the recommendation
// 5. If the walk ends without a match, NO_RULE_MATCHED carries the fact
//
// A structural disagreement between fact and rule (missing field,
// non-numeric value under an ordering comparator) is INVALID_FACT, not
// a non-match.
func (e *Engine) Evaluate(ruleSetID string, fact advice.Fact) (*advice.Recommendation, error) {
	set, ok := e.sets[ruleSetID]
	if !ok {
		return nil, NewUnknownRuleSetError(ruleSetID, e.RuleSetIDs())
	}

	if fact == nil {
		return nil, NewInvalidFactError(ruleSetID, nil, "fact is nil")
	}
	if err := fact.Validate(); err != nil {
		return nil, NewInvalidFactError(ruleSetID, fact, err.Error())
	}

	fields := fact.Fields()

	for _, rule := range set.Rules {
		matched, err := matchRule(fields, rule)
		if err != nil {
			return nil, NewInvalidFactError(ruleSetID, fact, err.Error())
		}
		if !matched {
			continue
		}

		slog.Debug("rule matched",
			"rule_set", set.ID,
			"rule", rule.ID,
			"order", rule.Order,
			"outcome", rule.Outcome,
		)

		rec := &advice.Recommendation{
			RuleSetID: set.ID,
			RuleID:    rule.ID,
			Order:     rule.Order,
			Summary:   rule.Summary,
			Outcome:   rule.Outcome,
			Rationale: append([]string(nil), rule.Rationale...),
		}
		return rec, nil
	}

	slog.Debug("no rule matched", "rule_set", set.ID, "fact", fields.String())
	return nil, NewNoRuleMatchedError(ruleSetID, fields)
}

// RuleSetIDs returns the loaded rule set ids in registration order.
func (e *Engine) RuleSetIDs() []string {
	ids := make([]string, len(e.ids))
	copy(ids, e.ids)
	return ids
}

// RuleSets returns copies of the loaded rule sets in registration order.
// Callers get their own rule slices; mutating them cannot reach the engine.
func (e *Engine) RuleSets() []advice.RuleSet {
	out := make([]advice.RuleSet, 0, len(e.ids))
	for _, id := range e.ids {
		set := *e.sets[id]
		set.Rules = append([]advice.Rule(nil), set.Rules...)
		out = append(out, set)
	}
	return out
}

// RuleSet returns a copy of one rule set by id.
func (e *Engine) RuleSet(id string) (advice.RuleSet, bool) {
	set, ok := e.sets[id]
	if !ok {
		return advice.RuleSet{}, false
	}
	out := *set
	out.Rules = append([]advice.Rule(nil), set.Rules...)
	return out, true
}
