// Package engine implements the deterministic advisory rule engine.
//
// The engine is the heart of sqlsage - it takes a compiled rule set and a
// fact describing a SQL Server question, walks the rules in order, and
// returns the recommendation of the first rule whose predicate holds.
//
// ARCHITECTURE:
//
// First-Match Evaluation:
// Rules carry explicit integer orders and are sorted once at construction.
// Evaluation walks that order and stops at the first match. This ensures:
// - The same fact always yields the same rule, outcome, and rationale
// - Rule precedence is visible in the rule source, not in engine code
// - Adding a rule never changes answers for facts it does not match first
//
// Evaluation Flow:
// 1. Resolve the rule set by id
// 2. The fact validates itself (range and domain checks)
// 3. Each rule's conditions are tested against the fact's field map
// 4. First full match wins; its outcome and rationale are returned verbatim
// 5. No match is an explicit NO_RULE_MATCHED error, never a default answer
//
// The engine is designed for correctness and determinism, not throughput.
// Callers may evaluate from many goroutines concurrently, but the engine's
// state is immutable after construction: reload means build-and-swap,
// never mutate-in-place.
//
// CRITICAL PATTERNS:
//
// Pure Evaluation:
// Evaluate reads nothing but its arguments and the immutable rule sets.
// NEVER consult wall-clock time, environment, or external state.
//
// Deterministic Ordering:
// Rules are evaluated in ascending declared order.
// Duplicate orders are rejected at load, not broken by file position.
// No randomness, no map-iteration dependence, no non-determinism.
package engine
