// Package advisor is the facade over the rule engine and the capability
// matrix: four typed operations, one per advisory domain.
//
// An Advisor serves from an immutable Snapshot (engine plus matrix built
// from one loaded pack). Reload builds a fresh snapshot and swaps it in
// atomically; requests already evaluating keep the snapshot they started
// with, so no request ever observes a half-loaded pack. A pack that fails
// to build leaves the current snapshot serving.
//
// Evaluation does no I/O and takes no locks; concurrent callers share the
// snapshot freely.
package advisor
