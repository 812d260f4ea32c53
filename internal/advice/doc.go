// Package advice provides the typed advisory model for sqlsage.
//
// This package contains type definitions only: facts describing a query
// shape or measurement, rule and condition rows compiled from the CUE
// source, outcome enumerations, and the capability matrix row types. All
// other internal packages import advice; advice imports nothing internal.
// This keeps the model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Facts are immutable value types; they validate their own domain and
//     render themselves to a FieldMap for rule evaluation.
//   - Rules never contain Go code. A rule is data: an ordered row with a
//     condition list (AND semantics, empty list matches everything), an
//     outcome constant, and non-empty rationale text.
//   - Every rule set has a compiled-in schema naming its fact fields and
//     outcome domain, so a rule pack can be validated before it serves.
//   - Enumerations use canonical UPPER_SNAKE spellings on the wire and in
//     rendered output; parsers fold case and accept - and _ interchangeably.
package advice
