// Package rulepack loads advisory rule packs: the CUE source holding the
// ordered rule sets and the capability matrix.
//
// The built-in pack ships inside the binary via go:embed, so the CLI works
// with no files on disk. A directory of CUE files can replace it wholesale;
// there is no per-file merging between the embedded pack and an override.
//
// Loading is compile-then-validate. CUE syntax and shape problems surface
// as compile errors with source positions; semantic problems (duplicate
// orders, outcomes outside a rule set's domain, duplicate matrix cells)
// surface as validation errors. Either kind makes the pack unusable, so
// callers treat a non-empty error list as fatal rather than serving advice
// from a half-checked pack.
package rulepack
