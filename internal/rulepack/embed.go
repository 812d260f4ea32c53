package rulepack

import "embed"

// Files holds the CUE source of the built-in advisory pack.
//
//go:embed *.cue
var Files embed.FS

// EmbeddedSource names the built-in pack in logs, reports, and the
// Pack.Source field when no directory override is in effect.
const EmbeddedSource = "embedded"
