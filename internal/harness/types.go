package harness

// ReportEntry is one answered (or declined) request in the report.
// Exactly one entry exists per scenario step, in step order.
type ReportEntry struct {
	// Seq numbers the entry within the report, starting at 1.
	Seq int `json:"seq"`

	// Kind names the request: "construct", "fragmentation", "upsert",
	// or "capability".
	Kind string `json:"kind"`

	// Request holds the rendered request fields, the same spellings the
	// engine evaluates.
	Request map[string]string `json:"request"`

	// Outcome is the advisory answer: a construct, a maintenance action,
	// an upsert strategy, or an availability. Empty when Error is set.
	Outcome string `json:"outcome,omitempty"`

	// RuleID is the matched rule, for rule-driven kinds.
	RuleID string `json:"rule_id,omitempty"`

	// Rationale explains the answer, for rule-driven kinds.
	Rationale []string `json:"rationale,omitempty"`

	// Note is the capability constraint note, when one applies.
	Note string `json:"note,omitempty"`

	// Error is the error code when the advisor declined the request
	// (NO_RULE_MATCHED, UNKNOWN_CAPABILITY, and so on).
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if all expect clauses match.
	Pass bool `json:"pass"`

	// ReportID correlates the report with logs.
	ReportID string `json:"report_id"`

	// Source names the pack the advisor answered from.
	Source string `json:"source"`

	// Report contains one entry per request, in order.
	// Used for expect validation and golden comparison.
	Report []ReportEntry `json:"report"`

	// Errors contains expect validation messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult(reportID, source string) *Result {
	return &Result{
		Pass:     true,
		ReportID: reportID,
		Source:   source,
		Report:   []ReportEntry{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEntry appends a report entry.
func (r *Result) AddEntry(entry ReportEntry) {
	r.Report = append(r.Report, entry)
}
