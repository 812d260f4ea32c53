package testutil

// FixedReportGenerator generates the same report id every time.
//
// This enables deterministic scenario execution and golden snapshot
// comparison: the same scenario with the same FixedReportGenerator
// produces a byte-identical report.
//
// Thread-safety: FixedReportGenerator is stateless and safe for
// concurrent use.
type FixedReportGenerator struct {
	id string
}

// NewFixedReportGenerator creates a new fixed report id generator.
//
// The id is typically set in the scenario YAML:
//
//	report_id: "report-00000000-0000-0000-0000-000000000001"
//
// If id is empty, Generate() returns "test-report-default".
func NewFixedReportGenerator(id string) *FixedReportGenerator {
	if id == "" {
		id = "test-report-default"
	}
	return &FixedReportGenerator{id: id}
}

// Generate returns the fixed report id.
//
// Implements harness.IDGenerator.
func (g *FixedReportGenerator) Generate() string {
	return g.id
}
