package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// ReportSnapshot captures the complete report for a scenario execution.
// Field order is fixed and map keys marshal sorted, so serialization is
// deterministic.
type ReportSnapshot struct {
	ScenarioName string        `json:"scenario_name"`
	ReportID     string        `json:"report_id"`
	Source       string        `json:"source"`
	Report       []ReportEntry `json:"report"`
}

// RunWithGolden executes a scenario and compares the report against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files serve as the source of truth for expected advisory
// answers; any drift in rule evaluation or report rendering shows up as
// a diff here.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-executed result's report against the
// golden file named after the scenario. Useful when the test needs to
// inspect the result before snapshotting it.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := ReportSnapshot{
		ScenarioName: scenarioName,
		ReportID:     result.ReportID,
		Source:       result.Source,
		Report:       result.Report,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
