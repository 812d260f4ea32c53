package harness

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runGoldenScenario loads a checked-in scenario and pins its report.
// Regenerate fixtures with: go test ./internal/harness -update
func runGoldenScenario(t *testing.T, file string) {
	t.Helper()

	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", file))
	require.NoError(t, err)

	require.NoError(t, RunWithGolden(t, scenario))
}

func TestRunWithGolden_ConstructSelection(t *testing.T) {
	runGoldenScenario(t, "construct_selection.yaml")
}

func TestRunWithGolden_FragmentationBands(t *testing.T) {
	runGoldenScenario(t, "fragmentation_bands.yaml")
}

func TestRunWithGolden_CapabilityAndUpsert(t *testing.T) {
	runGoldenScenario(t, "capability_and_upsert.yaml")
}

func TestAssertGolden_FromResult(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "fragmentation_bands.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.NoError(t, AssertGolden(t, scenario.Name, result))
}

func TestReportSnapshotDeterminism(t *testing.T) {
	// Two runs of the same scenario must render identical JSON.
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "capability_and_upsert.yaml"))
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	snapshotJSON := func(result *Result) string {
		snapshot := ReportSnapshot{
			ScenarioName: scenario.Name,
			ReportID:     result.ReportID,
			Source:       result.Source,
			Report:       result.Report,
		}
		data, err := json.MarshalIndent(snapshot, "", "  ")
		require.NoError(t, err)
		return string(data)
	}

	assert.Equal(t, snapshotJSON(first), snapshotJSON(second))
}

func TestReportSnapshotJSON(t *testing.T) {
	snapshot := ReportSnapshot{
		ScenarioName: "shape_check",
		ReportID:     "report-1",
		Source:       "embedded",
		Report: []ReportEntry{
			{
				Seq:     1,
				Kind:    KindCapability,
				Request: map[string]string{"name": "Query Store", "environment": "ON_PREM"},
				Outcome: "FULL",
			},
		},
	}

	data, err := json.Marshal(snapshot)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `"scenario_name":"shape_check"`)
	assert.Contains(t, text, `"report_id":"report-1"`)
	assert.Contains(t, text, `"source":"embedded"`)
	assert.Contains(t, text, `"outcome":"FULL"`)
	// Empty optional fields stay out of the payload.
	assert.NotContains(t, text, "rule_id")
	assert.NotContains(t, text, "error")
}
