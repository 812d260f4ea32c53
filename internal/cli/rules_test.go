package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listingEnvelope mirrors CLIResponse with a pack listing payload.
type listingEnvelope struct {
	Status string      `json:"status"`
	Data   PackListing `json:"data"`
	Error  *CLIError   `json:"error"`
}

func TestRulesTextOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "✓ Loaded 3 rule set(s), 13 rule(s), 42 capability row(s) from embedded")
	assert.Contains(t, output, "construct-selection:")
	assert.Contains(t, output, "fragmentation-action:")
	assert.Contains(t, output, "merge-vs-split:")
	assert.Contains(t, output, "recursion-needs-cte")
	assert.Contains(t, output, "heavy-rebuild")
	assert.Contains(t, output, "default-merge")
	assert.Contains(t, output, "capability matrix: 14 capabilities, 42 row(s)")
}

func TestRulesListsEvaluationOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	var resp listingEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "embedded", resp.Data.Source)
	assert.Equal(t, 4, resp.Data.FileCount)
	require.Len(t, resp.Data.RuleSets, 3)
	assert.Len(t, resp.Data.Capabilities, 42)

	for _, rs := range resp.Data.RuleSets {
		require.NotEmpty(t, rs.Rules, "rule set %s has no rules", rs.ID)
		prev := 0
		for _, rule := range rs.Rules {
			assert.Greater(t, rule.Order, prev,
				"rule %s out of order in set %s", rule.ID, rs.ID)
			prev = rule.Order
		}
	}
}

func TestRulesConditionsRenderWithValues(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	// Thresholds must survive the trip into JSON, or the listing is
	// useless for reviewing band boundaries.
	assert.Contains(t, buf.String(), `"field":"fragmentation_percent"`)
	assert.Contains(t, buf.String(), `"value":"30"`)
}

func TestRulesOutputToFile(t *testing.T) {
	tmpDir := t.TempDir()
	outputFile := filepath.Join(tmpDir, "pack.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--output", outputFile})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Wrote compiled pack to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var listing PackListing
	require.NoError(t, json.Unmarshal(data, &listing))
	assert.Equal(t, "embedded", listing.Source)
	assert.Len(t, listing.RuleSets, 3)
	assert.Len(t, listing.Capabilities, 42)
}

func TestRulesOutputToUnwritablePath(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--output", "/no/such/dir/pack.json"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E007]")
}

func TestRulesFromDirectoryOverride(t *testing.T) {
	dir := writePackDir(t, onPremOnlyPack)
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", RulesDir: dir}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "0 rule set(s)")
	assert.Contains(t, output, "capability matrix: 1 capabilities, 1 row(s)")
}

func TestRulesCountsDistinctCapabilities(t *testing.T) {
	// Two spellings of one name must count as a single capability.
	dir := writePackDir(t, `
package custom

capability: [{
	name:         "Query Store"
	environment:  "on-prem"
	availability: "full"
}, {
	name:         "query  store"
	environment:  "azure-iaas"
	availability: "full"
}]
`)
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", RulesDir: dir}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "capability matrix: 1 capabilities, 2 row(s)")
}
