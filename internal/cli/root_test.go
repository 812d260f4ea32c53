package cli

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Keep advisor load logs out of test output; commands that enable
	// verbose mode re-point the logger themselves.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "sqlsage", cmd.Use)
	assert.Contains(t, cmd.Long, "advisor")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"construct", "fragmentation", "upsert", "capability", "rules", "validate"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	rulesFlag := cmd.PersistentFlags().Lookup("rules")
	require.NotNil(t, rulesFlag)
	assert.Equal(t, "", rulesFlag.DefValue)
}

func TestConstructCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	constructCmd, _, err := cmd.Find([]string{"construct"})
	require.NoError(t, err)

	for _, name := range []string{"recursive", "correlated", "tvf", "optional"} {
		flag := constructCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "flag %s should exist", name)
		assert.Equal(t, "false", flag.DefValue)
	}

	reuseFlag := constructCmd.Flags().Lookup("reuse")
	require.NotNil(t, reuseFlag)
	assert.Equal(t, "0", reuseFlag.DefValue)

	cardinalityFlag := constructCmd.Flags().Lookup("cardinality")
	require.NotNil(t, cardinalityFlag)
	// --cardinality is required, so default is empty
	assert.Equal(t, "", cardinalityFlag.DefValue)
}

func TestUpsertCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	upsertCmd, _, err := cmd.Find([]string{"upsert"})
	require.NoError(t, err)

	branchesFlag := upsertCmd.Flags().Lookup("branches")
	require.NotNil(t, branchesFlag)
	assert.Equal(t, "0", branchesFlag.DefValue)

	auditFlag := upsertCmd.Flags().Lookup("audit")
	require.NotNil(t, auditFlag)
	assert.Equal(t, "false", auditFlag.DefValue)

	rowsFlag := upsertCmd.Flags().Lookup("rows")
	require.NotNil(t, rowsFlag)
	assert.Equal(t, "small", rowsFlag.DefValue)
}

func TestCapabilityCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	capCmd, _, err := cmd.Find([]string{"capability"})
	require.NoError(t, err)

	envFlag := capCmd.Flags().Lookup("env")
	require.NotNil(t, envFlag)
	// --env is required, so default is empty
	assert.Equal(t, "", envFlag.DefValue)
}

func TestRulesCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	rulesCmd, _, err := cmd.Find([]string{"rules"})
	require.NoError(t, err)

	outputFlag := rulesCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestCommandHelp(t *testing.T) {
	cmd := NewRootCommand()

	// Verify help text contains key elements
	assert.Contains(t, cmd.Short, "SQL Server")
	assert.Contains(t, cmd.Long, "deterministic")
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--format", "invalid", "rules"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRequestIDFallsBackToUUID(t *testing.T) {
	opts := &RootOptions{}
	id := opts.RequestID()
	assert.Len(t, id, 36)

	second := opts.RequestID()
	assert.NotEqual(t, id, second)
}

func TestRequestIDUsesInjectedGenerator(t *testing.T) {
	opts := &RootOptions{IDs: NewFixedGenerator("req-1", "req-2")}
	assert.Equal(t, "req-1", opts.RequestID())
	assert.Equal(t, "req-2", opts.RequestID())
}
