package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlsage/sqlsage/internal/advice"
)

func TestCompileCapabilitiesBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		capability: [{
			name:         "Query Store"
			environment:  "MANAGED_INSTANCE"
			availability: "FULL"
			note:         "Always enabled and cannot be switched off."
		}, {
			name:         "Operating System Access"
			environment:  "MANAGED_INSTANCE"
			availability: "NOT_AVAILABLE"
		}]
	`)

	require.NoError(t, v.Err())
	rows, err := CompileCapabilities(v.LookupPath(cue.ParsePath("capability")))
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "Query Store", rows[0].Name)
	assert.Equal(t, advice.EnvManagedInstance, rows[0].Environment)
	assert.Equal(t, advice.AvailabilityFull, rows[0].Availability)
	assert.Equal(t, "Always enabled and cannot be switched off.", rows[0].ConstraintNote)

	// note is optional and defaults to empty.
	assert.Equal(t, advice.AvailabilityNotAvailable, rows[1].Availability)
	assert.Empty(t, rows[1].ConstraintNote)
}

func TestCompileCapabilitiesLenientTokens(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		capability: [{
			name:         "SQL Server Agent"
			environment:  "managed-instance"
			availability: "Partial"
			note:         "T-SQL job steps only."
		}]
	`)

	require.NoError(t, v.Err())
	rows, err := CompileCapabilities(v.LookupPath(cue.ParsePath("capability")))
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, advice.EnvManagedInstance, rows[0].Environment)
	assert.Equal(t, advice.AvailabilityPartial, rows[0].Availability)
}

func TestCompileCapabilitiesUnknownEnvironment(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		capability: [{
			name:         "Elastic Pools"
			environment:  "AZURE_PAAS"
			availability: "FULL"
		}]
	`)

	require.NoError(t, v.Err())
	_, err := CompileCapabilities(v.LookupPath(cue.ParsePath("capability")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown environment")
	assert.Contains(t, err.Error(), "AZURE_PAAS")
}

func TestCompileCapabilitiesMissingName(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		capability: [{
			environment:  "ON_PREM"
			availability: "FULL"
		}]
	`)

	require.NoError(t, v.Err())
	_, err := CompileCapabilities(v.LookupPath(cue.ParsePath("capability")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "required")
}

func TestCompileCapabilitiesEmptyList(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`capability: []`)

	require.NoError(t, v.Err())
	_, err := CompileCapabilities(v.LookupPath(cue.ParsePath("capability")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one capability row")
}
