package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/sqlsage/sqlsage/internal/advice"
)

// CompileCapabilities parses a CUE list of capability matrix rows.
//
// The CUE value is the list itself:
//
//	v := ctx.CompileString(`capability: [ ... ]`)
//	rows, err := CompileCapabilities(v.LookupPath(cue.ParsePath("capability")))
//
// Environment and availability tokens are parsed leniently (case and
// -/_ separators fold); a token outside the known domain is a compile
// error here, not an UNKNOWN_ENVIRONMENT at resolve time. Duplicate
// (name, environment) pairs are left to Validate and matrix.New.
func CompileCapabilities(v cue.Value) ([]advice.CapabilityRow, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var rows []advice.CapabilityRow
	for idx := 0; iter.Next(); idx++ {
		row, rowErr := parseCapabilityRow(iter.Value(), idx)
		if rowErr != nil {
			return nil, rowErr
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, &CompileError{
			Field:   "capability",
			Message: "at least one capability row is required",
			Pos:     v.Pos(),
		}
	}

	return rows, nil
}

// parseCapabilityRow parses a single matrix row.
func parseCapabilityRow(v cue.Value, idx int) (advice.CapabilityRow, error) {
	var row advice.CapabilityRow
	fieldPath := fmt.Sprintf("capability[%d]", idx)

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return row, &CompileError{
			Field:   fieldPath + ".name",
			Message: "capability name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return row, formatCUEError(err)
	}
	row.Name = name

	envVal := v.LookupPath(cue.ParsePath("environment"))
	if !envVal.Exists() {
		return row, &CompileError{
			Field:   fieldPath + ".environment",
			Message: "capability environment is required",
			Pos:     v.Pos(),
		}
	}
	envStr, err := envVal.String()
	if err != nil {
		return row, formatCUEError(err)
	}
	env, err := advice.ParseEnvironment(envStr)
	if err != nil {
		return row, &CompileError{
			Field:   fieldPath + ".environment",
			Message: err.Error(),
			Pos:     envVal.Pos(),
		}
	}
	row.Environment = env

	availVal := v.LookupPath(cue.ParsePath("availability"))
	if !availVal.Exists() {
		return row, &CompileError{
			Field:   fieldPath + ".availability",
			Message: "capability availability is required",
			Pos:     v.Pos(),
		}
	}
	availStr, err := availVal.String()
	if err != nil {
		return row, formatCUEError(err)
	}
	avail, err := advice.ParseAvailability(availStr)
	if err != nil {
		return row, &CompileError{
			Field:   fieldPath + ".availability",
			Message: err.Error(),
			Pos:     availVal.Pos(),
		}
	}
	row.Availability = avail

	// note is optional and defaults to empty.
	noteVal := v.LookupPath(cue.ParsePath("note"))
	if noteVal.Exists() {
		note, noteErr := noteVal.String()
		if noteErr != nil {
			return row, formatCUEError(noteErr)
		}
		row.ConstraintNote = note
	}

	return row, nil
}
