package matrix

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sqlsage/sqlsage/internal/advice"
)

// LookupError represents a failed capability resolution or a capability
// data error detected while building the matrix.
//
// Lookup errors include:
//   - Unknown capability: no environment carries a row for the name
//   - Unknown environment: the name is tracked, but not for that environment
//   - Duplicate entry: two source rows share a (name, environment) cell
type LookupError struct {
	// Code identifies the error category.
	Code LookupErrorCode

	// Message is a human-readable description.
	Message string

	// Name is the capability name involved. For resolution failures on a
	// tracked name this is the curated spelling, not the caller's.
	Name string

	// Environment is the environment involved, when one applies.
	Environment advice.Environment

	// Details contains additional context.
	Details map[string]string
}

// LookupErrorCode categorizes capability lookup errors.
type LookupErrorCode string

const (
	// ErrCodeUnknownCapability indicates the matrix tracks no row for the name.
	ErrCodeUnknownCapability LookupErrorCode = "UNKNOWN_CAPABILITY"

	// ErrCodeUnknownEnvironment indicates a tracked name with no row for the
	// requested environment.
	ErrCodeUnknownEnvironment LookupErrorCode = "UNKNOWN_ENVIRONMENT"

	// ErrCodeDuplicateEntry indicates two source rows share one cell.
	ErrCodeDuplicateEntry LookupErrorCode = "DUPLICATE_CAPABILITY_ENTRY"
)

// Error implements the error interface.
func (e *LookupError) Error() string {
	if e.Name != "" && e.Environment != "" {
		return fmt.Sprintf("%s: %s (capability=%q, environment=%s)", e.Code, e.Message, e.Name, e.Environment)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (capability=%q)", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnknownCapabilityError returns true if the error reports an untracked name.
// Uses errors.As to handle wrapped errors.
func IsUnknownCapabilityError(err error) bool {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Code == ErrCodeUnknownCapability
	}
	return false
}

// IsUnknownEnvironmentError returns true if the error reports a coverage gap
// for a tracked name. Uses errors.As to handle wrapped errors.
func IsUnknownEnvironmentError(err error) bool {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Code == ErrCodeUnknownEnvironment
	}
	return false
}

// IsDuplicateEntryError returns true if the error reports two rows sharing a
// cell. Uses errors.As to handle wrapped errors.
func IsDuplicateEntryError(err error) bool {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Code == ErrCodeDuplicateEntry
	}
	return false
}

// NewUnknownCapabilityError creates a LookupError for a name the matrix does
// not track in any environment.
func NewUnknownCapabilityError(name string, tracked int) *LookupError {
	return &LookupError{
		Code:    ErrCodeUnknownCapability,
		Message: fmt.Sprintf("the capability matrix tracks no capability named %q", name),
		Name:    name,
		Details: map[string]string{
			"tracked_capabilities": strconv.Itoa(tracked),
		},
	}
}

// NewUnknownEnvironmentError creates a LookupError for a tracked name with no
// row for the requested environment.
func NewUnknownEnvironmentError(name string, env advice.Environment, covered []advice.Environment) *LookupError {
	names := make([]string, len(covered))
	for i, e := range covered {
		names[i] = string(e)
	}
	return &LookupError{
		Code:        ErrCodeUnknownEnvironment,
		Message:     fmt.Sprintf("capability %q has no row for environment %s", name, env),
		Name:        name,
		Environment: env,
		Details: map[string]string{
			"covered": strings.Join(names, ", "),
		},
	}
}

// NewDuplicateEntryError creates a LookupError for two source rows landing on
// the same (normalized name, environment) cell.
func NewDuplicateEntryError(row, prior advice.CapabilityRow) *LookupError {
	return &LookupError{
		Code:        ErrCodeDuplicateEntry,
		Message:     fmt.Sprintf("capability %q declared twice for environment %s", row.Name, row.Environment),
		Name:        row.Name,
		Environment: row.Environment,
		Details: map[string]string{
			"first_declared_as": prior.Name,
		},
	}
}
