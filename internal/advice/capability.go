package advice

import "fmt"

// Environment is a SQL Server deployment environment. Three fixed values;
// the matrix carries one row per (capability, environment) pair.
type Environment string

const (
	EnvOnPrem          Environment = "ON_PREM"
	EnvAzureIaaS       Environment = "AZURE_IAAS"
	EnvManagedInstance Environment = "MANAGED_INSTANCE"
)

// Environments lists the three deployment environments in matrix order.
var Environments = []Environment{EnvOnPrem, EnvAzureIaaS, EnvManagedInstance}

// ParseEnvironment folds case and treats - and _ interchangeably, so
// "managed-instance", "MANAGED_INSTANCE", and "Managed_Instance" all parse.
// A string outside the three-value enum is a caller error, distinct from
// the UNKNOWN_ENVIRONMENT data gap the resolver reports for a missing pair.
func ParseEnvironment(s string) (Environment, error) {
	switch canonicalToken(s) {
	case string(EnvOnPrem):
		return EnvOnPrem, nil
	case string(EnvAzureIaaS):
		return EnvAzureIaaS, nil
	case string(EnvManagedInstance):
		return EnvManagedInstance, nil
	default:
		return "", fmt.Errorf("unknown environment %q: must be one of ON_PREM, AZURE_IAAS, MANAGED_INSTANCE", s)
	}
}

// Availability is how completely an environment supports a capability.
type Availability string

const (
	AvailabilityFull              Availability = "FULL"
	AvailabilityPartial           Availability = "PARTIAL"
	AvailabilityNotAvailable      Availability = "NOT_AVAILABLE"
	AvailabilityManagedExternally Availability = "MANAGED_EXTERNALLY"
)

// Availabilities lists every availability status.
var Availabilities = []Availability{
	AvailabilityFull,
	AvailabilityPartial,
	AvailabilityNotAvailable,
	AvailabilityManagedExternally,
}

// ParseAvailability folds case and - / _ like ParseEnvironment.
func ParseAvailability(s string) (Availability, error) {
	switch canonicalToken(s) {
	case string(AvailabilityFull):
		return AvailabilityFull, nil
	case string(AvailabilityPartial):
		return AvailabilityPartial, nil
	case string(AvailabilityNotAvailable):
		return AvailabilityNotAvailable, nil
	case string(AvailabilityManagedExternally):
		return AvailabilityManagedExternally, nil
	default:
		return "", fmt.Errorf("unknown availability %q: must be one of FULL, PARTIAL, NOT_AVAILABLE, MANAGED_EXTERNALLY", s)
	}
}

// CapabilityStatus is the resolver's answer for one (name, environment)
// pair: the availability plus an optional constraint note ("COPY_ONLY
// backups only"). ConstraintNote is empty when the row carries none.
type CapabilityStatus struct {
	Name           string       `json:"name"`
	Environment    Environment  `json:"environment"`
	Availability   Availability `json:"availability"`
	ConstraintNote string       `json:"constraint_note,omitempty"`
}

// CapabilityRow is one compiled row of the capability matrix source.
type CapabilityRow struct {
	Name           string       `json:"name"`
	Environment    Environment  `json:"environment"`
	Availability   Availability `json:"availability"`
	ConstraintNote string       `json:"constraint_note,omitempty"`
}

// Status converts a row to the resolver's answer shape.
func (r CapabilityRow) Status() CapabilityStatus {
	return CapabilityStatus{
		Name:           r.Name,
		Environment:    r.Environment,
		Availability:   r.Availability,
		ConstraintNote: r.ConstraintNote,
	}
}
