package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios pin advisory behavior by asking a sequence of questions and
// asserting on each answer and on the rendered report.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rules optionally points at a rule pack directory. Empty means the
	// embedded pack. A directory replaces the embedded pack wholesale.
	Rules string `yaml:"rules,omitempty"`

	// ReportID is an optional fixed report id for deterministic golden
	// comparison. If empty, "test-report-default" is used.
	ReportID string `yaml:"report_id,omitempty"`

	// Requests contains the advisory questions with expected answers.
	Requests []RequestStep `yaml:"requests"`
}

// RequestStep is one advisory question. Exactly one of the request
// fields must be set; Expect optionally pins the answer.
type RequestStep struct {
	Construct     *ConstructRequest     `yaml:"construct,omitempty"`
	Fragmentation *FragmentationRequest `yaml:"fragmentation,omitempty"`
	Upsert        *UpsertRequest        `yaml:"upsert,omitempty"`
	Capability    *CapabilityRequest    `yaml:"capability,omitempty"`

	// Expect specifies the expected answer. If nil, the step only has to
	// produce a report entry; errors are recorded but not judged.
	Expect *Expect `yaml:"expect,omitempty"`
}

// ConstructRequest declares a query shape for construct selection.
type ConstructRequest struct {
	Recursive   bool   `yaml:"recursive,omitempty"`
	Correlated  bool   `yaml:"correlated,omitempty"`
	TVF         bool   `yaml:"tvf,omitempty"`
	Optional    bool   `yaml:"optional,omitempty"`
	Reuse       int    `yaml:"reuse,omitempty"`
	Cardinality string `yaml:"cardinality"`
}

// FragmentationRequest carries a measured fragmentation percentage.
type FragmentationRequest struct {
	Percent float64 `yaml:"percent"`
}

// UpsertRequest describes an upsert for the merge-vs-split decision.
type UpsertRequest struct {
	Branches int    `yaml:"branches,omitempty"`
	Audit    bool   `yaml:"audit,omitempty"`
	Rows     string `yaml:"rows,omitempty"`
}

// CapabilityRequest asks for a capability's availability in an
// environment.
type CapabilityRequest struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
}

// Expect specifies the expected answer for one request.
type Expect struct {
	// Outcome is the expected advisory outcome: a construct name, a
	// maintenance action, an upsert strategy, or an availability.
	Outcome string `yaml:"outcome,omitempty"`

	// Rule is the expected matched rule id. Capability lookups have no
	// rule; leaving it empty skips the check.
	Rule string `yaml:"rule,omitempty"`

	// Note is the expected capability constraint note.
	Note string `yaml:"note,omitempty"`

	// Error is the expected error code (for example NO_RULE_MATCHED or
	// UNKNOWN_CAPABILITY). When set, the step must fail with that code
	// and the other fields are ignored.
	Error string `yaml:"error,omitempty"`
}

// Request kind constants, used in report entries.
const (
	KindConstruct     = "construct"
	KindFragmentation = "fragmentation"
	KindUpsert        = "upsert"
	KindCapability    = "capability"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "request:" vs "requests:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Requests) == 0 {
		return fmt.Errorf("requests list is required and must be non-empty")
	}

	if s.Rules != "" {
		if _, err := os.Stat(s.Rules); os.IsNotExist(err) {
			return fmt.Errorf("rules directory not found: %s", s.Rules)
		}
	}

	for i, step := range s.Requests {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that a step asks exactly one question and that its
// expect clause is coherent.
func validateStep(index int, step *RequestStep) error {
	kinds := 0
	if step.Construct != nil {
		kinds++
	}
	if step.Fragmentation != nil {
		kinds++
	}
	if step.Upsert != nil {
		kinds++
	}
	if step.Capability != nil {
		kinds++
	}

	if kinds == 0 {
		return fmt.Errorf("requests[%d]: one of construct, fragmentation, upsert, capability is required", index)
	}
	if kinds > 1 {
		return fmt.Errorf("requests[%d]: only one request kind is allowed per step", index)
	}

	if step.Construct != nil && step.Construct.Cardinality == "" {
		return fmt.Errorf("requests[%d].construct: cardinality is required", index)
	}

	if step.Capability != nil {
		if step.Capability.Name == "" {
			return fmt.Errorf("requests[%d].capability: name is required", index)
		}
		if step.Capability.Environment == "" {
			return fmt.Errorf("requests[%d].capability: environment is required", index)
		}
	}

	if step.Expect != nil {
		if step.Expect.Error != "" && step.Expect.Outcome != "" {
			return fmt.Errorf("requests[%d].expect: error and outcome are mutually exclusive", index)
		}
		if step.Expect.Error == "" && step.Expect.Outcome == "" && step.Expect.Rule == "" && step.Expect.Note == "" {
			return fmt.Errorf("requests[%d].expect: at least one of outcome, rule, note, error is required", index)
		}
	}

	return nil
}
