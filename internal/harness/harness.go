package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sqlsage/sqlsage/internal/advice"
	"github.com/sqlsage/sqlsage/internal/advisor"
	"github.com/sqlsage/sqlsage/internal/engine"
	"github.com/sqlsage/sqlsage/internal/matrix"
	"github.com/sqlsage/sqlsage/internal/rulepack"
	"github.com/sqlsage/sqlsage/internal/testutil"
)

// IDGenerator mints report ids. testutil.FixedReportGenerator implements
// it for deterministic golden comparison.
type IDGenerator interface {
	Generate() string
}

// Harness executes a scenario's requests against a loaded advisor.
// Each scenario runs against a freshly built snapshot for isolation.
type Harness struct {
	advisor *advisor.Advisor
	seq     *testutil.Sequence
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// The report id comes from the scenario (or the deterministic default),
// so the same scenario file always renders the same report.
//
// Execution flow:
// 1. Load the rule pack the scenario names (embedded when unset)
// 2. Build a fresh advisor snapshot
// 3. Execute each request in order, numbering report entries
// 4. Check expect clauses and collect mismatches
func Run(scenario *Scenario) (*Result, error) {
	return RunWithIDs(scenario, testutil.NewFixedReportGenerator(scenario.ReportID))
}

// RunWithIDs executes a scenario with report ids minted by gen. A nil
// generator falls back to UUIDv7 ids; golden-compared runs want a fixed
// generator instead.
func RunWithIDs(scenario *Scenario, gen IDGenerator) (*Result, error) {
	var pack *rulepack.Pack
	var errs []error
	if scenario.Rules != "" {
		pack, errs = rulepack.LoadDir(scenario.Rules, rulepack.ModeFailFast)
	} else {
		pack, errs = rulepack.LoadEmbedded(rulepack.ModeFailFast)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load rule pack: %w", errs[0])
	}

	adv, err := advisor.FromPack(pack)
	if err != nil {
		return nil, fmt.Errorf("failed to build advisor: %w", err)
	}

	var reportID string
	if gen != nil {
		reportID = gen.Generate()
	} else {
		reportID = uuid.Must(uuid.NewV7()).String()
	}

	h := &Harness{
		advisor: adv,
		seq:     testutil.NewSequence(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	result := NewResult(reportID, pack.Source)
	for i, step := range scenario.Requests {
		entry := h.executeStep(step)
		entry.Seq = h.seq.Next()
		result.AddEntry(entry)

		h.logger.Info("request answered",
			"seq", entry.Seq,
			"kind", entry.Kind,
			"outcome", entry.Outcome,
			"error", entry.Error,
		)

		for _, msg := range checkExpect(i, step.Expect, entry) {
			result.AddError(msg)
		}
	}

	return result, nil
}

// executeStep answers one request. Scenario validation guarantees exactly
// one request field is set.
func (h *Harness) executeStep(step RequestStep) ReportEntry {
	switch {
	case step.Construct != nil:
		return h.executeConstruct(*step.Construct)
	case step.Fragmentation != nil:
		return h.executeFragmentation(*step.Fragmentation)
	case step.Upsert != nil:
		return h.executeUpsert(*step.Upsert)
	default:
		return h.executeCapability(*step.Capability)
	}
}

func (h *Harness) executeConstruct(req ConstructRequest) ReportEntry {
	fact := advice.QueryShapeFact{
		NeedsRecursion:             req.Recursive,
		IsCorrelated:               req.Correlated,
		InvokesTableValuedFunction: req.TVF,
		OptionalRelation:           req.Optional,
		ReuseCount:                 req.Reuse,
		ResultCardinality:          advice.Cardinality(req.Cardinality),
	}

	entry := ReportEntry{Kind: KindConstruct, Request: renderFields(fact.Fields())}

	cardinality, err := advice.ParseCardinality(req.Cardinality)
	if err != nil {
		entry.Error = string(engine.ErrCodeInvalidFact)
		return entry
	}
	fact.ResultCardinality = cardinality
	entry.Request = renderFields(fact.Fields())

	rec, err := h.advisor.SelectConstruct(fact)
	if err != nil {
		entry.Error = errorCode(err)
		return entry
	}

	entry.Outcome = string(rec.Construct)
	entry.RuleID = rec.RuleID
	entry.Rationale = rec.Rationale
	return entry
}

func (h *Harness) executeFragmentation(req FragmentationRequest) ReportEntry {
	fact := advice.FragmentationFact{FragmentationPercent: req.Percent}
	entry := ReportEntry{Kind: KindFragmentation, Request: renderFields(fact.Fields())}

	rec, err := h.advisor.AdviseFragmentation(fact)
	if err != nil {
		entry.Error = errorCode(err)
		return entry
	}

	entry.Outcome = string(rec.Action)
	entry.RuleID = rec.RuleID
	entry.Rationale = rec.Rationale
	return entry
}

func (h *Harness) executeUpsert(req UpsertRequest) ReportEntry {
	rows := req.Rows
	if rows == "" {
		rows = "small"
	}

	fact := advice.MergeDecisionFact{
		ConditionalBranchCount: req.Branches,
		NeedsRowLevelAudit:     req.Audit,
		EstimatedRowCount:      advice.RowCountHint(rows),
	}

	entry := ReportEntry{Kind: KindUpsert, Request: renderFields(fact.Fields())}

	hint, err := advice.ParseRowCountHint(rows)
	if err != nil {
		entry.Error = string(engine.ErrCodeInvalidFact)
		return entry
	}
	fact.EstimatedRowCount = hint
	entry.Request = renderFields(fact.Fields())

	rec, err := h.advisor.ChooseUpsertStrategy(fact)
	if err != nil {
		entry.Error = errorCode(err)
		return entry
	}

	entry.Outcome = string(rec.Strategy)
	entry.RuleID = rec.RuleID
	entry.Rationale = rec.Rationale
	return entry
}

func (h *Harness) executeCapability(req CapabilityRequest) ReportEntry {
	entry := ReportEntry{
		Kind: KindCapability,
		Request: map[string]string{
			"name":        req.Name,
			"environment": req.Environment,
		},
	}

	env, err := advice.ParseEnvironment(req.Environment)
	if err != nil {
		entry.Error = string(engine.ErrCodeInvalidFact)
		return entry
	}
	entry.Request["environment"] = string(env)

	status, err := h.advisor.ResolveCapability(req.Name, env)
	if err != nil {
		entry.Error = errorCode(err)
		return entry
	}

	entry.Outcome = string(status.Availability)
	entry.Note = status.ConstraintNote
	return entry
}

// renderFields renders a fact's field map the way reports show values.
func renderFields(fields advice.FieldMap) map[string]string {
	rendered := make(map[string]string, len(fields))
	for name, value := range fields {
		rendered[name] = advice.FormatValue(value)
	}
	return rendered
}

// errorCode extracts the structured code carried by evaluation and lookup
// errors. Anything untyped maps to the generic code.
func errorCode(err error) string {
	var evalErr *engine.EvalError
	if errors.As(err, &evalErr) {
		return string(evalErr.Code)
	}

	var lookupErr *matrix.LookupError
	if errors.As(err, &lookupErr) {
		return string(lookupErr.Code)
	}

	return rulepack.ErrCodeGeneric
}
