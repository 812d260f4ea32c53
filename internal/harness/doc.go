// Package harness provides conformance testing for advisory behavior.
//
// The harness loads YAML scenario files, answers each request with a
// freshly built advisor, and compares the resulting report against
// expectations and golden files.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	report_id: fixed-id-for-goldens
//	requests:
//	  - construct:
//	      recursive: true
//	      cardinality: SET
//	    expect:
//	      outcome: CTE
//	      rule: recursion-needs-cte
//	  - fragmentation:
//	      percent: 42.0
//	    expect:
//	      outcome: REBUILD
//	  - upsert:
//	      branches: 5
//	      rows: LARGE
//	    expect:
//	      outcome: UPDATE_THEN_INSERT
//	  - capability:
//	      name: Query Store
//	      environment: MANAGED_INSTANCE
//	    expect:
//	      outcome: FULL
//	      note: "always enabled"
//
// Each request names exactly one advisory question. An expect clause with
// an error field pins a failure code instead of an answer:
//
//	- capability:
//	    name: Quantum Teleport
//	    environment: ON_PREM
//	  expect:
//	    error: UNKNOWN_CAPABILITY
//
// # Deterministic Testing
//
// All scenarios execute with fixed report ids and a per-run sequence
// counter, so the same scenario file always renders the same report.
// Rule evaluation itself is deterministic (ordered first-match), which
// makes reports safe for golden file comparison.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/bands.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
//
// Or pin the report with a golden file inside a test:
//
//	harness.RunWithGolden(t, scenario)
package harness
