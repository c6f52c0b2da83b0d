// Package harness runs YAML scenarios against the recovery service.
//
// A scenario is a list of steps, each pinned to an instant, followed by
// assertions over the step trace and the final database rows. Every run gets
// a fresh in-memory store and a sequential id generator, so the same file
// always produces the same trace and can be compared against a golden
// snapshot.
//
// # Scenario Format
//
//	name: overflow_pays_debt
//	description: "Overflow from today's session pays yesterday's debt"
//	timezone: UTC
//	steps:
//	  - at: "2026-10-15T08:00:00Z"
//	    action: create
//	    ref: breakfast
//	    args: { meal: meal-1, exercise: squat, target: 10 }
//	  - at: "2026-10-16T07:00:00Z"
//	    action: sweep
//	    expect: { unmet: 1, entries_created: 1 }
//	assertions:
//	  - type: final_state
//	    table: recovery_ledger
//	    where: { obligation_id: $breakfast }
//	    expect: { status: open, remaining_count: 10 }
//
// A step without "at" runs at the previous step's instant. "ref" names the
// obligation a step creates or acts on; "$name" in args and where clauses
// expands to that obligation's id.
//
// # Assertion Types
//
//   - trace_contains: a step with the action ran and its args match
//   - trace_order: the actions first ran in the listed order
//   - trace_count: the action ran exactly N times
//   - final_state: exactly one row of a table matches and has the expected columns
//   - row_count: N rows of a table match
package harness
