// Package harness provides conformance testing for filter catalogs.
//
// The harness seeds a fresh store from a fixture, runs every catalog filter
// on both evaluation paths, and checks scenario assertions against the rows
// each filter selected.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	catalog: ../filters.cue       # relative to the scenario file
//	fixture: ../fixture.yaml      # or: generate: {orders: 500, seed: 7}
//	assertions:
//	  - type: matches
//	    filter: paid_by_alice
//	    ids: [o2]
//	  - type: count
//	    filter: expensive_item
//	    count: 2
//	  - type: parity
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - matches: the filter selects exactly ids (order ignored)
//   - contains: the filter selects at least ids
//   - excludes: the filter selects none of ids
//   - count: the filter selects exactly count rows
//   - parity: in-memory and SQL evaluation agree; every filter when filter is empty
//
// Assertions about selected rows read the SQL result. A filter whose paths
// disagree fails every assertion that names it, so a scenario can never pass
// on one path alone.
//
// # Deterministic Testing
//
// Each scenario runs against its own in-memory SQLite database. Generated
// fixtures are seeded, so the same scenario selects the same rows on every
// run and the snapshot written by RunWithGolden is stable.
package harness
