// Package harness runs property-resolution scenarios against schemas
// declared in CUE.
//
// A scenario compiles its specs into a schema, creates one instance with a
// fixed ID and runs a list of steps against it. Every step is recorded in a
// trace; traces can be compared against golden files.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: reciprocal_through_mapping
//	description: "What this scenario validates"
//	specs:
//	  - ../specs/dc.cue
//	instance_id: test-instance-1
//	steps:
//	  - op: set
//	    slot: model
//	    value: [1, 2]
//	  - op: set
//	    slot: conductivityMap
//	    value: identity
//	  - op: get
//	    slot: resistivity
//	    expect:
//	      value: [1, 0.5]
//	  - op: deriv
//	    slot: resistivityDeriv
//	    expect:
//	      diagonal: [-1, -0.25]
//	assertions:
//	  - type: cleared
//	    slots: [resistivityMap]
//
// Step ops are set, delete, get, raw and deriv. A set with a null value
// writes absent. Expectations name exactly one of value, absent, error,
// zero or diagonal; error takes a code such as MISSING_MODEL,
// UNSET_DEFAULT, UNSET_MAPPING or TYPE_VALIDATION. A step without an
// expectation must not fail.
//
// # Golden Files
//
// RunWithGolden stores the canonical JSON of the trace, final slots and
// trace hash under testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
