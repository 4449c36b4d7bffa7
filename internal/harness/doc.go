// Package harness runs YAML scenarios against the snapshot chain.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	backend: memory            # or "file"; default memory
//	pointer: pend/head         # optional pointer name
//	steps:
//	  - op: load
//	    expect:
//	      id: 38acb15d...
//	      payload: ""
//	  - op: save
//	    data: "2012-05-09,Hand in homework,true"
//	  - op: undo
//	  - op: undo
//	    expect:
//	      error: exhausted
//	assertions:
//	  - type: head
//	    id: 38acb15d...
//	  - type: trace_order
//	    ops: [load, save, undo]
//
// # Step Operations
//
//   - load: Chain.Load, with id as the optional explicit snapshot
//   - save: Chain.Save of data
//   - undo: Chain.Undo
//   - put: store a raw blob of data
//   - get: read the raw blob under id
//
// # Assertion Types
//
//   - head: the pointer designates id (or is unset when id is empty)
//   - blob_count: the store holds exactly count blobs
//   - trace_order: pointer moves happened in exactly this op order
//   - trace_count: op was recorded exactly count times
//
// # Deterministic Testing
//
// The trace is the sequence of pointer moves reported through
// chain.Recorder, numbered from 1. File-backed scenarios name temp files
// with testutil.SequentialNameGenerator, so two runs of one scenario
// produce identical traces and identical store trees, suitable for
// golden file comparison.
package harness
