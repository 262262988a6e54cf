// Package harness runs YAML simulation scenarios and checks them.
//
// # Scenario Format
//
//	name: line_halt
//	description: "An emergency halt delays the train by one tick"
//	level: ../levels/line.yaml      # or inline_level: |
//	max_ticks: 50
//	weather: FOG                    # optional override
//	edits:
//	  - tick: 0
//	    action: halt
//	    switch: A
//	    ticks: 3
//	assertions:
//	  - type: complete
//	  - type: metric
//	    name: wait_ticks
//	    equals: 1
//	  - type: train
//	    train: 1
//	    tick: 2
//	    pos: {row: 0, col: 2}
//
// Edits run between ticks, before the tick they name. An assertion with a
// tick looks at the snapshot taken after that tick; without one it looks at
// the final snapshot.
//
// # Assertion Types
//
//   - complete: the run finished within max_ticks
//   - metric: a named end-of-run metric equals a value
//   - train: a train's state and/or position
//   - switch: a switch's state
//   - signal: a switch's signal color
//
// # Determinism
//
// Every run is recorded into an in-memory store and then re-simulated from
// the stored level text; the two digest chains must match.
//
// Golden files (testdata/golden/<name>.golden) hold the CSV trace, signal
// log and metrics of a scenario; regenerate with
//
//	go test ./internal/harness -update
package harness
