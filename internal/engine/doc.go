// Package engine implements the tick orchestrator of the train simulation.
//
// The engine owns the whole simulation aggregate: grid, switch bank, trains,
// clock and metrics. Collaborators read it through Snapshot and Metrics, and
// change it only through the manual-edit mutators (ToggleBufferTile,
// ToggleSwitch, TriggerEmergencyHalt) between ticks.
//
// TICK PIPELINE:
//
// Every call to Tick runs ten phases in a fixed order. Within a phase trains
// are visited in ascending id and switches A→Z, and every train is evaluated
// against the same start-of-phase state.
//
//  1. Spawn: scheduled trains whose tick has come are placed.
//  2. Route: the router proposes one move per on-grid train.
//  3. Halt override: trains next to a halted switch hold.
//  4. Switch counters: trains standing on a switch are counted.
//  5. Flip queueing: thresholds are evaluated.
//  6. Movement: conflicts are resolved and all moves commit at once.
//  7. Deferred flips: queued flips toggle now, after movement.
//  8. Arrivals: trains on their destination leave; stuck trains are
//     delivered by recovery.
//  9. Halt timers count down.
//  10. Signals are derived for the next tick.
//
// DETERMINISM:
//
// The engine never reads wall-clock time and has no goroutines. The only
// randomness is the rain roll, a pure function of (seed, tick, train id).
// Two engines built from the same layout and options produce identical
// snapshots tick for tick.
//
// ERROR HANDLING:
//
// Nothing that happens inside a tick is an error. Invalid moves fall back,
// conflicts resolve by priority, and stagnation ends in a forced arrival;
// all of it is reflected in state, metrics and the TickReport. Only setup
// (New, Reset) and the manual mutators return errors.
package engine
