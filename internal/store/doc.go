// Package store provides SQLite-backed durable storage for simulation runs.
//
// A run is stored as:
//   - runs: the level text, its digest and the options the run used
//   - trace: one row per train per tick while the train is on the grid,
//     plus the tick it arrived or crashed
//   - switch_log / signal_log: one row per placed switch per tick
//   - digests: the chained per-tick state digest (see internal/canon)
//   - metrics: the final counters
//
// # Ordering
//
// All ordering uses the logical tick, never timestamps. Every read query
// orders by tick then id so results are identical across reads.
//
// # Replay
//
// Runs are verified by re-simulating the stored level with the stored
// options and comparing digest chains tick by tick (ReplayRun and
// CompareDigests).
//
// # Schema
//
// schema.sql is applied on every Open and stamps PRAGMA user_version with
// SchemaVersion. A database stamped with a later version is refused with
// ErrSchemaTooNew rather than written by older code. Connections run with
// WAL journaling, synchronous=NORMAL, a 5s busy timeout and foreign keys on.
package store
