package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MZiaRAwan/PF-Project/internal/engine"
)

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Run is the stored description of one simulation run.
type Run struct {
	ID          string `json:"id"`
	LevelName   string `json:"level_name"`
	LevelFormat string `json:"level_format"`
	LevelText   []byte `json:"-"`
	LevelDigest string `json:"level_digest"`
	Seed        uint64 `json:"seed"`
	Weather     string `json:"weather"`
	Policy      string `json:"policy"`
	MaxTicks    int64  `json:"max_ticks"`
	Ticks       int64  `json:"ticks"`
	FinalDigest string `json:"final_digest,omitempty"`
	Complete    bool   `json:"complete"`
	Finished    bool   `json:"finished"`
}

// NewRunID returns a time-ordered run id (UUIDv7), so listing runs by id
// lists them in creation order.
func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// CreateRun inserts the run header. ID is generated when empty and the run
// is returned with it.
func (s *Store) CreateRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.LevelText == nil {
		run.LevelText = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, level_name, level_format, level_text, level_digest, seed, weather, policy, max_ticks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.LevelName,
		run.LevelFormat,
		run.LevelText,
		run.LevelDigest,
		int64(run.Seed), // go-sqlite3 rejects uint64 with the high bit set
		run.Weather,
		run.Policy,
		run.MaxTicks,
	)
	if err != nil {
		return run, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// Recorder appends the per-tick rows of one run.
type Recorder struct {
	store *Store
	runID string

	// terminal trains already written once
	done map[int]bool
}

// Recorder returns a recorder for an existing run.
func (s *Store) Recorder(runID string) *Recorder {
	return &Recorder{store: s, runID: runID, done: make(map[int]bool)}
}

// RecordTick writes the snapshot taken after a tick and its digest in one
// transaction.
func (r *Recorder) RecordTick(ctx context.Context, snap engine.Snapshot, digest string) error {
	tick := snap.Tick - 1
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record tick %d: %w", tick, err)
	}
	defer tx.Rollback()

	for _, t := range snap.Trains {
		if !r.traced(t) {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO trace (run_id, tick, train_id, row, col, heading, state)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, r.runID, tick, t.ID, t.Pos.Row, t.Pos.Col, t.Heading, t.State); err != nil {
			return fmt.Errorf("record tick %d: trace: %w", tick, err)
		}
	}
	for _, sw := range snap.Switches {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO switch_log (run_id, tick, switch_id, letter, mode, state, changed)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, r.runID, tick, sw.ID, sw.Letter, sw.Mode, sw.State, sw.Changed); err != nil {
			return fmt.Errorf("record tick %d: switch log: %w", tick, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO signal_log (run_id, tick, switch_id, letter, signal, displayed)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.runID, tick, sw.ID, sw.Letter, sw.Signal, sw.Displayed); err != nil {
			return fmt.Errorf("record tick %d: signal log: %w", tick, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO digests (run_id, tick, digest) VALUES (?, ?, ?)
	`, r.runID, tick, digest); err != nil {
		return fmt.Errorf("record tick %d: digest: %w", tick, err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE runs SET ticks = ?, final_digest = ? WHERE id = ?
	`, snap.Tick, digest, r.runID); err != nil {
		return fmt.Errorf("record tick %d: run: %w", tick, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record tick %d: commit: %w", tick, err)
	}
	for _, t := range snap.Trains {
		if terminal(t.State) {
			r.done[t.ID] = true
		}
	}
	return nil
}

// traced reports whether a train gets a trace row: it is on the grid, or it
// reached a terminal state since the previous tick.
func (r *Recorder) traced(t engine.TrainView) bool {
	switch {
	case t.State == "SCHEDULED":
		return false
	case terminal(t.State):
		return !r.done[t.ID]
	}
	return true
}

func terminal(state string) bool {
	return state == "ARRIVED" || state == "CRASHED"
}

// Finish stores the final metrics and marks the run finished.
func (r *Recorder) Finish(ctx context.Context, m engine.Metrics, complete bool) error {
	return r.store.FinishRun(ctx, r.runID, m, complete)
}

// FinishRun stores the final metrics of a run and marks it finished.
func (s *Store) FinishRun(ctx context.Context, runID string, m engine.Metrics, complete bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE runs SET ticks = ?, complete = ?, finished = 1 WHERE id = ?
	`, m.Ticks, complete, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if err := requireOneRow(res, runID); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO metrics
		(run_id, ticks, spawned, arrivals, forced_arrivals, crashes, wait_ticks,
		 signal_violations, switch_flips, train_ticks, buffers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			ticks = excluded.ticks,
			spawned = excluded.spawned,
			arrivals = excluded.arrivals,
			forced_arrivals = excluded.forced_arrivals,
			crashes = excluded.crashes,
			wait_ticks = excluded.wait_ticks,
			signal_violations = excluded.signal_violations,
			switch_flips = excluded.switch_flips,
			train_ticks = excluded.train_ticks,
			buffers = excluded.buffers
	`,
		runID, m.Ticks, m.Spawned, m.Arrivals, m.ForcedArrivals, m.Crashes, m.WaitTicks,
		m.SignalViolations, m.SwitchFlips, m.TrainTicks, m.Buffers,
	); err != nil {
		return fmt.Errorf("finish run: metrics: %w", err)
	}
	return tx.Commit()
}

func requireOneRow(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	return nil
}
