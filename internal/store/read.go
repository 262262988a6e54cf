package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MZiaRAwan/PF-Project/internal/engine"
	"github.com/MZiaRAwan/PF-Project/internal/grid"
)

// TraceRow is one train at the end of one tick.
type TraceRow struct {
	Tick    int64    `json:"tick"`
	TrainID int      `json:"train_id"`
	Pos     grid.Pos `json:"pos"`
	Heading string   `json:"heading"`
	State   string   `json:"state"`
}

// SwitchRow is one switch at the end of one tick.
type SwitchRow struct {
	Tick     int64  `json:"tick"`
	SwitchID int    `json:"switch_id"`
	Letter   string `json:"letter"`
	Mode     string `json:"mode"`
	State    int    `json:"state"`
	Changed  bool   `json:"changed"`
}

// SignalRow is one switch signal at the end of one tick.
type SignalRow struct {
	Tick      int64  `json:"tick"`
	SwitchID  int    `json:"switch_id"`
	Letter    string `json:"letter"`
	Signal    string `json:"signal"`
	Displayed string `json:"displayed"`
}

const runColumns = `id, level_name, level_format, level_text, level_digest, seed, weather,
	policy, max_ticks, ticks, final_digest, complete, finished`

// GetRun reads one run header.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns every run in creation order.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recently created run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id COLLATE BINARY DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("latest run: %w", ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run  Run
		seed int64
	)
	err := sc.Scan(
		&run.ID,
		&run.LevelName,
		&run.LevelFormat,
		&run.LevelText,
		&run.LevelDigest,
		&seed,
		&run.Weather,
		&run.Policy,
		&run.MaxTicks,
		&run.Ticks,
		&run.FinalDigest,
		&run.Complete,
		&run.Finished,
	)
	run.Seed = uint64(seed)
	return run, err
}

// ReadTrace returns the trace of a run ordered by tick then train id.
func (s *Store) ReadTrace(ctx context.Context, runID string) ([]TraceRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tick, train_id, row, col, heading, state
		FROM trace WHERE run_id = ?
		ORDER BY tick ASC, train_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	defer rows.Close()

	var out []TraceRow
	for rows.Next() {
		var r TraceRow
		if err := rows.Scan(&r.Tick, &r.TrainID, &r.Pos.Row, &r.Pos.Col, &r.Heading, &r.State); err != nil {
			return nil, fmt.Errorf("read trace: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReadTrainTrace returns one train's rows ordered by tick.
func (s *Store) ReadTrainTrace(ctx context.Context, runID string, trainID int) ([]TraceRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tick, train_id, row, col, heading, state
		FROM trace WHERE run_id = ? AND train_id = ?
		ORDER BY tick ASC
	`, runID, trainID)
	if err != nil {
		return nil, fmt.Errorf("read train trace: %w", err)
	}
	defer rows.Close()

	var out []TraceRow
	for rows.Next() {
		var r TraceRow
		if err := rows.Scan(&r.Tick, &r.TrainID, &r.Pos.Row, &r.Pos.Col, &r.Heading, &r.State); err != nil {
			return nil, fmt.Errorf("read train trace: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReadSwitchLog returns the switch rows of a run ordered by tick then id.
func (s *Store) ReadSwitchLog(ctx context.Context, runID string) ([]SwitchRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tick, switch_id, letter, mode, state, changed
		FROM switch_log WHERE run_id = ?
		ORDER BY tick ASC, switch_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read switch log: %w", err)
	}
	defer rows.Close()

	var out []SwitchRow
	for rows.Next() {
		var r SwitchRow
		if err := rows.Scan(&r.Tick, &r.SwitchID, &r.Letter, &r.Mode, &r.State, &r.Changed); err != nil {
			return nil, fmt.Errorf("read switch log: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReadSignalLog returns the signal rows of a run ordered by tick then id.
func (s *Store) ReadSignalLog(ctx context.Context, runID string) ([]SignalRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tick, switch_id, letter, signal, displayed
		FROM signal_log WHERE run_id = ?
		ORDER BY tick ASC, switch_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read signal log: %w", err)
	}
	defer rows.Close()

	var out []SignalRow
	for rows.Next() {
		var r SignalRow
		if err := rows.Scan(&r.Tick, &r.SwitchID, &r.Letter, &r.Signal, &r.Displayed); err != nil {
			return nil, fmt.Errorf("read signal log: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReadDigests returns the digest chain of a run in tick order.
func (s *Store) ReadDigests(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT digest FROM digests WHERE run_id = ? ORDER BY tick ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read digests: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("read digests: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ReadMetrics returns the final metrics of a finished run.
func (s *Store) ReadMetrics(ctx context.Context, runID string) (engine.Metrics, error) {
	var m engine.Metrics
	err := s.db.QueryRowContext(ctx, `
		SELECT ticks, spawned, arrivals, forced_arrivals, crashes, wait_ticks,
		       signal_violations, switch_flips, train_ticks, buffers
		FROM metrics WHERE run_id = ?
	`, runID).Scan(
		&m.Ticks, &m.Spawned, &m.Arrivals, &m.ForcedArrivals, &m.Crashes, &m.WaitTicks,
		&m.SignalViolations, &m.SwitchFlips, &m.TrainTicks, &m.Buffers,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return m, fmt.Errorf("read metrics %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return m, fmt.Errorf("read metrics %s: %w", runID, err)
	}
	return m, nil
}
