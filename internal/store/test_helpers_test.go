package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/MZiaRAwan/PF-Project/internal/canon"
	"github.com/MZiaRAwan/PF-Project/internal/engine"
	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/switches"
	"github.com/MZiaRAwan/PF-Project/internal/train"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// verifyPragma checks that a pragma reports the expected value.
func verifyPragma(s *Store, name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// testLayout is a single line with one switch: train 1 reaches D on tick 5.
func testLayout() engine.Layout {
	return engine.Layout{
		Lines:    []string{"S--A--D"},
		Switches: []switches.Config{{ID: 0, Labels: [2]string{"STRAIGHT", "TURN"}}},
		Trains: []train.Spec{
			{ID: 1, Start: grid.Pos{Row: 0, Col: 0}, Heading: grid.Right, Dest: grid.Pos{Row: 0, Col: 6}},
		},
	}
}

// recordTestRun simulates testLayout to completion into a new run and
// returns the run and its digest chain.
func recordTestRun(t *testing.T, s *Store) (Run, []string) {
	t.Helper()
	ctx := context.Background()

	run, err := s.CreateRun(ctx, Run{
		LevelName:   "line",
		LevelFormat: "yaml",
		LevelText:   []byte("map: [\"S--A--D\"]\n"),
		LevelDigest: canon.LevelDigest([]byte("map: [\"S--A--D\"]\n")),
		Seed:        1,
		Weather:     "CLEAR",
		Policy:      "wait",
		MaxTicks:    100,
	})
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}

	e, err := engine.New(testLayout())
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}
	rec := s.Recorder(run.ID)
	var chain canon.Chain
	for !e.IsComplete() {
		e.Tick()
		snap := e.Snapshot()
		d, err := chain.Add(snap)
		if err != nil {
			t.Fatalf("digest failed: %v", err)
		}
		if err := rec.RecordTick(ctx, snap, d); err != nil {
			t.Fatalf("RecordTick() failed: %v", err)
		}
	}
	if err := rec.Finish(ctx, e.Metrics(), e.IsComplete()); err != nil {
		t.Fatalf("Finish() failed: %v", err)
	}
	return run, chain.Digests()
}
