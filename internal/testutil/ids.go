package testutil

import (
	"fmt"
	"sync"
)

// RunIDs hands out sequential run ids for tests: "test-run-0001",
// "test-run-0002", ...
//
// Unlike store.NewRunID the sequence can be reset, so the same scenario
// produces the same ids on every run.
//
// Thread-safety: All methods are safe for concurrent use.
type RunIDs struct {
	mu  sync.Mutex
	seq int
}

// NewRunIDs creates a generator whose first id is "test-run-0001".
func NewRunIDs() *RunIDs {
	return &RunIDs{}
}

// Next returns the next id.
func (g *RunIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("test-run-%04d", g.seq)
}

// Issued returns how many ids Next has returned since the last Reset.
func (g *RunIDs) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence.
func (g *RunIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// FixedRunID returns a generator that always yields id, or
// "test-run-default" when id is empty.
func FixedRunID(id string) func() string {
	if id == "" {
		id = "test-run-default"
	}
	return func() string { return id }
}
