package store

import (
	"context"
	"fmt"
)

// RunReplay is everything needed to re-simulate a stored run and check it.
type RunReplay struct {
	Run     Run
	Digests []string
}

// ReplayRun loads a finished or partial run with its digest chain.
func (s *Store) ReplayRun(ctx context.Context, runID string) (RunReplay, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return RunReplay{}, fmt.Errorf("replay run: %w", err)
	}
	digests, err := s.ReadDigests(ctx, runID)
	if err != nil {
		return RunReplay{}, fmt.Errorf("replay run: %w", err)
	}
	return RunReplay{Run: run, Digests: digests}, nil
}

// Divergence describes the first tick at which two digest chains differ.
type Divergence struct {
	Tick int64  `json:"tick"`
	Want string `json:"want"`
	Got  string `json:"got"`
}

// CompareDigests compares a stored chain against a re-simulated one. It
// returns nil when they match. A length mismatch diverges at the first tick
// present in only one chain, with "" standing in for the missing digest.
func CompareDigests(want, got []string) *Divergence {
	n := max(len(want), len(got))
	for i := 0; i < n; i++ {
		var w, g string
		if i < len(want) {
			w = want[i]
		}
		if i < len(got) {
			g = got[i]
		}
		if w != g {
			return &Divergence{Tick: int64(i), Want: w, Got: g}
		}
	}
	return nil
}
