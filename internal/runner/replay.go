package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MZiaRAwan/PF-Project/internal/canon"
	"github.com/MZiaRAwan/PF-Project/internal/level"
	"github.com/MZiaRAwan/PF-Project/internal/store"
)

// ReplayResult compares a stored run with its re-simulation.
type ReplayResult struct {
	Run        store.Run         `json:"run"`
	Stored     int               `json:"stored_ticks"`
	Replayed   int               `json:"replayed_ticks"`
	Divergence *store.Divergence `json:"divergence,omitempty"`
}

// Match reports whether both digest chains are identical.
func (r *ReplayResult) Match() bool { return r.Divergence == nil }

// ErrLevelDigest is returned when a stored level no longer hashes to the
// digest recorded with it.
var ErrLevelDigest = errors.New("stored level text does not match its digest")

// Replay re-simulates a stored run from its level text and options and
// compares the digest chains tick by tick. before must repeat any manual
// edits the recorded run made. An unfinished run is replayed only as far
// as it was recorded.
func Replay(ctx context.Context, st *store.Store, runID string, before Hook, log *slog.Logger) (*ReplayResult, error) {
	rr, err := st.ReplayRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if canon.LevelDigest(rr.Run.LevelText) != rr.Run.LevelDigest {
		return nil, fmt.Errorf("replay %s: %w", runID, ErrLevelDigest)
	}
	format := level.FormatYAML
	if rr.Run.LevelFormat == level.FormatLegacy.String() {
		format = level.FormatLegacy
	}
	lvl, err := level.Parse(rr.Run.LevelText, format)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}

	maxTicks := rr.Run.MaxTicks
	if !rr.Run.Finished {
		if rr.Run.Ticks == 0 {
			return &ReplayResult{
				Run:        rr.Run,
				Stored:     len(rr.Digests),
				Divergence: store.CompareDigests(rr.Digests, nil),
			}, nil
		}
		maxTicks = rr.Run.Ticks
	}
	seed := rr.Run.Seed
	res, err := Run(ctx, Config{
		Level:      lvl,
		MaxTicks:   maxTicks,
		Weather:    rr.Run.Weather,
		Policy:     rr.Run.Policy,
		Seed:       &seed,
		BeforeTick: before,
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}
	return &ReplayResult{
		Run:        rr.Run,
		Stored:     len(rr.Digests),
		Replayed:   len(res.Digests),
		Divergence: store.CompareDigests(rr.Digests, res.Digests),
	}, nil
}
