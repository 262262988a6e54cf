package runner

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MZiaRAwan/PF-Project/internal/engine"
	"github.com/MZiaRAwan/PF-Project/internal/level"
	"github.com/MZiaRAwan/PF-Project/internal/store"
	"github.com/MZiaRAwan/PF-Project/internal/testutil"
	"github.com/MZiaRAwan/PF-Project/internal/tracelog"
)

const lineLegacy = `NAME:
line
ROWS:
1
COLS:
7
MAP:
S--A--D
TRAINS:
0 0 0 RIGHT 0 0 6
`

func lineLevel(t *testing.T) *level.Level {
	t.Helper()
	lvl, err := level.Parse([]byte(testutil.LineLevelYAML), level.FormatYAML)
	require.NoError(t, err)
	return lvl
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRun_LineLevel(t *testing.T) {
	res, err := Run(context.Background(), Config{Level: lineLevel(t)})
	require.NoError(t, err)

	assert.Equal(t, "line", res.Level)
	assert.Equal(t, int64(6), res.Ticks)
	assert.True(t, res.Complete)
	require.Len(t, res.Digests, 6)
	assert.Equal(t, res.Digests[5], res.Digest)
	assert.Equal(t, 1, res.Metrics.Arrivals)
	assert.Equal(t, int64(6), res.Final.Tick)
	assert.Empty(t, res.RunID)
	assert.Equal(t, Settings{Weather: "CLEAR", Policy: "wait", Seed: 1}, res.Settings)
}

func TestRun_Deterministic(t *testing.T) {
	a, err := Run(context.Background(), Config{Level: lineLevel(t)})
	require.NoError(t, err)
	b, err := Run(context.Background(), Config{Level: lineLevel(t)})
	require.NoError(t, err)
	assert.Equal(t, a.Digests, b.Digests)
}

func TestRun_Overrides(t *testing.T) {
	seed := uint64(99)
	res, err := Run(context.Background(), Config{
		Level:   lineLevel(t),
		Weather: "fog",
		Policy:  "crash",
		Seed:    &seed,
	})
	require.NoError(t, err)
	assert.Equal(t, Settings{Weather: "FOG", Policy: "crash", Seed: 99}, res.Settings)

	_, err = Run(context.Background(), Config{Level: lineLevel(t), Policy: "bounce"})
	assert.Error(t, err)
}

func TestRun_MaxTicks(t *testing.T) {
	res, err := Run(context.Background(), Config{Level: lineLevel(t), MaxTicks: 2})
	require.NoError(t, err)
	assert.False(t, res.Complete)
	assert.Equal(t, int64(2), res.Ticks)
	assert.Len(t, res.Digests, 2)
}

func TestRun_NoLevel(t *testing.T) {
	_, err := Run(context.Background(), Config{})
	assert.Error(t, err)
}

func TestRun_BeforeTickError(t *testing.T) {
	boom := errors.New("boom")
	res, err := Run(context.Background(), Config{
		Level: lineLevel(t),
		BeforeTick: func(e *engine.Engine) error {
			if e.CurrentTick() == 3 {
				return boom
			}
			return nil
		},
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int64(3), res.Final.Tick)
}

func TestRun_OnTickSeesEveryDigest(t *testing.T) {
	var seen []string
	res, err := Run(context.Background(), Config{
		Level:  lineLevel(t),
		OnTick: func(_ engine.Snapshot, d string) { seen = append(seen, d) },
	})
	require.NoError(t, err)
	assert.Equal(t, res.Digests, seen)
}

func TestRun_WritesTrace(t *testing.T) {
	var trace, sw, sig bytes.Buffer
	w, err := tracelog.NewWriter(&trace, &sw, &sig)
	require.NoError(t, err)

	_, err = Run(context.Background(), Config{Level: lineLevel(t), Trace: w})
	require.NoError(t, err)
	assert.Contains(t, trace.String(), "5,1,0,6,RIGHT,ARRIVED\n")
	assert.Contains(t, sig.String(), "1,A,RED,RED\n")
}

func TestRun_StoresAndReplays(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	res, err := Run(ctx, Config{
		Level:    lineLevel(t),
		Store:    st,
		NewRunID: testutil.FixedRunID("run-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "run-1", res.RunID)

	run, err := st.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.True(t, run.Finished)
	assert.Equal(t, res.Digest, run.FinalDigest)
	assert.Equal(t, "yaml", run.LevelFormat)

	rep, err := Replay(ctx, st, "run-1", nil, nil)
	require.NoError(t, err)
	assert.True(t, rep.Match(), "divergence: %+v", rep.Divergence)
	assert.Equal(t, 6, rep.Stored)
	assert.Equal(t, 6, rep.Replayed)
}

func TestReplay_LegacyLevel(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	lvl, err := level.Parse([]byte(lineLegacy), level.FormatAuto)
	require.NoError(t, err)
	res, err := Run(ctx, Config{Level: lvl, Store: st, Weather: "RAIN"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)

	rep, err := Replay(ctx, st, res.RunID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "legacy", rep.Run.LevelFormat)
	assert.Equal(t, "RAIN", rep.Run.Weather)
	assert.True(t, rep.Match())
}

func TestReplay_EditsMustBeRepeated(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	halt := func(e *engine.Engine) error {
		if e.CurrentTick() == 0 {
			return e.TriggerEmergencyHalt(0, 3)
		}
		return nil
	}
	res, err := Run(ctx, Config{Level: lineLevel(t), Store: st, BeforeTick: halt})
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Ticks)

	rep, err := Replay(ctx, st, res.RunID, halt, nil)
	require.NoError(t, err)
	assert.True(t, rep.Match())

	rep, err = Replay(ctx, st, res.RunID, nil, nil)
	require.NoError(t, err)
	require.False(t, rep.Match())
	assert.Equal(t, int64(0), rep.Divergence.Tick)
}

func TestReplay_CancelledRun(t *testing.T) {
	st := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	res, err := Run(ctx, Config{
		Level: lineLevel(t),
		Store: st,
		OnTick: func(s engine.Snapshot, _ string) {
			if s.Tick == 3 {
				cancel()
			}
		},
	})
	require.ErrorIs(t, err, context.Canceled)

	rep, err := Replay(context.Background(), st, res.RunID, nil, nil)
	require.NoError(t, err)
	assert.False(t, rep.Run.Finished)
	assert.Equal(t, 3, rep.Stored)
	assert.Equal(t, 3, rep.Replayed)
	assert.True(t, rep.Match())
}

func TestReplay_TamperedLevel(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	res, err := Run(ctx, Config{Level: lineLevel(t), Store: st})
	require.NoError(t, err)
	_, err = st.DB().Exec(`UPDATE runs SET level_text = ? WHERE id = ?`, []byte("map: [\"S-D\"]\n"), res.RunID)
	require.NoError(t, err)

	_, err = Replay(ctx, st, res.RunID, nil, nil)
	assert.ErrorIs(t, err, ErrLevelDigest)
}

func TestReplay_UnknownRun(t *testing.T) {
	_, err := Replay(context.Background(), openStore(t), "missing", nil, nil)
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestName(t *testing.T) {
	assert.Equal(t, "line", Name(lineLevel(t)))

	lvl, err := level.Parse([]byte("map: [\"S-D\"]\n"), level.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "level", Name(lvl))
}
