package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MZiaRAwan/PF-Project/internal/grid"
	"github.com/MZiaRAwan/PF-Project/internal/train"
)

func pos(r, c int) grid.Pos { return grid.Pos{Row: r, Col: c} }

// mover builds an on-grid train at `at` proposing `next`, with its
// destination chosen by the caller to set its priority.
func mover(id int, at, next, dest grid.Pos) *train.Train {
	tr := train.New(train.Spec{ID: id, Start: at, Heading: grid.Right, Dest: dest})
	tr.Spawn(at, 0)
	if next == at {
		tr.Hold()
		return tr
	}
	d, _ := grid.Toward(at, next)
	tr.Propose(next, d)
	return tr
}

func line() *grid.Grid {
	return grid.MustNew("----------", "----------", "----------")
}

func TestResolve_SameTargetFartherWins(t *testing.T) {
	a := mover(1, pos(1, 1), pos(1, 2), pos(1, 4)) // distance 3
	b := mover(2, pos(0, 2), pos(1, 2), pos(2, 2)) // distance 2

	out := New(line(), LoserWaits).Resolve([]*train.Train{a, b})

	assert.True(t, a.Moving())
	assert.False(t, b.Moving())
	require.Len(t, out.Conflicts, 1)
	assert.Equal(t, SameTarget, out.Conflicts[0].Shape)
	assert.Equal(t, 1, out.Conflicts[0].Winner)
	assert.Empty(t, out.Crashed)

	a = mover(1, pos(1, 1), pos(1, 2), pos(1, 3)) // distance 2
	b = mover(2, pos(0, 2), pos(1, 2), pos(3, 2)) // distance 3
	New(line(), LoserWaits).Resolve([]*train.Train{a, b})
	assert.False(t, a.Moving())
	assert.True(t, b.Moving(), "higher id proceeds when strictly farther")
}

func TestResolve_SameTargetTieLowerIDWins(t *testing.T) {
	a := mover(1, pos(1, 1), pos(1, 2), pos(1, 4))
	b := mover(2, pos(0, 2), pos(1, 2), pos(3, 2))

	New(line(), LoserWaits).Resolve([]*train.Train{a, b})

	assert.True(t, a.Moving())
	assert.False(t, b.Moving())
	assert.Equal(t, pos(0, 2), b.Next)
}

func TestResolve_HeadOnOnlyFartherMoves(t *testing.T) {
	far := mover(1, pos(0, 3), pos(0, 4), pos(0, 8))  // distance 5
	near := mover(2, pos(0, 4), pos(0, 3), pos(0, 1)) // distance 3
	headingBefore := near.Heading

	out := New(line(), LoserWaits).Resolve([]*train.Train{far, near})

	require.Len(t, out.Conflicts, 1)
	assert.Equal(t, HeadOn, out.Conflicts[0].Shape)
	assert.Equal(t, 1, out.Conflicts[0].Winner)

	assert.True(t, far.Commit())
	assert.False(t, near.Commit())
	assert.Equal(t, pos(0, 4), far.Pos)
	assert.Equal(t, pos(0, 4), near.Pos, "loser keeps its cell")
	assert.Equal(t, headingBefore, near.Heading)
}

func TestResolve_HoldingTrainNeverDisplaced(t *testing.T) {
	holder := mover(1, pos(0, 2), pos(0, 2), pos(0, 3))   // distance 1
	intruder := mover(2, pos(0, 1), pos(0, 2), pos(0, 9)) // distance 8

	New(line(), LoserWaits).Resolve([]*train.Train{holder, intruder})

	assert.False(t, holder.Moving())
	assert.False(t, intruder.Moving())
}

func TestResolve_BlockedChainPropagates(t *testing.T) {
	t1 := mover(1, pos(0, 1), pos(0, 2), pos(0, 9))
	t2 := mover(2, pos(0, 2), pos(0, 3), pos(0, 9))
	t3 := mover(3, pos(0, 3), pos(0, 3), pos(0, 9))

	New(line(), LoserWaits).Resolve([]*train.Train{t1, t2, t3})

	assert.False(t, t2.Moving(), "blocked by the holding train ahead")
	assert.False(t, t1.Moving(), "blocked by the train that now waits")
}

func TestResolve_FollowingIsNotAConflict(t *testing.T) {
	t1 := mover(1, pos(0, 1), pos(0, 2), pos(0, 9))
	t2 := mover(2, pos(0, 2), pos(0, 3), pos(0, 9))

	out := New(line(), LoserWaits).Resolve([]*train.Train{t1, t2})

	assert.Empty(t, out.Conflicts)
	assert.True(t, t1.Moving())
	assert.True(t, t2.Moving())
}

func TestResolve_MultiWayCrossing(t *testing.T) {
	g := grid.MustNew(
		" | ",
		"-+-",
		" | ",
	)
	cell := pos(1, 1)
	west := mover(1, pos(1, 0), cell, pos(1, 9))   // distance 9
	north := mover(2, pos(0, 1), cell, pos(5, 1))  // distance 5
	east := mover(3, pos(1, 2), cell, pos(1, -5)) // distance 7

	out := New(g, LoserWaits).Resolve([]*train.Train{west, north, east})

	assert.True(t, west.Moving())
	assert.False(t, north.Moving())
	assert.False(t, east.Moving())
	assert.Len(t, out.Conflicts, 2)
	for _, c := range out.Conflicts {
		assert.Equal(t, 1, c.Winner)
		assert.Equal(t, cell, c.Cell)
	}
}

func TestResolve_EqualPriorityCrash(t *testing.T) {
	a := mover(1, pos(1, 1), pos(1, 2), pos(1, 4))
	b := mover(2, pos(0, 2), pos(1, 2), pos(3, 2))

	out := New(line(), EqualPriorityCrash).Resolve([]*train.Train{a, b})

	assert.Equal(t, []int{1, 2}, out.Crashed)
	require.Len(t, out.Conflicts, 1)
	assert.Equal(t, []int{1, 2}, out.Conflicts[0].Crash)
}

func TestResolve_EqualPriorityCrashHeadOn(t *testing.T) {
	a := mover(1, pos(0, 3), pos(0, 4), pos(0, 7))
	b := mover(2, pos(0, 4), pos(0, 3), pos(0, 0))

	out := New(line(), EqualPriorityCrash).Resolve([]*train.Train{a, b})
	assert.Equal(t, []int{1, 2}, out.Crashed)
}

func TestResolve_CrashPolicyUnequalStillWaits(t *testing.T) {
	a := mover(1, pos(1, 1), pos(1, 2), pos(1, 5))
	b := mover(2, pos(0, 2), pos(1, 2), pos(3, 2))

	out := New(line(), EqualPriorityCrash).Resolve([]*train.Train{a, b})

	assert.Empty(t, out.Crashed)
	assert.True(t, a.Moving())
	assert.False(t, b.Moving())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("crash")
	require.NoError(t, err)
	assert.Equal(t, EqualPriorityCrash, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, LoserWaits, p)

	_, err = ParsePolicy("coinflip")
	assert.Error(t, err)
}
