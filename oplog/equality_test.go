package oplog

import (
	"testing"

	"github.com/arborcrdt/oplog/causalgraph"
	"github.com/stretchr/testify/require"
)

func TestSplitInsertEqualsJoinedInsert(t *testing.T) {
	joined := New()
	_, err := joined.PushInsert("seph", 0, "hello")
	require.NoError(t, err)

	split := New()
	_, err = split.PushInsert("seph", 0, "he")
	require.NoError(t, err)
	_, err = split.PushInsert("seph", 2, "llo")
	require.NoError(t, err)

	require.True(t, joined.Equals(split), "pushing the same text as one run or as two contiguous runs should converge to equal logs")
}

func TestShadowExtendsThroughLinearHistory(t *testing.T) {
	l := New()
	_, err := l.PushInsert("seph", 0, "a")
	require.NoError(t, err)
	_, err = l.PushInsert("seph", 1, "b")
	require.NoError(t, err)
	_, err = l.PushInsert("seph", 2, "c")
	require.NoError(t, err)

	entries := l.CG.History.Entries()
	require.Len(t, entries, 1, "three sequential single-parent pushes from the same agent must fold into one history run")
	require.Equal(t, causalgraph.ROOT, entries[0].Shadow, "a purely linear run starting from ROOT should have a ROOT shadow")
}

func TestBubbleMergeOfTwoDivergedReplicas(t *testing.T) {
	a := New()
	_, err := a.PushInsert("seph", 0, "x")
	require.NoError(t, err)
	base := a.Frontier().Clone()

	b := New()
	require.NoError(t, b.MergeExtOps(a.ExtOpsSince(nil)))

	// Replicas diverge concurrently.
	_, err = a.PushInsertAt("seph", base, 1, "y")
	require.NoError(t, err)
	_, err = b.PushInsertAt("mike", base, 0, "z")
	require.NoError(t, err)

	// Exchange the deltas both ways and confirm both sides bubble up
	// to the same merged state.
	aDelta := a.ExtOpsSince(base)
	bDelta := b.ExtOpsSince(base)

	require.NoError(t, a.MergeExtOps(bDelta))
	require.NoError(t, b.MergeExtOps(aDelta))

	require.True(t, a.Equals(b), "both replicas exchanging their divergent deltas should converge")
	require.NoError(t, DbgCheck(a))
	require.NoError(t, DbgCheck(b))
}
