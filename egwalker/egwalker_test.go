package egwalker

import (
	"testing"

	"github.com/arborcrdt/oplog/causalgraph"
	"github.com/arborcrdt/oplog/oplog"
	"github.com/stretchr/testify/require"
)

func TestCheckoutLinearInsert(t *testing.T) {
	l := oplog.New()
	w := New(l)

	_, err := w.LocalInsert("seph", 0, "hello")
	require.NoError(t, err)

	branch, err := w.Snapshot()
	require.NoError(t, err)
	require.Equal(t, "hello", branch.Snapshot)
}

func TestCheckoutWithDelete(t *testing.T) {
	l := oplog.New()
	w := New(l)

	_, err := w.LocalInsert("seph", 0, "hello")
	require.NoError(t, err)
	_, err = w.LocalDelete("seph", 0, true, "h")
	require.NoError(t, err)

	branch, err := w.Snapshot()
	require.NoError(t, err)
	require.Equal(t, "ello", branch.Snapshot)
}

func TestCheckoutAtEarlierVersionIgnoresLaterOps(t *testing.T) {
	l := oplog.New()
	w := New(l)

	span, err := w.LocalInsert("seph", 0, "ab")
	require.NoError(t, err)
	mid := causalgraph.Frontier{span.Last()}

	_, err = w.LocalInsert("seph", 2, "cd")
	require.NoError(t, err)

	branch, err := w.Checkout(mid)
	require.NoError(t, err)
	require.Equal(t, "ab", branch.Snapshot)

	full, err := w.Snapshot()
	require.NoError(t, err)
	require.Equal(t, "abcd", full.Snapshot)
}

func TestCheckoutMergesConcurrentInserts(t *testing.T) {
	l := oplog.New()
	w := New(l)

	_, err := w.LocalInsert("seph", 0, "x")
	require.NoError(t, err)
	root := causalgraph.Frontier{}

	_, err = l.PushInsertAt("seph", causalgraph.Frontier{0}, 1, "y")
	require.NoError(t, err)
	_, err = l.PushInsertAt("mike", root, 0, "z")
	require.NoError(t, err)

	branch, err := w.Snapshot()
	require.NoError(t, err)
	// Replay order is ascending local time and each insert is spliced
	// at the position it was authored at, so mike's root insert at
	// position 0 (replayed after seph's two ops) lands in front of them.
	require.Equal(t, "zxy", branch.Snapshot)
}
