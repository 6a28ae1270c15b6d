package oplog

import "github.com/arborcrdt/oplog/causalgraph"

// Equals reports whether l and other encode the same causal history:
// the same set of operations, each with the same content and the same
// causal parents, reachable from equal frontiers — independent of the
// order either replica happened to learn about them in, and
// independent of the local integer agent ids either replica assigned
// (only the agent *names* have to line up).
//
// The Rust original this is grounded on (diamond-types' eq.rs) builds
// an explicit agent-id bijection between the two oplogs being
// compared before it can compare anything else, because its causal
// graph doesn't keep a name for every id once assigned. This package's
// AgentTable always keeps that mapping, so the comparison can go
// straight through RemoteVersion (agent name + seq) as the shared,
// already-canonical identity instead of re-deriving one.
func (l *Log) Equals(other *Log) bool {
	if l.CG.Len() != other.CG.Len() {
		return false
	}
	if !remoteFrontierSet(l).equal(remoteFrontierSet(other)) {
		return false
	}
	for t := causalgraph.LV(0); t < causalgraph.LV(l.CG.Len()); t++ {
		rv, ok := l.CG.Agents.LVToRemote(t)
		if !ok {
			return false
		}
		ot, ok := other.CG.Agents.RemoteToLV(rv)
		if !ok {
			return false
		}
		if !sameOperationAt(l, t, other, ot) {
			return false
		}
		if !sameParentsAt(l, t, other, ot) {
			return false
		}
	}
	return true
}

func sameOperationAt(a *Log, at causalgraph.LV, b *Log, bt causalgraph.LV) bool {
	aOps := a.store.readRange(causalgraph.NewTimeSpan(at, 1))
	bOps := b.store.readRange(causalgraph.NewTimeSpan(bt, 1))
	if len(aOps) != 1 || len(bOps) != 1 {
		return false
	}
	x, y := aOps[0], bOps[0]
	return x.Kind == y.Kind && x.Pos == y.Pos && x.Fwd == y.Fwd && x.Content == y.Content
}

func sameParentsAt(a *Log, at causalgraph.LV, b *Log, bt causalgraph.LV) bool {
	ap, ok1 := a.CG.ParentsAtTime(at)
	bp, ok2 := b.CG.ParentsAtTime(bt)
	if ok1 != ok2 {
		return false
	}
	if !ok1 {
		return true
	}
	return remoteSetOf(a, ap).equal(remoteSetOf(b, bp))
}

type remoteSet map[causalgraph.RemoteVersion]bool

func (s remoteSet) equal(other remoteSet) bool {
	if len(s) != len(other) {
		return false
	}
	for rv := range s {
		if !other[rv] {
			return false
		}
	}
	return true
}

func remoteSetOf(l *Log, f causalgraph.Frontier) remoteSet {
	out := make(remoteSet, len(f))
	for _, t := range f {
		if rv, ok := l.CG.Agents.LVToRemote(t); ok {
			out[rv] = true
		}
	}
	return out
}

func remoteFrontierSet(l *Log) remoteSet {
	return remoteSetOf(l, l.CG.Frontier)
}
