package oplog

import (
	"fmt"

	"github.com/arborcrdt/oplog/causalgraph"
)

// DbgCheck walks every internal index this log keeps and verifies
// they agree with one another. It is not on any hot path — it exists
// for tests and for callers that want to assert invariants after a
// risky sequence of merges, the way diamond-types' check.rs does for
// its own oplog.
func DbgCheck(l *Log) error {
	if err := checkFrontierIsTips(l); err != nil {
		return err
	}
	if err := checkHistoryLinksSymmetric(l); err != nil {
		return err
	}
	if err := checkRootChildIndexes(l); err != nil {
		return err
	}
	if err := checkShadowValidity(l); err != nil {
		return err
	}
	if err := checkAgentTableRoundTrips(l); err != nil {
		return err
	}
	return nil
}

// checkFrontierIsTips verifies the frontier is exactly the set of
// times with no recorded child.
func checkFrontierIsTips(l *Log) error {
	hasChild := make(map[causalgraph.LV]bool)
	entries := l.CG.History.Entries()
	for _, e := range entries {
		for _, p := range e.Parents {
			hasChild[p] = true
		}
		for t := e.Span.Start; t < e.Span.Last(); t++ {
			hasChild[t] = true
		}
	}

	frontierSet := make(map[causalgraph.LV]bool, len(l.CG.Frontier))
	for _, t := range l.CG.Frontier {
		frontierSet[t] = true
	}

	for _, e := range entries {
		last := e.Span.Last()
		if !hasChild[last] && !frontierSet[last] {
			return fmt.Errorf("oplog: DbgCheck: time %d has no child but is missing from the frontier", last)
		}
	}
	for t := range frontierSet {
		if hasChild[t] {
			return fmt.Errorf("oplog: DbgCheck: time %d is in the frontier but has a recorded child", t)
		}
	}
	return nil
}

// checkHistoryLinksSymmetric verifies every ParentIndexes/ChildIndexes
// pair is mutual: if entry B lists A as a parent, A must list B as a
// child, and vice versa.
func checkHistoryLinksSymmetric(l *Log) error {
	entries := l.CG.History.Entries()
	for i, e := range entries {
		for _, pi := range e.ParentIndexes {
			if pi < 0 || pi >= len(entries) {
				return fmt.Errorf("oplog: DbgCheck: entry %d has out-of-range parent index %d", i, pi)
			}
			if !containsInt(entries[pi].ChildIndexes, i) {
				return fmt.Errorf("oplog: DbgCheck: entry %d references parent %d, but %d doesn't list it as a child", i, pi, pi)
			}
		}
	}
	for i, e := range entries {
		for _, ci := range e.ChildIndexes {
			if ci < 0 || ci >= len(entries) {
				return fmt.Errorf("oplog: DbgCheck: entry %d has out-of-range child index %d", i, ci)
			}
			if !containsInt(entries[ci].ParentIndexes, i) {
				return fmt.Errorf("oplog: DbgCheck: entry %d references child %d, but %d doesn't list it as a parent", i, ci, ci)
			}
		}
	}
	return nil
}

// checkRootChildIndexes verifies History.RootChildIndexes is exactly
// the set of entries whose Parents is empty (the entries that descend
// directly from ROOT), in both directions.
func checkRootChildIndexes(l *Log) error {
	entries := l.CG.History.Entries()
	rootChild := make(map[int]bool, len(l.CG.History.RootChildIndexes))
	for _, idx := range l.CG.History.RootChildIndexes {
		if idx < 0 || idx >= len(entries) {
			return fmt.Errorf("oplog: DbgCheck: RootChildIndexes has out-of-range index %d", idx)
		}
		if len(entries[idx].Parents) != 0 {
			return fmt.Errorf("oplog: DbgCheck: entry %d is in RootChildIndexes but has parents %v", idx, entries[idx].Parents)
		}
		rootChild[idx] = true
	}
	for i, e := range entries {
		if len(e.Parents) == 0 && !rootChild[i] {
			return fmt.Errorf("oplog: DbgCheck: entry %d has no parents but is missing from RootChildIndexes", i)
		}
	}
	return nil
}

// checkShadowValidity verifies every entry's recorded Shadow matches
// what History.ShadowFor would compute fresh from its Parents and
// Span.Start — the invariant Insert relies on to decide whether the
// merge fast path may extend an entry without changing its shadow.
func checkShadowValidity(l *Log) error {
	entries := l.CG.History.Entries()
	for i, e := range entries {
		want := l.CG.History.ShadowFor(e.Parents, e.Span.Start)
		if e.Shadow != want {
			return fmt.Errorf("oplog: DbgCheck: entry %d has shadow %d, want %d", i, e.Shadow, want)
		}
	}
	return nil
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// checkAgentTableRoundTrips verifies TimeToCRDTID and CRDTIDToTime
// invert one another for every assigned time.
func checkAgentTableRoundTrips(l *Log) error {
	for t := causalgraph.LV(0); t < causalgraph.LV(l.CG.Len()); t++ {
		id, ok := l.CG.Agents.TimeToCRDTID(t)
		if !ok {
			return fmt.Errorf("oplog: DbgCheck: time %d has no agent assignment", t)
		}
		back, ok := l.CG.Agents.CRDTIDToTime(id)
		if !ok || back != t {
			return fmt.Errorf("oplog: DbgCheck: time %d maps to %v but that maps back to %d", t, id, back)
		}
	}
	return nil
}
