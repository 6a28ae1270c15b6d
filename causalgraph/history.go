package causalgraph

import "sort"

// HistoryEntry is one run of the causal graph's DAG: a contiguous
// span of local time that shares the same parent set and was never
// interrupted by a concurrent branch joining in the middle.
//
// Shadow is the earliest time this entry can reach by walking
// single-parent links backward without ever crossing a point where
// two or more branches merge. A query "is t an ancestor of this
// entry's span" can answer yes immediately whenever t falls in
// [Shadow, Span.End) without walking the graph at all; diamond-types'
// history.rs calls this the entry's shadow for exactly that reason.
type HistoryEntry struct {
	Span    TimeSpan
	Parents Frontier
	Shadow  LV

	// ParentIndexes/ChildIndexes link entries by position in History.entries
	// rather than by embedded pointers, so the slice can reallocate on
	// growth without invalidating any cross-reference.
	ParentIndexes []int
	ChildIndexes  []int
}

// History is the append-only sequence of HistoryEntry runs making up
// the causal graph's DAG.
type History struct {
	entries []HistoryEntry

	// RootChildIndexes holds the index of every entry whose Parents is
	// empty — the entries that descend directly from the virtual ROOT
	// origin rather than from another recorded version. Kept as its
	// own index (rather than re-scanning entries for an empty Parents
	// slice) because it is the one piece of history bookkeeping that
	// can't be recovered by walking ParentIndexes/ChildIndexes alone:
	// ROOT itself has no entry to hold a ChildIndexes back-reference.
	RootChildIndexes []int
}

// NewHistory returns an empty history.
func NewHistory() *History { return &History{} }

// Entries returns the backing slice of runs, in time order. Treat as
// read-only.
func (h *History) Entries() []HistoryEntry { return h.entries }

// findEntryIndex returns the index of the run containing t, or -1.
func (h *History) findEntryIndex(t LV) int {
	i := sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].Span.End > t
	})
	if i < len(h.entries) && h.entries[i].Span.Start <= t {
		return i
	}
	return -1
}

// EntryContaining returns the run containing t.
func (h *History) EntryContaining(t LV) (HistoryEntry, bool) {
	i := h.findEntryIndex(t)
	if i < 0 {
		var zero HistoryEntry
		return zero, false
	}
	return h.entries[i], true
}

// ParentsAt returns the parent frontier of the operation assigned
// time t: the times that immediately precede it in the graph.
// Mid-run times (not the run's first element) have exactly one
// parent, the preceding time in the same run.
func (h *History) ParentsAt(t LV) (Frontier, bool) {
	i := h.findEntryIndex(t)
	if i < 0 {
		return nil, false
	}
	e := h.entries[i]
	if t == e.Span.Start {
		return e.Parents.Clone(), true
	}
	return Frontier{t - 1}, true
}

// shadowFor computes the shadow a new entry with the given parents
// would start from, before that entry's own span is known to extend
// it. A single parent that is the time immediately before the new
// entry (and so the last position of its own run) lets the new entry
// inherit that run's shadow; any other shape (multiple parents, a
// parent further back, or no parents at all) resets the shadow to
// point at the new entry itself, or to ROOT when the new entry starts
// at time 0, since crossing a branch point is exactly what shadow is
// meant to stop at.
//
// ShadowFor exposes the same computation for invariant checking: the
// shadow recorded against any existing entry must equal
// ShadowFor(entry.Parents, entry.Span.Start), since Insert never
// revises an entry's Shadow after creation (the merge fast path only
// ever extends an entry whose shadow would be unchanged).
func (h *History) ShadowFor(parents Frontier, selfStart LV) LV {
	return h.shadowFor(parents, selfStart)
}

func (h *History) shadowFor(parents Frontier, selfStart LV) LV {
	if len(parents) == 0 {
		if selfStart == 0 {
			return ROOT
		}
		return selfStart
	}
	if len(parents) == 1 {
		p := parents[0]
		i := h.findEntryIndex(p)
		if i >= 0 && p == selfStart-1 {
			e := h.entries[i]
			if p == e.Span.Last() {
				return e.Shadow
			}
		}
	}
	return selfStart
}

// Insert records a new run [span.Start, span.End) caused by parents.
// It either extends the most recent entry in place (the fast path,
// taken only when the run is time-contiguous with that entry, has
// that entry's own last time as its sole parent, and the resulting
// shadow would be unchanged) or appends a brand new entry and wires
// its ParentIndexes/ChildIndexes against whatever runs its parents
// belong to.
func (h *History) Insert(parents Frontier, span TimeSpan) {
	shadow := h.shadowFor(parents, span.Start)

	if n := len(h.entries); n > 0 {
		last := &h.entries[n-1]
		if last.Span.End == span.Start &&
			len(parents) == 1 && parents[0] == last.Span.Last() &&
			shadow == last.Shadow {
			last.Span.End = span.End
			return
		}
	}

	entry := HistoryEntry{
		Span:    span,
		Parents: parents.Clone(),
		Shadow:  shadow,
	}
	newIdx := len(h.entries)
	for _, p := range parents {
		pi := h.findEntryIndex(p)
		if pi < 0 {
			panic("causalgraph: Insert: parent time not found in history")
		}
		entry.ParentIndexes = append(entry.ParentIndexes, pi)
		h.entries[pi].ChildIndexes = append(h.entries[pi].ChildIndexes, newIdx)
	}
	if len(parents) == 0 {
		h.RootChildIndexes = append(h.RootChildIndexes, newIdx)
	}
	h.entries = append(h.entries, entry)
}

// IsAncestor reports whether t is a causal ancestor of (or equal to)
// at, by walking the graph backward from at's run. The shadow
// shortcut lets most queries terminate without visiting every
// intermediate entry.
//
// Every entry is bounded at the time that actually reaches it, not at
// the entry's current Span.End: at's own entry at at+1, and an entry
// reached through ParentIndexes at the matching parent time plus one.
// An entry can extend past that time — the merge fast path keeps
// growing the most recent entry in place as new same-agent runs
// arrive, and a parent may sit mid-run in an entry that had already
// grown past it — so its full span would count later, concurrent times
// as ancestors. An entry reached again along a path that goes further
// into it is revisited with the larger bound.
func (h *History) IsAncestor(t, at LV) bool {
	if t == ROOT {
		return true
	}
	if t == at {
		return true
	}
	if t > at {
		return false
	}
	startIdx := h.findEntryIndex(at)
	if startIdx < 0 {
		return false
	}
	type frame struct {
		idx   int
		limit LV
	}
	visited := make(map[int]LV)
	stack := []frame{{idx: startIdx, limit: at + 1}}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[fr.idx] >= fr.limit {
			continue
		}
		visited[fr.idx] = fr.limit
		e := h.entries[fr.idx]
		end := e.Span.End
		if fr.limit < end {
			end = fr.limit
		}
		if t >= e.Shadow && t < end {
			return true
		}
		if t >= e.Span.Start && t < end {
			return true
		}
		for k, pi := range e.ParentIndexes {
			stack = append(stack, frame{idx: pi, limit: e.Parents[k] + 1})
		}
	}
	return false
}

// walkBackFrom walks the graph backward from every tip in f, visiting
// each reachable entry. limit is the exclusive upper bound visit
// should treat that entry's span as ending at: tip+1 for the entry
// directly holding a frontier tip, or parent time+1 for an entry
// reached through ParentIndexes (never the entry's current Span.End,
// per the same argument as IsAncestor). An entry reached again with a
// larger limit is visited again with that limit, so visit can see the
// same index more than once, each time with a larger limit.
func (h *History) walkBackFrom(f Frontier, visit func(idx int, e HistoryEntry, limit LV)) {
	type frame struct {
		idx   int
		limit LV
	}
	var stack []frame
	for _, tip := range f {
		if idx := h.findEntryIndex(tip); idx >= 0 {
			stack = append(stack, frame{idx: idx, limit: tip + 1})
		}
	}
	visited := make(map[int]LV)
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[fr.idx] >= fr.limit {
			continue
		}
		visited[fr.idx] = fr.limit
		e := h.entries[fr.idx]
		visit(fr.idx, e, fr.limit)
		for k, pi := range e.ParentIndexes {
			stack = append(stack, frame{idx: pi, limit: e.Parents[k] + 1})
		}
	}
}

// ancestorSet walks backward from every tip in f and returns the full
// set of times reachable (inclusive), clipped in every entry to the
// times actually reached in it.
func (h *History) ancestorSet(f Frontier) map[LV]bool {
	seen := make(map[LV]bool)
	h.walkBackFrom(f, func(_ int, e HistoryEntry, limit LV) {
		end := e.Span.End
		if limit < end {
			end = limit
		}
		for t := e.Span.Start; t < end; t++ {
			seen[t] = true
		}
	})
	return seen
}

// TxnRange is one run returned by TxnsBetween: the entry it belongs to
// (unclipped, so its Parents/Shadow/indexes are still meaningful) and
// the sub-span of that entry that is actually novel.
type TxnRange struct {
	Entry HistoryEntry
	Span  TimeSpan
}

// TxnsBetween returns every run of operations causally reachable from
// b but not from a, in ascending time order, clipped to exactly the
// sub-range of each entry that is novel. This is the two-frontier
// reachability primitive replication is built on: "what does a replica
// holding version a need in order to catch up to version b" — not a
// flat numeric [lo, hi) clip over raw local time.
//
// Because every HistoryEntry is a maximal single-parent chain (the
// shadow/merge-fast-path invariant Insert maintains), "is ancestor of
// a" is monotone along an entry's span: once a time within the entry
// stops being an ancestor of a, every later time in that same entry is
// also not one, so a single forward scan per entry finds the cutoff.
func (h *History) TxnsBetween(a, b Frontier) []TxnRange {
	aAncestors := h.ancestorSet(a)

	type candidate struct {
		idx   int
		entry HistoryEntry
		end   LV
	}
	var candidates []candidate
	seen := make(map[int]int)
	h.walkBackFrom(b, func(idx int, e HistoryEntry, limit LV) {
		end := e.Span.End
		if limit < end {
			end = limit
		}
		if i, ok := seen[idx]; ok {
			candidates[i].end = end // a revisit always carries a larger limit
			return
		}
		seen[idx] = len(candidates)
		candidates = append(candidates, candidate{idx: idx, entry: e, end: end})
	})
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].idx < candidates[j].idx })

	var out []TxnRange
	for _, c := range candidates {
		start := c.entry.Span.Start
		for start < c.end && aAncestors[start] {
			start++
		}
		if start >= c.end {
			continue
		}
		out = append(out, TxnRange{Entry: c.entry, Span: TimeSpan{Start: start, End: c.end}})
	}
	return out
}
