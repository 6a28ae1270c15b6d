package causalgraph

import "sort"

// CausalGraph composes the three pieces of causal bookkeeping this
// package provides — the agent table, the history DAG, and the
// current frontier — into the single object an operation log pushes
// new versions through. It never looks at operation payloads; it only
// ever deals in times, parents, and agents.
type CausalGraph struct {
	Agents   *AgentTable
	History  *History
	Frontier Frontier

	nextLV LV
}

// New returns an empty causal graph.
func New() *CausalGraph {
	return &CausalGraph{
		Agents:  NewAgentTable(),
		History: NewHistory(),
	}
}

// NextLV returns the local time that would be assigned to the next
// pushed operation.
func (cg *CausalGraph) NextLV() LV { return cg.nextLV }

// Len returns the number of local times assigned so far.
func (cg *CausalGraph) Len() int { return int(cg.nextLV) }

// AllocateLocal reserves a contiguous range of length new local times
// for agentName, along with the sequence range that follows whatever
// that agent has already been assigned. It performs no bookkeeping
// beyond the reservation itself — call RecordVersion with the result
// to actually register it against the history graph and frontier.
func (cg *CausalGraph) AllocateLocal(agentName string, length int) (agent AgentID, seqStart int, span TimeSpan) {
	agent = cg.Agents.GetOrCreateAgent(agentName)
	seqStart = cg.Agents.NextSeqForAgent(agent)
	span = NewTimeSpan(cg.nextLV, length)
	return
}

// RecordVersion registers a span already allocated by AllocateLocal:
// it updates the agent table's forward/inverse indexes, inserts the
// corresponding history entry against parents, advances the frontier,
// and bumps NextLV past the new span.
func (cg *CausalGraph) RecordVersion(agent AgentID, seqStart int, span TimeSpan, parents Frontier) {
	cg.Agents.RegisterAssignment(agent, seqStart, span)
	cg.History.Insert(parents, span)
	cg.Frontier = AdvanceByKnownRun(cg.Frontier, parents, span)
	if span.End > cg.nextLV {
		cg.nextLV = span.End
	}
}

// ParentsAtTime returns the parent frontier of the version assigned
// local time t.
func (cg *CausalGraph) ParentsAtTime(t LV) (Frontier, bool) {
	return cg.History.ParentsAt(t)
}

// ContainsVersion reports whether t is a known ancestor of (or equal
// to) any time in the frontier `at`.
func (cg *CausalGraph) ContainsVersion(t LV, at Frontier) bool {
	for _, tip := range at {
		if cg.History.IsAncestor(t, tip) {
			return true
		}
	}
	return false
}

// Relation describes how two frontiers relate to one another in the
// causal partial order.
type Relation int

const (
	// RelEqual: the two frontiers name the same set of times.
	RelEqual Relation = iota
	// RelDominates: a happens strictly after b (b is a subset of a's
	// ancestry, a is not a subset of b's).
	RelDominates
	// RelDominatedBy: the inverse of RelDominates.
	RelDominatedBy
	// RelConcurrent: neither frontier is an ancestor of the other.
	RelConcurrent
)

// CompareVersions classifies the relationship between frontiers a and
// b.
func (cg *CausalGraph) CompareVersions(a, b Frontier) Relation {
	if a.Equal(b) {
		return RelEqual
	}
	aDominatesB := cg.frontierContains(a, b)
	bDominatesA := cg.frontierContains(b, a)
	switch {
	case aDominatesB && !bDominatesA:
		return RelDominates
	case bDominatesA && !aDominatesB:
		return RelDominatedBy
	default:
		return RelConcurrent
	}
}

// frontierContains reports whether every time in b is a causal
// ancestor of (or present in) a.
func (cg *CausalGraph) frontierContains(a, b Frontier) bool {
	for _, t := range b {
		if !cg.ContainsVersion(t, a) {
			return false
		}
	}
	return true
}

// FindDominators reduces a set of times to its antichain of maximal
// elements: the subset no member of which is a causal ancestor of
// another member. This is how a frontier is derived from an arbitrary
// set of "interesting" times.
func (cg *CausalGraph) FindDominators(times []LV) Frontier {
	if len(times) == 0 {
		return nil
	}
	sorted := make([]LV, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	var result Frontier
	for _, t := range sorted {
		dominated := false
		for _, kept := range result {
			if cg.History.IsAncestor(t, kept) {
				dominated = true
				break
			}
		}
		if !dominated {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Diff returns the times reachable from a but not from b, and the
// times reachable from b but not from a — the two sides of a
// symmetric causal difference, used to compute exactly what one
// replica needs to send another during replication.
func (cg *CausalGraph) Diff(a, b Frontier) (onlyA, onlyB []LV) {
	aAncestors := cg.ancestorSet(a)
	bAncestors := cg.ancestorSet(b)
	for t := range aAncestors {
		if !bAncestors[t] {
			onlyA = append(onlyA, t)
		}
	}
	for t := range bAncestors {
		if !aAncestors[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Slice(onlyA, func(i, j int) bool { return onlyA[i] < onlyA[j] })
	sort.Slice(onlyB, func(i, j int) bool { return onlyB[i] < onlyB[j] })
	return onlyA, onlyB
}

// ancestorSet walks backward from every tip in f and returns the full
// set of times reachable (inclusive). Used by Diff; callers needing
// just a membership test should prefer ContainsVersion, which can
// stop early via the shadow shortcut.
func (cg *CausalGraph) ancestorSet(f Frontier) map[LV]bool {
	return cg.History.ancestorSet(f)
}

// AncestorsSorted returns every time causally reachable from f
// (inclusive), in ascending order. Because a time is always assigned
// strictly after every one of its parents, ascending order here is
// always a valid topological replay order — callers that need to
// reconstruct document state by replaying operations (egwalker) use
// this instead of re-deriving a topological sort themselves.
func (cg *CausalGraph) AncestorsSorted(f Frontier) []LV {
	set := cg.ancestorSet(f)
	out := make([]LV, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// VersionSummary is a compact, per-agent description of a frontier or
// a full version, expressed as agent-name-keyed sequence ranges rather
// than raw local times.
type VersionSummary map[string][][2]int

// SummarizeVersion converts a frontier into a VersionSummary by
// walking each tip's ancestry and collapsing it into per-agent
// sequence ranges.
func (cg *CausalGraph) SummarizeVersion(f Frontier) VersionSummary {
	ancestors := cg.ancestorSet(f)
	times := make([]LV, 0, len(ancestors))
	for t := range ancestors {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	summary := make(VersionSummary)
	for _, t := range times {
		id, ok := cg.Agents.TimeToCRDTID(t)
		if !ok {
			continue
		}
		name := cg.Agents.AgentName(id.Agent)
		ranges := summary[name]
		if n := len(ranges); n > 0 && ranges[n-1][1] == id.Seq {
			ranges[n-1][1] = id.Seq + 1
		} else {
			ranges = append(ranges, [2]int{id.Seq, id.Seq + 1})
		}
		summary[name] = ranges
	}
	return summary
}
