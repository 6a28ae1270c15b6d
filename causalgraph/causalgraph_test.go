package causalgraph

import (
	"reflect"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sortedLVs(f Frontier) []LV {
	out := append([]LV(nil), f...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func mustPush(t *testing.T, cg *CausalGraph, agent string, length int, parents Frontier) TimeSpan {
	t.Helper()
	id, seq, span := cg.AllocateLocal(agent, length)
	cg.RecordVersion(id, seq, span, parents)
	return span
}

func TestAllocateLocalAssignsDenseSpans(t *testing.T) {
	cg := New()
	s1 := mustPush(t, cg, "seph", 2, nil)
	if s1.Start != 0 || s1.End != 2 {
		t.Fatalf("first span = %v, want [0,2)", s1)
	}
	s2 := mustPush(t, cg, "mike", 3, Frontier{s1.Last()})
	if s2.Start != 2 || s2.End != 5 {
		t.Fatalf("second span = %v, want [2,5)", s2)
	}
	if cg.NextLV() != 5 {
		t.Fatalf("NextLV() = %d, want 5", cg.NextLV())
	}
}

func TestAgentTableRoundTrip(t *testing.T) {
	cg := New()
	mustPush(t, cg, "seph", 2, nil)
	mustPush(t, cg, "mike", 1, Frontier{1})

	id, ok := cg.Agents.TimeToCRDTID(0)
	if !ok || id.Seq != 0 {
		t.Fatalf("TimeToCRDTID(0) = %v, %v", id, ok)
	}
	name := cg.Agents.AgentName(id.Agent)
	if name != "seph" {
		t.Fatalf("AgentName = %q, want seph", name)
	}

	lv, ok := cg.Agents.CRDTIDToTime(CRDTID{Agent: id.Agent, Seq: 1})
	if !ok || lv != 1 {
		t.Fatalf("CRDTIDToTime round trip = %v, %v, want 1, true", lv, ok)
	}

	rv := cg.Agents.ToRemote(id)
	if rv.Agent != "seph" || rv.Seq != 0 {
		t.Fatalf("ToRemote = %v", rv)
	}
}

func TestFrontierAdvancesPastLinearHistory(t *testing.T) {
	cg := New()
	mustPush(t, cg, "seph", 1, nil)
	mustPush(t, cg, "seph", 1, Frontier{0})
	mustPush(t, cg, "seph", 1, Frontier{1})

	if got := sortedLVs(cg.Frontier); !reflect.DeepEqual(got, []LV{2}) {
		t.Fatalf("frontier = %v, want [2]", got)
	}
}

func TestFrontierBranchesOnConcurrentEdits(t *testing.T) {
	cg := New()
	mustPush(t, cg, "seph", 1, nil) // time 0

	mustPush(t, cg, "seph", 1, Frontier{0}) // time 1, concurrent with time 2
	mustPush(t, cg, "mike", 1, Frontier{0}) // time 2, concurrent with time 1

	got := sortedLVs(cg.Frontier)
	if !reflect.DeepEqual(got, []LV{1, 2}) {
		t.Fatalf("frontier = %v, want [1 2]", got)
	}
}

func TestHistoryMergesLinearRunsIntoOneEntry(t *testing.T) {
	cg := New()
	mustPush(t, cg, "seph", 1, nil)
	mustPush(t, cg, "seph", 1, Frontier{0})
	mustPush(t, cg, "seph", 1, Frontier{1})

	entries := cg.History.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected the three contiguous single-parent pushes to merge into one run, got %d entries: %+v", len(entries), entries)
	}
	if entries[0].Span != (TimeSpan{Start: 0, End: 3}) {
		t.Fatalf("merged span = %v, want [0,3)", entries[0].Span)
	}
}

func TestHistorySplitsOnConcurrentBranch(t *testing.T) {
	cg := New()
	mustPush(t, cg, "seph", 1, nil)           // 0
	mustPush(t, cg, "seph", 1, Frontier{0})   // 1
	mustPush(t, cg, "mike", 1, Frontier{0})   // 2, concurrent with 1
	mustPush(t, cg, "seph", 1, Frontier{1, 2}) // 3, merges 1 and 2

	entries := cg.History.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 history entries (time 1 folds into time 0's run; the branch and the merge point can't), got %d: %+v", len(entries), entries)
	}
	last := entries[len(entries)-1]
	if len(last.Parents) != 2 {
		t.Fatalf("merge entry parents = %v, want 2 parents", last.Parents)
	}
}

func TestContainsVersionFollowsShadowAcrossMerge(t *testing.T) {
	cg := New()
	mustPush(t, cg, "seph", 1, nil)             // 0
	mustPush(t, cg, "seph", 1, Frontier{0})     // 1
	mustPush(t, cg, "mike", 1, Frontier{0})     // 2
	mustPush(t, cg, "seph", 1, Frontier{1, 2})  // 3

	for _, ancestor := range []LV{0, 1, 2} {
		if !cg.ContainsVersion(ancestor, Frontier{3}) {
			t.Errorf("ContainsVersion(%d, [3]) = false, want true", ancestor)
		}
	}
}

func TestCompareVersionsClassifiesRelations(t *testing.T) {
	cg := New()
	mustPush(t, cg, "seph", 1, nil)           // 0
	mustPush(t, cg, "seph", 1, Frontier{0})   // 1
	mustPush(t, cg, "mike", 1, Frontier{0})   // 2

	if rel := cg.CompareVersions(Frontier{1}, Frontier{0}); rel != RelDominates {
		t.Errorf("CompareVersions([1],[0]) = %v, want RelDominates", rel)
	}
	if rel := cg.CompareVersions(Frontier{0}, Frontier{1}); rel != RelDominatedBy {
		t.Errorf("CompareVersions([0],[1]) = %v, want RelDominatedBy", rel)
	}
	if rel := cg.CompareVersions(Frontier{1}, Frontier{2}); rel != RelConcurrent {
		t.Errorf("CompareVersions([1],[2]) = %v, want RelConcurrent", rel)
	}
	if rel := cg.CompareVersions(Frontier{1}, Frontier{1}); rel != RelEqual {
		t.Errorf("CompareVersions([1],[1]) = %v, want RelEqual", rel)
	}
}

func TestFindDominatorsDropsAncestors(t *testing.T) {
	cg := New()
	mustPush(t, cg, "seph", 1, nil)           // 0
	mustPush(t, cg, "seph", 1, Frontier{0})   // 1
	mustPush(t, cg, "mike", 1, Frontier{0})   // 2

	got := cg.FindDominators([]LV{0, 1, 2})
	want := []LV{1, 2}
	if !reflect.DeepEqual([]LV(got), want) {
		t.Fatalf("FindDominators = %v, want %v", got, want)
	}
}

func TestDiffFindsSymmetricDifference(t *testing.T) {
	cg := New()
	mustPush(t, cg, "seph", 1, nil)           // 0
	mustPush(t, cg, "seph", 1, Frontier{0})   // 1
	mustPush(t, cg, "mike", 1, Frontier{0})   // 2

	onlyA, onlyB := cg.Diff(Frontier{1}, Frontier{2})
	if !reflect.DeepEqual(onlyA, []LV{1}) {
		t.Fatalf("onlyA = %v, want [1]", onlyA)
	}
	if !reflect.DeepEqual(onlyB, []LV{2}) {
		t.Fatalf("onlyB = %v, want [2]", onlyB)
	}
}

func TestSummarizeVersionGroupsByAgent(t *testing.T) {
	cg := New()
	mustPush(t, cg, "seph", 2, nil)           // 0,1
	mustPush(t, cg, "mike", 1, Frontier{1})   // 2

	summary := cg.SummarizeVersion(Frontier{2})
	want := VersionSummary{
		"seph": [][2]int{{0, 2}},
		"mike": [][2]int{{0, 1}},
	}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Fatalf("SummarizeVersion mismatch (-want +got):\n%s", diff)
	}
}

func TestTxnsBetweenReturnsOnlyNovelSuffix(t *testing.T) {
	cg := New()
	mustPush(t, cg, "seph", 2, nil)         // 0,1
	a := Frontier{1}
	mustPush(t, cg, "seph", 1, Frontier{1}) // 2
	mustPush(t, cg, "mike", 1, Frontier{1}) // 3, concurrent with 2

	ranges := cg.History.TxnsBetween(a, cg.Frontier)
	var got []LV
	for _, r := range ranges {
		for t := r.Span.Start; t < r.Span.End; t++ {
			got = append(got, t)
		}
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	if !reflect.DeepEqual(got, []LV{2, 3}) {
		t.Fatalf("TxnsBetween(%v, %v) covered %v, want [2 3]", a, cg.Frontier, got)
	}
}

func TestRootChildIndexesTracksRootDescendants(t *testing.T) {
	cg := New()
	mustPush(t, cg, "seph", 1, nil)         // 0: root entry
	mustPush(t, cg, "seph", 1, Frontier{0}) // 1: folds into entry 0 via the merge fast path
	mustPush(t, cg, "mike", 1, nil)         // 2: a second, concurrent root entry

	if len(cg.History.RootChildIndexes) != 2 {
		t.Fatalf("RootChildIndexes = %v, want 2 entries", cg.History.RootChildIndexes)
	}
	for _, idx := range cg.History.RootChildIndexes {
		if len(cg.History.Entries()[idx].Parents) != 0 {
			t.Fatalf("entry %d in RootChildIndexes has non-empty parents", idx)
		}
	}
}
