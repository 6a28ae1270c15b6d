package causalgraph

import "sort"

// Frontier is the set of times that currently have no known children:
// the "tips" of the causal graph, also called the heads or the
// version. In the overwhelming common case of a single author editing
// linearly, or of one replica merging another's changes, a frontier
// has exactly one element; it only grows past that while concurrent
// edits exist and haven't yet been merged. That skew is why this
// stays a plain sorted slice rather than an RLE container: there is
// essentially never a long run to compress.
type Frontier []LV

// RootFrontier is the frontier of an empty graph.
func RootFrontier() Frontier { return nil }

// sortedCopy returns a sorted, de-duplicated copy of f.
func sortedCopy(f Frontier) Frontier {
	out := make(Frontier, len(f))
	copy(out, f)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	out = dedupSorted(out)
	return out
}

func dedupSorted(f Frontier) Frontier {
	if len(f) < 2 {
		return f
	}
	w := 1
	for r := 1; r < len(f); r++ {
		if f[r] != f[w-1] {
			f[w] = f[r]
			w++
		}
	}
	return f[:w]
}

// Contains reports whether t is one of the frontier's times.
func (f Frontier) Contains(t LV) bool {
	i := sort.Search(len(f), func(i int) bool { return f[i] >= t })
	return i < len(f) && f[i] == t
}

// Equal reports whether f and other name the same set of times,
// independent of slice order.
func (f Frontier) Equal(other Frontier) bool {
	a, b := sortedCopy(f), sortedCopy(other)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AdvanceByKnownRun folds a newly-pushed, contiguous run of times
// [span.Start, span.End) into the frontier, given the parents that
// run was created against. Every parent is removed (it's no longer a
// tip, this run is its child) and the run's own last time becomes the
// new sole entry contributed by this push. Parents not currently
// present in f are left untouched — they may belong to a different
// branch, or may already have been superseded.
func AdvanceByKnownRun(f Frontier, parents Frontier, span TimeSpan) Frontier {
	kept := make(Frontier, 0, len(f)+1)
	for _, t := range f {
		if !containsLV(parents, t) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, span.Last())
	return sortedCopy(kept)
}

func containsLV(f Frontier, t LV) bool {
	for _, x := range f {
		if x == t {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of f.
func (f Frontier) Clone() Frontier {
	out := make(Frontier, len(f))
	copy(out, f)
	return out
}
