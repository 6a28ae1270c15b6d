package causalgraph

import "sort"

// RLEValue is the capability a value must provide to live inside an
// RLE: enough to know its own length, to decide whether it can be
// glued onto a predecessor, and to be split on read. The container
// calls these blind — it never inspects the concrete type.
//
// Split and Append are pure: they return new values rather than
// mutating the receiver, which keeps every RLEValue implementation a
// plain comparable-by-value struct and sidesteps aliasing the backing
// slice during a read.
type RLEValue[V any] interface {
	// Len reports how many keys this value covers.
	Len() int
	// CanAppend reports whether next is a valid, contiguous
	// continuation of the receiver — both in key-space and in
	// whatever semantic compatibility the value cares about (same
	// agent, same op tag, same content-arena contiguity, same
	// direction...).
	CanAppend(next V) bool
	// Append returns the value obtained by gluing next onto the
	// receiver. Only called when CanAppend(next) held a moment
	// earlier.
	Append(next V) V
	// Split divides the receiver at offset `at`, returning the
	// [0, at) left part and the [at, Len()) right part.
	Split(at int) (left, right V)
}

// KVPair is a single run-length entry: a value positioned at Key,
// logically covering [Key, Key+Val.Len()).
type KVPair[V RLEValue[V]] struct {
	Key int
	Val V
}

func (p KVPair[V]) end() int { return p.Key + p.Val.Len() }

// splitAt returns the [Key, Key+at) and [Key+at, end) halves of p.
func (p KVPair[V]) splitAt(at int) (KVPair[V], KVPair[V]) {
	left, right := p.Val.Split(at)
	return KVPair[V]{Key: p.Key, Val: left}, KVPair[V]{Key: p.Key + at, Val: right}
}

// RLE is a sorted sequence of keyed, length-bearing, mergeable entries.
// It backs the agent table's per-agent map and its inverse
// time-to-agent map in this package, and the oplog package's
// operation store.
//
// Keys strictly increase across entries and entries never overlap.
// Reads may return entries split to exactly the requested sub-range,
// but the container's own storage is never rewritten by a read — only
// Push ever mutates the backing slice.
type RLE[V RLEValue[V]] struct {
	entries []KVPair[V]
}

// NewRLE returns an empty RLE.
func NewRLE[V RLEValue[V]]() *RLE[V] { return &RLE[V]{} }

// Len returns the number of stored runs (not the number of logical
// keys they cover).
func (r *RLE[V]) Len() int { return len(r.entries) }

// Last returns the final stored run, if any.
func (r *RLE[V]) Last() (KVPair[V], bool) {
	if len(r.entries) == 0 {
		var zero KVPair[V]
		return zero, false
	}
	return r.entries[len(r.entries)-1], true
}

// Entries returns the raw backing runs. Callers must treat the result
// as read-only; mutating it bypasses every invariant this type keeps.
func (r *RLE[V]) Entries() []KVPair[V] { return r.entries }

// findIndex returns the storage index of the run containing key, or -1.
func (r *RLE[V]) findIndex(key int) int {
	i := sort.Search(len(r.entries), func(i int) bool {
		return r.entries[i].end() > key
	})
	if i < len(r.entries) && r.entries[i].Key <= key {
		return i
	}
	return -1
}

// FindIndex returns the storage index of the run containing key, or
// -1. Exposed for callers (the history graph) that need to link
// entries by index rather than by copy.
func (r *RLE[V]) FindIndex(key int) int { return r.findIndex(key) }

// At returns a pointer to the run stored at the given storage index.
func (r *RLE[V]) At(idx int) *KVPair[V] { return &r.entries[idx] }

// Find returns the run containing key, or ok=false.
func (r *RLE[V]) Find(key int) (KVPair[V], bool) {
	i := r.findIndex(key)
	if i < 0 {
		var zero KVPair[V]
		return zero, false
	}
	return r.entries[i], true
}

// FindWithOffset returns the run containing key plus the offset of
// key within that run.
func (r *RLE[V]) FindWithOffset(key int) (KVPair[V], int, bool) {
	i := r.findIndex(key)
	if i < 0 {
		var zero KVPair[V]
		return zero, 0, false
	}
	e := r.entries[i]
	return e, key - e.Key, true
}

// FindPackedWithOffset is FindWithOffset, but the returned entry is
// already truncated to start exactly at key (i.e. the left prefix is
// dropped). This mirrors the Rust source's find_packed_with_offset,
// used where the caller only wants everything from key onward.
func (r *RLE[V]) FindPackedWithOffset(key int) (KVPair[V], int, bool) {
	e, offset, ok := r.FindWithOffset(key)
	if !ok || offset == 0 {
		return e, offset, ok
	}
	_, right := e.splitAt(offset)
	return right, 0, true
}

// FindPackedAndSplit returns the (possibly synthetic) sub-entry
// covering exactly [span.Start, span.End). The requested range must
// be fully present in a single underlying run or this panics —
// callers are expected to have validated the range first.
func (r *RLE[V]) FindPackedAndSplit(span TimeSpan) KVPair[V] {
	e, offset, ok := r.FindWithOffset(int(span.Start))
	if !ok {
		panic("causalgraph: FindPackedAndSplit: range not present")
	}
	if offset > 0 {
		_, e = e.splitAt(offset)
	}
	want := span.Len()
	if e.Val.Len() > want {
		e, _ = e.splitAt(want)
	} else if e.Val.Len() < want {
		panic("causalgraph: FindPackedAndSplit: range spans multiple runs")
	}
	return e
}

// Push appends entry, merging it into the last stored run when the
// two are key-contiguous and CanAppend reports compatible. Returns
// whether a merge occurred.
func (r *RLE[V]) Push(entry KVPair[V]) bool {
	if n := len(r.entries); n > 0 {
		last := &r.entries[n-1]
		if last.end() == entry.Key && last.Val.CanAppend(entry.Val) {
			last.Val = last.Val.Append(entry.Val)
			return true
		}
	}
	r.entries = append(r.entries, entry)
	return false
}

// IterRange yields, in key order, the sub-entries covering
// [span.Start, span.End). Entries that straddle a boundary are split
// into owned copies; keys in the range that no stored run covers are
// skipped. Storage is never mutated by this call.
func (r *RLE[V]) IterRange(span TimeSpan) []KVPair[V] {
	var out []KVPair[V]
	pos := span.Start
	for pos < span.End {
		e, offset, ok := r.FindWithOffset(int(pos))
		if !ok {
			next := sort.Search(len(r.entries), func(i int) bool { return r.entries[i].Key > int(pos) })
			if next == len(r.entries) || LV(r.entries[next].Key) >= span.End {
				break
			}
			pos = LV(r.entries[next].Key)
			continue
		}
		if offset > 0 {
			_, e = e.splitAt(offset)
		}
		remaining := int(span.End - pos)
		if e.Val.Len() > remaining {
			e, _ = e.splitAt(remaining)
		}
		out = append(out, e)
		pos += LV(e.Val.Len())
	}
	return out
}

// All returns every stored run, in key order. Equivalent to Entries
// but named to match the iterator-style call sites elsewhere in this
// package.
func (r *RLE[V]) All() []KVPair[V] { return r.entries }
