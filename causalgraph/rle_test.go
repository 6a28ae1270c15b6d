package causalgraph

import (
	"reflect"
	"testing"
)

func TestRLEPushMergesContiguousRuns(t *testing.T) {
	r := NewRLE[TimeSpan]()
	merged := r.Push(KVPair[TimeSpan]{Key: 0, Val: TimeSpan{Start: 10, End: 12}})
	if merged {
		t.Fatalf("first push reported a merge")
	}
	merged = r.Push(KVPair[TimeSpan]{Key: 2, Val: TimeSpan{Start: 12, End: 15}})
	if !merged {
		t.Fatalf("expected contiguous push to merge")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 merged entry", r.Len())
	}
	e, _ := r.Last()
	if e.Val != (TimeSpan{Start: 10, End: 15}) {
		t.Fatalf("merged value = %v, want [10,15)", e.Val)
	}
}

func TestRLEPushKeepsSeparateNonContiguousRuns(t *testing.T) {
	r := NewRLE[TimeSpan]()
	r.Push(KVPair[TimeSpan]{Key: 0, Val: TimeSpan{Start: 0, End: 2}})
	r.Push(KVPair[TimeSpan]{Key: 5, Val: TimeSpan{Start: 10, End: 11}})
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
}

func TestRLEFindWithOffset(t *testing.T) {
	r := NewRLE[TimeSpan]()
	r.Push(KVPair[TimeSpan]{Key: 0, Val: TimeSpan{Start: 100, End: 105}})

	e, offset, ok := r.FindWithOffset(3)
	if !ok {
		t.Fatalf("FindWithOffset(3) not found")
	}
	if offset != 3 || e.Val.Start != 100 {
		t.Fatalf("got offset=%d val=%v", offset, e.Val)
	}

	if _, _, ok := r.FindWithOffset(5); ok {
		t.Fatalf("FindWithOffset(5) should miss, key range is [0,5)")
	}
}

func TestRLEFindPackedAndSplit(t *testing.T) {
	r := NewRLE[TimeSpan]()
	r.Push(KVPair[TimeSpan]{Key: 0, Val: TimeSpan{Start: 50, End: 60}})

	got := r.FindPackedAndSplit(TimeSpan{Start: 2, End: 5})
	want := KVPair[TimeSpan]{Key: 2, Val: TimeSpan{Start: 52, End: 55}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindPackedAndSplit = %+v, want %+v", got, want)
	}
}

func TestRLEIterRangeSplitsBoundaryEntries(t *testing.T) {
	r := NewRLE[TimeSpan]()
	r.Push(KVPair[TimeSpan]{Key: 0, Val: TimeSpan{Start: 0, End: 4}})
	r.Push(KVPair[TimeSpan]{Key: 10, Val: TimeSpan{Start: 20, End: 23}})

	got := r.IterRange(TimeSpan{Start: 2, End: 12})
	if len(got) != 2 {
		t.Fatalf("IterRange returned %d entries, want 2: %+v", len(got), got)
	}
	if got[0].Val != (TimeSpan{Start: 2, End: 4}) {
		t.Fatalf("first piece = %v", got[0].Val)
	}
	if got[1].Val != (TimeSpan{Start: 20, End: 22}) {
		t.Fatalf("second piece = %v", got[1].Val)
	}
}
