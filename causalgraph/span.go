package causalgraph

import "fmt"

// TimeSpan is a half-open interval [Start, End) of local versions. It
// implements RLEValue so it can be stored directly inside an RLE (the
// agent table's per-agent seq->LV map, for instance).
type TimeSpan struct {
	Start LV
	End   LV
}

// NewTimeSpan builds the span [start, start+length).
func NewTimeSpan(start LV, length int) TimeSpan {
	return TimeSpan{Start: start, End: start + LV(length)}
}

// Len returns the number of versions covered by the span.
func (s TimeSpan) Len() int { return int(s.End - s.Start) }

// Last returns the final (inclusive) time in the span. Panics on an
// empty span, which should never be constructed.
func (s TimeSpan) Last() LV {
	if s.Len() <= 0 {
		panic("causalgraph: Last() on empty TimeSpan")
	}
	return s.End - 1
}

// Contains reports whether t falls inside the span.
func (s TimeSpan) Contains(t LV) bool { return t >= s.Start && t < s.End }

// CanAppend reports whether next immediately continues s, i.e. whether
// the concatenation of the two spans is itself a contiguous span.
func (s TimeSpan) CanAppend(next TimeSpan) bool { return next.Start == s.End }

// Append returns the span obtained by gluing next onto s.
func (s TimeSpan) Append(next TimeSpan) TimeSpan { return TimeSpan{Start: s.Start, End: next.End} }

// Split divides s at offset at, returning the [0, at) and [at, Len())
// halves as independent spans.
func (s TimeSpan) Split(at int) (left, right TimeSpan) {
	cut := s.Start + LV(at)
	return TimeSpan{Start: s.Start, End: cut}, TimeSpan{Start: cut, End: s.End}
}

func (s TimeSpan) String() string { return fmt.Sprintf("[%d, %d)", s.Start, s.End) }

// TimeSpanRev is a TimeSpan tagged with a logical direction, used for
// delete runs that consume document positions right-to-left (a common
// pattern for backspacing).
type TimeSpanRev struct {
	Span TimeSpan
	// Fwd is true when the run logically advances start-to-end in
	// document-position space, false when it runs end-to-start.
	Fwd bool
}

// Len returns the number of versions covered.
func (s TimeSpanRev) Len() int { return s.Span.Len() }

// CanAppend reports whether next continues s in both timeline order
// and logical direction.
func (s TimeSpanRev) CanAppend(next TimeSpanRev) bool {
	if s.Fwd != next.Fwd {
		return false
	}
	if s.Fwd {
		return next.Span.Start == s.Span.End
	}
	// Reverse runs grow backwards in document-position space but are
	// still appended forwards in time: the next op's span must sit
	// immediately to the left of this one's.
	return next.Span.Start == s.Span.Start-LV(next.Span.Len())
}

// Append returns the run obtained by gluing next onto s.
func (s TimeSpanRev) Append(next TimeSpanRev) TimeSpanRev {
	if s.Fwd {
		return TimeSpanRev{Span: TimeSpan{Start: s.Span.Start, End: next.Span.End}, Fwd: true}
	}
	return TimeSpanRev{Span: TimeSpan{Start: next.Span.Start, End: s.Span.End}, Fwd: false}
}

// Split divides s at offset at (counted from the start of the time
// range, not from the document-position direction it runs in).
func (s TimeSpanRev) Split(at int) (left, right TimeSpanRev) {
	l, r := s.Span.Split(at)
	return TimeSpanRev{Span: l, Fwd: s.Fwd}, TimeSpanRev{Span: r, Fwd: s.Fwd}
}

func (s TimeSpanRev) String() string {
	if s.Fwd {
		return s.Span.String()
	}
	return s.Span.String() + " (rev)"
}
