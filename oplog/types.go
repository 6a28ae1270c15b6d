// Package oplog implements the operation log facade of a collaborative
// editing engine: it stores the actual insert/delete payloads authored
// by every agent, and composes the causalgraph package's agent table,
// history DAG, and frontier to give every payload a place in the
// causal order.
//
// This package never reconstructs document text itself — that is the
// job of the egwalker package, which reads an oplog.Log's operations
// and history to compute what a document looked like at any version.
// oplog only ever answers "what was said, and in what order."
package oplog

import "github.com/arborcrdt/oplog/causalgraph"

// OpKind distinguishes an insertion from a deletion.
type OpKind uint8

const (
	OpIns OpKind = iota
	OpDel
)

func (k OpKind) String() string {
	if k == OpIns {
		return "ins"
	}
	return "del"
}

// OperationInternal is the RLE-packed, content-free record of one run
// of operations: its kind, the document position it was applied at,
// and where its payload bytes live in the content arena. The actual
// inserted or deleted text is kept out of this struct so that runs of
// adjacent same-kind operations can merge into a single entry
// regardless of how long their combined text is.
type OperationInternal struct {
	Kind   OpKind
	Length int
	Pos    int
	// Fwd is only meaningful for OpDel: true when the run deletes
	// forward (repeated delete-key presses, position held fixed),
	// false when it deletes backward (repeated backspaces, position
	// decreasing). Matches TimeSpanRev's direction flag.
	Fwd bool
	// ArenaPos is the offset into the insert or delete content arena
	// (whichever Kind selects) where this run's bytes begin.
	ArenaPos int
}

func (o OperationInternal) Len() int { return o.Length }

func (o OperationInternal) CanAppend(next OperationInternal) bool {
	if o.Kind != next.Kind || next.ArenaPos != o.ArenaPos+o.Length {
		return false
	}
	if o.Kind == OpIns {
		return next.Pos == o.Pos+o.Length
	}
	if o.Fwd != next.Fwd {
		return false
	}
	if o.Fwd {
		return next.Pos == o.Pos
	}
	return next.Pos == o.Pos-o.Length
}

func (o OperationInternal) Append(next OperationInternal) OperationInternal {
	// Pos always names the position of the run's first (chronologically
	// earliest) element, which is o's own Pos regardless of kind or
	// direction — growing Length is the only change appending next
	// makes. A backward-delete run's later elements recover their
	// positions through Split's o.Pos-at arithmetic, not through a
	// stored Pos that tracks the tail.
	merged := o
	merged.Length += next.Length
	return merged
}

func (o OperationInternal) Split(at int) (left, right OperationInternal) {
	left, right = o, o
	left.Length = at
	right.Length = o.Length - at
	right.ArenaPos = o.ArenaPos + at
	switch {
	case o.Kind == OpIns:
		right.Pos = o.Pos + at
	case o.Kind == OpDel && o.Fwd:
		// position held fixed across the whole run; both halves keep it.
	default: // backward delete
		right.Pos = o.Pos - at
	}
	return left, right
}

// Operation is the fully materialized view of a run: everything in
// OperationInternal plus its literal content, resolved from whichever
// arena it lives in. This is what IterOps and OpsInRange hand back to
// callers.
type Operation struct {
	Span    causalgraph.TimeSpan
	Kind    OpKind
	Pos     int
	Fwd     bool
	Content string
}

// OpContents is the tagged-union payload carried by an ExtOp: exactly
// one of InsertContent or DeleteContent implements it.
type OpContents interface {
	isOpContents()
}

// InsertContent is the payload of a wire-format insert.
type InsertContent struct {
	Pos     int
	Content string
}

func (InsertContent) isOpContents() {}

// DeleteContent is the payload of a wire-format delete.
type DeleteContent struct {
	Pos int
	Fwd bool
	Len int
}

func (DeleteContent) isOpContents() {}
