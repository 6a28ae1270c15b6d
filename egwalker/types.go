// Package egwalker reconstructs document snapshots from an oplog.Log:
// given a frontier, it replays every operation causally reachable from
// it, in an order consistent with the causal graph, and reports the
// resulting document text. It is the one package in this module that
// understands "document" and "position" — oplog and causalgraph only
// ever deal in times, agents, and opaque payload bytes.
package egwalker

import "github.com/arborcrdt/oplog/causalgraph"

// ItemState is the visibility of a single inserted character while a
// Walker replays operations.
type ItemState int

const (
	// NotYetInserted: the insert that created this item hasn't been
	// replayed yet.
	NotYetInserted ItemState = -1
	// Inserted: the item is currently visible in the document.
	Inserted ItemState = 0
	// Deleted: the item has been replayed and then deleted.
	Deleted ItemState = 1
)

// item is one character of document state as tracked during replay.
type item struct {
	opID    causalgraph.LV
	state   ItemState
	content byte
}

// editContext is the scratch state a single replay pass accumulates:
// the ordered list of items making up the document, and a lookup from
// an insert's LV to its position in that list.
type editContext struct {
	items     []item
	byOpID    map[causalgraph.LV]int
	delTarget map[causalgraph.LV]causalgraph.LV
}

func newEditContext() *editContext {
	return &editContext{
		byOpID:    make(map[causalgraph.LV]int),
		delTarget: make(map[causalgraph.LV]causalgraph.LV),
	}
}

// Branch is a checked-out snapshot of the document at a specific
// version.
type Branch struct {
	Snapshot string
	Version  causalgraph.Frontier
}
