package egwalker

import (
	"fmt"

	"github.com/arborcrdt/oplog/causalgraph"
	"github.com/arborcrdt/oplog/oplog"
)

// Walker reconstructs document state from an oplog.Log. It holds no
// causal bookkeeping of its own — every query re-derives state by
// replaying the log's operations in ascending local-time order, which
// is always a valid topological order since an operation's local time
// is assigned strictly after every one of its parents.
//
// This trades the incremental advance/retreat bookkeeping a
// production merge engine would keep (to avoid re-replaying history
// on every checkout) for a much smaller surface: Checkout is always
// correct for any requested version, and there's no persistent replay
// state that could drift out of sync with the log it reads from.
type Walker struct {
	Log *oplog.Log
}

// New returns a walker over log.
func New(log *oplog.Log) *Walker {
	return &Walker{Log: log}
}

// Checkout replays every operation causally reachable from target and
// returns the resulting document text.
func (w *Walker) Checkout(target causalgraph.Frontier) (*Branch, error) {
	ctx := newEditContext()
	for _, t := range w.Log.CG.AncestorsSorted(target) {
		if err := w.applyOp(ctx, t); err != nil {
			return nil, fmt.Errorf("egwalker: checkout: %w", err)
		}
	}
	return &Branch{Snapshot: render(ctx), Version: target}, nil
}

// Snapshot is a convenience for Checkout(w.Log.Frontier()): the
// document as it stands at the log's current tips.
func (w *Walker) Snapshot() (*Branch, error) {
	return w.Checkout(w.Log.Frontier())
}

// applyOp replays the single operation at local time t against ctx.
func (w *Walker) applyOp(ctx *editContext, t causalgraph.LV) error {
	ops := w.Log.OpsInRange(causalgraph.NewTimeSpan(t, 1))
	if len(ops) != 1 {
		return fmt.Errorf("no operation recorded at time %d", t)
	}
	op := ops[0]

	switch op.Kind {
	case oplog.OpIns:
		insertItem(ctx, t, op)
	case oplog.OpDel:
		deleteVisible(ctx, t, op.Pos)
	default:
		return fmt.Errorf("unknown operation kind %v at time %d", op.Kind, t)
	}
	return nil
}

// insertItem splices a newly-inserted character into ctx at op.Pos,
// the position it was authored against, clamped to the end of the
// items replayed so far. Ops are replayed in ascending local-time
// order (a valid topological order, see Walker's doc comment), so
// every causal ancestor of the op is already in place; ops concurrent
// with it that were assigned earlier local times are also in place,
// and Pos is applied unchanged against them. No origin-left or
// right-parent tie-break is computed for concurrent inserts at the
// same spot.
func insertItem(ctx *editContext, t causalgraph.LV, op oplog.Operation) {
	at := op.Pos
	if at > len(ctx.items) {
		at = len(ctx.items)
	}
	ctx.items = append(ctx.items, item{})
	copy(ctx.items[at+1:], ctx.items[at:])

	content := byte(0)
	if len(op.Content) > 0 {
		content = op.Content[0]
	}
	ctx.items[at] = item{opID: t, state: Inserted, content: content}

	for lv, idx := range ctx.byOpID {
		if idx >= at {
			ctx.byOpID[lv] = idx + 1
		}
	}
	ctx.byOpID[t] = at
}

// deleteVisible marks the pos'th currently-visible item as deleted.
func deleteVisible(ctx *editContext, t causalgraph.LV, pos int) {
	visible := 0
	for i := range ctx.items {
		if ctx.items[i].state != Inserted {
			continue
		}
		if visible == pos {
			ctx.items[i].state = Deleted
			ctx.delTarget[t] = ctx.items[i].opID
			return
		}
		visible++
	}
	ctx.delTarget[t] = causalgraph.ROOT
}

// render returns the visible text of ctx's items, in document order.
func render(ctx *editContext) string {
	buf := make([]byte, 0, len(ctx.items))
	for _, it := range ctx.items {
		if it.state == Inserted {
			buf = append(buf, it.content)
		}
	}
	return string(buf)
}

// LocalInsert records a local insertion through the underlying log.
func (w *Walker) LocalInsert(agent string, pos int, content string) (causalgraph.TimeSpan, error) {
	return w.Log.PushInsert(agent, pos, content)
}

// LocalDelete records a local deletion through the underlying log. pos
// is a position among currently-visible characters in the requesting
// agent's view (w.Snapshot()); content is the text actually removed,
// which the caller must supply since the log doesn't track document
// state itself.
func (w *Walker) LocalDelete(agent string, pos int, fwd bool, content string) (causalgraph.TimeSpan, error) {
	return w.Log.PushDelete(agent, pos, fwd, content)
}
