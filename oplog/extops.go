package oplog

import (
	"fmt"

	"github.com/arborcrdt/oplog/causalgraph"
)

// ExtOp is the external, wire-stable representation of one run of
// operations: everything named in agent-space (RemoteVersion) rather
// than this replica's local integer time, so it can be serialized and
// replayed against a different replica's log.
type ExtOp struct {
	ID       causalgraph.RemoteVersion
	Parents  []causalgraph.RemoteVersion
	Contents OpContents
}

func remoteFrontier(l *Log, f causalgraph.Frontier) []causalgraph.RemoteVersion {
	out := make([]causalgraph.RemoteVersion, 0, len(f))
	for _, t := range f {
		if rv, ok := l.CG.Agents.LVToRemote(t); ok {
			out = append(out, rv)
		}
	}
	return out
}

// ExtOpsSince returns every operation causally after `since` — exactly
// what a peer holding `since` as its version needs to catch up to
// this log's current frontier.
//
// Built on causalgraph.History.TxnsBetween(since, l.CG.Frontier), the
// two-frontier reachability primitive: every HistoryEntry is a maximal
// single-parent chain, so the first novel time within an entry marks
// where every later time in that entry also becomes novel, and
// TxnsBetween's single forward scan per entry finds that boundary.
func (l *Log) ExtOpsSince(since causalgraph.Frontier) []ExtOp {
	var out []ExtOp
	for _, tr := range l.CG.History.TxnsBetween(since, l.CG.Frontier) {
		for _, op := range l.store.readRange(tr.Span) {
			id, ok := l.CG.Agents.LVToRemote(op.Span.Start)
			if !ok {
				continue
			}
			var parents []causalgraph.RemoteVersion
			if op.Span.Start == tr.Entry.Span.Start {
				parents = remoteFrontier(l, tr.Entry.Parents)
			} else {
				parents = remoteFrontier(l, causalgraph.Frontier{op.Span.Start - 1})
			}
			var contents OpContents
			if op.Kind == OpIns {
				contents = InsertContent{Pos: op.Pos, Content: op.Content}
			} else {
				contents = DeleteContent{Pos: op.Pos, Fwd: op.Fwd, Len: len(op.Content)}
			}
			out = append(out, ExtOp{ID: id, Parents: parents, Contents: contents})
		}
	}
	return out
}

// resolveParents converts a wire-format parent list into a local
// Frontier, returning ErrUnknownParent if any name a version this log
// hasn't recorded.
func (l *Log) resolveParents(parents []causalgraph.RemoteVersion) (causalgraph.Frontier, error) {
	out := make(causalgraph.Frontier, 0, len(parents))
	for _, rv := range parents {
		if rv.IsRoot() {
			continue
		}
		id := l.CG.Agents.FromRemote(rv)
		lv, ok := l.CG.Agents.CRDTIDToTime(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParent, rv)
		}
		out = append(out, lv)
	}
	return out, nil
}

// MergeExtOps applies a batch of remote operations in order, resolving
// each one's agent-space parents against local time as it goes. Ops
// must arrive in an order where every parent either names something
// already in this log or an earlier op in the same batch — exactly
// what ExtOpsSince produces.
func (l *Log) MergeExtOps(ops []ExtOp) error {
	for _, op := range ops {
		parents, err := l.resolveParents(op.Parents)
		if err != nil {
			return err
		}
		agentName := op.ID.Agent
		wantSeq := op.ID.Seq
		gotSeq := l.CG.Agents.NextSeqForAgent(l.CG.Agents.GetOrCreateAgent(agentName))
		if wantSeq != gotSeq {
			return fmt.Errorf("oplog: MergeExtOps: %s arrived out of order (have seq %d, want %d)", agentName, gotSeq, wantSeq)
		}
		switch c := op.Contents.(type) {
		case InsertContent:
			if _, err := l.PushInsertAt(agentName, parents, c.Pos, c.Content); err != nil {
				return err
			}
		case DeleteContent:
			if _, err := l.PushDeleteAt(agentName, parents, c.Pos, c.Fwd, deletedPlaceholder(c.Len)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("oplog: MergeExtOps: unknown contents type %T", op.Contents)
		}
	}
	return nil
}
