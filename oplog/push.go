package oplog

import (
	"fmt"

	"github.com/arborcrdt/oplog/causalgraph"
)

func (l *Log) validateParents(parents causalgraph.Frontier) error {
	next := l.CG.NextLV()
	for _, p := range parents {
		if p < 0 || p >= next {
			return fmt.Errorf("%w: %d", ErrUnknownParent, p)
		}
	}
	return nil
}

// PushInsertAt records an insertion of content at document position
// pos, authored by agentName, against the explicit parents given.
// Use this when importing an operation whose causal position is
// already known (replaying a remote batch); local edits should use
// PushInsert instead, which parents against the current frontier.
func (l *Log) PushInsertAt(agentName string, parents causalgraph.Frontier, pos int, content string) (causalgraph.TimeSpan, error) {
	if err := l.validateParents(parents); err != nil {
		return causalgraph.TimeSpan{}, err
	}
	if content == "" {
		panic("oplog: PushInsertAt: empty insert")
	}
	id, seq, span := l.CG.AllocateLocal(agentName, len(content))
	l.store.pushInsert(span.Start, pos, content)
	l.CG.RecordVersion(id, seq, span, parents)
	return span, nil
}

// PushDeleteAt records a deletion of content (the text actually
// removed) starting at document position pos, authored by agentName,
// against the explicit parents given. fwd distinguishes a forward
// delete run (position held fixed, as with the delete key) from a
// backward one (position decreasing, as with backspace).
func (l *Log) PushDeleteAt(agentName string, parents causalgraph.Frontier, pos int, fwd bool, content string) (causalgraph.TimeSpan, error) {
	if err := l.validateParents(parents); err != nil {
		return causalgraph.TimeSpan{}, err
	}
	if content == "" {
		panic("oplog: PushDeleteAt: empty delete")
	}
	id, seq, span := l.CG.AllocateLocal(agentName, len(content))
	l.store.pushDelete(span.Start, pos, fwd, content)
	l.CG.RecordVersion(id, seq, span, parents)
	return span, nil
}

// PushInsert records a local insertion authored by agentName, parented
// against the log's current frontier.
func (l *Log) PushInsert(agentName string, pos int, content string) (causalgraph.TimeSpan, error) {
	return l.PushInsertAt(agentName, l.CG.Frontier.Clone(), pos, content)
}

// PushDelete records a local deletion authored by agentName, parented
// against the log's current frontier.
func (l *Log) PushDelete(agentName string, pos int, fwd bool, content string) (causalgraph.TimeSpan, error) {
	return l.PushDeleteAt(agentName, l.CG.Frontier.Clone(), pos, fwd, content)
}

// Push records either an insert or a delete, parented against the
// current frontier, dispatching on the contents' concrete type. It
// exists to give callers that already hold an OpContents value (read
// off the wire, say) a single entry point instead of having to
// type-switch themselves.
func (l *Log) Push(agentName string, contents OpContents) (causalgraph.TimeSpan, error) {
	switch c := contents.(type) {
	case InsertContent:
		return l.PushInsert(agentName, c.Pos, c.Content)
	case DeleteContent:
		return l.PushDelete(agentName, c.Pos, c.Fwd, deletedPlaceholder(c.Len))
	default:
		panic(fmt.Sprintf("oplog: Push: unknown OpContents type %T", contents))
	}
}

// deletedPlaceholder is used only by Push(DeleteContent), which by
// construction doesn't carry the deleted text itself (a remote delete
// announcement names a length, not content) — the local oplog still
// needs *a* content arena entry to keep offsets dense, so it records
// Len zero bytes. Callers that have the real deleted text (the local
// edit path) should call PushDelete directly instead, where the
// actual content is preserved for undo/tombstone inspection.
func deletedPlaceholder(n int) string {
	return string(make([]byte, n))
}
