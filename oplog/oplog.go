package oplog

import (
	"errors"
	"iter"

	"github.com/arborcrdt/oplog/causalgraph"
	"github.com/google/uuid"
)

// ErrUnknownParent is returned when a pushed or merged operation names
// a parent version this log has never recorded. Unlike the panics
// used for internal invariant violations, this is reachable from
// untrusted input (a remote peer's ExtOp batch) and is meant to be
// handled, not just logged.
var ErrUnknownParent = errors.New("oplog: unknown parent version")

// Log is the operation log facade: the causal graph bookkeeping from
// causalgraph composed with the operation payload store from this
// package. It is the type every other package in this module is built
// around.
type Log struct {
	CG    *causalgraph.CausalGraph
	store *store
}

// New returns an empty log.
func New() *Log {
	return &Log{CG: causalgraph.New(), store: newStore()}
}

// GetOrCreateAgent registers name if it hasn't been seen before and
// returns its id either way.
func (l *Log) GetOrCreateAgent(name string) causalgraph.AgentID {
	return l.CG.Agents.GetOrCreateAgent(name)
}

// NewSessionAgent returns a fresh, process-unique agent name for a
// caller that has no stable identity of its own to register (an
// anonymous editing session, a one-off script). Named agents a user
// actually cares about — "seph", "mike" — should still be passed
// explicitly; this is only a fallback.
func NewSessionAgent() string {
	return uuid.NewString()
}

// Len returns the number of local times this log has assigned.
func (l *Log) Len() int { return l.CG.Len() }

// Frontier returns the current tips of the causal graph.
func (l *Log) Frontier() causalgraph.Frontier { return l.CG.Frontier }

// IterHistory lazily walks every HistoryEntry in time order.
func (l *Log) IterHistory() iter.Seq[causalgraph.HistoryEntry] {
	return func(yield func(causalgraph.HistoryEntry) bool) {
		for _, e := range l.CG.History.Entries() {
			if !yield(e) {
				return
			}
		}
	}
}

// IterOps lazily walks every materialized Operation in time order.
func (l *Log) IterOps() iter.Seq[Operation] {
	return func(yield func(Operation) bool) {
		for _, op := range l.store.all() {
			if !yield(op) {
				return
			}
		}
	}
}

// OpsInRange returns the materialized operations covering
// [span.Start, span.End).
func (l *Log) OpsInRange(span causalgraph.TimeSpan) []Operation {
	return l.store.readRange(span)
}
