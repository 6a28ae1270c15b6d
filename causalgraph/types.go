// Package causalgraph implements the causal graph substrate of a
// collaborative editing engine: a dense integer timeline, a DAG of
// happens-before relationships over that timeline, and the bidirectional
// mapping between local integer time and the (agent, seq) pairs used on
// the wire.
//
// Nothing in this package understands documents, text, or merge
// semantics. It only ever answers questions about causality: what
// happened before what, which times are currently "tips", and how a
// local time maps back to the agent that produced it.
package causalgraph

import "fmt"

// LV (local version) is a dense, replica-local integer timestamp. Times
// are allocated in append order starting at 0; there are no gaps.
type LV int64

// ROOT is the sentinel denoting the virtual origin before any operation.
// It is never a valid index into any RLE-backed store.
const ROOT LV = -1

// AgentID is a small integer, local to this replica, identifying an
// agent (a person or process that can author operations).
type AgentID int32

// ROOTAgent is the reserved agent id backing the "ROOT" name. It is
// never allocated by GetOrCreateAgent and never owns any operation.
const ROOTAgent AgentID = -1

// rootAgentName is the one reserved agent name; it can never be
// assigned to a real agent.
const rootAgentName = "ROOT"

// RemoteVersion is the externally stable name of an LV: an (agent,
// sequence) pair as it appears on the wire. The reserved agent name
// "ROOT" denotes the virtual origin.
type RemoteVersion struct {
	Agent string
	Seq   int
}

// IsRoot reports whether rv names the virtual origin.
func (rv RemoteVersion) IsRoot() bool { return rv.Agent == rootAgentName }

func (rv RemoteVersion) String() string {
	if rv.IsRoot() {
		return "ROOT"
	}
	return fmt.Sprintf("%s:%d", rv.Agent, rv.Seq)
}

// CRDTID is the in-memory counterpart of RemoteVersion, using the
// replica-local AgentID instead of the agent's name.
type CRDTID struct {
	Agent AgentID
	Seq   int
}

// rootCRDTID is the CRDTID naming the virtual origin.
var rootCRDTID = CRDTID{Agent: ROOTAgent, Seq: 0}

func (id CRDTID) String() string {
	if id.Agent == ROOTAgent {
		return "ROOT"
	}
	return fmt.Sprintf("agent(%d):%d", id.Agent, id.Seq)
}

// ErrUnknownAgent is the sentinel for an operation naming an agent that
// has never been registered with GetOrCreateAgent. No function in this
// package returns it: CRDTIDToTime reports an unknown agent through its
// ok result, and AgentName panics.
var ErrUnknownAgent = fmt.Errorf("causalgraph: unknown agent")

// ErrUnknownVersion is the sentinel for a (agent, seq) pair or a local
// time that doesn't correspond to anything this graph has recorded. No
// function in this package returns it: the lookups report a miss
// through their ok result.
var ErrUnknownVersion = fmt.Errorf("causalgraph: unknown version")
