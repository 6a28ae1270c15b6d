package causalgraph

// AgentSpan is the inverse-index counterpart of a per-agent seq run:
// it names, for a contiguous range of local time, which agent owns it
// and at what sequence number that range starts. It is the RLEValue
// stored in AgentTable's client_with_localtime index, letting
// TimeToCRDTID run in O(log n) instead of the linear scan the walk
// would otherwise need.
type AgentSpan struct {
	Agent    AgentID
	SeqStart int
	Length   int
}

func (a AgentSpan) Len() int { return a.Length }

func (a AgentSpan) CanAppend(next AgentSpan) bool {
	return next.Agent == a.Agent && next.SeqStart == a.SeqStart+a.Length
}

func (a AgentSpan) Append(next AgentSpan) AgentSpan {
	return AgentSpan{Agent: a.Agent, SeqStart: a.SeqStart, Length: a.Length + next.Length}
}

func (a AgentSpan) Split(at int) (left, right AgentSpan) {
	return AgentSpan{Agent: a.Agent, SeqStart: a.SeqStart, Length: at},
		AgentSpan{Agent: a.Agent, SeqStart: a.SeqStart + at, Length: a.Length - at}
}

// clientData is the bookkeeping kept for a single agent: its name,
// and the forward map from its own sequence numbers to the local
// times this replica assigned to them.
type clientData struct {
	name      string
	itemTimes *RLE[TimeSpan]
}

// AgentTable is the bidirectional mapping between the wire-stable
// (agent name, seq) identity of an operation and the dense local
// integer time this replica uses internally. Agent ids are allocated
// in first-seen order and never reused or renumbered.
type AgentTable struct {
	clients []*clientData
	byName  map[string]AgentID

	// inverse maps local time back to (agent, seq) without scanning
	// every client's forward map.
	inverse *RLE[AgentSpan]
}

// NewAgentTable returns an empty table.
func NewAgentTable() *AgentTable {
	return &AgentTable{
		byName:  make(map[string]AgentID),
		inverse: NewRLE[AgentSpan](),
	}
}

// GetOrCreateAgent returns the id for name, allocating a new one the
// first time name is seen. The reserved name "ROOT" always maps to
// ROOTAgent and is never allocated a clientData slot.
func (t *AgentTable) GetOrCreateAgent(name string) AgentID {
	if name == rootAgentName {
		return ROOTAgent
	}
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := AgentID(len(t.clients))
	t.clients = append(t.clients, &clientData{name: name, itemTimes: NewRLE[TimeSpan]()})
	t.byName[name] = id
	return id
}

// LookupAgent returns the id already assigned to name, without
// creating one.
func (t *AgentTable) LookupAgent(name string) (AgentID, bool) {
	if name == rootAgentName {
		return ROOTAgent, true
	}
	id, ok := t.byName[name]
	return id, ok
}

// AgentName returns the name registered for id. Panics for an id this
// table never allocated — that is always a caller bug, not a
// recoverable condition.
func (t *AgentTable) AgentName(id AgentID) string {
	if id == ROOTAgent {
		return rootAgentName
	}
	if int(id) < 0 || int(id) >= len(t.clients) {
		panic("causalgraph: AgentName: unknown agent id")
	}
	return t.clients[id].name
}

// NextSeqForAgent returns the sequence number that would be assigned
// to the next operation authored by id.
func (t *AgentTable) NextSeqForAgent(id AgentID) int {
	if id == ROOTAgent {
		return 0
	}
	c := t.clients[id]
	last, ok := c.itemTimes.Last()
	if !ok {
		return 0
	}
	return last.Key + last.Val.Len()
}

// RegisterAssignment records that agent's sequence range
// [seqStart, seqStart+span.Len()) was assigned local time range span.
// Both the forward (agent -> time) and inverse (time -> agent) indexes
// are updated. Called once per push by CausalGraph.RecordVersion,
// after AllocateLocal has reserved span.
func (t *AgentTable) RegisterAssignment(agent AgentID, seqStart int, span TimeSpan) {
	c := t.clients[agent]
	c.itemTimes.Push(KVPair[TimeSpan]{Key: seqStart, Val: span})
	t.inverse.Push(KVPair[AgentSpan]{
		Key: int(span.Start),
		Val: AgentSpan{Agent: agent, SeqStart: seqStart, Length: span.Len()},
	})
}

// CRDTIDToTime resolves a (agent, seq) pair to the local time it was
// assigned. ok is false if the agent is unknown or the seq was never
// assigned.
func (t *AgentTable) CRDTIDToTime(id CRDTID) (LV, bool) {
	if id.Agent == ROOTAgent {
		return ROOT, true
	}
	if int(id.Agent) < 0 || int(id.Agent) >= len(t.clients) {
		return 0, false
	}
	c := t.clients[id.Agent]
	e, offset, ok := c.itemTimes.FindWithOffset(id.Seq)
	if !ok {
		return 0, false
	}
	return e.Val.Start + LV(offset), true
}

// TimeToCRDTID resolves a local time to the (agent, seq) pair that
// produced it.
func (t *AgentTable) TimeToCRDTID(lv LV) (CRDTID, bool) {
	if lv == ROOT {
		return rootCRDTID, true
	}
	e, offset, ok := t.inverse.FindWithOffset(int(lv))
	if !ok {
		return CRDTID{}, false
	}
	return CRDTID{Agent: e.Val.Agent, Seq: e.Val.SeqStart + offset}, true
}

// GetCRDTSpan resolves lv the same way TimeToCRDTID does, additionally
// reporting how many further consecutive local times (inclusive of
// lv) share the same agent run — the length a caller can safely treat
// as one contiguous remote span without re-querying.
func (t *AgentTable) GetCRDTSpan(lv LV) (id CRDTID, length int, ok bool) {
	if lv == ROOT {
		return rootCRDTID, 1, true
	}
	e, offset, ok := t.inverse.FindWithOffset(int(lv))
	if !ok {
		return CRDTID{}, 0, false
	}
	return CRDTID{Agent: e.Val.Agent, Seq: e.Val.SeqStart + offset}, e.Val.Length - offset, true
}

// ToRemote converts a local id into its wire-stable RemoteVersion form.
func (t *AgentTable) ToRemote(id CRDTID) RemoteVersion {
	if id.Agent == ROOTAgent {
		return RemoteVersion{Agent: rootAgentName}
	}
	return RemoteVersion{Agent: t.AgentName(id.Agent), Seq: id.Seq}
}

// FromRemote converts a wire-stable RemoteVersion into its local
// CRDTID form, creating the agent if it hasn't been seen before.
func (t *AgentTable) FromRemote(rv RemoteVersion) CRDTID {
	if rv.IsRoot() {
		return rootCRDTID
	}
	return CRDTID{Agent: t.GetOrCreateAgent(rv.Agent), Seq: rv.Seq}
}

// LVToRemote is the composition of TimeToCRDTID and ToRemote.
func (t *AgentTable) LVToRemote(lv LV) (RemoteVersion, bool) {
	id, ok := t.TimeToCRDTID(lv)
	if !ok {
		return RemoteVersion{}, false
	}
	return t.ToRemote(id), true
}

// RemoteToLV is the composition of FromRemote and CRDTIDToTime.
func (t *AgentTable) RemoteToLV(rv RemoteVersion) (LV, bool) {
	id := t.FromRemote(rv)
	return t.CRDTIDToTime(id)
}
