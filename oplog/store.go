package oplog

import "github.com/arborcrdt/oplog/causalgraph"

// store is the operation payload store: an RLE of OperationInternal
// keyed by local time, backed by two append-only content arenas (one
// for inserted text, one for deleted text) so that merging adjacent
// runs never has to copy payload bytes.
type store struct {
	ops      *causalgraph.RLE[OperationInternal]
	insArena []byte
	delArena []byte
}

func newStore() *store {
	return &store{ops: causalgraph.NewRLE[OperationInternal]()}
}

func (s *store) pushInsert(lv causalgraph.LV, pos int, content string) {
	arenaPos := len(s.insArena)
	s.insArena = append(s.insArena, content...)
	s.ops.Push(causalgraph.KVPair[OperationInternal]{
		Key: int(lv),
		Val: OperationInternal{Kind: OpIns, Length: len(content), Pos: pos, ArenaPos: arenaPos},
	})
}

func (s *store) pushDelete(lv causalgraph.LV, pos int, fwd bool, content string) {
	arenaPos := len(s.delArena)
	s.delArena = append(s.delArena, content...)
	s.ops.Push(causalgraph.KVPair[OperationInternal]{
		Key: int(lv),
		Val: OperationInternal{Kind: OpDel, Length: len(content), Pos: pos, Fwd: fwd, ArenaPos: arenaPos},
	})
}

func (s *store) content(kind OpKind, arenaPos, length int) string {
	if kind == OpIns {
		return string(s.insArena[arenaPos : arenaPos+length])
	}
	return string(s.delArena[arenaPos : arenaPos+length])
}

// materialize resolves an OperationInternal run keyed at key (a stored
// run, or a sub-run the caller has already split off) into a
// fully-owned Operation.
func (s *store) materialize(key int, op OperationInternal) Operation {
	return Operation{
		Span:    causalgraph.NewTimeSpan(causalgraph.LV(key), op.Length),
		Kind:    op.Kind,
		Pos:     op.Pos,
		Fwd:     op.Fwd,
		Content: s.content(op.Kind, op.ArenaPos, op.Length),
	}
}

// readRange returns the fully materialized operations covering
// [span.Start, span.End), splitting any run that straddles the
// boundary.
func (s *store) readRange(span causalgraph.TimeSpan) []Operation {
	pieces := s.ops.IterRange(span)
	out := make([]Operation, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, s.materialize(p.Key, p.Val))
	}
	return out
}

// all returns every stored run, fully materialized, in time order.
func (s *store) all() []Operation {
	entries := s.ops.Entries()
	out := make([]Operation, 0, len(entries))
	for _, e := range entries {
		out = append(out, s.materialize(e.Key, e.Val))
	}
	return out
}
