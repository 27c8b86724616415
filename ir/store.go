package ir

import (
	"github.com/QuEraComputing/kirin/arena"
	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/intern"
)

// Store owns the four entity arenas for one stage's dialect L with type
// lattice T: SSA values, statements, blocks, and regions, plus the
// stage-local symbol table used to name them. Store is embedded by
// stage.StageInfo, which adds the staged-function arena and staging policy
// on top.
type Store[L any, T any] struct {
	SSAs       arena.Arena[ids.SSAValue, SSAInfo[T]]
	Statements arena.Arena[ids.Statement, StatementInfo[L]]
	Blocks     arena.Arena[ids.Block, BlockInfo]
	Regions    arena.Arena[ids.Region, RegionInfo]
	Symbols    *intern.Table[ids.Symbol]
}

// NewStore returns an empty Store with its own stage-local symbol table.
func NewStore[L any, T any]() *Store[L, T] {
	return &Store[L, T]{Symbols: intern.New[ids.Symbol]()}
}

// SSA returns the info for id.
func (s *Store[L, T]) SSA(id ids.SSAValue) (*SSAInfo[T], bool) { return s.SSAs.Get(id) }

// Statement returns the info for id.
func (s *Store[L, T]) Statement(id ids.Statement) (*StatementInfo[L], bool) {
	return s.Statements.Get(id)
}

// Block returns the info for id.
func (s *Store[L, T]) Block(id ids.Block) (*BlockInfo, bool) { return s.Blocks.Get(id) }

// Region returns the info for id.
func (s *Store[L, T]) Region(id ids.Region) (*RegionInfo, bool) { return s.Regions.Get(id) }

// BodyStatements returns the ids of block's body statements (excluding its
// terminator) in dynamic execution order, by chasing Next links from
// BodyHead.
func (s *Store[L, T]) BodyStatements(block ids.Block) []ids.Statement {
	b, ok := s.Blocks.Get(block)
	if !ok || b.BodyHead == nil {
		return nil
	}
	var out []ids.Statement
	cur := b.BodyHead
	for cur != nil {
		out = append(out, *cur)
		info, ok := s.Statements.Get(*cur)
		if !ok {
			break
		}
		cur = info.Next
	}
	return out
}

// ExecutionOrder returns a block's body statements followed by its
// terminator, if present: the terminator always executes last.
func (s *Store[L, T]) ExecutionOrder(block ids.Block) []ids.Statement {
	out := s.BodyStatements(block)
	if b, ok := s.Blocks.Get(block); ok && b.Terminator != nil {
		out = append(out, *b.Terminator)
	}
	return out
}

// RegionBlocks returns the ids of region's blocks in chain order.
func (s *Store[L, T]) RegionBlocks(region ids.Region) []ids.Block {
	r, ok := s.Regions.Get(region)
	if !ok || r.BlocksHead == nil {
		return nil
	}
	var out []ids.Block
	cur := r.BlocksHead
	for cur != nil {
		out = append(out, *cur)
		info, ok := s.Blocks.Get(*cur)
		if !ok {
			break
		}
		cur = info.Next
	}
	return out
}

// LinkStatements sets prev/next links in situ across a fresh chain whose
// statements must carry no existing links. It is used internally by the
// block builder and is exposed for external callers assembling a chain
// outside of Block().
func (s *Store[L, T]) LinkStatements(stmts []ids.Statement) (LinkedList[ids.Statement], error) {
	for _, id := range stmts {
		info, ok := s.Statements.Get(id)
		if !ok {
			return LinkedList[ids.Statement]{}, ErrUnknownStatement{ID: id}
		}
		if info.Prev != nil || info.Next != nil {
			return LinkedList[ids.Statement]{}, ErrStatementAlreadyLinked{ID: id}
		}
	}
	for i := 0; i < len(stmts); i++ {
		info, _ := s.Statements.GetMut(stmts[i])
		if i > 0 {
			prev := stmts[i-1]
			info.Prev = &prev
		}
		if i < len(stmts)-1 {
			next := stmts[i+1]
			info.Next = &next
		}
	}
	if len(stmts) == 0 {
		return LinkedList[ids.Statement]{}, nil
	}
	head := stmts[0]
	tail := stmts[len(stmts)-1]
	return LinkedList[ids.Statement]{Head: &head, Tail: &tail, Len: len(stmts)}, nil
}
