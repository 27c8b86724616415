package ir

import (
	"github.com/QuEraComputing/kirin/dialect"
	"github.com/QuEraComputing/kirin/ids"
)

// SSABuilder constructs a single SSAValue, chaining Name/Type/Kind setters
// before New allocates its id.
type SSABuilder[L any, T any] struct {
	store          *Store[L, T]
	name           *ids.Symbol
	typ            T
	kind           SSAKind
	ownerBlock     ids.Block
	ownerStatement ids.Statement
	resultIndex    int
}

// SSA starts a new SSAValue builder. Defaults to SSAKindTest, for synthetic
// values that need no producing statement or block.
func (s *Store[L, T]) SSA() *SSABuilder[L, T] {
	return &SSABuilder[L, T]{store: s, kind: SSAKindTest}
}

func (b *SSABuilder[L, T]) Name(name string) *SSABuilder[L, T] {
	sym := b.store.Symbols.Intern(name)
	b.name = &sym
	return b
}

func (b *SSABuilder[L, T]) Ty(t T) *SSABuilder[L, T] {
	b.typ = t
	return b
}

// Kind marks this value as a synthetic test value (the only kind legal to
// set directly; BlockArgument and Result kinds are set by their dedicated
// methods below, since they carry an owner that must stay consistent with
// the entity that lists them).
func (b *SSABuilder[L, T]) Kind(k SSAKind) *SSABuilder[L, T] {
	b.kind = k
	return b
}

// AsBlockArgument marks this value as bound by block's parameter list.
func (b *SSABuilder[L, T]) AsBlockArgument(block ids.Block) *SSABuilder[L, T] {
	b.kind = SSAKindBlockArgument
	b.ownerBlock = block
	return b
}

// AsResult marks this value as produced by stmt's result slot index.
func (b *SSABuilder[L, T]) AsResult(stmt ids.Statement, index int) *SSABuilder[L, T] {
	b.kind = SSAKindResult
	b.ownerStatement = stmt
	b.resultIndex = index
	return b
}

// New allocates the SSAValue. Total: never fails.
func (b *SSABuilder[L, T]) New() ids.SSAValue {
	return b.store.SSAs.AllocWithId(func(id ids.SSAValue) SSAInfo[T] {
		return SSAInfo[T]{
			ID:             id,
			Name:           b.name,
			Type:           b.typ,
			Kind:           b.kind,
			OwnerBlock:     b.ownerBlock,
			OwnerStatement: b.ownerStatement,
			ResultIndex:    b.resultIndex,
		}
	})
}

// StatementBuilder constructs a single Statement: New allocates an id for
// the statement and, based on the dialect's capability interfaces,
// constructs any ResultValues the definition declares, rewriting those
// result-slots in L to hold the fresh ids before storing.
//
// Kirin asks the caller to declare the result types explicitly via
// ResultTypes, rather than inferring a result count from a placeholder
// Results() slice, since Go has no ergonomic way to construct a "same
// shape, zero ids" sentinel generically. The set of result types still
// flows from the call site, not from a hardcoded schema, so the effect is
// the same: the definition's result slots are populated with fresh ids
// before the statement is stored.
type StatementBuilder[L any, T any] struct {
	store       *Store[L, T]
	name        *ids.Symbol
	def         L
	resultTypes []T
}

func (s *Store[L, T]) Statement() *StatementBuilder[L, T] {
	return &StatementBuilder[L, T]{store: s}
}

func (b *StatementBuilder[L, T]) Name(name string) *StatementBuilder[L, T] {
	sym := b.store.Symbols.Intern(name)
	b.name = &sym
	return b
}

func (b *StatementBuilder[L, T]) Definition(def L) *StatementBuilder[L, T] {
	b.def = def
	return b
}

func (b *StatementBuilder[L, T]) ResultTypes(types ...T) *StatementBuilder[L, T] {
	b.resultTypes = types
	return b
}

// New allocates the statement, along with one ResultValue per declared
// result type. If the definition implements dialect.HasResultsMut, the
// freshly allocated ids are installed via SetResults before the statement
// is stored.
func (b *StatementBuilder[L, T]) New() ids.Statement {
	stmtID := b.store.Statements.NextId()

	var results []ids.ResultValue
	for i, t := range b.resultTypes {
		idx := i
		rid := b.store.SSAs.AllocWithId(func(id ids.SSAValue) SSAInfo[T] {
			return SSAInfo[T]{ID: id, Type: t, Kind: SSAKindResult, OwnerStatement: stmtID, ResultIndex: idx}
		})
		results = append(results, rid)
	}
	if mut, ok := any(b.def).(dialect.HasResultsMut); ok {
		mut.SetResults(results)
	}

	return b.store.Statements.AllocWithId(func(id ids.Statement) StatementInfo[L] {
		return StatementInfo[L]{ID: id, Name: b.name, Definition: b.def}
	})
}

// BlockBuilder constructs a single Block: New links body statements,
// validates that the terminator statement's dialect satisfies
// IsTerminator, sets each statement's parent, and creates SSAs of kind
// BlockArgument for each declared argument type.
type BlockBuilder[L any, T any] struct {
	store      *Store[L, T]
	name       *ids.Symbol
	argTypes   []T
	stmts      []ids.Statement
	terminator *ids.Statement
}

func (s *Store[L, T]) Block() *BlockBuilder[L, T] {
	return &BlockBuilder[L, T]{store: s}
}

func (b *BlockBuilder[L, T]) Name(name string) *BlockBuilder[L, T] {
	sym := b.store.Symbols.Intern(name)
	b.name = &sym
	return b
}

func (b *BlockBuilder[L, T]) Argument(t T) *BlockBuilder[L, T] {
	b.argTypes = append(b.argTypes, t)
	return b
}

func (b *BlockBuilder[L, T]) Stmt(id ids.Statement) *BlockBuilder[L, T] {
	b.stmts = append(b.stmts, id)
	return b
}

func (b *BlockBuilder[L, T]) Terminator(id ids.Statement) *BlockBuilder[L, T] {
	b.terminator = &id
	return b
}

func (b *BlockBuilder[L, T]) New() (ids.Block, error) {
	if b.terminator != nil {
		info, ok := b.store.Statements.Get(*b.terminator)
		if !ok {
			return 0, ErrUnknownStatement{ID: *b.terminator}
		}
		if !dialect.CheckTerminator(info.Definition) {
			return 0, ErrNotTerminator{ID: *b.terminator}
		}
	}

	blockID := b.store.Blocks.NextId()

	var args []ids.BlockArgument
	for _, t := range b.argTypes {
		aid := b.store.SSAs.AllocWithId(func(id ids.SSAValue) SSAInfo[T] {
			return SSAInfo[T]{ID: id, Type: t, Kind: SSAKindBlockArgument, OwnerBlock: blockID}
		})
		args = append(args, aid)
	}

	var bodyHead, bodyTail *ids.Statement
	if len(b.stmts) > 0 {
		ll, err := b.store.LinkStatements(b.stmts)
		if err != nil {
			return 0, err
		}
		bodyHead, bodyTail = ll.Head, ll.Tail
	}

	for _, sid := range b.stmts {
		info, _ := b.store.Statements.GetMut(sid)
		parent := blockID
		info.Parent = &parent
	}
	if b.terminator != nil {
		info, _ := b.store.Statements.GetMut(*b.terminator)
		parent := blockID
		info.Parent = &parent
	}

	return b.store.Blocks.AllocWithId(func(id ids.Block) BlockInfo {
		return BlockInfo{
			ID:         id,
			Name:       b.name,
			Arguments:  args,
			BodyHead:   bodyHead,
			BodyTail:   bodyTail,
			Terminator: b.terminator,
		}
	}), nil
}

// RegionBuilder constructs a single Region: New links the blocks and sets
// each block's parent.
type RegionBuilder[L any, T any] struct {
	store  *Store[L, T]
	blocks []ids.Block
}

func (s *Store[L, T]) Region() *RegionBuilder[L, T] {
	return &RegionBuilder[L, T]{store: s}
}

func (b *RegionBuilder[L, T]) AddBlock(id ids.Block) *RegionBuilder[L, T] {
	b.blocks = append(b.blocks, id)
	return b
}

func (b *RegionBuilder[L, T]) New() (ids.Region, error) {
	for _, id := range b.blocks {
		if _, ok := b.store.Blocks.Get(id); !ok {
			return 0, ErrUnknownBlock{ID: id}
		}
	}

	regionID := b.store.Regions.NextId()
	for i, id := range b.blocks {
		info, _ := b.store.Blocks.GetMut(id)
		if i > 0 {
			prev := b.blocks[i-1]
			info.Prev = &prev
		}
		if i < len(b.blocks)-1 {
			next := b.blocks[i+1]
			info.Next = &next
		}
		parent := regionID
		info.Parent = &parent
	}

	var head, tail *ids.Block
	if n := len(b.blocks); n > 0 {
		h, t := b.blocks[0], b.blocks[n-1]
		head, tail = &h, &t
	}

	return b.store.Regions.AllocWithId(func(id ids.Region) RegionInfo {
		return RegionInfo{ID: id, BlocksHead: head, BlocksTail: tail}
	}), nil
}
