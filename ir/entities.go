// Package ir implements Kirin's core IR data model: SSA values, statements,
// blocks, and regions, held in per-stage dense arenas with intrusive
// linked-list structure, plus the builder surface that enforces their
// construction-time invariants.
package ir

import (
	"github.com/QuEraComputing/kirin/ids"
)

// SSAKind tags why an SSAValue exists.
type SSAKind int

const (
	// SSAKindTest marks a synthetic value with no producing statement or
	// block, used by tests that need an SSAValue handle without building a
	// full statement.
	SSAKindTest SSAKind = iota
	// SSAKindBlockArgument marks a value bound by a block parameter.
	SSAKindBlockArgument
	// SSAKindResult marks a value produced by a statement result slot.
	SSAKindResult
)

func (k SSAKind) String() string {
	switch k {
	case SSAKindBlockArgument:
		return "block-argument"
	case SSAKindResult:
		return "result"
	default:
		return "test"
	}
}

// SSAInfo is the per-entity record for an SSAValue.
type SSAInfo[T any] struct {
	ID   ids.SSAValue
	Name *ids.Symbol
	Type T
	Kind SSAKind

	// OwnerBlock is valid iff Kind == SSAKindBlockArgument: the block whose
	// Arguments list this value appears in.
	OwnerBlock ids.Block

	// OwnerStatement and ResultIndex are valid iff Kind == SSAKindResult:
	// the statement that produces this value, at the given result index.
	OwnerStatement ids.Statement
	ResultIndex    int

	Invalidated bool
}

// StatementInfo is the per-entity record for a Statement: its dialect
// definition plus intrusive list links within its parent block's body
// chain.
type StatementInfo[L any] struct {
	ID         ids.Statement
	Name       *ids.Symbol
	Definition L
	Parent     *ids.Block
	Prev       *ids.Statement
	Next       *ids.Statement

	Invalidated bool
}

// BlockInfo is the per-entity record for a Block: its parameters, the
// intrusive chain of body statements (in dynamic execution order), an
// optional terminator that always executes last, and its parent region.
type BlockInfo struct {
	ID         ids.Block
	Name       *ids.Symbol
	Arguments  []ids.BlockArgument
	BodyHead   *ids.Statement
	BodyTail   *ids.Statement
	Terminator *ids.Statement
	Parent     *ids.Region
	Prev       *ids.Block
	Next       *ids.Block

	Invalidated bool
}

// RegionInfo is the per-entity record for a Region: the intrusive chain of
// blocks it contains and the statement (if any) that introduces it.
type RegionInfo struct {
	ID         ids.Region
	BlocksHead *ids.Block
	BlocksTail *ids.Block
	Parent     *ids.Statement

	Invalidated bool
}

// LinkedList describes the head/tail/length of an intrusive chain produced
// by a linking operation (LinkStatements, the block builder's block chain,
// ...).
type LinkedList[ID any] struct {
	Head *ID
	Tail *ID
	Len  int
}
