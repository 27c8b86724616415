// Package ids declares the concrete entity handles shared by every layer of
// Kirin: the arena.Id tags for each IR entity kind, plus the small value
// types (Successor) that reference them. Keeping these in one leaf package
// lets both the dialect contract and the IR data model depend on entity
// identity without depending on each other.
package ids

import "github.com/QuEraComputing/kirin/arena"

type ssaTag struct{}
type blockTag struct{}
type regionTag struct{}
type statementTag struct{}
type functionTag struct{}
type stagedFunctionTag struct{}
type specializedFunctionTag struct{}
type compileStageTag struct{}
type symbolTag struct{}
type globalSymbolTag struct{}

// SSAValue identifies any single-assignment value: a statement result or a
// block argument.
type SSAValue = arena.Id[ssaTag]

// ResultValue is the sub-kind of SSAValue produced by a statement result
// slot. It converts freely into SSAValue since they share representation.
type ResultValue = arena.Id[ssaTag]

// BlockArgument is the sub-kind of SSAValue bound by a block parameter. It
// converts freely into SSAValue since they share representation.
type BlockArgument = arena.Id[ssaTag]

// Block identifies a straight-line sequence of statements ending in an
// optional terminator.
type Block = arena.Id[blockTag]

// Region identifies a nested CFG introduced by a structured statement.
type Region = arena.Id[regionTag]

// Statement identifies one IR instruction.
type Statement = arena.Id[statementTag]

// Function identifies an abstract, pipeline-global function name.
type Function = arena.Id[functionTag]

// StagedFunction identifies the binding of a Function to one CompileStage
// with a signature.
type StagedFunction = arena.Id[stagedFunctionTag]

// SpecializedFunction identifies a concrete body for a StagedFunction at a
// refined signature.
type SpecializedFunction = arena.Id[specializedFunctionTag]

// CompileStage identifies a named phase of compilation owning an IR in one
// dialect.
type CompileStage = arena.Id[compileStageTag]

// Symbol is a stage-local interned name (SSA values, block labels).
type Symbol = arena.Id[symbolTag]

// GlobalSymbol is a pipeline-global interned name (functions, stages). It
// has the same representation as Symbol but a distinct type, so stage-local
// and pipeline-global names can never be confused at compile time.
type GlobalSymbol = arena.Id[globalSymbolTag]

// Successor is a control-flow edge target: a block plus the argument values
// bound to its parameters on transfer.
type Successor struct {
	Target Block
	Args   []SSAValue
}
