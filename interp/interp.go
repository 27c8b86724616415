// Package interp is the shared core both the concrete stack interpreter
// (interp/stackinterp) and the abstract interpreter (interp/absint) build
// on: Frame, Continuation, and the Interpretable dispatch contract every
// dialect statement must satisfy to be executed. One small, reusable
// frame-stack type, and a dispatch contract kept separate from whichever
// concrete engine drives it.
package interp

import (
	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/kerrors"
)

// Frame is one activation record: the block currently executing plus the
// SSA environment binding values computed so far. It records no
// statement-level position; engines walk a block's statements themselves. V is the value representation (a concrete
// runtime value for the stack interpreter, an abstract lattice element for
// the abstract interpreter). Extra carries engine-specific bookkeeping
// (e.g. fuel remaining, breakpoint state) without forcing every engine to
// agree on one shape.
type Frame[V any, Extra any] struct {
	Stage  ids.CompileStage
	Spec   ids.SpecializedFunction
	Block  ids.Block
	Values map[ids.SSAValue]V
	Extra  Extra
}

// NewFrame returns an empty Frame entering block of spec at stage.
func NewFrame[V any, Extra any](stage ids.CompileStage, spec ids.SpecializedFunction, block ids.Block, extra Extra) *Frame[V, Extra] {
	return &Frame[V, Extra]{
		Stage:  stage,
		Spec:   spec,
		Block:  block,
		Values: make(map[ids.SSAValue]V),
		Extra:  extra,
	}
}

// Get reads a value bound in this frame, or UnboundValue if ssa was never
// written.
func (f *Frame[V, Extra]) Get(ssa ids.SSAValue) (V, error) {
	v, ok := f.Values[ssa]
	if !ok {
		var zero V
		return zero, kerrors.UnboundValue{SSA: ssa}
	}
	return v, nil
}

// Set binds ssa to v in this frame.
func (f *Frame[V, Extra]) Set(ssa ids.SSAValue, v V) {
	f.Values[ssa] = v
}

// ContinuationKind tags the variant of control-flow outcome a Continuation
// carries.
type ContinuationKind int

const (
	// ContinueBlock falls through to the next statement in the same block.
	ContinueBlock ContinuationKind = iota
	// Jump transfers control to a successor block with argument bindings.
	Jump
	// Return exits the current frame with result values.
	Return
	// Call enters a callee before resuming the current statement's
	// continuation.
	Call
	// Fork requests the engine explore more than one successor
	// independently (used by the abstract interpreter's branch handling;
	// a concrete engine that reaches this should treat it as
	// UnexpectedControl, since a single concrete execution cannot fork).
	Fork
)

// Continuation is the outcome of interpreting one statement: what the
// driving loop (stackinterp.Run / absint.Analyze) should do next.
type Continuation[V any] struct {
	Kind ContinuationKind

	// Jump
	Successor *ids.Successor

	// Return
	Results []V

	// Call
	CallStage ids.CompileStage
	CallSpec  ids.SpecializedFunction
	CallArgs  []V
	// After is invoked with the callee's results once the engine has
	// evaluated the call, producing the continuation to resume with.
	After func([]V) Continuation[V]

	// Fork
	Successors []ids.Successor
}

// ContinueWith returns the ContinueBlock continuation (the common case:
// most statements just fall through).
func ContinueWith[V any]() Continuation[V] {
	return Continuation[V]{Kind: ContinueBlock}
}

// JumpTo returns a Jump continuation to succ.
func JumpTo[V any](succ ids.Successor) Continuation[V] {
	return Continuation[V]{Kind: Jump, Successor: &succ}
}

// ReturnWith returns a Return continuation carrying results.
func ReturnWith[V any](results []V) Continuation[V] {
	return Continuation[V]{Kind: Return, Results: results}
}

// CallThen returns a Call continuation: invoke (stage, spec) with args,
// then resume via after with the callee's results.
func CallThen[V any](stage ids.CompileStage, spec ids.SpecializedFunction, args []V, after func([]V) Continuation[V]) Continuation[V] {
	return Continuation[V]{Kind: Call, CallStage: stage, CallSpec: spec, CallArgs: args, After: after}
}

// ForkTo returns a Fork continuation exploring every successor in succs.
func ForkTo[V any](succs []ids.Successor) Continuation[V] {
	return Continuation[V]{Kind: Fork, Successors: succs}
}

// Interpretable is the dispatch contract a dialect statement definition
// implements to be executable: given its own operand values, already
// resolved from the frame by the engine, it produces the continuation the
// driving engine should follow. V is the value representation; engines are
// generic over it so the same dialect type can support both concrete
// execution (V = runtime value) and abstract interpretation (V = lattice
// element) as long as the dialect's Step method is written against V via a
// second type parameter at the call site (see interp/stackinterp and
// interp/absint for how each engine closes over a concrete V).
type Interpretable[V any] interface {
	// Step evaluates this statement given its resolved argument values. It
	// returns the statement's own result values (bound by the caller to its
	// declared result SSAs; empty for terminators and other statements with
	// no results) and the continuation the driving engine should follow.
	Step(args []V) (results []V, cont Continuation[V], err error)
}
