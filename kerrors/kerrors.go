// Package kerrors is Kirin's flat, user-extensible error hierarchy. Every
// core operation returns one of these through the ordinary Go error
// interface; callers needing additional variants define their own error
// type with an embedded InterpreterError.
package kerrors

import (
	"errors"
	"fmt"

	"github.com/QuEraComputing/kirin/ids"
)

// InterpreterError boxes one of the concrete kinds below (see Wrap) for
// callers that want a single wrapper type. Core operations return the
// concrete kinds unboxed, so errors.As against a concrete kind works whether
// or not an error was boxed, and whichever wrapping error type a user's own
// interpreter introduces.
type InterpreterError struct {
	// Kind is one of the *Error values below, boxed for uniform wrapping.
	Kind error
}

func (e *InterpreterError) Error() string { return e.Kind.Error() }
func (e *InterpreterError) Unwrap() error { return e.Kind }

// Wrap boxes any of the concrete error kinds below into an
// *InterpreterError, the form From<InterpreterError> impls expect.
func Wrap(kind error) *InterpreterError { return &InterpreterError{Kind: kind} }

// ArenaMiss reports that an id did not resolve in its arena. This should be
// impossible if arena invariants hold; surfacing it as an error rather than
// panicking lets callers decide whether to treat it as a debug assertion.
type ArenaMiss struct{ Detail string }

func (e ArenaMiss) Error() string { return fmt.Sprintf("kirin: arena miss: %s", e.Detail) }

// NoFrame reports an interpreter operation attempted with an empty frame
// stack.
type NoFrame struct{}

func (NoFrame) Error() string { return "kirin: no active frame" }

// UnboundValue reports an SSA value read before it was written.
type UnboundValue struct{ SSA ids.SSAValue }

func (e UnboundValue) Error() string {
	return fmt.Sprintf("kirin: unbound value %%%d", e.SSA.Raw())
}

// ArityMismatch reports a block-argument or call-argument count mismatch.
type ArityMismatch struct{ Expected, Got int }

func (e ArityMismatch) Error() string {
	return fmt.Sprintf("kirin: arity mismatch: expected %d, got %d", e.Expected, e.Got)
}

// FuelExhausted reports that a bounded run loop consumed its configured
// budget without reaching a terminal state.
type FuelExhausted struct{}

func (FuelExhausted) Error() string { return "kirin: fuel exhausted" }

// MaxDepthExceeded reports that the interpreter's frame stack exceeded its
// configured depth cap.
type MaxDepthExceeded struct{ Limit int }

func (e MaxDepthExceeded) Error() string {
	return fmt.Sprintf("kirin: max call depth %d exceeded", e.Limit)
}

// MissingStage reports that dispatch found no stage with the requested id.
type MissingStage struct{ Stage ids.CompileStage }

func (e MissingStage) Error() string {
	return fmt.Sprintf("kirin: no stage with id %d", e.Stage.Raw())
}

// MissingStageDialect reports that dispatch found a stage but its concrete
// dialect did not match any of the actions offered.
type MissingStageDialect struct{ Stage ids.CompileStage }

func (e MissingStageDialect) Error() string {
	return fmt.Sprintf("kirin: stage %d carries a different dialect", e.Stage.Raw())
}

// MissingFunctionStageMapping reports that a Function has no StagedFunction
// at the requested stage.
type MissingFunctionStageMapping struct {
	Function ids.Function
	Stage    ids.CompileStage
}

func (e MissingFunctionStageMapping) Error() string {
	return fmt.Sprintf("kirin: function %d has no staged binding at stage %d", e.Function.Raw(), e.Stage.Raw())
}

// NoSpecializationAtStage reports that a staged function has zero live
// specializations when exactly one was required.
type NoSpecializationAtStage struct{ Staged ids.StagedFunction }

func (e NoSpecializationAtStage) Error() string {
	return fmt.Sprintf("kirin: staged function %d has no live specialization", e.Staged.Raw())
}

// AmbiguousSpecializationAtStage reports that a staged function has more
// than one live, non-invalidated specialization matching a call.
type AmbiguousSpecializationAtStage struct {
	Staged ids.StagedFunction
	Count  int
}

func (e AmbiguousSpecializationAtStage) Error() string {
	return fmt.Sprintf("kirin: staged function %d has %d ambiguous live specializations", e.Staged.Raw(), e.Count)
}

// TypedStageMismatch reports that a typed call was dispatched to a frame
// whose stage carries a different dialect than expected.
type TypedStageMismatch struct{ Stage ids.CompileStage }

func (e TypedStageMismatch) Error() string {
	return fmt.Sprintf("kirin: typed dispatch mismatch at stage %d", e.Stage.Raw())
}

// UnexpectedControl reports a Continuation variant the calling interpreter
// cannot honor (e.g. Fork reaching the concrete stack interpreter).
type UnexpectedControl struct{ Reason string }

func (e UnexpectedControl) Error() string {
	return fmt.Sprintf("kirin: unexpected control flow: %s", e.Reason)
}

// DuplicateName reports a SingleDispatch staging-policy violation: a second
// staged function for the same abstract Function at one stage.
type DuplicateName struct {
	Function ids.Function
	Stage    ids.CompileStage
}

func (e DuplicateName) Error() string {
	return fmt.Sprintf("kirin: function %d already staged at stage %d (SingleDispatch)", e.Function.Raw(), e.Stage.Raw())
}

// SignatureOverlap reports a MultipleDispatch staging-policy violation: the
// new signature is comparable (not incomparable) to an existing one for the
// same Function at the same stage.
type SignatureOverlap struct {
	Function ids.Function
	Stage    ids.CompileStage
	// ConflictingIndex is the index, within the staged function's existing
	// signatures, that the new one overlaps.
	ConflictingIndex int
}

func (e SignatureOverlap) Error() string {
	return fmt.Sprintf("kirin: function %d at stage %d: new signature overlaps existing signature #%d (MultipleDispatch requires pairwise-incomparable signatures)",
		e.Function.Raw(), e.Stage.Raw(), e.ConflictingIndex)
}

// SpecializationNotSubsumed reports that Specialize().New() was asked to
// register a signature that is not parameter-wise ⊑ its staged function's
// signature.
type SpecializationNotSubsumed struct {
	Staged ids.StagedFunction
}

func (e SpecializationNotSubsumed) Error() string {
	return fmt.Sprintf("kirin: specialization signature is not ⊑ staged function %d's signature", e.Staged.Raw())
}

// As is a small errors.As convenience so callers matching on a concrete
// kind don't need to spell out errors.As(err, &target) with the pointer
// dance every time.
func As[T error](err error) (T, bool) {
	var target T
	ok := errors.As(err, &target)
	return target, ok
}
