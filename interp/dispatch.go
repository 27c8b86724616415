package interp

import (
	"github.com/QuEraComputing/kirin/dialect"
	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/ir"
	"github.com/QuEraComputing/kirin/kerrors"
)

// ResolveArgs reads the values an operand list names out of frame, failing
// with UnboundValue at the first miss. Shared by both engines so argument
// resolution stays identical between concrete and abstract execution.
func ResolveArgs[V any, Extra any](frame *Frame[V, Extra], operands []ids.SSAValue) ([]V, error) {
	out := make([]V, len(operands))
	for i, op := range operands {
		v, err := frame.Get(op)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// StepStatement resolves a statement's operands from frame, asserts its
// definition is Interpretable[V], and steps it. Definitions that do not
// implement Interpretable[V] cannot be executed by this engine; the
// dialect author left a gap, surfaced as an UnexpectedControl error rather
// than a panic.
func StepStatement[L any, T any, V any, Extra any](store *ir.Store[L, T], frame *Frame[V, Extra], stmt ids.Statement) (Continuation[V], error) {
	info, ok := store.Statement(stmt)
	if !ok {
		var zero Continuation[V]
		return zero, kerrors.ArenaMiss{Detail: "statement not found during interpretation"}
	}

	operands := dialect.ArgumentsOf(info.Definition)
	args, err := ResolveArgs(frame, operands)
	if err != nil {
		var zero Continuation[V]
		return zero, err
	}

	stepper, ok := any(info.Definition).(Interpretable[V])
	if !ok {
		var zero Continuation[V]
		return zero, kerrors.UnexpectedControl{Reason: "statement definition is not Interpretable for this value representation"}
	}

	results, cont, err := stepper.Step(args)
	if err != nil {
		var zero Continuation[V]
		return zero, err
	}

	if declared := dialect.ResultsOf(info.Definition); len(declared) > 0 {
		if len(results) != len(declared) {
			var zero Continuation[V]
			return zero, kerrors.ArityMismatch{Expected: len(declared), Got: len(results)}
		}
		for i, r := range declared {
			frame.Set(r, results[i])
		}
	}

	return cont, nil
}

// BindSuccessorArgs binds a jump target's block-argument SSA values from
// the successor's argument list, failing with ArityMismatch on a count
// mismatch. Shared by both engines' Jump handling.
func BindSuccessorArgs[L any, T any, V any, Extra any](store *ir.Store[L, T], frame *Frame[V, Extra], succ ids.Successor) error {
	block, ok := store.Block(succ.Target)
	if !ok {
		return kerrors.ArenaMiss{Detail: "jump target block not found"}
	}
	if len(block.Arguments) != len(succ.Args) {
		return kerrors.ArityMismatch{Expected: len(block.Arguments), Got: len(succ.Args)}
	}
	for i, argSSA := range block.Arguments {
		v, err := frame.Get(succ.Args[i])
		if err != nil {
			return err
		}
		frame.Set(argSSA, v)
	}
	return nil
}
