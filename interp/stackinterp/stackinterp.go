// Package stackinterp is the concrete execution engine: a straightforward
// stack machine driving the same Interpretable dispatch the abstract
// interpreter uses, configured with a fuel budget, call-depth cap, and
// breakpoint set over a frame stack of Kirin IR activations.
package stackinterp

import (
	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/interp"
	"github.com/QuEraComputing/kirin/kerrors"
	"github.com/QuEraComputing/kirin/pipeline"
	"github.com/QuEraComputing/kirin/stage"
)

// DefaultMaxRecursionDepth bounds the concrete call-frame stack absent an
// explicit override.
const DefaultMaxRecursionDepth = 1024

// DefaultFuel is the number of statements a new StackInterpreter may execute
// before returning FuelExhausted, guarding against accidental infinite loops
// in a dialect under development. The budget belongs to the interpreter, not
// to one Run: every Run and RunUntilBreak draws on it, and only WithFuel
// refills it.
const DefaultFuel = 1_000_000

// extra is the stack interpreter's per-frame bookkeeping: nothing beyond
// what Frame already carries, but kept as a distinct type so Frame's Extra
// parameter is meaningful rather than any.
type extra struct{}

// frame is this engine's concrete Frame instantiation.
type frame[V any] = interp.Frame[V, extra]

// StackInterpreter runs Kirin IR to completion over concrete values V,
// using pipeline p to resolve cross-stage/cross-function calls.
type StackInterpreter[V any] struct {
	Pipeline *pipeline.Pipeline

	MaxDepth int
	Fuel     int

	Breakpoints map[ids.Statement]bool

	stack []*frame[V]
	fuel  int
}

// New returns a StackInterpreter with default depth and fuel limits.
func New[V any](p *pipeline.Pipeline) *StackInterpreter[V] {
	return &StackInterpreter[V]{
		Pipeline:    p,
		MaxDepth:    DefaultMaxRecursionDepth,
		Fuel:        DefaultFuel,
		Breakpoints: make(map[ids.Statement]bool),
		fuel:        DefaultFuel,
	}
}

// WithFuel overrides the statement-execution budget.
func (si *StackInterpreter[V]) WithFuel(fuel int) *StackInterpreter[V] {
	si.Fuel = fuel
	si.fuel = fuel
	return si
}

// WithMaxDepth overrides the call-frame depth cap.
func (si *StackInterpreter[V]) WithMaxDepth(depth int) *StackInterpreter[V] {
	si.MaxDepth = depth
	return si
}

// SetBreakpoint arms a breakpoint at stmt: RunUntilBreak stops just before
// executing it.
func (si *StackInterpreter[V]) SetBreakpoint(stmt ids.Statement) {
	si.Breakpoints[stmt] = true
}

// ClearBreakpoint disarms a previously set breakpoint.
func (si *StackInterpreter[V]) ClearBreakpoint(stmt ids.Statement) {
	delete(si.Breakpoints, stmt)
}

// Depth reports the current frame-stack depth.
func (si *StackInterpreter[V]) Depth() int { return len(si.stack) }

// Current returns the top-of-stack frame, or nil if the stack is empty.
func (si *StackInterpreter[V]) Current() *frame[V] {
	if len(si.stack) == 0 {
		return nil
	}
	return si.stack[len(si.stack)-1]
}

func (si *StackInterpreter[V]) push(f *frame[V]) error {
	if len(si.stack) >= si.MaxDepth {
		return kerrors.MaxDepthExceeded{Limit: si.MaxDepth}
	}
	si.stack = append(si.stack, f)
	return nil
}

func (si *StackInterpreter[V]) pop() {
	if len(si.stack) > 0 {
		si.stack = si.stack[:len(si.stack)-1]
	}
}

// stepAt dispatches a typed (L, T) statement step through pipeline
// dispatch to recover the concrete stage store.
func stepAt[L any, T any, V any](si *StackInterpreter[V], stageID ids.CompileStage, f *frame[V], stmt ids.Statement) (interp.Continuation[V], error) {
	return pipeline.DispatchStage(si.Pipeline, stageID, func(s *stage.StageInfo[L, T]) (interp.Continuation[V], error) {
		return interp.StepStatement[L, T, V, extra](s.Store, f, stmt)
	})
}

// Step executes stmt in the top frame, consuming one unit of fuel, and
// reports the continuation observed. It does not move the frame; acting on
// the continuation is left to the caller. L, T must match the frame's stage
// dialect; callers normally go through Run rather than Step directly.
func Step[L any, T any, V any](si *StackInterpreter[V], stmt ids.Statement) (interp.Continuation[V], error) {
	f := si.Current()
	if f == nil {
		var zero interp.Continuation[V]
		return zero, kerrors.NoFrame{}
	}
	if si.fuel <= 0 {
		var zero interp.Continuation[V]
		return zero, kerrors.FuelExhausted{}
	}
	si.fuel--
	return stepAt[L, T, V](si, f.Stage, f, stmt)
}

// Call pushes a new frame for spec at stage with args bound to its entry
// block's parameters, honoring the depth cap.
func Call[L any, T any, V any](si *StackInterpreter[V], stageID ids.CompileStage, spec ids.SpecializedFunction, args []V) error {
	_, err := pipeline.DispatchStage(si.Pipeline, stageID, func(s *stage.StageInfo[L, T]) (struct{}, error) {
		info, ok := s.Specialized.Get(spec)
		if !ok {
			return struct{}{}, kerrors.ArenaMiss{Detail: "specialized function not found"}
		}
		stmt, ok := s.Statement(info.Body)
		if !ok {
			return struct{}{}, kerrors.ArenaMiss{Detail: "specialization body statement not found"}
		}
		regions := regionsOf(stmt.Definition)
		if len(regions) == 0 {
			return struct{}{}, kerrors.ArenaMiss{Detail: "specialization body has no region"}
		}
		blocks := s.RegionBlocks(regions[0])
		if len(blocks) == 0 {
			return struct{}{}, kerrors.ArenaMiss{Detail: "specialization body region has no blocks"}
		}
		entry := blocks[0]

		blockInfo, ok := s.Block(entry)
		if !ok {
			return struct{}{}, kerrors.ArenaMiss{Detail: "entry block not found"}
		}
		if len(blockInfo.Arguments) != len(args) {
			return struct{}{}, kerrors.ArityMismatch{Expected: len(blockInfo.Arguments), Got: len(args)}
		}

		f := interp.NewFrame[V, extra](stageID, spec, entry, extra{})
		for i, argSSA := range blockInfo.Arguments {
			f.Set(argSSA, args[i])
		}
		return struct{}{}, si.push(f)
	})
	return err
}

// regionsOf is a tiny local wrapper so Call doesn't need to import dialect
// just for one helper call.
func regionsOf(def any) []ids.Region {
	type hasRegions interface{ Regions() []ids.Region }
	if t, ok := def.(hasRegions); ok {
		return t.Regions()
	}
	return nil
}

// Run drives the top frame to completion — a Return continuation popping
// it back below the stack height Run was entered with — or until
// fuel/depth is exhausted, returning the final return values. A Call
// continuation recurses into a nested Run for the pushed callee; that
// nested call returns as soon as its own pushed frame pops, not when the
// entire stack (including frames it never pushed) empties.
func Run[L any, T any, V any](si *StackInterpreter[V]) ([]V, error) {
	// depth is the stack's height at entry, not 0: a nested Run invoked
	// from the Call case below must return as soon as the frame it itself
	// pushed pops, handing control back to its own caller via
	// cont.After/applyContinuation — not wait for the whole stack (which
	// includes frames this Run never pushed) to empty.
	depth := len(si.stack)
	for {
		f := si.Current()
		if f == nil {
			return nil, kerrors.NoFrame{}
		}

		order, err := execOrder[L, T, V](si, f)
		if err != nil {
			return nil, err
		}

		var cont interp.Continuation[V]
		for _, stmt := range order {
			cont, err = Step[L, T, V](si, stmt)
			if err != nil {
				return nil, err
			}
			if cont.Kind != interp.ContinueBlock {
				break
			}
		}

		switch cont.Kind {
		case interp.Jump:
			if err := jumpAt[L, T, V](si, f, *cont.Successor); err != nil {
				return nil, err
			}
		case interp.Return:
			si.pop()
			if len(si.stack) < depth {
				return cont.Results, nil
			}
		case interp.Call:
			if err := Call[L, T, V](si, cont.CallStage, cont.CallSpec, cont.CallArgs); err != nil {
				return nil, err
			}
			results, err := Run[L, T, V](si)
			if err != nil {
				return nil, err
			}
			resume := cont.After(results)
			if err := applyContinuation[L, T, V](si, f, resume); err != nil {
				return nil, err
			}
			if resume.Kind == interp.Return && len(si.stack) < depth {
				return resume.Results, nil
			}
		case interp.Fork:
			return nil, kerrors.UnexpectedControl{Reason: "concrete interpreter cannot fork"}
		default:
			// ContinueBlock falling out the bottom of a block with no
			// terminator is a malformed program; surface it rather than
			// looping.
			return nil, kerrors.ArenaMiss{Detail: "block fell through without a terminator"}
		}
	}
}

func applyContinuation[L any, T any, V any](si *StackInterpreter[V], f *frame[V], cont interp.Continuation[V]) error {
	switch cont.Kind {
	case interp.Jump:
		return jumpAt[L, T, V](si, f, *cont.Successor)
	case interp.Return:
		si.pop()
		return nil
	default:
		return kerrors.UnexpectedControl{Reason: "call resumption must jump or return"}
	}
}

func jumpAt[L any, T any, V any](si *StackInterpreter[V], f *frame[V], succ ids.Successor) error {
	_, err := pipeline.DispatchStage(si.Pipeline, f.Stage, func(s *stage.StageInfo[L, T]) (struct{}, error) {
		if err := interp.BindSuccessorArgs[L, T, V, extra](s.Store, f, succ); err != nil {
			return struct{}{}, err
		}
		f.Block = succ.Target
		return struct{}{}, nil
	})
	return err
}

func execOrder[L any, T any, V any](si *StackInterpreter[V], f *frame[V]) ([]ids.Statement, error) {
	return pipeline.DispatchStage(si.Pipeline, f.Stage, func(s *stage.StageInfo[L, T]) ([]ids.Statement, error) {
		return s.ExecutionOrder(f.Block), nil
	})
}

// RunUntilBreak behaves like Run but returns early, with hitBreak=true, the
// moment execution reaches a statement in Breakpoints, without executing
// it. The frame stack is left as it was; a second call re-enters the top
// frame's current block from its first statement, so it stops at the same
// breakpoint again unless that breakpoint has been cleared.
func RunUntilBreak[L any, T any, V any](si *StackInterpreter[V]) (results []V, hitBreak bool, err error) {
	// See Run's identical depth tracking: a nested RunUntilBreak invoked
	// from the Call case below must return once the frame it pushed pops,
	// not once the entire stack (including frames it never pushed) empties.
	depth := len(si.stack)
	for {
		f := si.Current()
		if f == nil {
			return nil, false, kerrors.NoFrame{}
		}
		order, err := execOrder[L, T, V](si, f)
		if err != nil {
			return nil, false, err
		}
		for _, stmt := range order {
			if si.Breakpoints[stmt] {
				return nil, true, nil
			}
			cont, err := Step[L, T, V](si, stmt)
			if err != nil {
				return nil, false, err
			}
			if cont.Kind != interp.ContinueBlock {
				switch cont.Kind {
				case interp.Jump:
					if err := jumpAt[L, T, V](si, f, *cont.Successor); err != nil {
						return nil, false, err
					}
				case interp.Return:
					si.pop()
					if len(si.stack) < depth {
						return cont.Results, false, nil
					}
				case interp.Call:
					if err := Call[L, T, V](si, cont.CallStage, cont.CallSpec, cont.CallArgs); err != nil {
						return nil, false, err
					}
					res, broke, err := RunUntilBreak[L, T, V](si)
					if err != nil || broke {
						return res, broke, err
					}
					resume := cont.After(res)
					if err := applyContinuation[L, T, V](si, f, resume); err != nil {
						return nil, false, err
					}
					if resume.Kind == interp.Return && len(si.stack) < depth {
						return resume.Results, false, nil
					}
				case interp.Fork:
					return nil, false, kerrors.UnexpectedControl{Reason: "concrete interpreter cannot fork"}
				}
				break
			}
		}
	}
}
