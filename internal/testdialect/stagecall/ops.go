package stagecall

import (
	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/interp"
)

// Op is this dialect's statement definition, following the same
// single-struct-with-Kind-tag shape as arith.Op.
type Op struct {
	Kind Kind

	Value int64 // Const

	args    []ids.SSAValue
	results []ids.ResultValue

	ZeroTarget    ids.Successor // CondZero
	NonZeroTarget ids.Successor

	Target ids.Successor // Jump

	// StageCall
	CalleeStage ids.CompileStage
	CalleeSpec  ids.SpecializedFunction

	// Body
	region ids.Region
}

// Kind distinguishes Op variants.
type Kind int

const (
	KindConst Kind = iota
	KindDec
	KindCondZero
	KindJump
	KindReturn
	KindStageCall
	// KindBody wraps the single region holding a specialization's entry
	// block, mirroring arith.Op's KindBody.
	KindBody
)

// Body returns the region-owning Op a specialization's Body statement
// holds.
func Body(region ids.Region) *Op { return &Op{Kind: KindBody, region: region} }

// Regions implements dialect.HasRegions.
func (o *Op) Regions() []ids.Region {
	if o.Kind == KindBody {
		return []ids.Region{o.region}
	}
	return nil
}

// SetRegions implements dialect.HasRegionsMut.
func (o *Op) SetRegions(regions []ids.Region) {
	if o.Kind == KindBody && len(regions) > 0 {
		o.region = regions[0]
	}
}

// Const returns a constant-producing Op.
func Const(v int64) *Op { return &Op{Kind: KindConst, Value: v} }

// Dec returns an Op computing arg - 1.
func Dec(arg ids.SSAValue) *Op { return &Op{Kind: KindDec, args: []ids.SSAValue{arg}} }

// CondZero returns a two-way branch Op testing whether cond == 0.
func CondZero(cond ids.SSAValue, zeroTarget, nonZeroTarget ids.Successor) *Op {
	return &Op{Kind: KindCondZero, args: []ids.SSAValue{cond}, ZeroTarget: zeroTarget, NonZeroTarget: nonZeroTarget}
}

// Jump returns an unconditional jump Op.
func Jump(target ids.Successor) *Op { return &Op{Kind: KindJump, Target: target} }

// Return returns a return Op over its operand.
func Return(v ids.SSAValue) *Op { return &Op{Kind: KindReturn, args: []ids.SSAValue{v}} }

// StageCall returns an Op that calls (calleeStage, calleeSpec) with arg and
// returns whatever the callee returns (a tail call), the cross-stage
// bounce S8 exercises.
func StageCall(calleeStage ids.CompileStage, calleeSpec ids.SpecializedFunction, arg ids.SSAValue) *Op {
	return &Op{Kind: KindStageCall, args: []ids.SSAValue{arg}, CalleeStage: calleeStage, CalleeSpec: calleeSpec}
}

// Arguments implements dialect.HasArguments.
func (o *Op) Arguments() []ids.SSAValue {
	switch o.Kind {
	case KindDec, KindCondZero, KindReturn, KindStageCall:
		return o.args
	default:
		return nil
	}
}

// SetArguments implements dialect.HasArgumentsMut.
func (o *Op) SetArguments(args []ids.SSAValue) {
	switch o.Kind {
	case KindDec, KindCondZero, KindReturn, KindStageCall:
		o.args = args
	}
}

// Results implements dialect.HasResults.
func (o *Op) Results() []ids.ResultValue {
	if o.Kind == KindConst || o.Kind == KindDec {
		return o.results
	}
	return nil
}

// SetResults implements dialect.HasResultsMut.
func (o *Op) SetResults(results []ids.ResultValue) { o.results = results }

// Successors implements dialect.HasSuccessors.
func (o *Op) Successors() []ids.Successor {
	switch o.Kind {
	case KindCondZero:
		return []ids.Successor{o.ZeroTarget, o.NonZeroTarget}
	case KindJump:
		return []ids.Successor{o.Target}
	default:
		return nil
	}
}

// SetSuccessors implements dialect.HasSuccessorsMut.
func (o *Op) SetSuccessors(succs []ids.Successor) {
	switch o.Kind {
	case KindCondZero:
		if len(succs) == 2 {
			o.ZeroTarget, o.NonZeroTarget = succs[0], succs[1]
		}
	case KindJump:
		if len(succs) == 1 {
			o.Target = succs[0]
		}
	}
}

// IsTerminator implements dialect.IsTerminator. StageCall terminates its
// block: it hands control to another stage's specialization as a tail
// call, and the calling block ends there.
func (o *Op) IsTerminator() bool {
	return o.Kind == KindCondZero || o.Kind == KindJump || o.Kind == KindReturn || o.Kind == KindStageCall
}

// IsPure implements dialect.IsPure: arithmetic and control transfer carry
// no side effects observable outside the call itself.
func (o *Op) IsPure() bool { return o.Kind != KindStageCall }

// Step implements interp.Interpretable[int64], driving the concrete stack
// interpreter over this dialect.
func (o *Op) Step(args []int64) ([]int64, interp.Continuation[int64], error) {
	switch o.Kind {
	case KindConst:
		return []int64{o.Value}, interp.ContinueWith[int64](), nil
	case KindDec:
		return []int64{args[0] - 1}, interp.ContinueWith[int64](), nil
	case KindCondZero:
		if args[0] == 0 {
			return nil, interp.JumpTo[int64](o.ZeroTarget), nil
		}
		return nil, interp.JumpTo[int64](o.NonZeroTarget), nil
	case KindJump:
		return nil, interp.JumpTo[int64](o.Target), nil
	case KindReturn:
		return nil, interp.ReturnWith(args), nil
	case KindStageCall:
		return nil, interp.CallThen(o.CalleeStage, o.CalleeSpec, args, func(results []int64) interp.Continuation[int64] {
			return interp.ReturnWith(results)
		}), nil
	}
	return nil, interp.Continuation[int64]{}, nil
}
