package arith

import (
	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/interp"
)

// Op is the dialect's statement definition type: exactly one of the
// concrete op kinds below is populated per statement, mirroring the
// teacher's tagged-union AST node style (internal/ast) adapted to Kirin's
// capability-interface dispatch instead of a Go type switch over node
// kinds — every Op value answers the dialect.Has*/Is* capability queries
// via the methods below; its Kind field is exported as well.
type Op struct {
	Kind Kind

	// Const
	Value int64

	// Add, Neg: operands
	args []ids.SSAValue

	// Const, Add, Neg: single result slot
	results []ids.ResultValue

	// CondBranch
	Cond       ids.SSAValue
	ThenTarget ids.Successor
	ElseTarget ids.Successor

	// Jump
	Target ids.Successor

	// Return: operands reused as the `args` field above

	// Body
	region ids.Region
}

// Kind distinguishes Op variants.
type Kind int

const (
	KindConst Kind = iota
	KindAdd
	KindNeg
	KindCondBranch
	KindJump
	KindReturn
	// KindBody wraps the single region that holds a specialization's
	// entry block and any blocks reachable from it. It is never itself
	// stepped: the interpreter enters its region's first block directly.
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

// Add returns an addition Op over two operands.
func Add(a, b ids.SSAValue) *Op { return &Op{Kind: KindAdd, args: []ids.SSAValue{a, b}} }

// Neg returns a negation Op over one operand.
func Neg(a ids.SSAValue) *Op { return &Op{Kind: KindNeg, args: []ids.SSAValue{a}} }

// CondBranch returns a two-way conditional branch Op on cond.
func CondBranch(cond ids.SSAValue, thenTarget, elseTarget ids.Successor) *Op {
	return &Op{Kind: KindCondBranch, Cond: cond, ThenTarget: thenTarget, ElseTarget: elseTarget}
}

// Jump returns an unconditional jump Op.
func Jump(target ids.Successor) *Op { return &Op{Kind: KindJump, Target: target} }

// Return returns a return Op over its operand.
func Return(v ids.SSAValue) *Op { return &Op{Kind: KindReturn, args: []ids.SSAValue{v}} }

// Arguments implements dialect.HasArguments.
func (o *Op) Arguments() []ids.SSAValue {
	switch o.Kind {
	case KindAdd, KindNeg, KindReturn:
		return o.args
	case KindCondBranch:
		return []ids.SSAValue{o.Cond}
	default:
		return nil
	}
}

// SetArguments implements dialect.HasArgumentsMut.
func (o *Op) SetArguments(args []ids.SSAValue) {
	switch o.Kind {
	case KindAdd, KindNeg, KindReturn:
		o.args = args
	case KindCondBranch:
		if len(args) > 0 {
			o.Cond = args[0]
		}
	}
}

// Results implements dialect.HasResults.
func (o *Op) Results() []ids.ResultValue {
	if o.Kind == KindConst || o.Kind == KindAdd || o.Kind == KindNeg {
		return o.results
	}
	return nil
}

// SetResults implements dialect.HasResultsMut.
func (o *Op) SetResults(results []ids.ResultValue) { o.results = results }

// Successors implements dialect.HasSuccessors.
func (o *Op) Successors() []ids.Successor {
	switch o.Kind {
	case KindCondBranch:
		return []ids.Successor{o.ThenTarget, o.ElseTarget}
	case KindJump:
		return []ids.Successor{o.Target}
	default:
		return nil
	}
}

// SetSuccessors implements dialect.HasSuccessorsMut.
func (o *Op) SetSuccessors(succs []ids.Successor) {
	switch o.Kind {
	case KindCondBranch:
		if len(succs) == 2 {
			o.ThenTarget, o.ElseTarget = succs[0], succs[1]
		}
	case KindJump:
		if len(succs) == 1 {
			o.Target = succs[0]
		}
	}
}

// IsTerminator implements dialect.IsTerminator.
func (o *Op) IsTerminator() bool {
	return o.Kind == KindCondBranch || o.Kind == KindJump || o.Kind == KindReturn
}

// IsConstant implements dialect.IsConstant.
func (o *Op) IsConstant() bool { return o.Kind == KindConst }

// IsPure implements dialect.IsPure: every op in this dialect is
// side-effect-free.
func (o *Op) IsPure() bool { return true }

// Step implements interp.Interpretable[Interval], driving the abstract
// interpreter over this dialect.
func (o *Op) Step(args []Interval) ([]Interval, interp.Continuation[Interval], error) {
	switch o.Kind {
	case KindConst:
		return []Interval{Constant(o.Value)}, interp.ContinueWith[Interval](), nil
	case KindAdd:
		return []Interval{args[0].Add(args[1])}, interp.ContinueWith[Interval](), nil
	case KindNeg:
		return []Interval{args[0].Neg()}, interp.ContinueWith[Interval](), nil
	case KindCondBranch:
		// Both branches are always explored: the abstract condition may
		// straddle zero, so neither successor can be ruled out.
		return nil, interp.ForkTo[Interval]([]ids.Successor{o.ThenTarget, o.ElseTarget}), nil
	case KindJump:
		return nil, interp.JumpTo[Interval](o.Target), nil
	case KindReturn:
		return nil, interp.ReturnWith(args), nil
	}
	return nil, interp.Continuation[Interval]{}, nil
}
