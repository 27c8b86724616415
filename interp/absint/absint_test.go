package absint_test

import (
	"math"
	"testing"

	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/internal/testdialect/arith"
	"github.com/QuEraComputing/kirin/interp/absint"
	"github.com/QuEraComputing/kirin/pipeline"
	"github.com/QuEraComputing/kirin/stage"
)

func sig(n int) stage.Signature[arith.Interval] {
	return stage.Signature[arith.Interval]{Params: make([]arith.Interval, n), Result: arith.Interval{}}
}

// register builds a staged function + specialization wrapping body at p's
// given stage, returning the specialization id Analyze expects.
func register(t *testing.T, s *stage.StageInfo[*arith.Op, arith.Interval], p *pipeline.Pipeline, name string, arity int, body ids.Statement) ids.SpecializedFunction {
	t.Helper()
	fn := p.Function(name)
	staged, err := s.StagedFunction().Func(fn).Signature(sig(arity)).New()
	if err != nil {
		t.Fatalf("StagedFunction().New() = %v", err)
	}
	spec, err := s.Specialize().Of(staged).Signature(sig(arity)).Body(body).New()
	if err != nil {
		t.Fatalf("Specialize().New() = %v", err)
	}
	return spec
}

// TestAnalyzeStraightLineConstantPropagation is scenario S1: no branches,
// no block arguments — the analyzer should compute the exact constant
// result [42, 42] from 10 + 32.
func TestAnalyzeStraightLineConstantPropagation(t *testing.T) {
	p := pipeline.New()
	stageID, s := pipeline.AddStage[*arith.Op, arith.Interval](p, "main", stage.SingleDispatch)
	store := s.Store

	aStmt := store.Statement().Definition(arith.Const(10)).ResultTypes(arith.Interval{}).New()
	aInfo, _ := store.Statement(aStmt)
	a := aInfo.Definition.Results()[0]

	bStmt := store.Statement().Definition(arith.Const(32)).ResultTypes(arith.Interval{}).New()
	bInfo, _ := store.Statement(bStmt)
	b := bInfo.Definition.Results()[0]

	cStmt := store.Statement().Definition(arith.Add(a, b)).ResultTypes(arith.Interval{}).New()
	cInfo, _ := store.Statement(cStmt)
	c := cInfo.Definition.Results()[0]

	retStmt := store.Statement().Definition(arith.Return(c)).New()
	entry, err := store.Block().Stmt(aStmt).Stmt(bStmt).Stmt(cStmt).Terminator(retStmt).New()
	if err != nil {
		t.Fatalf("Block().New() = %v", err)
	}
	region, err := store.Region().AddBlock(entry).New()
	if err != nil {
		t.Fatalf("Region().New() = %v", err)
	}
	body := store.Statement().Definition(arith.Body(region)).New()

	spec := register(t, s, p, "straightLine", 0, body)

	ai := absint.New[arith.Interval](p, 2, 100)
	result, err := absint.Analyze[*arith.Op, arith.Interval](ai, stageID, spec, nil)
	if err != nil {
		t.Fatalf("Analyze = %v", err)
	}
	if len(result.Returns) != 1 {
		t.Fatalf("got %d returns, want 1", len(result.Returns))
	}
	if result.Returns[0] != arith.Constant(42) {
		t.Fatalf("Returns[0] = %v, want [42, 42]", result.Returns[0])
	}
}

// TestAnalyzeBranchForkAndJoin is scenario S2: arith.CondBranch always
// forks both arms (the abstract condition may straddle zero), so the
// returned value must be the join of both arms' results.
func TestAnalyzeBranchForkAndJoin(t *testing.T) {
	p := pipeline.New()
	stageID, s := pipeline.AddStage[*arith.Op, arith.Interval](p, "main", stage.SingleDispatch)
	store := s.Store

	base := store.Blocks.NextId()
	entryID := ids.Block(base)
	thenID := ids.Block(base + 1)
	elseID := ids.Block(base + 2)

	x := store.SSA().Name("x").Ty(arith.Interval{}).AsBlockArgument(entryID).New()

	condStmt := store.Statement().Definition(arith.CondBranch(x, ids.Successor{Target: thenID}, ids.Successor{Target: elseID})).New()
	entry, err := store.Block().Terminator(condStmt).New()
	if err != nil || entry != entryID {
		t.Fatalf("entry block build = %v (id %d, want %d)", err, entry.Raw(), entryID.Raw())
	}
	entryInfo, _ := store.Blocks.GetMut(entry)
	entryInfo.Arguments = []ids.SSAValue{x}

	oneStmt := store.Statement().Definition(arith.Const(1)).ResultTypes(arith.Interval{}).New()
	oneInfo, _ := store.Statement(oneStmt)
	one := oneInfo.Definition.Results()[0]
	tStmt := store.Statement().Definition(arith.Add(x, one)).ResultTypes(arith.Interval{}).New()
	tInfo, _ := store.Statement(tStmt)
	tRet := store.Statement().Definition(arith.Return(tInfo.Definition.Results()[0])).New()
	thenBlk, err := store.Block().Stmt(oneStmt).Stmt(tStmt).Terminator(tRet).New()
	if err != nil || thenBlk != thenID {
		t.Fatalf("then block build = %v", err)
	}

	eStmt := store.Statement().Definition(arith.Neg(x)).ResultTypes(arith.Interval{}).New()
	eInfo, _ := store.Statement(eStmt)
	eRet := store.Statement().Definition(arith.Return(eInfo.Definition.Results()[0])).New()
	elseBlk, err := store.Block().Stmt(eStmt).Terminator(eRet).New()
	if err != nil || elseBlk != elseID {
		t.Fatalf("else block build = %v", err)
	}

	region, err := store.Region().AddBlock(entry).AddBlock(thenBlk).AddBlock(elseBlk).New()
	if err != nil {
		t.Fatalf("Region().New() = %v", err)
	}
	body := store.Statement().Definition(arith.Body(region)).New()

	spec := register(t, s, p, "branchJoin", 1, body)

	ai := absint.New[arith.Interval](p, 2, 100)
	result, err := absint.Analyze[*arith.Op, arith.Interval](ai, stageID, spec, []arith.Interval{arith.New(0, 10)})
	if err != nil {
		t.Fatalf("Analyze = %v", err)
	}

	// then: x+1 over [0,10] -> [1,11]; else: -x over [0,10] -> [-10,0].
	// Joined: [-10, 11].
	want := arith.New(-10, 11)
	joined := arith.Interval{}
	for _, r := range result.Returns {
		joined = joined.Join(r)
	}
	if joined != want {
		t.Fatalf("joined returns = %v, want %v (individual returns: %v)", joined, want, result.Returns)
	}
}

// TestAnalyzeLoopConvergesUnderWidening is scenario S3: an unbounded
// self-incrementing loop, which AllJoins would never stabilize but
// JoinThenWiden drives to a fixpoint in a bounded number of visits.
func TestAnalyzeLoopConvergesUnderWidening(t *testing.T) {
	p := pipeline.New()
	stageID, s := pipeline.AddStage[*arith.Op, arith.Interval](p, "main", stage.SingleDispatch)
	store := s.Store

	base := store.Blocks.NextId()
	entryID := ids.Block(base)
	loopID := ids.Block(base + 1)
	exitID := ids.Block(base + 2)

	// entry: %z = const 0; jump loop(%z)
	zStmt := store.Statement().Definition(arith.Const(0)).ResultTypes(arith.Interval{}).New()
	zInfo, _ := store.Statement(zStmt)
	z := zInfo.Definition.Results()[0]
	jmp := store.Statement().Definition(arith.Jump(ids.Successor{Target: loopID, Args: []ids.SSAValue{z}})).New()
	entry, err := store.Block().Stmt(zStmt).Terminator(jmp).New()
	if err != nil || entry != entryID {
		t.Fatalf("entry block build = %v", err)
	}

	// loop(%i): %i2 = add %i, const(1); condbr %i2 -> [exit(%i2), loop(%i2)]
	i := store.SSA().Name("i").Ty(arith.Interval{}).AsBlockArgument(loopID).New()
	oneStmt := store.Statement().Definition(arith.Const(1)).ResultTypes(arith.Interval{}).New()
	oneInfo, _ := store.Statement(oneStmt)
	one := oneInfo.Definition.Results()[0]
	i2Stmt := store.Statement().Definition(arith.Add(i, one)).ResultTypes(arith.Interval{}).New()
	i2Info, _ := store.Statement(i2Stmt)
	i2 := i2Info.Definition.Results()[0]
	loopTerm := store.Statement().Definition(arith.CondBranch(
		i2,
		ids.Successor{Target: exitID, Args: []ids.SSAValue{i2}},
		ids.Successor{Target: loopID, Args: []ids.SSAValue{i2}},
	)).New()
	loopBlk, err := store.Block().Stmt(oneStmt).Stmt(i2Stmt).Terminator(loopTerm).New()
	if err != nil || loopBlk != loopID {
		t.Fatalf("loop block build = %v", err)
	}
	loopInfo, _ := store.Blocks.GetMut(loopBlk)
	loopInfo.Arguments = []ids.SSAValue{i}

	// exit(%e): return %e
	e := store.SSA().Name("e").Ty(arith.Interval{}).AsBlockArgument(exitID).New()
	exitRet := store.Statement().Definition(arith.Return(e)).New()
	exitBlk, err := store.Block().Terminator(exitRet).New()
	if err != nil || exitBlk != exitID {
		t.Fatalf("exit block build = %v", err)
	}
	exitInfo, _ := store.Blocks.GetMut(exitBlk)
	exitInfo.Arguments = []ids.SSAValue{e}

	region, err := store.Region().AddBlock(entry).AddBlock(loopBlk).AddBlock(exitBlk).New()
	if err != nil {
		t.Fatalf("Region().New() = %v", err)
	}
	body := store.Statement().Definition(arith.Body(region)).New()

	spec := register(t, s, p, "loop", 0, body)

	// WidenAfter=1: only the first join at a block stays precise, every
	// later merge widens, guaranteeing the ascending chain over i's upper
	// bound reaches MaxInt64 in a small, bounded number of visits.
	ai := absint.New[arith.Interval](p, 1, 1000)
	result, err := absint.Analyze[*arith.Op, arith.Interval](ai, stageID, spec, nil)
	if err != nil {
		t.Fatalf("Analyze = %v", err)
	}

	loopEntry, ok := result.BlockEntry[loopID]
	if !ok {
		t.Fatal("loop block has no recorded entry state")
	}
	final := loopEntry[i]
	if final.Lo != 0 {
		t.Fatalf("loop bound Lo = %d, want 0 (lower bound never grows in this program)", final.Lo)
	}
	if final.Hi != math.MaxInt64 {
		t.Fatalf("loop bound Hi = %d, want MaxInt64 after widening", final.Hi)
	}
}
