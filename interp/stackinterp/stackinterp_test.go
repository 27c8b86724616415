package stackinterp_test

import (
	"testing"

	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/internal/testdialect/stagecall"
	"github.com/QuEraComputing/kirin/interp/stackinterp"
	"github.com/QuEraComputing/kirin/pipeline"
	"github.com/QuEraComputing/kirin/stage"
)

// buildCountdownBody builds one stage's half of the S8 scenario: decrement
// to zero locally, or bounce the remainder to the given target stage's
// given specialization.
//
//	^entry(%n: i64):
//	%z: i64 = const 0
//	condzero %n, ^done, ^dec
//	^done:
//	return %z
//	^dec:
//	%m: i64 = dec %n
//	<StageCall targetStage, targetSpec, %m>   ; terminator
func buildCountdownBody(s *stage.StageInfo[*stagecall.Op, stagecall.IntType], targetStage ids.CompileStage, targetSpec ids.SpecializedFunction) ids.Statement {
	store := s.Store

	base := store.Blocks.NextId()
	entryID := ids.Block(base)
	doneID := ids.Block(base + 1)
	decID := ids.Block(base + 2)

	n := store.SSA().Name("n").Ty(stagecall.IntType{}).AsBlockArgument(entryID).New()

	zStmt := store.Statement().Name("z").Definition(stagecall.Const(0)).ResultTypes(stagecall.IntType{}).New()
	zInfo, _ := store.Statement(zStmt)
	z := zInfo.Definition.Results()[0]

	condStmt := store.Statement().Definition(stagecall.CondZero(n, ids.Successor{Target: doneID}, ids.Successor{Target: decID})).New()

	entry, err := store.Block().Name("entry").Stmt(zStmt).Terminator(condStmt).New()
	if err != nil || entry != entryID {
		panic("entry block id prediction failed")
	}
	entryInfo, _ := store.Blocks.GetMut(entry)
	entryInfo.Arguments = []ids.SSAValue{n}

	retStmt := store.Statement().Definition(stagecall.Return(z)).New()
	done, err := store.Block().Name("done").Terminator(retStmt).New()
	if err != nil || done != doneID {
		panic("done block id prediction failed")
	}

	mStmt := store.Statement().Name("m").Definition(stagecall.Dec(n)).ResultTypes(stagecall.IntType{}).New()
	mInfo, _ := store.Statement(mStmt)
	m := mInfo.Definition.Results()[0]

	callStmt := store.Statement().Definition(stagecall.StageCall(targetStage, targetSpec, m)).New()
	dec, err := store.Block().Name("dec").Stmt(mStmt).Terminator(callStmt).New()
	if err != nil || dec != decID {
		panic("dec block id prediction failed")
	}

	region, err := store.Region().AddBlock(entry).AddBlock(done).AddBlock(dec).New()
	if err != nil {
		panic(err)
	}
	return store.Statement().Definition(stagecall.Body(region)).New()
}

func sig(n int) stage.Signature[stagecall.IntType] {
	return stage.Signature[stagecall.IntType]{
		Params: make([]stagecall.IntType, n),
		Result: stagecall.IntType{},
	}
}

// TestStackInterpreterBouncesBetweenStagesToZero is scenario S8: a counter
// decremented and StageCall-bounced between two stages until it reaches
// zero, driven entirely by the concrete stack interpreter.
func TestStackInterpreterBouncesBetweenStagesToZero(t *testing.T) {
	p := pipeline.New()
	stageAID, infoA := pipeline.AddStage[*stagecall.Op, stagecall.IntType](p, "stageA", stage.SingleDispatch)
	stageBID, infoB := pipeline.AddStage[*stagecall.Op, stagecall.IntType](p, "stageB", stage.SingleDispatch)

	// Both stages' first (and only) specialization will be allocated id 0
	// in their respective, currently-empty Specialized arenas, so the
	// bodies can reference each other before either is actually
	// registered.
	specA := infoA.Specialized.NextId()
	specB := infoB.Specialized.NextId()

	bodyA := buildCountdownBody(infoA, stageBID, specB)
	bodyB := buildCountdownBody(infoB, stageAID, specA)

	fnA := p.Function("countA")
	stagedA, err := infoA.StagedFunction().Func(fnA).Signature(sig(1)).New()
	if err != nil {
		t.Fatalf("stage A StagedFunction().New() = %v", err)
	}
	gotSpecA, err := infoA.Specialize().Of(stagedA).Signature(sig(1)).Body(bodyA).New()
	if err != nil {
		t.Fatalf("stage A Specialize().New() = %v", err)
	}
	if gotSpecA != specA {
		t.Fatalf("stage A specialization id = %d, want predicted %d", gotSpecA.Raw(), specA.Raw())
	}

	fnB := p.Function("countB")
	stagedB, err := infoB.StagedFunction().Func(fnB).Signature(sig(1)).New()
	if err != nil {
		t.Fatalf("stage B StagedFunction().New() = %v", err)
	}
	gotSpecB, err := infoB.Specialize().Of(stagedB).Signature(sig(1)).Body(bodyB).New()
	if err != nil {
		t.Fatalf("stage B Specialize().New() = %v", err)
	}
	if gotSpecB != specB {
		t.Fatalf("stage B specialization id = %d, want predicted %d", gotSpecB.Raw(), specB.Raw())
	}

	si := stackinterp.New[int64](p)
	if err := stackinterp.Call[*stagecall.Op, stagecall.IntType, int64](si, stageAID, gotSpecA, []int64{5}); err != nil {
		t.Fatalf("Call = %v", err)
	}
	results, err := stackinterp.Run[*stagecall.Op, stagecall.IntType, int64](si)
	if err != nil {
		t.Fatalf("Run = %v", err)
	}
	if len(results) != 1 || results[0] != 0 {
		t.Fatalf("results = %v, want [0]", results)
	}
}

func TestStackInterpreterFuelExhaustionStopsAnInfiniteBounce(t *testing.T) {
	p := pipeline.New()
	stageAID, infoA := pipeline.AddStage[*stagecall.Op, stagecall.IntType](p, "stageA", stage.SingleDispatch)
	stageBID, infoB := pipeline.AddStage[*stagecall.Op, stagecall.IntType](p, "stageB", stage.SingleDispatch)

	specA := infoA.Specialized.NextId()
	specB := infoB.Specialized.NextId()
	bodyA := buildCountdownBody(infoA, stageBID, specB)
	bodyB := buildCountdownBody(infoB, stageAID, specA)

	fnA := p.Function("countA")
	stagedA, _ := infoA.StagedFunction().Func(fnA).Signature(sig(1)).New()
	gotSpecA, _ := infoA.Specialize().Of(stagedA).Signature(sig(1)).Body(bodyA).New()

	fnB := p.Function("countB")
	stagedB, _ := infoB.StagedFunction().Func(fnB).Signature(sig(1)).New()
	infoB.Specialize().Of(stagedB).Signature(sig(1)).Body(bodyB).New()

	// A starting count far larger than the fuel budget should exhaust
	// fuel before ever returning, rather than looping forever.
	si := stackinterp.New[int64](p).WithFuel(10)
	if err := stackinterp.Call[*stagecall.Op, stagecall.IntType, int64](si, stageAID, gotSpecA, []int64{1_000_000}); err != nil {
		t.Fatalf("Call = %v", err)
	}
	_, err := stackinterp.Run[*stagecall.Op, stagecall.IntType, int64](si)
	if err == nil {
		t.Fatal("expected FuelExhausted, got nil error")
	}
}
