package ir_test

import (
	"testing"

	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/internal/testdialect/arith"
	"github.com/QuEraComputing/kirin/ir"
)

func TestBlockLinkedListIntegrity(t *testing.T) {
	store := ir.NewStore[*arith.Op, arith.IntType]()

	a := store.Statement().Name("a").Definition(arith.Const(10)).ResultTypes(arith.IntType{}).New()
	b := store.Statement().Name("b").Definition(arith.Const(32)).ResultTypes(arith.IntType{}).New()

	aInfo, _ := store.Statement(a)
	bInfo, _ := store.Statement(b)
	cDef := arith.Add(aInfo.Definition.Results()[0], bInfo.Definition.Results()[0])
	c := store.Statement().Name("c").Definition(cDef).ResultTypes(arith.IntType{}).New()

	cInfo, _ := store.Statement(c)
	retDef := arith.Return(cInfo.Definition.Results()[0])
	ret := store.Statement().Name("ret").Definition(retDef).New()

	block, err := store.Block().Name("entry").Stmt(a).Stmt(b).Stmt(c).Terminator(ret).New()
	if err != nil {
		t.Fatalf("Block().New() = %v", err)
	}

	body := store.BodyStatements(block)
	want := []ids.Statement{a, b, c}
	if len(body) != len(want) {
		t.Fatalf("BodyStatements returned %d statements, want %d", len(body), len(want))
	}
	for i, id := range want {
		if body[i] != id {
			t.Fatalf("BodyStatements[%d] = %d, want %d", i, body[i].Raw(), id.Raw())
		}
		stmtInfo, ok := store.Statement(id)
		if !ok {
			t.Fatalf("Statement(%d) missing", id.Raw())
		}
		if stmtInfo.Parent == nil || *stmtInfo.Parent != block {
			t.Fatalf("statement %d parent = %v, want %d", id.Raw(), stmtInfo.Parent, block.Raw())
		}
	}

	order := store.ExecutionOrder(block)
	if len(order) != 4 || order[3] != ret {
		t.Fatalf("ExecutionOrder = %v, want body + terminator last", order)
	}
}

func TestBlockRejectsNonTerminator(t *testing.T) {
	store := ir.NewStore[*arith.Op, arith.IntType]()
	a := store.Statement().Definition(arith.Const(1)).ResultTypes(arith.IntType{}).New()

	_, err := store.Block().Terminator(a).New()
	if err == nil {
		t.Fatal("expected ErrNotTerminator using a non-terminator as terminator")
	}
	var notTerm ir.ErrNotTerminator
	if !errorsAs(err, &notTerm) {
		t.Fatalf("err = %v, want ErrNotTerminator", err)
	}
}

func TestRegionLinksBlocksAndSetsParent(t *testing.T) {
	store := ir.NewStore[*arith.Op, arith.IntType]()

	ret := store.Statement().Definition(arith.Return(0)).New()
	b1, err := store.Block().Terminator(ret).New()
	if err != nil {
		t.Fatalf("Block().New() = %v", err)
	}
	ret2 := store.Statement().Definition(arith.Return(0)).New()
	b2, err := store.Block().Terminator(ret2).New()
	if err != nil {
		t.Fatalf("Block().New() = %v", err)
	}

	region, err := store.Region().AddBlock(b1).AddBlock(b2).New()
	if err != nil {
		t.Fatalf("Region().New() = %v", err)
	}

	blocks := store.RegionBlocks(region)
	if len(blocks) != 2 || blocks[0] != b1 || blocks[1] != b2 {
		t.Fatalf("RegionBlocks = %v, want [%d %d]", blocks, b1.Raw(), b2.Raw())
	}

	b1Info, _ := store.Block(b1)
	if b1Info.Parent == nil || *b1Info.Parent != region {
		t.Fatalf("block %d parent = %v, want region %d", b1.Raw(), b1Info.Parent, region.Raw())
	}
}

func errorsAs(err error, target *ir.ErrNotTerminator) bool {
	e, ok := err.(ir.ErrNotTerminator)
	if ok {
		*target = e
	}
	return ok
}
