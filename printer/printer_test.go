package printer_test

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/QuEraComputing/kirin/internal/testdialect/arith"
	"github.com/QuEraComputing/kirin/internal/testdialect/stagecall"
	"github.com/QuEraComputing/kirin/parser"
	"github.com/QuEraComputing/kirin/pipeline"
	"github.com/QuEraComputing/kirin/printer"
	"github.com/QuEraComputing/kirin/stage"
)

// TestStageRoundTripsThroughParse is the print∘parse identity check: text
// parsed into a stage, printed back out, then re-parsed into a second
// pipeline, must print identically from both.
func TestStageRoundTripsThroughParse(t *testing.T) {
	p := pipeline.New()
	c := arith.Codec{}

	text := `
stage @main fn @addOne(i64) -> i64;
specialize @main fn @addOne(i64) -> i64 {
^entry(%a: i64):
%one: i64 = const 1
%r: i64 = add %a, %one
return %r
}
`
	if _, err := parser.Parse[*arith.Op, arith.IntType](p, c, stage.SingleDispatch, text, ""); err != nil {
		t.Fatalf("Parse = %v", err)
	}

	handle, err := p.StageByName(p.Symbols.Intern("main"))
	if err != nil {
		t.Fatalf("StageByName = %v", err)
	}
	info, ok := pipeline.ForDialect[*arith.Op, arith.IntType](handle)
	if !ok {
		t.Fatal("ForDialect failed to recover the arith stage")
	}

	printed, err := printer.Stage[*arith.Op, arith.IntType](p, info, c)
	if err != nil {
		t.Fatalf("Stage = %v", err)
	}
	if !strings.Contains(printed, "stage @main fn @addOne") {
		t.Fatalf("printed output missing staged-function header:\n%s", printed)
	}
	if !strings.Contains(printed, "specialize @main fn @addOne") {
		t.Fatalf("printed output missing specialization:\n%s", printed)
	}
	snaps.MatchSnapshot(t, "addOne printed", printed)

	p2 := pipeline.New()
	if _, err := parser.Parse[*arith.Op, arith.IntType](p2, c, stage.SingleDispatch, printed, ""); err != nil {
		t.Fatalf("re-Parse(printed) = %v\nprinted:\n%s", err, printed)
	}
	handle2, err := p2.StageByName(p2.Symbols.Intern("main"))
	if err != nil {
		t.Fatalf("StageByName on re-parsed pipeline = %v", err)
	}
	info2, ok := pipeline.ForDialect[*arith.Op, arith.IntType](handle2)
	if !ok {
		t.Fatal("ForDialect failed on re-parsed pipeline")
	}
	reprinted, err := printer.Stage[*arith.Op, arith.IntType](p2, info2, c)
	if err != nil {
		t.Fatalf("Stage(reparsed) = %v", err)
	}

	if reprinted != printed {
		t.Fatalf("print∘parse is not the identity:\nfirst:\n%s\nsecond:\n%s", printed, reprinted)
	}
}

// TestStagePrintsMultipleDispatchStage covers printing a MultipleDispatch
// stage with one staged function and one specialization, and re-parsing
// the printed text.
func TestStagePrintsMultipleDispatchStage(t *testing.T) {
	p := pipeline.New()
	c := stagecall.Codec{}

	text := `
stage @counter fn @dec(i64) -> i64;
specialize @counter fn @dec(i64) -> i64 {
^entry(%n: i64):
%m: i64 = dec %n
return %m
}
`
	if _, err := parser.Parse[*stagecall.Op, stagecall.IntType](p, c, stage.MultipleDispatch, text, ""); err != nil {
		t.Fatalf("Parse = %v", err)
	}

	handle, err := p.StageByName(p.Symbols.Intern("counter"))
	if err != nil {
		t.Fatalf("StageByName = %v", err)
	}
	info, ok := pipeline.ForDialect[*stagecall.Op, stagecall.IntType](handle)
	if !ok {
		t.Fatal("ForDialect failed")
	}

	printed, err := printer.Stage[*stagecall.Op, stagecall.IntType](p, info, c)
	if err != nil {
		t.Fatalf("Stage = %v", err)
	}
	if !strings.Contains(printed, "dec %n") {
		t.Fatalf("printed body missing dec statement:\n%s", printed)
	}
	snaps.MatchSnapshot(t, "counter printed", printed)

	p2 := pipeline.New()
	if _, err := parser.Parse[*stagecall.Op, stagecall.IntType](p2, c, stage.MultipleDispatch, printed, ""); err != nil {
		t.Fatalf("re-Parse(printed) = %v\nprinted:\n%s", err, printed)
	}
}

// TestStagedFunctionErrorsOnUnknownId covers StagedFunction's own
// ArenaMiss path, independent of Stage's aggregation.
func TestStagedFunctionErrorsOnUnknownId(t *testing.T) {
	p := pipeline.New()
	_, info := pipeline.AddStage[*arith.Op, arith.IntType](p, "empty", stage.SingleDispatch)

	if _, err := printer.StagedFunction[*arith.Op, arith.IntType](p, info, arith.Codec{}, 999); err == nil {
		t.Fatal("expected an ArenaMiss error for an unknown staged-function id")
	}
}
