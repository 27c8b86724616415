package parser_test

import (
	"strings"
	"testing"

	"github.com/QuEraComputing/kirin/internal/testdialect/arith"
	"github.com/QuEraComputing/kirin/internal/testdialect/stagecall"
	"github.com/QuEraComputing/kirin/parser"
	"github.com/QuEraComputing/kirin/pipeline"
	"github.com/QuEraComputing/kirin/stage"
)

func TestParseInstallsStageAndSpecialization(t *testing.T) {
	p := pipeline.New()
	c := arith.Codec{}

	text := `
stage @main fn @double(i64) -> i64;
specialize @main fn @double(i64) -> i64 {
^entry(%a: i64):
%two: i64 = const 2
%r: i64 = add %a, %two
return %r
}
`
	touched, err := parser.Parse[*arith.Op, arith.IntType](p, c, stage.SingleDispatch, text, "")
	if err != nil {
		t.Fatalf("Parse = %v", err)
	}
	if len(touched) != 1 {
		t.Fatalf("got %d touched functions, want 1", len(touched))
	}
}

// A specialize header may forward-reference a stage declared later in the
// same text: stage headers all install before any specialize body does.
func TestParseAllowsSpecializeToForwardReferenceALaterStage(t *testing.T) {
	p := pipeline.New()
	c := arith.Codec{}

	text := `
specialize @late fn @id(i64) -> i64 {
^entry(%a: i64):
return %a
}
stage @late fn @id(i64) -> i64;
`
	if _, err := parser.Parse[*arith.Op, arith.IntType](p, c, stage.SingleDispatch, text, ""); err != nil {
		t.Fatalf("Parse = %v", err)
	}
}

func TestParseSpecializeWithoutStageFails(t *testing.T) {
	p := pipeline.New()
	c := arith.Codec{}

	text := `
stage @main fn @other(i64) -> i64;
specialize @main fn @missing(i64) -> i64 {
return %a
}
`
	if _, err := parser.Parse[*arith.Op, arith.IntType](p, c, stage.SingleDispatch, text, ""); err == nil {
		t.Fatal("expected MissingStageDeclaration error")
	}
}

func TestParseUnknownTypeNameFails(t *testing.T) {
	p := pipeline.New()
	c := arith.Codec{}

	text := `stage @main fn @f(i32) -> i64;`
	if _, err := parser.Parse[*arith.Op, arith.IntType](p, c, stage.SingleDispatch, text, ""); err == nil {
		t.Fatal("expected an unknown-type error for i32")
	}
}

// A stage name already registered under a different dialect must fail to
// resolve for this dialect's Parse call, with a closest-match suggestion.
func TestParseReferencingStageOfWrongDialectSuggestsClosestName(t *testing.T) {
	p := pipeline.New()

	stagecallText := `stage @shared fn @f(i64) -> i64;`
	if _, err := parser.Parse[*stagecall.Op, stagecall.IntType](p, stagecall.Codec{}, stage.SingleDispatch, stagecallText, ""); err != nil {
		t.Fatalf("Parse(stagecall) = %v", err)
	}

	arithText := `stage @shared fn @g(i64) -> i64;`
	_, err := parser.Parse[*arith.Op, arith.IntType](p, arith.Codec{}, stage.SingleDispatch, arithText, "")
	if err == nil {
		t.Fatal("expected an UnknownStage error: @shared already belongs to the stagecall dialect")
	}
	if !strings.Contains(err.Error(), "UnknownStage") {
		t.Fatalf("error = %v, want it to name UnknownStage", err)
	}
}

func TestParseRejectsMalformedHeader(t *testing.T) {
	p := pipeline.New()
	c := arith.Codec{}

	text := `stage @main @f(i64) -> i64;` // missing 'fn'
	_, err := parser.Parse[*arith.Op, arith.IntType](p, c, stage.SingleDispatch, text, "")
	if err == nil {
		t.Fatal("expected InvalidHeader error for missing 'fn' keyword")
	}
	if !strings.Contains(err.Error(), "InvalidHeader") {
		t.Fatalf("error = %v, want it to name InvalidHeader", err)
	}
}
