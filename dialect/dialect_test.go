package dialect_test

import (
	"testing"

	"github.com/QuEraComputing/kirin/dialect"
	"github.com/QuEraComputing/kirin/ids"
)

// probe is a minimal definition implementing only some capability
// interfaces, exercising the Check*/*Of helpers' type-assertion fallback
// behavior rather than any real dialect.
type probe struct {
	args    []ids.SSAValue
	results []ids.ResultValue
	pure    bool
}

func (p *probe) Arguments() []ids.SSAValue  { return p.args }
func (p *probe) Results() []ids.ResultValue { return p.results }
func (p *probe) IsPure() bool               { return p.pure }

func TestCheckHelpersFalseWhenCapabilityMissing(t *testing.T) {
	p := &probe{}

	if dialect.CheckTerminator(p) {
		t.Fatal("probe implements no IsTerminator; CheckTerminator should be false")
	}
	if dialect.CheckConstant(p) {
		t.Fatal("probe implements no IsConstant; CheckConstant should be false")
	}
	if dialect.CheckSpeculatable(p) {
		t.Fatal("probe implements no IsSpeculatable; CheckSpeculatable should be false")
	}
	if dialect.SuccessorsOf(p) != nil {
		t.Fatal("probe implements no HasSuccessors; SuccessorsOf should be nil")
	}
	if dialect.RegionsOf(p) != nil {
		t.Fatal("probe implements no HasRegions; RegionsOf should be nil")
	}
}

func TestCheckHelpersTrueWhenCapabilityPresent(t *testing.T) {
	p := &probe{args: []ids.SSAValue{1, 2}, results: []ids.ResultValue{3}, pure: true}

	if !dialect.CheckPure(p) {
		t.Fatal("probe.IsPure() is true; CheckPure should report true")
	}
	if got := dialect.ArgumentsOf(p); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("ArgumentsOf = %v, want [1 2]", got)
	}
	if got := dialect.ResultsOf(p); len(got) != 1 || got[0] != 3 {
		t.Fatalf("ResultsOf = %v, want [3]", got)
	}
}

// terminator additionally implements IsTerminator, reporting false — the
// interface is present but the answer is negative, distinct from "not
// implemented at all".
type terminator struct{ probe }

func (terminator) IsTerminator() bool { return false }

func TestCheckTerminatorDistinguishesImplementedFalseFromAbsent(t *testing.T) {
	if dialect.CheckTerminator(&terminator{}) {
		t.Fatal("terminator.IsTerminator() returns false; CheckTerminator should respect that, not just presence")
	}
}
