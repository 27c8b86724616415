package lattice_test

import (
	"testing"

	"github.com/QuEraComputing/kirin/lattice"
)

// intSet is a small finite-subset-of-{0,1,2} lattice ordered by ⊆, used to
// exercise lattice.Join2 and the Lattice contract without pulling in a real
// dialect's domain type.
type intSet uint8

func (s intSet) Join(other intSet) intSet { return s | other }

func (s intSet) IsSubseteq(other intSet) bool { return s&other == s }

func (intSet) Bottom() intSet { return 0 }

func (intSet) Top() intSet { return 0b111 }

func TestJoin2FoldsAcrossSlice(t *testing.T) {
	got := lattice.Join2([]intSet{0b001, 0b010, 0b100})
	if got != 0b111 {
		t.Fatalf("Join2 = %b, want %b", got, 0b111)
	}
}

func TestJoin2SingleElement(t *testing.T) {
	got := lattice.Join2([]intSet{0b010})
	if got != 0b010 {
		t.Fatalf("Join2 single = %b, want %b", got, 0b010)
	}
}

func TestJoin2PanicsOnEmptySlice(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Join2 on an empty slice should panic")
		}
	}()
	lattice.Join2([]intSet{})
}

func TestIsSubseteqOrdering(t *testing.T) {
	if !intSet(0b001).IsSubseteq(0b011) {
		t.Fatal("{0} should be ⊑ {0,1}")
	}
	if intSet(0b011).IsSubseteq(0b001) {
		t.Fatal("{0,1} should not be ⊑ {0}")
	}
}

func TestBottomIsIdentityForJoin(t *testing.T) {
	var bottom intSet
	v := intSet(0b101)
	if got := bottom.Join(v); got != v {
		t.Fatalf("Bottom().Join(v) = %b, want %b", got, v)
	}
}
