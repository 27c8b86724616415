package intern_test

import (
	"testing"

	"github.com/QuEraComputing/kirin/intern"
)

type handle int

func TestInternIsIdempotent(t *testing.T) {
	tbl := intern.New[handle]()

	a := tbl.Intern("foo")
	b := tbl.Intern("foo")
	if a != b {
		t.Fatalf("interning %q twice gave %d and %d, want equal handles", "foo", a, b)
	}

	c := tbl.Intern("bar")
	if c == a {
		t.Fatal("distinct strings should not share a handle")
	}
}

func TestResolveRoundTrips(t *testing.T) {
	tbl := intern.New[handle]()
	h := tbl.Intern("hello")

	s, ok := tbl.Resolve(h)
	if !ok || s != "hello" {
		t.Fatalf("Resolve(%d) = %q, %v, want %q, true", h, s, ok, "hello")
	}
}

func TestResolveUnknownHandleFails(t *testing.T) {
	tbl := intern.New[handle]()
	tbl.Intern("a")

	if _, ok := tbl.Resolve(handle(99)); ok {
		t.Fatal("Resolve on a never-issued handle should report false")
	}
	if _, ok := tbl.Resolve(handle(-1)); ok {
		t.Fatal("Resolve on a negative handle should report false")
	}
}

func TestLenCountsDistinctStrings(t *testing.T) {
	tbl := intern.New[handle]()
	tbl.Intern("a")
	tbl.Intern("b")
	tbl.Intern("a")

	if got := tbl.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
}
