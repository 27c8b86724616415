package arena_test

import (
	"testing"

	"github.com/QuEraComputing/kirin/arena"
	"github.com/QuEraComputing/kirin/ids"
)

func TestAllocWithIdMonotonicity(t *testing.T) {
	var a arena.Arena[ids.Block, string]

	var allocated []ids.Block
	for i := 0; i < 5; i++ {
		id := a.AllocWithId(func(ids.Block) string { return "entry" })
		allocated = append(allocated, id)
	}

	for _, id := range allocated {
		if _, ok := a.Get(id); !ok {
			t.Fatalf("Get(%d) missing after allocation, violates arena monotonicity", id.Raw())
		}
	}
	if a.Len() != len(allocated) {
		t.Fatalf("Len() = %d, want %d", a.Len(), len(allocated))
	}
}

func TestAllocWithIdSeesOwnId(t *testing.T) {
	var a arena.Arena[ids.Block, ids.Block]

	id := a.AllocWithId(func(self ids.Block) ids.Block { return self })
	info, ok := a.Get(id)
	if !ok {
		t.Fatal("Get returned false for just-allocated id")
	}
	if *info != id {
		t.Fatalf("info embedded id = %d, want %d", info.Raw(), id.Raw())
	}
}

func TestGetOutOfRange(t *testing.T) {
	var a arena.Arena[ids.Block, string]
	a.AllocWithId(func(ids.Block) string { return "only" })

	if _, ok := a.Get(ids.Block(99)); ok {
		t.Fatal("Get(99) should fail on an arena with one entry")
	}
}

func TestDenseHint(t *testing.T) {
	var a arena.Arena[ids.Block, string]
	a.AllocWithId(func(ids.Block) string { return "a" })
	a.AllocWithId(func(ids.Block) string { return "b" })

	hint := arena.Hint[ids.Block, string, int](&a)
	hint.Set(0, 10)
	hint.Set(1, 20)

	if got := hint.Get(0); got != 10 {
		t.Fatalf("hint.Get(0) = %d, want 10", got)
	}
	if got := hint.Get(1); got != 20 {
		t.Fatalf("hint.Get(1) = %d, want 20", got)
	}
	if got := hint.Get(5); got != 0 {
		t.Fatalf("hint.Get(5) (out of range) = %d, want zero value", got)
	}
}
