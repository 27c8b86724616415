package stage

import (
	"github.com/QuEraComputing/kirin/arena"
	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/ir"
	"github.com/QuEraComputing/kirin/kerrors"
	"github.com/QuEraComputing/kirin/lattice"
)

// StagedNamePolicy governs how many staged functions one Function may have
// at a given stage.
type StagedNamePolicy int

const (
	// SingleDispatch allows at most one staged function per Function id at
	// this stage. Default.
	SingleDispatch StagedNamePolicy = iota
	// MultipleDispatch allows multiple staged functions per Function,
	// provided every pair of their signatures is pairwise incomparable
	// (function overloading by parameter lattice type).
	MultipleDispatch
)

// StagedFunctionInfo binds a Function to this stage with a signature.
type StagedFunctionInfo[T any] struct {
	ID              ids.StagedFunction
	Function        ids.Function
	Stage           ids.CompileStage
	Signature       Signature[T]
	Specializations []ids.SpecializedFunction
}

// SpecializedFunctionInfo binds a StagedFunction to a refined signature and
// a body statement (typically a function-body statement containing a
// region, in this stage's own ir.Store).
type SpecializedFunctionInfo[T any] struct {
	ID          ids.SpecializedFunction
	Staged      ids.StagedFunction
	Signature   Signature[T]
	Body        ids.Statement
	Invalidated bool
}

// StageInfo owns one stage's dialect-L, type-T IR: it embeds an ir.Store
// for the SSA/statement/block/region arenas and adds the
// staged-function/specialization arenas, symbol table (inherited from the
// embedded Store), and staging policy. T must be a lattice.Lattice so
// staging/specialization order (⊑) is defined.
type StageInfo[L any, T lattice.Lattice[T]] struct {
	*ir.Store[L, T]

	StagedFunctions arena.Arena[ids.StagedFunction, StagedFunctionInfo[T]]
	Specialized     arena.Arena[ids.SpecializedFunction, SpecializedFunctionInfo[T]]

	Policy StagedNamePolicy
	Name   *ids.GlobalSymbol
	ID     *ids.CompileStage

	byFunction map[ids.Function][]ids.StagedFunction
}

// New returns an empty StageInfo under the given staging policy.
func New[L any, T lattice.Lattice[T]](policy StagedNamePolicy) *StageInfo[L, T] {
	return &StageInfo[L, T]{
		Store:      ir.NewStore[L, T](),
		Policy:     policy,
		byFunction: make(map[ids.Function][]ids.StagedFunction),
	}
}

// StagedOf returns the live staged-function ids registered for f at this
// stage (for SingleDispatch, at most one; for MultipleDispatch, possibly
// several with pairwise-incomparable signatures).
func (s *StageInfo[L, T]) StagedOf(f ids.Function) []ids.StagedFunction {
	return s.byFunction[f]
}

// LiveSpecializations returns the non-invalidated specializations of sf.
func (s *StageInfo[L, T]) LiveSpecializations(sf ids.StagedFunction) []ids.SpecializedFunction {
	info, ok := s.StagedFunctions.Get(sf)
	if !ok {
		return nil
	}
	var out []ids.SpecializedFunction
	for _, spec := range info.Specializations {
		if si, ok := s.Specialized.Get(spec); ok && !si.Invalidated {
			out = append(out, spec)
		}
	}
	return out
}

// UniqueLiveSpecialization resolves the single live, non-invalidated
// specialization of sf, as required by interpretation-time dispatch. Zero
// live specializations is NoSpecializationAtStage; more than one is
// AmbiguousSpecializationAtStage.
func (s *StageInfo[L, T]) UniqueLiveSpecialization(sf ids.StagedFunction) (ids.SpecializedFunction, error) {
	live := s.LiveSpecializations(sf)
	switch len(live) {
	case 0:
		return 0, kerrors.NoSpecializationAtStage{Staged: sf}
	case 1:
		return live[0], nil
	default:
		return 0, kerrors.AmbiguousSpecializationAtStage{Staged: sf, Count: len(live)}
	}
}

// Invalidate marks a specialization stale: it remains in the arena (for
// diagnostic replay) but is skipped by LiveSpecializations /
// UniqueLiveSpecialization.
func (s *StageInfo[L, T]) Invalidate(spec ids.SpecializedFunction) bool {
	info, ok := s.Specialized.GetMut(spec)
	if !ok {
		return false
	}
	info.Invalidated = true
	return true
}
