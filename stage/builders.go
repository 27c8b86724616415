package stage

import (
	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/kerrors"
	"github.com/QuEraComputing/kirin/lattice"
)

// StagedFunctionBuilder registers a Function at this stage under a
// signature, honoring the stage's StagedNamePolicy.
type StagedFunctionBuilder[L any, T lattice.Lattice[T]] struct {
	s    *StageInfo[L, T]
	fn   ids.Function
	sig  Signature[T]
	hasF bool
}

// StagedFunction starts a StagedFunctionBuilder.
func (s *StageInfo[L, T]) StagedFunction() *StagedFunctionBuilder[L, T] {
	return &StagedFunctionBuilder[L, T]{s: s}
}

func (b *StagedFunctionBuilder[L, T]) Func(f ids.Function) *StagedFunctionBuilder[L, T] {
	b.fn = f
	b.hasF = true
	return b
}

func (b *StagedFunctionBuilder[L, T]) Signature(sig Signature[T]) *StagedFunctionBuilder[L, T] {
	b.sig = sig
	return b
}

// New validates the staging policy and registers the staged function:
//   - SingleDispatch: the Function must have no existing staged function at
//     this stage (else DuplicateName).
//   - MultipleDispatch: the new signature must be Incomparable with every
//     existing staged signature for this Function (else SignatureOverlap).
func (b *StagedFunctionBuilder[L, T]) New() (ids.StagedFunction, error) {
	existing := b.s.byFunction[b.fn]

	var stage ids.CompileStage
	if b.s.ID != nil {
		stage = *b.s.ID
	}

	switch b.s.Policy {
	case SingleDispatch:
		if len(existing) > 0 {
			return 0, kerrors.DuplicateName{Function: b.fn, Stage: stage}
		}
	case MultipleDispatch:
		for i, sf := range existing {
			info, ok := b.s.StagedFunctions.Get(sf)
			if !ok {
				continue
			}
			if !Incomparable(b.sig, info.Signature) {
				return 0, kerrors.SignatureOverlap{Function: b.fn, Stage: stage, ConflictingIndex: i}
			}
		}
	}

	id := b.s.StagedFunctions.AllocWithId(func(id ids.StagedFunction) StagedFunctionInfo[T] {
		return StagedFunctionInfo[T]{
			ID:        id,
			Function:  b.fn,
			Stage:     stage,
			Signature: b.sig,
		}
	})
	b.s.byFunction[b.fn] = append(b.s.byFunction[b.fn], id)
	return id, nil
}

// SpecializeBuilder attaches a concrete body to a staged function under a
// refined signature.
type SpecializeBuilder[L any, T lattice.Lattice[T]] struct {
	s    *StageInfo[L, T]
	sf   ids.StagedFunction
	sig  Signature[T]
	body ids.Statement
	hasS bool
}

// Specialize starts a SpecializeBuilder.
func (s *StageInfo[L, T]) Specialize() *SpecializeBuilder[L, T] {
	return &SpecializeBuilder[L, T]{s: s}
}

func (b *SpecializeBuilder[L, T]) Of(sf ids.StagedFunction) *SpecializeBuilder[L, T] {
	b.sf = sf
	b.hasS = true
	return b
}

func (b *SpecializeBuilder[L, T]) Signature(sig Signature[T]) *SpecializeBuilder[L, T] {
	b.sig = sig
	return b
}

func (b *SpecializeBuilder[L, T]) Body(body ids.Statement) *SpecializeBuilder[L, T] {
	b.body = body
	return b
}

// New validates that the specialization's signature is subsumed by its
// staged function's declared signature (every live specialization's params
// must be ⊑ its staged function's params) and registers it.
func (b *SpecializeBuilder[L, T]) New() (ids.SpecializedFunction, error) {
	staged, ok := b.s.StagedFunctions.Get(b.sf)
	if !ok {
		return 0, kerrors.SpecializationNotSubsumed{Staged: b.sf}
	}
	if !IsSubseteqParams(b.sig, staged.Signature) {
		return 0, kerrors.SpecializationNotSubsumed{Staged: b.sf}
	}

	id := b.s.Specialized.AllocWithId(func(id ids.SpecializedFunction) SpecializedFunctionInfo[T] {
		return SpecializedFunctionInfo[T]{
			ID:        id,
			Staged:    b.sf,
			Signature: b.sig,
			Body:      b.body,
		}
	})

	staged.Specializations = append(staged.Specializations, id)
	return id, nil
}
