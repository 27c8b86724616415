// Package pipeline implements Pipeline, the top-level owner of the global
// function table and the named compile stages threaded through it. A
// Pipeline is deliberately not generic over a dialect: it holds stages of
// possibly different dialects side by side, so stage access goes through a
// type-erased StageHandle plus the ForDialect helper rather than a single
// generic type parameter (see DESIGN.md).
package pipeline

import (
	"fmt"

	"github.com/QuEraComputing/kirin/arena"
	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/intern"
	"github.com/QuEraComputing/kirin/kerrors"
	"github.com/QuEraComputing/kirin/lattice"
	"github.com/QuEraComputing/kirin/stage"
)

// FunctionInfo is the pipeline-global record of an abstract function: its
// name, plus the StagedFunction it was last bound to at each stage that
// registered it through the Pipeline-level StagedFunction builder. Per-stage
// signatures and bodies themselves live in each stage's own
// StagedFunction/SpecializedFunction arenas; staged is just the back-link
// from (Function, CompileStage) to that arena's id.
type FunctionInfo struct {
	ID     ids.Function
	Name   *ids.GlobalSymbol
	staged map[ids.CompileStage]ids.StagedFunction
}

// StageHandle is a type-erased reference to one *stage.StageInfo[L, T]. The
// pipeline stores these so it can hold stages of different dialects in one
// slice; callers recover the concrete type with ForDialect.
type StageHandle interface {
	// Underlying returns the boxed *stage.StageInfo[L, T] as any, for
	// ForDialect's type assertion.
	Underlying() any
	// ID is this stage's CompileStage id, once registered.
	ID() ids.CompileStage
	// Name is this stage's global symbol, if named.
	Name() *ids.GlobalSymbol
}

type boxedStage[L any, T lattice.Lattice[T]] struct {
	info *stage.StageInfo[L, T]
	id   ids.CompileStage
}

func (b *boxedStage[L, T]) Underlying() any        { return b.info }
func (b *boxedStage[L, T]) ID() ids.CompileStage    { return b.id }
func (b *boxedStage[L, T]) Name() *ids.GlobalSymbol { return b.info.Name }

// ForDialect recovers the concrete *stage.StageInfo[L, T] from a
// StageHandle, the replacement for the original's compile-time
// S::Languages dispatch: instead of the compiler picking the right arm of
// a type-list at build time, Kirin performs one runtime type assertion.
// ok is false if h does not hold a stage of dialect (L, T).
func ForDialect[L any, T lattice.Lattice[T]](h StageHandle) (*stage.StageInfo[L, T], bool) {
	s, ok := h.Underlying().(*stage.StageInfo[L, T])
	return s, ok
}

// Pipeline owns the global function table and the ordered list of compile
// stages.
type Pipeline struct {
	Functions arena.Arena[ids.Function, FunctionInfo]
	Symbols   *intern.Table[ids.GlobalSymbol]

	stages         []StageHandle
	byID           map[ids.CompileStage]StageHandle
	byName         map[ids.GlobalSymbol]StageHandle
	byFunctionName map[ids.GlobalSymbol]ids.Function
	nextStg        int
}

// New returns an empty Pipeline.
func New() *Pipeline {
	return &Pipeline{
		Symbols:        intern.New[ids.GlobalSymbol](),
		byID:           make(map[ids.CompileStage]StageHandle),
		byName:         make(map[ids.GlobalSymbol]StageHandle),
		byFunctionName: make(map[ids.GlobalSymbol]ids.Function),
	}
}

// Function resolves the abstract Function named name, registering a fresh
// one the first time that name is seen. Two calls with the same non-empty
// name always return the same id, so a stage header and its specialize
// body can each name a function independently and still land on one
// Function; name == "" always allocates a fresh anonymous Function.
func (p *Pipeline) Function(name string) ids.Function {
	if name == "" {
		return p.Functions.AllocWithId(func(id ids.Function) FunctionInfo {
			return FunctionInfo{ID: id}
		})
	}
	sym := p.Symbols.Intern(name)
	if fn, ok := p.byFunctionName[sym]; ok {
		return fn
	}
	fn := p.Functions.AllocWithId(func(id ids.Function) FunctionInfo {
		return FunctionInfo{ID: id, Name: &sym}
	})
	p.byFunctionName[sym] = fn
	return fn
}

// AddStage registers a new, empty stage of dialect (L, T) under the given
// staging policy and optional name, returning both its CompileStage id and
// the concrete *stage.StageInfo to populate.
func AddStage[L any, T lattice.Lattice[T]](p *Pipeline, name string, policy stage.StagedNamePolicy) (ids.CompileStage, *stage.StageInfo[L, T]) {
	id := ids.CompileStage(p.nextStg)
	p.nextStg++

	info := stage.New[L, T](policy)
	info.ID = &id

	var namePtr *ids.GlobalSymbol
	if name != "" {
		h := p.Symbols.Intern(name)
		namePtr = &h
		info.Name = namePtr
	}

	handle := &boxedStage[L, T]{info: info, id: id}
	p.stages = append(p.stages, handle)
	p.byID[id] = handle
	if namePtr != nil {
		p.byName[*namePtr] = handle
	}
	return id, info
}

// StagedFunctionBuilder registers a Function at a stage through the
// Pipeline rather than directly on a *stage.StageInfo, so the resulting
// (Function, CompileStage) -> StagedFunction binding gets recorded on
// FunctionInfo.staged as well as in the stage's own arena.
type StagedFunctionBuilder[L any, T lattice.Lattice[T]] struct {
	p     *Pipeline
	fn    ids.Function
	stage ids.CompileStage
	sig   stage.Signature[T]
}

// StagedFunction starts a StagedFunctionBuilder against p.
func StagedFunction[L any, T lattice.Lattice[T]](p *Pipeline) *StagedFunctionBuilder[L, T] {
	return &StagedFunctionBuilder[L, T]{p: p}
}

func (b *StagedFunctionBuilder[L, T]) Func(f ids.Function) *StagedFunctionBuilder[L, T] {
	b.fn = f
	return b
}

func (b *StagedFunctionBuilder[L, T]) Stage(id ids.CompileStage) *StagedFunctionBuilder[L, T] {
	b.stage = id
	return b
}

func (b *StagedFunctionBuilder[L, T]) Signature(sig stage.Signature[T]) *StagedFunctionBuilder[L, T] {
	b.sig = sig
	return b
}

// New resolves b.stage, asserts it carries dialect (L, T), forwards to that
// stage's own StagedFunction builder, and on success links the result back
// into FunctionInfo.staged.
func (b *StagedFunctionBuilder[L, T]) New() (ids.StagedFunction, error) {
	sf, err := DispatchStage(b.p, b.stage, func(info *stage.StageInfo[L, T]) (ids.StagedFunction, error) {
		return info.StagedFunction().Func(b.fn).Signature(b.sig).New()
	})
	if err != nil {
		return 0, err
	}

	info, ok := b.p.Functions.GetMut(b.fn)
	if !ok {
		return 0, kerrors.ArenaMiss{Detail: fmt.Sprintf("function %d", b.fn.Raw())}
	}
	if info.staged == nil {
		info.staged = make(map[ids.CompileStage]ids.StagedFunction)
	}
	info.staged[b.stage] = sf
	return sf, nil
}

// StagedAt resolves the StagedFunction fn was last bound to at stage via
// the StagedFunction builder above. It returns MissingFunctionStageMapping
// if fn was never staged there through that path (e.g. it was registered
// directly on the stage's own builder instead).
func (p *Pipeline) StagedAt(fn ids.Function, stg ids.CompileStage) (ids.StagedFunction, error) {
	info, ok := p.Functions.Get(fn)
	if !ok {
		return 0, kerrors.ArenaMiss{Detail: fmt.Sprintf("function %d", fn.Raw())}
	}
	sf, ok := info.staged[stg]
	if !ok {
		return 0, kerrors.MissingFunctionStageMapping{Function: fn, Stage: stg}
	}
	return sf, nil
}

// Stage resolves a stage by id.
func (p *Pipeline) Stage(id ids.CompileStage) (StageHandle, error) {
	h, ok := p.byID[id]
	if !ok {
		return nil, kerrors.MissingStage{Stage: id}
	}
	return h, nil
}

// StageByName resolves a stage by its global symbol name.
func (p *Pipeline) StageByName(name ids.GlobalSymbol) (StageHandle, error) {
	h, ok := p.byName[name]
	if !ok {
		return nil, kerrors.MissingStage{}
	}
	return h, nil
}

// Stages returns every registered stage handle, in registration order.
func (p *Pipeline) Stages() []StageHandle {
	return p.stages
}

// DispatchStage resolves id then, via ForDialect, recovers its concrete
// StageInfo[L, T] and invokes f with it. It returns MissingStage if id is
// unregistered and MissingStageDialect if the stage exists but carries a
// different dialect than (L, T).
func DispatchStage[L any, T lattice.Lattice[T], R any](p *Pipeline, id ids.CompileStage, f func(*stage.StageInfo[L, T]) (R, error)) (R, error) {
	var zero R
	h, err := p.Stage(id)
	if err != nil {
		return zero, err
	}
	info, ok := ForDialect[L, T](h)
	if !ok {
		return zero, kerrors.MissingStageDialect{Stage: id}
	}
	return f(info)
}
