// Package absint implements the abstract interpreter: a worklist-driven
// forward fixpoint over a CFG, block-argument values joined from all live
// predecessor edges, widening applied on the ascending chain and an
// optional narrowing pass tightening the result afterward, with
// context-sensitive call summaries supporting mutual recursion via
// tentative/fixed summary entries. It drives the same Interpretable
// dispatch contract as interp/stackinterp, instantiated with an abstract
// value representation V satisfying lattice.AbstractValue[V] instead of a
// concrete runtime value.
package absint

import (
	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/interp"
	"github.com/QuEraComputing/kirin/kerrors"
	"github.com/QuEraComputing/kirin/lattice"
	"github.com/QuEraComputing/kirin/pipeline"
	"github.com/QuEraComputing/kirin/stage"
)

// WideningStrategy selects when the fixpoint loop widens versus plain-joins
// a block's incoming abstract state.
type WideningStrategy int

const (
	// AllJoins never widens; every merge is a plain Join. Terminates only
	// if the abstract domain has finite height (or the caller bounds
	// iterations externally) — appropriate for small finite-height domains
	// like boolean/enum lattices.
	AllJoins WideningStrategy = iota
	// JoinThenWiden takes a plain Join on a block's first few visits (see
	// AbstractInterpreter.WidenAfter) then switches to Widen, the standard
	// Cousot&Cousot strategy trading early precision for guaranteed
	// ascending-chain termination.
	JoinThenWiden
)

// SummaryEntry is one context-sensitive call summary: the abstract
// arguments a call site was analyzed with, mapped to the resulting return
// value. Tentative entries (computed mid-recursion, before the enclosing
// call's own fixpoint has stabilized) are recorded separately from Fixed
// ones so a summary consumer can tell a provisional result from a settled
// one.
type SummaryEntry[V any] struct {
	Args      []V
	Result    []V
	Tentative bool
}

// SummaryCache holds one SpecializedFunction's accumulated call summaries,
// keyed loosely (linear scan over Args) since call-site argument lattices
// are rarely large enough to warrant a hash key.
type SummaryCache[V any] struct {
	entries []SummaryEntry[V]
}

// Lookup returns a summary whose Args join-equals (IsSubseteq both ways)
// the given args, if one is cached.
func (c *SummaryCache[V]) Lookup(args []V, eq func(a, b []V) bool) (SummaryEntry[V], bool) {
	for _, e := range c.entries {
		if eq(e.Args, args) {
			return e, true
		}
	}
	return SummaryEntry[V]{}, false
}

// SummaryInserter records or replaces a summary: Seed installs (or
// refreshes) a tentative entry used to break mutual-recursion cycles; Fix
// replaces it with the final, non-tentative result once the enclosing
// fixpoint has settled.
type SummaryInserter[V any] struct {
	cache *SummaryCache[V]
	eq    func(a, b []V) bool
}

// NewInserter returns a SummaryInserter bound to a function's cache, using
// eq to match call-site argument vectors.
func NewInserter[V any](cache *SummaryCache[V], eq func(a, b []V) bool) *SummaryInserter[V] {
	return &SummaryInserter[V]{cache: cache, eq: eq}
}

// Seed installs a tentative summary for args, used the first time a
// recursive call re-enters its own (still-unstable) analysis: the callee
// returns this placeholder rather than recursing unboundedly.
func (s *SummaryInserter[V]) Seed(args []V, result []V) {
	for i, e := range s.cache.entries {
		if s.eq(e.Args, args) {
			s.cache.entries[i] = SummaryEntry[V]{Args: args, Result: result, Tentative: true}
			return
		}
	}
	s.cache.entries = append(s.cache.entries, SummaryEntry[V]{Args: args, Result: result, Tentative: true})
}

// Fix replaces a (possibly tentative) summary for args with its final,
// settled result.
func (s *SummaryInserter[V]) Fix(args []V, result []V) {
	for i, e := range s.cache.entries {
		if s.eq(e.Args, args) {
			s.cache.entries[i] = SummaryEntry[V]{Args: args, Result: result, Tentative: false}
			return
		}
	}
	s.cache.entries = append(s.cache.entries, SummaryEntry[V]{Args: args, Result: result, Tentative: false})
}

// FixpointState is the per-specialization working state of one forward
// analysis: the abstract value bound to every block's entry state, visit
// counts driving the widening decision, and the worklist of blocks still
// needing (re-)analysis.
type FixpointState[V any] struct {
	Entry    map[ids.Block]map[ids.SSAValue]V
	Visits   map[ids.Block]int
	worklist []ids.Block
	queued   map[ids.Block]bool
}

func newFixpointState[V any]() *FixpointState[V] {
	return &FixpointState[V]{
		Entry:  make(map[ids.Block]map[ids.SSAValue]V),
		Visits: make(map[ids.Block]int),
		queued: make(map[ids.Block]bool),
	}
}

func (fs *FixpointState[V]) enqueue(b ids.Block) {
	if fs.queued[b] {
		return
	}
	fs.queued[b] = true
	fs.worklist = append(fs.worklist, b)
}

func (fs *FixpointState[V]) dequeue() (ids.Block, bool) {
	if len(fs.worklist) == 0 {
		return 0, false
	}
	b := fs.worklist[0]
	fs.worklist = fs.worklist[1:]
	fs.queued[b] = false
	return b, true
}

// AnalysisResult is the outcome of analyzing one specialization: the final
// per-block entry states and the joined return value observed across every
// Return continuation reached.
type AnalysisResult[V any] struct {
	BlockEntry map[ids.Block]map[ids.SSAValue]V
	Returns    []V
}

// extra is the abstract interpreter's per-frame bookkeeping: nothing
// beyond Frame itself needs, mirroring stackinterp.extra.
type extra struct{}

type frame[V any] = interp.Frame[V, extra]

// AbstractInterpreter runs the worklist forward fixpoint over one
// specialization's CFG for abstract value representation V.
type AbstractInterpreter[V lattice.AbstractValue[V]] struct {
	Pipeline *pipeline.Pipeline

	// Strategy selects AllJoins or JoinThenWiden.
	Strategy WideningStrategy
	// WidenAfter is the number of plain joins JoinThenWiden performs at a
	// block before switching to Widen. Ignored under AllJoins.
	WidenAfter int
	// MaxIterations bounds the total number of block visits before
	// analysis gives up with FuelExhausted, guarding against a widening
	// strategy or domain that fails to converge.
	MaxIterations int

	Summaries map[ids.SpecializedFunction]*SummaryCache[V]
}

// New returns an AbstractInterpreter under JoinThenWiden with the given
// widen-after threshold.
func New[V lattice.AbstractValue[V]](p *pipeline.Pipeline, widenAfter, maxIterations int) *AbstractInterpreter[V] {
	return &AbstractInterpreter[V]{
		Pipeline:      p,
		Strategy:      JoinThenWiden,
		WidenAfter:    widenAfter,
		MaxIterations: maxIterations,
		Summaries:     make(map[ids.SpecializedFunction]*SummaryCache[V]),
	}
}

func (ai *AbstractInterpreter[V]) summaryFor(spec ids.SpecializedFunction) *SummaryCache[V] {
	c, ok := ai.Summaries[spec]
	if !ok {
		c = &SummaryCache[V]{}
		ai.Summaries[spec] = c
	}
	return c
}

func regionsOf(def any) []ids.Region {
	type hasRegions interface{ Regions() []ids.Region }
	if t, ok := def.(hasRegions); ok {
		return t.Regions()
	}
	return nil
}

func argsEq[V lattice.AbstractValue[V]](a, b []V) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].IsSubseteq(b[i]) || !b[i].IsSubseteq(a[i]) {
			return false
		}
	}
	return true
}

// merge applies Join or Widen (per Strategy/WidenAfter) to combine old
// entry-state values with newly observed ones at visitCount visits.
func (ai *AbstractInterpreter[V]) merge(old, incoming V, visitCount int) V {
	if ai.Strategy == AllJoins || visitCount <= ai.WidenAfter {
		return old.Join(incoming)
	}
	return old.Widen(incoming)
}

// joinBlockEntry merges incoming values into a block's recorded entry
// state in place, returning whether anything changed (so the worklist
// driver knows whether to re-enqueue successors).
func (ai *AbstractInterpreter[V]) joinBlockEntry(fs *FixpointState[V], block ids.Block, incoming map[ids.SSAValue]V) bool {
	fs.Visits[block]++
	visits := fs.Visits[block]

	cur, ok := fs.Entry[block]
	if !ok {
		fs.Entry[block] = incoming
		return true
	}

	changed := false
	for ssa, v := range incoming {
		old, had := cur[ssa]
		if !had {
			cur[ssa] = v
			changed = true
			continue
		}
		merged := ai.merge(old, v, visits)
		if !old.IsSubseteq(merged) || !merged.IsSubseteq(old) {
			cur[ssa] = merged
			changed = true
		}
	}
	return changed
}

// Analyze runs the forward fixpoint for spec at stage, starting the entry
// block with argEntry bound to its block-argument SSAs, and returns the
// stabilized per-block entry states plus every observed return value
// joined together.
func Analyze[L any, T any, V lattice.AbstractValue[V]](ai *AbstractInterpreter[V], stageID ids.CompileStage, spec ids.SpecializedFunction, entryArgs []V) (AnalysisResult[V], error) {
	var zero AnalysisResult[V]

	return pipeline.DispatchStage(ai.Pipeline, stageID, func(s *stage.StageInfo[L, T]) (AnalysisResult[V], error) {
		info, ok := s.Specialized.Get(spec)
		if !ok {
			return zero, kerrors.ArenaMiss{Detail: "specialized function not found"}
		}
		stmt, ok := s.Statement(info.Body)
		if !ok {
			return zero, kerrors.ArenaMiss{Detail: "specialization body not found"}
		}
		regions := regionsOf(stmt.Definition)
		if len(regions) == 0 {
			return zero, kerrors.ArenaMiss{Detail: "specialization body has no region"}
		}
		blocks := s.RegionBlocks(regions[0])
		if len(blocks) == 0 {
			return zero, kerrors.ArenaMiss{Detail: "specialization region has no blocks"}
		}
		entry := blocks[0]
		blockInfo, ok := s.Block(entry)
		if !ok {
			return zero, kerrors.ArenaMiss{Detail: "entry block not found"}
		}
		if len(blockInfo.Arguments) != len(entryArgs) {
			return zero, kerrors.ArityMismatch{Expected: len(blockInfo.Arguments), Got: len(entryArgs)}
		}

		fs := newFixpointState[V]()
		initial := make(map[ids.SSAValue]V, len(entryArgs))
		for i, argSSA := range blockInfo.Arguments {
			initial[argSSA] = entryArgs[i]
		}
		fs.Entry[entry] = initial
		fs.enqueue(entry)

		var returns []V
		addReturns := func(rs []V) {
			for i, r := range rs {
				if i < len(returns) {
					returns[i] = returns[i].Join(r)
				} else {
					returns = append(returns, r)
				}
			}
		}
		iterations := 0

		// One frame serves every block of this specialization, so a value
		// defined in one block stays readable in the blocks it flows into;
		// each visit re-applies the block's recorded entry state on top.
		f := interp.NewFrame[V, extra](stageID, spec, entry, extra{})
		for {
			block, ok := fs.dequeue()
			if !ok {
				break
			}
			iterations++
			if ai.MaxIterations > 0 && iterations > ai.MaxIterations {
				return zero, kerrors.FuelExhausted{}
			}

			f.Block = block
			for ssa, v := range fs.Entry[block] {
				f.Set(ssa, v)
			}

			order := s.ExecutionOrder(block)
			var cont interp.Continuation[V]
			var err error
			for _, st := range order {
				cont, err = interp.StepStatement[L, T, V, extra](s.Store, f, st)
				if err != nil {
					return zero, err
				}
				if cont.Kind != interp.ContinueBlock {
					break
				}
			}

			propagate := func(succ ids.Successor) error {
				target, ok := s.Block(succ.Target)
				if !ok {
					return kerrors.ArenaMiss{Detail: "jump target block not found"}
				}
				if len(target.Arguments) != len(succ.Args) {
					return kerrors.ArityMismatch{Expected: len(target.Arguments), Got: len(succ.Args)}
				}
				incoming := make(map[ids.SSAValue]V, len(succ.Args))
				for i, argSSA := range target.Arguments {
					v, err := f.Get(succ.Args[i])
					if err != nil {
						return err
					}
					incoming[argSSA] = v
				}
				if ai.joinBlockEntry(fs, succ.Target, incoming) {
					fs.enqueue(succ.Target)
				}
				return nil
			}

			applyResume := func(resume interp.Continuation[V]) error {
				switch resume.Kind {
				case interp.Jump:
					return propagate(*resume.Successor)
				case interp.Return:
					addReturns(resume.Results)
					return nil
				default:
					return kerrors.UnexpectedControl{Reason: "call resumption must jump or return"}
				}
			}

			switch cont.Kind {
			case interp.Jump:
				if err := propagate(*cont.Successor); err != nil {
					return zero, err
				}
			case interp.Fork:
				for _, succ := range cont.Successors {
					if err := propagate(succ); err != nil {
						return zero, err
					}
				}
			case interp.Return:
				addReturns(cont.Results)
			case interp.Call:
				cache := ai.summaryFor(cont.CallSpec)
				inserter := NewInserter(cache, argsEq[V])
				if summary, hit := cache.Lookup(cont.CallArgs, argsEq[V]); hit {
					if err := applyResume(cont.After(summary.Result)); err != nil {
						return zero, err
					}
					break
				}
				// Seed a tentative summary so a recursive re-entry of this
				// same call terminates instead of recursing unboundedly;
				// the real summary is Fixed once this call's own analysis
				// returns.
				inserter.Seed(cont.CallArgs, nil)
				callResult, err := Analyze[L, T](ai, cont.CallStage, cont.CallSpec, cont.CallArgs)
				if err != nil {
					return zero, err
				}
				inserter.Fix(cont.CallArgs, callResult.Returns)
				if err := applyResume(cont.After(callResult.Returns)); err != nil {
					return zero, err
				}
			default:
				return zero, kerrors.ArenaMiss{Detail: "block fell through without a terminator"}
			}
		}

		return AnalysisResult[V]{BlockEntry: fs.Entry, Returns: returns}, nil
	})
}
