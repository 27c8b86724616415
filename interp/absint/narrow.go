package absint

import (
	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/interp"
	"github.com/QuEraComputing/kirin/kerrors"
	"github.com/QuEraComputing/kirin/lattice"
	"github.com/QuEraComputing/kirin/pipeline"
	"github.com/QuEraComputing/kirin/stage"
)

// Narrow runs a descending pass following a widened fixpoint: it
// re-executes every block already present in result.BlockEntry, combining
// each block's freshly recomputed entry state
// with the old one via Narrow instead of Join/Widen, and repeats until no
// block's entry state changes or rounds passes have run. Per
// lattice.AbstractValue's documented requirement, Narrow must never grow a
// value (old.Narrow(new) ⊑ old), so this pass only tightens — it is safe to
// stop early at any round and keep the last computed state.
func Narrow[L any, T any, V lattice.AbstractValue[V]](ai *AbstractInterpreter[V], stageID ids.CompileStage, spec ids.SpecializedFunction, result AnalysisResult[V], rounds int) (AnalysisResult[V], error) {
	var zero AnalysisResult[V]

	return pipeline.DispatchStage(ai.Pipeline, stageID, func(s *stage.StageInfo[L, T]) (AnalysisResult[V], error) {
		entry := make(map[ids.Block]map[ids.SSAValue]V, len(result.BlockEntry))
		for b, vals := range result.BlockEntry {
			cp := make(map[ids.SSAValue]V, len(vals))
			for k, v := range vals {
				cp[k] = v
			}
			entry[b] = cp
		}

		blocks := make([]ids.Block, 0, len(entry))
		for b := range entry {
			blocks = append(blocks, b)
		}

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

		for round := 0; round < rounds; round++ {
			changed := false
			returns = returns[:0]

			for _, block := range blocks {
				f := interp.NewFrame[V, extra](stageID, spec, block, extra{})
				for ssa, v := range entry[block] {
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

				narrowInto := func(target ids.Block, succ ids.Successor) error {
					info, ok := s.Block(succ.Target)
					if !ok {
						return kerrors.ArenaMiss{Detail: "jump target block not found"}
					}
					cur, ok := entry[target]
					if !ok {
						return nil // not part of the stabilized block set; skip
					}
					for i, argSSA := range info.Arguments {
						if i >= len(succ.Args) {
							break
						}
						v, err := f.Get(succ.Args[i])
						if err != nil {
							return err
						}
						old, had := cur[argSSA]
						if !had {
							continue
						}
						narrowed := old.Narrow(v)
						if !narrowed.IsSubseteq(old) || !old.IsSubseteq(narrowed) {
							cur[argSSA] = narrowed
							changed = true
						}
					}
					return nil
				}

				switch cont.Kind {
				case interp.Jump:
					if err := narrowInto(cont.Successor.Target, *cont.Successor); err != nil {
						return zero, err
					}
				case interp.Fork:
					for _, succ := range cont.Successors {
						if err := narrowInto(succ.Target, succ); err != nil {
							return zero, err
						}
					}
				case interp.Return:
					addReturns(cont.Results)
				case interp.Call:
					// Narrowing does not re-descend into callees: call
					// summaries were already fixed during the ascending
					// pass, and re-analyzing them here would reintroduce
					// the same non-termination risk Narrow exists to avoid.
				}
			}

			if !changed {
				break
			}
		}

		return AnalysisResult[V]{BlockEntry: entry, Returns: returns}, nil
	})
}
