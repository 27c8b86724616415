// Package dialect declares the contract a stage's instruction set (its
// "dialect", written L throughout the core) must satisfy. A dialect is
// consumed, never implemented, by the core: it is supplied by an external
// collaborator (a concrete arithmetic/control-flow dialect, a derive-macro
// generated statement enum, ...). The core only needs to test a
// definition value against these small capability interfaces; it never
// requires a single monolithic interface, since most statements implement
// only a handful of them.
//
// Go has no associated types, so Kirin's generic signatures carry the type
// lattice as an explicit second type parameter (T) alongside the dialect
// type (L) everywhere a dialect is named, rather than inferring it from L.
package dialect

import "github.com/QuEraComputing/kirin/ids"

// HasArguments is satisfied by a statement definition that reads SSA
// operands.
type HasArguments interface {
	Arguments() []ids.SSAValue
}

// HasArgumentsMut additionally allows rewriting the operand list in place,
// used by builders that must patch references after allocating ids.
type HasArgumentsMut interface {
	HasArguments
	SetArguments([]ids.SSAValue)
}

// HasResults is satisfied by a statement definition that produces result
// values.
type HasResults interface {
	Results() []ids.ResultValue
}

// HasResultsMut additionally allows rewriting the result-value slots, used
// by Store.Statement().New() to install the freshly allocated result
// ids into the definition before it is stored.
type HasResultsMut interface {
	HasResults
	SetResults([]ids.ResultValue)
}

// HasBlocks is satisfied by a statement definition that directly owns
// blocks (rare; most nesting goes through HasRegions).
type HasBlocks interface {
	Blocks() []ids.Block
}

// HasBlocksMut allows rewriting the owned-block list.
type HasBlocksMut interface {
	HasBlocks
	SetBlocks([]ids.Block)
}

// HasSuccessors is satisfied by a terminator-capable statement definition
// that names control-flow successors.
type HasSuccessors interface {
	Successors() []ids.Successor
}

// HasSuccessorsMut allows rewriting the successor list.
type HasSuccessorsMut interface {
	HasSuccessors
	SetSuccessors([]ids.Successor)
}

// HasRegions is satisfied by a structured statement definition that
// introduces one or more nested regions.
type HasRegions interface {
	Regions() []ids.Region
}

// HasRegionsMut allows rewriting the owned-region list.
type HasRegionsMut interface {
	HasRegions
	SetRegions([]ids.Region)
}

// IsTerminator, when implemented and true, marks a definition as legal in a
// block's terminator slot.
type IsTerminator interface {
	IsTerminator() bool
}

// IsConstant, when implemented and true, marks a definition as foldable to
// a literal value without side effects.
type IsConstant interface {
	IsConstant() bool
}

// IsPure, when implemented and true, marks a definition as free of
// observable side effects.
type IsPure interface {
	IsPure() bool
}

// IsSpeculatable, when implemented and true, marks a definition as safe to
// execute even when its result may be discarded (e.g. hoisted out of a
// conditionally-executed region).
type IsSpeculatable interface {
	IsSpeculatable() bool
}

// CheckTerminator reports whether def satisfies IsTerminator and answers
// true; a definition with no IsTerminator impl is never a terminator.
func CheckTerminator(def any) bool {
	t, ok := def.(IsTerminator)
	return ok && t.IsTerminator()
}

// CheckPure reports whether def satisfies IsPure and answers true.
func CheckPure(def any) bool {
	t, ok := def.(IsPure)
	return ok && t.IsPure()
}

// CheckConstant reports whether def satisfies IsConstant and answers true.
func CheckConstant(def any) bool {
	t, ok := def.(IsConstant)
	return ok && t.IsConstant()
}

// CheckSpeculatable reports whether def satisfies IsSpeculatable and
// answers true.
func CheckSpeculatable(def any) bool {
	t, ok := def.(IsSpeculatable)
	return ok && t.IsSpeculatable()
}

// ResultsOf returns the result ids a definition declares, or nil if it
// declares none.
func ResultsOf(def any) []ids.ResultValue {
	if t, ok := def.(HasResults); ok {
		return t.Results()
	}
	return nil
}

// ArgumentsOf returns the operand ids a definition reads, or nil if it reads
// none.
func ArgumentsOf(def any) []ids.SSAValue {
	if t, ok := def.(HasArguments); ok {
		return t.Arguments()
	}
	return nil
}

// SuccessorsOf returns the control-flow successors a definition names, or
// nil if it names none.
func SuccessorsOf(def any) []ids.Successor {
	if t, ok := def.(HasSuccessors); ok {
		return t.Successors()
	}
	return nil
}

// RegionsOf returns the regions a definition owns, or nil if it owns none.
func RegionsOf(def any) []ids.Region {
	if t, ok := def.(HasRegions); ok {
		return t.Regions()
	}
	return nil
}
