// Package stagecall is a minimal dialect used by the core's own tests to
// exercise the concrete stack interpreter's cross-stage call path: an
// integer counter decremented and bounced between two stages via StageCall
// statements until it reaches zero. The kirin command also uses it as its
// built-in dialect.
package stagecall

// IntType mirrors arith.IntType: a one-point static type, since this
// dialect exists only to drive the concrete interpreter, not static
// typing.
type IntType struct{}

func (IntType) Join(IntType) IntType    { return IntType{} }
func (IntType) IsSubseteq(IntType) bool { return true }
func (IntType) Bottom() IntType         { return IntType{} }
func (IntType) Top() IntType            { return IntType{} }
func (IntType) String() string          { return "i64" }
