package arith

// IntType is the dialect's single static type: every value is a 64-bit
// integer. It satisfies lattice.TypeLattice trivially (a one-point
// lattice), since this dialect exists only to drive the abstract
// interpreter's Interval domain, not to exercise static typing.
type IntType struct{}

func (IntType) Join(IntType) IntType    { return IntType{} }
func (IntType) IsSubseteq(IntType) bool { return true }
func (IntType) Bottom() IntType         { return IntType{} }
func (IntType) Top() IntType            { return IntType{} }
func (IntType) String() string          { return "i64" }
