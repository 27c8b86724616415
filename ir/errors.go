package ir

import (
	"fmt"

	"github.com/QuEraComputing/kirin/ids"
)

// ErrUnknownStatement reports a statement id not present in the arena.
type ErrUnknownStatement struct{ ID ids.Statement }

func (e ErrUnknownStatement) Error() string {
	return fmt.Sprintf("ir: unknown statement %d", e.ID.Raw())
}

// ErrStatementAlreadyLinked reports that LinkStatements was asked to relink
// a statement that already carries prev/next links.
type ErrStatementAlreadyLinked struct{ ID ids.Statement }

func (e ErrStatementAlreadyLinked) Error() string {
	return fmt.Sprintf("ir: statement %d already has list links", e.ID.Raw())
}

// ErrNotTerminator reports that a block builder's terminator statement does
// not satisfy dialect.IsTerminator.
type ErrNotTerminator struct{ ID ids.Statement }

func (e ErrNotTerminator) Error() string {
	return fmt.Sprintf("ir: statement %d does not satisfy IsTerminator", e.ID.Raw())
}

// ErrUnknownBlock reports a block id not present in the arena, used when
// linking a region's block chain.
type ErrUnknownBlock struct{ ID ids.Block }

func (e ErrUnknownBlock) Error() string {
	return fmt.Sprintf("ir: unknown block %d", e.ID.Raw())
}
