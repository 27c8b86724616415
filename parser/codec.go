// Package parser implements Kirin's textual frontend, Parse: it tokenizes
// Kirin's wire format, installs every stage declaration, then materializes
// every specialization body. A dialect's own statement syntax is opaque to
// this package — it is handed across through a BodyCodec the caller
// supplies for the dialect in question.
package parser

import (
	"github.com/QuEraComputing/kirin/ids"
	"github.com/QuEraComputing/kirin/ir"
)

// TypeCodec translates a dialect's type-lattice values to and from the bare
// identifiers the wire format uses for parameter and result types (e.g.
// "i64").
type TypeCodec[T any] interface {
	ParseType(name string) (T, bool)
	TypeName(t T) string
}

// BodyCodec additionally parses and emits a specialization's body. The
// dialect owns its own statement syntax end to end; this package only
// locates the brace-delimited span in the wire text and hands the raw
// source across.
type BodyCodec[L any, T any] interface {
	TypeCodec[T]
	ParseBody(body string, store *ir.Store[L, T]) (ids.Statement, error)
	EmitBody(store *ir.Store[L, T], body ids.Statement) string
}
