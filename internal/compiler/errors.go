// Package compiler lowers a parsed phonon program (internal/dsl) into a
// runnable *graph.Graph: resolving buses, building the node catalogue from
// curried builtin calls, and auto-routing numbered outputs, per spec.md
// §4.3's "parse, then lower" contract.
package compiler

import (
	"fmt"

	"github.com/phonon-lang/phonon/internal/dsl"
)

// Error is a semantic compile error (unknown identifier, unresolved bus,
// wrong arity) carrying the offending token's source position, the same
// shape dsl.ParseError uses for lexical/syntax errors. Both are surfaced to
// the control thread unchanged; a failed compile never touches the
// currently-playing graph (spec.md §7).
type Error struct {
	Msg string
	Pos dsl.Pos
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (line %d, col %d)", e.Msg, e.Pos.Line, e.Pos.Col)
}

func errAt(pos dsl.Pos, format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...), Pos: pos}
}
