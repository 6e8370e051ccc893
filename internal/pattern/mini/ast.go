// Package mini implements Phonon's mini-notation: the quoted-string pattern
// DSL ("bd(3,8)", "<c4 e4 g4>", "0.2 1.0", ...) that compiles to
// pattern.Pattern[string] or pattern.Pattern[float64].
package mini

// kind tags what a parsed node represents.
type kind int

const (
	kWord kind = iota
	kNumber
	kRest
	kSeq   // space-separated items, each given an equal fastcat slot
	kStack // comma-separated layers sounding together
	kAlt   // <a b c>, one item per cycle
	kFast  // child * factor
	kSlow  // child / factor
	kEuclid
)

// node is the mini-notation AST. A single struct (rather than one type per
// kind) keeps the recursive-descent parser and the two builders (string,
// numeric) simple: each builder just switches on kind.
type node struct {
	kind     kind
	children []*node // Seq/Stack/Alt: items. Fast/Slow: [child, factor]. Euclid: [child, k, n, rot?].
	word     string
	index    *int
	num      float64
}
