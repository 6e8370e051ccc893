package dsl

// Program is a parsed phonon source file: a flat list of statements,
// evaluated by the compiler in order.
type Program struct {
	Statements []Statement
}

// Statement is one of the five top-level forms in spec.md's grammar.
type Statement interface{ stmtNode() }

type TempoStmt struct {
	Value float64
	Pos   Pos
}

type CPSStmt struct {
	Value float64
	Pos   Pos
}

// BusStmt is a `~name: expr` assignment, registering a named, compile-time
// resolved reference to the compiled expr's node.
type BusStmt struct {
	Name string
	Expr Expr
	Pos  Pos
}

// OutStmt is the `out: expr` statement selecting the graph's sink.
type OutStmt struct {
	Expr Expr
	Pos  Pos
}

// NumberedOutStmt is an `oN: expr` auxiliary output, auto-mixed into the
// output when no explicit OutStmt is present.
type NumberedOutStmt struct {
	Index int
	Expr  Expr
	Pos   Pos
}

func (TempoStmt) stmtNode()       {}
func (CPSStmt) stmtNode()         {}
func (BusStmt) stmtNode()         {}
func (OutStmt) stmtNode()         {}
func (NumberedOutStmt) stmtNode() {}

// Expr is any node in the expression grammar: numbers, mini-notation string
// literals, bus references, curried function calls, arithmetic, and `#`/`$`
// chains over them.
type Expr interface{ exprNode() }

type NumberLit struct {
	Value float64
	Pos   Pos
}

// StringLit is a mini-notation source string, still unparsed at this layer
// (the compiler decides whether to hand it to mini.ParseString or
// mini.ParseNumeric, depending on which slot it fills).
type StringLit struct {
	Value string
	Pos   Pos
}

// BusRef is a `~name` reference used as a value (as opposed to the `~name:`
// assignment form, which is a Statement).
type BusRef struct {
	Name string
	Pos  Pos
}

// Call is a curried function application: a builtin name followed by zero
// or more argument atoms (`sine 440`, `lpf 1000 0.8`, `s "bd(3,8)"`, `noise`).
type Call struct {
	Func string
	Args []Expr
	Pos  Pos
}

type BinaryExpr struct {
	Op          string // "+", "-", "*", "/"
	Left, Right Expr
	Pos         Pos
}

// ChainExpr is `atom ("#" call)* ("$" transform)*`: Base feeds a sequence of
// `#`-attached effects/modifiers, followed by a sequence of `$`-applied
// pattern transforms evaluated left to right (spec.md §4.3: "p $ fast 2 $
// rev" == "rev (fast 2 p)").
type ChainExpr struct {
	Base   Expr
	Hash   []Call
	Dollar []Call
	Pos    Pos
}

func (NumberLit) exprNode()  {}
func (StringLit) exprNode()  {}
func (BusRef) exprNode()     {}
func (Call) exprNode()       {}
func (BinaryExpr) exprNode() {}
func (ChainExpr) exprNode()  {}
