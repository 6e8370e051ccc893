package graph

import (
	"github.com/phonon-lang/phonon/internal/frac"
	"github.com/phonon-lang/phonon/internal/pattern"
)

// SignalKind tags which variant of Signal is populated.
type SignalKind int

const (
	SigValue SignalKind = iota
	SigNode
	SigBus
	SigPattern
	SigExpr
)

// ExprOp is the operator at an Expression signal's root.
type ExprOp int

const (
	OpAdd ExprOp = iota
	OpSub
	OpMul
	OpDiv
	OpNeg
)

// Signal is the parameter type carried by every graph edge: a constant, a
// reference to another node's output, a named bus (looked up in the
// graph's Bus table when evaluated), a numeric pattern
// sampled at a caller-supplied time, or an arithmetic expression tree over
// other Signals.
type Signal struct {
	Kind    SignalKind
	Value   float64
	Node    NodeID
	Bus     string
	Pattern pattern.Pattern[float64]
	Expr    *SignalExpr
}

type SignalExpr struct {
	Op   ExprOp
	A, B Signal
}

func ConstSignal(v float64) Signal         { return Signal{Kind: SigValue, Value: v} }
func NodeSignal(id NodeID) Signal          { return Signal{Kind: SigNode, Node: id} }
func BusSignal(name string) Signal         { return Signal{Kind: SigBus, Bus: name} }
func PatternSignal(p pattern.Pattern[float64]) Signal {
	return Signal{Kind: SigPattern, Pattern: p}
}

func ExprSignal(op ExprOp, a, b Signal) Signal {
	return Signal{Kind: SigExpr, Expr: &SignalExpr{Op: op, A: a, B: b}}
}

// EvalSignal resolves sig to a float64 at cycle-position t. t is always the
// caller's choice of time — for most node inputs that's the graph's current
// cycle position, but the Sample node's per-event parameters (gain, pan,
// speed, ...) must be evaluated with t pinned to the event's onset time
// rather than "now" (spec invariant: the classic live-coding-engine bug is
// evaluating pattern-valued parameters at read time instead of onset time).
func (g *Graph) EvalSignal(sig Signal, t float64) float64 {
	switch sig.Kind {
	case SigValue:
		return sig.Value
	case SigNode:
		return g.evalNode(sig.Node)
	case SigBus:
		if id, ok := g.Bus[sig.Bus]; ok {
			return g.evalNode(id)
		}
		return 0
	case SigPattern:
		return evalPatternAt(sig.Pattern, t)
	case SigExpr:
		return g.evalExpr(sig.Expr, t)
	default:
		return 0
	}
}

func (g *Graph) evalExpr(e *SignalExpr, t float64) float64 {
	a := g.EvalSignal(e.A, t)
	if e.Op == OpNeg {
		return -a
	}
	b := g.EvalSignal(e.B, t)
	switch e.Op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		if b == 0 {
			return 0
		}
		return a / b
	default:
		return 0
	}
}

// evalPatternAt queries a numeric pattern at a single instant: first trying
// a zero-width span (catching an event whose onset lands exactly on t), and
// falling back to a hairline window just after t so periodic patterns with
// no event exactly at t (most of them) still report their current value.
func evalPatternAt(p pattern.Pattern[float64], t float64) float64 {
	if p == nil {
		return 0
	}
	at := frac.FromFloat(t)
	evs := p(frac.TimeSpan{Begin: at, End: at})
	if len(evs) == 0 {
		evs = p(frac.TimeSpan{Begin: at, End: at.Add(frac.New(1, 1<<16))})
	}
	if len(evs) == 0 {
		return 0
	}
	return evs[0].Value
}
