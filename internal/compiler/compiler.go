package compiler

import (
	"sort"

	"github.com/phonon-lang/phonon/internal/dsl"
	"github.com/phonon-lang/phonon/internal/graph"
	"github.com/phonon-lang/phonon/internal/pattern/mini"
	"github.com/phonon-lang/phonon/internal/samplebank"
)

// maxDelaySeconds bounds every delay-line buffer (comb, delay, ping-pong, tape, multi-tap)
// the compiler constructs; it is a compile-time allocation size, not a
// clamp on the delay time parameter itself (that clamp lives in dsp).
const maxDelaySeconds = 8.0

// captureSeconds sizes the ring buffers granular playback and spectral
// freeze capture from their live input.
const captureSeconds = 2.0

// Compiler lowers one parsed Program into a *graph.Graph. It makes a single
// forward pass over the statements: a bus can only be referenced after its
// `~name:` assignment has already been lowered, so a reference to a bus
// that hasn't been defined yet is rejected the same way a reference to an
// undefined bus is — there is no separate cycle-detection pass because the
// single-pass, append-only construction can't express a cycle in the first
// place (the AST has no syntax for a node to name its own not-yet-existent
// id).
type Compiler struct {
	g    *graph.Graph
	bank samplebank.Bank

	busOrder []string
	hasOut   bool
	outSig   graph.Signal
	numbered map[int]graph.Signal

	noiseSeed int64
}

// Compile parses and lowers src into a playable graph. bank may be nil for
// programs that never reference a sample.
func Compile(src string, sampleRate float64, bank samplebank.Bank) (*graph.Graph, error) {
	prog, err := dsl.Parse(src)
	if err != nil {
		return nil, err
	}
	c := &Compiler{
		g:        graph.New(sampleRate, 1),
		bank:     bank,
		numbered: make(map[int]graph.Signal),
	}
	c.g.Bank = bank
	for _, stmt := range prog.Statements {
		if err := c.lowerStatement(stmt); err != nil {
			return nil, err
		}
	}
	c.finalizeOutput()
	return c.g, nil
}

func (c *Compiler) lowerStatement(stmt dsl.Statement) error {
	switch s := stmt.(type) {
	case *dsl.TempoStmt:
		c.g.CPS = s.Value
		return nil
	case *dsl.CPSStmt:
		c.g.CPS = s.Value
		return nil
	case *dsl.BusStmt:
		sig, err := c.compileExpr(s.Expr)
		if err != nil {
			return err
		}
		c.g.Bus[s.Name] = c.ensureNode(sig)
		c.busOrder = append(c.busOrder, s.Name)
		return nil
	case *dsl.OutStmt:
		sig, err := c.compileExpr(s.Expr)
		if err != nil {
			return err
		}
		c.outSig = sig
		c.hasOut = true
		return nil
	case *dsl.NumberedOutStmt:
		sig, err := c.compileExpr(s.Expr)
		if err != nil {
			return err
		}
		c.numbered[s.Index] = sig
		return nil
	default:
		return errAt(dsl.Pos{}, "unhandled statement type %T", stmt)
	}
}

// finalizeOutput wires the graph's sink per spec.md §6: an explicit out:
// wins; otherwise numbered outputs auto-mix; otherwise, for a bus-only
// file, every bus is summed so a program with no out/oN still produces
// sound to ears listening at the device, matching a REPL session where
// every line so far is audible.
func (c *Compiler) finalizeOutput() {
	switch {
	case c.hasOut:
		id := c.g.AddNode(&graph.OutputNode{Input: c.outSig})
		c.g.Output, c.g.HasOutput = id, true
	case len(c.numbered) > 0:
		indices := make([]int, 0, len(c.numbered))
		for idx := range c.numbered {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		inputs := make([]graph.Signal, len(indices))
		for i, idx := range indices {
			inputs[i] = c.numbered[idx]
		}
		mix := c.g.AddNode(&graph.MixNode{Inputs: inputs})
		id := c.g.AddNode(&graph.OutputNode{Input: graph.NodeSignal(mix)})
		c.g.Output, c.g.HasOutput = id, true
	case len(c.busOrder) > 0:
		inputs := make([]graph.Signal, len(c.busOrder))
		for i, name := range c.busOrder {
			inputs[i] = graph.BusSignal(name)
		}
		mix := c.g.AddNode(&graph.MixNode{Inputs: inputs})
		id := c.g.AddNode(&graph.OutputNode{Input: graph.NodeSignal(mix)})
		c.g.Output, c.g.HasOutput = id, true
	}
}

// ensureNode forces any Signal into a concrete node reference, for bus
// assignment (the Bus map stores NodeIDs, not raw Signals).
func (c *Compiler) ensureNode(sig graph.Signal) graph.NodeID {
	if sig.Kind == graph.SigNode {
		return sig.Node
	}
	if sig.Kind == graph.SigPattern {
		return c.g.AddNode(&graph.PatternControl{Pattern: sig.Pattern})
	}
	return c.g.AddNode(&graph.Constant{Value: sig})
}

// compileExpr compiles e to a usable Signal, materializing a deferred
// sample/synth builder if that's what e turned out to be.
func (c *Compiler) compileExpr(e dsl.Expr) (graph.Signal, error) {
	sig, b, err := c.compile(e)
	if err != nil {
		return graph.Signal{}, err
	}
	if b != nil {
		return b.materialize(c.g), nil
	}
	return sig, nil
}

// paramSignal compiles an argument in a "parameter" slot (gain, cutoff,
// rate, ...), where a string literal means mini-notation over numbers
// rather than the word-pattern mini-notation s/syn use.
func (c *Compiler) paramSignal(e dsl.Expr) (graph.Signal, error) {
	if lit, ok := e.(*dsl.StringLit); ok {
		p, err := mini.ParseNumeric(lit.Value)
		if err != nil {
			return graph.Signal{}, errAt(lit.Pos, "invalid numeric pattern %q: %v", lit.Value, err)
		}
		return graph.PatternSignal(p), nil
	}
	return c.compileExpr(e)
}

func (c *Compiler) argSignal(call dsl.Call, i int) (graph.Signal, error) {
	if i >= len(call.Args) {
		return graph.Signal{}, c.errArity(call)
	}
	return c.paramSignal(call.Args[i])
}

func (c *Compiler) errArity(call dsl.Call) error {
	return errAt(call.Pos, "'%s' called with %d argument(s)", call.Func, len(call.Args))
}

func (c *Compiler) requireArgs(call dsl.Call, n int) error {
	if len(call.Args) < n {
		return c.errArity(call)
	}
	return nil
}

// compile is the full expression dispatcher. It returns a non-nil
// *sampleBuilder only when e is a bare `s`/`syn` call, leaving it to the
// caller to decide whether to materialize immediately or keep mutating it;
// a chain is materialized inside compileChain and returns a nil builder.
func (c *Compiler) compile(e dsl.Expr) (graph.Signal, *sampleBuilder, error) {
	switch v := e.(type) {
	case *dsl.NumberLit:
		return graph.ConstSignal(v.Value), nil, nil
	case *dsl.StringLit:
		p, err := mini.ParseNumeric(v.Value)
		if err != nil {
			return graph.Signal{}, nil, errAt(v.Pos, "invalid numeric pattern %q: %v", v.Value, err)
		}
		return graph.PatternSignal(p), nil, nil
	case *dsl.BusRef:
		id, ok := c.g.Bus[v.Name]
		if !ok {
			return graph.Signal{}, nil, errAt(v.Pos, "unresolved bus ~%s", v.Name)
		}
		return graph.NodeSignal(id), nil, nil
	case *dsl.BinaryExpr:
		a, err := c.compileExpr(v.Left)
		if err != nil {
			return graph.Signal{}, nil, err
		}
		b, err := c.compileExpr(v.Right)
		if err != nil {
			return graph.Signal{}, nil, err
		}
		op, ok := map[string]graph.ExprOp{"+": graph.OpAdd, "-": graph.OpSub, "*": graph.OpMul, "/": graph.OpDiv}[v.Op]
		if !ok {
			return graph.Signal{}, nil, errAt(v.Pos, "unknown operator '%s'", v.Op)
		}
		return graph.ExprSignal(op, a, b), nil, nil
	case *dsl.ChainExpr:
		sig, err := c.compileChain(v)
		return sig, nil, err
	case *dsl.Call:
		return c.compileCall(v)
	default:
		return graph.Signal{}, nil, errAt(dsl.Pos{}, "unhandled expression type %T", e)
	}
}

// compileChain lowers `base ("#" call)* ("$" transform)*`. Hash calls that
// name a Sample/SynthPattern parameter mutate the pending builder in place;
// any other hash call materializes whatever came before it and wraps it in
// the named effect node. Dollar calls apply pattern transforms to the
// builder's word pattern, left to right.
func (c *Compiler) compileChain(ch *dsl.ChainExpr) (graph.Signal, error) {
	sig, builder, err := c.compile(ch.Base)
	if err != nil {
		return graph.Signal{}, err
	}

	for _, call := range ch.Hash {
		if builder != nil {
			handled, err := c.applySampleParam(builder, call)
			if err != nil {
				return graph.Signal{}, err
			}
			if handled {
				continue
			}
		}
		cur, err := c.materializeFor(sig, builder)
		if err != nil {
			return graph.Signal{}, err
		}
		builder = nil
		node, err := c.compileEffect(call, cur)
		if err != nil {
			return graph.Signal{}, err
		}
		sig = graph.NodeSignal(c.g.AddNode(node))
	}

	if len(ch.Dollar) > 0 {
		if builder == nil {
			return graph.Signal{}, errAt(ch.Pos, "'$' pattern transforms require a word pattern (s/syn) on the left")
		}
		p := builder.pattern()
		for _, call := range ch.Dollar {
			fn, err := c.patternTransform(call)
			if err != nil {
				return graph.Signal{}, err
			}
			p = fn(p)
		}
		builder.setPattern(p)
	}

	return c.materializeFor(sig, builder)
}

func (c *Compiler) materializeFor(sig graph.Signal, b *sampleBuilder) (graph.Signal, error) {
	if b != nil {
		return b.materialize(c.g), nil
	}
	return sig, nil
}

// applySampleParam handles the per-event parameter calls a Sample/
// SynthPattern chain attaches via "#" (gain, pan, speed, note/n, attack,
// release, cut/cutgroup). It reports false for any call it doesn't
// recognize as a parameter, so the caller falls through to treating it as
// an effect node.
func (c *Compiler) applySampleParam(b *sampleBuilder, call dsl.Call) (bool, error) {
	switch call.Func {
	case "gain", "pan", "note", "n", "attack", "release", "cut", "cutgroup", "speed", "freq":
	default:
		return false, nil
	}
	sig, err := c.argSignal(call, 0)
	if err != nil {
		return true, err
	}
	switch call.Func {
	case "gain":
		b.setGain(sig)
	case "pan":
		b.setPan(sig)
	case "note", "n":
		b.setNote(sig)
	case "attack":
		b.setAttack(sig)
	case "release":
		b.setRelease(sig)
	case "cut", "cutgroup":
		b.setCutGroup(sig)
	case "speed":
		if !b.setSpeed(sig) {
			return true, errAt(call.Pos, "'speed' only applies to s(...), not syn(...)")
		}
	case "freq":
		if !b.setFreq(sig) {
			return true, errAt(call.Pos, "'freq' only applies to syn(...), not s(...)")
		}
	}
	return true, nil
}
