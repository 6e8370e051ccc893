package graph

import "github.com/phonon-lang/phonon/internal/voice"

// NodeID indexes into a Graph's node slice; it doubles as voice.NodeID so a
// Sample/SynthPattern node's id can be used directly as a voice source-node
// key without any conversion at the call site.
type NodeID = voice.NodeID

// Node is anything that can be evaluated for one sample's worth of output.
// Every node except Output has a fixed set of Signal inputs; eval_node
// resolves them all through Graph.EvalSignal at the graph's current cycle
// position (or, for Sample's per-event parameters, at the event's onset).
type Node interface {
	Eval(g *Graph) float64
}

// Feedback marks nodes that hold a delay buffer and so are allowed to
// participate in a graph cycle: re-entering one mid-sample returns its
// previous output instead of recursing (spec.md §3.4's feedback invariant).
type Feedback interface {
	Node
	IsFeedback() bool
}
