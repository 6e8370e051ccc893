package graph

import (
	"time"

	"github.com/phonon-lang/phonon/internal/samplebank"
	"github.com/phonon-lang/phonon/internal/transport"
	"github.com/phonon-lang/phonon/internal/voice"
)

// Graph is a compiled signal graph: a positionally indexed node store plus
// the transport state (sample rate, cycles-per-second, session start) and
// the per-sample evaluation scratch space described in spec.md §4.2.
type Graph struct {
	Nodes      []Node
	Bus        map[string]NodeID
	Output     NodeID
	HasOutput  bool
	SampleRate float64
	CPS        float64

	// SessionStart anchors cycle position to wall-clock time for live
	// playback; preserved across hot-swaps so the transport never jumps.
	SessionStart time.Time

	Bank   samplebank.Bank
	Voices *voice.Manager

	// Per-call scratch, cleared at the top of every ProcessSample.
	valueCache []float64
	computed   []bool
	evaluating []bool

	CyclePosition float64
	sampleCount   int64
	Offline       bool

	voiceOut map[voice.NodeID]voice.StereoSample
}

// New creates an empty graph; the compiler appends nodes
// and fills Bus/Output as it lowers the AST.
func New(sampleRate, cps float64) *Graph {
	return &Graph{
		Bus:          make(map[string]NodeID),
		SampleRate:   sampleRate,
		CPS:          cps,
		SessionStart: time.Now(),
		Voices:       voice.NewManager(voice.MinVoices, sampleRate),
	}
}

// AddNode appends a node and returns its id.
func (g *Graph) AddNode(n Node) NodeID {
	g.Nodes = append(g.Nodes, n)
	return NodeID(len(g.Nodes) - 1)
}

func (g *Graph) ensureScratch() {
	n := len(g.Nodes)
	if cap(g.valueCache) < n {
		g.valueCache = make([]float64, n)
		g.computed = make([]bool, n)
		g.evaluating = make([]bool, n)
		return
	}
	g.valueCache = g.valueCache[:n]
	g.computed = g.computed[:n]
	g.evaluating = g.evaluating[:n]
}

// advanceCyclePosition recomputes the transport's cycle position: from
// wall-clock elapsed time for live playback, or from the running sample
// count for offline rendering, exactly as spec.md §4.2 step 2 specifies.
func (g *Graph) advanceCyclePosition() {
	if g.Offline {
		g.CyclePosition = transport.CyclePositionOffline(g.sampleCount, g.SampleRate, g.CPS)
		return
	}
	clk := transport.Clock{SessionStart: g.SessionStart, CPS: g.CPS}
	g.CyclePosition = clk.CyclePosition(time.Now())
}

// ProcessSample evaluates the graph for exactly one output sample frame,
// the four steps of spec.md §4.2: clear the value cache, advance cycle
// position, let the voice manager mix this sample's per-node contribution,
// then evaluate the output sink.
func (g *Graph) ProcessSample() (left, right float32) {
	g.ensureScratch()
	for i := range g.computed {
		g.computed[i] = false
		g.evaluating[i] = false
	}
	g.advanceCyclePosition()
	if g.Voices != nil {
		g.voiceOut = g.Voices.ProcessPerNode()
	}

	defer func() { g.sampleCount++ }()

	if !g.HasOutput || int(g.Output) >= len(g.Nodes) {
		return 0, 0
	}
	if out, ok := g.Nodes[g.Output].(*OutputNode); ok {
		return out.evalStereo(g)
	}
	v := float32(g.evalNode(g.Output))
	return equalPowerCenter(v)
}

// evalNode memoizes each node's value for the duration of one ProcessSample
// call and breaks feedback cycles: re-entering a node already being
// evaluated on this sample returns its last completed value rather than
// recursing (only delay-carrying nodes are allowed to form a cycle; the
// compiler rejects any other cycle ahead of time).
func (g *Graph) evalNode(id NodeID) float64 {
	i := int(id)
	if i < 0 || i >= len(g.Nodes) {
		return 0
	}
	if g.computed[i] {
		return g.valueCache[i]
	}
	if g.evaluating[i] {
		return g.valueCache[i]
	}
	g.evaluating[i] = true
	v := g.Nodes[i].Eval(g)
	g.evaluating[i] = false
	g.computed[i] = true
	g.valueCache[i] = v
	return v
}

// VoiceOutput returns this sample's mixed voice-manager contribution for a
// Sample/SynthPattern node, the value stashed by step 3 of ProcessSample.
func (g *Graph) VoiceOutput(id NodeID) (voice.StereoSample, bool) {
	st, ok := g.voiceOut[id]
	return st, ok
}

func equalPowerCenter(v float32) (l, r float32) {
	const centerGain = 0.70710678 // cos(pi/4) == sin(pi/4)
	return v * centerGain, v * centerGain
}

// Hush silences all voices while leaving the graph (and its non-voice
// state, e.g. delay lines) running.
func (g *Graph) Hush() {
	if g.Voices != nil {
		g.Voices.Hush()
	}
}

// Panic immediately zeroes all voice state, the harder-stop sibling of Hush.
func (g *Graph) Panic() {
	if g.Voices != nil {
		g.Voices.Panic()
	}
}
