package compiler

import (
	"github.com/phonon-lang/phonon/internal/graph"
	"github.com/phonon-lang/phonon/internal/pattern"
)

// sampleBuilder defers AddNode for a `s "..."`/`syn "..."` call until its
// `#`-chained parameter calls (gain, pan, attack, ...) have all been
// applied, so the compiler never needs to re-synthesize a fresh immutable
// node per mutated field: graph.Sample and graph.SynthPattern are already
// interior-mutable, so there is exactly one allocation per chain instead of
// one per attached parameter.
type sampleBuilder struct {
	sample *graph.Sample
	synth  *graph.SynthPattern
}

func newSampleBuilder(s *graph.Sample) *sampleBuilder  { return &sampleBuilder{sample: s} }
func newSynthBuilder(s *graph.SynthPattern) *sampleBuilder { return &sampleBuilder{synth: s} }

func (b *sampleBuilder) pattern() pattern.Pattern[string] {
	if b.sample != nil {
		return b.sample.Pattern
	}
	return b.synth.Pattern
}

func (b *sampleBuilder) setPattern(p pattern.Pattern[string]) {
	if b.sample != nil {
		b.sample.Pattern = p
	} else {
		b.synth.Pattern = p
	}
}

func (b *sampleBuilder) setGain(s graph.Signal) {
	if b.sample != nil {
		b.sample.Gain = s
	} else {
		b.synth.Gain = s
	}
}

func (b *sampleBuilder) setPan(s graph.Signal) {
	if b.sample != nil {
		b.sample.Pan = s
	} else {
		b.synth.Pan = s
	}
}

func (b *sampleBuilder) setNote(s graph.Signal) {
	if b.sample != nil {
		b.sample.Note = s
	} else {
		b.synth.Note = s
	}
}

func (b *sampleBuilder) setAttack(s graph.Signal) {
	if b.sample != nil {
		b.sample.Attack = s
	} else {
		b.synth.Attack = s
	}
}

func (b *sampleBuilder) setRelease(s graph.Signal) {
	if b.sample != nil {
		b.sample.Release = s
	} else {
		b.synth.Release = s
	}
}

func (b *sampleBuilder) setCutGroup(s graph.Signal) {
	if b.sample != nil {
		b.sample.CutGroup = s
		b.sample.HasCutGroup = true
	} else {
		b.synth.CutGroup = s
		b.synth.HasCutGroup = true
	}
}

// setSpeed only applies to sample playback; synth voices have no natural
// playback rate to scale.
func (b *sampleBuilder) setSpeed(s graph.Signal) bool {
	if b.sample == nil {
		return false
	}
	b.sample.Speed = s
	return true
}

// setFreq only applies to synth voices.
func (b *sampleBuilder) setFreq(s graph.Signal) bool {
	if b.synth == nil {
		return false
	}
	b.synth.Freq = s
	return true
}

// materialize registers the deferred node with the graph, exactly once.
func (b *sampleBuilder) materialize(g *graph.Graph) graph.Signal {
	if b.sample != nil {
		id := g.AddNode(b.sample)
		b.sample.Self = id
		return graph.NodeSignal(id)
	}
	id := g.AddNode(b.synth)
	b.synth.Self = id
	return graph.NodeSignal(id)
}
