package graph

import (
	"math"
	"math/rand"

	"github.com/phonon-lang/phonon/internal/dsp"
)

// Waveform names understood by Oscillator and SynthPattern.
const (
	WaveSine   = "sine"
	WaveSaw    = "saw"
	WaveSquare = "square"
	WaveTri    = "tri"
)

// Oscillator is a band-unlimited source (adequate for a live-coding tool;
// anti-aliased variants are future work, not part of this contract).
type Oscillator struct {
	Kind  string
	Freq  Signal
	phase float64
}

func (o *Oscillator) Eval(g *Graph) float64 {
	freq := g.EvalSignal(o.Freq, g.CyclePosition)
	v := waveformAt(o.Kind, o.phase)
	o.phase += freq / g.SampleRate
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
	} else if o.phase < 0 {
		o.phase -= math.Floor(o.phase)
	}
	return v
}

func waveformAt(kind string, phase float64) float64 {
	switch kind {
	case WaveSaw:
		return 2*phase - 1
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveTri:
		return 4*math.Abs(phase-0.5) - 1
	default: // WaveSine
		return math.Sin(2 * math.Pi * phase)
	}
}

// Noise emits uniform white noise in [-1, 1].
type Noise struct{ rng *rand.Rand }

func NewNoise(seed int64) *Noise { return &Noise{rng: rand.New(rand.NewSource(seed))} }

func (n *Noise) Eval(g *Graph) float64 {
	if n.rng == nil {
		n.rng = rand.New(rand.NewSource(1))
	}
	return n.rng.Float64()*2 - 1
}

// Impulse emits a single-sample 1.0 at Freq Hz intervals and 0 otherwise.
type Impulse struct {
	Freq  Signal
	phase float64
}

func (imp *Impulse) Eval(g *Graph) float64 {
	freq := g.EvalSignal(imp.Freq, g.CyclePosition)
	imp.phase += freq / g.SampleRate
	if imp.phase >= 1 {
		imp.phase -= math.Floor(imp.phase)
		return 1
	}
	return 0
}

// Constant always reads as Value, wrapping a bare Signal in the Node
// interface so it can be referenced by NodeID like any computed node.
type Constant struct{ Value Signal }

func (c *Constant) Eval(g *Graph) float64 { return g.EvalSignal(c.Value, g.CyclePosition) }

// Arithmetic nodes. Expression signals cover most inline arithmetic; these
// exist for when the compiler needs a standalone addressable node (e.g. an
// arithmetic result referenced by more than one downstream node, where
// re-evaluating an Expression signal per reference would duplicate work).
type Add struct{ A, B Signal }

func (n *Add) Eval(g *Graph) float64 {
	return g.EvalSignal(n.A, g.CyclePosition) + g.EvalSignal(n.B, g.CyclePosition)
}

type Sub struct{ A, B Signal }

func (n *Sub) Eval(g *Graph) float64 {
	return g.EvalSignal(n.A, g.CyclePosition) - g.EvalSignal(n.B, g.CyclePosition)
}

type Mul struct{ A, B Signal }

func (n *Mul) Eval(g *Graph) float64 {
	return g.EvalSignal(n.A, g.CyclePosition) * g.EvalSignal(n.B, g.CyclePosition)
}

type Div struct{ A, B Signal }

func (n *Div) Eval(g *Graph) float64 {
	b := g.EvalSignal(n.B, g.CyclePosition)
	if b == 0 {
		return 0
	}
	return g.EvalSignal(n.A, g.CyclePosition) / b
}

// Filters: LowPass/HighPass/BandPass/Notch wrap a single dsp.Biquad,
// recomputing coefficients whenever cutoff/q change (cheap relative to a
// sample's cost, and avoids carrying stale coefficients across a live edit).
type biquadFilter struct {
	Input  Signal
	Cutoff Signal
	Q      Signal
	design func(freq, q, sampleRate float64) dsp.BiquadCoeffs
	biquad dsp.Biquad
	lastF  float64
	lastQ  float64
	inited bool
}

func (f *biquadFilter) eval(g *Graph) float64 {
	in := g.EvalSignal(f.Input, g.CyclePosition)
	freq := g.EvalSignal(f.Cutoff, g.CyclePosition)
	q := g.EvalSignal(f.Q, g.CyclePosition)
	if !f.inited || freq != f.lastF || q != f.lastQ {
		f.biquad.SetCoeffs(f.design(freq, q, g.SampleRate))
		f.lastF, f.lastQ, f.inited = freq, q, true
	}
	return f.biquad.Process(in)
}

type LowPass struct{ biquadFilter }
type HighPass struct{ biquadFilter }
type BandPass struct{ biquadFilter }
type Notch struct{ biquadFilter }

func NewLowPass(input, cutoff, q Signal) *LowPass {
	return &LowPass{biquadFilter{Input: input, Cutoff: cutoff, Q: q, design: dsp.LowpassCoeffs}}
}
func NewHighPass(input, cutoff, q Signal) *HighPass {
	return &HighPass{biquadFilter{Input: input, Cutoff: cutoff, Q: q, design: dsp.HighpassCoeffs}}
}
func NewBandPass(input, cutoff, q Signal) *BandPass {
	return &BandPass{biquadFilter{Input: input, Cutoff: cutoff, Q: q, design: dsp.BandpassCoeffs}}
}
func NewNotch(input, cutoff, q Signal) *Notch {
	return &Notch{biquadFilter{Input: input, Cutoff: cutoff, Q: q, design: dsp.NotchCoeffs}}
}

func (f *LowPass) Eval(g *Graph) float64  { return f.eval(g) }
func (f *HighPass) Eval(g *Graph) float64 { return f.eval(g) }
func (f *BandPass) Eval(g *Graph) float64 { return f.eval(g) }
func (f *Notch) Eval(g *Graph) float64    { return f.eval(g) }

// Comb is a feedback delay-based comb filter; it participates in graph
// cycles (see Feedback).
type Comb struct {
	Input      Signal
	DelaySec   Signal
	Feedback   Signal
	line       *dsp.DelayLine
	maxSeconds float64
}

func NewComb(input, delaySec, feedback Signal, maxSeconds, sampleRate float64) *Comb {
	return &Comb{Input: input, DelaySec: delaySec, Feedback: feedback, maxSeconds: maxSeconds, line: dsp.NewDelayLine(int(maxSeconds*sampleRate) + 1)}
}

func (c *Comb) Eval(g *Graph) float64 {
	in := float32(g.EvalSignal(c.Input, g.CyclePosition))
	delaySec := dsp.Clamp(g.EvalSignal(c.DelaySec, g.CyclePosition), 0, c.maxSeconds)
	fb := dsp.Clamp(g.EvalSignal(c.Feedback, g.CyclePosition), 0, 0.95)
	wet := c.line.Read(delaySec * g.SampleRate)
	c.line.Write(in + wet*float32(fb))
	return float64(wet)
}

func (c *Comb) IsFeedback() bool { return true }

// MoogLadder wraps dsp.MoogLadder as a graph node.
type MoogLadderNode struct {
	Input      Signal
	Cutoff     Signal
	Resonance  Signal
	ladder     dsp.MoogLadder
}

func NewMoogLadder(input, cutoff, resonance Signal) *MoogLadderNode {
	return &MoogLadderNode{Input: input, Cutoff: cutoff, Resonance: resonance}
}

func (m *MoogLadderNode) Eval(g *Graph) float64 {
	in := g.EvalSignal(m.Input, g.CyclePosition)
	cutoff := g.EvalSignal(m.Cutoff, g.CyclePosition)
	res := g.EvalSignal(m.Resonance, g.CyclePosition)
	return m.ladder.Process(in, cutoff, res, g.SampleRate)
}

// ParametricEQ is a peaking biquad exposed with a gain-in-dB parameter,
// distinct from the plain filters above which have no gain control.
type ParametricEQ struct {
	Input  Signal
	Freq   Signal
	Q      Signal
	GainDB Signal
	biquad dsp.Biquad
	lastF, lastQ, lastGain float64
	inited bool
}

func (p *ParametricEQ) Eval(g *Graph) float64 {
	in := g.EvalSignal(p.Input, g.CyclePosition)
	freq := g.EvalSignal(p.Freq, g.CyclePosition)
	q := g.EvalSignal(p.Q, g.CyclePosition)
	gain := g.EvalSignal(p.GainDB, g.CyclePosition)
	if !p.inited || freq != p.lastF || q != p.lastQ || gain != p.lastGain {
		p.biquad.SetCoeffs(dsp.PeakingEQCoeffs(freq, q, gain, g.SampleRate))
		p.lastF, p.lastQ, p.lastGain, p.inited = freq, q, gain, true
	}
	return p.biquad.Process(in)
}
