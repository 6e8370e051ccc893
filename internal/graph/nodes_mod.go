package graph

import "github.com/phonon-lang/phonon/internal/dsp"

// SineLFO is a control-rate oscillator meant for modulating other signals
// (filter cutoff, pan, gain) rather than being heard directly: output is
// Offset + Depth*sin(2*pi*phase), so a caller sets Offset/Depth to the
// target parameter's own range instead of post-scaling a [-1,1] wave.
type SineLFO struct {
	Rate   Signal
	Depth  Signal
	Offset Signal
	lfo    dsp.LFO
}

func (s *SineLFO) Eval(g *Graph) float64 {
	rate := g.EvalSignal(s.Rate, g.CyclePosition)
	depth := g.EvalSignal(s.Depth, g.CyclePosition)
	offset := g.EvalSignal(s.Offset, g.CyclePosition)
	return offset + depth*s.lfo.Next(rate, g.SampleRate)
}

// gateHeld reports whether a gate signal counts as "held" this sample, the
// shared threshold used by every triggered envelope below.
func gateHeld(v float64) bool { return v >= 0.5 }

// ADSR is a classic four-stage envelope gated by Gate crossing 0.5: attack
// to 1, decay to Sustain, hold at Sustain while gated, release to 0 on
// gate-off.
type ADSR struct {
	Gate                         Signal
	AttackSec, DecaySec          Signal
	Sustain                      Signal
	ReleaseSec                   Signal
	stage                        envStage
	level                        float64
	lastGate                     bool
}

type envStage int

const (
	stageIdle envStage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

func (e *ADSR) Eval(g *Graph) float64 {
	gate := gateHeld(g.EvalSignal(e.Gate, g.CyclePosition))
	if gate && !e.lastGate {
		e.stage = stageAttack
	} else if !gate && e.lastGate {
		e.stage = stageRelease
	}
	e.lastGate = gate

	attack := g.EvalSignal(e.AttackSec, g.CyclePosition) * g.SampleRate
	decay := g.EvalSignal(e.DecaySec, g.CyclePosition) * g.SampleRate
	sustain := dsp.Clamp(g.EvalSignal(e.Sustain, g.CyclePosition), 0, 1)
	release := g.EvalSignal(e.ReleaseSec, g.CyclePosition) * g.SampleRate

	switch e.stage {
	case stageAttack:
		if attack <= 0 {
			e.level = 1
		} else {
			e.level += 1 / attack
		}
		if e.level >= 1 {
			e.level = 1
			e.stage = stageDecay
		}
	case stageDecay:
		if decay <= 0 {
			e.level = sustain
		} else {
			e.level -= (1 - sustain) / decay
		}
		if e.level <= sustain {
			e.level = sustain
			e.stage = stageSustain
		}
	case stageSustain:
		e.level = sustain
	case stageRelease:
		if release <= 0 {
			e.level = 0
		} else {
			e.level -= e.level / release
			if e.level < 1e-4 {
				e.level = 0
			}
		}
		if e.level <= 0 {
			e.level = 0
			e.stage = stageIdle
		}
	}
	return e.level
}

// AD is an attack/decay envelope with no sustain stage: it decays to 0 on
// its own once the decay finishes, regardless of whether the gate is still
// held, suiting percussive modulation (e.g. a filter-cutoff "pluck").
type AD struct {
	Gate                Signal
	AttackSec, DecaySec Signal
	stage               envStage
	level               float64
	lastGate            bool
}

func (e *AD) Eval(g *Graph) float64 {
	gate := gateHeld(g.EvalSignal(e.Gate, g.CyclePosition))
	if gate && !e.lastGate {
		e.stage = stageAttack
	}
	e.lastGate = gate

	attack := g.EvalSignal(e.AttackSec, g.CyclePosition) * g.SampleRate
	decay := g.EvalSignal(e.DecaySec, g.CyclePosition) * g.SampleRate

	switch e.stage {
	case stageAttack:
		if attack <= 0 {
			e.level = 1
		} else {
			e.level += 1 / attack
		}
		if e.level >= 1 {
			e.level = 1
			e.stage = stageDecay
		}
	case stageDecay:
		if decay <= 0 {
			e.level = 0
		} else {
			e.level -= 1 / decay
		}
		if e.level <= 0 {
			e.level = 0
			e.stage = stageIdle
		}
	}
	return e.level
}

// ASR is an attack/sustain/release envelope: ramps to 1 on gate-on, holds at
// 1 while gated, ramps to 0 on gate-off. Unlike ADSR there is no decay
// stage, matching the voice pool's own attack/hold/release shape but
// exposed as a standalone control-rate node.
type ASR struct {
	Gate                 Signal
	AttackSec, ReleaseSec Signal
	stage                envStage
	level                float64
	lastGate             bool
}

func (e *ASR) Eval(g *Graph) float64 {
	gate := gateHeld(g.EvalSignal(e.Gate, g.CyclePosition))
	if gate && !e.lastGate {
		e.stage = stageAttack
	} else if !gate && e.lastGate {
		e.stage = stageRelease
	}
	e.lastGate = gate

	attack := g.EvalSignal(e.AttackSec, g.CyclePosition) * g.SampleRate
	release := g.EvalSignal(e.ReleaseSec, g.CyclePosition) * g.SampleRate

	switch e.stage {
	case stageAttack:
		if attack <= 0 {
			e.level = 1
		} else {
			e.level += 1 / attack
		}
		if e.level >= 1 {
			e.level = 1
			e.stage = stageSustain
		}
	case stageSustain:
		e.level = 1
	case stageRelease:
		if release <= 0 {
			e.level = 0
		} else {
			e.level -= 1 / release
		}
		if e.level <= 0 {
			e.level = 0
			e.stage = stageIdle
		}
	}
	return e.level
}

// Curve ramps from From to To over DurationSec using an exponential-feeling
// shape controlled by Shape (0 = linear, >0 starts slowly and speeds up
// into To, <0 starts fast and eases into To), restarting whenever Gate rises.
type Curve struct {
	Gate        Signal
	From, To    Signal
	DurationSec Signal
	Shape       Signal
	elapsed     float64
	running     bool
	lastGate    bool
}

func (c *Curve) Eval(g *Graph) float64 {
	gate := gateHeld(g.EvalSignal(c.Gate, g.CyclePosition))
	if gate && !c.lastGate {
		c.elapsed = 0
		c.running = true
	}
	c.lastGate = gate

	from := g.EvalSignal(c.From, g.CyclePosition)
	to := g.EvalSignal(c.To, g.CyclePosition)
	dur := g.EvalSignal(c.DurationSec, g.CyclePosition)
	shape := g.EvalSignal(c.Shape, g.CyclePosition)

	if !c.running || dur <= 0 {
		return from
	}
	t := dsp.Clamp(c.elapsed/(dur*g.SampleRate), 0, 1)
	c.elapsed++
	shaped := shapeCurve(t, shape)
	if t >= 1 {
		c.running = false
	}
	return from + (to-from)*shaped
}

func shapeCurve(t, shape float64) float64 {
	if shape == 0 {
		return t
	}
	k := shape
	if k > 0 {
		return 1 - (1-t)*(1+k)/(1+k*(1-t))
	}
	k = -k
	return t * (1 + k) / (1 + k*t)
}

// Segment is one breakpoint in a Segments envelope: ramp to Level over
// TimeSec, linearly.
type Segment struct {
	Level   float64
	TimeSec float64
}

// Segments plays a fixed multi-breakpoint envelope once per gate rising
// edge, holding at the final level until retriggered.
type Segments struct {
	Gate     Signal
	Points   []Segment
	idx      int
	segStart float64
	level    float64
	lastGate bool
	running  bool
}

func (s *Segments) Eval(g *Graph) float64 {
	gate := gateHeld(g.EvalSignal(s.Gate, g.CyclePosition))
	if gate && !s.lastGate {
		s.idx = 0
		s.segStart = 0
		s.running = true
		if len(s.Points) > 0 {
			s.level = 0
		}
	}
	s.lastGate = gate

	if !s.running || s.idx >= len(s.Points) {
		return s.level
	}
	seg := s.Points[s.idx]
	elapsed := s.segStart
	dur := seg.TimeSec * g.SampleRate
	var t float64
	if dur <= 0 {
		t = 1
	} else {
		t = dsp.Clamp(elapsed/dur, 0, 1)
	}
	start := 0.0
	if s.idx > 0 {
		start = s.Points[s.idx-1].Level
	}
	s.level = start + (seg.Level-start)*t
	s.segStart++
	if t >= 1 {
		s.idx++
		s.segStart = 0
		if s.idx >= len(s.Points) {
			s.running = false
		}
	}
	return s.level
}

// Analysis node wrappers: thin adapters from a Signal input to the
// corresponding internal/dsp analysis type, each holding its own state
// across samples the way the filters above hold a Biquad.

type RMSNode struct {
	Input    Signal
	WindowMs Signal
	rms      dsp.RMS
}

func (n *RMSNode) Eval(g *Graph) float64 {
	n.rms.WindowMs = g.EvalSignal(n.WindowMs, g.CyclePosition)
	return n.rms.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate)
}

type PeakFollowerNode struct {
	Input               Signal
	AttackMs, ReleaseMs Signal
	follower            dsp.PeakFollower
}

func (n *PeakFollowerNode) Eval(g *Graph) float64 {
	n.follower.AttackMs = g.EvalSignal(n.AttackMs, g.CyclePosition)
	n.follower.ReleaseMs = g.EvalSignal(n.ReleaseMs, g.CyclePosition)
	return n.follower.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate)
}

type EnvelopeFollowerNode struct {
	Input  Signal
	TimeMs Signal
	follower dsp.EnvelopeFollower
}

func (n *EnvelopeFollowerNode) Eval(g *Graph) float64 {
	n.follower.TimeMs = g.EvalSignal(n.TimeMs, g.CyclePosition)
	return n.follower.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate)
}

type SchmidtNode struct {
	Input     Signal
	High, Low Signal
	trigger   dsp.Schmidt
}

func (n *SchmidtNode) Eval(g *Graph) float64 {
	n.trigger.High = g.EvalSignal(n.High, g.CyclePosition)
	n.trigger.Low = g.EvalSignal(n.Low, g.CyclePosition)
	return n.trigger.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)))
}

type LatchNode struct {
	Input, Trigger Signal
	latch          dsp.Latch
}

func (n *LatchNode) Eval(g *Graph) float64 {
	return n.latch.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.EvalSignal(n.Trigger, g.CyclePosition))
}

type TimerNode struct {
	Trigger Signal
	timer   dsp.Timer
}

func (n *TimerNode) Eval(g *Graph) float64 {
	return n.timer.Process(g.EvalSignal(n.Trigger, g.CyclePosition), g.SampleRate)
}

type PitchNode struct {
	Input Signal
	pitch *dsp.Pitch
}

func NewPitchNode(input Signal, sampleRate float64) *PitchNode {
	return &PitchNode{Input: input, pitch: dsp.NewPitch(sampleRate, 1024)}
}

func (n *PitchNode) Eval(g *Graph) float64 {
	return n.pitch.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)))
}

type TransientNode struct {
	Input     Signal
	Threshold Signal
	transient dsp.Transient
}

func NewTransientNode(input, threshold Signal) *TransientNode {
	t := &TransientNode{Input: input, Threshold: threshold}
	t.transient = *dsp.NewTransient()
	return t
}

func (n *TransientNode) Eval(g *Graph) float64 {
	n.transient.Threshold = g.EvalSignal(n.Threshold, g.CyclePosition)
	return n.transient.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate)
}
