package dsp

import "math"

// LFO is a simple free-running oscillator used to modulate delay time,
// amplitude or filter cutoff in Chorus, Flanger, Tremolo, Vibrato and the
// allpass stages of Phaser.
type LFO struct {
	phase float64
}

func (l *LFO) Next(rateHz, sampleRate float64) float64 {
	v := math.Sin(2 * math.Pi * l.phase)
	l.phase += rateHz / sampleRate
	if l.phase >= 1 {
		l.phase -= 1
	}
	return v
}

// Chorus mixes the dry signal with one or more detuned copies read from a
// single delay line whose tap position is swept by an LFO.
type Chorus struct {
	line    *DelayLine
	lfo     LFO
	RateHz  float64
	DepthMs float64
	BaseMs  float64
	Mix     float64
}

func NewChorus(sampleRate float64) *Chorus {
	return &Chorus{line: NewDelayLine(int(0.05*sampleRate) + 1), RateHz: 0.5, DepthMs: 3, BaseMs: 10, Mix: 0.5}
}

func (c *Chorus) Process(x float32, sampleRate float64) float32 {
	c.line.Write(x)
	mod := c.lfo.Next(c.RateHz, sampleRate)
	delayMs := c.BaseMs + c.DepthMs*mod
	wet := c.line.Read(delayMs / 1000 * sampleRate)
	mix := float32(Clamp(c.Mix, 0, 1))
	return x*(1-mix) + wet*mix
}

// Flanger is a Chorus with a shorter base delay and feedback, producing the
// characteristic comb-filter sweep.
type Flanger struct {
	line     *DelayLine
	lfo      LFO
	RateHz   float64
	DepthMs  float64
	Feedback float64
	Mix      float64
}

func NewFlanger(sampleRate float64) *Flanger {
	return &Flanger{line: NewDelayLine(int(0.02*sampleRate) + 1), RateHz: 0.25, DepthMs: 2, Feedback: 0.4, Mix: 0.5}
}

func (f *Flanger) Process(x float32, sampleRate float64) float32 {
	mod := f.lfo.Next(f.RateHz, sampleRate)
	delayMs := 1 + f.DepthMs*(0.5+0.5*mod)
	wet := f.line.Read(delayMs / 1000 * sampleRate)
	fb := float32(Clamp(f.Feedback, 0, 0.95))
	f.line.Write(x + wet*fb)
	mix := float32(Clamp(f.Mix, 0, 1))
	return x*(1-mix) + wet*mix
}

// Phaser sweeps a cascade of allpass filters with an LFO-modulated center
// frequency, then mixes the dry signal with the phase-shifted copy.
type Phaser struct {
	stages   [4]onePoleAllpass
	lfo      LFO
	RateHz   float64
	MinHz    float64
	MaxHz    float64
	Feedback float64
	Mix      float64
	fbState  float32
}

func NewPhaser() *Phaser {
	return &Phaser{RateHz: 0.3, MinHz: 200, MaxHz: 2000, Feedback: 0.3, Mix: 0.5}
}

func (p *Phaser) Process(x float32, sampleRate float64) float32 {
	mod := (p.lfo.Next(p.RateHz, sampleRate) + 1) / 2
	freq := p.MinHz + (p.MaxHz-p.MinHz)*mod
	coeff := allpassCoeff(freq, sampleRate)

	in := x + p.fbState*float32(Clamp(p.Feedback, 0, 0.95))
	for i := range p.stages {
		in = p.stages[i].process(in, coeff)
	}
	p.fbState = in
	mix := float32(Clamp(p.Mix, 0, 1))
	return x*(1-mix) + in*mix
}

type onePoleAllpass struct{ z float32 }

func (a *onePoleAllpass) process(x float32, coeff float32) float32 {
	y := -coeff*x + a.z
	a.z = x + coeff*y
	return y
}

func allpassCoeff(freq, sampleRate float64) float32 {
	tanHalf := math.Tan(math.Pi * freq / sampleRate)
	return float32((tanHalf - 1) / (tanHalf + 1))
}

// Tremolo amplitude-modulates the input with an LFO.
type Tremolo struct {
	lfo    LFO
	RateHz float64
	Depth  float64 // [0,1]
}

func NewTremolo() *Tremolo { return &Tremolo{RateHz: 5, Depth: 0.5} }

func (t *Tremolo) Process(x float32, sampleRate float64) float32 {
	mod := (t.lfo.Next(t.RateHz, sampleRate) + 1) / 2
	depth := Clamp(t.Depth, 0, 1)
	gain := 1 - depth + depth*mod
	return x * float32(gain)
}

// Vibrato pitch-modulates the input by sweeping a short delay line's read
// position, the delay-based realization of vibrato.
type Vibrato struct {
	line    *DelayLine
	lfo     LFO
	RateHz  float64
	DepthMs float64
}

func NewVibrato(sampleRate float64) *Vibrato {
	return &Vibrato{line: NewDelayLine(int(0.02*sampleRate) + 1), RateHz: 5, DepthMs: 2}
}

func (v *Vibrato) Process(x float32, sampleRate float64) float32 {
	v.line.Write(x)
	mod := v.lfo.Next(v.RateHz, sampleRate)
	delayMs := v.DepthMs + v.DepthMs*mod
	return v.line.Read(delayMs / 1000 * sampleRate)
}
