package dsp

import "math"

// RMS tracks a running root-mean-square level over a sliding exponential
// window set by WindowMs.
type RMS struct {
	WindowMs float64
	meanSq   float64
}

func (r *RMS) Process(x float32, sampleRate float64) float64 {
	coeff := timeCoeff(r.WindowMs, sampleRate)
	r.meanSq = coeff*r.meanSq + (1-coeff)*float64(x)*float64(x)
	return math.Sqrt(r.meanSq)
}

// PeakFollower tracks the instantaneous peak with independent attack
// (rise) and release (decay) times.
type PeakFollower struct {
	AttackMs  float64
	ReleaseMs float64
	level     float64
}

func (p *PeakFollower) Process(x float32, sampleRate float64) float64 {
	in := math.Abs(float64(x))
	if in > p.level {
		p.level = timeCoeff(p.AttackMs, sampleRate)*p.level + (1-timeCoeff(p.AttackMs, sampleRate))*in
	} else {
		p.level = timeCoeff(p.ReleaseMs, sampleRate)*p.level + (1-timeCoeff(p.ReleaseMs, sampleRate))*in
	}
	return p.level
}

// EnvelopeFollower is an alias-distinct single-pole follower (attack ==
// release) for nodes that just want an overall loudness contour rather
// than PeakFollower's asymmetric response.
type EnvelopeFollower struct {
	TimeMs float64
	level  float64
}

func (e *EnvelopeFollower) Process(x float32, sampleRate float64) float64 {
	coeff := timeCoeff(e.TimeMs, sampleRate)
	e.level = coeff*e.level + (1-coeff)*math.Abs(float64(x))
	return e.level
}

// Schmidt is a Schmitt trigger: a hysteretic comparator that outputs 1 once
// the input exceeds High and holds until it falls below Low.
type Schmidt struct {
	High, Low float64
	state     bool
}

func (s *Schmidt) Process(x float32) float64 {
	v := float64(x)
	if !s.state && v >= s.High {
		s.state = true
	} else if s.state && v <= s.Low {
		s.state = false
	}
	if s.state {
		return 1
	}
	return 0
}

// Latch samples and holds its input value whenever trigger crosses above
// 0.5, until the next trigger.
type Latch struct {
	held     float64
	lastTrig bool
}

func (l *Latch) Process(x float32, trigger float64) float64 {
	trig := trigger >= 0.5
	if trig && !l.lastTrig {
		l.held = float64(x)
	}
	l.lastTrig = trig
	return l.held
}

// Timer counts seconds elapsed since the last trigger edge, re-arming on
// every rising edge.
type Timer struct {
	elapsed  float64
	lastTrig bool
}

func (t *Timer) Process(trigger float64, sampleRate float64) float64 {
	trig := trigger >= 0.5
	if trig && !t.lastTrig {
		t.elapsed = 0
	} else {
		t.elapsed += 1 / sampleRate
	}
	t.lastTrig = trig
	return t.elapsed
}

// Pitch is a simple autocorrelation-based monophonic pitch tracker over a
// rolling analysis window; adequate for tracking a single oscillator or
// plucked note, not a full polyphonic transcription engine.
type Pitch struct {
	SampleRate   float64
	WindowSize   int
	MinHz        float64
	MaxHz        float64
	buf          []float32
	writePos     int
	lastEstimate float64
}

func NewPitch(sampleRate float64, windowSize int) *Pitch {
	if windowSize < 64 {
		windowSize = 64
	}
	return &Pitch{SampleRate: sampleRate, WindowSize: windowSize, MinHz: 50, MaxHz: 1000, buf: make([]float32, windowSize)}
}

func (p *Pitch) Process(x float32) float64 {
	p.buf[p.writePos] = x
	p.writePos++
	if p.writePos < len(p.buf) {
		return p.lastEstimate
	}
	p.writePos = 0

	minLag := int(p.SampleRate / p.MaxHz)
	maxLag := int(p.SampleRate / p.MinHz)
	if maxLag >= len(p.buf) {
		maxLag = len(p.buf) - 1
	}
	if minLag < 1 {
		minLag = 1
	}

	bestLag := -1
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i < len(p.buf)-lag; i++ {
			corr += float64(p.buf[i]) * float64(p.buf[i+lag])
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestLag > 0 {
		p.lastEstimate = p.SampleRate / float64(bestLag)
	}
	return p.lastEstimate
}

// Transient outputs 1.0 on every sample where the input's short-term
// energy exceeds Threshold times its longer-term average (0 otherwise),
// a crude onset detector.
type Transient struct {
	Threshold float64
	fast      EnvelopeFollower
	slow      EnvelopeFollower
}

func NewTransient() *Transient {
	return &Transient{Threshold: 1.5, fast: EnvelopeFollower{TimeMs: 5}, slow: EnvelopeFollower{TimeMs: 100}}
}

func (t *Transient) Process(x float32, sampleRate float64) float64 {
	f := t.fast.Process(x, sampleRate)
	s := t.slow.Process(x, sampleRate)
	if s > 1e-9 && f/s > t.Threshold {
		return 1
	}
	return 0
}
