package dsp

import "math"

// BitCrush quantizes amplitude to a reduced bit depth and optionally holds
// samples at a reduced effective sample rate (classic lo-fi downsampling).
type BitCrush struct {
	Bits       float64 // [1,16]
	SampleRate float64 // effective crushed rate, Hz; 0 disables sample-rate reduction
	held       float32
	phase      float64
}

func (b *BitCrush) Process(x float32, hostSampleRate float64) float32 {
	out := x
	if b.SampleRate > 0 && b.SampleRate < hostSampleRate {
		b.phase += b.SampleRate / hostSampleRate
		if b.phase >= 1 {
			b.phase -= 1
			b.held = x
		}
		out = b.held
	}
	bits := Clamp(b.Bits, 1, 16)
	levels := math.Pow(2, bits)
	return float32(math.Round(float64(out)*levels) / levels)
}

// Distortion applies a waveshaping nonlinearity, driven by Drive and scaled
// back down by Mix against the dry signal.
type Distortion struct {
	Drive float64 // >=1
	Mix   float64
}

func (d *Distortion) Process(x float32) float32 {
	drive := math.Max(1, d.Drive)
	shaped := float32(math.Tanh(float64(x) * drive))
	mix := float32(Clamp(d.Mix, 0, 1))
	return x*(1-mix) + shaped*mix
}

// RingMod multiplies the input by a carrier sine, producing the sum/
// difference sidebands characteristic of ring modulation.
type RingMod struct {
	phase     float64
	CarrierHz float64
}

func (r *RingMod) Process(x float32, sampleRate float64) float32 {
	carrier := math.Sin(2 * math.Pi * r.phase)
	r.phase += r.CarrierHz / sampleRate
	if r.phase >= 1 {
		r.phase -= 1
	}
	return x * float32(carrier)
}

// Compressor is a feedforward peak compressor: envelope-follow the input,
// compute gain reduction above Threshold at Ratio:1, and smooth the gain
// with independent attack/release times.
type Compressor struct {
	ThresholdDB float64
	Ratio       float64 // >= 1
	AttackMs    float64
	ReleaseMs   float64
	MakeupDB    float64

	envelope float64
	gain     float64
}

func NewCompressor() *Compressor {
	return &Compressor{ThresholdDB: -18, Ratio: 4, AttackMs: 10, ReleaseMs: 100, gain: 1}
}

func (c *Compressor) Process(x float32, sampleRate float64) float32 {
	input := math.Abs(float64(x))
	attackCoeff := timeCoeff(c.AttackMs, sampleRate)
	releaseCoeff := timeCoeff(c.ReleaseMs, sampleRate)
	if input > c.envelope {
		c.envelope = attackCoeff*c.envelope + (1-attackCoeff)*input
	} else {
		c.envelope = releaseCoeff*c.envelope + (1-releaseCoeff)*input
	}

	envDB := linToDB(c.envelope)
	ratio := math.Max(1, c.Ratio)
	var targetDB float64
	if envDB > c.ThresholdDB {
		targetDB = c.ThresholdDB + (envDB-c.ThresholdDB)/ratio
	} else {
		targetDB = envDB
	}
	reductionDB := targetDB - envDB
	targetGain := dbToLin(reductionDB + c.MakeupDB)

	// Gain itself is smoothed with the same attack/release pair so the
	// reduction ramps rather than stepping.
	if targetGain < c.gain {
		c.gain = attackCoeff*c.gain + (1-attackCoeff)*targetGain
	} else {
		c.gain = releaseCoeff*c.gain + (1-releaseCoeff)*targetGain
	}
	return x * float32(c.gain)
}

// Limiter is a Compressor pinned to a high ratio and fast attack, exposed as
// its own node per spec.md's node catalogue.
type Limiter struct {
	c *Compressor
}

func NewLimiter() *Limiter {
	return &Limiter{c: &Compressor{ThresholdDB: -1, Ratio: 20, AttackMs: 1, ReleaseMs: 50, gain: 1}}
}

func (l *Limiter) Process(x float32, sampleRate float64) float32 {
	return l.c.Process(x, sampleRate)
}

func (l *Limiter) SetCeilingDB(db float64) { l.c.ThresholdDB = db }

func timeCoeff(ms, sampleRate float64) float64 {
	if ms <= 0 {
		return 0
	}
	return math.Exp(-1 / (ms / 1000 * sampleRate))
}

func linToDB(v float64) float64 {
	if v <= 0 {
		return -144
	}
	return 20 * math.Log10(v)
}

func dbToLin(db float64) float64 {
	return math.Pow(10, db/20)
}
