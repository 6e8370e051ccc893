// Package dsp holds the per-sample signal-processing algorithms that the
// graph's effect nodes delegate to: biquad filters, delay lines, reverb,
// modulation effects, dynamics, and the analysis helpers. Every type here is
// a small state machine advanced one sample at a time by Process, so a graph
// node just owns one and calls Process on each evaluation.
package dsp

import "math"

// flushDenormal guards against denormal-number slowdowns (and the
// occasional platform where they're flushed to a biased nonzero value) by
// snapping anything below audible level to exact zero.
func flushDenormal(v float64) float64 {
	if math.Abs(v) < 1e-20 {
		return 0
	}
	return v
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BiquadCoeffs holds a biquad's five coefficients (b0/a0
// already normalized so a0 == 1).
type BiquadCoeffs struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Biquad is a single second-order IIR section in Direct Form II Transposed,
// the numerically well-behaved form used throughout this package.
type Biquad struct {
	C      BiquadCoeffs
	z1, z2 float64
}

func (f *Biquad) Reset() { f.z1, f.z2 = 0, 0 }

func (f *Biquad) Process(x float64) float64 {
	y := f.C.B0*x + f.z1
	f.z1 = f.C.B1*x - f.C.A1*y + f.z2
	f.z2 = f.C.B2*x - f.C.A2*y
	return flushDenormal(y)
}

// SetCoeffs swaps in new coefficients without resetting filter state, so a
// live parameter change doesn't click as violently as a full reset would.
func (f *Biquad) SetCoeffs(c BiquadCoeffs) { f.C = c }

// Biquad design equations per Robert Bristow-Johnson's Audio EQ Cookbook.
// sampleRate and freq in Hz, q the resonance/bandwidth control.

func LowpassCoeffs(freq, q, sampleRate float64) BiquadCoeffs {
	freq = Clamp(freq, 20, sampleRate*0.49)
	q = Clamp(q, 0.1, 20)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw0, sinw0 := math.Cos(w0), math.Sin(w0)
	alpha := sinw0 / (2 * q)
	b0 := (1 - cosw0) / 2
	b1 := 1 - cosw0
	b2 := (1 - cosw0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func HighpassCoeffs(freq, q, sampleRate float64) BiquadCoeffs {
	freq = Clamp(freq, 20, sampleRate*0.49)
	q = Clamp(q, 0.1, 20)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw0, sinw0 := math.Cos(w0), math.Sin(w0)
	alpha := sinw0 / (2 * q)
	b0 := (1 + cosw0) / 2
	b1 := -(1 + cosw0)
	b2 := (1 + cosw0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func BandpassCoeffs(freq, q, sampleRate float64) BiquadCoeffs {
	freq = Clamp(freq, 20, sampleRate*0.49)
	q = Clamp(q, 0.1, 20)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw0, sinw0 := math.Cos(w0), math.Sin(w0)
	alpha := sinw0 / (2 * q)
	b0 := alpha
	b1 := 0.0
	b2 := -alpha
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func NotchCoeffs(freq, q, sampleRate float64) BiquadCoeffs {
	freq = Clamp(freq, 20, sampleRate*0.49)
	q = Clamp(q, 0.1, 20)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw0, sinw0 := math.Cos(w0), math.Sin(w0)
	alpha := sinw0 / (2 * q)
	b0 := 1.0
	b1 := -2 * cosw0
	b2 := 1.0
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

func AllpassCoeffs(freq, q, sampleRate float64) BiquadCoeffs {
	freq = Clamp(freq, 20, sampleRate*0.49)
	q = Clamp(q, 0.1, 20)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw0, sinw0 := math.Cos(w0), math.Sin(w0)
	alpha := sinw0 / (2 * q)
	b0 := 1 - alpha
	b1 := -2 * cosw0
	b2 := 1 + alpha
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha
	return normalize(b0, b1, b2, a0, a1, a2)
}

// PeakingEQCoeffs boosts/cuts gainDB around freq with bandwidth set by q,
// used by ParametricEQ.
func PeakingEQCoeffs(freq, q, gainDB, sampleRate float64) BiquadCoeffs {
	freq = Clamp(freq, 20, sampleRate*0.49)
	q = Clamp(q, 0.1, 20)
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freq / sampleRate
	cosw0, sinw0 := math.Cos(w0), math.Sin(w0)
	alpha := sinw0 / (2 * q)
	b0 := 1 + alpha*a
	b1 := -2 * cosw0
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosw0
	a2 := 1 - alpha/a
	return normalize(b0, b1, b2, a0, a1, a2)
}

func normalize(b0, b1, b2, a0, a1, a2 float64) BiquadCoeffs {
	return BiquadCoeffs{B0: b0 / a0, B1: b1 / a0, B2: b2 / a0, A1: a1 / a0, A2: a2 / a0}
}
