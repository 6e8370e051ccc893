package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowpassAttenuatesHighFrequency(t *testing.T) {
	const sr = 44100.0
	var f Biquad
	f.SetCoeffs(LowpassCoeffs(200, 0.707, sr))

	// A low-frequency tone should pass through close to unity gain...
	lowRMS := tonePassRMS(&f, 50, sr)
	f.Reset()
	f.SetCoeffs(LowpassCoeffs(200, 0.707, sr))
	// ...while a high-frequency tone well above cutoff should be attenuated.
	highRMS := tonePassRMS(&f, 8000, sr)

	assert.Greater(t, lowRMS, highRMS)
}

func tonePassRMS(f *Biquad, freq, sampleRate float64) float64 {
	n := 4096
	var sumSq float64
	for i := 0; i < n; i++ {
		x := math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
		y := f.Process(x)
		if i > n/2 { // skip filter settling transient
			sumSq += y * y
		}
	}
	return math.Sqrt(sumSq / float64(n/2))
}

func TestDelayLineReadsBackWrittenSample(t *testing.T) {
	d := NewDelayLine(8)
	d.Write(0.5)
	for i := 0; i < 3; i++ {
		d.Write(0)
	}
	assert.InDelta(t, 0.5, d.Read(4), 1e-6)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-5, 0, 1))
	assert.Equal(t, 1.0, Clamp(5, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}

func TestCompressorReducesGainAboveThreshold(t *testing.T) {
	c := NewCompressor()
	c.ThresholdDB = -20
	c.Ratio = 4
	var lastOut float32
	for i := 0; i < 2000; i++ {
		lastOut = c.Process(1.0, 44100)
	}
	assert.Less(t, float64(lastOut), 1.0)
}

func TestBitCrushQuantizes(t *testing.T) {
	b := &BitCrush{Bits: 2}
	out := b.Process(0.33, 44100)
	// 2 bits -> a quantization step of 1/2^2, so the result must land on a
	// multiple of 1/4.
	assert.InDelta(t, math.Round(float64(out)*4)/4, out, 1e-6)
}

func TestKarplusStrongDecays(t *testing.T) {
	k := NewKarplusStrong(44100, 220)
	k.Pluck([]float32{1, -1, 1, -1, 1, -1})

	var earlyEnergy, lateEnergy float64
	for i := 0; i < 40000; i++ {
		out := float64(k.Process())
		switch {
		case i < 1000:
			earlyEnergy += out * out
		case i >= 39000:
			lateEnergy += out * out
		}
	}
	assert.Greater(t, earlyEnergy, lateEnergy, "a plucked string should lose energy over time")
}
