package dsp

import "math"

// KarplusStrong is a plucked-string physical model: a noise burst excites a
// delay line whose length sets the pitch, with a one-pole lowpass in the
// feedback path (the "damping" of the string) per Karplus & Strong's
// original algorithm.
type KarplusStrong struct {
	line    *DelayLine
	lastOut float32
	Damping float64 // [0,1], higher decays faster
}

func NewKarplusStrong(sampleRate, freq float64) *KarplusStrong {
	length := int(sampleRate/math.Max(20, freq)) + 2
	return &KarplusStrong{line: NewDelayLine(length), Damping: 0.5}
}

// Pluck re-excites the string with a burst of noise-like energy; call once
// per onset.
func (k *KarplusStrong) Pluck(excitation []float32) {
	for _, s := range excitation {
		k.line.Write(s)
	}
}

func (k *KarplusStrong) Process() float32 {
	delayed := k.line.Read(float64(k.line.Len() - 1))
	damp := float32(Clamp(k.Damping, 0, 1))
	out := (delayed + k.lastOut) * 0.5 * (1 - damp*0.02)
	k.lastOut = out
	k.line.Write(out)
	return flushDenormalF(out)
}

// Waveguide is a single-resonator digital waveguide: a delay line (round
// trip time sets the resonant frequency) closed through a lowpass filter
// and a reflection coefficient, used for simple resonant-body/tube
// modeling distinct from the plucked-string excitation of KarplusStrong.
type Waveguide struct {
	line       *DelayLine
	lowpass    Biquad
	Reflection float64 // [0,0.999]
}

func NewWaveguide(sampleRate, freq float64) *Waveguide {
	length := int(sampleRate/math.Max(20, freq)) + 2
	w := &Waveguide{line: NewDelayLine(length), Reflection: 0.98}
	w.lowpass.SetCoeffs(LowpassCoeffs(freq*4, 0.707, sampleRate))
	return w
}

func (w *Waveguide) Process(x float32) float32 {
	delayed := w.line.Read(float64(w.line.Len() - 1))
	filtered := w.lowpass.Process(float64(delayed))
	refl := float32(Clamp(w.Reflection, 0, 0.999))
	fed := x + float32(filtered)*refl
	w.line.Write(fed)
	return delayed
}

// Formant is a bank of parallel bandpass biquads tuned to formant
// frequencies, used to impose a vowel-like resonant structure on a source
// (typically a buzz/noise oscillator).
type Formant struct {
	bands []Biquad
	Gains []float64
}

// Vowel center frequencies (Hz), a commonly cited 3-formant approximation.
var VowelFormants = map[string][3]float64{
	"a": {800, 1150, 2900},
	"e": {400, 1600, 2700},
	"i": {250, 1700, 2900},
	"o": {400, 750, 2400},
	"u": {325, 700, 2530},
}

func NewFormant(sampleRate float64, freqs []float64) *Formant {
	f := &Formant{bands: make([]Biquad, len(freqs)), Gains: make([]float64, len(freqs))}
	for i, fr := range freqs {
		f.bands[i].SetCoeffs(BandpassCoeffs(fr, 10, sampleRate))
		f.Gains[i] = 1
	}
	return f
}

func (f *Formant) Process(x float32) float32 {
	var sum float32
	for i := range f.bands {
		sum += float32(f.bands[i].Process(float64(x)) * f.Gains[i])
	}
	if len(f.bands) == 0 {
		return x
	}
	return sum / float32(len(f.bands))
}
