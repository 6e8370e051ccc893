package dsp

import "math"

// grain is one overlapping voice inside a Granular engine's grain pool.
type grain struct {
	active   bool
	pos      float64
	speed    float64
	len      float64
	age      float64
	gain     float64
}

// Granular is a simple overlapping-grain synthesizer over a fixed source
// buffer: it spawns grains at a configurable density, each reading a
// Hann-windowed slice of the source starting near Position, and mixes all
// currently sounding grains. This is the time-domain granular technique
// (not phase-vocoder granulation), matching what a live-coding engine needs
// for texture/stutter effects.
type Granular struct {
	Source   []float32
	Position float64 // [0,1] fraction into Source where grains spawn
	GrainMs  float64
	DensityHz float64
	SpreadMs  float64
	Speed     float64

	grains   []grain
	spawnAcc float64
	rng      uint64
}

func NewGranular(source []float32) *Granular {
	return &Granular{
		Source: source, GrainMs: 80, DensityHz: 20, SpreadMs: 10, Speed: 1,
		grains: make([]grain, 32),
		rng:    0x9E3779B97F4A7C15,
	}
}

func (g *Granular) next() float64 {
	g.rng ^= g.rng << 13
	g.rng ^= g.rng >> 7
	g.rng ^= g.rng << 17
	return float64(g.rng%1000000) / 1000000
}

func (g *Granular) Process(sampleRate float64) float32 {
	if len(g.Source) == 0 {
		return 0
	}
	density := math.Max(0.1, g.DensityHz)
	g.spawnAcc += density / sampleRate
	if g.spawnAcc >= 1 {
		g.spawnAcc -= 1
		g.spawnGrain(sampleRate)
	}

	var sum float32
	for i := range g.grains {
		gr := &g.grains[i]
		if !gr.active {
			continue
		}
		t := gr.age / gr.len
		if t >= 1 {
			gr.active = false
			continue
		}
		window := float32(0.5 * (1 - math.Cos(2*math.Pi*t)))
		idx := int(gr.pos)
		if idx < 0 {
			idx = 0
		}
		if idx >= len(g.Source) {
			gr.active = false
			continue
		}
		sum += g.Source[idx] * window * float32(gr.gain)
		gr.pos += gr.speed
		gr.age++
	}
	return sum
}

func (g *Granular) spawnGrain(sampleRate float64) {
	for i := range g.grains {
		if g.grains[i].active {
			continue
		}
		spreadSamples := (g.next()*2 - 1) * g.SpreadMs / 1000 * sampleRate
		start := g.Position*float64(len(g.Source)) + spreadSamples
		if start < 0 {
			start = 0
		}
		if start >= float64(len(g.Source)) {
			start = float64(len(g.Source) - 1)
		}
		g.grains[i] = grain{
			active: true,
			pos:    start,
			speed:  g.Speed,
			len:    math.Max(1, g.GrainMs/1000*sampleRate),
			gain:   0.7,
		}
		return
	}
}

// SpectralFreeze holds a short capture of its input and loops it seamlessly
// (crossfading across the loop point) whenever Freeze is held, letting a
// sustained texture replace the live signal without the cost of an FFT
// resynthesis engine; musically this gives the same "frozen sound" result
// a spectral freeze is used for in a live-coding context.
type SpectralFreeze struct {
	Freeze     bool
	buf        []float32
	writePos   int
	readPos    float64
	captured   bool
	fadeSamples float64
}

func NewSpectralFreeze(captureLen int) *SpectralFreeze {
	if captureLen < 64 {
		captureLen = 64
	}
	return &SpectralFreeze{buf: make([]float32, captureLen), fadeSamples: 256}
}

func (s *SpectralFreeze) Process(x float32) float32 {
	if !s.Freeze {
		s.buf[s.writePos] = x
		s.writePos = (s.writePos + 1) % len(s.buf)
		s.captured = false
		s.readPos = 0
		return x
	}
	if !s.captured {
		s.captured = true
		s.readPos = 0
	}
	n := len(s.buf)
	i0 := int(s.readPos) % n
	i1 := (i0 + 1) % n
	frac := s.readPos - math.Floor(s.readPos)
	out := s.buf[i0] + float32(frac)*(s.buf[i1]-s.buf[i0])

	distToEnd := float64(n) - s.readPos
	if distToEnd < s.fadeSamples {
		fadeT := float32(distToEnd / s.fadeSamples)
		out = out*fadeT + s.buf[0]*(1-fadeT)
	}

	s.readPos++
	if s.readPos >= float64(n) {
		s.readPos -= float64(n)
	}
	return out
}
