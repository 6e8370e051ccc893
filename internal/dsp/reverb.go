package dsp

// Freeverb is Jezar's classic 8-comb/4-allpass Schroeder-Moorer reverb
// topology: each comb filter runs in parallel and feeds a damped lowpass
// inside its feedback path, then the sum runs through a short series of
// allpass diffusers.
type Freeverb struct {
	combs    [8]combFilter
	allpass  [4]allpassFilter
	RoomSize float64 // [0,1]
	Damping  float64 // [0,1]
	Mix      float64 // dry/wet [0,1]
}

// Tuning lengths in milliseconds (the comb values are the original
// Freeverb's 44.1kHz tunings; the allpass values are not Freeverb's),
// converted to samples at the actual sample rate at construction time.
var freeverbCombTuningMs = [8]float64{25.31, 26.94, 28.96, 30.75, 32.24, 33.81, 35.31, 36.67}
var freeverbAllpassTuningMs = [4]float64{5.0, 1.7, 1.31, 0.97}

func NewFreeverb(sampleRate float64) *Freeverb {
	r := &Freeverb{RoomSize: 0.5, Damping: 0.5, Mix: 0.3}
	for i, ms := range freeverbCombTuningMs {
		r.combs[i] = newCombFilter(int(ms / 1000 * sampleRate))
	}
	for i, ms := range freeverbAllpassTuningMs {
		r.allpass[i] = newAllpassFilter(int(ms / 1000 * sampleRate))
	}
	return r
}

func (r *Freeverb) Process(x float32) float32 {
	feedback := float32(0.28 + 0.7*Clamp(r.RoomSize, 0, 1))
	damp := float32(Clamp(r.Damping, 0, 1))

	var sum float32
	for i := range r.combs {
		sum += r.combs[i].process(x, feedback, damp)
	}
	out := sum / float32(len(r.combs))
	for i := range r.allpass {
		out = r.allpass[i].process(out)
	}
	mix := float32(Clamp(r.Mix, 0, 1))
	return x*(1-mix) + out*mix
}

type combFilter struct {
	line    *DelayLine
	damping float32
}

func newCombFilter(length int) combFilter {
	return combFilter{line: NewDelayLine(length)}
}

func (c *combFilter) process(x float32, feedback, damp float32) float32 {
	out := c.line.Read(float64(c.line.Len() - 1))
	c.damping = c.damping*damp + out*(1-damp)
	c.line.Write(x + c.damping*feedback)
	return flushDenormalF(out)
}

type allpassFilter struct {
	line *DelayLine
}

func newAllpassFilter(length int) allpassFilter {
	return allpassFilter{line: NewDelayLine(length)}
}

func (a *allpassFilter) process(x float32) float32 {
	const g = 0.5
	delayed := a.line.Read(float64(a.line.Len() - 1))
	y := -g*x + delayed
	a.line.Write(x + g*y)
	return flushDenormalF(y)
}

func flushDenormalF(v float32) float32 {
	if v < 1e-12 && v > -1e-12 {
		return 0
	}
	return v
}

// DattorroReverb is a reduced version of Dattorro's figure-eight tank
// topology: an input diffuser of four allpass stages feeding two
// cross-coupled delay/damping/allpass "tank" loops whose outputs are
// summed for the wet signal. The full design uses modulated allpasses for
// extra density; this keeps the structure but not the modulation, which is
// a reasonable simplification for a live-coding effect node rather than a
// mastering-grade reverb.
type DattorroReverb struct {
	inputDiffusers [4]allpassFilter
	tankA          tankLoop
	tankB          tankLoop
	Decay          float64 // [0,1]
	Damping        float64 // [0,1]
	Mix            float64
}

type tankLoop struct {
	preAllpass  allpassFilter
	delay       *DelayLine
	damp        float32
	postAllpass allpassFilter
}

func newTankLoop(apLen, delayLen, postLen int) tankLoop {
	return tankLoop{
		preAllpass:  newAllpassFilter(apLen),
		delay:       NewDelayLine(delayLen),
		postAllpass: newAllpassFilter(postLen),
	}
}

func NewDattorroReverb(sampleRate float64) *DattorroReverb {
	scale := sampleRate / 29761.0 // Dattorro's reference rate
	ms := func(v float64) int { return int(v * scale) }
	r := &DattorroReverb{Decay: 0.5, Damping: 0.5, Mix: 0.3}
	r.inputDiffusers = [4]allpassFilter{
		newAllpassFilter(ms(142)), newAllpassFilter(ms(107)),
		newAllpassFilter(ms(379)), newAllpassFilter(ms(277)),
	}
	r.tankA = newTankLoop(ms(672), ms(4453), ms(1800))
	r.tankB = newTankLoop(ms(908), ms(4217), ms(2656))
	return r
}

func (r *DattorroReverb) Process(x float32) float32 {
	in := x
	for i := range r.inputDiffusers {
		in = r.inputDiffusers[i].process(in)
	}
	decay := float32(Clamp(r.Decay, 0, 1))
	damp := float32(Clamp(r.Damping, 0, 1))

	fromB := r.tankB.delay.Read(float64(r.tankB.delay.Len() - 1))
	a := r.tankA.preAllpass.process(in + fromB*decay)
	r.tankA.delay.Write(a)
	r.tankA.damp = r.tankA.damp*damp + a*(1-damp)
	aOut := r.tankA.postAllpass.process(r.tankA.damp)

	fromA := r.tankA.delay.Read(float64(r.tankA.delay.Len() - 1))
	b := r.tankB.preAllpass.process(in + fromA*decay)
	r.tankB.delay.Write(b)
	r.tankB.damp = r.tankB.damp*damp + b*(1-damp)
	bOut := r.tankB.postAllpass.process(r.tankB.damp)

	wet := (aOut + bOut) * 0.5
	mix := float32(Clamp(r.Mix, 0, 1))
	return x*(1-mix) + wet*mix
}
