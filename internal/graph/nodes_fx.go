package graph

import "github.com/phonon-lang/phonon/internal/dsp"

// Effect nodes are thin Eval adapters over a stateful internal/dsp type,
// evaluating their Signal parameters once per sample and delegating to the
// wrapped algorithm's Process method, the same shape as the filters in
// nodes_core.go.

type DelayNode struct {
	Input              Signal
	TimeSec, Feedback, Mix Signal
	delay              *dsp.Delay
}

func NewDelayNode(input, timeSec, feedback, mix Signal, maxSeconds, sampleRate float64) *DelayNode {
	return &DelayNode{Input: input, TimeSec: timeSec, Feedback: feedback, Mix: mix, delay: dsp.NewDelay(maxSeconds, sampleRate)}
}

func (n *DelayNode) Eval(g *Graph) float64 {
	n.delay.TimeSec = g.EvalSignal(n.TimeSec, g.CyclePosition)
	n.delay.Feedback = g.EvalSignal(n.Feedback, g.CyclePosition)
	n.delay.Mix = g.EvalSignal(n.Mix, g.CyclePosition)
	return float64(n.delay.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate))
}

func (n *DelayNode) IsFeedback() bool { return true }

// PingPongDelayNode produces a mono downmix of its two taps; a compiler
// wanting true stereo ping-pong pans two references to this node oppositely.
type PingPongDelayNode struct {
	Input          Signal
	TimeSec, Feedback Signal
	delay          *dsp.PingPongDelay
}

func NewPingPongDelayNode(input, timeSec, feedback Signal, maxSeconds, sampleRate float64) *PingPongDelayNode {
	return &PingPongDelayNode{Input: input, TimeSec: timeSec, Feedback: feedback, delay: dsp.NewPingPongDelay(maxSeconds, sampleRate)}
}

func (n *PingPongDelayNode) Eval(g *Graph) float64 {
	n.delay.TimeSec = g.EvalSignal(n.TimeSec, g.CyclePosition)
	n.delay.Feedback = g.EvalSignal(n.Feedback, g.CyclePosition)
	l, r := n.delay.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate)
	return float64(l+r) / 2
}

func (n *PingPongDelayNode) IsFeedback() bool { return true }

type MultiTapDelayNode struct {
	Input Signal
	delay *dsp.MultiTapDelay
}

func NewMultiTapDelayNode(input Signal, taps []dsp.Tap, maxSeconds, sampleRate float64) *MultiTapDelayNode {
	return &MultiTapDelayNode{Input: input, delay: dsp.NewMultiTapDelay(maxSeconds, sampleRate, taps)}
}

func (n *MultiTapDelayNode) Eval(g *Graph) float64 {
	return float64(n.delay.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate))
}

type TapeDelayNode struct {
	Input                  Signal
	TimeSec, Feedback, Mix Signal
	delay                  *dsp.TapeDelay
}

func NewTapeDelayNode(input, timeSec, feedback, mix Signal, maxSeconds, sampleRate float64) *TapeDelayNode {
	return &TapeDelayNode{Input: input, TimeSec: timeSec, Feedback: feedback, Mix: mix, delay: dsp.NewTapeDelay(maxSeconds, sampleRate)}
}

func (n *TapeDelayNode) Eval(g *Graph) float64 {
	n.delay.TimeSec = g.EvalSignal(n.TimeSec, g.CyclePosition)
	n.delay.Feedback = g.EvalSignal(n.Feedback, g.CyclePosition)
	n.delay.Mix = g.EvalSignal(n.Mix, g.CyclePosition)
	return float64(n.delay.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate))
}

func (n *TapeDelayNode) IsFeedback() bool { return true }

type ReverbNode struct {
	Input                     Signal
	RoomSize, Damping, Mix    Signal
	reverb                    *dsp.Freeverb
}

func NewReverbNode(input, roomSize, damping, mix Signal, sampleRate float64) *ReverbNode {
	return &ReverbNode{Input: input, RoomSize: roomSize, Damping: damping, Mix: mix, reverb: dsp.NewFreeverb(sampleRate)}
}

func (n *ReverbNode) Eval(g *Graph) float64 {
	n.reverb.RoomSize = g.EvalSignal(n.RoomSize, g.CyclePosition)
	n.reverb.Damping = g.EvalSignal(n.Damping, g.CyclePosition)
	n.reverb.Mix = g.EvalSignal(n.Mix, g.CyclePosition)
	return float64(n.reverb.Process(float32(g.EvalSignal(n.Input, g.CyclePosition))))
}

func (n *ReverbNode) IsFeedback() bool { return true }

type DattorroReverbNode struct {
	Input                Signal
	Decay, Damping, Mix  Signal
	reverb               *dsp.DattorroReverb
}

func NewDattorroReverbNode(input, decay, damping, mix Signal, sampleRate float64) *DattorroReverbNode {
	return &DattorroReverbNode{Input: input, Decay: decay, Damping: damping, Mix: mix, reverb: dsp.NewDattorroReverb(sampleRate)}
}

func (n *DattorroReverbNode) Eval(g *Graph) float64 {
	n.reverb.Decay = g.EvalSignal(n.Decay, g.CyclePosition)
	n.reverb.Damping = g.EvalSignal(n.Damping, g.CyclePosition)
	n.reverb.Mix = g.EvalSignal(n.Mix, g.CyclePosition)
	return float64(n.reverb.Process(float32(g.EvalSignal(n.Input, g.CyclePosition))))
}

func (n *DattorroReverbNode) IsFeedback() bool { return true }

type ChorusNode struct {
	Input                   Signal
	Rate, Depth, Mix        Signal
	chorus                  *dsp.Chorus
}

func NewChorusNode(input, rate, depth, mix Signal, sampleRate float64) *ChorusNode {
	return &ChorusNode{Input: input, Rate: rate, Depth: depth, Mix: mix, chorus: dsp.NewChorus(sampleRate)}
}

func (n *ChorusNode) Eval(g *Graph) float64 {
	n.chorus.RateHz = g.EvalSignal(n.Rate, g.CyclePosition)
	n.chorus.DepthMs = g.EvalSignal(n.Depth, g.CyclePosition)
	n.chorus.Mix = g.EvalSignal(n.Mix, g.CyclePosition)
	return float64(n.chorus.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate))
}

type FlangerNode struct {
	Input                        Signal
	Rate, Depth, Feedback, Mix   Signal
	flanger                      *dsp.Flanger
}

func NewFlangerNode(input, rate, depth, feedback, mix Signal, sampleRate float64) *FlangerNode {
	return &FlangerNode{Input: input, Rate: rate, Depth: depth, Feedback: feedback, Mix: mix, flanger: dsp.NewFlanger(sampleRate)}
}

func (n *FlangerNode) Eval(g *Graph) float64 {
	n.flanger.RateHz = g.EvalSignal(n.Rate, g.CyclePosition)
	n.flanger.DepthMs = g.EvalSignal(n.Depth, g.CyclePosition)
	n.flanger.Feedback = g.EvalSignal(n.Feedback, g.CyclePosition)
	n.flanger.Mix = g.EvalSignal(n.Mix, g.CyclePosition)
	return float64(n.flanger.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate))
}

func (n *FlangerNode) IsFeedback() bool { return true }

type PhaserNode struct {
	Input                       Signal
	Rate, MinHz, MaxHz, Mix     Signal
	phaser                      *dsp.Phaser
}

func NewPhaserNode(input, rate, minHz, maxHz, mix Signal) *PhaserNode {
	return &PhaserNode{Input: input, Rate: rate, MinHz: minHz, MaxHz: maxHz, Mix: mix, phaser: dsp.NewPhaser()}
}

func (n *PhaserNode) Eval(g *Graph) float64 {
	n.phaser.RateHz = g.EvalSignal(n.Rate, g.CyclePosition)
	n.phaser.MinHz = g.EvalSignal(n.MinHz, g.CyclePosition)
	n.phaser.MaxHz = g.EvalSignal(n.MaxHz, g.CyclePosition)
	n.phaser.Mix = g.EvalSignal(n.Mix, g.CyclePosition)
	return float64(n.phaser.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate))
}

type TremoloNode struct {
	Input        Signal
	Rate, Depth  Signal
	tremolo      *dsp.Tremolo
}

func NewTremoloNode(input, rate, depth Signal) *TremoloNode {
	return &TremoloNode{Input: input, Rate: rate, Depth: depth, tremolo: dsp.NewTremolo()}
}

func (n *TremoloNode) Eval(g *Graph) float64 {
	n.tremolo.RateHz = g.EvalSignal(n.Rate, g.CyclePosition)
	n.tremolo.Depth = g.EvalSignal(n.Depth, g.CyclePosition)
	return float64(n.tremolo.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate))
}

type VibratoNode struct {
	Input        Signal
	Rate, Depth  Signal
	vibrato      *dsp.Vibrato
}

func NewVibratoNode(input, rate, depth Signal, sampleRate float64) *VibratoNode {
	return &VibratoNode{Input: input, Rate: rate, Depth: depth, vibrato: dsp.NewVibrato(sampleRate)}
}

func (n *VibratoNode) Eval(g *Graph) float64 {
	n.vibrato.RateHz = g.EvalSignal(n.Rate, g.CyclePosition)
	n.vibrato.DepthMs = g.EvalSignal(n.Depth, g.CyclePosition)
	return float64(n.vibrato.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate))
}

type BitCrushNode struct {
	Input            Signal
	Bits, SampleRate Signal
	crush            dsp.BitCrush
}

func (n *BitCrushNode) Eval(g *Graph) float64 {
	n.crush.Bits = g.EvalSignal(n.Bits, g.CyclePosition)
	n.crush.SampleRate = g.EvalSignal(n.SampleRate, g.CyclePosition)
	return float64(n.crush.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate))
}

type DistortionNode struct {
	Input       Signal
	Drive, Mix  Signal
	distortion  dsp.Distortion
}

func (n *DistortionNode) Eval(g *Graph) float64 {
	n.distortion.Drive = g.EvalSignal(n.Drive, g.CyclePosition)
	n.distortion.Mix = g.EvalSignal(n.Mix, g.CyclePosition)
	return float64(n.distortion.Process(float32(g.EvalSignal(n.Input, g.CyclePosition))))
}

type RingModNode struct {
	Input     Signal
	CarrierHz Signal
	ring      dsp.RingMod
}

func (n *RingModNode) Eval(g *Graph) float64 {
	n.ring.CarrierHz = g.EvalSignal(n.CarrierHz, g.CyclePosition)
	return float64(n.ring.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate))
}

type CompressorNode struct {
	Input                                     Signal
	ThresholdDB, Ratio, AttackMs, ReleaseMs, MakeupDB Signal
	compressor                                *dsp.Compressor
}

func NewCompressorNode(input, threshold, ratio, attack, release, makeup Signal) *CompressorNode {
	return &CompressorNode{Input: input, ThresholdDB: threshold, Ratio: ratio, AttackMs: attack, ReleaseMs: release, MakeupDB: makeup, compressor: dsp.NewCompressor()}
}

func (n *CompressorNode) Eval(g *Graph) float64 {
	n.compressor.ThresholdDB = g.EvalSignal(n.ThresholdDB, g.CyclePosition)
	n.compressor.Ratio = g.EvalSignal(n.Ratio, g.CyclePosition)
	n.compressor.AttackMs = g.EvalSignal(n.AttackMs, g.CyclePosition)
	n.compressor.ReleaseMs = g.EvalSignal(n.ReleaseMs, g.CyclePosition)
	n.compressor.MakeupDB = g.EvalSignal(n.MakeupDB, g.CyclePosition)
	return float64(n.compressor.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate))
}

type LimiterNode struct {
	Input      Signal
	CeilingDB  Signal
	limiter    *dsp.Limiter
}

func NewLimiterNode(input, ceilingDB Signal) *LimiterNode {
	return &LimiterNode{Input: input, CeilingDB: ceilingDB, limiter: dsp.NewLimiter()}
}

func (n *LimiterNode) Eval(g *Graph) float64 {
	n.limiter.SetCeilingDB(g.EvalSignal(n.CeilingDB, g.CyclePosition))
	return float64(n.limiter.Process(float32(g.EvalSignal(n.Input, g.CyclePosition)), g.SampleRate))
}

// ConvolutionNode wraps a fixed impulse response loaded once at compile
// time; live-coded kernel swaps are out of scope (see DESIGN.md).
type ConvolutionNode struct {
	Input Signal
	conv  *dsp.Convolution
}

func NewConvolutionNode(input Signal, kernel []float32) *ConvolutionNode {
	return &ConvolutionNode{Input: input, conv: dsp.NewConvolution(kernel)}
}

func (n *ConvolutionNode) Eval(g *Graph) float64 {
	return float64(n.conv.Process(float32(g.EvalSignal(n.Input, g.CyclePosition))))
}

// KarplusStrongNode re-plucks its internal string whenever Trigger crosses
// the gate threshold.
type KarplusStrongNode struct {
	Trigger, Freq, Damping Signal
	sampleRate             float64
	lastFreq               float64
	string                 *dsp.KarplusStrong
	lastTrig               bool
}

func NewKarplusStrongNode(trigger, freq, damping Signal, sampleRate float64) *KarplusStrongNode {
	return &KarplusStrongNode{Trigger: trigger, Freq: freq, Damping: damping, sampleRate: sampleRate, string: dsp.NewKarplusStrong(sampleRate, 220)}
}

func (n *KarplusStrongNode) Eval(g *Graph) float64 {
	freq := g.EvalSignal(n.Freq, g.CyclePosition)
	trig := gateHeld(g.EvalSignal(n.Trigger, g.CyclePosition))
	n.string.Damping = g.EvalSignal(n.Damping, g.CyclePosition)
	if trig && !n.lastTrig {
		if freq != n.lastFreq {
			n.string = dsp.NewKarplusStrong(n.sampleRate, freq)
			n.lastFreq = freq
		}
		excitation := make([]float32, int(n.sampleRate/freq))
		for i := range excitation {
			excitation[i] = float32((float64(i%7) - 3) / 3)
		}
		n.string.Pluck(excitation)
	}
	n.lastTrig = trig
	return float64(n.string.Process())
}

func (n *KarplusStrongNode) IsFeedback() bool { return true }

type WaveguideNode struct {
	Input      Signal
	Freq       Signal
	Reflection Signal
	sampleRate float64
	lastFreq   float64
	wg         *dsp.Waveguide
}

func NewWaveguideNode(input, freq, reflection Signal, sampleRate float64) *WaveguideNode {
	return &WaveguideNode{Input: input, Freq: freq, Reflection: reflection, sampleRate: sampleRate, wg: dsp.NewWaveguide(sampleRate, 220)}
}

func (n *WaveguideNode) Eval(g *Graph) float64 {
	freq := g.EvalSignal(n.Freq, g.CyclePosition)
	if freq != n.lastFreq {
		n.wg = dsp.NewWaveguide(n.sampleRate, freq)
		n.lastFreq = freq
	}
	n.wg.Reflection = g.EvalSignal(n.Reflection, g.CyclePosition)
	return float64(n.wg.Process(float32(g.EvalSignal(n.Input, g.CyclePosition))))
}

func (n *WaveguideNode) IsFeedback() bool { return true }

// FormantNode imposes a vowel's formant structure (from dsp.VowelFormants)
// on Input. The filter bank is built once from Vowel at construction;
// changing Vowel afterwards has no effect.
type FormantNode struct {
	Input      Signal
	Vowel      string
	sampleRate float64
	formant    *dsp.Formant
}

func NewFormantNode(input Signal, vowel string, sampleRate float64) *FormantNode {
	freqs := dsp.VowelFormants[vowel]
	return &FormantNode{Input: input, Vowel: vowel, sampleRate: sampleRate, formant: dsp.NewFormant(sampleRate, freqs[:])}
}

func (n *FormantNode) Eval(g *Graph) float64 {
	return float64(n.formant.Process(float32(g.EvalSignal(n.Input, g.CyclePosition))))
}

// GranularNode spawns overlapping grains over a fixed-size source ring into
// which the live input is continuously written. Position picks a point as a
// fraction of the ring counted from its index 0, not from the write position.
type GranularNode struct {
	Input                         Signal
	Position, GrainMs, Density, Spread, Speed Signal
	gran                          *dsp.Granular
	writePos                      int
}

func NewGranularNode(input Signal, captureLen int) *GranularNode {
	return &GranularNode{Input: input, gran: dsp.NewGranular(make([]float32, captureLen))}
}

func (n *GranularNode) Eval(g *Graph) float64 {
	n.gran.Source[n.writePos] = float32(g.EvalSignal(n.Input, g.CyclePosition))
	n.writePos = (n.writePos + 1) % len(n.gran.Source)

	n.gran.Position = g.EvalSignal(n.Position, g.CyclePosition)
	n.gran.GrainMs = g.EvalSignal(n.GrainMs, g.CyclePosition)
	n.gran.DensityHz = g.EvalSignal(n.Density, g.CyclePosition)
	n.gran.SpreadMs = g.EvalSignal(n.Spread, g.CyclePosition)
	n.gran.Speed = g.EvalSignal(n.Speed, g.CyclePosition)
	return float64(n.gran.Process(g.SampleRate))
}

// SpectralFreezeNode freezes its input while Freeze is gated on.
type SpectralFreezeNode struct {
	Input  Signal
	Freeze Signal
	freeze *dsp.SpectralFreeze
}

func NewSpectralFreezeNode(input, freezeGate Signal, captureLen int) *SpectralFreezeNode {
	return &SpectralFreezeNode{Input: input, Freeze: freezeGate, freeze: dsp.NewSpectralFreeze(captureLen)}
}

func (n *SpectralFreezeNode) Eval(g *Graph) float64 {
	n.freeze.Freeze = gateHeld(g.EvalSignal(n.Freeze, g.CyclePosition))
	return float64(n.freeze.Process(float32(g.EvalSignal(n.Input, g.CyclePosition))))
}
