// Package voice implements the polyphonic voice pool shared by every
// Sample/SynthPattern node: allocating voices on event onset, advancing
// them one sample at a time, applying a piecewise-linear attack/release
// envelope, and mixing per source node so the graph evaluator can read back
// "this sample's voice-manager contribution" for each pattern-coupled node.
package voice

import (
	"math"
	"sync/atomic"

	"github.com/phonon-lang/phonon/internal/samplebank"
)

// NodeID mirrors internal/graph's NodeID without importing the graph
// package (voice is a dependency of graph, not the other way around).
type NodeID int32

// StereoSample is one sample frame of left/right signal.
type StereoSample struct{ L, R float32 }

type kind int

const (
	kindSample kind = iota
	kindSynth
)

type envPhase int

const (
	envAttack envPhase = iota
	envHold
	envRelease
	envDone
)

// Voice is one active sounding note: either a sample-buffer playback or a
// synthesized tone, both driven by the same attack/hold/release envelope.
type Voice struct {
	active      bool
	kind        kind
	sourceNode  NodeID
	cutGroup    uint32
	hasCutGroup bool
	age         int64

	// Sample playback.
	buffer *samplebank.AudioBuffer
	pos    float64

	// Synth playback.
	freq     float64
	phase    float64
	waveform string

	speed float64
	gain  float64
	pan   float64

	lengthSamples  float64
	releaseSamples float64
	attackSamples  float64
	elapsed        float64

	envPhase envPhase
	envLevel float64
}

// TriggerParams is the common set of arguments for starting a new voice,
// shared by sample and synth triggers (the Sample node's algorithm in
// spec.md §4.2 evaluates exactly these fields at the event's onset time).
type TriggerParams struct {
	Gain        float64
	Pan         float64
	Speed       float64 // sample playback rate multiplier; ignored for synth
	Freq        float64 // synth oscillator frequency; ignored for sample
	Waveform    string  // synth oscillator shape ("sine","saw","square","tri"); ignored for sample
	AttackSec   float64
	ReleaseSec  float64 // 0 means "derive from length"
	DurationSec float64 // nominal note length (event whole duration in seconds)
	CutGroup    uint32
	HasCutGroup bool
	SourceNode  NodeID
}

// Manager owns a fixed pool of voices, stealing the oldest when exhausted.
type Manager struct {
	voices     []Voice
	sampleRate float64
	underruns  atomic.Int64 // count of trigger calls that had to steal a voice

	outCache map[NodeID]StereoSample

	// DefaultReleaseFn computes the release time (seconds) for a voice whose
	// trigger didn't specify one explicitly, given the voice's nominal
	// duration. Exposed so a host can tune it; DefaultRelease is used
	// otherwise.
	DefaultReleaseFn func(durationSec float64) float64
}

// MinVoices is the spec's floor on polyphony (MAX_VOICES >= 64).
const MinVoices = 64

func NewManager(maxVoices int, sampleRate float64) *Manager {
	if maxVoices < MinVoices {
		maxVoices = MinVoices
	}
	return &Manager{
		voices:           make([]Voice, maxVoices),
		sampleRate:       sampleRate,
		outCache:         make(map[NodeID]StereoSample),
		DefaultReleaseFn: DefaultRelease,
	}
}

// DefaultRelease derives a release time from a voice's nominal duration:
// 20% of the duration, clamped to [10ms, 500ms] for notes under 2 seconds,
// or capped at 10s for longer ones (field recordings, drones).
func DefaultRelease(durationSec float64) float64 {
	r := 0.2 * durationSec
	if durationSec < 2 {
		if r < 0.01 {
			r = 0.01
		}
		if r > 0.5 {
			r = 0.5
		}
		return r
	}
	if r > 10 {
		r = 10
	}
	return r
}

func (m *Manager) SetSampleRate(sr float64) { m.sampleRate = sr }

// StolenVoiceCount reports how many triggers had to steal the oldest voice
// because the pool was full, exposed for diagnostics.
func (m *Manager) StolenVoiceCount() int64 { return m.underruns.Load() }

func clampAttack(sec float64) float64 {
	const minAttack = 0.001
	if sec < minAttack {
		return minAttack
	}
	return sec
}

func (m *Manager) allocate(cutGroup uint32, hasCutGroup bool) *Voice {
	if hasCutGroup {
		m.KillGroup(cutGroup)
	}
	for i := range m.voices {
		if !m.voices[i].active {
			return &m.voices[i]
		}
	}
	// Pool exhausted: steal the oldest voice.
	m.underruns.Add(1)
	oldest := 0
	for i := range m.voices {
		if m.voices[i].age > m.voices[oldest].age {
			oldest = i
		}
	}
	return &m.voices[oldest]
}

// TriggerSample starts a new voice playing buf from the start.
func (m *Manager) TriggerSample(buf *samplebank.AudioBuffer, p TriggerParams) {
	if buf == nil {
		return
	}
	v := m.allocate(p.CutGroup, p.HasCutGroup)
	duration := p.DurationSec
	if duration <= 0 {
		duration = float64(buf.Frames()) / math.Max(1, buf.SampleRate) / math.Max(1e-9, math.Abs(p.Speed))
	}
	m.initVoice(v, kindSample, p, duration)
	v.buffer = buf
	v.pos = 0
	if v.speed < 0 {
		v.pos = float64(buf.Frames() - 1)
	}
}

// TriggerSynth starts a new oscillator-driven voice lasting DurationSec.
func (m *Manager) TriggerSynth(p TriggerParams) {
	v := m.allocate(p.CutGroup, p.HasCutGroup)
	duration := p.DurationSec
	if duration <= 0 {
		duration = 1
	}
	m.initVoice(v, kindSynth, p, duration)
	v.buffer = nil
	v.freq = p.Freq
	v.phase = 0
	v.waveform = p.Waveform
}

func (m *Manager) initVoice(v *Voice, k kind, p TriggerParams, duration float64) {
	v.active = true
	v.kind = k
	v.sourceNode = p.SourceNode
	v.cutGroup = p.CutGroup
	v.hasCutGroup = p.HasCutGroup
	v.age = 0
	v.elapsed = 0
	v.gain = p.Gain
	v.pan = p.Pan
	v.speed = p.Speed
	if v.speed == 0 {
		v.speed = 1
	}
	v.lengthSamples = duration * m.sampleRate
	v.attackSamples = clampAttack(p.AttackSec) * m.sampleRate
	v.envPhase = envAttack
	v.envLevel = 0

	release := p.ReleaseSec
	if release <= 0 {
		fn := m.DefaultReleaseFn
		if fn == nil {
			fn = DefaultRelease
		}
		release = fn(duration)
	}
	v.releaseSamples = release * m.sampleRate
}

// KillGroup immediately silences every active voice in cutGroup (voice
// stealing within a group, per spec.md §3.5).
func (m *Manager) KillGroup(cutGroup uint32) {
	for i := range m.voices {
		v := &m.voices[i]
		if v.active && v.hasCutGroup && v.cutGroup == cutGroup {
			v.active = false
		}
	}
}

// KillAll / Hush / Panic all immediately silence every voice; the graph
// keeps playing, only the voice pool is cleared (spec.md §5 "hush/panic").
func (m *Manager) KillAll() {
	for i := range m.voices {
		m.voices[i].active = false
	}
}

func (m *Manager) Hush()  { m.KillAll() }
func (m *Manager) Panic() { m.KillAll() }

// ActiveCount reports how many voices are currently sounding, for
// diagnostics/telemetry.
func (m *Manager) ActiveCount() int {
	n := 0
	for i := range m.voices {
		if m.voices[i].active {
			n++
		}
	}
	return n
}

// ProcessPerNode advances every active voice by one sample and returns each
// source node's mixed stereo contribution for this sample. The returned map
// is owned by the Manager and reused across calls; callers must not retain
// it past the next call.
func (m *Manager) ProcessPerNode() map[NodeID]StereoSample {
	for k := range m.outCache {
		delete(m.outCache, k)
	}
	for i := range m.voices {
		v := &m.voices[i]
		if !v.active {
			continue
		}
		v.age++
		sample, done := m.advance(v)
		if done {
			v.active = false
		}
		l, r := equalPowerPan(sample*float32(v.gain), v.pan)
		acc := m.outCache[v.sourceNode]
		acc.L += l
		acc.R += r
		m.outCache[v.sourceNode] = acc
	}
	return m.outCache
}

func (m *Manager) advance(v *Voice) (out float32, done bool) {
	switch v.kind {
	case kindSample:
		out = m.readSample(v)
	case kindSynth:
		out = m.readSynth(v)
	}
	out *= float32(v.envelope())
	v.elapsed++

	v.pos += v.speed
	if v.kind == kindSynth {
		v.phase += v.freq / m.sampleRate
		if v.phase >= 1 {
			v.phase -= 1
		}
	}

	if v.envPhase == envDone {
		done = true
	}
	if v.kind == kindSample && v.buffer != nil {
		n := float64(v.buffer.Frames())
		if v.pos < 0 || v.pos >= n {
			done = true
		}
	}
	return out, done
}

// envelope advances and returns the piecewise-linear attack/hold/release
// envelope: ramp up over attackSamples, hold at 1.0 until
// lengthSamples-releaseSamples remain, then ramp down to 0.
func (v *Voice) envelope() float64 {
	switch v.envPhase {
	case envAttack:
		if v.attackSamples <= 0 {
			v.envLevel = 1
		} else {
			v.envLevel += 1 / v.attackSamples
		}
		if v.envLevel >= 1 {
			v.envLevel = 1
			v.envPhase = envHold
		}
	case envHold:
		v.envLevel = 1
		if v.elapsed >= v.lengthSamples-v.releaseSamples {
			v.envPhase = envRelease
		}
	case envRelease:
		if v.releaseSamples <= 0 {
			v.envLevel = 0
		} else {
			v.envLevel -= 1 / v.releaseSamples
		}
		if v.envLevel <= 0 {
			v.envLevel = 0
			v.envPhase = envDone
		}
	}
	return v.envLevel
}

func (m *Manager) readSample(v *Voice) float32 {
	if v.buffer == nil {
		return 0
	}
	return interpolate(v.buffer, v.pos)
}

func (m *Manager) readSynth(v *Voice) float32 {
	switch v.waveform {
	case "saw":
		return float32(2*v.phase - 1)
	case "square":
		if v.phase < 0.5 {
			return 1
		}
		return -1
	case "tri":
		return float32(4*math.Abs(v.phase-0.5) - 1)
	default: // "sine" and unrecognized names
		return float32(math.Sin(2 * math.Pi * v.phase))
	}
}

func interpolate(buf *samplebank.AudioBuffer, pos float64) float32 {
	frames := buf.Frames()
	if frames == 0 {
		return 0
	}
	i0 := int(math.Floor(pos))
	if i0 < 0 || i0 >= frames {
		return 0
	}
	i1 := i0 + 1
	if i1 >= frames {
		i1 = frames - 1
	}
	frac := pos - math.Floor(pos)
	ch := buf.Channels
	if ch < 1 {
		ch = 1
	}
	a := buf.Data[i0*ch]
	b := buf.Data[i1*ch]
	return a + float32(frac)*(b-a)
}

func equalPowerPan(x float32, pan float64) (l, r float32) {
	pan = math.Max(-1, math.Min(1, pan))
	angle := (pan + 1) * math.Pi / 4
	return x * float32(math.Cos(angle)), x * float32(math.Sin(angle))
}
