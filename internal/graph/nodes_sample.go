package graph

import (
	"math"
	"strconv"
	"strings"

	"github.com/phonon-lang/phonon/internal/frac"
	"github.com/phonon-lang/phonon/internal/pattern"
	"github.com/phonon-lang/phonon/internal/samplebank"
	"github.com/phonon-lang/phonon/internal/voice"
)

// PatternControl exposes a bare numeric pattern as an addressable node, for
// when a Pattern<f32> control signal needs its own NodeID rather than being
// inlined as a SigPattern on the consuming node's Signal field directly.
type PatternControl struct {
	Pattern pattern.Pattern[float64]
}

func (p *PatternControl) Eval(g *Graph) float64 {
	return evalPatternAt(p.Pattern, g.CyclePosition)
}

// splitSampleName parses a mini-notation word's "name" or "name:index" form.
func splitSampleName(s string) (string, uint32) {
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		if n, err := strconv.Atoi(s[i+1:]); err == nil {
			return s[:i], uint32(n)
		}
	}
	return s, 0
}

// noteToSpeedFactor converts a note expressed in semitones relative to the
// sample's natural pitch into a playback-speed multiplier.
func noteToSpeedFactor(semitones float64) float64 {
	return math.Pow(2, semitones/12)
}

// Sample is the node that binds a word pattern to the sample bank and voice
// pool: every call to Eval advances the pattern by exactly the span of cycle
// time elapsed since the previous call, triggering one voice per event whose
// onset falls in that span. Parameters are evaluated at each event's onset
// time (not at the graph's "now"), which is the invariant that keeps a
// pattern like `s("bd*4") # gain "1 0.5 1 0.5"` from smearing every hit's
// gain to whatever the last-read value happened to be.
type Sample struct {
	Pattern                                pattern.Pattern[string]
	Gain, Pan, Speed, Note, Attack, Release Signal
	CutGroup                                Signal
	HasCutGroup                             bool

	Self  NodeID
	Bank  samplebank.Bank
	Voices *voice.Manager

	lastQueryEnd float64
	inited       bool
}

func (s *Sample) Eval(g *Graph) float64 {
	s.trigger(g)
	if st, ok := g.VoiceOutput(s.Self); ok {
		return float64(st.L+st.R) / 2
	}
	return 0
}

func (s *Sample) trigger(g *Graph) {
	if s.Pattern == nil || s.Bank == nil || s.Voices == nil {
		return
	}
	now := g.CyclePosition
	begin := s.lastQueryEnd
	if !s.inited {
		begin = now
		s.inited = true
	}
	if now <= begin {
		return
	}
	span := frac.TimeSpan{Begin: frac.FromFloat(begin), End: frac.FromFloat(now)}
	s.lastQueryEnd = now

	for _, e := range s.Pattern(span) {
		if !e.HasOnset() {
			continue
		}
		onset := e.Onset().Float()
		name, idx := splitSampleName(e.Value)
		buf, ok := s.Bank.Load(name, idx)
		if !ok {
			continue
		}

		durationCycles := 1.0
		if e.Whole != nil {
			durationCycles = e.Whole.Duration().Float()
		}
		durationSec := 0.0
		if g.CPS > 0 {
			durationSec = durationCycles / g.CPS
		}

		speed := g.EvalSignal(s.Speed, onset)
		if speed == 0 {
			speed = 1
		}
		speed *= noteToSpeedFactor(g.EvalSignal(s.Note, onset))

		s.Voices.TriggerSample(buf, voice.TriggerParams{
			Gain:        g.EvalSignal(s.Gain, onset),
			Pan:         g.EvalSignal(s.Pan, onset),
			Speed:       speed,
			AttackSec:   g.EvalSignal(s.Attack, onset),
			ReleaseSec:  g.EvalSignal(s.Release, onset),
			DurationSec: durationSec,
			CutGroup:    uint32(g.EvalSignal(s.CutGroup, onset)),
			HasCutGroup: s.HasCutGroup,
			SourceNode:  s.Self,
		})
	}
}

// SynthPattern is the oscillator counterpart of Sample: its pattern names a
// waveform per step (e.g. "sine sine ~ saw") and each onset starts a new
// enveloped voice at the onset-evaluated Freq/Note rather than a sample
// buffer.
type SynthPattern struct {
	Pattern                                       pattern.Pattern[string]
	Freq, Note, Gain, Pan, Attack, Release Signal
	CutGroup                                      Signal
	HasCutGroup                                   bool

	Self   NodeID
	Voices *voice.Manager

	lastQueryEnd float64
	inited       bool
}

func (s *SynthPattern) Eval(g *Graph) float64 {
	s.trigger(g)
	if st, ok := g.VoiceOutput(s.Self); ok {
		return float64(st.L+st.R) / 2
	}
	return 0
}

func (s *SynthPattern) trigger(g *Graph) {
	if s.Pattern == nil || s.Voices == nil {
		return
	}
	now := g.CyclePosition
	begin := s.lastQueryEnd
	if !s.inited {
		begin = now
		s.inited = true
	}
	if now <= begin {
		return
	}
	span := frac.TimeSpan{Begin: frac.FromFloat(begin), End: frac.FromFloat(now)}
	s.lastQueryEnd = now

	for _, e := range s.Pattern(span) {
		if !e.HasOnset() {
			continue
		}
		onset := e.Onset().Float()

		durationCycles := 1.0
		if e.Whole != nil {
			durationCycles = e.Whole.Duration().Float()
		}
		durationSec := 0.0
		if g.CPS > 0 {
			durationSec = durationCycles / g.CPS
		}

		freq := g.EvalSignal(s.Freq, onset)
		if freq <= 0 {
			freq = 440
		}
		freq *= noteToSpeedFactor(g.EvalSignal(s.Note, onset))

		s.Voices.TriggerSynth(voice.TriggerParams{
			Gain:        g.EvalSignal(s.Gain, onset),
			Pan:         g.EvalSignal(s.Pan, onset),
			Freq:        freq,
			Waveform:    e.Value,
			AttackSec:   g.EvalSignal(s.Attack, onset),
			ReleaseSec:  g.EvalSignal(s.Release, onset),
			DurationSec: durationSec,
			CutGroup:    uint32(g.EvalSignal(s.CutGroup, onset)),
			HasCutGroup: s.HasCutGroup,
			SourceNode:  s.Self,
		})
	}
}
