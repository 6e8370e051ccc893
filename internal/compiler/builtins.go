package compiler

import (
	"github.com/phonon-lang/phonon/internal/dsl"
	"github.com/phonon-lang/phonon/internal/dsp"
	"github.com/phonon-lang/phonon/internal/graph"
	"github.com/phonon-lang/phonon/internal/pattern/mini"
)

// compileCall lowers a call that appears in "base" position: a source
// (sine, noise, ...), an analysis node fed an explicit input, or an s/syn
// word-pattern builder. Anything else is an unknown identifier.
func (c *Compiler) compileCall(call *dsl.Call) (graph.Signal, *sampleBuilder, error) {
	switch call.Func {
	case "s":
		b, err := c.buildSample(*call)
		return graph.Signal{}, b, err
	case "syn", "synth":
		b, err := c.buildSynth(*call)
		return graph.Signal{}, b, err

	case "sine", "saw", "square", "tri":
		if err := c.requireArgs(*call, 1); err != nil {
			return graph.Signal{}, nil, err
		}
		freq, err := c.argSignal(*call, 0)
		if err != nil {
			return graph.Signal{}, nil, err
		}
		kind := map[string]string{"sine": graph.WaveSine, "saw": graph.WaveSaw, "square": graph.WaveSquare, "tri": graph.WaveTri}[call.Func]
		return c.node(&graph.Oscillator{Kind: kind, Freq: freq}), nil, nil

	case "noise":
		c.noiseSeed++
		return c.node(graph.NewNoise(c.noiseSeed)), nil, nil

	case "impulse":
		if err := c.requireArgs(*call, 1); err != nil {
			return graph.Signal{}, nil, err
		}
		freq, err := c.argSignal(*call, 0)
		if err != nil {
			return graph.Signal{}, nil, err
		}
		return c.node(&graph.Impulse{Freq: freq}), nil, nil

	case "lfo":
		if err := c.requireArgs(*call, 3); err != nil {
			return graph.Signal{}, nil, err
		}
		rate, err := c.argSignal(*call, 0)
		if err != nil {
			return graph.Signal{}, nil, err
		}
		depth, err := c.argSignal(*call, 1)
		if err != nil {
			return graph.Signal{}, nil, err
		}
		offset, err := c.argSignal(*call, 2)
		if err != nil {
			return graph.Signal{}, nil, err
		}
		return c.node(&graph.SineLFO{Rate: rate, Depth: depth, Offset: offset}), nil, nil

	case "adsr":
		sig, err := c.fiveArgNode(*call, func(a [5]graph.Signal) graph.Node {
			return &graph.ADSR{Gate: a[0], AttackSec: a[1], DecaySec: a[2], Sustain: a[3], ReleaseSec: a[4]}
		})
		return sig, nil, err
	case "ad":
		sig, err := c.threeArgNode(*call, func(a [3]graph.Signal) graph.Node {
			return &graph.AD{Gate: a[0], AttackSec: a[1], DecaySec: a[2]}
		})
		return sig, nil, err
	case "asr":
		sig, err := c.threeArgNode(*call, func(a [3]graph.Signal) graph.Node {
			return &graph.ASR{Gate: a[0], AttackSec: a[1], ReleaseSec: a[2]}
		})
		return sig, nil, err
	case "curve":
		sig, err := c.fiveArgNode(*call, func(a [5]graph.Signal) graph.Node {
			return &graph.Curve{Gate: a[0], From: a[1], To: a[2], DurationSec: a[3], Shape: a[4]}
		})
		return sig, nil, err

	case "segments":
		if err := c.requireArgs(*call, 3); err != nil {
			return graph.Signal{}, nil, err
		}
		if (len(call.Args)-1)%2 != 0 {
			return graph.Signal{}, nil, errAt(call.Pos, "'segments' needs gate plus level/time pairs")
		}
		gate, err := c.argSignal(*call, 0)
		if err != nil {
			return graph.Signal{}, nil, err
		}
		var points []graph.Segment
		for i := 1; i < len(call.Args); i += 2 {
			level, err := c.constNumber(*call, i)
			if err != nil {
				return graph.Signal{}, nil, err
			}
			t, err := c.constNumber(*call, i+1)
			if err != nil {
				return graph.Signal{}, nil, err
			}
			points = append(points, graph.Segment{Level: level, TimeSec: t})
		}
		return c.node(&graph.Segments{Gate: gate, Points: points}), nil, nil

	case "rms":
		sig, err := c.twoArgNode(*call, func(a [2]graph.Signal) graph.Node {
			return &graph.RMSNode{Input: a[0], WindowMs: a[1]}
		})
		return sig, nil, err
	case "peak":
		sig, err := c.threeArgNode(*call, func(a [3]graph.Signal) graph.Node {
			return &graph.PeakFollowerNode{Input: a[0], AttackMs: a[1], ReleaseMs: a[2]}
		})
		return sig, nil, err
	case "envfollow":
		sig, err := c.twoArgNode(*call, func(a [2]graph.Signal) graph.Node {
			return &graph.EnvelopeFollowerNode{Input: a[0], TimeMs: a[1]}
		})
		return sig, nil, err
	case "schmidt":
		sig, err := c.threeArgNode(*call, func(a [3]graph.Signal) graph.Node {
			return &graph.SchmidtNode{Input: a[0], High: a[1], Low: a[2]}
		})
		return sig, nil, err
	case "latch":
		sig, err := c.twoArgNode(*call, func(a [2]graph.Signal) graph.Node {
			return &graph.LatchNode{Input: a[0], Trigger: a[1]}
		})
		return sig, nil, err
	case "timer":
		if err := c.requireArgs(*call, 1); err != nil {
			return graph.Signal{}, nil, err
		}
		trig, err := c.argSignal(*call, 0)
		if err != nil {
			return graph.Signal{}, nil, err
		}
		return c.node(&graph.TimerNode{Trigger: trig}), nil, nil
	case "pitch":
		if err := c.requireArgs(*call, 1); err != nil {
			return graph.Signal{}, nil, err
		}
		in, err := c.argSignal(*call, 0)
		if err != nil {
			return graph.Signal{}, nil, err
		}
		return c.node(graph.NewPitchNode(in, c.g.SampleRate)), nil, nil
	case "transient":
		sig, err := c.twoArgNode(*call, func(a [2]graph.Signal) graph.Node {
			return graph.NewTransientNode(a[0], a[1])
		})
		return sig, nil, err

	case "karplus":
		sig, err := c.threeArgNode(*call, func(a [3]graph.Signal) graph.Node {
			return graph.NewKarplusStrongNode(a[0], a[1], a[2], c.g.SampleRate)
		})
		return sig, nil, err

	default:
		return graph.Signal{}, nil, errAt(call.Pos, "unknown identifier '%s'", call.Func)
	}
}

func (c *Compiler) buildSample(call dsl.Call) (*sampleBuilder, error) {
	if err := c.requireArgs(call, 1); err != nil {
		return nil, err
	}
	lit, ok := call.Args[0].(*dsl.StringLit)
	if !ok {
		return nil, errAt(call.Pos, "'s' expects a mini-notation string")
	}
	p, err := mini.ParseString(lit.Value)
	if err != nil {
		return nil, errAt(lit.Pos, "invalid pattern %q: %v", lit.Value, err)
	}
	return newSampleBuilder(&graph.Sample{
		Pattern: p,
		Gain:    graph.ConstSignal(1),
		Pan:     graph.ConstSignal(0),
		Speed:   graph.ConstSignal(1),
		Note:    graph.ConstSignal(0),
		Attack:  graph.ConstSignal(0.001),
		Release: graph.ConstSignal(0),
		Bank:    c.bank,
		Voices:  c.g.Voices,
	}), nil
}

func (c *Compiler) buildSynth(call dsl.Call) (*sampleBuilder, error) {
	if err := c.requireArgs(call, 1); err != nil {
		return nil, err
	}
	lit, ok := call.Args[0].(*dsl.StringLit)
	if !ok {
		return nil, errAt(call.Pos, "'%s' expects a mini-notation string", call.Func)
	}
	p, err := mini.ParseString(lit.Value)
	if err != nil {
		return nil, errAt(lit.Pos, "invalid pattern %q: %v", lit.Value, err)
	}
	return newSynthBuilder(&graph.SynthPattern{
		Pattern: p,
		Freq:    graph.ConstSignal(440),
		Note:    graph.ConstSignal(0),
		Gain:    graph.ConstSignal(1),
		Pan:     graph.ConstSignal(0),
		Attack:  graph.ConstSignal(0.001),
		Release: graph.ConstSignal(0),
		Voices:  c.g.Voices,
	}), nil
}

func (c *Compiler) node(n graph.Node) graph.Signal {
	return graph.NodeSignal(c.g.AddNode(n))
}

func (c *Compiler) twoArgNode(call dsl.Call, build func([2]graph.Signal) graph.Node) (graph.Signal, error) {
	if err := c.requireArgs(call, 2); err != nil {
		return graph.Signal{}, err
	}
	var a [2]graph.Signal
	for i := range a {
		sig, err := c.argSignal(call, i)
		if err != nil {
			return graph.Signal{}, err
		}
		a[i] = sig
	}
	return c.node(build(a)), nil
}

func (c *Compiler) threeArgNode(call dsl.Call, build func([3]graph.Signal) graph.Node) (graph.Signal, error) {
	if err := c.requireArgs(call, 3); err != nil {
		return graph.Signal{}, err
	}
	var a [3]graph.Signal
	for i := range a {
		sig, err := c.argSignal(call, i)
		if err != nil {
			return graph.Signal{}, err
		}
		a[i] = sig
	}
	return c.node(build(a)), nil
}

func (c *Compiler) fiveArgNode(call dsl.Call, build func([5]graph.Signal) graph.Node) (graph.Signal, error) {
	if err := c.requireArgs(call, 5); err != nil {
		return graph.Signal{}, err
	}
	var a [5]graph.Signal
	for i := range a {
		sig, err := c.argSignal(call, i)
		if err != nil {
			return graph.Signal{}, err
		}
		a[i] = sig
	}
	return c.node(build(a)), nil
}

// compileEffect lowers a "#"-chained call that isn't a recognized sample
// parameter: it always takes the upstream signal as an implicit first
// input and call.Args as the remaining, explicit parameters.
func (c *Compiler) compileEffect(call dsl.Call, input graph.Signal) (graph.Node, error) {
	arg := func(i int) (graph.Signal, error) { return c.argSignal(call, i) }

	switch call.Func {
	case "lpf", "hpf", "bpf", "notch":
		if err := c.requireArgs(call, 2); err != nil {
			return nil, err
		}
		cutoff, err := arg(0)
		if err != nil {
			return nil, err
		}
		q, err := arg(1)
		if err != nil {
			return nil, err
		}
		switch call.Func {
		case "lpf":
			return graph.NewLowPass(input, cutoff, q), nil
		case "hpf":
			return graph.NewHighPass(input, cutoff, q), nil
		case "bpf":
			return graph.NewBandPass(input, cutoff, q), nil
		default:
			return graph.NewNotch(input, cutoff, q), nil
		}
	case "moog":
		if err := c.requireArgs(call, 2); err != nil {
			return nil, err
		}
		cutoff, err := arg(0)
		if err != nil {
			return nil, err
		}
		res, err := arg(1)
		if err != nil {
			return nil, err
		}
		return graph.NewMoogLadder(input, cutoff, res), nil
	case "eq":
		if err := c.requireArgs(call, 3); err != nil {
			return nil, err
		}
		freq, err := arg(0)
		if err != nil {
			return nil, err
		}
		q, err := arg(1)
		if err != nil {
			return nil, err
		}
		gain, err := arg(2)
		if err != nil {
			return nil, err
		}
		return &graph.ParametricEQ{Input: input, Freq: freq, Q: q, GainDB: gain}, nil

	case "comb":
		if err := c.requireArgs(call, 2); err != nil {
			return nil, err
		}
		delay, err := arg(0)
		if err != nil {
			return nil, err
		}
		fb, err := arg(1)
		if err != nil {
			return nil, err
		}
		return graph.NewComb(input, delay, fb, maxDelaySeconds, c.g.SampleRate), nil
	case "delay":
		if err := c.requireArgs(call, 3); err != nil {
			return nil, err
		}
		t, err := arg(0)
		if err != nil {
			return nil, err
		}
		fb, err := arg(1)
		if err != nil {
			return nil, err
		}
		mix, err := arg(2)
		if err != nil {
			return nil, err
		}
		return graph.NewDelayNode(input, t, fb, mix, maxDelaySeconds, c.g.SampleRate), nil
	case "pingpong":
		if err := c.requireArgs(call, 2); err != nil {
			return nil, err
		}
		t, err := arg(0)
		if err != nil {
			return nil, err
		}
		fb, err := arg(1)
		if err != nil {
			return nil, err
		}
		return graph.NewPingPongDelayNode(input, t, fb, maxDelaySeconds, c.g.SampleRate), nil
	case "tapedelay":
		if err := c.requireArgs(call, 3); err != nil {
			return nil, err
		}
		t, err := arg(0)
		if err != nil {
			return nil, err
		}
		fb, err := arg(1)
		if err != nil {
			return nil, err
		}
		mix, err := arg(2)
		if err != nil {
			return nil, err
		}
		return graph.NewTapeDelayNode(input, t, fb, mix, maxDelaySeconds, c.g.SampleRate), nil
	case "multitap":
		// Taps are baked into the delay line at construction
		// (dsp.Tap is a plain float pair, not a Signal), so each
		// time/gain pair must be a compile-time constant.
		if len(call.Args) < 2 || len(call.Args)%2 != 0 {
			return nil, errAt(call.Pos, "'multitap' needs time/gain pairs")
		}
		var taps []dsp.Tap
		for i := 0; i < len(call.Args); i += 2 {
			t, err := c.constNumber(call, i)
			if err != nil {
				return nil, err
			}
			g, err := c.constNumber(call, i+1)
			if err != nil {
				return nil, err
			}
			taps = append(taps, dsp.Tap{TimeSec: t, Gain: g})
		}
		return graph.NewMultiTapDelayNode(input, taps, maxDelaySeconds, c.g.SampleRate), nil

	case "reverb":
		sig, err := c.effect3(call, arg, func(a, b, mix graph.Signal) graph.Node {
			return graph.NewReverbNode(input, a, b, mix, c.g.SampleRate)
		})
		return sig, err
	case "dattorro":
		sig, err := c.effect3(call, arg, func(a, b, mix graph.Signal) graph.Node {
			return graph.NewDattorroReverbNode(input, a, b, mix, c.g.SampleRate)
		})
		return sig, err
	case "chorus":
		sig, err := c.effect3(call, arg, func(a, b, mix graph.Signal) graph.Node {
			return graph.NewChorusNode(input, a, b, mix, c.g.SampleRate)
		})
		return sig, err

	case "flanger":
		if err := c.requireArgs(call, 4); err != nil {
			return nil, err
		}
		rate, err := arg(0)
		if err != nil {
			return nil, err
		}
		depth, err := arg(1)
		if err != nil {
			return nil, err
		}
		fb, err := arg(2)
		if err != nil {
			return nil, err
		}
		mix, err := arg(3)
		if err != nil {
			return nil, err
		}
		return graph.NewFlangerNode(input, rate, depth, fb, mix, c.g.SampleRate), nil
	case "phaser":
		if err := c.requireArgs(call, 4); err != nil {
			return nil, err
		}
		rate, err := arg(0)
		if err != nil {
			return nil, err
		}
		minHz, err := arg(1)
		if err != nil {
			return nil, err
		}
		maxHz, err := arg(2)
		if err != nil {
			return nil, err
		}
		mix, err := arg(3)
		if err != nil {
			return nil, err
		}
		return graph.NewPhaserNode(input, rate, minHz, maxHz, mix), nil
	case "tremolo":
		if err := c.requireArgs(call, 2); err != nil {
			return nil, err
		}
		rate, err := arg(0)
		if err != nil {
			return nil, err
		}
		depth, err := arg(1)
		if err != nil {
			return nil, err
		}
		return graph.NewTremoloNode(input, rate, depth), nil
	case "vibrato":
		if err := c.requireArgs(call, 2); err != nil {
			return nil, err
		}
		rate, err := arg(0)
		if err != nil {
			return nil, err
		}
		depth, err := arg(1)
		if err != nil {
			return nil, err
		}
		return graph.NewVibratoNode(input, rate, depth, c.g.SampleRate), nil

	case "bitcrush":
		if err := c.requireArgs(call, 2); err != nil {
			return nil, err
		}
		bits, err := arg(0)
		if err != nil {
			return nil, err
		}
		sr, err := arg(1)
		if err != nil {
			return nil, err
		}
		return &graph.BitCrushNode{Input: input, Bits: bits, SampleRate: sr}, nil
	case "distortion":
		if err := c.requireArgs(call, 2); err != nil {
			return nil, err
		}
		drive, err := arg(0)
		if err != nil {
			return nil, err
		}
		mix, err := arg(1)
		if err != nil {
			return nil, err
		}
		return &graph.DistortionNode{Input: input, Drive: drive, Mix: mix}, nil
	case "ringmod":
		if err := c.requireArgs(call, 1); err != nil {
			return nil, err
		}
		carrier, err := arg(0)
		if err != nil {
			return nil, err
		}
		return &graph.RingModNode{Input: input, CarrierHz: carrier}, nil
	case "compressor":
		if err := c.requireArgs(call, 5); err != nil {
			return nil, err
		}
		thresh, err := arg(0)
		if err != nil {
			return nil, err
		}
		ratio, err := arg(1)
		if err != nil {
			return nil, err
		}
		attack, err := arg(2)
		if err != nil {
			return nil, err
		}
		release, err := arg(3)
		if err != nil {
			return nil, err
		}
		makeup, err := arg(4)
		if err != nil {
			return nil, err
		}
		return graph.NewCompressorNode(input, thresh, ratio, attack, release, makeup), nil
	case "limiter":
		if err := c.requireArgs(call, 1); err != nil {
			return nil, err
		}
		ceiling, err := arg(0)
		if err != nil {
			return nil, err
		}
		return graph.NewLimiterNode(input, ceiling), nil

	case "convolve":
		if err := c.requireArgs(call, 1); err != nil {
			return nil, err
		}
		lit, ok := call.Args[0].(*dsl.StringLit)
		if !ok {
			return nil, errAt(call.Pos, "'convolve' expects a sample-bank name")
		}
		if c.bank == nil {
			return nil, errAt(call.Pos, "'convolve' needs a sample bank but none is configured")
		}
		buf, ok := c.bank.Load(lit.Value, 0)
		if !ok {
			return nil, errAt(call.Pos, "'convolve' could not find sample %q for its impulse response", lit.Value)
		}
		return graph.NewConvolutionNode(input, buf.Data), nil

	case "waveguide":
		if err := c.requireArgs(call, 2); err != nil {
			return nil, err
		}
		freq, err := arg(0)
		if err != nil {
			return nil, err
		}
		reflect, err := arg(1)
		if err != nil {
			return nil, err
		}
		return graph.NewWaveguideNode(input, freq, reflect, c.g.SampleRate), nil

	case "formant":
		if err := c.requireArgs(call, 1); err != nil {
			return nil, err
		}
		lit, ok := call.Args[0].(*dsl.StringLit)
		if !ok {
			return nil, errAt(call.Pos, "'formant' expects a vowel string")
		}
		if _, ok := dsp.VowelFormants[lit.Value]; !ok {
			return nil, errAt(call.Pos, "'formant' unknown vowel %q", lit.Value)
		}
		return graph.NewFormantNode(input, lit.Value, c.g.SampleRate), nil

	case "granular":
		if err := c.requireArgs(call, 5); err != nil {
			return nil, err
		}
		pos, err := arg(0)
		if err != nil {
			return nil, err
		}
		grainMs, err := arg(1)
		if err != nil {
			return nil, err
		}
		density, err := arg(2)
		if err != nil {
			return nil, err
		}
		spread, err := arg(3)
		if err != nil {
			return nil, err
		}
		speed, err := arg(4)
		if err != nil {
			return nil, err
		}
		n := graph.NewGranularNode(input, int(captureSeconds*c.g.SampleRate))
		n.Position, n.GrainMs, n.Density, n.Spread, n.Speed = pos, grainMs, density, spread, speed
		return n, nil

	case "freeze":
		if err := c.requireArgs(call, 1); err != nil {
			return nil, err
		}
		gate, err := arg(0)
		if err != nil {
			return nil, err
		}
		return graph.NewSpectralFreezeNode(input, gate, int(captureSeconds*c.g.SampleRate)), nil

	default:
		return nil, errAt(call.Pos, "unknown effect '%s'", call.Func)
	}
}

// effect3 is a small helper for the several reverb-family nodes that all
// take (input, a, b, mix, sampleRate).
func (c *Compiler) effect3(call dsl.Call, arg func(int) (graph.Signal, error), build func(a, b, mix graph.Signal) graph.Node) (graph.Node, error) {
	if err := c.requireArgs(call, 3); err != nil {
		return nil, err
	}
	a, err := arg(0)
	if err != nil {
		return nil, err
	}
	b, err := arg(1)
	if err != nil {
		return nil, err
	}
	mix, err := arg(2)
	if err != nil {
		return nil, err
	}
	return build(a, b, mix), nil
}
