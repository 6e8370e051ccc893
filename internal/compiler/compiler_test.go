package compiler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonon-lang/phonon/internal/samplebank"
)

type fakeBank struct {
	bufs map[string]*samplebank.AudioBuffer
}

func newFakeBank() *fakeBank { return &fakeBank{bufs: make(map[string]*samplebank.AudioBuffer)} }

func (f *fakeBank) put(name string, frames int, level float32) {
	data := make([]float32, frames)
	for i := range data {
		data[i] = level
	}
	f.bufs[name] = &samplebank.AudioBuffer{Channels: 1, SampleRate: 44100, Data: data}
}

func (f *fakeBank) Load(name string, idx uint32) (*samplebank.AudioBuffer, bool) {
	b, ok := f.bufs[name]
	return b, ok
}

func renderSamples(t *testing.T, g interface {
	ProcessSample() (float32, float32)
}, n int) []float32 {
	t.Helper()
	out := make([]float32, n)
	for i := range out {
		l, r := g.ProcessSample()
		out[i] = (l + r) / 2
	}
	return out
}

func rms(samples []float32) float64 {
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func peak(samples []float32) float64 {
	var m float64
	for _, s := range samples {
		if v := math.Abs(float64(s)); v > m {
			m = v
		}
	}
	return m
}

func TestCompilePureTone(t *testing.T) {
	g, err := Compile("tempo: 0.5\nout: sine 440 * 0.2\n", 44100, nil)
	require.NoError(t, err)
	require.True(t, g.HasOutput)

	samples := renderSamples(t, g, 44100)
	got := rms(samples)
	assert.InDelta(t, 0.2/math.Sqrt2, got, 0.01)
}

func TestCompileEuclideanKicks(t *testing.T) {
	bank := newFakeBank()
	bank.put("bd", 200, 0.8)

	g, err := Compile(`tempo: 2.0
out: s "bd(3,8)"
`, 44100, bank)
	require.NoError(t, err)
	require.True(t, g.HasOutput)

	samples := renderSamples(t, g, 44100/2) // one cycle at cps=2
	assert.Greater(t, peak(samples), 0.1)
}

func TestCompilePerEventGain(t *testing.T) {
	bank := newFakeBank()
	bank.put("bd", 4000, 1.0)

	g, err := Compile(`out: s "bd bd" # gain "0.2 1.0"`+"\n", 44100, bank)
	require.NoError(t, err)

	cycleLen := 44100 // default cps 1
	samples := renderSamples(t, g, cycleLen)
	firstHalf := peak(samples[:cycleLen/2])
	secondHalf := peak(samples[cycleLen/2:])
	assert.Greater(t, secondHalf, firstHalf*2)
}

func TestCompileBusChainWithLFOModulatedFilter(t *testing.T) {
	g, err := Compile(`tempo: 2.0
~lfo: sine 0.25
~bass: saw 55 # lpf (~lfo * 2000 + 500) 0.8
out: ~bass * 0.3
`, 44100, nil)
	require.NoError(t, err)
	require.True(t, g.HasOutput)

	samples := renderSamples(t, g, 44100)
	assert.Greater(t, peak(samples), 0.01)
}

func TestCompileNumberedOutputsAutoMix(t *testing.T) {
	g, err := Compile("cps: 2.0\no1: sine 220\no2: sine 440\n", 44100, nil)
	require.NoError(t, err)
	require.True(t, g.HasOutput)

	samples := renderSamples(t, g, 44100)
	assert.Greater(t, peak(samples), 0.1)
}

func TestCompileBareBusFileSumsAllBuses(t *testing.T) {
	g, err := Compile("~a: sine 220 * 0.3\n~b: sine 440 * 0.3\n", 44100, nil)
	require.NoError(t, err)
	require.True(t, g.HasOutput)
	assert.Greater(t, peak(renderSamples(t, g, 44100)), 0.1)
}

func TestCompileDollarTransformChain(t *testing.T) {
	bank := newFakeBank()
	bank.put("bd", 400, 0.9)

	g, err := Compile(`out: s "bd*4" $ fast 2 $ rev`+"\n", 44100, bank)
	require.NoError(t, err)
	assert.Greater(t, peak(renderSamples(t, g, 44100)), 0.1)
}

func TestCompileRejectsUnknownIdentifier(t *testing.T) {
	_, err := Compile("out: bogus 1\n", 44100, nil)
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
}

func TestCompileRejectsUnresolvedBus(t *testing.T) {
	_, err := Compile("out: ~missing\n", 44100, nil)
	require.Error(t, err)
}

func TestCompileRejectsForwardBusReference(t *testing.T) {
	_, err := Compile("~a: ~b\n~b: sine 440\n", 44100, nil)
	require.Error(t, err)
}

func TestCompileRejectsWrongArity(t *testing.T) {
	_, err := Compile("out: saw 55 # lpf 1000\n", 44100, nil)
	require.Error(t, err)
}

func TestCompileNoOutputIsSilentNotError(t *testing.T) {
	g, err := Compile("tempo: 1.0\n", 44100, nil)
	require.NoError(t, err)
	assert.False(t, g.HasOutput)
}
