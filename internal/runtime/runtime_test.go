package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonon-lang/phonon/internal/graph"
)

func constantGraph(v float64) *graph.Graph {
	g := graph.New(44100, 1.0)
	id := g.AddNode(&graph.OutputNode{Input: graph.ConstSignal(v)})
	g.Output = id
	g.HasOutput = true
	return g
}

func TestRingBufferWriteReadRoundTrips(t *testing.T) {
	rb := NewRingBuffer(4)
	written := rb.Write([]float32{1, 2, 3, 4, 5, 6})
	assert.Equal(t, 3, written) // 3 stereo frames

	out := make([]float32, 8)
	read := rb.Read(out)
	assert.Equal(t, 3, read)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 0, 0}, out)
}

func TestRingBufferUnderrunLeavesShortfallForCaller(t *testing.T) {
	rb := NewRingBuffer(8)
	rb.Write([]float32{1, 1})

	out := make([]float32, 8)
	read := rb.Read(out)
	assert.Equal(t, 1, read)
	assert.Equal(t, float32(0), out[2])
}

func TestCallbackZeroFillsAndCountsUnderrunWhenWorkerNeverStarted(t *testing.T) {
	rt := New(constantGraph(0.5))
	out := make([]float32, 16)
	rt.Callback(out)
	for _, s := range out {
		assert.Equal(t, float32(0), s)
	}
	assert.Equal(t, int64(8), rt.UnderrunCount())
}

func TestWorkerFillsRingAndCallbackDrainsIt(t *testing.T) {
	rt := New(constantGraph(0.25))
	rt.Start()
	defer rt.Stop()

	require.Eventually(t, func() bool {
		return rt.rb.FramesAvailable() >= DefaultChunkFrames
	}, time.Second, time.Millisecond)

	out := make([]float32, DefaultChunkFrames*2)
	rt.Callback(out)
	for i := 0; i < len(out); i += 2 {
		assert.InDelta(t, 0.25*0.70710678, out[i], 1e-4)
		assert.InDelta(t, 0.25*0.70710678, out[i+1], 1e-4)
	}
	assert.Equal(t, int64(0), rt.UnderrunCount())
}

func TestSwapCarriesSessionStartAndVoicesForward(t *testing.T) {
	rt := New(constantGraph(0))
	old := rt.Graph()
	old.SessionStart = old.SessionStart.Add(-5 * time.Second)
	oldVoices := old.Voices

	next := constantGraph(1)
	rt.Swap(next)

	assert.Same(t, oldVoices, rt.Graph().Voices)
	assert.Equal(t, old.SessionStart, rt.Graph().SessionStart)
}
