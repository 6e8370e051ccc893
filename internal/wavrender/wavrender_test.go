package wavrender

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonon-lang/phonon/internal/graph"
)

func TestFramesForDurationAndCycles(t *testing.T) {
	assert.Equal(t, int64(44100), FramesForDuration(1.0, 44100))
	assert.Equal(t, int64(22050), FramesForCycles(1.0, 44100, 2.0))
	assert.Equal(t, int64(0), FramesForCycles(1.0, 44100, 0))
}

func constantGraph(v float64) *graph.Graph {
	g := graph.New(8000, 1.0)
	g.Offline = true
	id := g.AddNode(&graph.OutputNode{Input: graph.ConstSignal(v)})
	g.Output = id
	g.HasOutput = true
	return g
}

func TestRenderWritesExactFrameCountAndIsDeterministic(t *testing.T) {
	render := func() []byte {
		f, err := os.CreateTemp(t.TempDir(), "render-*.wav")
		require.NoError(t, err)
		defer f.Close()

		err = Render(f, constantGraph(0.5), Options{
			SampleRate: 8000,
			BitDepth:   BitDepth16,
			Frames:     100,
		})
		require.NoError(t, err)

		_, err = f.Seek(0, 0)
		require.NoError(t, err)
		data, err := os.ReadFile(f.Name())
		require.NoError(t, err)
		return data
	}

	a := render()
	b := render()
	assert.NotEmpty(t, a)
	assert.Equal(t, a, b)
}

func TestFloatToPCMClampsToRange(t *testing.T) {
	assert.Equal(t, 32767, floatToPCM(2.0, 32767))
	assert.Equal(t, -32767, floatToPCM(-2.0, 32767))
	assert.Equal(t, 0, floatToPCM(0, 32767))
}
