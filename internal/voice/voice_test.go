package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phonon-lang/phonon/internal/samplebank"
)

func testBuffer(frames int) *samplebank.AudioBuffer {
	data := make([]float32, frames)
	for i := range data {
		data[i] = 1
	}
	return &samplebank.AudioBuffer{Channels: 1, SampleRate: 44100, Data: data}
}

func TestTriggerSampleActivatesVoice(t *testing.T) {
	m := NewManager(MinVoices, 44100)
	m.TriggerSample(testBuffer(4410), TriggerParams{Gain: 1, Speed: 1, SourceNode: 1})
	assert.Equal(t, 1, m.ActiveCount())
}

func TestMissingBufferIsNoOp(t *testing.T) {
	m := NewManager(MinVoices, 44100)
	m.TriggerSample(nil, TriggerParams{SourceNode: 1})
	assert.Equal(t, 0, m.ActiveCount())
}

func TestCutGroupKillsPreviousVoice(t *testing.T) {
	m := NewManager(MinVoices, 44100)
	m.TriggerSample(testBuffer(44100), TriggerParams{Gain: 1, Speed: 1, SourceNode: 1, CutGroup: 5, HasCutGroup: true})
	assert.Equal(t, 1, m.ActiveCount())
	m.TriggerSample(testBuffer(44100), TriggerParams{Gain: 1, Speed: 1, SourceNode: 1, CutGroup: 5, HasCutGroup: true})
	assert.Equal(t, 1, m.ActiveCount(), "triggering the same cut group should steal, not add a voice")
}

func TestVoiceRetiresAtBufferEnd(t *testing.T) {
	m := NewManager(MinVoices, 44100)
	m.TriggerSample(testBuffer(10), TriggerParams{Gain: 1, Speed: 1, AttackSec: 0, ReleaseSec: 0.0001, SourceNode: 1})
	for i := 0; i < 2000; i++ {
		m.ProcessPerNode()
		if m.ActiveCount() == 0 {
			return
		}
	}
	t.Fatal("voice never retired")
}

func TestPoolExhaustionSteals(t *testing.T) {
	m := NewManager(MinVoices, 44100)
	for i := 0; i < MinVoices; i++ {
		m.TriggerSample(testBuffer(441000), TriggerParams{Gain: 1, Speed: 1, SourceNode: NodeID(i)})
	}
	assert.Equal(t, MinVoices, m.ActiveCount())
	m.TriggerSample(testBuffer(441000), TriggerParams{Gain: 1, Speed: 1, SourceNode: NodeID(999)})
	assert.Equal(t, MinVoices, m.ActiveCount(), "stealing replaces a voice rather than growing the pool")
	assert.Equal(t, int64(1), m.StolenVoiceCount())
}

func TestProcessPerNodeMixesBySourceNode(t *testing.T) {
	m := NewManager(MinVoices, 44100)
	m.TriggerSample(testBuffer(44100), TriggerParams{Gain: 1, Speed: 1, Pan: 0, SourceNode: 1})
	m.TriggerSample(testBuffer(44100), TriggerParams{Gain: 1, Speed: 1, Pan: 0, SourceNode: 1})
	out := m.ProcessPerNode()
	assert.Contains(t, out, NodeID(1))
	assert.Greater(t, out[NodeID(1)].L, float32(0), "two voices on the same node should sum")
}

func TestHushSilencesAllVoices(t *testing.T) {
	m := NewManager(MinVoices, 44100)
	m.TriggerSample(testBuffer(44100), TriggerParams{Gain: 1, Speed: 1, SourceNode: 1})
	m.Hush()
	assert.Equal(t, 0, m.ActiveCount())
}

func TestNegativeSpeedPlaysBackwards(t *testing.T) {
	m := NewManager(MinVoices, 44100)
	m.TriggerSample(testBuffer(100), TriggerParams{Gain: 1, Speed: -1, SourceNode: 1})
	assert.True(t, m.voices[0].pos > 50, "negative speed should start near the buffer end")
}
