package samplebank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingSampleIsAMiss(t *testing.T) {
	b := NewDiskBank(t.TempDir())
	buf, ok := b.Load("bd", 0)
	assert.False(t, ok)
	assert.Nil(t, buf)
}

func TestMissingSampleIsCached(t *testing.T) {
	b := NewDiskBank(t.TempDir())
	_, ok1 := b.Load("bd", 0)
	_, ok2 := b.Load("bd", 0)
	assert.False(t, ok1)
	assert.False(t, ok2)
	assert.Len(t, b.cache, 1, "a miss should be cached too, not re-stat'd forever")
}

func TestFramesWithNoChannels(t *testing.T) {
	buf := &AudioBuffer{}
	assert.Equal(t, 0, buf.Frames())
}

func TestFramesComputedFromInterleavedData(t *testing.T) {
	buf := &AudioBuffer{Channels: 2, Data: make([]float32, 8)}
	assert.Equal(t, 4, buf.Frames())
}

func TestCacheKeyDistinguishesIndex(t *testing.T) {
	assert.NotEqual(t, cacheKey("bd", 0), cacheKey("bd", 1))
}
