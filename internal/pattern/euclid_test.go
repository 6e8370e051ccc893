package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func countPulses(p []bool) int {
	n := 0
	for _, b := range p {
		if b {
			n++
		}
	}
	return n
}

func TestBjorklundKnownPatterns(t *testing.T) {
	// E(3,8) is the classic Cuban tresillo: x..x..x.
	assert.Equal(t, []bool{true, false, false, true, false, false, true, false}, Bjorklund(3, 8))
}

func TestBjorklundEdgeCases(t *testing.T) {
	assert.Equal(t, []bool{false, false, false}, Bjorklund(0, 3))
	assert.Equal(t, []bool{true, true, true}, Bjorklund(3, 3))
	assert.Equal(t, []bool{true, true, true}, Bjorklund(5, 3), "k > n clamps to k == n")
}

func TestBjorklundPulseCountProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 64).Draw(rt, "n")
		k := rapid.IntRange(0, n).Draw(rt, "k")
		got := Bjorklund(k, n)
		assert.Len(t, got, n)
		assert.Equal(t, k, countPulses(got))
	})
}

func TestRotate(t *testing.T) {
	p := []bool{true, false, false, true}
	assert.Equal(t, []bool{false, false, true, true}, Rotate(p, 1))
	assert.Equal(t, []bool{true, false, false, true}, Rotate(p, 0))
	assert.Equal(t, []bool{true, true, false, false}, Rotate(p, 3))
}
