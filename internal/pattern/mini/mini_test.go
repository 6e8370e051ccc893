package mini

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phonon-lang/phonon/internal/frac"
)

func span(a, b int64) frac.TimeSpan {
	return frac.NewSpan(frac.FromInt(a), frac.FromInt(b))
}

func TestParseWordSequence(t *testing.T) {
	p, err := ParseString("bd sn hh cp")
	assert.NoError(t, err)
	evs := p(span(0, 1))
	assert.Len(t, evs, 4)
	assert.Equal(t, "bd", evs[0].Value)
	assert.Equal(t, "sn", evs[1].Value)
	assert.Equal(t, "hh", evs[2].Value)
	assert.Equal(t, "cp", evs[3].Value)
}

func TestParseRest(t *testing.T) {
	p, err := ParseString("bd ~ sn ~")
	assert.NoError(t, err)
	evs := p(span(0, 1))
	assert.Len(t, evs, 2)
	assert.Equal(t, "bd", evs[0].Value)
	assert.Equal(t, "sn", evs[1].Value)
}

func TestParseGroupAndStack(t *testing.T) {
	p, err := ParseString("bd [sn, hh hh]")
	assert.NoError(t, err)
	evs := p(span(0, 1))
	// bd fills the first half; sn and a two-note hh hh fastcat share the
	// second half simultaneously.
	assert.Len(t, evs, 4)
}

func TestParseAlternation(t *testing.T) {
	p, err := ParseString("<bd sn cp>")
	assert.NoError(t, err)
	assert.Equal(t, "bd", p(span(0, 1))[0].Value)
	assert.Equal(t, "sn", p(span(1, 2))[0].Value)
	assert.Equal(t, "cp", p(span(2, 3))[0].Value)
	assert.Equal(t, "bd", p(span(3, 4))[0].Value)
}

func TestParseSampleIndex(t *testing.T) {
	p, err := ParseString("bd:2 bd:3")
	assert.NoError(t, err)
	evs := p(span(0, 1))
	assert.Equal(t, "bd:2", evs[0].Value)
	assert.Equal(t, "bd:3", evs[1].Value)
}

func TestParseEuclid(t *testing.T) {
	p, err := ParseString("bd(3,8)")
	assert.NoError(t, err)
	evs := p(span(0, 1))
	assert.Len(t, evs, 3)
}

func TestParseEuclidWithRotation(t *testing.T) {
	p, err := ParseString("bd(3,8,2)")
	assert.NoError(t, err)
	evs := p(span(0, 1))
	assert.Len(t, evs, 3)
}

func TestParseReplicate(t *testing.T) {
	p, err := ParseString("bd!3 sn")
	assert.NoError(t, err)
	evs := p(span(0, 1))
	assert.Len(t, evs, 4)
	assert.Equal(t, "bd", evs[0].Value)
	assert.Equal(t, "bd", evs[1].Value)
	assert.Equal(t, "bd", evs[2].Value)
	assert.Equal(t, "sn", evs[3].Value)
}

func TestParseFastFactor(t *testing.T) {
	p, err := ParseString("bd*2 sn")
	assert.NoError(t, err)
	evs := p(span(0, 1))
	assert.Len(t, evs, 3)
}

func TestParseFastAlternatingFactor(t *testing.T) {
	p, err := ParseString("bd*<2 3>")
	assert.NoError(t, err)
	assert.Len(t, p(span(0, 1)), 2)
	assert.Len(t, p(span(1, 2)), 3)
}

func TestParseNumericSequence(t *testing.T) {
	p, err := ParseNumeric("0 0.25 0.5 0.75")
	assert.NoError(t, err)
	evs := p(span(0, 1))
	assert.Len(t, evs, 4)
	assert.InDelta(t, 0.5, evs[2].Value, 1e-9)
}

func TestParseNegativeNumber(t *testing.T) {
	p, err := ParseNumeric("-1 1")
	assert.NoError(t, err)
	evs := p(span(0, 1))
	assert.InDelta(t, -1, evs[0].Value, 1e-9)
	assert.InDelta(t, 1, evs[1].Value, 1e-9)
}

func TestParseErrorUnbalancedBracket(t *testing.T) {
	_, err := ParseString("bd [sn hh")
	assert.Error(t, err)
}

func TestParseErrorStrayCharacter(t *testing.T) {
	_, err := ParseString("bd %")
	assert.Error(t, err)
}
