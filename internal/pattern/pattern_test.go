package pattern

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/phonon-lang/phonon/internal/frac"
)

// flat is a Whole-pointer-free projection of an Event, used so tests can
// compare event sets with plain equality instead of chasing pointers.
type flat[T comparable] struct {
	hasWhole   bool
	wholeBegin frac.Fraction
	wholeEnd   frac.Fraction
	partBegin  frac.Fraction
	partEnd    frac.Fraction
	value      T
}

func flatten[T comparable](evs []Event[T]) []flat[T] {
	out := make([]flat[T], len(evs))
	for i, e := range evs {
		f := flat[T]{partBegin: e.Part.Begin, partEnd: e.Part.End, value: e.Value}
		if e.Whole != nil {
			f.hasWhole = true
			f.wholeBegin = e.Whole.Begin
			f.wholeEnd = e.Whole.End
		}
		out[i] = f
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].partBegin.Eq(out[j].partBegin) {
			return out[i].partBegin.Lt(out[j].partBegin)
		}
		return out[i].partEnd.Lt(out[j].partEnd)
	})
	return out
}

func span(a, b int64) frac.TimeSpan {
	return frac.NewSpan(frac.FromInt(a), frac.FromInt(b))
}

func TestPureOneEventPerCycle(t *testing.T) {
	p := Pure("bd")
	evs := p(span(0, 3))
	assert.Len(t, evs, 3)
	for i, e := range evs {
		assert.True(t, e.Whole.Begin.Eq(frac.FromInt(int64(i))))
		assert.Equal(t, "bd", e.Value)
	}
}

func TestFastCatEqualSlots(t *testing.T) {
	p := FastCat(Pure("bd"), Pure("sn"), Pure("hh"), Pure("cp"))
	evs := p(span(0, 1))
	assert.Len(t, evs, 4)
	assert.Equal(t, "bd", evs[0].Value)
	assert.True(t, evs[0].Whole.Begin.Eq(frac.New(0, 1)))
	assert.True(t, evs[0].Whole.End.Eq(frac.New(1, 4)))
	assert.Equal(t, "cp", evs[3].Value)
	assert.True(t, evs[3].Whole.Begin.Eq(frac.New(3, 4)))
}

func TestFastSlowInverse(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kNum := rapid.Int64Range(1, 8).Draw(rt, "kn")
		p := FastCat(Pure(1), Pure(2), Pure(3))
		k := frac.FromInt(kNum)
		roundtrip := Fast(k, Slow(k, p))
		a0 := span(0, 4)
		got := flatten(roundtrip(a0))
		want := flatten(p(a0))
		assert.Equal(t, want, got)
	})
}

func TestRevTwiceIsIdentity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := Euclid[int](rapid.IntRange(0, 8).Draw(rt, "k"), 8, 0, Pure(1))
		a0 := span(0, 3)
		got := flatten(Rev(Rev(p))(a0))
		want := flatten(p(a0))
		assert.Equal(t, want, got)
	})
}

func TestEveryAppliesOnNthCycle(t *testing.T) {
	p := Every(3, func(p Pattern[string]) Pattern[string] { return Fmap(p, func(string) string { return "X" }) }, Pure("bd"))
	evs := p(span(0, 6))
	assert.Len(t, evs, 6)
	for i, e := range evs {
		if i%3 == 2 {
			assert.Equal(t, "X", e.Value, "cycle %d", i)
		} else {
			assert.Equal(t, "bd", e.Value, "cycle %d", i)
		}
	}
}

func TestDegradeDeterministic(t *testing.T) {
	p := Degrade[string](0.5, Fast(frac.FromInt(16), Pure("bd")))
	a := span(0, 1)
	got1 := p(a)
	got2 := p(a)
	assert.Equal(t, flatten(got1), flatten(got2), "same query must yield same events")
}

func TestEuclidPulseCount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 16).Draw(rt, "n")
		k := rapid.IntRange(0, n).Draw(rt, "k")
		p := Euclid[string](k, n, 0, Pure("bd"))
		evs := p(span(0, 1))
		assert.Len(t, evs, k)
	})
}

func TestStackLayersIndependently(t *testing.T) {
	p := Stack(Pure("bd"), FastCat(Pure("hh"), Pure("hh")))
	evs := p(span(0, 1))
	assert.Len(t, evs, 3)
}

func TestQueryFiniteAndWithinWindow(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "n")
		k := rapid.IntRange(0, n).Draw(rt, "k")
		a := rapid.Int64Range(-4, 4).Draw(rt, "a")
		width := rapid.Int64Range(0, 4).Draw(rt, "w")
		p := Euclid[string](k, n, 0, Pure("bd"))
		s := span(a, a+width)
		evs := p(s)
		for _, e := range evs {
			assert.True(t, e.Part.Begin.Gte(s.Begin))
			assert.True(t, e.Part.End.Lte(s.End))
		}
	})
}

func TestChopSlices(t *testing.T) {
	p := Chop[string](4, Pure("break"))
	evs := p(span(0, 1))
	assert.Len(t, evs, 4)
	for i, e := range evs {
		assert.Equal(t, i, e.Value.SliceIdx)
		assert.Equal(t, 4, e.Value.SliceOf)
	}
}

func TestStriateInterleavesAcrossEvents(t *testing.T) {
	p := Striate[string](2, FastCat(Pure("bd"), Pure("sn")))
	evs := p(span(0, 1))
	assert.Len(t, evs, 4)
}

func TestRunAscending(t *testing.T) {
	evs := Run(4)(span(0, 1))
	assert.Len(t, evs, 4)
	for i, e := range evs {
		assert.Equal(t, i, e.Value)
	}
}

func TestPalindrome(t *testing.T) {
	p := Palindrome(FastCat(Pure(1), Pure(2)))
	c0 := p(span(0, 1))
	c1 := p(span(1, 2))
	assert.Equal(t, 1, c0[0].Value)
	assert.Equal(t, 2, c0[1].Value)
	assert.Equal(t, 2, c1[0].Value)
	assert.Equal(t, 1, c1[1].Value)
}
