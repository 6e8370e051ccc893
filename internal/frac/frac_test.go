package frac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReduction(t *testing.T) {
	f := New(2, 4)
	assert.Equal(t, int64(1), f.Num)
	assert.Equal(t, int64(2), f.Den)
}

func TestNegativeDenominator(t *testing.T) {
	f := New(1, -2)
	assert.Equal(t, int64(-1), f.Num)
	assert.Equal(t, int64(2), f.Den)
}

func TestArithmetic(t *testing.T) {
	a := New(1, 2)
	b := New(1, 3)
	assert.True(t, a.Add(b).Eq(New(5, 6)))
	assert.True(t, a.Sub(b).Eq(New(1, 6)))
	assert.True(t, a.Mul(b).Eq(New(1, 6)))
	assert.True(t, a.Div(b).Eq(New(3, 2)))
}

func TestFloorCeil(t *testing.T) {
	assert.Equal(t, int64(1), New(3, 2).Floor())
	assert.Equal(t, int64(-2), New(-3, 2).Floor())
	assert.Equal(t, int64(2), New(3, 2).Ceil())
	assert.Equal(t, int64(-1), New(-3, 2).Ceil())
}

func TestMod1(t *testing.T) {
	assert.True(t, New(5, 2).Mod1().Eq(New(1, 2)))
	assert.True(t, New(-1, 2).Mod1().Eq(New(1, 2)))
}

func TestCmp(t *testing.T) {
	assert.True(t, New(1, 3).Lt(New(1, 2)))
	assert.True(t, New(1, 2).Gt(New(1, 3)))
	assert.True(t, New(2, 4).Eq(New(1, 2)))
}

func TestSpanIntersect(t *testing.T) {
	s1 := NewSpan(FromInt(0), FromInt(2))
	s2 := NewSpan(New(1, 1), FromInt(3))
	got, ok := s1.Intersect(s2)
	assert.True(t, ok)
	assert.True(t, got.Begin.Eq(FromInt(1)))
	assert.True(t, got.End.Eq(FromInt(2)))

	s3 := NewSpan(FromInt(2), FromInt(3))
	_, ok = s1.Intersect(s3)
	assert.False(t, ok, "half-open spans touching at a point do not overlap")
}

func TestSpansCycle(t *testing.T) {
	s := NewSpan(New(1, 2), New(5, 2))
	parts := s.SpansCycle()
	assert.Len(t, parts, 3)
	assert.True(t, parts[0].Begin.Eq(New(1, 2)))
	assert.True(t, parts[0].End.Eq(FromInt(1)))
	assert.True(t, parts[1].Begin.Eq(FromInt(1)))
	assert.True(t, parts[1].End.Eq(FromInt(2)))
	assert.True(t, parts[2].Begin.Eq(FromInt(2)))
	assert.True(t, parts[2].End.Eq(New(5, 2)))
}
