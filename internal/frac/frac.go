// Package frac provides exact rational arithmetic for addressing musical time.
//
// Fraction avoids the drift that repeated floating-point subdivision of a cycle
// introduces; everything in the pattern engine that talks about "when" goes
// through a Fraction or a TimeSpan built from one.
package frac

import "fmt"

// Fraction is an exact rational number, always kept reduced with a positive
// denominator. The zero value is 0/1.
type Fraction struct {
	Num int64
	Den int64
}

// New returns a reduced Fraction equal to num/den. It panics on a zero
// denominator, mirroring integer division semantics.
func New(num, den int64) Fraction {
	if den == 0 {
		panic("frac: zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs64(num), den)
	if g == 0 {
		g = 1
	}
	return Fraction{Num: num / g, Den: den / g}
}

// FromInt returns n/1.
func FromInt(n int64) Fraction { return Fraction{Num: n, Den: 1} }

// FromFloat approximates f as a Fraction with a bounded denominator. It is
// meant for converting user-facing numbers (tempo, rotation amounts), not for
// chaining further exact arithmetic.
func FromFloat(f float64) Fraction {
	const denom = 1 << 20
	return New(int64(f*float64(denom)), denom)
}

// Float returns the Fraction as a float64.
func (f Fraction) Float() float64 {
	return float64(f.Num) / float64(f.Den)
}

func (f Fraction) Add(o Fraction) Fraction {
	return New(f.Num*o.Den+o.Num*f.Den, f.Den*o.Den)
}

func (f Fraction) Sub(o Fraction) Fraction {
	return New(f.Num*o.Den-o.Num*f.Den, f.Den*o.Den)
}

func (f Fraction) Mul(o Fraction) Fraction {
	return New(f.Num*o.Num, f.Den*o.Den)
}

func (f Fraction) Div(o Fraction) Fraction {
	if o.Num == 0 {
		panic("frac: division by zero")
	}
	return New(f.Num*o.Den, f.Den*o.Num)
}

func (f Fraction) Neg() Fraction { return Fraction{Num: -f.Num, Den: f.Den} }

// Cmp returns -1, 0, or 1 as f is less than, equal to, or greater than o.
func (f Fraction) Cmp(o Fraction) int {
	lhs := f.Num * o.Den
	rhs := o.Num * f.Den
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

func (f Fraction) Lt(o Fraction) bool  { return f.Cmp(o) < 0 }
func (f Fraction) Lte(o Fraction) bool { return f.Cmp(o) <= 0 }
func (f Fraction) Gt(o Fraction) bool  { return f.Cmp(o) > 0 }
func (f Fraction) Gte(o Fraction) bool { return f.Cmp(o) >= 0 }
func (f Fraction) Eq(o Fraction) bool  { return f.Cmp(o) == 0 }

// Floor returns the greatest integer <= f, i.e. the cycle index f falls in.
func (f Fraction) Floor() int64 {
	q := f.Num / f.Den
	if f.Num%f.Den != 0 && (f.Num < 0) != (f.Den < 0) {
		q--
	}
	return q
}

// Ceil returns the least integer >= f.
func (f Fraction) Ceil() int64 {
	q := f.Num / f.Den
	if f.Num%f.Den != 0 && (f.Num < 0) == (f.Den < 0) {
		q++
	}
	return q
}

// Mod1 returns f's position within its cycle, in [0, 1).
func (f Fraction) Mod1() Fraction {
	return f.Sub(FromInt(f.Floor()))
}

// Min returns the smaller of f and o.
func Min(f, o Fraction) Fraction {
	if f.Lt(o) {
		return f
	}
	return o
}

// Max returns the larger of f and o.
func Max(f, o Fraction) Fraction {
	if f.Gt(o) {
		return f
	}
	return o
}

func (f Fraction) String() string {
	if f.Den == 1 {
		return fmt.Sprintf("%d", f.Num)
	}
	return fmt.Sprintf("%d/%d", f.Num, f.Den)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
