package pattern

import (
	"hash/fnv"
	"math"

	"github.com/phonon-lang/phonon/internal/frac"
)

// Fast plays p k times faster: k cycles of p fit in one cycle of the result.
func Fast[T any](k frac.Fraction, p Pattern[T]) Pattern[T] {
	if k.Num == 0 {
		return Silence[T]()
	}
	if k.Num < 0 {
		return Fast(k.Neg(), Rev(p))
	}
	return WithEventTime(
		WithQuerySpan(p, func(s frac.TimeSpan) frac.TimeSpan {
			return frac.TimeSpan{Begin: s.Begin.Mul(k), End: s.End.Mul(k)}
		}),
		func(s frac.TimeSpan) frac.TimeSpan {
			return frac.TimeSpan{Begin: s.Begin.Div(k), End: s.End.Div(k)}
		},
	)
}

// Slow plays p k times slower. Slow k is Fast (1/k).
func Slow[T any](k frac.Fraction, p Pattern[T]) Pattern[T] {
	return Fast(frac.New(k.Den, k.Num), p)
}

// Rev reverses p within every cycle.
func Rev[T any](p Pattern[T]) Pattern[T] {
	return func(span frac.TimeSpan) []Event[T] {
		var out []Event[T]
		for _, cyc := range span.SpansCycle() {
			base := frac.FromInt(cyc.Begin.Floor())
			next := base.Add(frac.FromInt(1))
			mirror := func(t frac.Fraction) frac.Fraction { return base.Add(next).Sub(t) }
			qBegin := mirror(cyc.End)
			qEnd := mirror(cyc.Begin)
			evs := p(frac.TimeSpan{Begin: qBegin, End: qEnd})
			for j := len(evs) - 1; j >= 0; j-- {
				e := evs[j]
				part := frac.TimeSpan{Begin: mirror(e.Part.End), End: mirror(e.Part.Begin)}
				var whole *frac.TimeSpan
				if e.Whole != nil {
					w := frac.TimeSpan{Begin: mirror(e.Whole.End), End: mirror(e.Whole.Begin)}
					whole = &w
				}
				out = append(out, Event[T]{Whole: whole, Part: part, Value: e.Value})
			}
		}
		return out
	}
}

// Cat concatenates patterns, one per cycle, cycling through the list.
func Cat[T any](ps ...Pattern[T]) Pattern[T] {
	n := int64(len(ps))
	if n == 0 {
		return Silence[T]()
	}
	return func(span frac.TimeSpan) []Event[T] {
		var out []Event[T]
		for _, cyc := range span.SpansCycle() {
			cycleIdx := cyc.Begin.Floor()
			q, i := floorDivMod(cycleIdx, n)
			// Map this cycle onto cycle q of the chosen sub-pattern so repeated
			// visits to the same slot advance that sub-pattern's own time.
			shift := frac.FromInt(cycleIdx - q)
			shifted := frac.TimeSpan{Begin: cyc.Begin.Sub(shift), End: cyc.End.Sub(shift)}
			evs := ps[i](shifted)
			for _, e := range evs {
				part := frac.TimeSpan{Begin: e.Part.Begin.Add(shift), End: e.Part.End.Add(shift)}
				var whole *frac.TimeSpan
				if e.Whole != nil {
					w := frac.TimeSpan{Begin: e.Whole.Begin.Add(shift), End: e.Whole.End.Add(shift)}
					whole = &w
				}
				out = append(out, Event[T]{Whole: whole, Part: part, Value: e.Value})
			}
		}
		return out
	}
}

// FastCat packs all of ps into a single cycle, equal width each ("bd sn hh").
func FastCat[T any](ps ...Pattern[T]) Pattern[T] {
	return Fast(frac.FromInt(int64(len(ps))), Cat(ps...))
}

// Stack layers patterns so all of them sound simultaneously (polyrhythm).
func Stack[T any](ps ...Pattern[T]) Pattern[T] {
	return func(span frac.TimeSpan) []Event[T] {
		var out []Event[T]
		for _, p := range ps {
			out = append(out, p(span)...)
		}
		return out
	}
}

// Every applies f to p on every n-th cycle (the last of each group of n,
// matching "whole-cycle index mod n == n-1").
func Every[T any](n int64, f Transform[T], p Pattern[T]) Pattern[T] {
	if n <= 0 {
		return p
	}
	transformed := f(p)
	return func(span frac.TimeSpan) []Event[T] {
		var out []Event[T]
		for _, cyc := range span.SpansCycle() {
			idx := cyc.Begin.Floor()
			m := idx % n
			if m < 0 {
				m += n
			}
			if m == n-1 {
				out = append(out, transformed(cyc)...)
			} else {
				out = append(out, p(cyc)...)
			}
		}
		return out
	}
}

// Degrade deterministically drops events, keeping each with probability
// 1-prob, by hashing (cycle index, event position) to a uniform [0,1) value.
// This makes degrade reproducible across repeated queries of the same span,
// as the pattern contract requires.
func Degrade[T any](prob float64, p Pattern[T]) Pattern[T] {
	return func(span frac.TimeSpan) []Event[T] {
		in := p(span)
		out := in[:0:0]
		for _, e := range in {
			if degradeHash(e.Onset()) >= prob {
				out = append(out, e)
			}
		}
		return out
	}
}

func degradeHash(t frac.Fraction) float64 {
	h := fnv.New64a()
	var buf [16]byte
	putInt64(buf[0:8], t.Num)
	putInt64(buf[8:16], t.Den)
	_, _ = h.Write(buf[:])
	return float64(h.Sum64()%1_000_000) / 1_000_000
}

// floorDivMod returns (q, r) such that a == q*n+r and 0 <= r < n, unlike Go's
// built-in integer division which truncates toward zero.
func floorDivMod(a, n int64) (q, r int64) {
	q = a / n
	r = a % n
	if r < 0 {
		q--
		r += n
	}
	return
}

func putInt64(b []byte, v int64) {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * i))
	}
}

// Stutter repeats each event n times within its own slot, spaced t apart.
func Stutter[T any](n int64, t frac.Fraction, p Pattern[T]) Pattern[T] {
	if n <= 1 {
		return p
	}
	var layers []Pattern[T]
	for i := int64(0); i < n; i++ {
		shift := t.Mul(frac.FromInt(i))
		layers = append(layers, shiftLate(shift, p))
	}
	return Stack(layers...)
}

func shiftLate[T any](amt frac.Fraction, p Pattern[T]) Pattern[T] {
	return WithEventTime(
		WithQuerySpan(p, func(s frac.TimeSpan) frac.TimeSpan {
			return frac.TimeSpan{Begin: s.Begin.Sub(amt), End: s.End.Sub(amt)}
		}),
		func(s frac.TimeSpan) frac.TimeSpan {
			return frac.TimeSpan{Begin: s.Begin.Add(amt), End: s.End.Add(amt)}
		},
	)
}

// Palindrome alternates a cycle of p forwards and the next reversed.
func Palindrome[T any](p Pattern[T]) Pattern[T] {
	return Cat(p, Rev(p))
}

// Jux splits p into a left (unchanged) and right (f-transformed) pair,
// intended to feed a stereo pan parameter from two differing patterns.
func Jux[T any](f Transform[T], p Pattern[T]) (left, right Pattern[T]) {
	return p, f(p)
}

// Chop subdivides each event's sample-playback slot into n equal pieces,
// each carrying the piece index and count alongside the original value so a
// downstream Sample node can pick the right slice of the buffer.
type Chopped[T any] struct {
	Value     T
	SliceIdx  int
	SliceOf   int
}

func Chop[T any](n int, p Pattern[T]) Pattern[Chopped[T]] {
	if n < 1 {
		n = 1
	}
	return func(span frac.TimeSpan) []Event[Chopped[T]] {
		in := p(span)
		var out []Event[Chopped[T]]
		for _, e := range in {
			whole := e.Part
			if e.Whole != nil {
				whole = *e.Whole
			}
			dur := whole.Duration().Div(frac.FromInt(int64(n)))
			for i := 0; i < n; i++ {
				w := frac.TimeSpan{
					Begin: whole.Begin.Add(dur.Mul(frac.FromInt(int64(i)))),
					End:   whole.Begin.Add(dur.Mul(frac.FromInt(int64(i + 1)))),
				}
				part, ok := w.Intersect(e.Part)
				if !ok {
					continue
				}
				out = append(out, withWhole(w, part, Chopped[T]{Value: e.Value, SliceIdx: i, SliceOf: n}))
			}
		}
		return out
	}
}

// Striate interleaves n slices of p across the whole cycle rather than
// subdividing each individual event (the distinction from Chop): slice 0 of
// every event plays, then slice 1 of every event, and so on.
func Striate[T any](n int, p Pattern[T]) Pattern[Chopped[T]] {
	if n < 1 {
		n = 1
	}
	layers := make([]Pattern[Chopped[T]], n)
	for i := 0; i < n; i++ {
		i := i
		layers[i] = Fmap(p, func(v T) Chopped[T] { return Chopped[T]{Value: v, SliceIdx: i, SliceOf: n} })
	}
	return FastCat(layers...)
}

// Run produces the ascending integer pattern 0..n-1, one per step.
func Run(n int) Pattern[int] {
	vals := make([]Pattern[int], n)
	for i := 0; i < n; i++ {
		vals[i] = Pure(i)
	}
	return FastCat(vals...)
}

// Iter rotates a pattern's n-way subdivision by one step on each successive
// cycle, returning to the start after n cycles.
func Iter[T any](n int64, p Pattern[T]) Pattern[T] {
	if n <= 0 {
		return p
	}
	return func(span frac.TimeSpan) []Event[T] {
		var out []Event[T]
		for _, cyc := range span.SpansCycle() {
			_, idx := floorDivMod(cyc.Begin.Floor(), n)
			shift := frac.New(idx, n)
			shifted := Fast(frac.FromInt(1), rotateLeft(shift, p))
			out = append(out, shifted(cyc)...)
		}
		return out
	}
}

func rotateLeft[T any](amt frac.Fraction, p Pattern[T]) Pattern[T] {
	return WithEventTime(
		WithQuerySpan(p, func(s frac.TimeSpan) frac.TimeSpan {
			return frac.TimeSpan{Begin: s.Begin.Add(amt), End: s.End.Add(amt)}
		}),
		func(s frac.TimeSpan) frac.TimeSpan {
			return frac.TimeSpan{Begin: s.Begin.Sub(amt), End: s.End.Sub(amt)}
		},
	)
}

// Segment samples a continuous pattern into n discrete, equal-width steps
// per cycle, each holding the value at its own start time.
func Segment[T any](n int64, p Pattern[T]) Pattern[T] {
	grid := Fast(frac.FromInt(n), Pure(struct{}{}))
	return func(span frac.TimeSpan) []Event[T] {
		steps := grid(span)
		var out []Event[T]
		for _, s := range steps {
			whole := s.Part
			if s.Whole != nil {
				whole = *s.Whole
			}
			vals := p(frac.TimeSpan{Begin: whole.Begin, End: whole.Begin})
			if len(vals) == 0 {
				vals = p(frac.TimeSpan{Begin: whole.Begin, End: whole.End})
			}
			if len(vals) == 0 {
				continue
			}
			out = append(out, withWhole(whole, s.Part, vals[0].Value))
		}
		return out
	}
}

// Range rescales a pattern whose values lie in [0,1] into [lo,hi].
func Range(lo, hi float64, p Pattern[float64]) Pattern[float64] {
	return Fmap(p, func(v float64) float64 { return lo + v*(hi-lo) })
}

// Clamp01 is a small numeric helper shared by combinators that treat a value
// as a probability or normalized amount.
func Clamp01(v float64) float64 { return math.Min(1, math.Max(0, v)) }
