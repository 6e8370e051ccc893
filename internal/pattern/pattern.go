// Package pattern implements the lazy, queryable pattern algebra that the
// mini-notation compiles into: a Pattern[T] is nothing more than a pure
// function from a query TimeSpan to the Events that overlap it. Everything
// else in this package is a combinator that builds new Patterns out of old
// ones by reshaping the query span handed to a child and/or the events it
// returns.
package pattern

import (
	"github.com/phonon-lang/phonon/internal/frac"
)

// Event is a pattern's atomic output. Whole is the event's full, unclipped
// extent; it is nil for patterns with no inherent duration (e.g. an
// analog/continuous signal sampled at a point). Part is Whole intersected
// with the span that was queried.
type Event[T any] struct {
	Whole *frac.TimeSpan
	Part  frac.TimeSpan
	Value T
}

// Onset returns the cycle-absolute time at which this event begins sounding:
// the start of Whole if present, otherwise the start of Part. This is the
// time the Sample node in the signal graph uses to detect new events.
func (e Event[T]) Onset() frac.Fraction {
	if e.Whole != nil {
		return e.Whole.Begin
	}
	return e.Part.Begin
}

// HasOnset reports whether this event's part begins where its whole begins,
// i.e. whether this query actually witnessed the event's onset rather than
// just the tail end of an event that started before the query window.
func (e Event[T]) HasOnset() bool {
	if e.Whole == nil {
		return true
	}
	return e.Whole.Begin.Eq(e.Part.Begin)
}

func withWhole[T any](whole frac.TimeSpan, part frac.TimeSpan, v T) Event[T] {
	w := whole
	return Event[T]{Whole: &w, Part: part, Value: v}
}

// Pattern is a pure, restartable, deterministic function of a query span to
// the events overlapping it. Querying the same span twice must yield
// equivalent events.
type Pattern[T any] func(frac.TimeSpan) []Event[T]

// Query is sugar for p(span), useful when p is produced by an expression
// rather than held in a named variable.
func (p Pattern[T]) Query(span frac.TimeSpan) []Event[T] { return p(span) }

// Silence never produces an event.
func Silence[T any]() Pattern[T] {
	return func(frac.TimeSpan) []Event[T] { return nil }
}

// Pure repeats v once per cycle, with a whole spanning the full cycle.
func Pure[T any](v T) Pattern[T] {
	return func(span frac.TimeSpan) []Event[T] {
		var out []Event[T]
		for _, cyc := range span.SpansCycle() {
			whole := frac.CycleSpan(cyc.Begin.Floor())
			part, ok := whole.Intersect(cyc)
			if !ok {
				// zero-width query exactly at a cycle boundary
				part = cyc
			}
			out = append(out, withWhole(whole, part, v))
		}
		return out
	}
}

// Signal builds a Pattern whose events have no inherent duration: each query
// produces exactly one event spanning the whole query window, evaluated by f
// at the window's start. This is how continuous-valued control signals
// (as opposed to discrete triggers) are represented.
func Signal[T any](f func(t frac.Fraction) T) Pattern[T] {
	return func(span frac.TimeSpan) []Event[T] {
		return []Event[T]{{Whole: nil, Part: span, Value: f(span.Begin)}}
	}
}

// Fmap maps every event's value through f.
func Fmap[A, B any](p Pattern[A], f func(A) B) Pattern[B] {
	return func(span frac.TimeSpan) []Event[B] {
		in := p(span)
		out := make([]Event[B], len(in))
		for i, e := range in {
			out[i] = Event[B]{Whole: e.Whole, Part: e.Part, Value: f(e.Value)}
		}
		return out
	}
}

// Filter keeps only events whose value satisfies keep.
func Filter[T any](p Pattern[T], keep func(T) bool) Pattern[T] {
	return func(span frac.TimeSpan) []Event[T] {
		in := p(span)
		out := in[:0:0]
		for _, e := range in {
			if keep(e.Value) {
				out = append(out, e)
			}
		}
		return out
	}
}

// WithQuerySpan transforms the span passed to the child pattern, leaving the
// returned events untouched. Most time-domain combinators (Fast, Slow) are a
// WithQuerySpan paired with a WithEventTime on the result.
func WithQuerySpan[T any](p Pattern[T], f func(frac.TimeSpan) frac.TimeSpan) Pattern[T] {
	return func(span frac.TimeSpan) []Event[T] {
		return p(f(span))
	}
}

// WithEventTime maps every event's Whole and Part through f.
func WithEventTime[T any](p Pattern[T], f func(frac.TimeSpan) frac.TimeSpan) Pattern[T] {
	return func(span frac.TimeSpan) []Event[T] {
		in := p(span)
		out := make([]Event[T], len(in))
		for i, e := range in {
			part := f(e.Part)
			var whole *frac.TimeSpan
			if e.Whole != nil {
				w := f(*e.Whole)
				whole = &w
			}
			out[i] = Event[T]{Whole: whole, Part: part, Value: e.Value}
		}
		return out
	}
}

// Transform is a function that maps one Pattern to another of the same type;
// it is the type used by pattern-transform combinators like Every and the
// left-hand side of `$` in the mini-language.
type Transform[T any] func(Pattern[T]) Pattern[T]
