package frac

// TimeSpan is a half-open interval [Begin, End) of cycle time.
type TimeSpan struct {
	Begin Fraction
	End   Fraction
}

// NewSpan builds a TimeSpan, panicking if End is before Begin.
func NewSpan(begin, end Fraction) TimeSpan {
	if end.Lt(begin) {
		panic("frac: span end before begin")
	}
	return TimeSpan{Begin: begin, End: end}
}

// Duration returns End - Begin.
func (s TimeSpan) Duration() Fraction { return s.End.Sub(s.Begin) }

// Width returns the duration as a float64, for callers that don't need exact
// arithmetic (e.g. logging, UI).
func (s TimeSpan) Width() float64 { return s.Duration().Float() }

// Intersect returns the overlap of s and o, and whether they overlap at all.
// Two spans that merely touch at a point do not count as overlapping, matching
// the half-open convention used throughout the pattern engine.
func (s TimeSpan) Intersect(o TimeSpan) (TimeSpan, bool) {
	begin := Max(s.Begin, o.Begin)
	end := Min(s.End, o.End)
	if begin.Gte(end) {
		return TimeSpan{}, false
	}
	return TimeSpan{Begin: begin, End: end}, true
}

// SpansCycle splits s into one sub-span per cycle it overlaps, so a caller can
// process cycle-local patterns (e.g. "one Fraction per cycle") one cycle at a
// time even when the query crosses cycle boundaries.
func (s TimeSpan) SpansCycle() []TimeSpan {
	if s.Begin.Gte(s.End) {
		if s.Begin.Eq(s.End) {
			return []TimeSpan{s}
		}
		return nil
	}
	var out []TimeSpan
	cur := s.Begin
	for cur.Lt(s.End) {
		nextCycle := FromInt(cur.Floor() + 1)
		end := Min(nextCycle, s.End)
		out = append(out, TimeSpan{Begin: cur, End: end})
		cur = end
	}
	return out
}

// WithTime maps both endpoints of s through f, producing a new span. f must be
// monotone non-decreasing for the result to remain a valid half-open span in
// the expected direction; combinators that reverse time (Rev) build the span
// directly instead of using WithTime.
func (s TimeSpan) WithTime(f func(Fraction) Fraction) TimeSpan {
	return TimeSpan{Begin: f(s.Begin), End: f(s.End)}
}

// CycleSpan returns the [n, n+1) span for cycle index n.
func CycleSpan(n int64) TimeSpan {
	return TimeSpan{Begin: FromInt(n), End: FromInt(n + 1)}
}
