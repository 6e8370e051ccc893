package mini

import (
	"fmt"
	"strconv"

	"github.com/phonon-lang/phonon/internal/frac"
	"github.com/phonon-lang/phonon/internal/pattern"
)

// ParseString compiles a mini-notation string into a word pattern, the form
// used for sample names ("bd sn ~ bd(3,8)").
func ParseString(src string) (pattern.Pattern[string], error) {
	n, err := parseProgram(src)
	if err != nil {
		return nil, err
	}
	return buildString(n), nil
}

// ParseNumeric compiles a mini-notation string into a numeric pattern, the
// form used for DSP parameters ("0 0.5 1", "<0.1 0.9>").
func ParseNumeric(src string) (pattern.Pattern[float64], error) {
	n, err := parseProgram(src)
	if err != nil {
		return nil, err
	}
	return buildNumeric(n), nil
}

func buildString(n *node) pattern.Pattern[string] {
	switch n.kind {
	case kWord:
		if n.index != nil {
			return pattern.Pure(fmt.Sprintf("%s:%d", n.word, *n.index))
		}
		return pattern.Pure(n.word)
	case kNumber:
		return pattern.Pure(formatNum(n.num))
	case kRest:
		return pattern.Silence[string]()
	case kSeq:
		if len(n.children) == 0 {
			return pattern.Silence[string]()
		}
		kids := make([]pattern.Pattern[string], len(n.children))
		for i, c := range n.children {
			kids[i] = buildString(c)
		}
		return pattern.FastCat(kids...)
	case kStack:
		kids := make([]pattern.Pattern[string], len(n.children))
		for i, c := range n.children {
			kids[i] = buildString(c)
		}
		return pattern.Stack(kids...)
	case kAlt:
		if len(n.children) == 0 {
			return pattern.Silence[string]()
		}
		kids := make([]pattern.Pattern[string], len(n.children))
		for i, c := range n.children {
			kids[i] = buildString(c)
		}
		return pattern.Cat(kids...)
	case kFast:
		return fastDynamic(buildNumeric(n.children[1]), buildString(n.children[0]))
	case kSlow:
		return slowDynamic(buildNumeric(n.children[1]), buildString(n.children[0]))
	case kEuclid:
		return euclidDynamic(euclidArgs(n), buildString(n.children[0]))
	default:
		return pattern.Silence[string]()
	}
}

func buildNumeric(n *node) pattern.Pattern[float64] {
	switch n.kind {
	case kNumber:
		return pattern.Pure(n.num)
	case kWord:
		v, err := strconv.ParseFloat(n.word, 64)
		if err != nil {
			v = 0
		}
		return pattern.Pure(v)
	case kRest:
		return pattern.Silence[float64]()
	case kSeq:
		if len(n.children) == 0 {
			return pattern.Silence[float64]()
		}
		kids := make([]pattern.Pattern[float64], len(n.children))
		for i, c := range n.children {
			kids[i] = buildNumeric(c)
		}
		return pattern.FastCat(kids...)
	case kStack:
		kids := make([]pattern.Pattern[float64], len(n.children))
		for i, c := range n.children {
			kids[i] = buildNumeric(c)
		}
		return pattern.Stack(kids...)
	case kAlt:
		if len(n.children) == 0 {
			return pattern.Silence[float64]()
		}
		kids := make([]pattern.Pattern[float64], len(n.children))
		for i, c := range n.children {
			kids[i] = buildNumeric(c)
		}
		return pattern.Cat(kids...)
	case kFast:
		return fastDynamic(buildNumeric(n.children[1]), buildNumeric(n.children[0]))
	case kSlow:
		return slowDynamic(buildNumeric(n.children[1]), buildNumeric(n.children[0]))
	case kEuclid:
		return euclidDynamic(euclidArgs(n), buildNumeric(n.children[0]))
	default:
		return pattern.Silence[float64]()
	}
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type euclidPats struct {
	k, n, rot pattern.Pattern[float64]
}

func euclidArgs(n *node) euclidPats {
	ea := euclidPats{k: buildNumeric(n.children[1]), n: buildNumeric(n.children[2])}
	if len(n.children) > 3 {
		ea.rot = buildNumeric(n.children[3])
	} else {
		ea.rot = pattern.Pure(0.0)
	}
	return ea
}

// sampleAt reads a numeric pattern's value for a whole cycle, the way a
// mini-notation factor (e.g. the "<2 3>" in "bd*<2 3>") varies its value
// one cycle at a time rather than within a cycle. Patterns with no event in
// that cycle fall back to def.
func sampleAt(p pattern.Pattern[float64], cycleIdx int64, def float64) float64 {
	evs := p(frac.CycleSpan(cycleIdx))
	if len(evs) == 0 {
		return def
	}
	return evs[0].Value
}

// fastDynamic applies Fast with a factor that is itself resampled once per
// cycle, so "bd*<2 3>" speeds up by 2 on even cycles and 3 on odd ones.
func fastDynamic[T any](factor pattern.Pattern[float64], p pattern.Pattern[T]) pattern.Pattern[T] {
	return func(span frac.TimeSpan) []pattern.Event[T] {
		var out []pattern.Event[T]
		for _, cyc := range span.SpansCycle() {
			f := sampleAt(factor, cyc.Begin.Floor(), 1)
			out = append(out, pattern.Fast(frac.FromFloat(f), p)(cyc)...)
		}
		return out
	}
}

func slowDynamic[T any](factor pattern.Pattern[float64], p pattern.Pattern[T]) pattern.Pattern[T] {
	return func(span frac.TimeSpan) []pattern.Event[T] {
		var out []pattern.Event[T]
		for _, cyc := range span.SpansCycle() {
			f := sampleAt(factor, cyc.Begin.Floor(), 1)
			if f == 0 {
				f = 1
			}
			out = append(out, pattern.Slow(frac.FromFloat(f), p)(cyc)...)
		}
		return out
	}
}

// euclidDynamic resamples k, n and rot once per cycle, so a euclid call whose
// arguments are themselves patterns (e.g. "bd(<3 5>,8)") can vary per cycle.
func euclidDynamic[T any](args euclidPats, p pattern.Pattern[T]) pattern.Pattern[T] {
	return func(span frac.TimeSpan) []pattern.Event[T] {
		var out []pattern.Event[T]
		for _, cyc := range span.SpansCycle() {
			idx := cyc.Begin.Floor()
			k := int(sampleAt(args.k, idx, 0))
			n := int(sampleAt(args.n, idx, 1))
			rot := int(sampleAt(args.rot, idx, 0))
			out = append(out, pattern.Euclid[T](k, n, rot, p)(cyc)...)
		}
		return out
	}
}
