package compiler

import (
	"github.com/phonon-lang/phonon/internal/dsl"
	"github.com/phonon-lang/phonon/internal/frac"
	"github.com/phonon-lang/phonon/internal/pattern"
)

// patternTransform compiles one `$`-chained call into a
// pattern.Transform[string], recursing into an argument that is itself a
// transform call (`every 4 rev`) so nested combinators work the same way
// they do as plain Go function composition.
func (c *Compiler) patternTransform(call dsl.Call) (pattern.Transform[string], error) {
	switch call.Func {
	case "fast":
		k, err := c.constFraction(call, 0)
		if err != nil {
			return nil, err
		}
		return func(p pattern.Pattern[string]) pattern.Pattern[string] { return pattern.Fast(k, p) }, nil
	case "slow":
		k, err := c.constFraction(call, 0)
		if err != nil {
			return nil, err
		}
		return func(p pattern.Pattern[string]) pattern.Pattern[string] { return pattern.Slow(k, p) }, nil
	case "rev":
		return pattern.Rev[string], nil
	case "palindrome":
		return pattern.Palindrome[string], nil
	case "degrade":
		prob := 0.5
		if len(call.Args) > 0 {
			v, err := c.constNumber(call, 0)
			if err != nil {
				return nil, err
			}
			prob = v
		}
		return func(p pattern.Pattern[string]) pattern.Pattern[string] { return pattern.Degrade(prob, p) }, nil
	case "iter":
		n, err := c.constInt(call, 0)
		if err != nil {
			return nil, err
		}
		return func(p pattern.Pattern[string]) pattern.Pattern[string] { return pattern.Iter(int64(n), p) }, nil
	case "segment":
		n, err := c.constInt(call, 0)
		if err != nil {
			return nil, err
		}
		return func(p pattern.Pattern[string]) pattern.Pattern[string] { return pattern.Segment(int64(n), p) }, nil
	case "stutter":
		n, err := c.constInt(call, 0)
		if err != nil {
			return nil, err
		}
		t, err := c.constFraction(call, 1)
		if err != nil {
			return nil, err
		}
		return func(p pattern.Pattern[string]) pattern.Pattern[string] { return pattern.Stutter(int64(n), t, p) }, nil
	case "every":
		n, err := c.constInt(call, 0)
		if err != nil {
			return nil, err
		}
		if len(call.Args) < 2 {
			return nil, errAt(call.Pos, "'every' needs a count and a nested transform")
		}
		inner, ok := call.Args[1].(*dsl.Call)
		if !ok {
			return nil, errAt(call.Pos, "'every's second argument must be a transform")
		}
		innerFn, err := c.patternTransform(*inner)
		if err != nil {
			return nil, err
		}
		return func(p pattern.Pattern[string]) pattern.Pattern[string] {
			return pattern.Every(int64(n), innerFn, p)
		}, nil
	default:
		return nil, errAt(call.Pos, "unknown pattern transform '%s'", call.Func)
	}
}

func (c *Compiler) constNumber(call dsl.Call, i int) (float64, error) {
	if i >= len(call.Args) {
		return 0, errAt(call.Pos, "'%s' is missing argument %d", call.Func, i+1)
	}
	lit, ok := call.Args[i].(*dsl.NumberLit)
	if !ok {
		return 0, errAt(call.Pos, "'%s's argument %d must be a constant number", call.Func, i+1)
	}
	return lit.Value, nil
}

func (c *Compiler) constInt(call dsl.Call, i int) (int, error) {
	v, err := c.constNumber(call, i)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func (c *Compiler) constFraction(call dsl.Call, i int) (frac.Fraction, error) {
	v, err := c.constNumber(call, i)
	if err != nil {
		return frac.Fraction{}, err
	}
	return frac.FromFloat(v), nil
}
