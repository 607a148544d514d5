package formula

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownVariable is returned when an expression names a variable the
	// environment does not provide.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrDomain is returned for value-dependent failures such as division by
	// zero or the square root of a negative number.
	ErrDomain = errors.New("value outside domain")
)

// Env provides variable values for expression evaluation.
type Env interface {
	Resolve(name string) (float64, bool)
}

// Vars is a map-backed Env.
type Vars map[string]float64

// Resolve implements Env.
func (v Vars) Resolve(name string) (float64, bool) {
	f, ok := v[name]
	return f, ok
}

// Evaluate walks the AST and returns its numeric value.
func Evaluate(expr Expr, env Env) (float64, error) {
	switch e := expr.(type) {
	case *NumberLit:
		return e.Value, nil
	case *VarRef:
		v, ok := env.Resolve(e.Name)
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrUnknownVariable, e.Name)
		}
		return v, nil
	case *NegExpr:
		v, err := Evaluate(e.Expr, env)
		if err != nil {
			return 0, err
		}
		return -v, nil
	case *BinaryExpr:
		l, err := Evaluate(e.Left, env)
		if err != nil {
			return 0, err
		}
		r, err := Evaluate(e.Right, env)
		if err != nil {
			return 0, err
		}
		return apply(e.Op, l, r)
	case *CallExpr:
		args := make([]float64, len(e.Args))
		for i, a := range e.Args {
			v, err := Evaluate(a, env)
			if err != nil {
				return 0, err
			}
			args[i] = v
		}
		return call(e.Func, args)
	default:
		return 0, fmt.Errorf("unknown expr type %T", expr)
	}
}

// Adoption compiles src into an adoption-probability function of the bonus
// amount. The expression sees the bonus as the variable "bonus"; its result is
// clamped to [0, 1], and evaluation errors or NaN map to probability 0.
//
// The expression is checked once against bonus=0 so that unknown variables are
// reported at compile time.
func Adoption(src string) (func(bonus float64) float64, error) {
	ast, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("adoption formula %q: %w", src, err)
	}
	if _, err := Evaluate(ast, Vars{"bonus": 0}); err != nil && !errors.Is(err, ErrDomain) {
		return nil, fmt.Errorf("adoption formula %q: %w", src, err)
	}
	return func(bonus float64) float64 {
		v, err := Evaluate(ast, Vars{"bonus": bonus})
		if err != nil || math.IsNaN(v) {
			return 0
		}
		return math.Max(0, math.Min(1, v))
	}, nil
}
