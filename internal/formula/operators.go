package formula

import (
	"fmt"
	"math"
)

// Operator represents an arithmetic or comparison operator.
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpEq  Operator = "=="
	OpNeq Operator = "!="
	OpGt  Operator = ">"
	OpGte Operator = ">="
	OpLt  Operator = "<"
	OpLte Operator = "<="
)

// apply evaluates a binary operator. Comparisons yield 1 for true and 0 for false
// so a formula like "bonus >= 500" reads as a step function.
func apply(op Operator, l, r float64) (float64, error) {
	switch op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		if r == 0 {
			return 0, fmt.Errorf("%w: division by zero", ErrDomain)
		}
		return l / r, nil
	case OpEq:
		return truth(math.Abs(l-r) < 1e-9), nil
	case OpNeq:
		return truth(math.Abs(l-r) >= 1e-9), nil
	case OpGt:
		return truth(l > r), nil
	case OpGte:
		return truth(l >= r), nil
	case OpLt:
		return truth(l < r), nil
	case OpLte:
		return truth(l <= r), nil
	default:
		return 0, fmt.Errorf("unknown operator: %s", op)
	}
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// arity bounds the argument count of a builtin; max < 0 means variadic.
type arity struct{ min, max int }

func (a arity) accepts(n int) bool {
	return n >= a.min && (a.max < 0 || n <= a.max)
}

func (a arity) String() string {
	switch {
	case a.max < 0:
		return fmt.Sprintf("expects at least %d arguments", a.min)
	case a.min == a.max:
		return fmt.Sprintf("expects %d arguments", a.min)
	default:
		return fmt.Sprintf("expects %d to %d arguments", a.min, a.max)
	}
}

var builtins = map[string]arity{
	"min":   {1, -1},
	"max":   {1, -1},
	"clamp": {3, 3},
	"exp":   {1, 1},
	"sqrt":  {1, 1},
	"pow":   {2, 2},
}

func call(fn string, args []float64) (float64, error) {
	switch fn {
	case "min":
		out := args[0]
		for _, a := range args[1:] {
			out = math.Min(out, a)
		}
		return out, nil
	case "max":
		out := args[0]
		for _, a := range args[1:] {
			out = math.Max(out, a)
		}
		return out, nil
	case "clamp":
		return math.Max(args[1], math.Min(args[2], args[0])), nil
	case "exp":
		return math.Exp(args[0]), nil
	case "sqrt":
		if args[0] < 0 {
			return 0, fmt.Errorf("%w: sqrt of negative value %g", ErrDomain, args[0])
		}
		return math.Sqrt(args[0]), nil
	case "pow":
		return math.Pow(args[0], args[1]), nil
	default:
		return 0, fmt.Errorf("unknown function %q", fn)
	}
}
