package evaluator

import (
	"fmt"
	"strconv"

	"github.com/wesleylang/wesley/pkg/wesley/box"
	"github.com/wesleylang/wesley/pkg/wesley/errors"
)

// Bootstrap registers the standard host bindings: arithmetic and comparison
// over the primitive types, assignment, vector support, printing, and the
// small demo helpers. Script output goes through logger.
func Bootstrap(s *box.System, logger Logger) {
	registerArithmetic(s)
	registerComparisons(s)
	registerAssignment(s)
	registerVectors(s)
	registerStrings(s)
	registerPrinting(s, logger)

	// add_two forwards to whatever '+' resolves to for its operands
	s.RegisterFunction(&box.DynamicFunc{NumParams: 2, Fn: func(args []box.Value) (box.Value, error) {
		return s.Dispatch("+", args)
	}}, "add_two")

	s.RegisterFunction(&box.DynamicFunc{NumParams: 0, Fn: func(args []box.Value) (box.Value, error) {
		for _, name := range s.FunctionNames() {
			for _, fn := range s.GetFunctions(name) {
				logger.LogLine(describeFunction(name, fn))
			}
		}
		return box.Empty(), nil
	}}, "dump_system")

	s.RegisterFunction(&box.DynamicFunc{NumParams: 1, Fn: func(args []box.Value) (box.Value, error) {
		logger.LogLine(args[0].TypeInfo().String() + ": " + args[0].String())
		return box.Empty(), nil
	}}, "dump_object")
}

func describeFunction(name string, fn box.ProxyFunc) string {
	if params := fn.ParamTypes(); params != nil {
		sig := ""
		for i, p := range params {
			if i > 0 {
				sig += ", "
			}
			sig += p.String()
		}
		return name + "(" + sig + ")"
	}
	if fn.Arity() == box.AnyArity {
		return name + "(...)"
	}
	return fmt.Sprintf("%s(%d args)", name, fn.Arity())
}

func registerArithmetic(s *box.System) {
	s.RegisterFunction(box.Fn2(func(a, b int) int { return a + b }), "+")
	s.RegisterFunction(box.Fn2(func(a, b float64) float64 { return a + b }), "+")
	s.RegisterFunction(box.Fn2(func(a int, b float64) float64 { return float64(a) + b }), "+")
	s.RegisterFunction(box.Fn2(func(a float64, b int) float64 { return a + float64(b) }), "+")

	s.RegisterFunction(box.Fn2(func(a, b int) int { return a - b }), "-")
	s.RegisterFunction(box.Fn2(func(a, b float64) float64 { return a - b }), "-")
	s.RegisterFunction(box.Fn2(func(a int, b float64) float64 { return float64(a) - b }), "-")
	s.RegisterFunction(box.Fn2(func(a float64, b int) float64 { return a - float64(b) }), "-")

	s.RegisterFunction(box.Fn2(func(a, b int) int { return a * b }), "*")
	s.RegisterFunction(box.Fn2(func(a, b float64) float64 { return a * b }), "*")
	s.RegisterFunction(box.Fn2(func(a int, b float64) float64 { return float64(a) * b }), "*")
	s.RegisterFunction(box.Fn2(func(a float64, b int) float64 { return a * float64(b) }), "*")

	s.RegisterFunction(box.Fn2Err(func(a, b int) (int, error) {
		if b == 0 {
			return 0, errors.New(errors.ClassEval, "Division by zero")
		}
		return a / b, nil
	}), "/")
	s.RegisterFunction(box.Fn2(func(a, b float64) float64 { return a / b }), "/")
	s.RegisterFunction(box.Fn2(func(a int, b float64) float64 { return float64(a) / b }), "/")
	s.RegisterFunction(box.Fn2(func(a float64, b int) float64 { return a / float64(b) }), "/")

	// unary negation
	s.RegisterFunction(box.Fn1(func(a int) int { return -a }), "-")
	s.RegisterFunction(box.Fn1(func(a float64) float64 { return -a }), "-")

	// prefix increment and decrement mutate through the box
	s.RegisterFunction(box.Mutate1(func(a int) int { return a + 1 }), "++")
	s.RegisterFunction(box.Mutate1(func(a float64) float64 { return a + 1 }), "++")
	s.RegisterFunction(box.Mutate1(func(a int) int { return a - 1 }), "--")
	s.RegisterFunction(box.Mutate1(func(a float64) float64 { return a - 1 }), "--")
}

func registerComparisons(s *box.System) {
	s.RegisterFunction(box.Fn2(func(a, b int) bool { return a == b }), "==")
	s.RegisterFunction(box.Fn2(func(a, b float64) bool { return a == b }), "==")
	s.RegisterFunction(box.Fn2(func(a int, b float64) bool { return float64(a) == b }), "==")
	s.RegisterFunction(box.Fn2(func(a float64, b int) bool { return a == float64(b) }), "==")
	s.RegisterFunction(box.Fn2(func(a, b string) bool { return a == b }), "==")
	s.RegisterFunction(box.Fn2(func(a, b bool) bool { return a == b }), "==")

	s.RegisterFunction(box.Fn2(func(a, b int) bool { return a != b }), "!=")
	s.RegisterFunction(box.Fn2(func(a, b float64) bool { return a != b }), "!=")
	s.RegisterFunction(box.Fn2(func(a int, b float64) bool { return float64(a) != b }), "!=")
	s.RegisterFunction(box.Fn2(func(a float64, b int) bool { return a != float64(b) }), "!=")
	s.RegisterFunction(box.Fn2(func(a, b string) bool { return a != b }), "!=")
	s.RegisterFunction(box.Fn2(func(a, b bool) bool { return a != b }), "!=")

	s.RegisterFunction(box.Fn2(func(a, b int) bool { return a < b }), "<")
	s.RegisterFunction(box.Fn2(func(a, b float64) bool { return a < b }), "<")
	s.RegisterFunction(box.Fn2(func(a int, b float64) bool { return float64(a) < b }), "<")
	s.RegisterFunction(box.Fn2(func(a float64, b int) bool { return a < float64(b) }), "<")
	s.RegisterFunction(box.Fn2(func(a, b string) bool { return a < b }), "<")

	s.RegisterFunction(box.Fn2(func(a, b int) bool { return a <= b }), "<=")
	s.RegisterFunction(box.Fn2(func(a, b float64) bool { return a <= b }), "<=")
	s.RegisterFunction(box.Fn2(func(a int, b float64) bool { return float64(a) <= b }), "<=")
	s.RegisterFunction(box.Fn2(func(a float64, b int) bool { return a <= float64(b) }), "<=")
	s.RegisterFunction(box.Fn2(func(a, b string) bool { return a <= b }), "<=")

	s.RegisterFunction(box.Fn2(func(a, b int) bool { return a > b }), ">")
	s.RegisterFunction(box.Fn2(func(a, b float64) bool { return a > b }), ">")
	s.RegisterFunction(box.Fn2(func(a int, b float64) bool { return float64(a) > b }), ">")
	s.RegisterFunction(box.Fn2(func(a float64, b int) bool { return a > float64(b) }), ">")
	s.RegisterFunction(box.Fn2(func(a, b string) bool { return a > b }), ">")

	s.RegisterFunction(box.Fn2(func(a, b int) bool { return a >= b }), ">=")
	s.RegisterFunction(box.Fn2(func(a, b float64) bool { return a >= b }), ">=")
	s.RegisterFunction(box.Fn2(func(a int, b float64) bool { return float64(a) >= b }), ">=")
	s.RegisterFunction(box.Fn2(func(a float64, b int) bool { return a >= float64(b) }), ">=")
	s.RegisterFunction(box.Fn2(func(a, b string) bool { return a >= b }), ">=")

	s.RegisterFunction(box.Fn2(func(a, b bool) bool { return a && b }), "&&")
	s.RegisterFunction(box.Fn2(func(a, b bool) bool { return a || b }), "||")
}

func registerAssignment(s *box.System) {
	// '=' writes through the left box's mutable view, preserving the
	// binding's location across scopes.
	s.RegisterFunction(&box.DynamicFunc{NumParams: 2, Fn: func(args []box.Value) (box.Value, error) {
		return args[0].Assign(args[1]), nil
	}}, "=")

	for _, op := range []string{"+", "-", "*", "/"} {
		op := op
		s.RegisterFunction(&box.DynamicFunc{NumParams: 2, Fn: func(args []box.Value) (box.Value, error) {
			r, err := s.Dispatch(op, args)
			if err != nil {
				return box.Empty(), err
			}
			return args[0].Assign(r), nil
		}}, op+"=")
	}
}

func registerVectors(s *box.System) {
	s.RegisterFunction(box.Fn0(func() *box.Vector { return &box.Vector{} }), "Vector")
	s.RegisterFunction(box.Fn0(func() *box.IntVector { return &box.IntVector{} }), "VectorInt")

	s.RegisterFunction(&box.DynamicFunc{NumParams: 2, Fn: func(args []box.Value) (box.Value, error) {
		switch vec := args[0].Raw().(type) {
		case *box.Vector:
			vec.Push(args[1])
			return args[0], nil
		case *box.IntVector:
			i, err := box.As[int](args[1])
			if err != nil {
				return box.Empty(), err
			}
			vec.Push(i)
			return args[0], nil
		}
		return box.Empty(), errors.Newf(errors.ClassType, "Can not push_back to %s", args[0].TypeInfo())
	}}, "push_back")

	s.RegisterFunction(box.Fn2Err(func(v *box.Vector, i int) (box.Value, error) {
		e, ok := v.At(i)
		if !ok {
			return box.Empty(), errors.Newf(errors.ClassEval, "Index %d out of bounds", i)
		}
		return e, nil
	}), "[]")
	s.RegisterFunction(box.Fn2Err(func(v *box.IntVector, i int) (int, error) {
		e, ok := v.At(i)
		if !ok {
			return 0, errors.Newf(errors.ClassEval, "Index %d out of bounds", i)
		}
		return e, nil
	}), "[]")

	s.RegisterFunction(box.Fn1(func(v *box.Vector) int { return v.Len() }), "size")
	s.RegisterFunction(box.Fn1(func(v *box.IntVector) int { return v.Len() }), "size")
}

func registerStrings(s *box.System) {
	s.RegisterFunction(box.Fn2(func(a, b string) string { return a + b }), "concat_string")
	s.RegisterFunction(box.Fn2(func(a, b string) string { return a + b }), "+")

	s.RegisterFunction(box.Fn1(strconv.Itoa), "to_string")
	s.RegisterFunction(box.Fn1(func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }), "to_string")
	s.RegisterFunction(box.Fn1(func(v string) string { return v }), "to_string")
	s.RegisterFunction(box.Fn1(strconv.FormatBool), "to_string")
	s.RegisterFunction(box.Fn1(func(v *box.Vector) string { return v.String() }), "to_string")
	s.RegisterFunction(box.Fn1(func(v *box.IntVector) string { return v.String() }), "to_string")
}

func registerPrinting(s *box.System, logger Logger) {
	s.RegisterFunction(box.Proc1(func(v string) { logger.LogLine(v) }), "print")
	s.RegisterFunction(box.Proc1(func(v bool) { logger.LogLine(strconv.FormatBool(v)) }), "print")
	s.RegisterFunction(box.Proc1(func(v int) { logger.LogLine(v) }), "print")
	s.RegisterFunction(box.Proc1(func(v float64) { logger.LogLine(strconv.FormatFloat(v, 'g', -1, 64)) }), "print")
	s.RegisterFunction(box.Proc1(func(v *box.Vector) { logger.LogLine(v.String()) }), "print")
	s.RegisterFunction(box.Proc1(func(v *box.IntVector) { logger.LogLine(v.String()) }), "print")
}
