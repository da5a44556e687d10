package box

import (
	"github.com/wesleylang/wesley/pkg/wesley/errors"
)

// AnyArity marks a dynamic proxy that accepts any number of arguments.
const AnyArity = -1

// ProxyFunc is one entry in the function registry: either a native function
// with typed parameters and an unboxing adapter, or a dynamic proxy that
// receives the boxed argument vector intact.
type ProxyFunc interface {
	// Arity returns the declared parameter count, or AnyArity.
	Arity() int
	// ParamTypes returns the declared parameter types for native entries,
	// nil for dynamic proxies.
	ParamTypes() []TypeInfo
	// Call invokes the entry. Native adapters return errNoMatch when an
	// argument fails to unbox, letting dispatch fall through to the next
	// candidate.
	Call(args []Value) (Value, error)
}

// errNoMatch is the sentinel a native adapter returns when its parameter
// types reject the argument vector. It never escapes Dispatch.
var errNoMatch = errors.New(errors.ClassType, "arguments do not match parameter types")

// nativeFunc adapts a statically typed host function: unbox each argument,
// call, rebox the result.
type nativeFunc struct {
	params []TypeInfo
	call   func(args []Value) (Value, error)
}

func (f *nativeFunc) Arity() int             { return len(f.params) }
func (f *nativeFunc) ParamTypes() []TypeInfo { return f.params }
func (f *nativeFunc) Call(args []Value) (v Value, err error) {
	// a host panic becomes an eval error carrying the panic message
	defer func() {
		if r := recover(); r != nil {
			v, err = Empty(), errors.Newf(errors.ClassEval, "%v", r)
		}
	}()
	return f.call(args)
}

// DynamicFunc is a callable registered by body alone. Script-defined
// functions and hosts like eval() use this form.
type DynamicFunc struct {
	NumParams int // AnyArity if unspecified
	Fn        func(args []Value) (Value, error)
}

func (f *DynamicFunc) Arity() int             { return f.NumParams }
func (f *DynamicFunc) ParamTypes() []TypeInfo { return nil }
func (f *DynamicFunc) Call(args []Value) (Value, error) {
	return f.Fn(args)
}

// boxResult reboxes an adapter result. Results that are already boxed pass
// through so host functions can hand back an existing box unchanged.
func boxResult(r any) Value {
	if v, ok := r.(Value); ok {
		return v
	}
	return New(r)
}

// Fn0 builds a native entry for a zero-argument function.
func Fn0[R any](f func() R) ProxyFunc {
	return &nativeFunc{
		params: []TypeInfo{},
		call: func(args []Value) (Value, error) {
			return boxResult(f()), nil
		},
	}
}

// Fn1 builds a native entry for a one-argument function.
func Fn1[A, R any](f func(A) R) ProxyFunc {
	return &nativeFunc{
		params: []TypeInfo{TypeOf[A]()},
		call: func(args []Value) (Value, error) {
			a, err := As[A](args[0])
			if err != nil {
				return Empty(), errNoMatch
			}
			return boxResult(f(a)), nil
		},
	}
}

// Fn2 builds a native entry for a two-argument function.
func Fn2[A, B, R any](f func(A, B) R) ProxyFunc {
	return &nativeFunc{
		params: []TypeInfo{TypeOf[A](), TypeOf[B]()},
		call: func(args []Value) (Value, error) {
			a, err := As[A](args[0])
			if err != nil {
				return Empty(), errNoMatch
			}
			b, err := As[B](args[1])
			if err != nil {
				return Empty(), errNoMatch
			}
			return boxResult(f(a, b)), nil
		},
	}
}

// Proc1 builds a native entry for a one-argument function with no result.
func Proc1[A any](f func(A)) ProxyFunc {
	return &nativeFunc{
		params: []TypeInfo{TypeOf[A]()},
		call: func(args []Value) (Value, error) {
			a, err := As[A](args[0])
			if err != nil {
				return Empty(), errNoMatch
			}
			f(a)
			return Empty(), nil
		},
	}
}

// Fn2Err builds a native entry for a two-argument function that can fail.
// The error is surfaced to the script as an eval error, not a dispatch miss.
func Fn2Err[A, B, R any](f func(A, B) (R, error)) ProxyFunc {
	return &nativeFunc{
		params: []TypeInfo{TypeOf[A](), TypeOf[B]()},
		call: func(args []Value) (Value, error) {
			a, err := As[A](args[0])
			if err != nil {
				return Empty(), errNoMatch
			}
			b, err := As[B](args[1])
			if err != nil {
				return Empty(), errNoMatch
			}
			r, err := f(a, b)
			if err != nil {
				return Empty(), err
			}
			return boxResult(r), nil
		},
	}
}

// Mutate1 builds a native entry whose single parameter is taken by mutable
// reference: f receives the current datum and the replacement is stored
// back into the argument's box, which is also the result.
func Mutate1[A any](f func(A) A) ProxyFunc {
	return &nativeFunc{
		params: []TypeInfo{{Bare: typeFor[A](), IsRef: true}},
		call: func(args []Value) (Value, error) {
			a, err := As[A](args[0])
			if err != nil {
				return Empty(), errNoMatch
			}
			args[0].Set(f(a))
			return args[0], nil
		},
	}
}
