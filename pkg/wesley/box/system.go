package box

import (
	"sort"

	"github.com/wesleylang/wesley/pkg/wesley/errors"
)

// System is the shared interpreter state: the function registry and the
// scope stack. It is owned by the caller and passed explicitly to every
// evaluator operation. A System is not safe for concurrent use.
type System struct {
	functions map[string][]ProxyFunc
	scopes    []map[string]Value
}

// NewSystem creates a system with an empty registry and the global scope
// frame installed.
func NewSystem() *System {
	return &System{
		functions: make(map[string][]ProxyFunc),
		scopes:    []map[string]Value{make(map[string]Value)},
	}
}

// RegisterFunction appends an entry under name. Earlier registrations win
// ties; a later registration is only reached when every earlier candidate
// fails to match.
func (s *System) RegisterFunction(fn ProxyFunc, name string) {
	s.functions[name] = append(s.functions[name], fn)
}

// GetFunctions returns the ordered entry list for name.
func (s *System) GetFunctions(name string) []ProxyFunc {
	return s.functions[name]
}

// FunctionNames returns the sorted names of all registered functions.
func (s *System) FunctionNames() []string {
	names := make([]string, 0, len(s.functions))
	for name := range s.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch selects and calls the first entry for name whose declared arity
// matches the argument count and whose parameter types accept the argument
// vector. Dynamic proxies with unspecified arity always pass the filter.
func (s *System) Dispatch(name string, args []Value) (Value, error) {
	entries := s.functions[name]
	for _, fn := range entries {
		if a := fn.Arity(); a != AnyArity && a != len(args) {
			continue
		}
		v, err := fn.Call(args)
		if err == errNoMatch {
			continue
		}
		return v, err
	}
	return Empty(), errors.Newf(errors.ClassUndefined, "Can not find appropriate '%s'", name)
}

// NewScope pushes a fresh innermost frame.
func (s *System) NewScope() {
	s.scopes = append(s.scopes, make(map[string]Value))
}

// PopScope removes the innermost frame. Popping the global frame is a
// programming error.
func (s *System) PopScope() {
	if len(s.scopes) <= 1 {
		panic("box: pop of global scope")
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// ScopeDepth returns the current number of frames.
func (s *System) ScopeDepth() int {
	return len(s.scopes)
}

// SetObject inserts or overwrites name in the innermost frame.
func (s *System) SetObject(name string, v Value) {
	s.scopes[len(s.scopes)-1][name] = v
}

// AddObject binds name in the innermost frame. Used by function-call
// parameter binding.
func (s *System) AddObject(name string, v Value) {
	s.scopes[len(s.scopes)-1][name] = v
}

// GetObject looks name up from the innermost frame outward.
func (s *System) GetObject(name string) (Value, error) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i][name]; ok {
			return v, nil
		}
	}
	return Empty(), errors.Newf(errors.ClassUndefined, "Can not find object: %s", name)
}
