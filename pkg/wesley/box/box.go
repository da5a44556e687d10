// Package box provides the dynamic value and dispatch layer: a boxed value
// container carrying runtime type identity, a multi-signature function
// registry, and the lexically scoped variable environment.
package box

import (
	"fmt"
	"reflect"

	"github.com/wesleylang/wesley/pkg/wesley/errors"
)

// TypeInfo describes a parameter or value type for dispatch matching: the
// bare type plus const and reference qualifiers.
type TypeInfo struct {
	Bare    reflect.Type // nil for the empty/void value
	IsConst bool
	IsRef   bool
}

// typeFor returns the reflect.Type for T. Equivalent to reflect.TypeFor,
// reimplemented here for compatibility with toolchains older than Go 1.22.
func typeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// TypeOf returns the TypeInfo for a concrete host type.
func TypeOf[T any]() TypeInfo {
	return TypeInfo{Bare: typeFor[T]()}
}

// Equal compares bare types only; qualifiers do not affect identity.
func (ti TypeInfo) Equal(other TypeInfo) bool {
	return ti.Bare == other.Bare
}

// IsVoid reports whether this is the type of the empty value.
func (ti TypeInfo) IsVoid() bool { return ti.Bare == nil }

func (ti TypeInfo) String() string {
	if ti.Bare == nil {
		return "void"
	}
	s := ti.Bare.String()
	if ti.IsConst {
		s = "const " + s
	}
	if ti.IsRef {
		s = s + "&"
	}
	return s
}

// cell is the shared payload of a boxed value. Copies of a Value alias the
// same cell, which is what makes in-place assignment visible through every
// binding that holds the box.
type cell struct {
	data any
}

// Value is a container for any host datum. The zero Value is not valid; use
// Empty for the "no value" box.
type Value struct {
	c *cell
}

// New boxes a concrete host value.
func New(v any) Value {
	return Value{c: &cell{data: v}}
}

// Empty returns the empty boxed value, representing "no value".
func Empty() Value {
	return Value{c: &cell{}}
}

// IsEmpty reports whether the box holds no value.
func (v Value) IsEmpty() bool {
	return v.c == nil || v.c.data == nil
}

// TypeInfo returns the runtime type handle of the stored datum.
func (v Value) TypeInfo() TypeInfo {
	if v.IsEmpty() {
		return TypeInfo{}
	}
	return TypeInfo{Bare: reflect.TypeOf(v.c.data)}
}

// Raw returns the stored datum without conversion.
func (v Value) Raw() any {
	if v.c == nil {
		return nil
	}
	return v.c.data
}

// Set replaces the stored datum in place. Every alias of the box observes
// the new value; this is the mutable-view path used by assignment and the
// increment operators.
func (v Value) Set(data any) {
	v.c.data = data
}

// Assign copies the other box's datum into this box's cell.
func (v Value) Assign(other Value) Value {
	v.c.data = other.Raw()
	return v
}

func (v Value) String() string {
	if v.IsEmpty() {
		return "void"
	}
	return fmt.Sprintf("%v", v.c.data)
}

// As extracts the stored datum as type T, failing with a type error when
// the stored type is incompatible. This is the by-value (and const-ref)
// extraction view.
func As[T any](v Value) (T, error) {
	var zero T
	if v.IsEmpty() {
		return zero, errors.Newf(errors.ClassType, "Can not convert void to %s", typeFor[T]())
	}
	t, ok := v.c.data.(T)
	if !ok {
		return zero, errors.Newf(errors.ClassType, "Can not convert %s to %s",
			v.TypeInfo(), typeFor[T]())
	}
	return t, nil
}
